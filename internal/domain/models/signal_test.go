package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"FxSignals/pkg/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestParseDecision(t *testing.T) {
	tests := map[string]Decision{"BUY": DecisionBuy, " sell ": DecisionSell, "Hold": DecisionHold, "wait": DecisionHold}
	for in, want := range tests {
		got, ok := ParseDecision(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseDecision("short")
	assert.False(t, ok)
}

func TestSeriesViewModelIsImmutable(t *testing.T) {
	src := []SignalPoint{
		{Decision: DecisionBuy, Timestamp: "2024-01-01", PredictedValue: ptr(1.1)},
		{Decision: DecisionSell, Timestamp: "2024-01-02"},
	}
	m := &Metrics{SharpeRatio: 1.2, CumulativeReturns: 5}
	vm := NewSeriesViewModel(src, m)

	*src[0].PredictedValue = 99
	src[1].Decision = DecisionHold
	m.SharpeRatio = -1

	pts := vm.Points()
	*pts[0].PredictedValue = 42

	again := vm.Points()
	v, ok := again[0].Value()
	require.True(t, ok)
	assert.Equal(t, 1.1, v)
	assert.Equal(t, DecisionSell, again[1].Decision)

	got, ok := vm.Metrics()
	require.True(t, ok)
	assert.Equal(t, 1.2, got.SharpeRatio)

	d, ok := vm.Decision()
	require.True(t, ok)
	assert.Equal(t, DecisionSell, d)
	_, ok = vm.PredictedValue()
	assert.False(t, ok)
	assert.Equal(t, 2, vm.Len())
}

func TestPointViewModelJSON(t *testing.T) {
	vm := NewPointViewModel(DecisionBuy, 1.0845)
	b, err := json.Marshal(vm)
	require.NoError(t, err)
	assert.JSONEq(t, `{"shape":"point","decision":"buy","predictedValue":1.0845}`, string(b))

	var back ViewModel
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, ShapePoint, back.Shape())
	v, ok := back.PredictedValue()
	require.True(t, ok)
	assert.Equal(t, 1.0845, v)
	_, ok = back.Metrics()
	assert.False(t, ok)
}

func TestSeriesViewModelJSON(t *testing.T) {
	vm := NewSeriesViewModel([]SignalPoint{{Decision: DecisionHold, Timestamp: "2024-01-01"}}, &Metrics{SharpeRatio: 0.5, CumulativeReturns: 12.5})
	b, err := json.Marshal(vm)
	require.NoError(t, err)
	assert.JSONEq(t, `{"shape":"series","signals":[{"decision":"hold","timestamp":"2024-01-01","predictedValue":null}],"metrics":{"sharpeRatio":0.5,"cumulativeReturns":12.5}}`, string(b))

	var back ViewModel
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, ShapeSeries, back.Shape())
	assert.Equal(t, vm.Points(), back.Points())
}

func TestViewModelUnmarshalRejectsUnknown(t *testing.T) {
	var vm ViewModel
	assert.Error(t, json.Unmarshal([]byte(`{"shape":"cube"}`), &vm))
	assert.Error(t, json.Unmarshal([]byte(`{"shape":"point","decision":"buy"}`), &vm))
}

func TestViewModelUnmarshalRejectsInvalidDecision(t *testing.T) {
	bodies := map[string]string{
		"point missing decision":  `{"shape":"point","predictedValue":1.1}`,
		"point unknown decision":  `{"shape":"point","decision":"moon","predictedValue":1.1}`,
		"series unknown decision": `{"shape":"series","signals":[{"decision":"buy"},{"decision":""}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			var vm ViewModel
			assert.Error(t, json.Unmarshal([]byte(body), &vm))
		})
	}
}

func TestRawString(t *testing.T) {
	var req UpdateParamsRequest
	require.NoError(t, json.Unmarshal([]byte(`{"threshold":0.0020}`), &req))
	require.NotNil(t, req.Threshold)
	assert.Equal(t, RawString("0.0020"), *req.Threshold)

	require.NoError(t, json.Unmarshal([]byte(`{"threshold":"abc"}`), &req))
	assert.Equal(t, RawString("abc"), *req.Threshold)
	assert.False(t, req.Empty())

	assert.True(t, (&UpdateParamsRequest{}).Empty())
}

func TestSignalErrorFailure(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewTransportError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, MessageTransport, err.Failure().Message)

	svc := NewServiceError(422, "")
	assert.Equal(t, MessageService, svc.Message)
	assert.Equal(t, 422, svc.Failure().Status)

	fields := []validate.FieldError{{Field: "symbol", Code: "ERR_REQUIRED"}}
	f := NewValidationError(fields).Failure()
	fields[0].Field = "changed"
	assert.Equal(t, "symbol", f.Fields[0].Field)
	assert.Equal(t, KindValidation, f.Kind)
}

func TestOutcomeAndEvent(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := State{Phase: PhaseSucceeded, SubmissionID: "sub-1", Version: 3, UpdatedAt: now, Duration: 1500 * time.Millisecond}

	o := OutcomeOf(s)
	assert.Equal(t, int64(1500), o.DurationMs)
	assert.Equal(t, now, o.FinishedAt)

	e := EventOf(s)
	assert.Equal(t, "signal.succeeded", e.Type)
	assert.Equal(t, uint64(3), e.Version)

	assert.True(t, PhaseFailed.Terminal())
	assert.False(t, PhaseLoading.Terminal())
}
