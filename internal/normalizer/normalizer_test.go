package normalizer

import (
	"errors"
	"testing"

	"FxSignals/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const perf = `{"sharpeRatio": 1, "cumulativeReturns": 2}`

func TestNormalizeSeries(t *testing.T) {
	body := []byte(`{
		"signals": [
			{"date": "2022-01-03", "signal": "BUY", "predicted_price": 1.1301},
			{"date": "2022-01-04", "signal": "wait"},
			{"timestamp": "2022-01-05", "action": "sell", "price": 1.12}
		],
		"performance": {"sharpeRatio": 1.42, "cumulativeReturns": 12.5}
	}`)

	vm, err := Normalize(body)
	require.NoError(t, err)
	assert.Equal(t, models.ShapeSeries, vm.Shape())
	require.Equal(t, 3, vm.Len())

	pts := vm.Points()
	assert.Equal(t, models.DecisionBuy, pts[0].Decision)
	assert.Equal(t, "2022-01-03", pts[0].Timestamp)
	v, ok := pts[0].Value()
	assert.True(t, ok)
	assert.InDelta(t, 1.1301, v, 1e-9)

	assert.Equal(t, models.DecisionHold, pts[1].Decision)
	_, ok = pts[1].Value()
	assert.False(t, ok)

	assert.Equal(t, models.DecisionSell, pts[2].Decision)
	assert.Equal(t, "2022-01-05", pts[2].Timestamp)

	m, ok := vm.Metrics()
	require.True(t, ok)
	assert.Equal(t, models.Metrics{SharpeRatio: 1.42, CumulativeReturns: 12.5}, m)
}

func TestNormalizeBareStringSeries(t *testing.T) {
	body := []byte(`{"signals": ["buy", "hold", "Sell"], "performance": {"sharpe_ratio": 0.9, "cumulative_returns": 7}}`)

	vm, err := Normalize(body)
	require.NoError(t, err)
	require.Equal(t, 3, vm.Len())
	assert.Equal(t, models.DecisionSell, vm.Points()[2].Decision)
	m, ok := vm.Metrics()
	require.True(t, ok)
	assert.Equal(t, 7.0, m.CumulativeReturns)
}

func TestNormalizeSeriesWithEmptyPerformanceIsMalformed(t *testing.T) {
	vm, err := Normalize([]byte(`{"signals": ["buy", "sell"], "performance": {}}`))
	assert.Nil(t, vm)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestNormalizeUnixTimestamp(t *testing.T) {
	vm, err := Normalize([]byte(`{"signals": [{"time": 1641168000, "signal": "buy"}], "performance": ` + perf + `}`))
	require.NoError(t, err)
	assert.Equal(t, "2022-01-03T00:00:00Z", vm.Points()[0].Timestamp)

	vm, err = Normalize([]byte(`{"signals": [{"date": 1641168000000, "signal": "buy"}], "performance": ` + perf + `}`))
	require.NoError(t, err)
	assert.Equal(t, "2022-01-03T00:00:00Z", vm.Points()[0].Timestamp)

	for _, ts := range []string{"-5", "1641168000000000", "1641168000.5"} {
		_, err = Normalize([]byte(`{"signals": [{"time": ` + ts + `, "signal": "buy"}], "performance": ` + perf + `}`))
		assert.ErrorIs(t, err, ErrMalformed, ts)
	}
}

func TestNormalizePoint(t *testing.T) {
	vm, err := Normalize([]byte(`{"signal": "Buy", "predicted_price": 1.0875}`))
	require.NoError(t, err)
	assert.Equal(t, models.ShapePoint, vm.Shape())
	d, ok := vm.Decision()
	require.True(t, ok)
	assert.Equal(t, models.DecisionBuy, d)
	v, ok := vm.PredictedValue()
	require.True(t, ok)
	assert.Equal(t, 1.0875, v)
	_, ok = vm.Metrics()
	assert.False(t, ok)
}

func TestNormalizeSeriesWinsOverPoint(t *testing.T) {
	body := []byte(`{"signal": "buy", "predicted_price": 1, "signals": ["sell", "sell"], "performance": {"sharpeRatio": 1, "cumulativeReturns": 2}}`)
	vm, err := Normalize(body)
	require.NoError(t, err)
	assert.Equal(t, models.ShapeSeries, vm.Shape())
	assert.Equal(t, 2, vm.Len())
}

func TestNormalizeSignalsWithoutPerformanceFallsBackToPoint(t *testing.T) {
	vm, err := Normalize([]byte(`{"signals": ["sell"], "signal": "hold", "predicted_price": 1.2}`))
	require.NoError(t, err)
	assert.Equal(t, models.ShapePoint, vm.Shape())
}

func TestNormalizeMalformed(t *testing.T) {
	bodies := map[string]string{
		"empty":                  ``,
		"not json":               `<html>oops</html>`,
		"array root":             `["buy"]`,
		"string root":            `"buy"`,
		"empty object":           `{}`,
		"price as string":        `{"signal": "buy", "predicted_price": "1.08"}`,
		"signal missing":         `{"predicted_price": 1.08}`,
		"unknown point decision": `{"signal": "moon", "predicted_price": 1.08}`,
		"unknown series entry":   `{"signals": ["buy", "moon"], "performance": {"sharpeRatio": 1, "cumulativeReturns": 2}}`,
		"entry without decision": `{"signals": [{"date": "2022-01-01"}], "performance": {"sharpeRatio": 1, "cumulativeReturns": 2}}`,
		"numeric entry":          `{"signals": [1], "performance": {"sharpeRatio": 1, "cumulativeReturns": 2}}`,
		"non numeric value":      `{"signals": [{"signal": "buy", "price": "x"}], "performance": {"sharpeRatio": 1, "cumulativeReturns": 2}}`,
		"non numeric sharpe":     `{"signals": ["buy"], "performance": {"sharpeRatio": "high", "cumulativeReturns": 1}}`,
		"missing returns":        `{"signals": ["buy"], "performance": {"sharpeRatio": 1}}`,
		"performance not object": `{"signals": ["buy"], "performance": 3}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			vm, err := Normalize([]byte(body))
			assert.Nil(t, vm)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail": "symbol not found"}`, "symbol not found"},
		{`{"message": "bad range"}`, "bad range"},
		{`{"error": "boom"}`, "boom"},
		{`{"error": {"message": "nested boom"}}`, "nested boom"},
		{`{"detail": [{"loc": ["body", "symbol"], "msg": "field required"}]}`, "field required"},
		{`{"detail": "  ", "message": "fallthrough"}`, "fallthrough"},
		{`{"status": 500}`, ""},
		{`Internal Server Error`, ""},
		{``, ""},
		{`[1,2]`, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorMessage([]byte(tt.body)), tt.body)
	}
}
