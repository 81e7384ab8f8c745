package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FxSignals/internal/domain/models"
	xhttp "FxSignals/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var params = models.TradingParameters{
	Symbol:    "EURUSD=X",
	StartDate: "2022-01-01",
	EndDate:   "2023-01-01",
	Threshold: 0.002,
}

func TestGenerateSignalsSendsContract(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate-signals", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"signal":"buy","predicted_price":1.1}`))
	}))
	defer srv.Close()

	c := NewWithClient(srv.URL+"/", "/api/generate-signals", xhttp.NewClient())
	resp, err := c.GenerateSignals(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"signal":"buy","predicted_price":1.1}`, string(resp.Body))
	assert.Equal(t, map[string]interface{}{
		"symbol":     "EURUSD=X",
		"start_date": "2022-01-01",
		"end_date":   "2023-01-01",
		"threshold":  0.002,
	}, got)
}

func TestGenerateSignalsReturnsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"bad symbol"}`))
	}))
	defer srv.Close()

	c := NewWithClient(srv.URL, "/x", xhttp.NewClient())
	resp, err := c.GenerateSignals(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Contains(t, string(resp.Body), "bad symbol")
}

func TestGenerateSignalsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewWithClient(srv.URL, "/x", xhttp.NewClient(xhttp.WithTimeout(20*time.Millisecond)))
	_, err := c.GenerateSignals(context.Background(), params)
	require.Error(t, err)

	var se *models.SignalError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, models.KindTransport, se.Kind)
	assert.Equal(t, models.MessageTransport, se.Message)
}
