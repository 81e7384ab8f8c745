package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.InfoLevel).With(String("component", "controller"))

	l.Info("submission finished",
		String("phase", "succeeded"),
		Int("points", 3),
		Float64("threshold", 0.002),
		Duration("took_ms", 1500*time.Millisecond),
		Bool("metrics", true),
		Error(errors.New("boom")),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "submission finished", entry["message"])
	assert.Equal(t, "controller", entry["component"])
	assert.Equal(t, "succeeded", entry["phase"])
	assert.Equal(t, 3.0, entry["points"])
	assert.Equal(t, 1500.0, entry["took_ms"])
	assert.Equal(t, true, entry["metrics"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNopDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().With(Any("k", map[string]int{"a": 1})).Error("x", Strings("s", []string{"a", "b"}))
	})
}
