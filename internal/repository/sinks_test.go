package repository

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"FxSignals/internal/domain/models"
	pkgkafka "FxSignals/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	msgs   []pkgkafka.Message
	closed bool
}

func (w *captureWriter) Publish(_ context.Context, m pkgkafka.Message) error {
	w.msgs = append(w.msgs, m)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaEventsKeyAndHeaders(t *testing.T) {
	w := &captureWriter{}
	p := NewKafkaEvents(w)

	e := models.EventOf(models.State{
		Phase:        models.PhaseFailed,
		SubmissionID: "sub-1",
		Version:      4,
		Failure:      &models.Failure{Kind: models.KindService, Message: "nope", Status: 502},
	})
	require.NoError(t, p.Publish(context.Background(), e))
	require.NoError(t, p.Close())

	require.Len(t, w.msgs, 1)
	m := w.msgs[0]
	assert.Equal(t, []byte("sub-1"), m.Key)
	assert.Equal(t, "signal.failed", m.Headers["event_type"])

	b, err := pkgkafka.EncodeValue(m.Value)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "failed", decoded["phase"])
	assert.Equal(t, "service", decoded["error"].(map[string]interface{})["kind"])
	assert.True(t, w.closed)
}

func TestArchiveRowSuccess(t *testing.T) {
	row, err := archiveRow(outcome("s1"))
	require.NoError(t, err)
	require.Len(t, row, 17)

	assert.Equal(t, "s1", row[1])
	assert.Equal(t, "succeeded", row[2])
	assert.Equal(t, "EURUSD=X", row[3])
	assert.Equal(t, "series", row[7])
	assert.Equal(t, uint32(1), row[8])
	assert.Equal(t, "buy", row[9])
	require.NotNil(t, row[10])
	assert.Equal(t, 1.1, *row[10].(*float64))
	assert.Equal(t, 9.0, *row[11].(*float64))
	assert.Equal(t, "", row[12])
	assert.Equal(t, uint64(120), row[15])
	assert.Contains(t, row[16], `"shape":"series"`)
}

func TestArchiveRowFailure(t *testing.T) {
	row, err := archiveRow(models.Outcome{
		SubmissionID: "s2",
		Phase:        models.PhaseFailed,
		Failure:      &models.Failure{Kind: models.KindService, Message: "down", Status: 503},
	})
	require.NoError(t, err)

	assert.Equal(t, "", row[3])
	assert.Nil(t, row[10].(*float64))
	assert.Equal(t, "service", row[12])
	assert.Equal(t, "down", row[13])
	assert.Equal(t, uint16(503), row[14])
	assert.Equal(t, "", row[16])
}

func TestArchiveSchema(t *testing.T) {
	a := NewClickHouseArchive(nil, "fxsignals", "signal_runs")
	stmts := a.SchemaStatements()
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE DATABASE IF NOT EXISTS fxsignals", stmts[0])
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE TABLE IF NOT EXISTS fxsignals.signal_runs"))
}
