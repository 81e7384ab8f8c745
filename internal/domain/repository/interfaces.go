package repository

import (
	"context"
	"time"

	"FxSignals/internal/domain/models"
)

// HistoryStore keeps recent terminal outcomes.
type HistoryStore interface {
	Save(ctx context.Context, o models.Outcome) error
	// Recent returns up to n outcomes, newest first.
	Recent(ctx context.Context, n int) ([]models.Outcome, error)
	// Get returns the outcome of one submission or models.ErrOutcomeNotFound.
	Get(ctx context.Context, id string) (models.Outcome, error)
	Close() error
}

// EventPublisher emits lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, e models.Event) error
	Close() error
}

// RunArchive appends terminal outcomes to long-term storage.
type RunArchive interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, o models.Outcome) error
	Close() error
}

type Metrics interface {
	RecordSubmission(result string)
	RecordOutcome(phase, kind string, took time.Duration)
	SetInFlight(on bool)
	RecordSinkError(sink string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordSubmission(string)                     {}
func (NopMetrics) RecordOutcome(string, string, time.Duration) {}
func (NopMetrics) SetInFlight(bool)                            {}
func (NopMetrics) RecordSinkError(string)                      {}
