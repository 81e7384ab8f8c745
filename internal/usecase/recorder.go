package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"FxSignals/internal/domain/models"
	drepo "FxSignals/internal/domain/repository"
	xlogger "FxSignals/pkg/logger"
)

const (
	recorderBuffer   = 64
	sinkWriteTimeout = 5 * time.Second
)

// Recorder forwards published snapshots to the history, event and archive sinks.
// Sink failures are logged and counted; they never feed back into the lifecycle.
type Recorder struct {
	pub     *Publisher
	history drepo.HistoryStore
	events  drepo.EventPublisher
	archive drepo.RunArchive
	metrics drepo.Metrics
	logger  *xlogger.Logger

	cancel func()
	wg     sync.WaitGroup
}

// NewRecorder builds a recorder. events and archive may be nil when disabled.
func NewRecorder(
	pub *Publisher,
	history drepo.HistoryStore,
	events drepo.EventPublisher,
	archive drepo.RunArchive,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
) *Recorder {
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &Recorder{
		pub:     pub,
		history: history,
		events:  events,
		archive: archive,
		metrics: metrics,
		logger:  logger,
	}
}

// Start subscribes to the publisher and handles snapshots until Stop or ctx ends.
func (r *Recorder) Start(ctx context.Context) {
	ch, cancel := r.pub.Subscribe(recorderBuffer)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case s, ok := <-ch:
				if !ok {
					return
				}
				r.Handle(ctx, s)
			}
		}
	}()
}

// Stop ends the subscription and waits for the loop to exit.
func (r *Recorder) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

// Handle records one snapshot.
func (r *Recorder) Handle(ctx context.Context, s models.State) {
	if s.SubmissionID == "" {
		return
	}

	if r.events != nil {
		r.write(ctx, "events", s, func(ctx context.Context) error {
			return r.events.Publish(ctx, models.EventOf(s))
		})
	}

	if !s.Phase.Terminal() {
		return
	}
	o := models.OutcomeOf(s)

	if r.history != nil {
		r.write(ctx, "history", s, func(ctx context.Context) error {
			return r.history.Save(ctx, o)
		})
	}
	if r.archive != nil {
		r.write(ctx, "archive", s, func(ctx context.Context) error {
			return r.archive.Append(ctx, o)
		})
	}
}

func (r *Recorder) write(ctx context.Context, sink string, s models.State, fn func(context.Context) error) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkWriteTimeout)
	defer cancel()

	if err := fn(wctx); err != nil {
		r.metrics.RecordSinkError(sink)
		r.logger.Warn("sink write failed",
			xlogger.String("sink", sink),
			xlogger.String("submission_id", s.SubmissionID),
			xlogger.String("phase", string(s.Phase)),
			xlogger.Error(err),
		)
	}
}

// Outcome returns the terminal outcome of one submission.
func (r *Recorder) Outcome(ctx context.Context, id string) (models.Outcome, error) {
	if r.history == nil {
		return models.Outcome{}, models.ErrOutcomeNotFound
	}
	o, err := r.history.Get(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrOutcomeNotFound) {
			return models.Outcome{}, err
		}
		return models.Outcome{}, fmt.Errorf("outcome %s: %w", id, err)
	}
	return o, nil
}

// Recent lists up to n newest terminal outcomes.
func (r *Recorder) Recent(ctx context.Context, n int) ([]models.Outcome, error) {
	if r.history == nil {
		return []models.Outcome{}, nil
	}
	out, err := r.history.Recent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("recent outcomes: %w", err)
	}
	return out, nil
}
