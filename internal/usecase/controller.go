package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"FxSignals/internal/domain/models"
	drepo "FxSignals/internal/domain/repository"
	"FxSignals/internal/domain/service"
	"FxSignals/internal/normalizer"
	"FxSignals/internal/params"
	xlogger "FxSignals/pkg/logger"

	"github.com/google/uuid"
)

// Submission results reported to metrics.
const (
	SubmissionAccepted   = "accepted"
	SubmissionRejected   = "rejected_in_flight"
	SubmissionValidation = "validation"
)

// Controller owns the request lifecycle. It is the only writer of lifecycle state.
type Controller struct {
	params  *params.Model
	svc     service.PredictionService
	pub     *Publisher
	metrics drepo.Metrics
	logger  *xlogger.Logger

	mu         sync.Mutex
	state      models.State
	generation uint64
	version    uint64
	inFlight   *Submission
	now        func() time.Time
}

// Submission tracks one accepted submit until it reaches a terminal state.
type Submission struct {
	ID         string
	generation uint64
	done       chan struct{}
	final      models.State
}

// Done is closed once the submission is terminal.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the submission is terminal or ctx ends.
func (s *Submission) Wait(ctx context.Context) (models.State, error) {
	select {
	case <-s.done:
		return s.final, nil
	case <-ctx.Done():
		return models.State{}, ctx.Err()
	}
}

// Result returns the terminal snapshot. It is only meaningful after Done is closed.
func (s *Submission) Result() models.State {
	<-s.done
	return s.final
}

// NewController publishes the initial idle state.
func NewController(
	pm *params.Model,
	svc service.PredictionService,
	pub *Publisher,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
) *Controller {
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	if logger == nil {
		logger = xlogger.Nop()
	}
	c := &Controller{
		params:  pm,
		svc:     svc,
		pub:     pub,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	c.state = models.State{Phase: models.PhaseIdle, UpdatedAt: c.now()}
	pub.Publish(c.state)
	return c
}

// Params returns the parameter form the controller submits from.
func (c *Controller) Params() *params.Model {
	return c.params
}

// State returns the current snapshot.
func (c *Controller) State() models.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SubmitCurrent submits the parameter form's current values.
func (c *Controller) SubmitCurrent(ctx context.Context) (*Submission, error) {
	return c.Submit(ctx, c.params.Snapshot())
}

// Submit starts a request for raw.
//
// While a request is loading it returns models.ErrSubmissionInFlight and changes nothing.
// Invalid parameters move the lifecycle to failed and return the validation *models.SignalError
// without calling the service. Otherwise the state becomes loading and exactly one call is
// made in the background; ctx cancellation does not abort it.
func (c *Controller) Submit(ctx context.Context, raw models.RawParameters) (*Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkIdleLocked(); err != nil {
		return nil, err
	}
	return c.submitLocked(ctx, raw)
}

// SubmitWith applies the non-nil fields of req to the parameter form and submits the result.
// The form is left untouched when a request is already loading.
func (c *Controller) SubmitWith(ctx context.Context, req models.UpdateParamsRequest) (*Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkIdleLocked(); err != nil {
		return nil, err
	}
	raw := c.params.Snapshot()
	if !req.Empty() {
		raw = c.params.Apply(req)
	}
	return c.submitLocked(ctx, raw)
}

func (c *Controller) checkIdleLocked() error {
	if c.state.Phase == models.PhaseLoading {
		c.metrics.RecordSubmission(SubmissionRejected)
		return models.ErrSubmissionInFlight
	}
	return nil
}

func (c *Controller) submitLocked(ctx context.Context, raw models.RawParameters) (*Submission, error) {
	c.generation++
	id := uuid.NewString()

	p, err := params.Resolve(ctx, raw)
	if err != nil {
		var se *models.SignalError
		if !errors.As(err, &se) {
			se = models.NewValidationError(nil)
			se.Err = err
		}
		c.metrics.RecordSubmission(SubmissionValidation)
		c.metrics.RecordOutcome(string(models.PhaseFailed), string(se.Kind), 0)
		c.transition(models.State{
			Phase:        models.PhaseFailed,
			SubmissionID: id,
			Failure:      se.Failure(),
		})
		c.logger.Debug("submission rejected by validation",
			xlogger.String("submission_id", id),
			xlogger.Int("fields", len(se.Fields)),
		)
		return nil, se
	}

	sub := &Submission{ID: id, generation: c.generation, done: make(chan struct{})}
	c.inFlight = sub
	c.metrics.RecordSubmission(SubmissionAccepted)
	c.metrics.SetInFlight(true)
	c.transition(models.State{
		Phase:        models.PhaseLoading,
		SubmissionID: id,
		Parameters:   &p,
	})
	c.logger.Info("submission accepted",
		xlogger.String("submission_id", id),
		xlogger.String("symbol", p.Symbol),
		xlogger.String("start_date", p.StartDate),
		xlogger.String("end_date", p.EndDate),
		xlogger.Float64("threshold", p.Threshold),
	)

	go c.run(context.WithoutCancel(ctx), sub, p)
	return sub, nil
}

func (c *Controller) run(ctx context.Context, sub *Submission, p models.TradingParameters) {
	start := time.Now()
	var (
		vm  *models.ViewModel
		err *models.SignalError
	)

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("prediction call panicked",
				xlogger.String("submission_id", sub.ID),
				xlogger.Any("panic", r),
			)
			vm, err = nil, models.NewTransportError(fmt.Errorf("panic: %v", r))
		}
		c.complete(sub, vm, err, time.Since(start))
	}()

	vm, err = c.call(ctx, sub.ID, p)
}

func (c *Controller) call(ctx context.Context, id string, p models.TradingParameters) (*models.ViewModel, *models.SignalError) {
	resp, err := c.svc.GenerateSignals(ctx, p)
	if err != nil {
		var se *models.SignalError
		if !errors.As(err, &se) {
			se = models.NewTransportError(err)
		}
		c.logger.Warn("prediction request failed",
			xlogger.String("submission_id", id),
			xlogger.Error(err),
		)
		return nil, se
	}

	if resp.Status < 200 || resp.Status > 299 {
		se := models.NewServiceError(resp.Status, normalizer.ErrorMessage(resp.Body))
		c.logger.Warn("prediction service returned error status",
			xlogger.String("submission_id", id),
			xlogger.Int("status", resp.Status),
			xlogger.String("message", se.Message),
		)
		return nil, se
	}

	vm, err := normalizer.Normalize(resp.Body)
	if err != nil {
		c.logger.Warn("prediction response could not be normalized",
			xlogger.String("submission_id", id),
			xlogger.Int("body_bytes", len(resp.Body)),
			xlogger.Error(err),
		)
		return nil, models.NewMalformedError(err)
	}
	return vm, nil
}

// complete applies a finished call unless a newer submission has started since.
func (c *Controller) complete(sub *Submission, vm *models.ViewModel, se *models.SignalError, took time.Duration) {
	c.mu.Lock()
	defer func() {
		c.mu.Unlock()
		close(sub.done)
	}()

	if c.inFlight == sub {
		c.inFlight = nil
		c.metrics.SetInFlight(false)
	}

	if sub.generation != c.generation {
		c.logger.Debug("stale prediction response discarded",
			xlogger.String("submission_id", sub.ID),
			xlogger.Uint64("generation", sub.generation),
			xlogger.Uint64("current_generation", c.generation),
		)
		sub.final = c.state
		return
	}

	next := models.State{
		SubmissionID: sub.ID,
		Parameters:   c.state.Parameters,
		Duration:     took,
	}
	kind := ""
	if se != nil {
		next.Phase = models.PhaseFailed
		next.Failure = se.Failure()
		kind = string(se.Kind)
	} else {
		next.Phase = models.PhaseSucceeded
		next.View = vm
	}
	c.metrics.RecordOutcome(string(next.Phase), kind, took)
	c.transition(next)
	sub.final = c.state

	c.logger.Info("submission finished",
		xlogger.String("submission_id", sub.ID),
		xlogger.String("phase", string(next.Phase)),
		xlogger.String("kind", kind),
		xlogger.Duration("took_ms", took),
	)
}

// transition must be called with c.mu held.
func (c *Controller) transition(s models.State) {
	c.version++
	s.Version = c.version
	s.UpdatedAt = c.now()
	c.state = s
	c.pub.Publish(s)
}
