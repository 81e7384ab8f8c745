// Package params holds the user-editable trading parameters and turns them into
// validated request parameters at submit time.
package params

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"FxSignals/internal/domain/models"
	"FxSignals/pkg/util"
	"FxSignals/pkg/validate"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Model is the concurrency-safe parameter form. Setters never fail.
type Model struct {
	mu  sync.RWMutex
	raw models.RawParameters
}

// New returns a model holding the default parameters.
func New() *Model {
	m := &Model{}
	_ = defaults.Set(&m.raw)
	return m
}

// NewWith returns a model holding raw as given.
func NewWith(raw models.RawParameters) *Model {
	return &Model{raw: raw}
}

func (m *Model) Symbol() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.raw.Symbol
}

func (m *Model) StartDate() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.raw.StartDate
}

func (m *Model) EndDate() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.raw.EndDate
}

func (m *Model) Threshold() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.raw.Threshold
}

func (m *Model) SetSymbol(v string) {
	m.mu.Lock()
	m.raw.Symbol = v
	m.mu.Unlock()
}

func (m *Model) SetStartDate(v string) {
	m.mu.Lock()
	m.raw.StartDate = v
	m.mu.Unlock()
}

func (m *Model) SetEndDate(v string) {
	m.mu.Lock()
	m.raw.EndDate = v
	m.mu.Unlock()
}

func (m *Model) SetThreshold(v string) {
	m.mu.Lock()
	m.raw.Threshold = v
	m.mu.Unlock()
}

// Apply sets every non-nil field of req atomically and returns the new values.
func (m *Model) Apply(req models.UpdateParamsRequest) models.RawParameters {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.Symbol != nil {
		m.raw.Symbol = *req.Symbol
	}
	if req.StartDate != nil {
		m.raw.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		m.raw.EndDate = *req.EndDate
	}
	if req.Threshold != nil {
		m.raw.Threshold = string(*req.Threshold)
	}
	return m.raw
}

// Snapshot returns a copy of the raw values.
func (m *Model) Snapshot() models.RawParameters {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.raw
}

// Resolve validates the current values.
func (m *Model) Resolve(ctx context.Context) (models.TradingParameters, error) {
	return Resolve(ctx, m.Snapshot())
}

type resolvable struct {
	Symbol    string `json:"symbol" validate:"required"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Threshold string `json:"threshold" validate:"required,finite"`
}

func init() {
	validate.Instance().RegisterStructValidation(dateOrder, resolvable{})
}

func dateOrder(sl validator.StructLevel) {
	r := sl.Current().Interface().(resolvable)
	start, ok1 := util.ParseDate(r.StartDate)
	end, ok2 := util.ParseDate(r.EndDate)
	if ok1 && ok2 && start.After(end) {
		sl.ReportError(r.StartDate, "startDate", "StartDate", "date_order", "endDate")
	}
}

// Resolve trims raw, checks it and coerces the threshold. Failures are a
// *models.SignalError of kind validation listing every bad field.
func Resolve(ctx context.Context, raw models.RawParameters) (models.TradingParameters, error) {
	r := resolvable{
		Symbol:    strings.TrimSpace(raw.Symbol),
		StartDate: strings.TrimSpace(raw.StartDate),
		EndDate:   strings.TrimSpace(raw.EndDate),
		Threshold: strings.TrimSpace(raw.Threshold),
	}
	if err := validate.Struct(ctx, r); err != nil {
		return models.TradingParameters{}, models.NewValidationError(validate.FieldErrors(err))
	}

	threshold, err := strconv.ParseFloat(r.Threshold, 64)
	if err != nil {
		return models.TradingParameters{}, models.NewValidationError([]validate.FieldError{{
			Code:    "ERR_FINITE",
			Field:   "threshold",
			Message: "threshold must be a finite number",
		}})
	}

	return models.TradingParameters{
		Symbol:    r.Symbol,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Threshold: threshold,
	}, nil
}
