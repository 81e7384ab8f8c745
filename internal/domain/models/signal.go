package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Decision is a trading action.
type Decision string

const (
	DecisionBuy  Decision = "buy"
	DecisionSell Decision = "sell"
	DecisionHold Decision = "hold"
)

// ParseDecision reads a decision case-insensitively. "wait" is an alias of hold.
func ParseDecision(s string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return DecisionBuy, true
	case "sell":
		return DecisionSell, true
	case "hold", "wait":
		return DecisionHold, true
	default:
		return "", false
	}
}

// Shape tells whether a view model holds one point or a series.
type Shape string

const (
	ShapePoint  Shape = "point"
	ShapeSeries Shape = "series"
)

// SignalPoint is one decision, optionally dated and priced.
type SignalPoint struct {
	Decision       Decision `json:"decision"`
	Timestamp      string   `json:"timestamp,omitempty"`
	PredictedValue *float64 `json:"predictedValue"`
}

// Value returns the predicted value and whether it is present.
func (p SignalPoint) Value() (float64, bool) {
	if p.PredictedValue == nil {
		return 0, false
	}
	return *p.PredictedValue, true
}

func (p SignalPoint) clone() SignalPoint {
	if p.PredictedValue != nil {
		v := *p.PredictedValue
		p.PredictedValue = &v
	}
	return p
}

// Metrics are backtest performance figures. CumulativeReturns is a percentage.
type Metrics struct {
	SharpeRatio       float64 `json:"sharpeRatio"`
	CumulativeReturns float64 `json:"cumulativeReturns"`
}

// ViewModel is the canonical, read-only result of one submission.
type ViewModel struct {
	shape   Shape
	points  []SignalPoint
	metrics *Metrics
}

// NewPointViewModel builds a single-decision result without metrics.
func NewPointViewModel(d Decision, value float64) *ViewModel {
	return &ViewModel{
		shape:  ShapePoint,
		points: []SignalPoint{{Decision: d, PredictedValue: &value}},
	}
}

// NewSeriesViewModel builds a series result. points and m are copied.
func NewSeriesViewModel(points []SignalPoint, m *Metrics) *ViewModel {
	vm := &ViewModel{
		shape:  ShapeSeries,
		points: make([]SignalPoint, len(points)),
	}
	for i, p := range points {
		vm.points[i] = p.clone()
	}
	if m != nil {
		mc := *m
		vm.metrics = &mc
	}
	return vm
}

func (vm *ViewModel) Shape() Shape {
	return vm.shape
}

// Len is the number of decisions.
func (vm *ViewModel) Len() int {
	return len(vm.points)
}

// Points returns a copy of every decision in order.
func (vm *ViewModel) Points() []SignalPoint {
	out := make([]SignalPoint, len(vm.points))
	for i, p := range vm.points {
		out[i] = p.clone()
	}
	return out
}

// Decision returns the decision of a point result, or the latest decision of a series.
func (vm *ViewModel) Decision() (Decision, bool) {
	if len(vm.points) == 0 {
		return "", false
	}
	return vm.points[len(vm.points)-1].Decision, true
}

// PredictedValue returns the value of a point result, or the latest value of a series.
func (vm *ViewModel) PredictedValue() (float64, bool) {
	if len(vm.points) == 0 {
		return 0, false
	}
	return vm.points[len(vm.points)-1].Value()
}

// Metrics returns a copy of the metrics and whether they exist.
func (vm *ViewModel) Metrics() (Metrics, bool) {
	if vm.metrics == nil {
		return Metrics{}, false
	}
	return *vm.metrics, true
}

type viewModelJSON struct {
	Shape          Shape         `json:"shape"`
	Decision       Decision      `json:"decision,omitempty"`
	PredictedValue *float64      `json:"predictedValue,omitempty"`
	Signals        []SignalPoint `json:"signals,omitempty"`
	Metrics        *Metrics      `json:"metrics,omitempty"`
}

func (vm *ViewModel) MarshalJSON() ([]byte, error) {
	out := viewModelJSON{Shape: vm.shape, Metrics: vm.metrics}
	switch vm.shape {
	case ShapePoint:
		if len(vm.points) == 1 {
			out.Decision = vm.points[0].Decision
			out.PredictedValue = vm.points[0].PredictedValue
		}
	default:
		out.Signals = vm.points
		if out.Signals == nil {
			out.Signals = []SignalPoint{}
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a view model written by MarshalJSON, e.g. from a history store.
func (vm *ViewModel) UnmarshalJSON(b []byte) error {
	var in viewModelJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	switch in.Shape {
	case ShapePoint:
		if in.PredictedValue == nil {
			return fmt.Errorf("point view model without predictedValue")
		}
		d, ok := ParseDecision(string(in.Decision))
		if !ok {
			return fmt.Errorf("point view model with invalid decision '%s'", in.Decision)
		}
		*vm = *NewPointViewModel(d, *in.PredictedValue)
	case ShapeSeries:
		for i, p := range in.Signals {
			d, ok := ParseDecision(string(p.Decision))
			if !ok {
				return fmt.Errorf("signals[%d]: invalid decision '%s'", i, p.Decision)
			}
			in.Signals[i].Decision = d
		}
		*vm = *NewSeriesViewModel(in.Signals, in.Metrics)
	default:
		return fmt.Errorf("unknown view model shape '%s'", in.Shape)
	}
	return nil
}
