package models

import "time"

// Phase is the lifecycle tag.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// Terminal reports whether the phase ends a submission.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// State is one snapshot of the lifecycle. It is passed by value; View is immutable.
type State struct {
	Phase        Phase              `json:"phase"`
	SubmissionID string             `json:"submissionId,omitempty"`
	Version      uint64             `json:"version"`
	Parameters   *TradingParameters `json:"parameters,omitempty"`
	View         *ViewModel         `json:"view,omitempty"`
	Failure      *Failure           `json:"error,omitempty"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	// Duration is set on terminal snapshots that made an outbound call.
	Duration time.Duration `json:"-"`
}

// Visibility says which presentation panels should be shown for a state.
type Visibility struct {
	Form       bool `json:"form"`
	Loading    bool `json:"loading"`
	Error      bool `json:"error"`
	Chart      bool `json:"chart"`
	Metrics    bool `json:"metrics"`
	HasMetrics bool `json:"hasMetrics"`
}

// Outcome is a terminal snapshot as kept by history and archive sinks.
type Outcome struct {
	SubmissionID string             `json:"submissionId"`
	Phase        Phase              `json:"phase"`
	Parameters   *TradingParameters `json:"parameters,omitempty"`
	View         *ViewModel         `json:"view,omitempty"`
	Failure      *Failure           `json:"error,omitempty"`
	DurationMs   int64              `json:"durationMs"`
	FinishedAt   time.Time          `json:"finishedAt"`
}

// OutcomeOf converts a terminal snapshot.
func OutcomeOf(s State) Outcome {
	return Outcome{
		SubmissionID: s.SubmissionID,
		Phase:        s.Phase,
		Parameters:   s.Parameters,
		View:         s.View,
		Failure:      s.Failure,
		DurationMs:   s.Duration.Milliseconds(),
		FinishedAt:   s.UpdatedAt,
	}
}

// Event is the lifecycle message published for every snapshot.
type Event struct {
	Type         string             `json:"type"`
	SubmissionID string             `json:"submissionId"`
	Version      uint64             `json:"version"`
	Phase        Phase              `json:"phase"`
	Parameters   *TradingParameters `json:"parameters,omitempty"`
	View         *ViewModel         `json:"view,omitempty"`
	Failure      *Failure           `json:"error,omitempty"`
	At           time.Time          `json:"at"`
}

// EventOf converts a snapshot into an event.
func EventOf(s State) Event {
	return Event{
		Type:         "signal." + string(s.Phase),
		SubmissionID: s.SubmissionID,
		Version:      s.Version,
		Phase:        s.Phase,
		Parameters:   s.Parameters,
		View:         s.View,
		Failure:      s.Failure,
		At:           s.UpdatedAt,
	}
}
