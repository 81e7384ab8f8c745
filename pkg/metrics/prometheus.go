package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	submissions *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	sinkErrors  *prometheus.CounterVec
	inFlight    prometheus.Gauge
	latency     prometheus.Histogram
}

// New registers the signal collectors on reg. A nil reg uses the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		submissions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxsignals_submissions_total",
				Help: "Submission attempts by result (accepted, rejected_in_flight, validation)",
			},
			[]string{"result"},
		),
		outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxsignals_outcomes_total",
				Help: "Completed requests by terminal phase and error kind",
			},
			[]string{"phase", "kind"},
		),
		sinkErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxsignals_sink_errors_total",
				Help: "Failures writing snapshots to downstream sinks",
			},
			[]string{"sink"},
		),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "fxsignals_request_in_flight",
			Help: "1 while a prediction request is outstanding",
		}),
		latency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxsignals_prediction_duration_seconds",
			Help:    "Latency of calls to the prediction service",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
	}
}

// RecordSubmission counts a submit attempt.
func (r *Recorder) RecordSubmission(result string) {
	r.submissions.WithLabelValues(result).Inc()
}

// RecordOutcome counts a terminal transition. kind is empty on success.
func (r *Recorder) RecordOutcome(phase, kind string, took time.Duration) {
	r.outcomes.WithLabelValues(phase, kind).Inc()
	if took > 0 {
		r.latency.Observe(took.Seconds())
	}
}

// SetInFlight toggles the in-flight gauge.
func (r *Recorder) SetInFlight(on bool) {
	if on {
		r.inFlight.Set(1)
		return
	}
	r.inFlight.Set(0)
}

// RecordSinkError counts a failed sink write.
func (r *Recorder) RecordSinkError(sink string) {
	r.sinkErrors.WithLabelValues(sink).Inc()
}
