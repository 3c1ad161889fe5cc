package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome classifies how a call ended.
type Outcome string

const (
	// OutcomeSuccess: 2xx, success callback invoked.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure: non-2xx delegated to the failure callback or shown.
	OutcomeFailure Outcome = "failure"
	// OutcomeExpired: 401 outside login, session reset.
	OutcomeExpired Outcome = "expired"
	// OutcomeError: request could not be built, sent or decoded.
	OutcomeError Outcome = "error"
)

// Metrics collects dispatcher metrics.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates Metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boardclient_requests_total",
			Help: "Dispatched requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "boardclient_request_duration_seconds",
			Help:    "Time from dispatch until callbacks returned.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(m.requests, m.duration)

	return m
}

func (m *Metrics) observe(op Operation, outcome Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op.String(), string(outcome)).Inc()
	m.duration.WithLabelValues(op.String()).Observe(elapsed.Seconds())
}
