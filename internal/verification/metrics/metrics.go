package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the verification engine.
type Metrics struct {
	VerificationsTotal *prometheus.CounterVec
	CheckLatencyMs     *prometheus.HistogramVec
	VerifyDurationMs   prometheus.Histogram
	DegradedChecks     *prometheus.CounterVec
}

// New registers and returns verification metrics collectors.
func New() *Metrics {
	return &Metrics{
		VerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trustlayer_verifications_total",
			Help: "Completed verification runs by overall outcome",
		}, []string{"outcome"}),
		CheckLatencyMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trustlayer_check_latency_ms",
			Help:    "Collaborator check latency in milliseconds by facet",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"facet"}),
		VerifyDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustlayer_verify_duration_ms",
			Help:    "End-to-end verification latency in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		DegradedChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trustlayer_degraded_checks_total",
			Help: "Collaborator checks that degraded to the unknown outcome",
		}, []string{"facet"}),
	}
}

// ObserveCheckLatency records a single collaborator check latency.
func (m *Metrics) ObserveCheckLatency(facet string, d time.Duration) {
	m.CheckLatencyMs.WithLabelValues(facet).Observe(float64(d.Milliseconds()))
}

// ObserveVerifyLatency records a full verification run latency.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	m.VerifyDurationMs.Observe(float64(d.Milliseconds()))
}

// IncrementOutcome counts a completed run by overall outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	m.VerificationsTotal.WithLabelValues(outcome).Inc()
}

// IncrementDegraded counts a check that could not be answered.
func (m *Metrics) IncrementDegraded(facet string) {
	m.DegradedChecks.WithLabelValues(facet).Inc()
}
