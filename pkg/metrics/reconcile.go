package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics records reconciliation runs.
type ReconcileMetrics struct {
	duration *prometheus.HistogramVec
	stale    prometheus.Counter
	results  *prometheus.CounterVec
}

// NewReconcileMetrics registers the reconcile metrics on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconcile",
		Name:      "duration_seconds",
		Help:      "Duration of reconciliation runs in seconds.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"dimension", "outcome"})
	stale := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconcile",
		Name:      "stale_discards_total",
		Help:      "Runs discarded because a newer run was issued for the same session.",
	})
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconcile",
		Name:      "rows_total",
		Help:      "Classified rows by comparison result.",
	}, []string{"result"})
	reg.MustRegister(duration, stale, results)
	return &ReconcileMetrics{duration: duration, stale: stale, results: results}
}

// ObserveRun records a run's duration and outcome.
func (m *ReconcileMetrics) ObserveRun(dimension, outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(dimension), normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncStale records a discarded stale run.
func (m *ReconcileMetrics) IncStale() {
	if m == nil || m.stale == nil {
		return
	}
	m.stale.Inc()
}

// AddResults records classified row counts keyed by result.
func (m *ReconcileMetrics) AddResults(counts map[string]int) {
	if m == nil || m.results == nil {
		return
	}
	for result, n := range counts {
		if n <= 0 {
			continue
		}
		m.results.WithLabelValues(normalizeLabel(result)).Add(float64(n))
	}
}
