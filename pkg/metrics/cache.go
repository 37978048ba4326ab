package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics counts lookups against the named reconciliation caches.
type CacheMetrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	evictions     *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewCacheMetrics registers the cache metrics on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	newCounter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      name,
			Help:      help,
		}, []string{"cache"})
	}
	m := &CacheMetrics{
		hits:          newCounter("hits_total", "Cache lookups served from a fresh entry."),
		misses:        newCounter("misses_total", "Cache lookups that found no fresh entry."),
		evictions:     newCounter("evictions_total", "Entries dropped because their TTL elapsed."),
		invalidations: newCounter("invalidations_total", "Entries removed by explicit invalidation."),
	}
	reg.MustRegister(m.hits, m.misses, m.evictions, m.invalidations)
	return m
}

// IncHit records a cache hit.
func (m *CacheMetrics) IncHit(cache string) {
	if m == nil || m.hits == nil {
		return
	}
	m.hits.WithLabelValues(normalizeLabel(cache)).Inc()
}

// IncMiss records a cache miss.
func (m *CacheMetrics) IncMiss(cache string) {
	if m == nil || m.misses == nil {
		return
	}
	m.misses.WithLabelValues(normalizeLabel(cache)).Inc()
}

// AddEvictions records TTL evictions.
func (m *CacheMetrics) AddEvictions(cache string, n int) {
	if m == nil || m.evictions == nil || n <= 0 {
		return
	}
	m.evictions.WithLabelValues(normalizeLabel(cache)).Add(float64(n))
}

// AddInvalidations records entries removed by Invalidate or InvalidateAll.
func (m *CacheMetrics) AddInvalidations(cache string, n int) {
	if m == nil || m.invalidations == nil || n <= 0 {
		return
	}
	m.invalidations.WithLabelValues(normalizeLabel(cache)).Add(float64(n))
}
