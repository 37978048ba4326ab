// Package cache memoizes supplier-scoped query results for a short freshness window.
package cache

import (
	"sync"
	"time"

	"github.com/quotewise/quotewise-backend/pkg/metrics"
)

// DefaultTTL is the freshness window applied when none is configured.
const DefaultTTL = 5 * time.Minute

// Entry is one memoized payload and the selection that produced it.
type Entry[T any] struct {
	Payload   T         `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	Codes     []string  `json:"codes"`
	Params    string    `json:"params"`
	// Stamp is the shared-tier key the entry was built under. Local hits
	// must still resolve to it.
	Stamp string `json:"-"`
}

// Stats reports lookup counters since the cache was created.
type Stats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Evictions     int64 `json:"evictions"`
	Invalidations int64 `json:"invalidations"`
	Entries       int   `json:"entries"`
}

// Option customizes a Cache.
type Option func(*options)

type options struct {
	now     func() time.Time
	metrics *metrics.CacheMetrics
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMetrics reports lookups to the given collector.
func WithMetrics(m *metrics.CacheMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Cache is an in-process TTL cache keyed by supplier-code set and params.
// It is safe for concurrent use.
type Cache[T any] struct {
	name    string
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.CacheMetrics

	mu      sync.Mutex
	entries map[string]*Entry[T]
	stats   Stats
}

// New builds an empty cache. A non-positive ttl falls back to DefaultTTL.
func New[T any](name string, ttl time.Duration, opts ...Option) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		name:    name,
		ttl:     ttl,
		now:     o.now,
		metrics: o.metrics,
		entries: make(map[string]*Entry[T]),
	}
}

// Name identifies the cache in logs and metrics.
func (c *Cache[T]) Name() string { return c.name }

// TTL returns the freshness window.
func (c *Cache[T]) TTL() time.Duration { return c.ttl }

// Get returns the payload stored for codes and params when it is still fresh.
// A stale entry is evicted and reported as a miss.
func (c *Cache[T]) Get(codes []string, params any) (T, bool) {
	return c.getStamped(codes, params, "")
}

// getStamped is Get for entries written under a shared-tier stamp. An entry
// whose stamp differs from stamp was superseded and is evicted.
func (c *Cache[T]) getStamped(codes []string, params any, stamp string) (T, bool) {
	var zero T
	key, err := Key(codes, params)
	if err != nil {
		c.miss()
		return zero, false
	}

	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		c.mu.Unlock()
		c.metrics.IncMiss(c.name)
		return zero, false
	}
	if entry.Stamp != stamp || c.now().Sub(entry.CreatedAt) > c.ttl {
		delete(c.entries, key)
		c.stats.Misses++
		c.stats.Evictions++
		c.mu.Unlock()
		c.metrics.IncMiss(c.name)
		c.metrics.AddEvictions(c.name, 1)
		return zero, false
	}
	c.stats.Hits++
	payload := entry.Payload
	c.mu.Unlock()

	c.metrics.IncHit(c.name)
	return payload, true
}

// Set stores data for codes and params, replacing any entry at that key.
func (c *Cache[T]) Set(codes []string, params any, data T) {
	c.setAt(codes, params, data, c.now(), "")
}

func (c *Cache[T]) setAt(codes []string, params any, data T, createdAt time.Time, stamp string) {
	normalized, digest, err := keyParts(codes, params)
	if err != nil {
		return
	}
	entry := &Entry[T]{
		Payload:   data,
		CreatedAt: createdAt,
		Codes:     normalized,
		Params:    digest,
		Stamp:     stamp,
	}

	c.mu.Lock()
	c.entries[joinKey(normalized, digest)] = entry
	c.mu.Unlock()
}

// Invalidate removes every entry whose supplier codes intersect codes and
// returns how many were removed.
func (c *Cache[T]) Invalidate(codes []string) int {
	targets := codeSet(codes)
	if len(targets) == 0 {
		return 0
	}

	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if intersects(entry.Codes, targets) {
			delete(c.entries, key)
			removed++
		}
	}
	c.stats.Invalidations += int64(removed)
	c.mu.Unlock()

	c.metrics.AddInvalidations(c.name, removed)
	return removed
}

// InvalidateAll clears the cache and returns how many entries were removed.
func (c *Cache[T]) InvalidateAll() int {
	c.mu.Lock()
	removed := len(c.entries)
	c.entries = make(map[string]*Entry[T])
	c.stats.Invalidations += int64(removed)
	c.mu.Unlock()

	c.metrics.AddInvalidations(c.name, removed)
	return removed
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the lookup counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.stats
	stats.Entries = len(c.entries)
	return stats
}

func (c *Cache[T]) miss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
	c.metrics.IncMiss(c.name)
}
