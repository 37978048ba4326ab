package reconcile

import (
	"context"
	"time"

	"github.com/quotewise/quotewise-backend/internal/cache"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/logger"
	"github.com/quotewise/quotewise-backend/pkg/metrics"
)

// Caches holds the independent caches used while loading reconcile inputs.
type Caches struct {
	Quotations *cache.Layered[[]models.SupplierQuotation]
	Inventory  *cache.Layered[[]models.InventorySummary]
	UPCMap     *cache.Layered[map[string][]string]
}

// CacheOptions configures NewCaches. Shared may be nil for a memory-only setup.
type CacheOptions struct {
	TTL     time.Duration
	Shared  cache.SharedStore
	Metrics *metrics.CacheMetrics
	Logger  *logger.Logger
	Clock   func() time.Time
}

// NewCaches builds the quotation, inventory and UPC map caches.
func NewCaches(opts CacheOptions) Caches {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	cacheOpts := []cache.Option{cache.WithMetrics(opts.Metrics)}
	if opts.Clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(opts.Clock))
	}
	return Caches{
		Quotations: newLayered[[]models.SupplierQuotation]("quotations", ttl, opts, cacheOpts),
		Inventory:  newLayered[[]models.InventorySummary]("inventory", ttl, opts, cacheOpts),
		UPCMap:     newLayered[map[string][]string]("upc_sku", ttl, opts, cacheOpts),
	}
}

func newLayered[T any](name string, ttl time.Duration, opts CacheOptions, cacheOpts []cache.Option) *cache.Layered[T] {
	local := cache.New[T](name, ttl, cacheOpts...)
	shared := cache.NewShared[T](name, ttl, opts.Shared, cacheOpts...)
	return cache.NewLayered(local, shared, opts.Logger)
}

// Invalidate drops entries for codes from every cache.
func (c Caches) Invalidate(ctx context.Context, codes []string) {
	c.group().Invalidate(ctx, codes)
}

// InvalidateAll clears every cache.
func (c Caches) InvalidateAll(ctx context.Context) {
	c.group().InvalidateAll(ctx)
}

func (c Caches) group() cache.Group {
	var g cache.Group
	if c.Quotations != nil {
		g = append(g, c.Quotations)
	}
	if c.Inventory != nil {
		g = append(g, c.Inventory)
	}
	if c.UPCMap != nil {
		g = append(g, c.UPCMap)
	}
	return g
}
