package cache

import (
	"context"

	"github.com/quotewise/quotewise-backend/pkg/logger"
)

// Invalidator drops cached entries after writes that change supplier data.
type Invalidator interface {
	Invalidate(ctx context.Context, codes []string)
	InvalidateAll(ctx context.Context)
}

// Group fans invalidations out to several caches.
type Group []Invalidator

// Invalidate forwards to every member.
func (g Group) Invalidate(ctx context.Context, codes []string) {
	for _, inv := range g {
		if inv != nil {
			inv.Invalidate(ctx, codes)
		}
	}
}

// InvalidateAll forwards to every member.
func (g Group) InvalidateAll(ctx context.Context) {
	for _, inv := range g {
		if inv != nil {
			inv.InvalidateAll(ctx)
		}
	}
}

// Layered reads the local cache first and then the optional shared tier.
// Shared tier failures are logged and treated as misses.
//
// With a shared tier, local entries carry the generation stamp they were
// written under and only hit while the stamp is current, so an invalidation on
// any instance also retires the local copies on every other instance.
type Layered[T any] struct {
	local  *Cache[T]
	shared *Shared[T]
	logg   *logger.Logger
}

// NewLayered composes a local cache with an optional shared tier.
func NewLayered[T any](local *Cache[T], shared *Shared[T], logg *logger.Logger) *Layered[T] {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Layered[T]{local: local, shared: shared, logg: logg}
}

// Local exposes the in-process tier.
func (l *Layered[T]) Local() *Cache[T] { return l.local }

// Get returns a fresh payload from either tier. Shared hits are copied into
// the local tier with their original creation time.
func (l *Layered[T]) Get(ctx context.Context, codes []string, params any) (T, bool) {
	var zero T
	if l.shared == nil {
		return l.local.Get(codes, params)
	}
	stamp, err := l.shared.Stamp(ctx, codes, params)
	if err != nil {
		l.warn(ctx, "shared cache generations failed", err)
		return zero, false
	}
	if data, ok := l.local.getStamped(codes, params, stamp); ok {
		return data, true
	}
	entry, ok, err := l.shared.getKey(ctx, stamp)
	if err != nil {
		l.warn(ctx, "shared cache read failed", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}
	l.local.setAt(codes, params, entry.Payload, entry.CreatedAt, stamp)
	return entry.Payload, true
}

// Set writes to both tiers.
func (l *Layered[T]) Set(ctx context.Context, codes []string, params any, data T) {
	if l.shared == nil {
		l.local.Set(codes, params, data)
		return
	}
	normalized, digest, err := keyParts(codes, params)
	if err != nil {
		return
	}
	stamp, err := l.shared.keyFor(ctx, normalized, digest)
	if err != nil {
		l.warn(ctx, "shared cache write failed", err)
		return
	}
	l.local.setAt(codes, params, data, l.local.now(), stamp)
	if err := l.shared.setKey(ctx, stamp, normalized, digest, data); err != nil {
		l.warn(ctx, "shared cache write failed", err)
	}
}

// GetOrLoad returns the cached payload or calls load and caches its result.
// Load errors are returned and nothing is cached.
func (l *Layered[T]) GetOrLoad(ctx context.Context, codes []string, params any, load func(context.Context) (T, error)) (T, error) {
	if data, ok := l.Get(ctx, codes, params); ok {
		return data, nil
	}
	data, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	l.Set(ctx, codes, params, data)
	return data, nil
}

// Invalidate removes entries for codes from both tiers.
func (l *Layered[T]) Invalidate(ctx context.Context, codes []string) {
	l.local.Invalidate(codes)
	if l.shared == nil {
		return
	}
	if err := l.shared.Invalidate(ctx, codes); err != nil {
		l.warn(ctx, "shared cache invalidate failed", err)
	}
}

// InvalidateAll clears both tiers.
func (l *Layered[T]) InvalidateAll(ctx context.Context) {
	l.local.InvalidateAll()
	if l.shared == nil {
		return
	}
	if err := l.shared.InvalidateAll(ctx); err != nil {
		l.warn(ctx, "shared cache invalidate all failed", err)
	}
}

func (l *Layered[T]) warn(ctx context.Context, msg string, err error) {
	ctx = l.logg.WithFields(ctx, map[string]any{"cache": l.local.Name(), "error": err.Error()})
	l.logg.Warn(ctx, msg)
}
