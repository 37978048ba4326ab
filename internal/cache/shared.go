package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quotewise/quotewise-backend/pkg/redis"
)

const globalScope = "_all"

// SharedStore is the subset of the redis client used by the shared tier.
type SharedStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Counters(ctx context.Context, keys ...string) ([]int64, error)
	CacheKey(name string, parts ...string) string
	GenerationKey(name, scope string) string
}

// Shared is a redis-backed cache tier visible to every API instance.
//
// Entries are never deleted. Each supplier code and the cache as a whole carry
// a generation counter that is folded into the entry key, so bumping a counter
// makes every entry built on the old value unreachable until its TTL expires.
type Shared[T any] struct {
	name  string
	ttl   time.Duration
	store SharedStore
	now   func() time.Time
}

// NewShared builds a shared tier. It returns nil when store is nil so callers
// can pass the result straight to NewLayered.
func NewShared[T any](name string, ttl time.Duration, store SharedStore, opts ...Option) *Shared[T] {
	if store == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Shared[T]{name: name, ttl: ttl, store: store, now: o.now}
}

// Get returns the stored entry when it exists and is still fresh.
func (s *Shared[T]) Get(ctx context.Context, codes []string, params any) (*Entry[T], bool, error) {
	key, err := s.entryKey(ctx, codes, params)
	if err != nil {
		return nil, false, err
	}
	return s.getKey(ctx, key)
}

// Stamp resolves the entry key for codes and params under the current
// generations. It changes whenever any of those generations is bumped.
func (s *Shared[T]) Stamp(ctx context.Context, codes []string, params any) (string, error) {
	return s.entryKey(ctx, codes, params)
}

func (s *Shared[T]) getKey(ctx context.Context, key string) (*Entry[T], bool, error) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("shared cache get: %w", err)
	}

	var entry Entry[T]
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, false, fmt.Errorf("shared cache decode: %w", err)
	}
	if s.now().Sub(entry.CreatedAt) > s.ttl {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Set stores data under the current generations of codes.
func (s *Shared[T]) Set(ctx context.Context, codes []string, params any, data T) error {
	normalized, digest, err := keyParts(codes, params)
	if err != nil {
		return err
	}
	key, err := s.keyFor(ctx, normalized, digest)
	if err != nil {
		return err
	}
	return s.setKey(ctx, key, normalized, digest, data)
}

func (s *Shared[T]) setKey(ctx context.Context, key string, normalized []string, digest string, data T) error {
	raw, err := json.Marshal(Entry[T]{
		Payload:   data,
		CreatedAt: s.now().UTC(),
		Codes:     normalized,
		Params:    digest,
	})
	if err != nil {
		return fmt.Errorf("shared cache encode: %w", err)
	}
	if err := s.store.Set(ctx, key, raw, s.ttl); err != nil {
		return fmt.Errorf("shared cache set: %w", err)
	}
	return nil
}

// Invalidate bumps the generation of every code in codes.
func (s *Shared[T]) Invalidate(ctx context.Context, codes []string) error {
	for _, code := range NormalizeCodes(codes) {
		if _, err := s.store.Incr(ctx, s.store.GenerationKey(s.name, code)); err != nil {
			return fmt.Errorf("shared cache invalidate %s: %w", code, err)
		}
	}
	return nil
}

// InvalidateAll bumps the cache-wide generation.
func (s *Shared[T]) InvalidateAll(ctx context.Context) error {
	if _, err := s.store.Incr(ctx, s.store.GenerationKey(s.name, globalScope)); err != nil {
		return fmt.Errorf("shared cache invalidate all: %w", err)
	}
	return nil
}

func (s *Shared[T]) entryKey(ctx context.Context, codes []string, params any) (string, error) {
	normalized, digest, err := keyParts(codes, params)
	if err != nil {
		return "", err
	}
	return s.keyFor(ctx, normalized, digest)
}

func (s *Shared[T]) keyFor(ctx context.Context, codes []string, digest string) (string, error) {
	genKeys := make([]string, 0, len(codes)+1)
	genKeys = append(genKeys, s.store.GenerationKey(s.name, globalScope))
	for _, code := range codes {
		genKeys = append(genKeys, s.store.GenerationKey(s.name, code))
	}
	gens, err := s.store.Counters(ctx, genKeys...)
	if err != nil {
		return "", fmt.Errorf("shared cache generations: %w", err)
	}

	var b strings.Builder
	b.WriteString("g")
	b.WriteString(strconv.FormatInt(gens[0], 10))
	for i, code := range codes {
		b.WriteString("\x1f")
		b.WriteString(code)
		b.WriteString("\x1d")
		b.WriteString(strconv.FormatInt(gens[i+1], 10))
	}
	b.WriteString("\x1e")
	b.WriteString(digest)

	sum := sha256.Sum256([]byte(b.String()))
	return s.store.CacheKey(s.name, hex.EncodeToString(sum[:])), nil
}
