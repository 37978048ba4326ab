package bindings

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotewise/quotewise-backend/pkg/db/models"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
)

type memoryStore struct {
	mu    sync.Mutex
	rows  map[Key]models.SkuBinding
	calls int
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[Key]models.SkuBinding{}}
}

func (m *memoryStore) Find(_ context.Context, keys []Key) ([]models.SkuBinding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []models.SkuBinding
	for _, k := range keys {
		if row, ok := m.rows[k]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memoryStore) Upsert(_ context.Context, b models.SkuBinding) (*models.SkuBinding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.rows[Key{b.SupplierCode, b.SupplierProductCode}] = b
	return &b, nil
}

func (m *memoryStore) Delete(_ context.Context, key Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.rows[key]
	delete(m.rows, key)
	return ok, nil
}

type recordingInvalidator struct {
	codes [][]string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, codes []string) {
	r.codes = append(r.codes, codes)
}

func (r *recordingInvalidator) InvalidateAll(context.Context) {}

func newTestService(t *testing.T, store Store, inv *recordingInvalidator) Service {
	t.Helper()
	params := ServiceParams{Store: store, BatchSize: 2, Concurrency: 2}
	if inv != nil {
		params.Invalidator = inv
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return svc
}

func TestServiceSetGetClearInvalidatesSupplier(t *testing.T) {
	store := newMemoryStore()
	inv := &recordingInvalidator{}
	svc := newTestService(t, store, inv)
	ctx := context.Background()

	saved, err := svc.Set(ctx, Key{" S1 ", "P1"}, " SKU1 ")
	require.NoError(t, err)
	assert.Equal(t, "S1", saved.SupplierCode)
	assert.Equal(t, "SKU1", saved.SKU)

	got, err := svc.Get(ctx, Key{"S1", "P1"})
	require.NoError(t, err)
	assert.Equal(t, "SKU1", got.SKU)

	removed, err := svc.Clear(ctx, Key{"S1", "P1"})
	require.NoError(t, err)
	assert.True(t, removed)
	_, err = svc.Get(ctx, Key{"S1", "P1"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	removed, err = svc.Clear(ctx, Key{"S1", "P1"})
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, [][]string{{"S1"}, {"S1"}}, inv.codes)
}

func TestServiceSetValidates(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), nil)
	_, err := svc.Set(context.Background(), Key{"S1", ""}, "SKU1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Set(context.Background(), Key{"S1", "P1"}, "  ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceLookupBatchesAndDedupes(t *testing.T) {
	store := newMemoryStore()
	store.rows[Key{"S1", "P1"}] = models.SkuBinding{SupplierCode: "S1", SupplierProductCode: "P1", SKU: "A"}
	store.rows[Key{"S1", "P3"}] = models.SkuBinding{SupplierCode: "S1", SupplierProductCode: "P3", SKU: "C"}
	svc := newTestService(t, store, nil)

	rows, err := svc.Lookup(context.Background(), []Key{{"S1", "P1"}, {"S1", "P2"}, {"S1", "P1"}, {"S1", "P3"}})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 2, store.calls)
}

func TestServiceLookupWrapsDependencyErrors(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("db down")
	svc := newTestService(t, store, nil)

	_, err := svc.Lookup(context.Background(), []Key{{"S1", "P1"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
