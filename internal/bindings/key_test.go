package bindings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotewise/quotewise-backend/pkg/db/models"
)

func makeKeys(n int) []Key {
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = Key{SupplierCode: "S1", SupplierProductCode: fmt.Sprintf("P%03d", i)}
	}
	return keys
}

func TestBatchLookupSplitsIntoGroupsOfFifty(t *testing.T) {
	var mu sync.Mutex
	var sizes []int
	fetch := func(_ context.Context, batch []Key) ([]models.SkuBinding, error) {
		mu.Lock()
		sizes = append(sizes, len(batch))
		mu.Unlock()
		out := make([]models.SkuBinding, 0, len(batch))
		for _, k := range batch {
			out = append(out, models.SkuBinding{SupplierCode: k.SupplierCode, SupplierProductCode: k.SupplierProductCode, SKU: "X"})
		}
		return out, nil
	}

	rows, err := BatchLookup(context.Background(), makeKeys(120), 0, 2, fetch)
	require.NoError(t, err)
	require.Len(t, rows, 120)
	assert.ElementsMatch(t, []int{50, 50, 20}, sizes)
	assert.Equal(t, "P000", rows[0].SupplierProductCode)
	assert.Equal(t, "P119", rows[119].SupplierProductCode)
}

func TestBatchLookupRespectsConcurrencyCap(t *testing.T) {
	var inFlight, peak int32
	fetch := func(_ context.Context, _ []Key) ([]models.SkuBinding, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		atomic.AddInt32(&inFlight, -1)
		return nil, nil
	}

	_, err := BatchLookup(context.Background(), makeKeys(500), 10, 3, fetch)
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestBatchLookupReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(_ context.Context, batch []Key) ([]models.SkuBinding, error) {
		if batch[0].SupplierProductCode == "P050" {
			return nil, boom
		}
		return nil, nil
	}
	_, err := BatchLookup(context.Background(), makeKeys(100), 50, 1, fetch)
	assert.ErrorIs(t, err, boom)
}

func TestBatchLookupEmpty(t *testing.T) {
	called := false
	rows, err := BatchLookup(context.Background(), nil, 50, 4, func(context.Context, []Key) ([]models.SkuBinding, error) {
		called = true
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, rows)
	assert.False(t, called)
}

func TestKeysForDedupesAndSkipsBlank(t *testing.T) {
	keys := KeysFor([]models.SupplierQuotation{
		{SupplierCode: "S1", SupplierProductCode: "P1"},
		{SupplierCode: " S1 ", SupplierProductCode: "P1"},
		{SupplierCode: "S1", SupplierProductCode: ""},
		{SupplierCode: "S2", SupplierProductCode: "P9"},
	})
	assert.Equal(t, []Key{{"S1", "P1"}, {"S2", "P9"}}, keys)
	assert.Equal(t, "S1\x1fP1", keys[0].String())
}
