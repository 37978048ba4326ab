package bindings

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/quotewise/quotewise-backend/internal/matching"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
)

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 4
)

// Key identifies one supplier product.
type Key struct {
	SupplierCode        string `json:"supplier_code" validate:"required"`
	SupplierProductCode string `json:"supplier_product_code" validate:"required"`
}

func (k Key) normalize() Key {
	return Key{
		SupplierCode:        strings.TrimSpace(k.SupplierCode),
		SupplierProductCode: strings.TrimSpace(k.SupplierProductCode),
	}
}

func (k Key) valid() bool {
	return k.SupplierCode != "" && k.SupplierProductCode != ""
}

// String matches matching.BindingKey so keys can index a matching.Bindings map.
func (k Key) String() string {
	return matching.BindingKey(k.SupplierCode, k.SupplierProductCode)
}

// KeysFor returns the distinct binding keys of quotations, in input order.
func KeysFor(quotations []models.SupplierQuotation) []Key {
	keys := make([]Key, 0, len(quotations))
	for _, q := range quotations {
		keys = append(keys, Key{SupplierCode: q.SupplierCode, SupplierProductCode: q.SupplierProductCode})
	}
	return uniqueKeys(keys)
}

func uniqueKeys(keys []Key) []Key {
	seen := make(map[Key]struct{}, len(keys))
	out := make([]Key, 0, len(keys))
	for _, k := range keys {
		k = k.normalize()
		if !k.valid() {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// groupBySupplier maps each supplier code to its product codes, both sorted.
func groupBySupplier(keys []Key) ([]string, map[string][]string) {
	groups := make(map[string][]string)
	for _, k := range keys {
		groups[k.SupplierCode] = append(groups[k.SupplierCode], k.SupplierProductCode)
	}
	codes := make([]string, 0, len(groups))
	for code, products := range groups {
		sort.Strings(products)
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, groups
}

// FetchFunc loads the bindings for one batch of keys.
type FetchFunc func(ctx context.Context, keys []Key) ([]models.SkuBinding, error)

// BatchLookup splits keys into batches of batchSize and runs fetch for each
// batch with at most concurrency calls in flight. Results keep batch order.
// The first failing batch cancels the rest.
func BatchLookup(ctx context.Context, keys []Key, batchSize, concurrency int, fetch FetchFunc) ([]models.SkuBinding, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if len(keys) == 0 {
		return nil, nil
	}

	batches := make([][]Key, 0, (len(keys)+batchSize-1)/batchSize)
	for start := 0; start < len(keys); start += batchSize {
		end := min(start+batchSize, len(keys))
		batches = append(batches, keys[start:end])
	}

	results := make([][]models.SkuBinding, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			rows, err := fetch(gctx, batch)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []models.SkuBinding
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out, nil
}
