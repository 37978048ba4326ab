package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotewise/quotewise-backend/internal/bindings"
	"github.com/quotewise/quotewise-backend/internal/inventory"
	"github.com/quotewise/quotewise-backend/internal/quotations"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/enums"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
	"github.com/quotewise/quotewise-backend/pkg/metrics"
	"github.com/quotewise/quotewise-backend/pkg/pagination"
)

type fakeQuotations struct {
	mu    sync.Mutex
	rows  map[string][]models.SupplierQuotation
	calls int32
	// hold, when set for a supplier code, blocks ListAll until the channel
	// closes or the context is cancelled.
	hold    map[string]chan struct{}
	entered chan string
}

func (f *fakeQuotations) List(context.Context, quotations.Filter, pagination.Params) (*quotations.Page, error) {
	return &quotations.Page{}, nil
}

func (f *fakeQuotations) ListAll(ctx context.Context, filter quotations.Filter) ([]models.SupplierQuotation, error) {
	atomic.AddInt32(&f.calls, 1)
	code := filter.SupplierCodes[0]
	f.mu.Lock()
	hold := f.hold[code]
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- code
	}
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	var out []models.SupplierQuotation
	for _, c := range filter.SupplierCodes {
		out = append(out, f.rows[c]...)
	}
	return out, nil
}

func (f *fakeQuotations) UpdateRemark(context.Context, uuid.UUID, string) (*models.SupplierQuotation, error) {
	return nil, nil
}

func (f *fakeQuotations) Import(context.Context, []models.SupplierQuotation) (*quotations.ImportResult, error) {
	return nil, nil
}

func (f *fakeQuotations) RefreshComputedPrices(context.Context, string, []string) (int, error) {
	return 0, nil
}

type fakeInventory struct {
	rows   []models.InventorySummary
	upcMap map[string][]string
	err    error
}

func (f *fakeInventory) ListSummaries(_ context.Context, filter inventory.Filter) ([]models.InventorySummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.InventorySummary
	for _, row := range f.rows {
		if row.Dimension == filter.Dimension {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeInventory) UPCSkuMap(_ context.Context, upcs []string) (map[string][]string, error) {
	out := map[string][]string{}
	for _, upc := range upcs {
		if skus, ok := f.upcMap[upc]; ok {
			out[upc] = skus
		}
	}
	return out, nil
}

type fakeBindings struct {
	rows []models.SkuBinding
}

func (f *fakeBindings) Lookup(context.Context, []bindings.Key) ([]models.SkuBinding, error) {
	return f.rows, nil
}

func (f *fakeBindings) Get(context.Context, bindings.Key) (*models.SkuBinding, error) {
	return nil, nil
}

func (f *fakeBindings) Set(context.Context, bindings.Key, string) (*models.SkuBinding, error) {
	return nil, nil
}

func (f *fakeBindings) Clear(context.Context, bindings.Key) (bool, error) { return false, nil }

func price(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

type fixture struct {
	quotes *fakeQuotations
	inv    *fakeInventory
	binds  *fakeBindings
	svc    Service
	reg    *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		quotes: &fakeQuotations{rows: map[string][]models.SupplierQuotation{
			"A": {
				{SupplierCode: "A", SupplierProductCode: "P1", UPC: "U1", SupplyPrice: price("8")},
				{SupplierCode: "A", SupplierProductCode: "P2", UPC: "U2", SupplyPrice: price("12")},
				{SupplierCode: "A", SupplierProductCode: "P3", UPC: "U404"},
			},
			"B": {
				{SupplierCode: "B", SupplierProductCode: "P9", UPC: "U1", SupplyPrice: price("10")},
			},
		}},
		inv: &fakeInventory{
			rows: []models.InventorySummary{
				{Dimension: enums.DimensionAll, SKU: "SKU1", UPC: "U1", LowestPurchasePrice: price("10")},
				{Dimension: enums.DimensionAll, SKU: "SKU2", UPC: "U2", LatestPurchasePrice: price("10")},
			},
			upcMap: map[string][]string{"U1": {"SKU1"}},
		},
		binds: &fakeBindings{},
	}
	f.reg = prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Quotations: f.quotes,
		Inventory:  f.inv,
		Bindings:   f.binds,
		Caches:     NewCaches(CacheOptions{TTL: time.Minute}),
		Metrics:    metrics.NewReconcileMetrics(f.reg),
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) staleDiscards(t *testing.T) float64 {
	t.Helper()
	mfs, err := f.reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "quotewise_reconcile_stale_discards_total" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestRunClassifiesEveryQuotation(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Run(context.Background(), "s1", Request{SupplierCodes: []string{"A"}})
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	first := res.Rows[0]
	assert.Equal(t, "SKU1", first.SKU)
	assert.Equal(t, enums.MatchSourceUPCMap, first.MatchSource)
	assert.Equal(t, enums.ComparisonPriceAdvantage, first.Comparison.Result)
	assert.True(t, first.SupplierPrice.Equal(decimal.NewFromInt(8)))

	second := res.Rows[1]
	assert.Equal(t, enums.MatchSourceUPCField, second.MatchSource)
	assert.Equal(t, enums.ComparisonPriceDisadvantage, second.Comparison.Result)
	assert.Equal(t, enums.PriceFieldLatestPurchase, second.Comparison.Field)

	third := res.Rows[2]
	assert.Nil(t, third.Inventory)
	assert.Nil(t, third.SupplierPrice)
	assert.Equal(t, enums.ComparisonNoMatch, third.Comparison.Result)

	assert.Equal(t, 3, res.Summary.Total)
	assert.Equal(t, 1, res.Summary.Counts[enums.ComparisonNoMatch])

	view, err := f.svc.View("s1")
	require.NoError(t, err)
	assert.Same(t, res, view)
}

func TestRunAppliesBindingOverride(t *testing.T) {
	f := newFixture(t)
	f.binds.rows = []models.SkuBinding{{SupplierCode: "A", SupplierProductCode: "P1", SKU: "SKU2"}}

	res, err := f.svc.Run(context.Background(), "s1", Request{SupplierCodes: []string{"A"}})
	require.NoError(t, err)
	assert.Equal(t, "SKU2", res.Rows[0].SKU)
	assert.Equal(t, "SKU2", res.Rows[0].Inventory.SKU)
}

func TestRunFiltersResultsButSummarizesAll(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Run(context.Background(), "s1", Request{
		SupplierCodes: []string{"A"},
		Results:       []enums.ComparisonResult{enums.ComparisonNoMatch},
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "P3", res.Rows[0].Quotation.SupplierProductCode)
	assert.Equal(t, 3, res.Summary.Total)
}

func TestRunUsesCacheUntilRefresh(t *testing.T) {
	f := newFixture(t)
	req := Request{SupplierCodes: []string{"A"}}
	_, err := f.svc.Run(context.Background(), "s1", req)
	require.NoError(t, err)
	_, err = f.svc.Run(context.Background(), "s2", Request{SupplierCodes: []string{" A ", "A"}})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.quotes.calls))

	f.svc.Refresh(context.Background())
	_, err = f.svc.Run(context.Background(), "s1", req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.quotes.calls))
}

func TestRunValidatesRequest(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name    string
		session string
		req     Request
	}{
		{"missing session", "", Request{SupplierCodes: []string{"A"}}},
		{"no suppliers", "s1", Request{SupplierCodes: []string{" "}}},
		{"store without name", "s1", Request{SupplierCodes: []string{"A"}, Dimension: enums.DimensionStore}},
		{"bad result filter", "s1", Request{SupplierCodes: []string{"A"}, Results: []enums.ComparisonResult{"cheap"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Run(context.Background(), tc.session, tc.req)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestDependencyFailureKeepsPreviousView(t *testing.T) {
	f := newFixture(t)
	first, err := f.svc.Run(context.Background(), "s1", Request{SupplierCodes: []string{"A"}})
	require.NoError(t, err)

	f.inv.err = errors.New("inventory api down")
	_, err = f.svc.Run(context.Background(), "s1", Request{SupplierCodes: []string{"B"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	view, err := f.svc.View("s1")
	require.NoError(t, err)
	assert.Same(t, first, view)
}

func TestSupersededRunIsDiscarded(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.quotes.hold = map[string]chan struct{}{"A": release}
	f.quotes.entered = make(chan string, 4)

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := f.svc.Run(context.Background(), "s1", Request{SupplierCodes: []string{"A"}})
		done <- outcome{res, err}
	}()
	require.Equal(t, "A", <-f.quotes.entered)

	resB, err := f.svc.Run(context.Background(), "s1", Request{SupplierCodes: []string{"B"}})
	require.NoError(t, err)
	<-f.quotes.entered
	close(release)

	a := <-done
	assert.ErrorIs(t, a.err, ErrStaleRequest)
	assert.Nil(t, a.res)

	view, err := f.svc.View("s1")
	require.NoError(t, err)
	assert.Same(t, resB, view)
	assert.Equal(t, []string{"B"}, view.Request.SupplierCodes)
	assert.Equal(t, float64(1), f.staleDiscards(t))
}

func TestStaleRunWithoutCancellationIsStillDiscarded(t *testing.T) {
	f := newFixture(t)
	tr := NewTracker()
	svc, err := NewService(ServiceParams{
		Quotations: f.quotes,
		Inventory:  f.inv,
		Bindings:   f.binds,
		Caches:     NewCaches(CacheOptions{}),
		Tracker:    tr,
	})
	require.NoError(t, err)

	impl := svc.(*service)
	_, tokA := tr.Begin(context.Background(), "s1")
	_, tokB := tr.Begin(context.Background(), "s1")

	resA, err := impl.run(context.Background(), tokA, Request{SupplierCodes: []string{"A"}}.Normalize())
	assert.ErrorIs(t, err, ErrStaleRequest)
	assert.Nil(t, resA)

	resB, err := impl.run(context.Background(), tokB, Request{SupplierCodes: []string{"B"}}.Normalize())
	require.NoError(t, err)
	require.NoError(t, tr.Commit(tokB, resB))
}

func TestResetClearsView(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Run(context.Background(), "s1", Request{SupplierCodes: []string{"A"}})
	require.NoError(t, err)
	require.NoError(t, f.svc.Reset("s1"))

	_, err = f.svc.View("s1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
