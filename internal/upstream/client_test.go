package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotewise/quotewise-backend/internal/bindings"
	"github.com/quotewise/quotewise-backend/internal/inventory"
	"github.com/quotewise/quotewise-backend/internal/quotations"
	"github.com/quotewise/quotewise-backend/pkg/config"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/enums"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
	"github.com/quotewise/quotewise-backend/pkg/pagination"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(payload))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(config.UpstreamConfig{
		BaseURL:    srv.URL + "/",
		Token:      "secret",
		Timeout:    5 * time.Second,
		RetryCount: retries,
	}, nil)
	require.NoError(t, err)
	return client
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(config.UpstreamConfig{BaseURL: "  "}, nil)
	assert.Error(t, err)
}

func TestQuotationListSendsFiltersAndDecodesPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/quotations", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "S1,S2", q.Get("supplier_codes"))
		assert.Equal(t, "milk", q.Get("product_name"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "500", q.Get("page_size"))
		assert.False(t, q.Has("upc"))
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"items": []map[string]any{{"supplier_code": "S1", "supplier_product_code": "P1", "supply_price": "12.5"}},
			"meta":  map[string]any{"page": 2, "page_size": 500, "total": 501, "total_pages": 2},
		}})
	}, 0)

	page, err := client.Quotations().List(context.Background(),
		quotations.Filter{SupplierCodes: []string{"S1", "S2"}, ProductName: "milk"},
		pagination.Params{Page: 2, PageSize: 900})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].SupplyPrice.Decimal.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, int64(501), page.Meta.Total)
}

func TestValidationErrorsPassThrough(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]any{"error": map[string]any{
			"code": "VALIDATION_ERROR", "message": "store_name is required for the store dimension",
		}})
	}, 2)

	_, err := client.Inventory().ListSummaries(context.Background(), inventory.Filter{Dimension: enums.DimensionStore})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "store_name is required for the store dimension", typed.Message())
}

func TestServerErrorsAreRetriedThenReportedAsDependency(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(t, w, http.StatusInternalServerError, map[string]any{"error": map[string]any{
			"code": "INTERNAL_ERROR", "message": "internal server error",
		}})
	}, 2)

	_, err := client.Inventory().UPCSkuMap(context.Background(), []string{"U1"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var body struct {
			UPCs []string `json:"upcs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"U1"}, body.UPCs)
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string][]string{"U1": {"SKU1"}}})
	}, 1)

	got, err := client.Inventory().UPCSkuMap(context.Background(), []string{"U1"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"U1": {"SKU1"}}, got)
}

func TestUnreachableUpstreamIsDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	client, err := New(config.UpstreamConfig{BaseURL: base, Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = client.Suppliers().StoreRelations(context.Background(), nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestBindingStoreRoundTrip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/bindings/lookup":
			writeJSON(t, w, http.StatusOK, map[string]any{"data": []models.SkuBinding{
				{SupplierCode: "S1", SupplierProductCode: "P1", SKU: "SKU1"},
			}})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/bindings":
			assert.Equal(t, "P1", r.URL.Query().Get("product_code"))
			writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]bool{"removed": true}})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}, 0)

	rows, err := client.Bindings().Find(context.Background(), []bindings.Key{{SupplierCode: "S1", SupplierProductCode: "P1"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SKU1", rows[0].SKU)

	removed, err := client.Bindings().Delete(context.Background(), bindings.Key{SupplierCode: "S1", SupplierProductCode: "P1"})
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestRatioUpsertSendsDecimals(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "12", body["supplier_ratio"])
		writeJSON(t, w, http.StatusOK, map[string]any{"data": body})
	}, 0)

	saved, err := client.Ratios().Upsert(context.Background(), models.PriceRatio{
		SupplierCode: "S1", UPC: "U1",
		SupplierRatio: decimal.NewFromInt(12), CounterpartRatio: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.True(t, saved.SupplierRatio.Equal(decimal.NewFromInt(12)))
}
