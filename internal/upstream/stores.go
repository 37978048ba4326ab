package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/quotewise/quotewise-backend/internal/bindings"
	"github.com/quotewise/quotewise-backend/internal/inventory"
	"github.com/quotewise/quotewise-backend/internal/quotations"
	"github.com/quotewise/quotewise-backend/internal/ratios"
	"github.com/quotewise/quotewise-backend/internal/suppliers"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/pagination"
)

// QuotationStore implements quotations.Store over HTTP.
type QuotationStore struct{ c *Client }

var _ quotations.Store = (*QuotationStore)(nil)

func (s *QuotationStore) List(ctx context.Context, filter quotations.Filter, page pagination.Params) (*quotations.Page, error) {
	page = page.Normalize()
	params := map[string]string{
		"page":      strconv.Itoa(page.Page),
		"page_size": strconv.Itoa(page.PageSize),
	}
	setIf(params, "supplier_codes", joinList(filter.SupplierCodes))
	setIf(params, "supplier_name", filter.SupplierName)
	setIf(params, "product_name", filter.ProductName)
	setIf(params, "upc", filter.UPC)

	out, err := call[*quotations.Page](ctx, s.c, http.MethodGet, "/api/v1/quotations", func(r *resty.Request) {
		r.SetQueryParams(params)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = &quotations.Page{Meta: pagination.NewMeta(page, 0)}
	}
	return out, nil
}

func (s *QuotationStore) UpdateRemark(ctx context.Context, id uuid.UUID, remark string) (*models.SupplierQuotation, error) {
	path := fmt.Sprintf("/api/v1/quotations/%s/remark", url.PathEscape(id.String()))
	return call[*models.SupplierQuotation](ctx, s.c, http.MethodPatch, path, func(r *resty.Request) {
		r.SetBody(map[string]string{"remark": remark})
	})
}

func (s *QuotationStore) Upsert(ctx context.Context, rows []models.SupplierQuotation) (int, error) {
	out, err := call[quotations.ImportResult](ctx, s.c, http.MethodPost, "/api/v1/quotations/import", func(r *resty.Request) {
		r.SetBody(map[string]any{"rows": quotations.ImportRowsFrom(rows)})
	})
	if err != nil {
		return 0, err
	}
	return out.Upserted, nil
}

func (s *QuotationStore) RefreshComputedPrices(ctx context.Context, supplierCode string, upcs []string) (int, error) {
	out, err := call[struct {
		Updated int `json:"updated"`
	}](ctx, s.c, http.MethodPost, "/api/v1/quotations/refresh-computed", func(r *resty.Request) {
		r.SetBody(map[string]any{"supplier_code": supplierCode, "upcs": upcs})
	})
	if err != nil {
		return 0, err
	}
	return out.Updated, nil
}

// InventoryStore implements inventory.Store over HTTP.
type InventoryStore struct{ c *Client }

var _ inventory.Store = (*InventoryStore)(nil)

func (s *InventoryStore) ListSummaries(ctx context.Context, filter inventory.Filter) ([]models.InventorySummary, error) {
	params := map[string]string{"dimension": filter.Dimension.String()}
	setIf(params, "store_name", filter.StoreName)
	setIf(params, "city", filter.City)
	setIf(params, "sku", filter.SKU)
	setIf(params, "keyword", filter.Keyword)
	return call[[]models.InventorySummary](ctx, s.c, http.MethodGet, "/api/v1/inventory", func(r *resty.Request) {
		r.SetQueryParams(params)
	})
}

func (s *InventoryStore) UPCSkuMap(ctx context.Context, upcs []string) (map[string][]string, error) {
	out, err := call[map[string][]string](ctx, s.c, http.MethodPost, "/api/v1/inventory/upc-sku", func(r *resty.Request) {
		r.SetBody(map[string]any{"upcs": upcs})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string][]string{}
	}
	return out, nil
}

// BindingStore implements bindings.Store over HTTP.
type BindingStore struct{ c *Client }

var _ bindings.Store = (*BindingStore)(nil)

func (s *BindingStore) Find(ctx context.Context, keys []bindings.Key) ([]models.SkuBinding, error) {
	return call[[]models.SkuBinding](ctx, s.c, http.MethodPost, "/api/v1/bindings/lookup", func(r *resty.Request) {
		r.SetBody(map[string]any{"keys": keys})
	})
}

func (s *BindingStore) Upsert(ctx context.Context, binding models.SkuBinding) (*models.SkuBinding, error) {
	return call[*models.SkuBinding](ctx, s.c, http.MethodPut, "/api/v1/bindings", func(r *resty.Request) {
		r.SetBody(map[string]string{
			"supplier_code":         binding.SupplierCode,
			"supplier_product_code": binding.SupplierProductCode,
			"sku":                   binding.SKU,
		})
	})
}

func (s *BindingStore) Delete(ctx context.Context, key bindings.Key) (bool, error) {
	out, err := call[removedResponse](ctx, s.c, http.MethodDelete, "/api/v1/bindings", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"supplier_code": key.SupplierCode,
			"product_code":  key.SupplierProductCode,
		})
	})
	return out.Removed, err
}

// RatioStore implements ratios.Store over HTTP.
type RatioStore struct{ c *Client }

var _ ratios.Store = (*RatioStore)(nil)

func (s *RatioStore) Find(ctx context.Context, supplierCode string, upcs []string) ([]models.PriceRatio, error) {
	params := map[string]string{"supplier_code": supplierCode}
	setIf(params, "upc", joinList(upcs))
	return call[[]models.PriceRatio](ctx, s.c, http.MethodGet, "/api/v1/ratios", func(r *resty.Request) {
		r.SetQueryParams(params)
	})
}

func (s *RatioStore) Upsert(ctx context.Context, ratio models.PriceRatio) (*models.PriceRatio, error) {
	return call[*models.PriceRatio](ctx, s.c, http.MethodPut, "/api/v1/ratios", func(r *resty.Request) {
		r.SetBody(map[string]any{
			"supplier_code":     ratio.SupplierCode,
			"upc":               ratio.UPC,
			"supplier_ratio":    ratio.SupplierRatio,
			"counterpart_ratio": ratio.CounterpartRatio,
		})
	})
}

func (s *RatioStore) Delete(ctx context.Context, supplierCode, upc string) (bool, error) {
	out, err := call[removedResponse](ctx, s.c, http.MethodDelete, "/api/v1/ratios", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{"supplier_code": supplierCode, "upc": upc})
	})
	return out.Removed, err
}

// SupplierStore implements suppliers.Store over HTTP.
type SupplierStore struct{ c *Client }

var _ suppliers.Store = (*SupplierStore)(nil)

func (s *SupplierStore) NamesBySKU(ctx context.Context, skus []string) (map[string][]string, error) {
	out, err := call[map[string][]string](ctx, s.c, http.MethodPost, "/api/v1/suppliers/names-by-sku", func(r *resty.Request) {
		r.SetBody(map[string]any{"skus": skus})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string][]string{}
	}
	return out, nil
}

func (s *SupplierStore) StoreRelations(ctx context.Context, supplierCodes []string) ([]models.SupplierStoreRelation, error) {
	params := map[string]string{}
	setIf(params, "supplier_codes", joinList(supplierCodes))
	return call[[]models.SupplierStoreRelation](ctx, s.c, http.MethodGet, "/api/v1/suppliers/store-relations", func(r *resty.Request) {
		r.SetQueryParams(params)
	})
}

type removedResponse struct {
	Removed bool `json:"removed"`
}

func setIf(params map[string]string, key, value string) {
	if value != "" {
		params[key] = value
	}
}
