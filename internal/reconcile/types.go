package reconcile

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quotewise/quotewise-backend/internal/cache"
	"github.com/quotewise/quotewise-backend/internal/compare"
	"github.com/quotewise/quotewise-backend/internal/inventory"
	"github.com/quotewise/quotewise-backend/internal/quotations"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/enums"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
)

// Request selects the quotations and the inventory scope to reconcile.
type Request struct {
	SupplierCodes []string                 `json:"supplier_codes"`
	SupplierName  string                   `json:"supplier_name,omitempty"`
	ProductName   string                   `json:"product_name,omitempty"`
	UPC           string                   `json:"upc,omitempty"`
	Dimension     enums.Dimension          `json:"dimension"`
	StoreName     string                   `json:"store_name,omitempty"`
	City          string                   `json:"city,omitempty"`
	PriceField    *enums.PriceField        `json:"price_field,omitempty"`
	Results       []enums.ComparisonResult `json:"results,omitempty"`
}

// Normalize trims text fields, sorts supplier codes and defaults the dimension to all.
func (r Request) Normalize() Request {
	out := r
	out.SupplierCodes = cache.NormalizeCodes(r.SupplierCodes)
	out.SupplierName = strings.TrimSpace(r.SupplierName)
	out.ProductName = strings.TrimSpace(r.ProductName)
	out.UPC = strings.TrimSpace(r.UPC)
	if out.Dimension == "" {
		out.Dimension = enums.DimensionAll
	}
	inv := out.InventoryFilter()
	out.StoreName = inv.StoreName
	out.City = inv.City
	return out
}

// Validate checks supplier codes, the dimension rules and the optional filters.
func (r Request) Validate() error {
	n := r.Normalize()
	if len(n.SupplierCodes) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one supplier code is required")
	}
	if err := n.InventoryFilter().Validate(); err != nil {
		return err
	}
	if n.PriceField != nil && !n.PriceField.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_field must be one of lowest_purchase_price, latest_purchase_price, cost_price")
	}
	for _, result := range n.Results {
		if !result.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown comparison result filter").
				WithDetails(map[string]any{"result": string(result)})
		}
	}
	return nil
}

// QuotationFilter is the quotation side of the request.
func (r Request) QuotationFilter() quotations.Filter {
	return quotations.Filter{
		SupplierCodes: r.SupplierCodes,
		SupplierName:  r.SupplierName,
		ProductName:   r.ProductName,
		UPC:           r.UPC,
	}.Normalize()
}

// InventoryFilter is the inventory side of the request.
func (r Request) InventoryFilter() inventory.Filter {
	return inventory.Filter{
		Dimension: r.Dimension,
		StoreName: r.StoreName,
		City:      r.City,
	}.Normalize()
}

// Row is one reconciled quotation.
type Row struct {
	Quotation     models.SupplierQuotation `json:"quotation"`
	SupplierPrice *decimal.Decimal         `json:"supplier_price"`
	Inventory     *models.InventorySummary `json:"inventory"`
	SKU           string                   `json:"sku"`
	MatchSource   enums.MatchSource        `json:"match_source"`
	Comparison    compare.Classification   `json:"comparison"`
}

// Result is a committed reconciliation. Summary counts every row, including
// rows removed by the Results filter.
type Result struct {
	Generation  uint64          `json:"generation"`
	Request     Request         `json:"request"`
	Rows        []Row           `json:"rows"`
	Summary     compare.Summary `json:"summary"`
	GeneratedAt time.Time       `json:"generated_at"`
}
