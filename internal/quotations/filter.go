package quotations

import (
	"context"
	"strings"

	"github.com/quotewise/quotewise-backend/internal/cache"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/pagination"
)

// maxPages bounds ListAll so a misbehaving source cannot loop forever.
const maxPages = 1000

// Filter narrows a quotation listing. Empty fields do not filter.
type Filter struct {
	SupplierCodes []string `json:"supplier_codes,omitempty"`
	SupplierName  string   `json:"supplier_name,omitempty"`
	ProductName   string   `json:"product_name,omitempty"`
	UPC           string   `json:"upc,omitempty"`
}

// Normalize trims text fields and sorts the supplier codes.
func (f Filter) Normalize() Filter {
	return Filter{
		SupplierCodes: cache.NormalizeCodes(f.SupplierCodes),
		SupplierName:  strings.TrimSpace(f.SupplierName),
		ProductName:   strings.TrimSpace(f.ProductName),
		UPC:           strings.TrimSpace(f.UPC),
	}
}

// Page is one page of quotations.
type Page struct {
	Items []models.SupplierQuotation `json:"items"`
	Meta  pagination.Meta            `json:"meta"`
}

// Lister fetches a single page.
type Lister interface {
	List(ctx context.Context, filter Filter, page pagination.Params) (*Page, error)
}

// CollectAll walks every page of filter using the largest page size.
func CollectAll(ctx context.Context, lister Lister, filter Filter) ([]models.SupplierQuotation, error) {
	params := pagination.Params{Page: 1, PageSize: pagination.MaxPageSize}
	var out []models.SupplierQuotation
	for i := 0; i < maxPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := lister.List(ctx, filter, params)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if !page.Meta.HasMore() || len(page.Items) == 0 {
			break
		}
		params.Page++
	}
	return out, nil
}
