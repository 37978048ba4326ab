package inventory

import (
	"strings"

	"github.com/quotewise/quotewise-backend/internal/matching"
	"github.com/quotewise/quotewise-backend/pkg/enums"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
)

// Filter selects inventory summaries under exactly one dimension.
type Filter struct {
	Dimension enums.Dimension `json:"dimension"`
	StoreName string          `json:"store_name,omitempty"`
	City      string          `json:"city,omitempty"`
	SKU       string          `json:"sku,omitempty"`
	Keyword   string          `json:"keyword,omitempty"`
}

// Normalize trims values and drops the store or city that the dimension does not use.
func (f Filter) Normalize() Filter {
	out := Filter{
		Dimension: f.Dimension,
		SKU:       strings.TrimSpace(f.SKU),
		Keyword:   strings.TrimSpace(f.Keyword),
	}
	switch f.Dimension {
	case enums.DimensionStore:
		out.StoreName = strings.TrimSpace(f.StoreName)
	case enums.DimensionCity:
		out.City = strings.TrimSpace(f.City)
	}
	return out
}

// Validate enforces the dimension rules: store needs a store name, city needs
// a city, all needs neither.
func (f Filter) Validate() error {
	n := f.Normalize()
	switch {
	case !n.Dimension.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "dimension must be one of all, store, city")
	case n.Dimension == enums.DimensionStore && n.StoreName == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "store_name is required for the store dimension")
	case n.Dimension == enums.DimensionCity && n.City == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "city is required for the city dimension")
	}
	return nil
}

// Scope converts the filter into the matching scope.
func (f Filter) Scope() matching.Scope {
	n := f.Normalize()
	return matching.Scope{Dimension: n.Dimension, StoreName: n.StoreName, City: n.City}
}
