package enums

import (
	"fmt"
	"strings"
)

// PriceField names the inventory price a supplier price is compared against.
type PriceField string

const (
	PriceFieldLowestPurchase PriceField = "lowest_purchase_price"
	PriceFieldLatestPurchase PriceField = "latest_purchase_price"
	PriceFieldCost           PriceField = "cost_price"
)

var validPriceFields = []PriceField{
	PriceFieldLowestPurchase,
	PriceFieldLatestPurchase,
	PriceFieldCost,
}

var priceFieldLabels = map[PriceField]string{
	PriceFieldLowestPurchase: "最低采购价",
	PriceFieldLatestPurchase: "最近采购价",
	PriceFieldCost:           "成本价",
}

// String implements fmt.Stringer.
func (p PriceField) String() string {
	return string(p)
}

// Label returns the column name shown next to a comparison.
func (p PriceField) Label() string {
	return priceFieldLabels[p]
}

// IsValid reports whether the value is known.
func (p PriceField) IsValid() bool {
	for _, candidate := range validPriceFields {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceField accepts either the token or the label.
func ParsePriceField(value string) (PriceField, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validPriceFields {
		if strings.EqualFold(string(candidate), trimmed) || priceFieldLabels[candidate] == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price field %q", value)
}
