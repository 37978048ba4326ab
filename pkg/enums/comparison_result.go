package enums

import (
	"fmt"
	"strings"
)

// ComparisonResult classifies a supplier price against an inventory purchase price.
type ComparisonResult string

const (
	ComparisonPriceAdvantage      ComparisonResult = "price_advantage"
	ComparisonPriceDisadvantage   ComparisonResult = "price_disadvantage"
	ComparisonPriceParity         ComparisonResult = "price_parity"
	ComparisonNoSupplyPriceInfo   ComparisonResult = "no_supply_price_info"
	ComparisonNoPurchasePriceInfo ComparisonResult = "no_purchase_price_info"
	ComparisonNoMatch             ComparisonResult = "no_match"
)

var validComparisonResults = []ComparisonResult{
	ComparisonPriceAdvantage,
	ComparisonPriceDisadvantage,
	ComparisonPriceParity,
	ComparisonNoSupplyPriceInfo,
	ComparisonNoPurchasePriceInfo,
	ComparisonNoMatch,
}

var comparisonLabels = map[ComparisonResult]string{
	ComparisonPriceAdvantage:      "价格优势",
	ComparisonPriceDisadvantage:   "价格劣势",
	ComparisonPriceParity:         "价格相同",
	ComparisonNoSupplyPriceInfo:   "无供货价信息",
	ComparisonNoPurchasePriceInfo: "无采购价信息",
	ComparisonNoMatch:             "无匹配",
}

// ComparisonResults returns every known result in display order.
func ComparisonResults() []ComparisonResult {
	out := make([]ComparisonResult, len(validComparisonResults))
	copy(out, validComparisonResults)
	return out
}

// String implements fmt.Stringer.
func (c ComparisonResult) String() string {
	return string(c)
}

// Label returns the display text for the result.
func (c ComparisonResult) Label() string {
	return comparisonLabels[c]
}

// IsValid reports whether the value is known.
func (c ComparisonResult) IsValid() bool {
	for _, candidate := range validComparisonResults {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseComparisonResult accepts either the token or the label.
func ParseComparisonResult(value string) (ComparisonResult, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validComparisonResults {
		if strings.EqualFold(string(candidate), trimmed) || comparisonLabels[candidate] == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid comparison result %q", value)
}
