// Package compare classifies a supplier price against an inventory purchase price.
package compare

import (
	"github.com/shopspring/decimal"

	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/enums"
)

// RatePrecision is the number of decimal places kept on the diff rate.
const RatePrecision = 6

// Classification is the outcome of comparing one aligned pair.
type Classification struct {
	Result        enums.ComparisonResult `json:"result"`
	ResultLabel   string                 `json:"result_label"`
	Field         enums.PriceField       `json:"field,omitempty"`
	FieldLabel    string                 `json:"field_label,omitempty"`
	SupplierPrice *decimal.Decimal       `json:"supplier_price,omitempty"`
	ComparePrice  *decimal.Decimal       `json:"compare_price,omitempty"`
	Diff          *decimal.Decimal       `json:"diff,omitempty"`
	// Rate is Diff / ComparePrice as a plain ratio. Nil when ComparePrice is zero.
	Rate *decimal.Decimal `json:"rate,omitempty"`
}

var (
	allPrecedence    = []enums.PriceField{enums.PriceFieldLowestPurchase, enums.PriceFieldLatestPurchase, enums.PriceFieldCost}
	scopedPrecedence = []enums.PriceField{enums.PriceFieldLatestPurchase, enums.PriceFieldCost}
)

// Precedence returns the fields tried, in order, for dimension when no override is set.
func Precedence(dimension enums.Dimension) []enums.PriceField {
	if dimension == enums.DimensionAll {
		return append([]enums.PriceField(nil), allPrecedence...)
	}
	return append([]enums.PriceField(nil), scopedPrecedence...)
}

// Classify compares q against inv. A non-nil override forces the compared field
// regardless of dimension. Missing data yields one of the "no_*" results.
func Classify(q models.SupplierQuotation, inv *models.InventorySummary, dimension enums.Dimension, override *enums.PriceField) Classification {
	if inv == nil {
		return newClassification(enums.ComparisonNoMatch)
	}

	effective := q.EffectivePrice()
	if !effective.Valid {
		return newClassification(enums.ComparisonNoSupplyPriceInfo)
	}
	supplierPrice := effective.Decimal

	fields := Precedence(dimension)
	if override != nil && override.IsValid() {
		fields = []enums.PriceField{*override}
	}

	field, comparePrice, ok := firstPrice(inv, fields)
	if !ok {
		out := newClassification(enums.ComparisonNoPurchasePriceInfo)
		out.SupplierPrice = &supplierPrice
		return out
	}

	diff := supplierPrice.Sub(comparePrice)
	var result enums.ComparisonResult
	switch diff.Sign() {
	case -1:
		result = enums.ComparisonPriceAdvantage
	case 1:
		result = enums.ComparisonPriceDisadvantage
	default:
		result = enums.ComparisonPriceParity
	}

	out := newClassification(result)
	out.Field = field
	out.FieldLabel = field.Label()
	out.SupplierPrice = &supplierPrice
	out.ComparePrice = &comparePrice
	out.Diff = &diff
	if !comparePrice.IsZero() {
		rate := diff.DivRound(comparePrice, RatePrecision)
		out.Rate = &rate
	}
	return out
}

func newClassification(result enums.ComparisonResult) Classification {
	return Classification{Result: result, ResultLabel: result.Label()}
}

func firstPrice(inv *models.InventorySummary, fields []enums.PriceField) (enums.PriceField, decimal.Decimal, bool) {
	for _, field := range fields {
		value := priceOf(inv, field)
		if value.Valid {
			return field, value.Decimal, true
		}
	}
	return "", decimal.Decimal{}, false
}

func priceOf(inv *models.InventorySummary, field enums.PriceField) decimal.NullDecimal {
	switch field {
	case enums.PriceFieldLowestPurchase:
		return inv.LowestPurchasePrice
	case enums.PriceFieldLatestPurchase:
		return inv.LatestPurchasePrice
	case enums.PriceFieldCost:
		return inv.CostPrice
	default:
		return decimal.NullDecimal{}
	}
}
