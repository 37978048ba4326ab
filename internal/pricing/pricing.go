// Package pricing converts raw supplier prices into comparable unit prices.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/quotewise/quotewise-backend/pkg/db/models"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
)

// Scale is the number of decimal places kept on computed prices.
const Scale = 4

var one = decimal.NewFromInt(1)

// Adjust returns raw / supplierRatio * counterpartRatio.
// raw is returned unchanged when either ratio is missing or supplierRatio is zero.
func Adjust(raw, supplierRatio, counterpartRatio *decimal.Decimal) *decimal.Decimal {
	if raw == nil {
		return nil
	}
	if supplierRatio == nil || counterpartRatio == nil || supplierRatio.IsZero() {
		return raw
	}
	out := raw.Div(*supplierRatio).Mul(*counterpartRatio).Round(Scale)
	return &out
}

// ComputedPrice applies ratio to a stored supply price. A nil ratio leaves the price as is.
func ComputedPrice(raw decimal.NullDecimal, ratio *models.PriceRatio) decimal.NullDecimal {
	if !raw.Valid {
		return decimal.NullDecimal{}
	}
	if ratio == nil {
		return raw
	}
	adjusted := Adjust(&raw.Decimal, &ratio.SupplierRatio, &ratio.CounterpartRatio)
	return decimal.NullDecimal{Decimal: *adjusted, Valid: true}
}

// ValidateRatioPair rejects ratios an operator may not store: both must be
// positive and at least one must be exactly 1.
func ValidateRatioPair(supplierRatio, counterpartRatio decimal.Decimal) error {
	if !supplierRatio.IsPositive() || !counterpartRatio.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "ratios must be greater than zero").
			WithDetails(ratioDetails(supplierRatio, counterpartRatio))
	}
	if !supplierRatio.Equal(one) && !counterpartRatio.Equal(one) {
		return pkgerrors.New(pkgerrors.CodeValidation, "one of the two ratios must equal 1").
			WithDetails(ratioDetails(supplierRatio, counterpartRatio))
	}
	return nil
}

func ratioDetails(supplierRatio, counterpartRatio decimal.Decimal) map[string]string {
	return map[string]string{
		"supplier_ratio":    supplierRatio.String(),
		"counterpart_ratio": counterpartRatio.String(),
	}
}
