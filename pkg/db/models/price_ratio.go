package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRatio converts a supplier's raw price into a comparable unit price.
type PriceRatio struct {
	SupplierCode     string          `gorm:"column:supplier_code;primaryKey" json:"supplier_code"`
	UPC              string          `gorm:"column:upc;primaryKey" json:"upc"`
	SupplierRatio    decimal.Decimal `gorm:"column:supplier_ratio;type:numeric(12,4);not null" json:"supplier_ratio"`
	CounterpartRatio decimal.Decimal `gorm:"column:counterpart_ratio;type:numeric(12,4);not null" json:"counterpart_ratio"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
