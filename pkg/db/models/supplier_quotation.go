package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SupplierQuotation is a supplier's offered price for one product variant.
type SupplierQuotation struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Seq                 int                 `gorm:"column:seq;not null;default:0" json:"seq"`
	SupplierCode        string              `gorm:"column:supplier_code;not null;uniqueIndex:ux_supplier_quotations_code_product" json:"supplier_code"`
	SupplierName        string              `gorm:"column:supplier_name;not null;default:''" json:"supplier_name"`
	ProductName         string              `gorm:"column:product_name;not null;default:''" json:"product_name"`
	Spec                string              `gorm:"column:spec;not null;default:''" json:"spec"`
	UPC                 string              `gorm:"column:upc;not null;default:'';index" json:"upc"`
	SupplierProductCode string              `gorm:"column:supplier_product_code;not null;uniqueIndex:ux_supplier_quotations_code_product" json:"supplier_product_code"`
	SupplyPrice         decimal.NullDecimal `gorm:"column:supply_price;type:numeric(14,4)" json:"supply_price"`
	ComputedSupplyPrice decimal.NullDecimal `gorm:"column:computed_supply_price;type:numeric(14,4)" json:"computed_supply_price"`
	Remark              string              `gorm:"column:remark;not null;default:''" json:"remark"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not.
func (q *SupplierQuotation) BeforeCreate(_ *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// EffectivePrice returns the computed supply price when present, else the raw supply price.
func (q SupplierQuotation) EffectivePrice() decimal.NullDecimal {
	if q.ComputedSupplyPrice.Valid {
		return q.ComputedSupplyPrice
	}
	return q.SupplyPrice
}
