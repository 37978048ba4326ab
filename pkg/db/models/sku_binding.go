package models

import "time"

// SkuBinding is an operator override pointing a supplier product at a SKU.
type SkuBinding struct {
	SupplierCode        string    `gorm:"column:supplier_code;primaryKey" json:"supplier_code"`
	SupplierProductCode string    `gorm:"column:supplier_product_code;primaryKey" json:"supplier_product_code"`
	SKU                 string    `gorm:"column:sku;not null" json:"sku"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
