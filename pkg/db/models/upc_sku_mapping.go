package models

// UpcSkuMapping links a minimal-sale-unit barcode to one SKU. A UPC may have many rows.
type UpcSkuMapping struct {
	UPC string `gorm:"column:upc;primaryKey" json:"upc"`
	SKU string `gorm:"column:sku;primaryKey" json:"sku"`
}
