package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/quotewise/quotewise-backend/pkg/enums"
)

// InventorySummary aggregates a SKU's stock and cost under one dimension.
type InventorySummary struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Dimension           enums.Dimension     `gorm:"column:dimension;not null;index:ix_inventory_summaries_scope" json:"dimension"`
	SKU                 string              `gorm:"column:sku;not null;default:'';index" json:"sku"`
	UPC                 string              `gorm:"column:upc;not null;default:''" json:"upc"`
	ProductName         string              `gorm:"column:product_name;not null;default:''" json:"product_name"`
	Spec                string              `gorm:"column:spec;not null;default:''" json:"spec"`
	RetailPrice         decimal.NullDecimal `gorm:"column:retail_price;type:numeric(14,4)" json:"retail_price"`
	CostPrice           decimal.NullDecimal `gorm:"column:cost_price;type:numeric(14,4)" json:"cost_price"`
	LowestPurchasePrice decimal.NullDecimal `gorm:"column:lowest_purchase_price;type:numeric(14,4)" json:"lowest_purchase_price"`
	LatestPurchasePrice decimal.NullDecimal `gorm:"column:latest_purchase_price;type:numeric(14,4)" json:"latest_purchase_price"`
	StoreName           string              `gorm:"column:store_name;not null;default:'';index:ix_inventory_summaries_scope" json:"store_name"`
	City                string              `gorm:"column:city;not null;default:'';index:ix_inventory_summaries_scope" json:"city"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not.
func (s *InventorySummary) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
