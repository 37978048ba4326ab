package models

// All lists every persisted model; tests use it to AutoMigrate sqlite databases.
func All() []any {
	return []any{
		&SupplierQuotation{},
		&InventorySummary{},
		&UpcSkuMapping{},
		&SkuBinding{},
		&PriceRatio{},
		&SupplierStoreRelation{},
	}
}
