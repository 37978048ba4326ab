package models

// SupplierStoreRelation records which stores a supplier delivers to.
type SupplierStoreRelation struct {
	SupplierCode string `gorm:"column:supplier_code;primaryKey" json:"supplier_code"`
	StoreName    string `gorm:"column:store_name;primaryKey" json:"store_name"`
}
