package suppliers

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/quotewise/quotewise-backend/pkg/db/models"
)

// Repository answers supplier lookups that span quotations, mappings and bindings.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type skuSupplier struct {
	SKU          string
	SupplierName string
}

// NamesBySKU returns the distinct supplier names quoting each SKU, sorted.
// A quotation counts for a SKU through its UPC mapping unless a binding
// points it elsewhere, and always counts for its bound SKU.
func (r *Repository) NamesBySKU(ctx context.Context, skus []string) (map[string][]string, error) {
	out := make(map[string][]string, len(skus))
	if len(skus) == 0 {
		return out, nil
	}

	var viaUPC []skuSupplier
	if err := r.db.WithContext(ctx).
		Table("upc_sku_mappings AS m").
		Select("m.sku AS sku, q.supplier_name AS supplier_name").
		Joins("JOIN supplier_quotations AS q ON q.upc = m.upc").
		Joins("LEFT JOIN sku_bindings AS b ON b.supplier_code = q.supplier_code AND b.supplier_product_code = q.supplier_product_code").
		Where("m.sku IN ?", skus).
		Where("(b.sku IS NULL OR b.sku = '' OR b.sku = m.sku)").
		Scan(&viaUPC).Error; err != nil {
		return nil, err
	}

	var viaBinding []skuSupplier
	if err := r.db.WithContext(ctx).
		Table("sku_bindings AS b").
		Select("b.sku AS sku, q.supplier_name AS supplier_name").
		Joins("JOIN supplier_quotations AS q ON q.supplier_code = b.supplier_code AND q.supplier_product_code = b.supplier_product_code").
		Where("b.sku IN ?", skus).
		Scan(&viaBinding).Error; err != nil {
		return nil, err
	}

	seen := make(map[skuSupplier]struct{})
	for _, row := range append(viaUPC, viaBinding...) {
		if row.SupplierName == "" {
			continue
		}
		if _, ok := seen[row]; ok {
			continue
		}
		seen[row] = struct{}{}
		out[row.SKU] = append(out[row.SKU], row.SupplierName)
	}
	for sku := range out {
		sort.Strings(out[sku])
	}
	return out, nil
}

// StoreRelations lists the stores each supplier delivers to. Empty codes lists every relation.
func (r *Repository) StoreRelations(ctx context.Context, supplierCodes []string) ([]models.SupplierStoreRelation, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierStoreRelation{})
	if len(supplierCodes) > 0 {
		query = query.Where("supplier_code IN ?", supplierCodes)
	}
	var rows []models.SupplierStoreRelation
	if err := query.Order("supplier_code ASC").Order("store_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
