package bindings

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quotewise/quotewise-backend/pkg/db/models"
)

// Repository persists SKU bindings.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Find returns the bindings for keys, issuing one query per supplier code.
func (r *Repository) Find(ctx context.Context, keys []Key) ([]models.SkuBinding, error) {
	codes, groups := groupBySupplier(uniqueKeys(keys))
	var out []models.SkuBinding
	for _, code := range codes {
		var rows []models.SkuBinding
		if err := r.db.WithContext(ctx).
			Where("supplier_code = ? AND supplier_product_code IN ?", code, groups[code]).
			Order("supplier_product_code ASC").
			Find(&rows).Error; err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// Upsert stores binding, replacing the SKU of an existing row.
func (r *Repository) Upsert(ctx context.Context, binding models.SkuBinding) (*models.SkuBinding, error) {
	binding.UpdatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "supplier_code"}, {Name: "supplier_product_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"sku", "updated_at"}),
		}).
		Create(&binding).Error; err != nil {
		return nil, err
	}
	return &binding, nil
}

// Delete removes the binding for key and reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, key Key) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("supplier_code = ? AND supplier_product_code = ?", key.SupplierCode, key.SupplierProductCode).
		Delete(&models.SkuBinding{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
