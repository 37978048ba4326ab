package ratios

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quotewise/quotewise-backend/pkg/db/models"
)

// Repository persists price ratios.
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

// Find returns the ratios of supplierCode, narrowed to upcs when provided.
func (r *Repository) Find(ctx context.Context, supplierCode string, upcs []string) ([]models.PriceRatio, error) {
	query := r.db.WithContext(ctx).Where("supplier_code = ?", supplierCode)
	if len(upcs) > 0 {
		query = query.Where("upc IN ?", upcs)
	}
	var rows []models.PriceRatio
	if err := query.Order("upc ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert stores ratio, replacing both sides of an existing pair.
func (r *Repository) Upsert(ctx context.Context, ratio models.PriceRatio) (*models.PriceRatio, error) {
	ratio.UpdatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "supplier_code"}, {Name: "upc"}},
			DoUpdates: clause.AssignmentColumns([]string{"supplier_ratio", "counterpart_ratio", "updated_at"}),
		}).
		Create(&ratio).Error; err != nil {
		return nil, err
	}
	return &ratio, nil
}

// Delete removes the ratio for (supplierCode, upc) and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, supplierCode, upc string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("supplier_code = ? AND upc = ?", supplierCode, upc).
		Delete(&models.PriceRatio{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
