package inventory

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/enums"
)

// Repository reads inventory summaries and UPC→SKU mappings.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListSummaries returns the summaries for one dimension ordered by SKU.
func (r *Repository) ListSummaries(ctx context.Context, filter Filter) ([]models.InventorySummary, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.InventorySummary{}).
		Where("dimension = ?", filter.Dimension)
	switch filter.Dimension {
	case enums.DimensionStore:
		query = query.Where("store_name = ?", filter.StoreName)
	case enums.DimensionCity:
		query = query.Where("city = ?", filter.City)
	}
	if filter.SKU != "" {
		query = query.Where("sku = ?", filter.SKU)
	}
	if filter.Keyword != "" {
		pattern := "%" + strings.ToLower(filter.Keyword) + "%"
		query = query.Where("(LOWER(product_name) LIKE ? OR upc LIKE ?)", pattern, pattern)
	}

	var rows []models.InventorySummary
	if err := query.
		Order("sku ASC").
		Order("store_name ASC").
		Order("city ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UPCSkuMap returns the SKUs mapped to each of upcs. UPCs without a mapping are absent.
func (r *Repository) UPCSkuMap(ctx context.Context, upcs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(upcs))
	if len(upcs) == 0 {
		return out, nil
	}
	var rows []models.UpcSkuMapping
	if err := r.db.WithContext(ctx).
		Where("upc IN ?", upcs).
		Order("upc ASC").
		Order("sku ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UPC] = append(out[row.UPC], row.SKU)
	}
	return out, nil
}
