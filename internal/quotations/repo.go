package quotations

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quotewise/quotewise-backend/internal/pricing"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/pagination"
)

const (
	upsertBatchSize  = 200
	refreshBatchSize = 500
)

// Repository persists supplier quotations.
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

// List returns one page of quotations ordered by supplier, sequence and product code.
func (r *Repository) List(ctx context.Context, filter Filter, page pagination.Params) (*Page, error) {
	page = page.Normalize()
	filter = filter.Normalize()
	scoped := func() *gorm.DB {
		return applyFilter(r.db.WithContext(ctx).Model(&models.SupplierQuotation{}), filter)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]models.SupplierQuotation, 0, page.PageSize)
	if err := scoped().
		Order("supplier_code ASC").
		Order("seq ASC").
		Order("supplier_product_code ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return &Page{Items: items, Meta: pagination.NewMeta(page, total)}, nil
}

func applyFilter(query *gorm.DB, filter Filter) *gorm.DB {
	if len(filter.SupplierCodes) > 0 {
		query = query.Where("supplier_code IN ?", filter.SupplierCodes)
	}
	if filter.SupplierName != "" {
		query = query.Where("LOWER(supplier_name) LIKE ?", likePattern(filter.SupplierName))
	}
	if filter.ProductName != "" {
		query = query.Where("LOWER(product_name) LIKE ?", likePattern(filter.ProductName))
	}
	if filter.UPC != "" {
		query = query.Where("upc = ?", filter.UPC)
	}
	return query
}

func likePattern(value string) string {
	return "%" + strings.ToLower(value) + "%"
}

// FindByID loads a quotation.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierQuotation, error) {
	var q models.SupplierQuotation
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateRemark replaces the remark of a quotation and returns the updated row.
func (r *Repository) UpdateRemark(ctx context.Context, id uuid.UUID, remark string) (*models.SupplierQuotation, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SupplierQuotation{}).
		Where("id = ?", id).
		Updates(map[string]any{"remark": remark, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// Upsert inserts rows or updates the existing row with the same supplier code
// and supplier product code. Remarks and computed prices are left untouched.
func (r *Repository) Upsert(ctx context.Context, rows []models.SupplierQuotation) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "supplier_code"}, {Name: "supplier_product_code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"seq", "supplier_name", "product_name", "spec", "upc", "supply_price", "updated_at",
			}),
		}).
		CreateInBatches(&rows, upsertBatchSize)
	if res.Error != nil {
		return 0, res.Error
	}
	return len(rows), nil
}

// RefreshComputedPrices recomputes computed_supply_price from the ratio table.
// An empty supplierCode covers every supplier; empty upcs covers every UPC.
// Quotations without a ratio get a NULL computed price. Returns the number of
// rows whose computed price changed.
func (r *Repository) RefreshComputedPrices(ctx context.Context, supplierCode string, upcs []string) (int, error) {
	ratios, err := r.loadRatios(ctx, supplierCode, upcs)
	if err != nil {
		return 0, err
	}

	query := r.db.WithContext(ctx).Model(&models.SupplierQuotation{})
	if supplierCode != "" {
		query = query.Where("supplier_code = ?", supplierCode)
	}
	if len(upcs) > 0 {
		query = query.Where("upc IN ?", upcs)
	}

	updated := 0
	var batch []models.SupplierQuotation
	res := query.FindInBatches(&batch, refreshBatchSize, func(tx *gorm.DB, _ int) error {
		for _, q := range batch {
			next := decimal.NullDecimal{}
			if ratio, ok := ratios[ratioKey(q.SupplierCode, q.UPC)]; ok {
				next = pricing.ComputedPrice(q.SupplyPrice, &ratio)
			}
			if sameNullDecimal(next, q.ComputedSupplyPrice) {
				continue
			}
			if err := r.db.WithContext(ctx).
				Model(&models.SupplierQuotation{}).
				Where("id = ?", q.ID).
				UpdateColumn("computed_supply_price", next).Error; err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if res.Error != nil {
		return updated, res.Error
	}
	return updated, nil
}

func (r *Repository) loadRatios(ctx context.Context, supplierCode string, upcs []string) (map[string]models.PriceRatio, error) {
	query := r.db.WithContext(ctx).Model(&models.PriceRatio{})
	if supplierCode != "" {
		query = query.Where("supplier_code = ?", supplierCode)
	}
	if len(upcs) > 0 {
		query = query.Where("upc IN ?", upcs)
	}
	var rows []models.PriceRatio
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]models.PriceRatio, len(rows))
	for _, row := range rows {
		out[ratioKey(row.SupplierCode, row.UPC)] = row
	}
	return out, nil
}

func ratioKey(supplierCode, upc string) string {
	return supplierCode + "\x1f" + strings.TrimSpace(upc)
}

func sameNullDecimal(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}
