package quotations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quotewise/quotewise-backend/internal/cache"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
	"github.com/quotewise/quotewise-backend/pkg/logger"
	"github.com/quotewise/quotewise-backend/pkg/pagination"
)

const maxRemarkLength = 500

// Store is the persistence surface behind the service. The local repository
// and the remote upstream client both implement it.
type Store interface {
	Lister
	UpdateRemark(ctx context.Context, id uuid.UUID, remark string) (*models.SupplierQuotation, error)
	Upsert(ctx context.Context, rows []models.SupplierQuotation) (int, error)
	RefreshComputedPrices(ctx context.Context, supplierCode string, upcs []string) (int, error)
}

// Service exposes quotation operations.
type Service interface {
	List(ctx context.Context, filter Filter, page pagination.Params) (*Page, error)
	ListAll(ctx context.Context, filter Filter) ([]models.SupplierQuotation, error)
	UpdateRemark(ctx context.Context, id uuid.UUID, remark string) (*models.SupplierQuotation, error)
	Import(ctx context.Context, rows []models.SupplierQuotation) (*ImportResult, error)
	RefreshComputedPrices(ctx context.Context, supplierCode string, upcs []string) (int, error)
}

// ImportResult summarizes a batch import.
type ImportResult struct {
	Upserted   int `json:"upserted"`
	Recomputed int `json:"recomputed"`
}

// ServiceParams wires the quotation service.
type ServiceParams struct {
	Store       Store
	Invalidator cache.Invalidator
	Logger      *logger.Logger
}

type service struct {
	store       Store
	invalidator cache.Invalidator
	logg        *logger.Logger
}

// NewService builds a quotation service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("quotation store required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: params.Store, invalidator: params.Invalidator, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filter Filter, page pagination.Params) (*Page, error) {
	out, err := s.store.List(ctx, filter.Normalize(), page.Normalize())
	if err != nil {
		return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "list quotations")
	}
	return out, nil
}

func (s *service) ListAll(ctx context.Context, filter Filter) ([]models.SupplierQuotation, error) {
	out, err := CollectAll(ctx, s.store, filter.Normalize())
	if err != nil {
		return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "list quotations")
	}
	return out, nil
}

func (s *service) UpdateRemark(ctx context.Context, id uuid.UUID, remark string) (*models.SupplierQuotation, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation id is required")
	}
	remark = strings.TrimSpace(remark)
	if len([]rune(remark)) > maxRemarkLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("remark exceeds %d characters", maxRemarkLength))
	}

	updated, err := s.store.UpdateRemark(ctx, id, remark)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		}
		return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "update remark")
	}
	s.invalidate(ctx, []string{updated.SupplierCode})
	return updated, nil
}

// RowError points at an invalid import row.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (s *service) Import(ctx context.Context, rows []models.SupplierQuotation) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one row is required")
	}

	var problems []RowError
	seen := make(map[string]int, len(rows))
	clean := make([]models.SupplierQuotation, 0, len(rows))
	for i, row := range rows {
		row.SupplierCode = strings.TrimSpace(row.SupplierCode)
		row.SupplierProductCode = strings.TrimSpace(row.SupplierProductCode)
		row.UPC = strings.TrimSpace(row.UPC)
		switch {
		case row.SupplierCode == "":
			problems = append(problems, RowError{Row: i, Message: "supplier_code is required"})
			continue
		case row.SupplierProductCode == "":
			problems = append(problems, RowError{Row: i, Message: "supplier_product_code is required"})
			continue
		case row.SupplyPrice.Valid && row.SupplyPrice.Decimal.IsNegative():
			problems = append(problems, RowError{Row: i, Message: "supply_price must not be negative"})
			continue
		}
		key := row.SupplierCode + "\x1f" + row.SupplierProductCode
		if first, dup := seen[key]; dup {
			problems = append(problems, RowError{Row: i, Message: fmt.Sprintf("duplicates row %d", first)})
			continue
		}
		seen[key] = i
		row.ComputedSupplyPrice.Valid = false
		clean = append(clean, row)
	}
	if len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid import rows").WithDetails(problems)
	}

	upserted, err := s.store.Upsert(ctx, clean)
	if err != nil {
		return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "import quotations")
	}

	codes := cache.NormalizeCodes(supplierCodes(clean))
	result := &ImportResult{Upserted: upserted}
	for _, code := range codes {
		n, err := s.store.RefreshComputedPrices(ctx, code, nil)
		if err != nil {
			s.invalidate(ctx, codes)
			return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "recompute supply prices")
		}
		result.Recomputed += n
	}
	s.invalidate(ctx, codes)

	logCtx := s.logg.WithFields(ctx, map[string]any{"upserted": result.Upserted, "suppliers": len(codes)})
	s.logg.Info(logCtx, "quotations imported")
	return result, nil
}

func (s *service) RefreshComputedPrices(ctx context.Context, supplierCode string, upcs []string) (int, error) {
	supplierCode = strings.TrimSpace(supplierCode)
	n, err := s.store.RefreshComputedPrices(ctx, supplierCode, upcs)
	if err != nil {
		return 0, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "recompute supply prices")
	}
	if n > 0 {
		if supplierCode == "" {
			s.invalidateAll(ctx)
		} else {
			s.invalidate(ctx, []string{supplierCode})
		}
	}
	return n, nil
}

func (s *service) invalidate(ctx context.Context, codes []string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, codes)
	}
}

func (s *service) invalidateAll(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateAll(ctx)
	}
}

func supplierCodes(rows []models.SupplierQuotation) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.SupplierCode)
	}
	return out
}
