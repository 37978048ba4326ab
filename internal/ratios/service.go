package ratios

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/quotewise/quotewise-backend/internal/cache"
	"github.com/quotewise/quotewise-backend/internal/pricing"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
	"github.com/quotewise/quotewise-backend/pkg/logger"
)

// Store is implemented by the local repository and the upstream client.
type Store interface {
	Find(ctx context.Context, supplierCode string, upcs []string) ([]models.PriceRatio, error)
	Upsert(ctx context.Context, ratio models.PriceRatio) (*models.PriceRatio, error)
	Delete(ctx context.Context, supplierCode, upc string) (bool, error)
}

// Refresher recomputes stored computed supply prices after a ratio change.
type Refresher interface {
	RefreshComputedPrices(ctx context.Context, supplierCode string, upcs []string) (int, error)
}

// Service manages per-supplier, per-UPC price ratios.
type Service interface {
	Get(ctx context.Context, supplierCode string, upcs []string) ([]models.PriceRatio, error)
	Set(ctx context.Context, input SetInput) (*models.PriceRatio, error)
	Clear(ctx context.Context, supplierCode, upc string) (bool, error)
}

// SetInput is the ratio pair an operator submits.
type SetInput struct {
	SupplierCode     string          `json:"supplier_code" validate:"required"`
	UPC              string          `json:"upc" validate:"required"`
	SupplierRatio    decimal.Decimal `json:"supplier_ratio"`
	CounterpartRatio decimal.Decimal `json:"counterpart_ratio"`
}

// ServiceParams wires the ratio service.
type ServiceParams struct {
	Store       Store
	Refresher   Refresher
	Invalidator cache.Invalidator
	Logger      *logger.Logger
}

type service struct {
	store       Store
	refresher   Refresher
	invalidator cache.Invalidator
	logg        *logger.Logger
}

// NewService builds a ratio service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("ratio store required")
	}
	if params.Refresher == nil {
		return nil, fmt.Errorf("computed price refresher required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		store:       params.Store,
		refresher:   params.Refresher,
		invalidator: params.Invalidator,
		logg:        logg,
	}, nil
}

func (s *service) Get(ctx context.Context, supplierCode string, upcs []string) ([]models.PriceRatio, error) {
	supplierCode = strings.TrimSpace(supplierCode)
	if supplierCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier_code is required")
	}
	rows, err := s.store.Find(ctx, supplierCode, trimAll(upcs))
	if err != nil {
		return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "load price ratios")
	}
	return rows, nil
}

func (s *service) Set(ctx context.Context, input SetInput) (*models.PriceRatio, error) {
	code := strings.TrimSpace(input.SupplierCode)
	upc := strings.TrimSpace(input.UPC)
	if code == "" || upc == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier_code and upc are required")
	}
	if err := pricing.ValidateRatioPair(input.SupplierRatio, input.CounterpartRatio); err != nil {
		return nil, err
	}

	saved, err := s.store.Upsert(ctx, models.PriceRatio{
		SupplierCode:     code,
		UPC:              upc,
		SupplierRatio:    input.SupplierRatio,
		CounterpartRatio: input.CounterpartRatio,
	})
	if err != nil {
		return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "save price ratio")
	}
	if err := s.afterChange(ctx, code, upc); err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"supplier_code":     code,
		"upc":               upc,
		"supplier_ratio":    saved.SupplierRatio.String(),
		"counterpart_ratio": saved.CounterpartRatio.String(),
	})
	s.logg.Info(logCtx, "price ratio saved")
	return saved, nil
}

// Clear deletes the ratio and reports whether one existed.
func (s *service) Clear(ctx context.Context, supplierCode, upc string) (bool, error) {
	code := strings.TrimSpace(supplierCode)
	upc = strings.TrimSpace(upc)
	if code == "" || upc == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "supplier_code and upc are required")
	}
	removed, err := s.store.Delete(ctx, code, upc)
	if err != nil {
		return false, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "clear price ratio")
	}
	if !removed {
		return false, nil
	}
	return true, s.afterChange(ctx, code, upc)
}

// afterChange recomputes the affected quotations and drops cached payloads for the supplier.
// Invalidation runs even when the recompute fails.
func (s *service) afterChange(ctx context.Context, code, upc string) error {
	_, err := s.refresher.RefreshComputedPrices(ctx, code, []string{upc})
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, []string{code})
	}
	if err != nil {
		return pkgerrors.Ensure(pkgerrors.CodeDependency, err, "recompute supply prices")
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
