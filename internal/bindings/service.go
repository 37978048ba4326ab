package bindings

import (
	"context"
	"fmt"
	"strings"

	"github.com/quotewise/quotewise-backend/internal/cache"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
	"github.com/quotewise/quotewise-backend/pkg/logger"
)

// Store is implemented by the local repository and the upstream client.
type Store interface {
	Find(ctx context.Context, keys []Key) ([]models.SkuBinding, error)
	Upsert(ctx context.Context, binding models.SkuBinding) (*models.SkuBinding, error)
	Delete(ctx context.Context, key Key) (bool, error)
}

// Service manages manual supplier product → SKU bindings.
type Service interface {
	Lookup(ctx context.Context, keys []Key) ([]models.SkuBinding, error)
	Get(ctx context.Context, key Key) (*models.SkuBinding, error)
	Set(ctx context.Context, key Key, sku string) (*models.SkuBinding, error)
	Clear(ctx context.Context, key Key) (bool, error)
}

// ServiceParams wires the binding service.
type ServiceParams struct {
	Store       Store
	Invalidator cache.Invalidator
	Logger      *logger.Logger
	BatchSize   int
	Concurrency int
}

type service struct {
	store       Store
	invalidator cache.Invalidator
	logg        *logger.Logger
	batchSize   int
	concurrency int
}

// NewService builds a binding service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("binding store required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		store:       params.Store,
		invalidator: params.Invalidator,
		logg:        logg,
		batchSize:   params.BatchSize,
		concurrency: params.Concurrency,
	}, nil
}

func (s *service) Lookup(ctx context.Context, keys []Key) ([]models.SkuBinding, error) {
	rows, err := BatchLookup(ctx, uniqueKeys(keys), s.batchSize, s.concurrency, s.store.Find)
	if err != nil {
		return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "lookup sku bindings")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, key Key) (*models.SkuBinding, error) {
	key = key.normalize()
	if !key.valid() {
		return nil, errInvalidKey()
	}
	rows, err := s.store.Find(ctx, []Key{key})
	if err != nil {
		return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "get sku binding")
	}
	for i := range rows {
		if rows[i].SupplierCode == key.SupplierCode && rows[i].SupplierProductCode == key.SupplierProductCode {
			return &rows[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sku binding not found")
}

func (s *service) Set(ctx context.Context, key Key, sku string) (*models.SkuBinding, error) {
	key = key.normalize()
	if !key.valid() {
		return nil, errInvalidKey()
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required; clear the binding to remove it")
	}

	saved, err := s.store.Upsert(ctx, models.SkuBinding{
		SupplierCode:        key.SupplierCode,
		SupplierProductCode: key.SupplierProductCode,
		SKU:                 sku,
	})
	if err != nil {
		return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "save sku binding")
	}
	s.invalidate(ctx, key.SupplierCode)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"supplier_code":         key.SupplierCode,
		"supplier_product_code": key.SupplierProductCode,
		"sku":                   sku,
	})
	s.logg.Info(logCtx, "sku binding saved")
	return saved, nil
}

// Clear deletes the binding and reports whether one existed.
func (s *service) Clear(ctx context.Context, key Key) (bool, error) {
	key = key.normalize()
	if !key.valid() {
		return false, errInvalidKey()
	}
	removed, err := s.store.Delete(ctx, key)
	if err != nil {
		return false, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "clear sku binding")
	}
	if removed {
		s.invalidate(ctx, key.SupplierCode)
	}
	return removed, nil
}

func (s *service) invalidate(ctx context.Context, supplierCode string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, []string{supplierCode})
	}
}

func errInvalidKey() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "supplier_code and supplier_product_code are required")
}
