package suppliers

import (
	"context"
	"fmt"

	"github.com/quotewise/quotewise-backend/internal/cache"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
)

const maxSKUs = 1000

// Store is implemented by the local repository and the upstream client.
type Store interface {
	NamesBySKU(ctx context.Context, skus []string) (map[string][]string, error)
	StoreRelations(ctx context.Context, supplierCodes []string) ([]models.SupplierStoreRelation, error)
}

// Service exposes supplier lookups.
type Service interface {
	NamesBySKU(ctx context.Context, skus []string) (map[string][]string, error)
	StoreRelations(ctx context.Context, supplierCodes []string) ([]models.SupplierStoreRelation, error)
}

type service struct {
	store Store
}

// NewService builds a supplier lookup service.
func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("supplier store required")
	}
	return &service{store: store}, nil
}

func (s *service) NamesBySKU(ctx context.Context, skus []string) (map[string][]string, error) {
	skus = cache.NormalizeCodes(skus)
	if len(skus) > maxSKUs {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d skus per request", maxSKUs))
	}
	out, err := s.store.NamesBySKU(ctx, skus)
	if err != nil {
		return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "load supplier names")
	}
	return out, nil
}

func (s *service) StoreRelations(ctx context.Context, supplierCodes []string) ([]models.SupplierStoreRelation, error) {
	rows, err := s.store.StoreRelations(ctx, cache.NormalizeCodes(supplierCodes))
	if err != nil {
		return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "load supplier store relations")
	}
	return rows, nil
}
