package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/quotewise/quotewise-backend/pkg/db/models"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
)

const defaultChunkSize = 500

// Store is the inventory read surface shared by the repository and the upstream client.
type Store interface {
	ListSummaries(ctx context.Context, filter Filter) ([]models.InventorySummary, error)
	UPCSkuMap(ctx context.Context, upcs []string) (map[string][]string, error)
}

// Service exposes inventory lookups.
type Service interface {
	ListSummaries(ctx context.Context, filter Filter) ([]models.InventorySummary, error)
	UPCSkuMap(ctx context.Context, upcs []string) (map[string][]string, error)
}

type service struct {
	store     Store
	chunkSize int
}

// NewService builds an inventory service. chunkSize bounds the UPCs sent per
// mapping query; non-positive values use 500.
func NewService(store Store, chunkSize int) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("inventory store required")
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &service{store: store, chunkSize: chunkSize}, nil
}

func (s *service) ListSummaries(ctx context.Context, filter Filter) ([]models.InventorySummary, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.store.ListSummaries(ctx, filter.Normalize())
	if err != nil {
		return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "list inventory summaries")
	}
	return rows, nil
}

func (s *service) UPCSkuMap(ctx context.Context, upcs []string) (map[string][]string, error) {
	unique := dedupe(upcs)
	out := make(map[string][]string, len(unique))
	for start := 0; start < len(unique); start += s.chunkSize {
		end := min(start+s.chunkSize, len(unique))
		part, err := s.store.UPCSkuMap(ctx, unique[start:end])
		if err != nil {
			return nil, pkgerrors.Ensure(pkgerrors.CodeDependency, err, "load upc sku map")
		}
		for upc, skus := range part {
			out[upc] = append(out[upc], skus...)
		}
	}
	return out, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
