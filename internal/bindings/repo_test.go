package bindings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotewise/quotewise-backend/pkg/db/dbtest"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
)

func TestRepositoryUpsertFindDelete(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB())
	ctx := context.Background()

	_, err := repo.Upsert(ctx, models.SkuBinding{SupplierCode: "S1", SupplierProductCode: "P1", SKU: "SKU1"})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, models.SkuBinding{SupplierCode: "S2", SupplierProductCode: "P2", SKU: "SKU2"})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, models.SkuBinding{SupplierCode: "S1", SupplierProductCode: "P1", SKU: "SKU9"})
	require.NoError(t, err)

	rows, err := repo.Find(ctx, []Key{{"S1", "P1"}, {"S2", "P2"}, {"S3", "P3"}})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "SKU9", rows[0].SKU)
	assert.Equal(t, "SKU2", rows[1].SKU)

	removed, err := repo.Delete(ctx, Key{"S1", "P1"})
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, Key{"S1", "P1"})
	require.NoError(t, err)
	assert.False(t, removed)

	rows, err = repo.Find(ctx, []Key{{"S1", "P1"}})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
