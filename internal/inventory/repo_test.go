package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotewise/quotewise-backend/pkg/db/dbtest"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/enums"
)

func seed(t *testing.T, repo *Repository) {
	t.Helper()
	db := repo.db
	summaries := []models.InventorySummary{
		{Dimension: enums.DimensionAll, SKU: "SKU2", UPC: "UPC2", ProductName: "Whole Milk", LowestPurchasePrice: decimal.NewNullDecimal(decimal.NewFromInt(7))},
		{Dimension: enums.DimensionAll, SKU: "SKU1", UPC: "UPC1,UPC1B", ProductName: "Skim Milk"},
		{Dimension: enums.DimensionStore, SKU: "SKU1", StoreName: "North", ProductName: "Skim Milk"},
		{Dimension: enums.DimensionStore, SKU: "SKU1", StoreName: "South", ProductName: "Skim Milk"},
		{Dimension: enums.DimensionCity, SKU: "SKU1", City: "Hangzhou", ProductName: "Skim Milk"},
	}
	require.NoError(t, db.Create(&summaries).Error)
	mappings := []models.UpcSkuMapping{
		{UPC: "UPC1", SKU: "SKU1"},
		{UPC: "UPC1", SKU: "SKU1-ALT"},
		{UPC: "UPC2", SKU: "SKU2"},
	}
	require.NoError(t, db.Create(&mappings).Error)
}

func TestListSummariesByDimension(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB())
	seed(t, repo)
	ctx := context.Background()

	all, err := repo.ListSummaries(ctx, Filter{Dimension: enums.DimensionAll, StoreName: "ignored"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "SKU1", all[0].SKU)
	assert.True(t, all[1].LowestPurchasePrice.Decimal.Equal(decimal.NewFromInt(7)))

	store, err := repo.ListSummaries(ctx, Filter{Dimension: enums.DimensionStore, StoreName: "South"})
	require.NoError(t, err)
	require.Len(t, store, 1)
	assert.Equal(t, "South", store[0].StoreName)

	city, err := repo.ListSummaries(ctx, Filter{Dimension: enums.DimensionCity, City: "Hangzhou"})
	require.NoError(t, err)
	assert.Len(t, city, 1)

	keyword, err := repo.ListSummaries(ctx, Filter{Dimension: enums.DimensionAll, Keyword: "whole"})
	require.NoError(t, err)
	require.Len(t, keyword, 1)
	assert.Equal(t, "SKU2", keyword[0].SKU)
}

func TestUPCSkuMap(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB())
	seed(t, repo)

	got, err := repo.UPCSkuMap(context.Background(), []string{"UPC1", "UPC2", "UPC404"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"UPC1": {"SKU1", "SKU1-ALT"},
		"UPC2": {"SKU2"},
	}, got)

	empty, err := repo.UPCSkuMap(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
