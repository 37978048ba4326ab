package quotations

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quotewise/quotewise-backend/pkg/db/dbtest"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/pagination"
)

func price(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func seedQuotations(t *testing.T, repo *Repository) {
	t.Helper()
	rows := []models.SupplierQuotation{
		{Seq: 2, SupplierCode: "S1", SupplierName: "Fresh Farm", SupplierProductCode: "P2", ProductName: "Whole Milk 1L", UPC: "UPC2", SupplyPrice: price("8")},
		{Seq: 1, SupplierCode: "S1", SupplierName: "Fresh Farm", SupplierProductCode: "P1", ProductName: "Skim Milk 1L", UPC: "UPC1", SupplyPrice: price("24")},
		{Seq: 1, SupplierCode: "S2", SupplierName: "Daily Goods", SupplierProductCode: "P1", ProductName: "Rice 5kg", UPC: "UPC3", SupplyPrice: price("40")},
	}
	n, err := repo.Upsert(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestRepositoryListFiltersAndOrders(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	seedQuotations(t, repo)
	ctx := context.Background()

	page, err := repo.List(ctx, Filter{SupplierCodes: []string{"S1"}}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "P1", page.Items[0].SupplierProductCode, "ordered by seq")
	assert.EqualValues(t, 2, page.Meta.Total)

	page, err = repo.List(ctx, Filter{ProductName: "MILK"}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = repo.List(ctx, Filter{SupplierName: "daily", UPC: "UPC3"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "S2", page.Items[0].SupplierCode)

	page, err = repo.List(ctx, Filter{}, pagination.Params{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Meta.TotalPages)
}

func TestCollectAllWalksPages(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	seedQuotations(t, repo)

	all, err := CollectAll(context.Background(), repo, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepositoryUpsertKeepsIdentityAndRemark(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	seedQuotations(t, repo)
	ctx := context.Background()

	page, err := repo.List(ctx, Filter{SupplierCodes: []string{"S2"}}, pagination.Params{})
	require.NoError(t, err)
	original := page.Items[0]

	_, err = repo.UpdateRemark(ctx, original.ID, "call before ordering")
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, []models.SupplierQuotation{
		{Seq: 9, SupplierCode: "S2", SupplierProductCode: "P1", ProductName: "Rice 5kg", UPC: "UPC3", SupplyPrice: price("38.5")},
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Seq)
	assert.True(t, got.SupplyPrice.Decimal.Equal(decimal.RequireFromString("38.5")))
	assert.Equal(t, "call before ordering", got.Remark)
}

func TestRepositoryUpdateRemarkMissing(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())

	_, err := repo.UpdateRemark(context.Background(), uuid.New(), "x")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryRefreshComputedPrices(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	seedQuotations(t, repo)
	ctx := context.Background()

	require.NoError(t, client.DB().Create(&models.PriceRatio{
		SupplierCode: "S1", UPC: "UPC1",
		SupplierRatio: decimal.NewFromInt(12), CounterpartRatio: decimal.NewFromInt(1),
	}).Error)

	n, err := repo.RefreshComputedPrices(ctx, "S1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	page, err := repo.List(ctx, Filter{SupplierCodes: []string{"S1"}}, pagination.Params{})
	require.NoError(t, err)
	byProduct := map[string]models.SupplierQuotation{}
	for _, q := range page.Items {
		byProduct[q.SupplierProductCode] = q
	}
	require.True(t, byProduct["P1"].ComputedSupplyPrice.Valid)
	assert.True(t, byProduct["P1"].ComputedSupplyPrice.Decimal.Equal(decimal.NewFromInt(2)))
	assert.False(t, byProduct["P2"].ComputedSupplyPrice.Valid)

	n, err = repo.RefreshComputedPrices(ctx, "S1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "unchanged prices are not rewritten")

	require.NoError(t, client.DB().Where("supplier_code = ?", "S1").Delete(&models.PriceRatio{}).Error)
	n, err = repo.RefreshComputedPrices(ctx, "", []string{"UPC1"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.FindByID(ctx, byProduct["P1"].ID)
	require.NoError(t, err)
	assert.False(t, got.ComputedSupplyPrice.Valid, "removing the ratio clears the computed price")
}
