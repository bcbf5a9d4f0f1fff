package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemedesk/schemedesk-backend/internal/testdb"
	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
	"github.com/schemedesk/schemedesk-backend/pkg/pagination"
)

func TestRepositoryProductLookup(t *testing.T) {
	conn := testdb.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	code := "TV-55"
	created, err := repo.CreateProduct(ctx, &models.Product{
		Name:        "TV 55in",
		Code:        &code,
		DealerPrice: decimal.NewFromInt(45000),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	// Same name without code is a different identity.
	noCode, err := repo.CreateProduct(ctx, &models.Product{
		Name:        "TV 55in",
		DealerPrice: decimal.NewFromInt(44000),
	})
	require.NoError(t, err)

	byCode, err := repo.FindProductByNameCode(ctx, "TV 55in", &code)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)

	byName, err := repo.FindProductByNameCode(ctx, "TV 55in", nil)
	require.NoError(t, err)
	assert.Equal(t, noCode.ID, byName.ID)
}

func TestRepositorySchemeDetailPreloads(t *testing.T) {
	conn := testdb.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	scheme, err := repo.CreateScheme(ctx, &models.Scheme{
		Name:        "Diwali Dhamaka",
		PeriodStart: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC),
		Status:      enums.SchemeStatusActive,
	})
	require.NoError(t, err)

	product, err := repo.CreateProduct(ctx, &models.Product{Name: "Mixer"})
	require.NoError(t, err)

	offer, err := repo.CreateOffer(ctx, &models.Offer{
		SchemeID:    scheme.ID,
		ProductID:   &product.ID,
		SupportType: "Cashback",
		PayoutType:  enums.PayoutTypeFixed,
		PayoutValue: decimal.NewFromInt(200),
		IsSlabBased: true,
	})
	require.NoError(t, err)

	five, ten := 5, 10
	require.NoError(t, repo.CreateSlabs(ctx, []models.PayoutSlab{
		{OfferID: offer.ID, MinQuantity: 6, MaxQuantity: &ten, PayoutAmount: decimal.NewFromInt(900)},
		{OfferID: offer.ID, MinQuantity: 1, MaxQuantity: &five, PayoutAmount: decimal.NewFromInt(400)},
	}))

	qty := 20
	_, err = repo.CreateTarget(ctx, &models.DealerTarget{
		SchemeID:       scheme.ID,
		Metric:         enums.TargetMetricUnitsSold,
		TargetQuantity: &qty,
	})
	require.NoError(t, err)

	detail, err := repo.FindSchemeByID(ctx, scheme.ID)
	require.NoError(t, err)
	require.Len(t, detail.Offers, 1)
	require.Len(t, detail.Offers[0].Slabs, 2)
	// Slabs come back ordered by min_quantity regardless of insert order.
	assert.Equal(t, 1, detail.Offers[0].Slabs[0].MinQuantity)
	assert.Equal(t, 6, detail.Offers[0].Slabs[1].MinQuantity)
	require.Len(t, detail.Targets, 1)
}

func TestRepositoryListSalesPagination(t *testing.T) {
	conn := testdb.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	productID := uuid.New()
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		txn := models.SalesTransaction{
			ID:                   uuid.New(),
			DealerID:             "D-100",
			ProductID:            productID,
			Quantity:             1,
			UnitDealerPrice:      decimal.NewFromInt(1000),
			NetPriceAfterSupport: decimal.NewFromInt(1000),
			NetPricePerUnit:      decimal.NewFromInt(1000),
			VerificationStatus:   enums.VerificationStatusPending,
			SaleTimestamp:        base.Add(time.Duration(i) * time.Hour),
			CreatedAt:            base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, conn.Create(&txn).Error)
	}

	dealer := "D-100"
	page1, err := repo.ListSales(ctx, ListSalesInput{
		DealerID:   &dealer,
		Pagination: pagination.Params{Limit: 4},
	})
	require.NoError(t, err)
	require.Len(t, page1.Transactions, 4)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := repo.ListSales(ctx, ListSalesInput{
		DealerID:   &dealer,
		Pagination: pagination.Params{Limit: 4, Cursor: page1.NextCursor},
	})
	require.NoError(t, err)
	require.Len(t, page2.Transactions, 3)
	assert.Empty(t, page2.NextCursor)

	// Newest first across the pages, no overlap.
	seen := map[uuid.UUID]bool{}
	prev := time.Time{}
	for i, txn := range append(page1.Transactions, page2.Transactions...) {
		require.False(t, seen[txn.ID])
		seen[txn.ID] = true
		if i > 0 {
			assert.False(t, txn.CreatedAt.After(prev))
		}
		prev = txn.CreatedAt
	}

	from := base.Add(5 * time.Hour)
	filtered, err := repo.ListSales(ctx, ListSalesInput{
		From:       &from,
		Pagination: pagination.Params{Limit: 10},
	})
	require.NoError(t, err)
	assert.Len(t, filtered.Transactions, 2)
}
