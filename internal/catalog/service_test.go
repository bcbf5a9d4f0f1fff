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
	"github.com/schemedesk/schemedesk-backend/pkg/db"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
	pkgerrors "github.com/schemedesk/schemedesk-backend/pkg/errors"
)

func TestValidateSlabs(t *testing.T) {
	five := 5
	three := 3

	t.Run("validBands", func(t *testing.T) {
		err := validateSlabs("Widget", []SlabEntry{
			{MinQuantity: 1, MaxQuantity: &five, PayoutAmount: decimal.NewFromInt(2000)},
			{MinQuantity: 6, PayoutAmount: decimal.NewFromInt(3500)},
		})
		require.NoError(t, err)
	})

	t.Run("emptySlabs", func(t *testing.T) {
		err := validateSlabs("Widget", nil)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})

	t.Run("openEndedMustBeLast", func(t *testing.T) {
		err := validateSlabs("Widget", []SlabEntry{
			{MinQuantity: 1},
			{MinQuantity: 6, MaxQuantity: nil},
			{MinQuantity: 11},
		})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})

	t.Run("overlappingBands", func(t *testing.T) {
		err := validateSlabs("Widget", []SlabEntry{
			{MinQuantity: 1, MaxQuantity: &five},
			{MinQuantity: 4, MaxQuantity: nil},
		})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})

	t.Run("invertedBand", func(t *testing.T) {
		err := validateSlabs("Widget", []SlabEntry{
			{MinQuantity: 5, MaxQuantity: &three},
		})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})
}

func TestValidateDescriptor(t *testing.T) {
	base := func() SchemeDescriptor {
		return SchemeDescriptor{
			SchemeName:        "Monsoon Bonanza",
			SchemePeriodStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			SchemePeriodEnd:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
			Products: []ProductEntry{
				{
					ProductName: "AC 1.5T",
					SupportType: "Cashback",
					PayoutType:  "Fixed Amount",
					PayoutAmount: decimal.NewFromInt(500),
				},
			},
		}
	}

	t.Run("ok", func(t *testing.T) {
		require.NoError(t, validateDescriptor(base()))
	})

	t.Run("missingName", func(t *testing.T) {
		d := base()
		d.SchemeName = "  "
		assert.True(t, pkgerrors.IsCode(validateDescriptor(d), pkgerrors.CodeValidation))
	})

	t.Run("invertedPeriod", func(t *testing.T) {
		d := base()
		d.SchemePeriodStart, d.SchemePeriodEnd = d.SchemePeriodEnd, d.SchemePeriodStart
		assert.True(t, pkgerrors.IsCode(validateDescriptor(d), pkgerrors.CodeValidation))
	})

	t.Run("noProducts", func(t *testing.T) {
		d := base()
		d.Products = nil
		assert.True(t, pkgerrors.IsCode(validateDescriptor(d), pkgerrors.CodeValidation))
	})

	t.Run("bundleWithoutPairing", func(t *testing.T) {
		d := base()
		d.Products[0].IsBundleOffer = true
		assert.True(t, pkgerrors.IsCode(validateDescriptor(d), pkgerrors.CodeValidation))
	})

	t.Run("unknownTargetMetric", func(t *testing.T) {
		d := base()
		d.DealerTargets = []TargetEntry{{Metric: "Revenue"}}
		assert.True(t, pkgerrors.IsCode(validateDescriptor(d), pkgerrors.CodeValidation))
	})

	t.Run("unitsTargetNeedsQuantity", func(t *testing.T) {
		d := base()
		d.DealerTargets = []TargetEntry{{Metric: "Units Sold"}}
		assert.True(t, pkgerrors.IsCode(validateDescriptor(d), pkgerrors.CodeValidation))
	})
}

func TestBuildOfferRejectsUnknownPayoutType(t *testing.T) {
	_, err := buildOffer(uuid.New(), uuid.New(), ProductEntry{
		ProductName: "AC 1.5T",
		PayoutType:  "Lottery",
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateSchemeFromDescriptor(t *testing.T) {
	conn := testdb.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, db.NewWithConn(conn))
	require.NoError(t, err)

	ctx := context.Background()
	five := 5
	code := "AC-150"
	bundleName := "Stabilizer"
	bundlePrice := decimal.NewFromInt(38000)
	targetQty := 50

	descriptor := SchemeDescriptor{
		SchemeName:        "Summer Cool 2025",
		SchemePeriodStart: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		SchemePeriodEnd:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Products: []ProductEntry{
			{
				ProductName:  "AC 1.5T",
				ProductCode:  &code,
				DealerPrice:  decimal.NewFromInt(32000),
				MRP:          decimal.NewFromInt(41000),
				SupportType:  "Slab Cashback",
				PayoutType:   "Fixed Amount",
				PayoutAmount: decimal.NewFromInt(500),
				IsSlabBased:  true,
				Slabs: []SlabEntry{
					{MinQuantity: 1, MaxQuantity: &five, PayoutAmount: decimal.NewFromInt(2000)},
					{MinQuantity: 6, PayoutAmount: decimal.NewFromInt(3500)},
				},
			},
			{
				ProductName:       "Refrigerator 300L",
				DealerPrice:       decimal.NewFromInt(25000),
				MRP:               decimal.NewFromInt(31000),
				SupportType:       "Bundle Offer",
				PayoutType:        "Percentage",
				PayoutAmount:      decimal.NewFromInt(10),
				IsDealerIncentive: true,
				IsBundleOffer:     true,
				BundleProductName: &bundleName,
				BundlePrice:       &bundlePrice,
			},
		},
		DealerTargets: []TargetEntry{
			{
				Metric:         "Units Sold",
				TargetQuantity: &targetQty,
			},
		},
	}

	scheme, err := svc.CreateSchemeFromDescriptor(ctx, descriptor)
	require.NoError(t, err)
	require.NotNil(t, scheme)

	assert.Equal(t, "Summer Cool 2025", scheme.Name)
	assert.Equal(t, enums.SchemeStatusActive, scheme.Status)
	assert.Equal(t, enums.ApprovalStatusPending, scheme.ApprovalStatus)
	require.Len(t, scheme.Offers, 2)
	require.Len(t, scheme.BundleOffers, 1)
	require.Len(t, scheme.Targets, 1)

	var slabOffer, bundleOffer int
	for i, offer := range scheme.Offers {
		if offer.IsSlabBased {
			slabOffer = i
		}
		if offer.IsBundleOffer {
			bundleOffer = i
		}
	}
	assert.Len(t, scheme.Offers[slabOffer].Slabs, 2)
	assert.Equal(t, enums.PayoutTypeFixed, scheme.Offers[slabOffer].PayoutType)
	assert.Equal(t, enums.PayoutTypePercentage, scheme.Offers[bundleOffer].PayoutType)
	assert.True(t, scheme.Offers[bundleOffer].IsDealerIncentive)

	// Product upsert created the bundle product too.
	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	summaries, err := svc.ListSchemes(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].OfferCount)
	assert.Equal(t, 1, summaries[0].TargetCount)
}

func TestCreateSchemeFromDescriptorUpsertsExistingProduct(t *testing.T) {
	conn := testdb.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, db.NewWithConn(conn))
	require.NoError(t, err)

	ctx := context.Background()

	first := SchemeDescriptor{
		SchemeName:        "Launch Promo",
		SchemePeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		SchemePeriodEnd:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Products: []ProductEntry{
			{
				ProductName:  "Washer 7kg",
				DealerPrice:  decimal.NewFromInt(18000),
				SupportType:  "Cashback",
				PayoutType:   "Fixed",
				PayoutAmount: decimal.NewFromInt(300),
			},
		},
	}
	_, err = svc.CreateSchemeFromDescriptor(ctx, first)
	require.NoError(t, err)

	second := first
	second.SchemeName = "Februrary Followup"
	second.Products = []ProductEntry{
		{
			ProductName:  "Washer 7kg",
			DealerPrice:  decimal.NewFromInt(17500),
			SupportType:  "Cashback",
			PayoutType:   "Fixed",
			PayoutAmount: decimal.NewFromInt(250),
		},
	}
	_, err = svc.CreateSchemeFromDescriptor(ctx, second)
	require.NoError(t, err)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].DealerPrice.Equal(decimal.NewFromInt(17500)))
}
