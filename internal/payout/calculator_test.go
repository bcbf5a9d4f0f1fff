package payout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
	pkgerrors "github.com/schemedesk/schemedesk-backend/pkg/errors"
)

func newCalc() *Calculator {
	return NewCalculator(decimal.NewFromFloat(0.18))
}

func dec(value int64) decimal.Decimal {
	return decimal.NewFromInt(value)
}

func TestComputeFixedDealerIncentive(t *testing.T) {
	// 500/unit incentive on 3 units.
	offer := &models.Offer{
		PayoutType:        enums.PayoutTypeFixed,
		PayoutValue:       dec(500),
		IsDealerIncentive: true,
	}

	got, err := newCalc().Compute(Input{
		Offer:           offer,
		Quantity:        3,
		UnitDealerPrice: dec(20000),
	})
	require.NoError(t, err)

	assert.True(t, got.DealerIncentiveTotal.Equal(dec(1500)))
	assert.True(t, got.CustomerDiscountTotal.IsZero())
	assert.True(t, got.DealerIncentivePerUnit.Equal(dec(500)))
	// Incentive never reduces the net; GST charged on full gross.
	assert.True(t, got.NetPriceAfterSupport.Equal(dec(60000)))
	assert.True(t, got.GSTAmount.Equal(dec(10800)))
}

func TestComputePercentageCustomerDiscount(t *testing.T) {
	// 10% discount on 2 x 25000.
	offer := &models.Offer{
		PayoutType:  enums.PayoutTypePercentage,
		PayoutValue: dec(10),
	}

	got, err := newCalc().Compute(Input{
		Offer:           offer,
		Quantity:        2,
		UnitDealerPrice: dec(25000),
	})
	require.NoError(t, err)

	assert.True(t, got.CustomerDiscountTotal.Equal(dec(5000)))
	assert.True(t, got.DealerIncentiveTotal.IsZero())
	assert.True(t, got.NetPriceAfterSupport.Equal(dec(45000)))
	assert.True(t, got.CustomerDiscountPerUnit.Equal(dec(2500)))
	assert.True(t, got.NetPricePerUnit.Equal(dec(22500)))
	assert.True(t, got.GSTAmount.Equal(dec(8100)))
}

func TestComputePercentageSplitExactness(t *testing.T) {
	// Exactly one leg carries qty * price * value/100.
	for _, incentive := range []bool{true, false} {
		offer := &models.Offer{
			PayoutType:        enums.PayoutTypePercentage,
			PayoutValue:       decimal.NewFromFloat(7.5),
			IsDealerIncentive: incentive,
		}
		got, err := newCalc().Compute(Input{
			Offer:           offer,
			Quantity:        4,
			UnitDealerPrice: dec(19990),
		})
		require.NoError(t, err)

		expected := dec(19990).Mul(dec(4)).Mul(decimal.NewFromFloat(7.5)).Div(dec(100))
		sum := got.DealerIncentiveTotal.Add(got.CustomerDiscountTotal)
		assert.True(t, sum.Equal(expected))
		assert.True(t, got.DealerIncentiveTotal.IsZero() != got.CustomerDiscountTotal.IsZero())
	}
}

func TestComputeSlabBands(t *testing.T) {
	five := 5
	offer := &models.Offer{
		IsSlabBased:       true,
		IsDealerIncentive: true,
		Slabs: []models.PayoutSlab{
			{MinQuantity: 1, MaxQuantity: &five, PayoutAmount: dec(2000)},
			{MinQuantity: 6, PayoutAmount: dec(3500)},
		},
	}

	calc := newCalc()

	atBoundary, err := calc.Compute(Input{Offer: offer, Quantity: 5, UnitDealerPrice: dec(10000)})
	require.NoError(t, err)
	assert.True(t, atBoundary.DealerIncentiveTotal.Equal(dec(2000)))
	assert.True(t, atBoundary.SlabMatched)

	nextBand, err := calc.Compute(Input{Offer: offer, Quantity: 6, UnitDealerPrice: dec(10000)})
	require.NoError(t, err)
	// Whole-transaction amount, not per unit.
	assert.True(t, nextBand.DealerIncentiveTotal.Equal(dec(3500)))

	large, err := calc.Compute(Input{Offer: offer, Quantity: 500, UnitDealerPrice: dec(10000)})
	require.NoError(t, err)
	assert.True(t, large.DealerIncentiveTotal.Equal(dec(3500)))
}

func TestComputeSlabNoMatch(t *testing.T) {
	ten := 10
	offer := &models.Offer{
		IsSlabBased: true,
		Slabs: []models.PayoutSlab{
			{MinQuantity: 5, MaxQuantity: &ten, PayoutAmount: dec(1000)},
		},
	}

	got, err := newCalc().Compute(Input{Offer: offer, Quantity: 2, UnitDealerPrice: dec(8000)})
	require.NoError(t, err)

	// Outside every band: zero payout, warning flag, sale still settles.
	assert.False(t, got.SlabMatched)
	assert.True(t, got.CustomerDiscountTotal.IsZero())
	assert.True(t, got.DealerIncentiveTotal.IsZero())
	assert.True(t, got.NetPriceAfterSupport.Equal(dec(16000)))
}

func TestComputeBundleDifferential(t *testing.T) {
	offer := &models.Offer{
		IsBundleOffer: true,
		PayoutType:    enums.PayoutTypeFixed,
	}
	bundle := &models.BundleOffer{BundlePrice: dec(38000)}

	got, err := newCalc().Compute(Input{
		Offer:              offer,
		Bundle:             bundle,
		BundleProductPrice: dec(8000),
		Quantity:           1,
		UnitDealerPrice:    dec(32000),
	})
	require.NoError(t, err)

	// (32000 + 8000) - 38000 = 2000 passed on as customer discount.
	assert.True(t, got.CustomerDiscountTotal.Equal(dec(2000)))
	assert.True(t, got.NetPriceAfterSupport.Equal(dec(30000)))
}

func TestComputeBundleRequiresPairing(t *testing.T) {
	offer := &models.Offer{IsBundleOffer: true}
	_, err := newCalc().Compute(Input{Offer: offer, Quantity: 1, UnitDealerPrice: dec(100)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestComputeRejectsBadInputs(t *testing.T) {
	offer := &models.Offer{PayoutType: enums.PayoutTypeFixed}
	calc := newCalc()

	_, err := calc.Compute(Input{Offer: offer, Quantity: 0, UnitDealerPrice: dec(100)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = calc.Compute(Input{Offer: offer, Quantity: 1, UnitDealerPrice: dec(0)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = calc.Compute(Input{Quantity: 1, UnitDealerPrice: dec(100)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestComputeWithoutOffer(t *testing.T) {
	got, err := newCalc().ComputeWithoutOffer(4, dec(1500))
	require.NoError(t, err)

	assert.True(t, got.CustomerDiscountTotal.IsZero())
	assert.True(t, got.DealerIncentiveTotal.IsZero())
	assert.True(t, got.NetPriceAfterSupport.Equal(dec(6000)))
	assert.True(t, got.GSTAmount.Equal(dec(1080)))
	assert.True(t, got.NetPricePerUnit.Equal(dec(1500)))
}
