package payout

import (
	"github.com/shopspring/decimal"

	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
	pkgerrors "github.com/schemedesk/schemedesk-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Input carries everything the calculator needs for one sale. Bundle and
// BundleProductPrice are only consulted for bundle-flagged offers.
type Input struct {
	Offer              *models.Offer
	Bundle             *models.BundleOffer
	BundleProductPrice decimal.Decimal
	Quantity           int
	UnitDealerPrice    decimal.Decimal
}

// Breakdown is the computed money split for one sale. Per-unit figures are
// the totals divided by quantity, matching how transactions store them.
type Breakdown struct {
	CustomerDiscountTotal   decimal.Decimal
	CustomerDiscountPerUnit decimal.Decimal
	DealerIncentiveTotal    decimal.Decimal
	DealerIncentivePerUnit  decimal.Decimal
	NetPriceAfterSupport    decimal.Decimal
	NetPricePerUnit         decimal.Decimal
	GSTAmount               decimal.Decimal
	// SlabMatched is false only for slab-based offers where the quantity
	// fell outside every band; the sale still settles with zero payout.
	SlabMatched bool
}

// Calculator computes payouts. It is stateless apart from the configured
// GST rate and safe for concurrent use.
type Calculator struct {
	gstRate decimal.Decimal
}

// NewCalculator builds a calculator with the configured GST rate
// (e.g. 0.18 for 18%).
func NewCalculator(gstRate decimal.Decimal) *Calculator {
	return &Calculator{gstRate: gstRate}
}

// Compute applies the offer's payout model to the sale. Model precedence:
// slab, then bundle, then percentage, then fixed; an offer is exactly one
// of these. The computed amount lands on exactly one leg depending on
// IsDealerIncentive. Net price only ever drops by the customer-discount
// leg; GST is charged on that net.
func (c *Calculator) Compute(input Input) (Breakdown, error) {
	if input.Offer == nil {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "offer is required")
	}
	if input.Quantity < 1 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !input.UnitDealerPrice.IsPositive() {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "unit dealer price must be positive")
	}

	qty := decimal.NewFromInt(int64(input.Quantity))
	gross := input.UnitDealerPrice.Mul(qty)

	amount := decimal.Zero
	slabMatched := true

	offer := input.Offer
	switch {
	case offer.IsSlabBased:
		// Slab amounts reward the whole transaction, not each unit.
		amount, slabMatched = slabAmount(offer.Slabs, input.Quantity)
	case offer.IsBundleOffer:
		if input.Bundle == nil {
			return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "bundle offer missing bundle pairing")
		}
		standalone := input.UnitDealerPrice.Add(input.BundleProductPrice)
		perSet := standalone.Sub(input.Bundle.BundlePrice)
		if perSet.IsNegative() {
			perSet = decimal.Zero
		}
		amount = perSet.Mul(qty)
	case offer.PayoutType == enums.PayoutTypePercentage:
		amount = gross.Mul(offer.PayoutValue).Div(oneHundred)
	default:
		amount = offer.PayoutValue.Mul(qty)
	}

	breakdown := Breakdown{SlabMatched: slabMatched}
	if offer.IsDealerIncentive {
		breakdown.DealerIncentiveTotal = amount
	} else {
		breakdown.CustomerDiscountTotal = amount
	}

	breakdown.NetPriceAfterSupport = gross.Sub(breakdown.CustomerDiscountTotal)
	breakdown.GSTAmount = breakdown.NetPriceAfterSupport.Mul(c.gstRate)

	breakdown.CustomerDiscountPerUnit = breakdown.CustomerDiscountTotal.Div(qty)
	breakdown.DealerIncentivePerUnit = breakdown.DealerIncentiveTotal.Div(qty)
	breakdown.NetPricePerUnit = breakdown.NetPriceAfterSupport.Div(qty)

	return breakdown, nil
}

// ComputeWithoutOffer settles a sale that resolved no offer: full gross
// net, zero payout legs, GST on the whole amount.
func (c *Calculator) ComputeWithoutOffer(quantity int, unitDealerPrice decimal.Decimal) (Breakdown, error) {
	if quantity < 1 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !unitDealerPrice.IsPositive() {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "unit dealer price must be positive")
	}

	qty := decimal.NewFromInt(int64(quantity))
	gross := unitDealerPrice.Mul(qty)
	return Breakdown{
		NetPriceAfterSupport: gross,
		NetPricePerUnit:      unitDealerPrice,
		GSTAmount:            gross.Mul(c.gstRate),
		SlabMatched:          true,
	}, nil
}

func slabAmount(slabs []models.PayoutSlab, quantity int) (decimal.Decimal, bool) {
	for _, slab := range slabs {
		if slab.Contains(quantity) {
			return slab.PayoutAmount, true
		}
	}
	return decimal.Zero, false
}
