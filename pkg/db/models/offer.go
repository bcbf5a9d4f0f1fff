package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schemedesk/schemedesk-backend/pkg/enums"
)

// Offer is a single product's payout rule inside a scheme. ProductID is
// nil when the offer targets a free-text product group instead of one
// catalog product.
type Offer struct {
	ID                      uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SchemeID                uuid.UUID        `gorm:"column:scheme_id;type:uuid;not null;index"`
	ProductID               *uuid.UUID       `gorm:"column:product_id;type:uuid;index"`
	ProductGroupDescription *string          `gorm:"column:product_group_description"`
	SupportType             string           `gorm:"column:support_type;not null"`
	PayoutType              enums.PayoutType `gorm:"column:payout_type;not null"`
	PayoutValue             decimal.Decimal  `gorm:"column:payout_value;type:numeric(12,2);not null;default:0"`
	PayoutUnit              *string          `gorm:"column:payout_unit"`
	IsDealerIncentive       bool             `gorm:"column:is_dealer_incentive;not null;default:false"`
	DealerContribution      decimal.Decimal  `gorm:"column:dealer_contribution;type:numeric(12,2);not null;default:0"`
	TotalPayout             decimal.Decimal  `gorm:"column:total_payout;type:numeric(12,2);not null;default:0"`
	IsBundleOffer           bool             `gorm:"column:is_bundle_offer;not null;default:false"`
	IsUpgradeOffer          bool             `gorm:"column:is_upgrade_offer;not null;default:false"`
	IsSlabBased             bool             `gorm:"column:is_slab_based;not null;default:false"`
	FreeItemDescription     *string          `gorm:"column:free_item_description"`
	ConditionsExclusions    *string          `gorm:"column:conditions_exclusions"`
	Scheme                  *Scheme          `gorm:"foreignKey:SchemeID"`
	Slabs                   []PayoutSlab     `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
	CreatedAt               time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// PayoutSlab is one quantity band of a slab-based offer. MaxQuantity nil
// means the band is unbounded above. Slab amounts apply to the whole
// transaction, not per unit.
type PayoutSlab struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OfferID            uuid.UUID       `gorm:"column:offer_id;type:uuid;not null;index"`
	MinQuantity        int             `gorm:"column:min_quantity;not null"`
	MaxQuantity        *int            `gorm:"column:max_quantity"`
	PayoutAmount       decimal.Decimal `gorm:"column:payout_amount;type:numeric(12,2);not null;default:0"`
	DealerContribution decimal.Decimal `gorm:"column:dealer_contribution;type:numeric(12,2);not null;default:0"`
	TotalPayout        decimal.Decimal `gorm:"column:total_payout;type:numeric(12,2);not null;default:0"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// Contains reports whether quantity falls inside the slab band.
func (s PayoutSlab) Contains(quantity int) bool {
	if quantity < s.MinQuantity {
		return false
	}
	if s.MaxQuantity != nil && quantity > *s.MaxQuantity {
		return false
	}
	return true
}

// BundleOffer pairs a primary product with a bundle product at a fixed
// combined price. Used by offers flagged IsBundleOffer on the primary.
type BundleOffer struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SchemeID         uuid.UUID       `gorm:"column:scheme_id;type:uuid;not null;index"`
	PrimaryProductID uuid.UUID       `gorm:"column:primary_product_id;type:uuid;not null"`
	BundleProductID  uuid.UUID       `gorm:"column:bundle_product_id;type:uuid;not null"`
	BundlePrice      decimal.Decimal `gorm:"column:bundle_price;type:numeric(12,2);not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}
