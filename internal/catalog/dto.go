package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
	"github.com/schemedesk/schemedesk-backend/pkg/pagination"
)

// SchemeDescriptor is the structured output of the document extraction
// collaborator. The catalog accepts this shape as-is and turns it into a
// scheme with its offers, slabs, bundles, and targets.
type SchemeDescriptor struct {
	SchemeName            string            `json:"scheme_name"`
	SchemeType            *string           `json:"scheme_type"`
	SchemePeriodStart     time.Time         `json:"scheme_period_start"`
	SchemePeriodEnd       time.Time         `json:"scheme_period_end"`
	ApplicableRegion      *string           `json:"applicable_region"`
	DealerTypeEligibility *string           `json:"dealer_type_eligibility"`
	DocumentName          *string           `json:"document_name"`
	RawTextPath           *string           `json:"raw_text_path"`
	Products              []ProductEntry    `json:"products"`
	SchemeRules           []RuleEntry       `json:"scheme_rules"`
	DealerTargets         []TargetEntry     `json:"dealer_targets"`
}

// ProductEntry is one product row of the descriptor plus the payout rule
// the scheme grants for it.
type ProductEntry struct {
	ProductName             string           `json:"product_name"`
	ProductCode             *string          `json:"product_code"`
	ProductCategory         *string          `json:"product_category"`
	ProductSubcategory      *string          `json:"product_subcategory"`
	DealerPrice             decimal.Decimal  `json:"dealer_price"`
	MRP                     decimal.Decimal  `json:"mrp"`
	ProductGroupDescription *string          `json:"product_group_description"`
	SupportType             string           `json:"support_type"`
	PayoutType              string           `json:"payout_type"`
	PayoutAmount            decimal.Decimal  `json:"payout_amount"`
	PayoutUnit              *string          `json:"payout_unit"`
	DealerContribution      decimal.Decimal  `json:"dealer_contribution"`
	TotalPayout             decimal.Decimal  `json:"total_payout"`
	IsDealerIncentive       bool             `json:"is_dealer_incentive"`
	IsBundleOffer           bool             `json:"is_bundle_offer"`
	BundleProductName       *string          `json:"bundle_product_name"`
	BundlePrice             *decimal.Decimal `json:"bundle_price"`
	IsUpgradeOffer          bool             `json:"is_upgrade_offer"`
	IsSlabBased             bool             `json:"is_slab_based"`
	Slabs                   []SlabEntry      `json:"slabs"`
	FreeItemDescription     *string          `json:"free_item_description"`
	ConditionsExclusions    *string          `json:"conditions_exclusions"`
}

// SlabEntry is one quantity band of a slab-based rule.
type SlabEntry struct {
	MinQuantity        int             `json:"min_quantity"`
	MaxQuantity        *int            `json:"max_quantity"`
	PayoutAmount       decimal.Decimal `json:"payout_amount"`
	DealerContribution decimal.Decimal `json:"dealer_contribution"`
	TotalPayout        decimal.Decimal `json:"total_payout"`
}

// RuleEntry carries a free-text scheme rule extracted from the document.
// Rules are stored for audit but do not drive payout computation.
type RuleEntry struct {
	RuleType        string  `json:"rule_type"`
	RuleDescription string  `json:"rule_description"`
	RuleValue       *string `json:"rule_value"`
}

// TargetEntry is one dealer target row of the descriptor.
type TargetEntry struct {
	Description             *string          `json:"description"`
	ProductName             *string          `json:"product_name"`
	ProductGroupDescription *string          `json:"product_group_description"`
	TargetQuantity          *int             `json:"target_quantity"`
	TargetValue             *decimal.Decimal `json:"target_value"`
	Metric                  string           `json:"metric"`
}

// SchemeSummary is the list-view projection of a scheme.
type SchemeSummary struct {
	ID              uuid.UUID            `json:"id"`
	Name            string               `json:"name"`
	SchemeType      *string              `json:"scheme_type"`
	PeriodStart     time.Time            `json:"period_start"`
	PeriodEnd       time.Time            `json:"period_end"`
	Status          enums.SchemeStatus   `json:"status"`
	ApprovalStatus  enums.ApprovalStatus `json:"approval_status"`
	OfferCount      int                  `json:"offer_count"`
	TargetCount     int                  `json:"target_count"`
	UploadTimestamp time.Time            `json:"upload_timestamp"`
}

// NewSchemeSummary projects a loaded scheme onto its list view.
func NewSchemeSummary(scheme *models.Scheme) SchemeSummary {
	return SchemeSummary{
		ID:              scheme.ID,
		Name:            scheme.Name,
		SchemeType:      scheme.SchemeType,
		PeriodStart:     scheme.PeriodStart,
		PeriodEnd:       scheme.PeriodEnd,
		Status:          scheme.Status,
		ApprovalStatus:  scheme.ApprovalStatus,
		OfferCount:      len(scheme.Offers),
		TargetCount:     len(scheme.Targets),
		UploadTimestamp: scheme.UploadTimestamp,
	}
}

// ListSalesInput filters the sales ledger read path.
type ListSalesInput struct {
	SchemeID   *uuid.UUID
	DealerID   *string
	ProductID  *uuid.UUID
	From       *time.Time
	To         *time.Time
	Pagination pagination.Params
}

// SalesListResult is one page of transactions plus the follow-up cursor.
type SalesListResult struct {
	Transactions []models.SalesTransaction `json:"transactions"`
	NextCursor   string                    `json:"next_cursor,omitempty"`
}
