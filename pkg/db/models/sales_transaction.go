package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schemedesk/schemedesk-backend/pkg/enums"
)

// SalesTransaction is the immutable record of one settled sale. Rows are
// written exactly once by the settlement service; the only later change is
// the verification status flip performed by external reconciliation.
type SalesTransaction struct {
	ID                      uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DealerID                string                   `gorm:"column:dealer_id;not null;index"`
	SchemeID                *uuid.UUID               `gorm:"column:scheme_id;type:uuid;index"`
	ProductID               uuid.UUID                `gorm:"column:product_id;type:uuid;not null;index"`
	OfferID                 *uuid.UUID               `gorm:"column:offer_id;type:uuid"`
	Quantity                int                      `gorm:"column:quantity;not null"`
	UnitDealerPrice         decimal.Decimal          `gorm:"column:unit_dealer_price;type:numeric(12,2);not null"`
	GSTAmount               decimal.Decimal          `gorm:"column:gst_amount;type:numeric(14,2);not null;default:0"`
	NetPriceAfterSupport    decimal.Decimal          `gorm:"column:net_price_after_support;type:numeric(14,2);not null"`
	NetPricePerUnit         decimal.Decimal          `gorm:"column:net_price_per_unit;type:numeric(12,2);not null"`
	CustomerDiscountTotal   decimal.Decimal          `gorm:"column:customer_discount_total;type:numeric(14,2);not null;default:0"`
	CustomerDiscountPerUnit decimal.Decimal          `gorm:"column:customer_discount_per_unit;type:numeric(12,2);not null;default:0"`
	DealerIncentiveTotal    decimal.Decimal          `gorm:"column:dealer_incentive_total;type:numeric(14,2);not null;default:0"`
	DealerIncentivePerUnit  decimal.Decimal          `gorm:"column:dealer_incentive_per_unit;type:numeric(12,2);not null;default:0"`
	BillingRef              *string                  `gorm:"column:billing_ref"`
	VerificationStatus      enums.VerificationStatus `gorm:"column:verification_status;not null;default:'pending'"`
	SaleTimestamp           time.Time                `gorm:"column:sale_timestamp;not null"`
	CreatedAt               time.Time                `gorm:"column:created_at;autoCreateTime"`
}

// GrossAmount returns quantity times the unit dealer price.
func (t SalesTransaction) GrossAmount() decimal.Decimal {
	return t.UnitDealerPrice.Mul(decimal.NewFromInt(int64(t.Quantity)))
}
