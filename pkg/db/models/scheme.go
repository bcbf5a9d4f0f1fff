package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/schemedesk/schemedesk-backend/pkg/enums"
)

// Scheme represents one time-boxed promotional program. Offers under a
// scheme only participate in resolution while the scheme is active,
// approved, and the sale date falls inside [PeriodStart, PeriodEnd].
type Scheme struct {
	ID                    uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                  string               `gorm:"column:name;not null;uniqueIndex"`
	SchemeType            *string              `gorm:"column:scheme_type"`
	DocumentName          *string              `gorm:"column:document_name"`
	RawTextPath           *string              `gorm:"column:raw_text_path"`
	PeriodStart           time.Time            `gorm:"column:period_start;type:date;not null"`
	PeriodEnd             time.Time            `gorm:"column:period_end;type:date;not null"`
	ApplicableRegion      *string              `gorm:"column:applicable_region"`
	DealerTypeEligibility *string              `gorm:"column:dealer_type_eligibility"`
	Status                enums.SchemeStatus   `gorm:"column:status;not null;default:'active'"`
	ApprovalStatus        enums.ApprovalStatus `gorm:"column:approval_status;not null;default:'pending'"`
	ApprovedBy            *string              `gorm:"column:approved_by"`
	ApprovedAt            *time.Time           `gorm:"column:approved_at"`
	UploadTimestamp       time.Time            `gorm:"column:upload_timestamp;autoCreateTime"`
	Offers                []Offer              `gorm:"foreignKey:SchemeID;constraint:OnDelete:CASCADE"`
	BundleOffers          []BundleOffer        `gorm:"foreignKey:SchemeID;constraint:OnDelete:CASCADE"`
	Targets               []DealerTarget       `gorm:"foreignKey:SchemeID;constraint:OnDelete:CASCADE"`
	Approvals             []SchemeApproval     `gorm:"foreignKey:SchemeID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// CoversDate reports whether the sale date falls inside the scheme period,
// inclusive on both ends. Dates are compared at day granularity.
func (s Scheme) CoversDate(saleDate time.Time) bool {
	day := saleDate.Truncate(24 * time.Hour)
	return !day.Before(s.PeriodStart.Truncate(24*time.Hour)) &&
		!day.After(s.PeriodEnd.Truncate(24*time.Hour))
}

// IsResolvable reports whether offers under the scheme may be matched to a
// sale on the given date.
func (s Scheme) IsResolvable(saleDate time.Time) bool {
	return s.Status == enums.SchemeStatusActive &&
		s.ApprovalStatus == enums.ApprovalStatusApproved &&
		s.CoversDate(saleDate)
}
