package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/schemedesk/schemedesk-backend/pkg/enums"
)

// SchemeApproval is one append-only audit row recording an approval
// decision. Rows are never updated or deleted.
type SchemeApproval struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SchemeID  uuid.UUID              `gorm:"column:scheme_id;type:uuid;not null;index"`
	Decision  enums.ApprovalDecision `gorm:"column:decision;not null"`
	Approver  string                 `gorm:"column:approver;not null"`
	Notes     *string                `gorm:"column:notes"`
	DecidedAt time.Time              `gorm:"column:decided_at;autoCreateTime"`
}
