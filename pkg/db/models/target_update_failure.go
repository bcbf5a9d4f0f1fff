package models

import (
	"time"

	"github.com/google/uuid"
)

// TargetUpdateFailure is a dead-letter row written when target bookkeeping
// fails after a sale has committed. The target worker drains these and
// replays the progress update; the sale itself is never rolled back.
type TargetUpdateFailure struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID uuid.UUID  `gorm:"column:transaction_id;type:uuid;not null;index"`
	Reason        string     `gorm:"column:reason;not null"`
	Attempts      int        `gorm:"column:attempts;not null;default:0"`
	ResolvedAt    *time.Time `gorm:"column:resolved_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
