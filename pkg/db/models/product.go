package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog entry a sale references. DealerPrice is
// the current list price to the dealer; settlements snapshot it onto the
// transaction, so later price edits never rewrite history.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Code        *string         `gorm:"column:code;uniqueIndex"`
	Category    *string         `gorm:"column:category"`
	Subcategory *string         `gorm:"column:subcategory"`
	DealerPrice decimal.Decimal `gorm:"column:dealer_price;type:numeric(12,2);not null;default:0"`
	MRP         decimal.Decimal `gorm:"column:mrp;type:numeric(12,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
