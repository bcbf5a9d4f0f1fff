package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schemedesk/schemedesk-backend/pkg/enums"
)

// DealerTarget is a cumulative sales goal tied to a scheme. Progress is
// stored durably on the row (AchievedUnits / AchievedValue) so applying a
// sale never rescans historical transactions. IsAchieved is monotonic:
// once set it is never cleared.
type DealerTarget struct {
	ID                      uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SchemeID                uuid.UUID          `gorm:"column:scheme_id;type:uuid;not null;index"`
	Description             *string            `gorm:"column:description"`
	TargetProductID         *uuid.UUID         `gorm:"column:target_product_id;type:uuid"`
	ProductGroupDescription *string            `gorm:"column:product_group_description"`
	TargetQuantity          *int               `gorm:"column:target_quantity"`
	TargetValue             *decimal.Decimal   `gorm:"column:target_value;type:numeric(14,2)"`
	Metric                  enums.TargetMetric `gorm:"column:metric;not null"`
	AchievedUnits           int                `gorm:"column:achieved_units;not null;default:0"`
	AchievedValue           decimal.Decimal    `gorm:"column:achieved_value;type:numeric(14,2);not null;default:0"`
	IsAchieved              bool               `gorm:"column:is_achieved;not null;default:false"`
	CreatedAt               time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// GoalMet reports whether the stored cumulative progress satisfies the
// target under its metric.
func (t DealerTarget) GoalMet() bool {
	switch t.Metric {
	case enums.TargetMetricUnitsSold:
		return t.TargetQuantity != nil && t.AchievedUnits >= *t.TargetQuantity
	case enums.TargetMetricSalesValue:
		return t.TargetValue != nil && t.AchievedValue.GreaterThanOrEqual(*t.TargetValue)
	}
	return false
}
