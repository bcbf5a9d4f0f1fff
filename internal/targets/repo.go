package targets

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
)

// Repository persists dealer target progress.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListOpenTargets returns the scheme's not-yet-achieved targets.
func (r *Repository) ListOpenTargets(ctx context.Context, schemeID uuid.UUID) ([]models.DealerTarget, error) {
	var rows []models.DealerTarget
	err := r.db.WithContext(ctx).
		Where("scheme_id = ? AND is_achieved = ?", schemeID, false).
		Find(&rows).
		Error
	return rows, err
}

// AddProgress increments the durable counters in place. The additive
// UPDATE keeps concurrent sales from losing increments.
func (r *Repository) AddProgress(ctx context.Context, targetID uuid.UUID, units int, value decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.DealerTarget{}).
		Where("id = ?", targetID).
		Updates(map[string]any{
			"achieved_units": gorm.Expr("achieved_units + ?", units),
			"achieved_value": gorm.Expr("achieved_value + ?", value),
		}).
		Error
}

// MarkAchieved flips is_achieved once; the guard keeps it monotonic.
func (r *Repository) MarkAchieved(ctx context.Context, targetID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.DealerTarget{}).
		Where("id = ? AND is_achieved = ?", targetID, false).
		Update("is_achieved", true).
		Error
}

// FindByID reloads a target row.
func (r *Repository) FindByID(ctx context.Context, targetID uuid.UUID) (*models.DealerTarget, error) {
	var target models.DealerTarget
	if err := r.db.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		return nil, err
	}
	return &target, nil
}
