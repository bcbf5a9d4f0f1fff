package approval

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
)

// Repository persists approval transitions and their audit trail.
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

// FindSchemeByID loads the scheme row.
func (r *Repository) FindSchemeByID(ctx context.Context, id uuid.UUID) (*models.Scheme, error) {
	var scheme models.Scheme
	if err := r.db.WithContext(ctx).First(&scheme, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &scheme, nil
}

// TransitionFromPending moves a pending scheme to the decided status. The
// status guard in the WHERE clause makes the transition race-safe: of two
// concurrent decisions only one sees a pending row. Returns whether a row
// transitioned.
func (r *Repository) TransitionFromPending(ctx context.Context, schemeID uuid.UUID, to enums.ApprovalStatus, approver string, decidedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Scheme{}).
		Where("id = ? AND approval_status = ?", schemeID, enums.ApprovalStatusPending).
		Updates(map[string]any{
			"approval_status": to,
			"approved_by":     approver,
			"approved_at":     decidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TransitionToPending moves an approved scheme back to pending after its
// offers were edited. Returns whether a row transitioned.
func (r *Repository) TransitionToPending(ctx context.Context, schemeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Scheme{}).
		Where("id = ? AND approval_status = ?", schemeID, enums.ApprovalStatusApproved).
		Updates(map[string]any{
			"approval_status": enums.ApprovalStatusPending,
			"approved_by":     nil,
			"approved_at":     nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AppendAudit writes one immutable audit row.
func (r *Repository) AppendAudit(ctx context.Context, audit *models.SchemeApproval) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(audit).Error
}

// ListAudit returns a scheme's approval history oldest first.
func (r *Repository) ListAudit(ctx context.Context, schemeID uuid.UUID) ([]models.SchemeApproval, error) {
	var rows []models.SchemeApproval
	err := r.db.WithContext(ctx).
		Where("scheme_id = ?", schemeID).
		Order("decided_at ASC").
		Find(&rows).
		Error
	return rows, err
}
