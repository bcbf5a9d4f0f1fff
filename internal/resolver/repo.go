package resolver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
)

// Repository runs the candidate queries behind offer resolution.
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

// FindCandidateOffer returns the single winning offer for the product on
// the given day, or gorm.ErrRecordNotFound when nothing qualifies.
// Candidates are offers whose scheme is approved, active, and whose period
// contains the day inclusive. The most recently uploaded scheme wins;
// within one scheme the most recently created offer wins.
func (r *Repository) FindCandidateOffer(ctx context.Context, productID uuid.UUID, day time.Time) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Preload("Slabs", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_quantity ASC")
		}).
		Joins("JOIN schemes ON schemes.id = offers.scheme_id").
		Where("offers.product_id = ?", productID).
		Where("schemes.approval_status = ?", enums.ApprovalStatusApproved).
		Where("schemes.status = ?", enums.SchemeStatusActive).
		Where("schemes.period_start <= ?", day).
		Where("schemes.period_end >= ?", day).
		Order("schemes.upload_timestamp DESC").
		Order("offers.created_at DESC").
		Order("offers.id DESC").
		First(&offer).
		Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// FindBundle loads the bundle pairing for a scheme's primary product.
func (r *Repository) FindBundle(ctx context.Context, schemeID, primaryProductID uuid.UUID) (*models.BundleOffer, error) {
	var bundle models.BundleOffer
	err := r.db.WithContext(ctx).
		Where("scheme_id = ? AND primary_product_id = ?", schemeID, primaryProductID).
		First(&bundle).
		Error
	if err != nil {
		return nil, err
	}
	return &bundle, nil
}
