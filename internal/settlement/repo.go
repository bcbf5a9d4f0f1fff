package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
)

// Repository persists settled transactions and the target-update
// dead-letter rows behind them.
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

// CreateTransaction inserts the immutable sale row.
func (r *Repository) CreateTransaction(ctx context.Context, txn *models.SalesTransaction) (*models.SalesTransaction, error) {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// FindTransactionByID reloads a settled sale.
func (r *Repository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*models.SalesTransaction, error) {
	var txn models.SalesTransaction
	if err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// CreateFailure records a target-update failure for later replay.
func (r *Repository) CreateFailure(ctx context.Context, failure *models.TargetUpdateFailure) error {
	if failure.ID == uuid.Nil {
		failure.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(failure).Error
}

// ListOpenFailures returns unresolved dead-letter rows under the attempt
// cap, oldest first.
func (r *Repository) ListOpenFailures(ctx context.Context, limit, maxAttempts int) ([]models.TargetUpdateFailure, error) {
	var rows []models.TargetUpdateFailure
	err := r.db.WithContext(ctx).
		Where("resolved_at IS NULL AND attempts < ?", maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// IncrementAttempts bumps the retry counter on a failure row.
func (r *Repository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.TargetUpdateFailure{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).
		Error
}

// MarkResolved stamps a failure row as replayed.
func (r *Repository) MarkResolved(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.TargetUpdateFailure{}).
		Where("id = ?", id).
		Update("resolved_at", now).
		Error
}
