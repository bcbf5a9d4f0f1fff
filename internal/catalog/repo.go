package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/pagination"
)

// Repository wires together catalog persistence for schemes, products,
// offers, and the sales ledger read paths.
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

// CreateScheme inserts the scheme row. IDs are generated client-side so
// inserts behave the same across Postgres and the sqlite test driver.
func (r *Repository) CreateScheme(ctx context.Context, scheme *models.Scheme) (*models.Scheme, error) {
	if scheme.ID == uuid.Nil {
		scheme.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(scheme).Error; err != nil {
		return nil, err
	}
	return scheme, nil
}

// FindSchemeByID loads a scheme with its offers, slabs, bundles, targets,
// and approval history.
func (r *Repository) FindSchemeByID(ctx context.Context, id uuid.UUID) (*models.Scheme, error) {
	var scheme models.Scheme
	err := r.db.WithContext(ctx).
		Preload("Offers", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Offers.Slabs", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_quantity ASC")
		}).
		Preload("BundleOffers").
		Preload("Targets").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("decided_at ASC")
		}).
		First(&scheme, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &scheme, nil
}

// ListSchemes returns all schemes newest-upload first with offers and
// targets preloaded for the summary projection.
func (r *Repository) ListSchemes(ctx context.Context) ([]models.Scheme, error) {
	var rows []models.Scheme
	err := r.db.WithContext(ctx).
		Preload("Offers").
		Preload("Targets").
		Order("upload_timestamp DESC").
		Find(&rows).
		Error
	return rows, err
}

// FindProductByNameCode looks a product up by its descriptor identity.
// A nil code matches only rows without a code.
func (r *Repository) FindProductByNameCode(ctx context.Context, name string, code *string) (*models.Product, error) {
	q := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name))
	if code != nil && strings.TrimSpace(*code) != "" {
		q = q.Where("code = ?", strings.TrimSpace(*code))
	} else {
		q = q.Where("code IS NULL")
	}
	var product models.Product
	if err := q.First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductByID loads a product row.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts returns the catalog ordered by name.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

// CreateOffer inserts an offer row.
func (r *Repository) CreateOffer(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	if offer.ID == uuid.Nil {
		offer.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// CreateSlabs inserts the slab bands for an offer.
func (r *Repository) CreateSlabs(ctx context.Context, slabs []models.PayoutSlab) error {
	if len(slabs) == 0 {
		return nil
	}
	for i := range slabs {
		if slabs[i].ID == uuid.Nil {
			slabs[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&slabs).Error
}

// CreateBundleOffer inserts a bundle pairing row.
func (r *Repository) CreateBundleOffer(ctx context.Context, bundle *models.BundleOffer) (*models.BundleOffer, error) {
	if bundle.ID == uuid.Nil {
		bundle.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(bundle).Error; err != nil {
		return nil, err
	}
	return bundle, nil
}

// CreateTarget inserts a dealer target row.
func (r *Repository) CreateTarget(ctx context.Context, target *models.DealerTarget) (*models.DealerTarget, error) {
	if target.ID == uuid.Nil {
		target.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(target).Error; err != nil {
		return nil, err
	}
	return target, nil
}

// ListSales pages the transaction ledger newest-first with optional
// scheme, dealer, product, and date-range filters.
func (r *Repository) ListSales(ctx context.Context, input ListSalesInput) (*SalesListResult, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(input.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.SalesTransaction{})
	if input.SchemeID != nil {
		qb = qb.Where("scheme_id = ?", *input.SchemeID)
	}
	if input.DealerID != nil && strings.TrimSpace(*input.DealerID) != "" {
		qb = qb.Where("dealer_id = ?", strings.TrimSpace(*input.DealerID))
	}
	if input.ProductID != nil {
		qb = qb.Where("product_id = ?", *input.ProductID)
	}
	if input.From != nil {
		qb = qb.Where("sale_timestamp >= ?", *input.From)
	}
	if input.To != nil {
		qb = qb.Where("sale_timestamp <= ?", *input.To)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.SalesTransaction
	err = qb.Order("created_at DESC").Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &SalesListResult{Transactions: rows, NextCursor: nextCursor}, nil
}

// TouchSchemeUpdatedAt bumps updated_at without touching other columns.
func (r *Repository) TouchSchemeUpdatedAt(ctx context.Context, schemeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Scheme{}).
		Where("id = ?", schemeID).
		Update("updated_at", time.Now().UTC()).
		Error
}
