package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schemedesk/schemedesk-backend/pkg/db"
	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
	pkgerrors "github.com/schemedesk/schemedesk-backend/pkg/errors"
)

// Service exposes scheme catalog management and read contracts.
type Service interface {
	CreateSchemeFromDescriptor(ctx context.Context, descriptor SchemeDescriptor) (*models.Scheme, error)
	GetScheme(ctx context.Context, id uuid.UUID) (*models.Scheme, error)
	ListSchemes(ctx context.Context) ([]SchemeSummary, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListSales(ctx context.Context, input ListSalesInput) (*SalesListResult, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// CreateSchemeFromDescriptor materializes the extraction descriptor into a
// scheme with its offers, slabs, bundles, and targets in one transaction.
// The scheme starts active and pending approval; its offers stay invisible
// to resolution until someone approves it.
func (s *service) CreateSchemeFromDescriptor(ctx context.Context, descriptor SchemeDescriptor) (*models.Scheme, error) {
	if err := validateDescriptor(descriptor); err != nil {
		return nil, err
	}

	var createdID uuid.UUID
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		scheme := &models.Scheme{
			Name:                  strings.TrimSpace(descriptor.SchemeName),
			SchemeType:            descriptor.SchemeType,
			DocumentName:          descriptor.DocumentName,
			RawTextPath:           descriptor.RawTextPath,
			PeriodStart:           descriptor.SchemePeriodStart,
			PeriodEnd:             descriptor.SchemePeriodEnd,
			ApplicableRegion:      descriptor.ApplicableRegion,
			DealerTypeEligibility: descriptor.DealerTypeEligibility,
			Status:                enums.SchemeStatusActive,
			ApprovalStatus:        enums.ApprovalStatusPending,
		}
		created, err := txRepo.CreateScheme(ctx, scheme)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "scheme name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert scheme")
		}
		createdID = created.ID

		productIDs := make(map[string]uuid.UUID, len(descriptor.Products))
		for _, entry := range descriptor.Products {
			product, err := s.upsertProduct(ctx, txRepo, entry)
			if err != nil {
				return err
			}
			productIDs[productKey(entry.ProductName, entry.ProductCode)] = product.ID

			offer, err := buildOffer(created.ID, product.ID, entry)
			if err != nil {
				return err
			}
			if _, err := txRepo.CreateOffer(ctx, offer); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert offer")
			}

			if entry.IsSlabBased {
				slabs := make([]models.PayoutSlab, len(entry.Slabs))
				for i, band := range entry.Slabs {
					slabs[i] = models.PayoutSlab{
						OfferID:            offer.ID,
						MinQuantity:        band.MinQuantity,
						MaxQuantity:        band.MaxQuantity,
						PayoutAmount:       band.PayoutAmount,
						DealerContribution: band.DealerContribution,
						TotalPayout:        band.TotalPayout,
					}
				}
				if err := txRepo.CreateSlabs(ctx, slabs); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert payout slabs")
				}
			}

			if entry.IsBundleOffer {
				bundleProduct, err := s.upsertProduct(ctx, txRepo, ProductEntry{
					ProductName: *entry.BundleProductName,
				})
				if err != nil {
					return err
				}
				bundle := &models.BundleOffer{
					SchemeID:         created.ID,
					PrimaryProductID: product.ID,
					BundleProductID:  bundleProduct.ID,
					BundlePrice:      *entry.BundlePrice,
				}
				if _, err := txRepo.CreateBundleOffer(ctx, bundle); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert bundle offer")
				}
			}
		}

		for _, entry := range descriptor.DealerTargets {
			target := &models.DealerTarget{
				SchemeID:                created.ID,
				Description:             entry.Description,
				ProductGroupDescription: entry.ProductGroupDescription,
				TargetQuantity:          entry.TargetQuantity,
				TargetValue:             entry.TargetValue,
				Metric:                  enums.TargetMetric(entry.Metric),
			}
			if entry.ProductName != nil {
				if id, ok := productIDs[productKey(*entry.ProductName, nil)]; ok {
					target.TargetProductID = &id
				}
			}
			if _, err := txRepo.CreateTarget(ctx, target); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert dealer target")
			}
		}

		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create scheme")
	}

	scheme, err := s.repo.FindSchemeByID(ctx, createdID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load scheme detail")
	}
	return scheme, nil
}

// GetScheme loads a scheme with all of its children.
func (s *service) GetScheme(ctx context.Context, id uuid.UUID) (*models.Scheme, error) {
	scheme, err := s.repo.FindSchemeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "scheme not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load scheme")
	}
	return scheme, nil
}

// ListSchemes returns summaries of every scheme, newest upload first.
func (s *service) ListSchemes(ctx context.Context) ([]SchemeSummary, error) {
	rows, err := s.repo.ListSchemes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list schemes")
	}
	summaries := make([]SchemeSummary, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, NewSchemeSummary(&rows[i]))
	}
	return summaries, nil
}

// ListProducts returns the product catalog.
func (s *service) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

// ListSales pages the transaction ledger with the read filters.
func (s *service) ListSales(ctx context.Context, input ListSalesInput) (*SalesListResult, error) {
	if input.From != nil && input.To != nil && input.To.Before(*input.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range end precedes start")
	}
	result, err := s.repo.ListSales(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return result, nil
}

// upsertProduct finds the product by (name, code) and refreshes its
// pricing, or creates it when the descriptor introduces it.
func (s *service) upsertProduct(ctx context.Context, txRepo *Repository, entry ProductEntry) (*models.Product, error) {
	existing, err := txRepo.FindProductByNameCode(ctx, entry.ProductName, entry.ProductCode)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find product")
	}

	if existing != nil {
		changed := false
		if !entry.DealerPrice.IsZero() && !existing.DealerPrice.Equal(entry.DealerPrice) {
			existing.DealerPrice = entry.DealerPrice
			changed = true
		}
		if !entry.MRP.IsZero() && !existing.MRP.Equal(entry.MRP) {
			existing.MRP = entry.MRP
			changed = true
		}
		if entry.ProductCategory != nil && existing.Category == nil {
			existing.Category = entry.ProductCategory
			changed = true
		}
		if !changed {
			return existing, nil
		}
		updated, err := txRepo.UpdateProduct(ctx, existing)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		return updated, nil
	}

	product := &models.Product{
		Name:        strings.TrimSpace(entry.ProductName),
		Code:        normalizeCode(entry.ProductCode),
		Category:    entry.ProductCategory,
		Subcategory: entry.ProductSubcategory,
		DealerPrice: entry.DealerPrice,
		MRP:         entry.MRP,
	}
	created, err := txRepo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return created, nil
}

func buildOffer(schemeID, productID uuid.UUID, entry ProductEntry) (*models.Offer, error) {
	payoutType, err := enums.ParsePayoutType(entry.PayoutType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown payout type %q for product %q", entry.PayoutType, entry.ProductName))
	}
	return &models.Offer{
		SchemeID:                schemeID,
		ProductID:               &productID,
		ProductGroupDescription: entry.ProductGroupDescription,
		SupportType:             strings.TrimSpace(entry.SupportType),
		PayoutType:              payoutType,
		PayoutValue:             entry.PayoutAmount,
		PayoutUnit:              entry.PayoutUnit,
		IsDealerIncentive:       entry.IsDealerIncentive,
		DealerContribution:      entry.DealerContribution,
		TotalPayout:             entry.TotalPayout,
		IsBundleOffer:           entry.IsBundleOffer,
		IsUpgradeOffer:          entry.IsUpgradeOffer,
		IsSlabBased:             entry.IsSlabBased,
		FreeItemDescription:     entry.FreeItemDescription,
		ConditionsExclusions:    entry.ConditionsExclusions,
	}, nil
}

func validateDescriptor(descriptor SchemeDescriptor) error {
	if strings.TrimSpace(descriptor.SchemeName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "scheme_name is required")
	}
	if descriptor.SchemePeriodStart.IsZero() || descriptor.SchemePeriodEnd.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "scheme period start and end are required")
	}
	if descriptor.SchemePeriodEnd.Before(descriptor.SchemePeriodStart) {
		return pkgerrors.New(pkgerrors.CodeValidation, "scheme period end precedes start")
	}
	if len(descriptor.Products) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "descriptor has no products")
	}

	for _, entry := range descriptor.Products {
		if strings.TrimSpace(entry.ProductName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "product_name is required")
		}
		if entry.IsSlabBased {
			if err := validateSlabs(entry.ProductName, entry.Slabs); err != nil {
				return err
			}
		}
		if entry.IsBundleOffer {
			if entry.BundleProductName == nil || strings.TrimSpace(*entry.BundleProductName) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("bundle offer for %q missing bundle_product_name", entry.ProductName))
			}
			if entry.BundlePrice == nil || entry.BundlePrice.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("bundle offer for %q missing bundle_price", entry.ProductName))
			}
		}
	}

	for _, entry := range descriptor.DealerTargets {
		metric := enums.TargetMetric(entry.Metric)
		if !metric.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unknown target metric %q", entry.Metric))
		}
		if metric == enums.TargetMetricUnitsSold && entry.TargetQuantity == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "units target missing target_quantity")
		}
		if metric == enums.TargetMetricSalesValue && entry.TargetValue == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "value target missing target_value")
		}
	}

	return nil
}

// validateSlabs enforces ascending, non-overlapping bands where only the
// last band may be open-ended.
func validateSlabs(productName string, slabs []SlabEntry) error {
	if len(slabs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("slab-based offer for %q has no slabs", productName))
	}
	for i, band := range slabs {
		if band.MinQuantity < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("slab %d for %q has negative min_quantity", i, productName))
		}
		if band.MaxQuantity != nil && *band.MaxQuantity < band.MinQuantity {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("slab %d for %q has max_quantity below min_quantity", i, productName))
		}
		if band.MaxQuantity == nil && i != len(slabs)-1 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("only the last slab for %q may be open-ended", productName))
		}
		if i > 0 {
			prev := slabs[i-1]
			if band.MinQuantity <= prev.MinQuantity {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("slabs for %q must ascend by min_quantity", productName))
			}
			if prev.MaxQuantity != nil && band.MinQuantity <= *prev.MaxQuantity {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("slabs for %q overlap", productName))
			}
		}
	}
	return nil
}

func productKey(name string, code *string) string {
	if code != nil && strings.TrimSpace(*code) != "" {
		return strings.TrimSpace(name) + "|" + strings.TrimSpace(*code)
	}
	return strings.TrimSpace(name)
}

func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
