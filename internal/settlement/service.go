package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/schemedesk/schemedesk-backend/internal/payout"
	"github.com/schemedesk/schemedesk-backend/internal/resolver"
	"github.com/schemedesk/schemedesk-backend/internal/targets"
	"github.com/schemedesk/schemedesk-backend/pkg/db"
	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
	pkgerrors "github.com/schemedesk/schemedesk-backend/pkg/errors"
	"github.com/schemedesk/schemedesk-backend/pkg/logger"
	"github.com/schemedesk/schemedesk-backend/pkg/metrics"
)

// Service is the single write entry point of the settlement engine.
type Service interface {
	SettleSale(ctx context.Context, input SettleSaleInput) (*models.SalesTransaction, error)
	RetryTargetFailures(ctx context.Context, batchSize, maxAttempts int) (int, error)
}

// SettleSaleInput is the validated request for one sale.
type SettleSaleInput struct {
	DealerID          string
	ProductID         uuid.UUID
	Quantity          int
	SaleDate          time.Time
	UnitPriceOverride *decimal.Decimal
	BillingRef        *string
	Simulated         bool
}

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	products productLoader
	resolver resolver.Service
	calc     *payout.Calculator
	tracker  targets.Tracker
	logg     *logger.Logger
	metrics  *metrics.SettlementMetrics
}

// Params bundles the settlement service dependencies.
type Params struct {
	Repo     *Repository
	DBClient *db.Client
	Products productLoader
	Resolver resolver.Service
	Calc     *payout.Calculator
	Tracker  targets.Tracker
	Logger   *logger.Logger
	Metrics  *metrics.SettlementMetrics
}

// NewService constructs the settlement ledger.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("settlement repository required")
	}
	if params.DBClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("offer resolver required")
	}
	if params.Calc == nil {
		return nil, fmt.Errorf("payout calculator required")
	}
	if params.Tracker == nil {
		return nil, fmt.Errorf("target tracker required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     params.Repo,
		dbClient: params.DBClient,
		products: params.Products,
		resolver: params.Resolver,
		calc:     params.Calc,
		tracker:  params.Tracker,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// SettleSale resolves the applicable offer, computes the payout, and
// persists exactly one transaction. Target bookkeeping rides in the same
// commit but never vetoes it: a tracker failure downgrades to a
// dead-letter row the worker replays later.
func (s *service) SettleSale(ctx context.Context, input SettleSaleInput) (*models.SalesTransaction, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	saleDate := input.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now().UTC()
	}

	product, err := s.products.FindProductByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	unitPrice := product.DealerPrice
	if input.UnitPriceOverride != nil {
		unitPrice = *input.UnitPriceOverride
	}
	if !unitPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit dealer price must be positive")
	}

	offer, err := s.resolver.Resolve(ctx, input.ProductID, saleDate)
	if err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, err
		}
		offer = nil
	}

	breakdown, err := s.computeBreakdown(ctx, offer, input.Quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	if !breakdown.SlabMatched {
		logCtx := s.logg.WithField(ctx, "offer_id", offer.ID.String())
		s.logg.Warn(logCtx, "quantity outside all payout slabs, settling with zero payout")
		s.metrics.IncSlabMiss()
	}

	status := enums.VerificationStatusPending
	if input.Simulated {
		status = enums.VerificationStatusSimulated
	}

	txn := &models.SalesTransaction{
		DealerID:                strings.TrimSpace(input.DealerID),
		ProductID:               input.ProductID,
		Quantity:                input.Quantity,
		UnitDealerPrice:         unitPrice,
		GSTAmount:               breakdown.GSTAmount,
		NetPriceAfterSupport:    breakdown.NetPriceAfterSupport,
		NetPricePerUnit:         breakdown.NetPricePerUnit,
		CustomerDiscountTotal:   breakdown.CustomerDiscountTotal,
		CustomerDiscountPerUnit: breakdown.CustomerDiscountPerUnit,
		DealerIncentiveTotal:    breakdown.DealerIncentiveTotal,
		DealerIncentivePerUnit:  breakdown.DealerIncentivePerUnit,
		BillingRef:              input.BillingRef,
		VerificationStatus:      status,
		SaleTimestamp:           saleDate,
	}
	if offer != nil {
		txn.SchemeID = &offer.SchemeID
		txn.OfferID = &offer.ID
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert sales transaction")
		}

		// Savepoint so a half-applied target update rolls back without
		// taking the sale down with it.
		if err := tx.SavePoint("target_updates").Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create savepoint")
		}
		achieved, trackErr := s.tracker.ApplySale(ctx, tx, txn)
		if trackErr != nil {
			_ = tx.RollbackTo("target_updates").Error
			// The sale always wins over target bookkeeping.
			logCtx := s.logg.WithField(ctx, "transaction_id", txn.ID.String())
			s.logg.Error(logCtx, "target update failed, queueing for retry", trackErr)
			failure := &models.TargetUpdateFailure{
				TransactionID: txn.ID,
				Reason:        trackErr.Error(),
			}
			if failErr := txRepo.CreateFailure(ctx, failure); failErr != nil {
				s.logg.Error(logCtx, "could not queue target update failure", failErr)
			}
			return nil
		}
		for range achieved {
			s.metrics.IncTargetAchieved()
		}
		return nil
	}); err != nil {
		s.metrics.IncSettled("failed")
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle sale")
	}

	s.recordSettled(ctx, txn, offer != nil)
	return txn, nil
}

func (s *service) computeBreakdown(ctx context.Context, offer *models.Offer, quantity int, unitPrice decimal.Decimal) (payout.Breakdown, error) {
	if offer == nil {
		return s.calc.ComputeWithoutOffer(quantity, unitPrice)
	}

	input := payout.Input{
		Offer:           offer,
		Quantity:        quantity,
		UnitDealerPrice: unitPrice,
	}
	if offer.IsBundleOffer && offer.ProductID != nil {
		bundle, err := s.resolver.ResolveBundle(ctx, offer.SchemeID, *offer.ProductID)
		if err != nil {
			return payout.Breakdown{}, err
		}
		bundleProduct, err := s.products.FindProductByID(ctx, bundle.BundleProductID)
		if err != nil {
			return payout.Breakdown{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bundle product")
		}
		input.Bundle = bundle
		input.BundleProductPrice = bundleProduct.DealerPrice
	}
	return s.calc.Compute(input)
}

func (s *service) recordSettled(ctx context.Context, txn *models.SalesTransaction, withOffer bool) {
	outcome := "no_offer"
	if withOffer {
		outcome = "with_offer"
	}
	s.metrics.IncSettled(outcome)
	if txn.DealerIncentiveTotal.IsPositive() {
		amount, _ := txn.DealerIncentiveTotal.Float64()
		s.metrics.ObservePayout("dealer_incentive", amount)
	}
	if txn.CustomerDiscountTotal.IsPositive() {
		amount, _ := txn.CustomerDiscountTotal.Float64()
		s.metrics.ObservePayout("customer_discount", amount)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"transaction_id": txn.ID.String(),
		"dealer_id":      txn.DealerID,
		"outcome":        outcome,
	})
	s.logg.Info(logCtx, "sale settled")
}

// RetryTargetFailures replays queued target updates, marking rows
// resolved on success and counting attempts otherwise. Returns how many
// rows were replayed successfully.
func (s *service) RetryTargetFailures(ctx context.Context, batchSize, maxAttempts int) (int, error) {
	failures, err := s.repo.ListOpenFailures(ctx, batchSize, maxAttempts)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list target failures")
	}

	resolved := 0
	for _, failure := range failures {
		txn, err := s.repo.FindTransactionByID(ctx, failure.TransactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Transaction vanished; retire the row instead of
				// retrying forever.
				_ = s.repo.MarkResolved(ctx, failure.ID)
				continue
			}
			return resolved, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load failed transaction")
		}

		replayErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			achieved, err := s.tracker.ApplySale(ctx, tx, txn)
			if err != nil {
				return err
			}
			for range achieved {
				s.metrics.IncTargetAchieved()
			}
			return s.repo.WithTx(tx).MarkResolved(ctx, failure.ID)
		})
		if replayErr != nil {
			logCtx := s.logg.WithField(ctx, "failure_id", failure.ID.String())
			s.logg.Error(logCtx, "target update replay failed", replayErr)
			if err := s.repo.IncrementAttempts(ctx, failure.ID); err != nil {
				return resolved, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count replay attempt")
			}
			continue
		}
		resolved++
	}

	return resolved, nil
}

func validateInput(input SettleSaleInput) error {
	if strings.TrimSpace(input.DealerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "dealer id is required")
	}
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.UnitPriceOverride != nil && !input.UnitPriceOverride.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price override must be positive")
	}
	return nil
}
