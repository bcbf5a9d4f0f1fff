package targets

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
	pkgerrors "github.com/schemedesk/schemedesk-backend/pkg/errors"
	"github.com/schemedesk/schemedesk-backend/pkg/logger"
)

// Tracker applies settled sales onto dealer target progress.
type Tracker interface {
	// ApplySale runs inside the caller's transaction so target updates
	// commit (or roll back) together with the sale that caused them.
	ApplySale(ctx context.Context, tx *gorm.DB, txn *models.SalesTransaction) ([]models.DealerTarget, error)
}

// GroupMatcher decides whether a group-described target covers a product.
// Matching rules for free-text groups are not guessable, so they live
// behind this interface; the default declines every group target.
type GroupMatcher interface {
	MatchesTarget(ctx context.Context, target *models.DealerTarget, txn *models.SalesTransaction) (bool, error)
}

type noopGroupMatcher struct{}

func (noopGroupMatcher) MatchesTarget(context.Context, *models.DealerTarget, *models.SalesTransaction) (bool, error) {
	return false, nil
}

type tracker struct {
	repo    *Repository
	logg    *logger.Logger
	matcher GroupMatcher
}

// Option customizes tracker construction.
type Option func(*tracker)

// WithGroupMatcher installs a product-group matching strategy for targets.
func WithGroupMatcher(matcher GroupMatcher) Option {
	return func(t *tracker) {
		if matcher != nil {
			t.matcher = matcher
		}
	}
}

// NewTracker constructs the target tracker.
func NewTracker(repo *Repository, logg *logger.Logger, opts ...Option) (Tracker, error) {
	if repo == nil {
		return nil, fmt.Errorf("targets repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	trk := &tracker{repo: repo, logg: logg, matcher: noopGroupMatcher{}}
	for _, opt := range opts {
		opt(trk)
	}
	return trk, nil
}

// ApplySale adds the transaction's quantity or net value to every open
// matching target of its scheme and flips achievement when the goal is
// met. Achievement is monotonic: achieved targets are never reopened.
func (t *tracker) ApplySale(ctx context.Context, tx *gorm.DB, txn *models.SalesTransaction) ([]models.DealerTarget, error) {
	if txn.SchemeID == nil {
		return nil, nil
	}

	repo := t.repo.WithTx(tx)

	open, err := repo.ListOpenTargets(ctx, *txn.SchemeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list open targets")
	}

	var updated []models.DealerTarget
	for i := range open {
		target := &open[i]

		matches, err := t.targetMatches(ctx, target, txn)
		if err != nil {
			return updated, err
		}
		if !matches {
			continue
		}

		units := 0
		value := txn.NetPriceAfterSupport
		if target.Metric == enums.TargetMetricUnitsSold {
			units = txn.Quantity
		}
		if err := repo.AddProgress(ctx, target.ID, units, value); err != nil {
			return updated, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add target progress")
		}

		fresh, err := repo.FindByID(ctx, target.ID)
		if err != nil {
			return updated, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload target")
		}
		if fresh.GoalMet() && !fresh.IsAchieved {
			if err := repo.MarkAchieved(ctx, fresh.ID); err != nil {
				return updated, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark target achieved")
			}
			fresh.IsAchieved = true
			logCtx := t.logg.WithField(ctx, "target_id", fresh.ID.String())
			t.logg.Info(logCtx, "dealer target achieved")
		}
		updated = append(updated, *fresh)
	}

	return updated, nil
}

// targetMatches applies the direct-product rule, treats product-less
// untyped targets as scheme-wide, and defers group descriptions to the
// configured matcher.
func (t *tracker) targetMatches(ctx context.Context, target *models.DealerTarget, txn *models.SalesTransaction) (bool, error) {
	if target.TargetProductID != nil {
		return *target.TargetProductID == txn.ProductID, nil
	}
	if target.ProductGroupDescription != nil {
		matches, err := t.matcher.MatchesTarget(ctx, target, txn)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "target group matcher")
		}
		return matches, nil
	}
	// No product and no group: the target spans the whole scheme.
	return true, nil
}
