package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	pkgerrors "github.com/schemedesk/schemedesk-backend/pkg/errors"
)

// Service selects the single applicable offer for a product and sale date.
type Service interface {
	Resolve(ctx context.Context, productID uuid.UUID, saleDate time.Time) (*models.Offer, error)
	ResolveBundle(ctx context.Context, schemeID, primaryProductID uuid.UUID) (*models.BundleOffer, error)
}

// GroupMatcher is the extension point for offers that target a free-text
// product group instead of a product id. Scheme documents describe groups
// inconsistently, so the matching rules live behind this interface rather
// than being guessed here. Return (nil, nil) to decline.
type GroupMatcher interface {
	MatchOffer(ctx context.Context, productID uuid.UUID, saleDate time.Time) (*models.Offer, error)
}

// noopGroupMatcher declines every group lookup.
type noopGroupMatcher struct{}

func (noopGroupMatcher) MatchOffer(context.Context, uuid.UUID, time.Time) (*models.Offer, error) {
	return nil, nil
}

type service struct {
	repo    *Repository
	matcher GroupMatcher
}

// Option customizes resolver construction.
type Option func(*service)

// WithGroupMatcher installs a product-group matching strategy consulted
// when no direct product match exists.
func WithGroupMatcher(matcher GroupMatcher) Option {
	return func(s *service) {
		if matcher != nil {
			s.matcher = matcher
		}
	}
}

// NewService constructs an offer resolver.
func NewService(repo *Repository, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("resolver repository required")
	}
	svc := &service{repo: repo, matcher: noopGroupMatcher{}}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Resolve returns the winning offer, or a NotFound coded error when no
// approved active scheme covers the product on that date. Callers treat
// NotFound as "sale proceeds with no benefit", not as a failure.
func (s *service) Resolve(ctx context.Context, productID uuid.UUID, saleDate time.Time) (*models.Offer, error) {
	day := saleDate.Truncate(24 * time.Hour)

	offer, err := s.repo.FindCandidateOffer(ctx, productID, day)
	if err == nil {
		return offer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query candidate offers")
	}

	matched, err := s.matcher.MatchOffer(ctx, productID, saleDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "group matcher")
	}
	if matched != nil {
		return matched, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no applicable offer")
}

// ResolveBundle loads the bundle pairing behind a bundle-flagged offer.
func (s *service) ResolveBundle(ctx context.Context, schemeID, primaryProductID uuid.UUID) (*models.BundleOffer, error) {
	bundle, err := s.repo.FindBundle(ctx, schemeID, primaryProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bundle pairing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bundle offer")
	}
	return bundle, nil
}
