package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/schemedesk/schemedesk-backend/internal/testdb"
	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
	pkgerrors "github.com/schemedesk/schemedesk-backend/pkg/errors"
)

type schemeOpts struct {
	name           string
	approvalStatus enums.ApprovalStatus
	status         enums.SchemeStatus
	uploadedAt     time.Time
}

func seedScheme(t *testing.T, conn *gorm.DB, opts schemeOpts) *models.Scheme {
	t.Helper()
	scheme := &models.Scheme{
		ID:              uuid.New(),
		Name:            opts.name,
		PeriodStart:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:       time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Status:          opts.status,
		ApprovalStatus:  opts.approvalStatus,
		UploadTimestamp: opts.uploadedAt,
	}
	require.NoError(t, conn.Create(scheme).Error)
	return scheme
}

func seedOffer(t *testing.T, conn *gorm.DB, schemeID, productID uuid.UUID, createdAt time.Time) *models.Offer {
	t.Helper()
	offer := &models.Offer{
		ID:          uuid.New(),
		SchemeID:    schemeID,
		ProductID:   &productID,
		SupportType: "Cashback",
		PayoutType:  enums.PayoutTypeFixed,
		PayoutValue: decimal.NewFromInt(500),
		CreatedAt:   createdAt,
	}
	require.NoError(t, conn.Create(offer).Error)
	return offer
}

func TestResolvePicksLatestUpload(t *testing.T) {
	conn := testdb.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	ctx := context.Background()
	productID := uuid.New()
	saleDate := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	older := seedScheme(t, conn, schemeOpts{
		name:           "Older Scheme",
		approvalStatus: enums.ApprovalStatusApproved,
		status:         enums.SchemeStatusActive,
		uploadedAt:     time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	newer := seedScheme(t, conn, schemeOpts{
		name:           "Newer Scheme",
		approvalStatus: enums.ApprovalStatusApproved,
		status:         enums.SchemeStatusActive,
		uploadedAt:     time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
	})

	seedOffer(t, conn, older.ID, productID, time.Date(2025, 5, 1, 1, 0, 0, 0, time.UTC))
	winner := seedOffer(t, conn, newer.ID, productID, time.Date(2025, 5, 20, 1, 0, 0, 0, time.UTC))

	resolved, err := svc.Resolve(ctx, productID, saleDate)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, resolved.ID)

	// Deterministic: identical inputs return the identical offer.
	again, err := svc.Resolve(ctx, productID, saleDate)
	require.NoError(t, err)
	assert.Equal(t, resolved.ID, again.ID)
}

func TestResolveIgnoresUnapprovedSchemes(t *testing.T) {
	conn := testdb.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	ctx := context.Background()
	productID := uuid.New()
	saleDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	pending := seedScheme(t, conn, schemeOpts{
		name:           "Pending Scheme",
		approvalStatus: enums.ApprovalStatusPending,
		status:         enums.SchemeStatusActive,
		uploadedAt:     time.Now().UTC(),
	})
	seedOffer(t, conn, pending.ID, productID, time.Now().UTC())

	_, err = svc.Resolve(ctx, productID, saleDate)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	rejected := seedScheme(t, conn, schemeOpts{
		name:           "Rejected Scheme",
		approvalStatus: enums.ApprovalStatusRejected,
		status:         enums.SchemeStatusActive,
		uploadedAt:     time.Now().UTC(),
	})
	seedOffer(t, conn, rejected.ID, productID, time.Now().UTC())

	_, err = svc.Resolve(ctx, productID, saleDate)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	inactive := seedScheme(t, conn, schemeOpts{
		name:           "Inactive Scheme",
		approvalStatus: enums.ApprovalStatusApproved,
		status:         enums.SchemeStatusInactive,
		uploadedAt:     time.Now().UTC(),
	})
	seedOffer(t, conn, inactive.ID, productID, time.Now().UTC())

	_, err = svc.Resolve(ctx, productID, saleDate)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestResolvePeriodBoundsInclusive(t *testing.T) {
	conn := testdb.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	ctx := context.Background()
	productID := uuid.New()

	scheme := seedScheme(t, conn, schemeOpts{
		name:           "June Scheme",
		approvalStatus: enums.ApprovalStatusApproved,
		status:         enums.SchemeStatusActive,
		uploadedAt:     time.Now().UTC(),
	})
	seedOffer(t, conn, scheme.ID, productID, time.Now().UTC())

	// First and last day of the period both resolve, including a sale
	// timestamped late on the final day.
	_, err = svc.Resolve(ctx, productID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, productID, time.Date(2025, 6, 30, 23, 15, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, productID, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Resolve(ctx, productID, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

type stubGroupMatcher struct {
	offer *models.Offer
}

func (m stubGroupMatcher) MatchOffer(context.Context, uuid.UUID, time.Time) (*models.Offer, error) {
	return m.offer, nil
}

func TestResolveFallsBackToGroupMatcher(t *testing.T) {
	conn := testdb.Open(t)
	group := "All 1.5T ACs"
	matched := &models.Offer{ID: uuid.New(), ProductGroupDescription: &group}

	svc, err := NewService(NewRepository(conn), WithGroupMatcher(stubGroupMatcher{offer: matched}))
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, matched.ID, resolved.ID)
}

func TestResolveBundleNotFound(t *testing.T) {
	conn := testdb.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	_, err = svc.ResolveBundle(context.Background(), uuid.New(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
