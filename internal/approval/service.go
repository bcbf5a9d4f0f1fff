package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schemedesk/schemedesk-backend/pkg/db"
	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
	pkgerrors "github.com/schemedesk/schemedesk-backend/pkg/errors"
	"github.com/schemedesk/schemedesk-backend/pkg/logger"
)

// Service runs the scheme approval state machine. Pending moves to
// approved or rejected exactly once; every transition appends an
// immutable audit row.
type Service interface {
	Decide(ctx context.Context, schemeID uuid.UUID, decision enums.ApprovalDecision, approver string, notes *string) (*models.Scheme, error)
	Resubmit(ctx context.Context, schemeID uuid.UUID) (*models.Scheme, error)
	History(ctx context.Context, schemeID uuid.UUID) ([]models.SchemeApproval, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService constructs the approval workflow service.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("approval repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, dbClient: dbClient, logg: logg}, nil
}

// Decide applies an approve or reject decision to a pending scheme.
// Deciding a scheme that already left pending fails with a state
// conflict; the losing side of a race gets the same answer.
func (s *service) Decide(ctx context.Context, schemeID uuid.UUID, decision enums.ApprovalDecision, approver string, notes *string) (*models.Scheme, error) {
	approver = strings.TrimSpace(approver)
	if approver == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approver is required")
	}
	if !decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}

	scheme, err := s.repo.FindSchemeByID(ctx, schemeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "scheme not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load scheme")
	}
	if scheme.ApprovalStatus != enums.ApprovalStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("scheme is %s, only pending schemes can be decided", scheme.ApprovalStatus))
	}

	decidedAt := time.Now().UTC()
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		transitioned, err := txRepo.TransitionFromPending(ctx, schemeID, decision.Status(), approver, decidedAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: transition scheme")
		}
		if !transitioned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "scheme was decided concurrently")
		}

		audit := &models.SchemeApproval{
			SchemeID:  schemeID,
			Decision:  decision,
			Approver:  approver,
			Notes:     notes,
			DecidedAt: decidedAt,
		}
		if err := txRepo.AppendAudit(ctx, audit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append approval audit")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decide scheme")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"scheme_id": schemeID.String(),
		"decision":  decision.String(),
		"approver":  approver,
	})
	s.logg.Info(logCtx, "scheme approval decided")

	return s.repo.FindSchemeByID(ctx, schemeID)
}

// Resubmit returns an approved scheme to pending after its offers were
// edited, so a fresh decision gates resolution again.
func (s *service) Resubmit(ctx context.Context, schemeID uuid.UUID) (*models.Scheme, error) {
	scheme, err := s.repo.FindSchemeByID(ctx, schemeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "scheme not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load scheme")
	}

	switch scheme.ApprovalStatus {
	case enums.ApprovalStatusPending:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheme is already pending")
	case enums.ApprovalStatusRejected:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "rejected schemes cannot be resubmitted")
	}

	transitioned, err := s.repo.TransitionToPending(ctx, schemeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resubmit scheme")
	}
	if !transitioned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "scheme left approved state concurrently")
	}

	logCtx := s.logg.WithField(ctx, "scheme_id", schemeID.String())
	s.logg.Info(logCtx, "scheme resubmitted for approval")

	return s.repo.FindSchemeByID(ctx, schemeID)
}

// History returns the append-only decision trail for a scheme.
func (s *service) History(ctx context.Context, schemeID uuid.UUID) ([]models.SchemeApproval, error) {
	rows, err := s.repo.ListAudit(ctx, schemeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list approval history")
	}
	return rows, nil
}
