package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/schemedesk/schemedesk-backend/api/responses"
	"github.com/schemedesk/schemedesk-backend/api/validators"
	"github.com/schemedesk/schemedesk-backend/internal/approval"
	"github.com/schemedesk/schemedesk-backend/internal/catalog"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
	pkgerrors "github.com/schemedesk/schemedesk-backend/pkg/errors"
	"github.com/schemedesk/schemedesk-backend/pkg/logger"
)

// CreateScheme registers an extracted scheme document with its offers,
// slabs, bundles, and dealer targets. The scheme lands pending approval.
func CreateScheme(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var descriptor catalog.SchemeDescriptor
		if err := validators.DecodeJSONBody(r, &descriptor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scheme, err := svc.CreateSchemeFromDescriptor(r.Context(), descriptor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, scheme)
	}
}

func ListSchemes(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		schemes, err := svc.ListSchemes(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, schemes)
	}
}

func GetScheme(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		schemeID, err := schemeIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scheme, err := svc.GetScheme(r.Context(), schemeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, scheme)
	}
}

type decideSchemeRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=approve reject"`
	Approver string  `json:"approver" validate:"required"`
	Notes    *string `json:"notes,omitempty"`
}

// DecideScheme approves or rejects a pending scheme.
func DecideScheme(svc approval.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "approval service unavailable"))
			return
		}

		schemeID, err := schemeIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload decideSchemeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := enums.ParseApprovalDecision(strings.TrimSpace(payload.Decision))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision"))
			return
		}

		scheme, err := svc.Decide(r.Context(), schemeID, decision, payload.Approver, payload.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, scheme)
	}
}

// ResubmitScheme moves an approved scheme back to pending for re-review.
func ResubmitScheme(svc approval.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "approval service unavailable"))
			return
		}

		schemeID, err := schemeIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scheme, err := svc.Resubmit(r.Context(), schemeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, scheme)
	}
}

func ApprovalHistory(svc approval.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "approval service unavailable"))
			return
		}

		schemeID, err := schemeIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), schemeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, history)
	}
}

func schemeIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "schemeId")
	schemeID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scheme id")
	}
	return schemeID, nil
}
