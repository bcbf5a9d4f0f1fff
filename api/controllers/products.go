package controllers

import (
	"net/http"

	"github.com/schemedesk/schemedesk-backend/api/responses"
	"github.com/schemedesk/schemedesk-backend/internal/catalog"
	pkgerrors "github.com/schemedesk/schemedesk-backend/pkg/errors"
	"github.com/schemedesk/schemedesk-backend/pkg/logger"
)

func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}
