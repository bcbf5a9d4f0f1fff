package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schemedesk/schemedesk-backend/api/responses"
	"github.com/schemedesk/schemedesk-backend/api/validators"
	"github.com/schemedesk/schemedesk-backend/internal/catalog"
	settlementsvc "github.com/schemedesk/schemedesk-backend/internal/settlement"
	pkgerrors "github.com/schemedesk/schemedesk-backend/pkg/errors"
	"github.com/schemedesk/schemedesk-backend/pkg/logger"
	"github.com/schemedesk/schemedesk-backend/pkg/pagination"
)

type settleSaleRequest struct {
	DealerID          string   `json:"dealer_id" validate:"required"`
	ProductID         string   `json:"product_id" validate:"required"`
	Quantity          int      `json:"quantity" validate:"required,min=1"`
	SaleDate          *string  `json:"sale_date,omitempty"`
	UnitPriceOverride *float64 `json:"unit_price_override,omitempty" validate:"omitempty,gt=0"`
	BillingRef        *string  `json:"billing_ref,omitempty"`
	Simulated         bool     `json:"simulated,omitempty"`
}

func (r settleSaleRequest) toInput() (settlementsvc.SettleSaleInput, error) {
	productID, err := uuid.Parse(strings.TrimSpace(r.ProductID))
	if err != nil {
		return settlementsvc.SettleSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}

	input := settlementsvc.SettleSaleInput{
		DealerID:   strings.TrimSpace(r.DealerID),
		ProductID:  productID,
		Quantity:   r.Quantity,
		BillingRef: r.BillingRef,
		Simulated:  r.Simulated,
	}

	if r.SaleDate != nil {
		saleDate, err := time.Parse("2006-01-02", strings.TrimSpace(*r.SaleDate))
		if err != nil {
			return settlementsvc.SettleSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "sale_date must be YYYY-MM-DD")
		}
		input.SaleDate = saleDate
	}

	if r.UnitPriceOverride != nil {
		price := decimal.NewFromFloat(*r.UnitPriceOverride)
		input.UnitPriceOverride = &price
	}

	return input, nil
}

// SettleSale resolves the applicable offer, computes the payout split, and
// writes the settled transaction.
func SettleSale(svc settlementsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		var payload settleSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.SettleSale(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// ListSales pages the settlement ledger, newest first.
func ListSales(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		input, err := listSalesInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListSales(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func listSalesInputFromQuery(r *http.Request) (catalog.ListSalesInput, error) {
	var input catalog.ListSalesInput

	schemeID, err := validators.ParseQueryUUID(r, "scheme_id")
	if err != nil {
		return input, err
	}
	productID, err := validators.ParseQueryUUID(r, "product_id")
	if err != nil {
		return input, err
	}
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return input, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return input, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return input, err
	}

	input.SchemeID = schemeID
	input.ProductID = productID
	input.DealerID = validators.ParseQueryString(r, "dealer_id")
	input.From = from
	input.To = to
	input.Pagination = pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	return input, nil
}
