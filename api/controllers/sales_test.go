package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	settlementsvc "github.com/schemedesk/schemedesk-backend/internal/settlement"
	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/pagination"
)

func TestSettleSale(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	post := func(body string, stub *stubSettlementService) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		SettleSale(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing dealer", func(t *testing.T) {
		stub := &stubSettlementService{}
		rec := post(`{"product_id":"`+productID.String()+`","quantity":2}`, stub)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, stub.called)
	})

	t.Run("bad product id", func(t *testing.T) {
		stub := &stubSettlementService{}
		rec := post(`{"dealer_id":"DLR-1","product_id":"nope","quantity":2}`, stub)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, stub.called)
	})

	t.Run("bad sale date", func(t *testing.T) {
		stub := &stubSettlementService{}
		rec := post(`{"dealer_id":"DLR-1","product_id":"`+productID.String()+`","quantity":2,"sale_date":"15-06-2026"}`, stub)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, stub.called)
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubSettlementService{txn: &models.SalesTransaction{ID: uuid.New()}}
		rec := post(`{"dealer_id":"DLR-1","product_id":"`+productID.String()+`","quantity":2,"sale_date":"2026-06-15"}`, stub)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.True(t, stub.called)
		require.Equal(t, "DLR-1", stub.gotInput.DealerID)
		require.Equal(t, productID, stub.gotInput.ProductID)
		require.Equal(t, 2, stub.gotInput.Quantity)
		require.Equal(t, 15, stub.gotInput.SaleDate.Day())
	})
}

func TestListSalesInputFromQuery(t *testing.T) {
	schemeID := uuid.New()

	t.Run("defaults", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		input, err := listSalesInputFromQuery(req)
		require.NoError(t, err)
		require.Nil(t, input.SchemeID)
		require.Nil(t, input.DealerID)
		require.Equal(t, pagination.DefaultLimit, input.Pagination.Limit)
	})

	t.Run("filters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales?scheme_id="+schemeID.String()+"&dealer_id=DLR-1&from=2026-06-01&limit=10", nil)
		input, err := listSalesInputFromQuery(req)
		require.NoError(t, err)
		require.NotNil(t, input.SchemeID)
		require.Equal(t, schemeID, *input.SchemeID)
		require.NotNil(t, input.DealerID)
		require.Equal(t, "DLR-1", *input.DealerID)
		require.NotNil(t, input.From)
		require.Equal(t, 10, input.Pagination.Limit)
	})

	t.Run("bad uuid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales?scheme_id=nope", nil)
		_, err := listSalesInputFromQuery(req)
		require.Error(t, err)
	})

	t.Run("limit out of range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales?limit=5000", nil)
		_, err := listSalesInputFromQuery(req)
		require.Error(t, err)
	})
}

type stubSettlementService struct {
	txn      *models.SalesTransaction
	called   bool
	gotInput settlementsvc.SettleSaleInput
}

func (s *stubSettlementService) SettleSale(ctx context.Context, input settlementsvc.SettleSaleInput) (*models.SalesTransaction, error) {
	s.called = true
	s.gotInput = input
	return s.txn, nil
}

func (s *stubSettlementService) RetryTargetFailures(ctx context.Context, batchSize, maxAttempts int) (int, error) {
	return 0, nil
}
