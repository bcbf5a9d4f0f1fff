package controllers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/schemedesk/schemedesk-backend/pkg/db/models"
	"github.com/schemedesk/schemedesk-backend/pkg/enums"
	"github.com/schemedesk/schemedesk-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func requestWithSchemeID(method, target, body string, schemeID string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("schemeId", schemeID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}

func TestDecideScheme(t *testing.T) {
	logg := testLogger()
	schemeID := uuid.New()

	t.Run("invalid scheme id", func(t *testing.T) {
		stub := &stubApprovalService{}
		req := requestWithSchemeID(http.MethodPost, "/api/v1/schemes/nope/decision", `{"decision":"approve","approver":"alice"}`, "nope")
		rec := httptest.NewRecorder()
		DecideScheme(stub, logg).ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, stub.decideCalled)
	})

	t.Run("missing approver", func(t *testing.T) {
		stub := &stubApprovalService{}
		req := requestWithSchemeID(http.MethodPost, "/api/v1/schemes/"+schemeID.String()+"/decision", `{"decision":"approve"}`, schemeID.String())
		rec := httptest.NewRecorder()
		DecideScheme(stub, logg).ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, stub.decideCalled)
	})

	t.Run("unknown decision", func(t *testing.T) {
		stub := &stubApprovalService{}
		req := requestWithSchemeID(http.MethodPost, "/api/v1/schemes/"+schemeID.String()+"/decision", `{"decision":"maybe","approver":"alice"}`, schemeID.String())
		rec := httptest.NewRecorder()
		DecideScheme(stub, logg).ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, stub.decideCalled)
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubApprovalService{scheme: &models.Scheme{ID: schemeID, ApprovalStatus: enums.ApprovalStatusApproved}}
		req := requestWithSchemeID(http.MethodPost, "/api/v1/schemes/"+schemeID.String()+"/decision", `{"decision":"approve","approver":"alice"}`, schemeID.String())
		rec := httptest.NewRecorder()
		DecideScheme(stub, logg).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, stub.decideCalled)
		require.Equal(t, enums.ApprovalDecisionApprove, stub.gotDecision)
		require.Equal(t, "alice", stub.gotApprover)
	})
}

func TestResubmitScheme(t *testing.T) {
	logg := testLogger()
	schemeID := uuid.New()

	stub := &stubApprovalService{scheme: &models.Scheme{ID: schemeID, ApprovalStatus: enums.ApprovalStatusPending}}
	req := requestWithSchemeID(http.MethodPost, "/api/v1/schemes/"+schemeID.String()+"/resubmit", "", schemeID.String())
	rec := httptest.NewRecorder()
	ResubmitScheme(stub, logg).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, stub.resubmitCalled)
}

type stubApprovalService struct {
	scheme         *models.Scheme
	decideCalled   bool
	resubmitCalled bool
	gotDecision    enums.ApprovalDecision
	gotApprover    string
}

func (s *stubApprovalService) Decide(ctx context.Context, schemeID uuid.UUID, decision enums.ApprovalDecision, approver string, notes *string) (*models.Scheme, error) {
	s.decideCalled = true
	s.gotDecision = decision
	s.gotApprover = approver
	return s.scheme, nil
}

func (s *stubApprovalService) Resubmit(ctx context.Context, schemeID uuid.UUID) (*models.Scheme, error) {
	s.resubmitCalled = true
	return s.scheme, nil
}

func (s *stubApprovalService) History(ctx context.Context, schemeID uuid.UUID) ([]models.SchemeApproval, error) {
	return nil, nil
}
