package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"sarpras-backend/internal/domain/loan"
	"sarpras-backend/internal/domain/quota"
	"sarpras-backend/internal/domain/uow"
	"sarpras-backend/internal/testutil/approvalmock"
	"sarpras-backend/internal/testutil/loanmock"
	"sarpras-backend/internal/testutil/markingmock"
	"sarpras-backend/internal/testutil/quotamock"
	"sarpras-backend/internal/testutil/uowmock"
	loanuc "sarpras-backend/internal/usecase/loan"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newLoanHandler(r uow.Repos) *LoanHandler {
	uc := loanuc.NewUsecase(uowmock.New(r), loan.NopNotifier{}, zap.NewNop(), 3)
	return NewLoanHandler(uc)
}

func emptyRepos() uow.Repos {
	return uow.Repos{
		Loans:     &loanmock.Repo{},
		Approvals: &approvalmock.Repo{},
		Markings:  &markingmock.Repo{},
		Quotas:    &quotamock.Repo{},
	}
}

func createBody(requesterID string) string {
	starts := time.Date(2025, 9, 10, 8, 0, 0, 0, time.UTC)
	return fmt.Sprintf(`{
		"requester_id": %q,
		"event_name": "Seminar Nasional",
		"room_id": 7,
		"starts_at": %q,
		"ends_at": %q,
		"items": [{"equipment_id": 11, "requested_qty": 2}]
	}`, requesterID, starts.Format(time.RFC3339), starts.Add(2*time.Hour).Format(time.RFC3339))
}

func TestCreateLoanRequest_Created(t *testing.T) {
	e := newEcho()
	repos := emptyRepos()
	repos.Loans.(*loanmock.Repo).CreateFn = func(ctx context.Context, l *loan.LoanRequest) error {
		l.ID = 42
		return nil
	}
	h := newLoanHandler(repos)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", strings.NewReader(createBody(strings.Repeat("a", 32))))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateLoanRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	var dto loanuc.LoanRequestDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if dto.Status != "pending" || len(dto.RequestID) != 32 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
}

func TestCreateLoanRequest_ValidationFailure(t *testing.T) {
	e := newEcho()
	h := newLoanHandler(emptyRepos())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", strings.NewReader(createBody("NOT-HEX")))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateLoanRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !containsFieldMsg(body.Details, "RequesterID", "32-char lowercase hex") {
		t.Fatalf("missing hex32 detail: %+v", body.Details)
	}
}

func TestCreateLoanRequest_QuotaExhaustedIsConflict(t *testing.T) {
	e := newEcho()
	repos := emptyRepos()
	repos.Quotas.(*quotamock.Repo).GetOrCreateFn = func(ctx context.Context, userID string, defaultMax int) (*quota.UserQuota, error) {
		return &quota.UserQuota{UserID: userID, MaxBorrowings: 3, ActiveBorrowings: 3}, nil
	}
	h := newLoanHandler(repos)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", strings.NewReader(createBody(strings.Repeat("a", 32))))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateLoanRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body=%s", rec.Code, rec.Body.String())
	}
}

func TestGetLoanRequest_NotFound(t *testing.T) {
	e := newEcho()
	h := newLoanHandler(emptyRepos())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/loans/:request_id")
	c.SetParamNames("request_id")
	c.SetParamValues(strings.Repeat("e", 32))

	if err := h.GetLoanRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCancelLoanRequest_InvalidTransition(t *testing.T) {
	e := newEcho()
	repos := emptyRepos()
	repos.Loans.(*loanmock.Repo).GetByRequestIDForUpdateFn = func(ctx context.Context, requestID string) (*loan.LoanRequest, error) {
		return &loan.LoanRequest{ID: 42, RequestID: requestID, Status: loan.StatusReturned}, nil
	}
	h := newLoanHandler(repos)

	body := fmt.Sprintf(`{"actor_id": %q, "reason": "acara batal"}`, strings.Repeat("a", 32))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/loans/:request_id/cancel")
	c.SetParamNames("request_id")
	c.SetParamValues(strings.Repeat("9", 32))

	if err := h.CancelLoanRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body=%s", rec.Code, rec.Body.String())
	}
}
