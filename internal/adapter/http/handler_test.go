package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"sarpras-backend/internal/domain/errs"
)

func TestHealth_ReturnsOKWithRFC3339NanoUTC(t *testing.T) {
	e := echo.New()
	h := NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	start := time.Now().UTC()

	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	ct := rec.Header().Get(echo.HeaderContentType)
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var body struct {
		Status string `json:"status"`
		Time   string `json:"time"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v; raw=%s", err, rec.Body.String())
	}
	if body.Status != "ok" {
		t.Fatalf(`expected status "ok", got %q`, body.Status)
	}
	parsed, err := time.Parse(time.RFC3339Nano, body.Time)
	if err != nil {
		t.Fatalf("time not RFC3339Nano: %v (value=%q)", err, body.Time)
	}
	now := time.Now().UTC()
	if parsed.Before(start.Add(-2*time.Second)) || parsed.After(now.Add(2*time.Second)) {
		t.Fatalf("time not within expected window: parsed=%v start=%v now=%v", parsed, start, now)
	}
}

func TestWriteDomainError_StatusMapping(t *testing.T) {
	e := echo.New()

	cases := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"quota exhausted is a conflict", errs.Validation(errs.CodeQuotaExhausted, "full"), http.StatusConflict, errs.CodeQuotaExhausted},
		{"schedule conflict is a conflict", errs.Validation(errs.CodeScheduleConflict, "busy"), http.StatusConflict, errs.CodeScheduleConflict},
		{"duplicate approver is a conflict", errs.Validation(errs.CodeDuplicateApprover, "dup"), http.StatusConflict, errs.CodeDuplicateApprover},
		{"unit unavailable is a conflict", errs.Validation(errs.CodeUnitUnavailable, "taken"), http.StatusConflict, errs.CodeUnitUnavailable},
		{"invalid transition is unprocessable", errs.Validation(errs.CodeInvalidTransition, "frozen"), http.StatusUnprocessableEntity, errs.CodeInvalidTransition},
		{"expired is unprocessable", errs.Validation(errs.CodeExpired, "late"), http.StatusUnprocessableEntity, errs.CodeExpired},
		{"not found maps to 404", errs.ErrNotFound, http.StatusNotFound, ""},
		{"wrapped not found maps to 404", errors.New("x: " + errs.ErrNotFound.Error()), http.StatusInternalServerError, ""}, // only errors.Is counts
		{"unknown maps to 500", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := writeDomainError(c, tc.err); err != nil {
				t.Fatalf("writeDomainError: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if tc.code != "" {
				var body ErrorResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("invalid JSON: %v", err)
				}
				if body.Code != tc.code {
					t.Fatalf("code = %q, want %q", body.Code, tc.code)
				}
			}
		})
	}
}
