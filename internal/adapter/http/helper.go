package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"sarpras-backend/internal/domain/errs"
)

// writeDomainError maps the core's error taxonomy onto HTTP statuses:
// validation failures are 422 except the contention-style codes which are
// 409; missing entities are 404; anything else is a 500.
func writeDomainError(c echo.Context, err error) error {
	if ve, ok := errs.AsValidation(err); ok {
		code := http.StatusUnprocessableEntity
		switch ve.Code {
		case errs.CodeQuotaExhausted, errs.CodeScheduleConflict, errs.CodeDuplicateApprover, errs.CodeUnitUnavailable:
			code = http.StatusConflict
		}
		return c.JSON(code, ErrorResponse{Error: ve.Message, Code: ve.Code})
	}
	if errs.IsNotFound(err) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// ---- test helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
