package errs

import (
	"errors"
	"fmt"
)

// ErrNotFound covers every "referenced entity does not exist" failure.
// Callers wrap it with context via fmt.Errorf("...: %w", ErrNotFound).
var ErrNotFound = errors.New("not found")

// Machine-readable reason codes surfaced to the HTTP layer.
const (
	CodeQuotaExhausted      = "quota_exhausted"
	CodeScheduleConflict    = "schedule_conflict"
	CodeInvalidTransition   = "invalid_state_transition"
	CodeExceedsMaxExtension = "exceeds_max_extension"
	CodeExpired             = "expired"
	CodeNotConvertible      = "not_convertible"
	CodeDuplicateApprover   = "duplicate_approver"
	CodeUnitUnavailable     = "unit_unavailable"
	CodeInvalidInput        = "invalid_input"
)

// ValidationError is a recoverable business-rule violation. The boundary
// maps Code to a user-facing message; nothing in the core is fatal.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func Validation(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
