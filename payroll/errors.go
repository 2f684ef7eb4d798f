/*
errors.go - Error types for the payroll engine

ERROR CATEGORIES:
  1. Validation errors - Bad input, raised before any write
  2. Not-found errors  - Unknown report, advance or bonus id
  3. State errors      - Lifecycle transition refused (strict mode only)

Everything else (storage failures) is returned wrapped but otherwise
unchanged. The engine never retries.

USAGE:
  if errors.Is(err, payroll.ErrNotFound) { ... }

  var verr *payroll.ValidationError
  if errors.As(err, &verr) {
      fmt.Println(verr.Field)
  }
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrValidation = errors.New("validation failed")

	ErrNotFound = errors.New("not found")

	// ErrInvalidState is only produced when the lifecycle is strict.
	ErrInvalidState = errors.New("invalid report state")

	// ErrDuplicateReport is returned by stores when a second report for the
	// same employee/month is inserted.
	ErrDuplicateReport = errors.New("report already exists for employee and period")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type NotFoundError struct {
	Kind string // "report", "advance", "bonus"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type StateError struct {
	ReportID string
	Status   Status
	Action   string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s report %s in status %s", e.Action, e.ReportID, e.Status)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true for refused lifecycle transitions and duplicate reports.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrDuplicateReport)
}
