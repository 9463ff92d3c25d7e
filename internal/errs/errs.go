// Package errs defines the error taxonomy shared by the domain components.
// The API layer maps these onto the numbered response codes.
package errs

import (
	"errors" // Sentinel errors
	"fmt"    // Error formatting
)

var (
	// ErrInvalidFormData marks any client-correctable validation failure
	ErrInvalidFormData = errors.New("invalid form data")
	// ErrMissingData marks a required identifier or field that was absent
	ErrMissingData = errors.New("missing data")
	// ErrItemExists marks a unique-key violation
	ErrItemExists = errors.New("item exists")
	// ErrDatabase marks a store operation that failed or returned an
	// unexpected shape
	ErrDatabase = errors.New("database error")
	// ErrBudgetDoesNotExist marks a budget request for a name with no template
	ErrBudgetDoesNotExist = errors.New("budget does not exist")
)

// Invalidf wraps ErrInvalidFormData with context about the offending field
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFormData, fmt.Sprintf(format, args...))
}

// Databasef wraps ErrDatabase with context about the failed operation
func Databasef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDatabase, fmt.Sprintf(format, args...))
}

// PartialFailureError reports that a multi-step ledger sequence failed and
// its compensation could not fully restore the prior state. Balances may be
// skewed from the ledger; this is surfaced, never hidden.
type PartialFailureError struct {
	Step         string // Name of the step whose compensation failed
	Cause        error  // The failure that triggered compensation
	Compensation error  // The compensation failure itself
}

// Error describes both the original failure and the failed undo
func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("partial failure at step %q: %v (compensation failed: %v)", e.Step, e.Cause, e.Compensation)
}

// Unwrap exposes the original cause so errors.Is sees ErrDatabase
func (e *PartialFailureError) Unwrap() error {
	return e.Cause
}
