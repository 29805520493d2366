/*
errors.go - Centralized error types for the tracker domain

PURPOSE:
  All domain error values in one place. Callers match with errors.Is;
  the HTTP layer uses the category helpers to pick status codes.

USAGE:
    if errors.Is(err, tracker.ErrDuplicateAttendanceDate) {
        // 409 for the client
    }

SEE ALSO:
  - store.go: The interface whose implementations return these
  - api/handlers.go: Maps categories to HTTP status codes
*/
package tracker

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRecordNotFound is returned when a referenced entry doesn't exist.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateAttendanceDate is returned when a user already has an
	// attendance entry on the given date.
	ErrDuplicateAttendanceDate = errors.New("attendance already recorded for date")

	// ErrInvalidLeave is returned when a leave entry fails validation
	// (unknown type, or permission hours out of range).
	ErrInvalidLeave = errors.New("invalid leave entry")

	// ErrStoreNotConfigured is returned when an operation runs without a
	// backing store.
	ErrStoreNotConfigured = errors.New("record store is not configured")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateAttendanceError reports which entry already covers the date.
type DuplicateAttendanceError struct {
	UserID     string
	Date       string
	ExistingID string
}

func (e *DuplicateAttendanceError) Error() string {
	return fmt.Sprintf("attendance already recorded for %s on %s (entry: %s)",
		e.UserID, e.Date, e.ExistingID)
}

func (e *DuplicateAttendanceError) Unwrap() error {
	return ErrDuplicateAttendanceDate
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateAttendanceDate) ||
		errors.Is(err, ErrInvalidLeave)
}
