package shared

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Every caller-correctable failure maps to one of
// these sentinels; anything else is a defect and propagates unmodified.
var (
	// ErrNotFound indicates a referenced project or record is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness or booking-overlap violation.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput indicates input rejected before derivation ran.
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundf wraps ErrNotFound with a detail message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflictf wraps ErrConflict with a detail message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Invalidf wraps ErrInvalidInput with a detail message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
