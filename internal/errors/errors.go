// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. Use cases and programs return these (or errors
// wrapping them) and handlers map them to status codes and exit messages.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors shared by every module.
var (
	// ErrNotFound indicates the requested account or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the target address is already occupied or locked.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates malformed input or an account that failed validation
	// (wrong derived address, wrong owner, wrong collaborator identity).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates a missing or mismatched signature.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the operation is disabled by policy for this mint.
	ErrForbidden = errors.New("forbidden")

	// ErrRejected indicates an external decision program denied the operation.
	ErrRejected = errors.New("rejected")

	// ErrInsufficientResources indicates missing context accounts or deposit funds.
	ErrInsufficientResources = errors.New("insufficient resources")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
