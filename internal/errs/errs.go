// Package errs contains sentinel and typed errors shared across layers
// so transport code can map them to responses with errors.Is/As.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested task does not exist for the caller.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed credential verification.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// ValidationError reports a caller-supplied field that violates a data
// model invariant. The store is left unchanged when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the given field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AmbiguousIDError reports a short id that matches more than one task.
// It is distinct from ErrNotFound: the caller should retry with a longer
// prefix rather than treat the task as missing.
type AmbiguousIDError struct {
	Input string
}

func (e *AmbiguousIDError) Error() string {
	return fmt.Sprintf("ambiguous task id %q: matches multiple tasks", e.Input)
}

// IsAmbiguousID reports whether err is an AmbiguousIDError.
func IsAmbiguousID(err error) bool {
	var ae *AmbiguousIDError
	return errors.As(err, &ae)
}
