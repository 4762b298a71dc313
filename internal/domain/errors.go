package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")

	// Registry errors
	ErrTargetNotFound = fmt.Errorf("storage target %w", ErrNotFound)
	ErrDuplicateID    = fmt.Errorf("storage target id %w", ErrAlreadyExists)
	ErrMissingID      = fmt.Errorf("%w: id is required", ErrInvalidInput)

	// Allocation errors
	ErrUnknownCategory = fmt.Errorf("%w: unknown upload category", ErrInvalidInput)
)

// ValidationError reports one rejected field of an administrative request.
type ValidationError struct {
	Field  string
	Reason string
}

// Error returns the error message
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Unwrap makes every ValidationError match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation returns true if err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
