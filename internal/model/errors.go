package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrMovieAlreadyExists = errors.New("movie already exists")
	ErrNoActorMatch       = fmt.Errorf("no actors found: %w", ErrNotFound)
)

// ValidationError is returned when a request carries missing or ill-typed fields
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// IsValidationError returns true if err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
