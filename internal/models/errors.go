package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrNotFound       = errors.New("not found")
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrEventNotFound  = fmt.Errorf("event %w", ErrNotFound)
	ErrTicketNotFound = fmt.Errorf("ticket %w", ErrNotFound)

	ErrAuthentication     = errors.New("authentication credentials were not provided or are invalid")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("you do not have permission to perform this action")

	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrCapacityExceeded = errors.New("not enough tickets available")
	ErrEventHasTickets  = errors.New("event has purchased tickets and cannot be deleted")
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
