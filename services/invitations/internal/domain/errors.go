package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorizedAccess is the single denial for a guest link, whether the
	// token is unknown or belongs to another invitation.
	ErrUnauthorizedAccess = errors.New("invalid invitation link")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}
