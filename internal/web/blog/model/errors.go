package model

import (
	"fmt"

	"github.com/Laisky/errors/v2"
)

var (
	// ErrInvalidCredentials indicates the login credentials are invalid.
	ErrInvalidCredentials = errors.New("Invalid email or password")
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates the entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrUnsupportedMediaType indicates a rejected upload.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrTooManyAttempts indicates the login throttle tripped.
	ErrTooManyAttempts = errors.New("Too many failed login attempts, try again later")
)

// Error is a classified error carrying a client-facing message.
type Error struct {
	Kind error
	Msg  string
}

// Error returns the client-facing message.
func (e *Error) Error() string {
	return e.Msg
}

// Unwrap exposes Kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError builds a classified error with a stack.
func NewError(kind error, format string, args ...any) error {
	return errors.WithStack(&Error{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}
