package controller

import (
	"github.com/Laisky/errors/v2"

	"github.com/Laisky/blog-api/internal/web/blog/model"
)

const loginFailedMessage = "login failed"

// maskLoginError returns a sanitized login error for client responses.
// Credential and throttle failures keep only their sentinel, anything
// else is wrapped so the cause is logged but never shown.
func maskLoginError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		return errors.WithStack(model.ErrInvalidCredentials)
	case errors.Is(err, model.ErrTooManyAttempts):
		return errors.WithStack(model.ErrTooManyAttempts)
	}

	return errors.Wrap(err, loginFailedMessage)
}
