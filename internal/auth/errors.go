// Package auth covers login, token issuing and password resets.
package auth

import "errors"

var (
	// ErrMissingCredentials is returned when identifier or password is absent.
	ErrMissingCredentials = errors.New("identifier and password are required")

	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserRequired is returned when a reset request lacks user_id.
	ErrUserRequired = errors.New("user_id is required")

	// ErrTokenNotFound is returned when no matching reset token exists.
	ErrTokenNotFound = errors.New("reset token not found")

	// ErrTokenExpired is returned when the reset token is past its expiry.
	ErrTokenExpired = errors.New("reset token expired")

	// ErrResetFieldsRequired is returned when token or new_password is absent.
	ErrResetFieldsRequired = errors.New("token and new_password are required")
)
