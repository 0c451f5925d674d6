package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard session core
var (
	// Refresh errors
	ErrNoRefreshToken           = errors.New("no refresh token available")
	ErrRefreshRequestFailed     = errors.New("refresh request failed")
	ErrMalformedRefreshResponse = errors.New("no access token received from server")

	// Login errors
	ErrIncompleteCredentials = errors.New("incomplete credentials")

	// Credential store errors
	ErrCredentialStore = errors.New("credential store error")
	ErrInvalidKey      = errors.New("invalid credentials key")

	// API errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
