package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session gateway
var (
	// Session errors
	ErrRefreshDenied   = errors.New("refresh denied")
	ErrInvalidResponse = errors.New("invalid response from api")

	// Upstream errors
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrLoginFailed         = errors.New("login failed")
	ErrSignupFailed        = errors.New("signup failed")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidToken   = errors.New("invalid token")
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
