// Package common defines shared constants and sentinel errors used across
// the storage, service and transport layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrAlreadyExists  = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal         = errors.New("internal error")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrorValidation       = errors.New("validation error")

	// Credential recovery / login errors.
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired otp")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrDeliveryFailed      = errors.New("otp delivery failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError carries a message that is safe to show to the caller.
// It matches ErrorValidation under errors.Is.
type ValidationError struct {
	Msg string
}

// NewValidationError returns a *ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}
