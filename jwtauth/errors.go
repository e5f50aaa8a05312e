package jwtauth

import (
	"errors"
	"fmt"
)

// ErrorCode represents a validation error code
type ErrorCode string

const (
	ErrExpired              ErrorCode = "EXPIRED"
	ErrInvalidSignature     ErrorCode = "INVALID_SIGNATURE"
	ErrMissingToken         ErrorCode = "MISSING_TOKEN"
	ErrMalformed            ErrorCode = "MALFORMED"
	ErrNoneAlgorithm        ErrorCode = "NONE_ALGORITHM"
	ErrConfigError          ErrorCode = "CONFIG_ERROR"
	ErrUnsupportedAlgorithm ErrorCode = "UNSUPPORTED_ALGORITHM"
	ErrMissingIdentity      ErrorCode = "MISSING_IDENTITY"
	ErrReservedClaim        ErrorCode = "RESERVED_CLAIM"
	ErrForbidden            ErrorCode = "FORBIDDEN"
	ErrTokenTooLarge        ErrorCode = "TOKEN_TOO_LARGE"
)

// Client-facing bodies. They are fixed strings so nothing about the
// underlying failure leaks to the caller.
const (
	MessageMissingCredential = "401 forbidden"
	MessageInvalidCredential = "UnAuthorized"
	MessageOwnershipMismatch = "oi murgi geli??"
)

// ValidationError represents a credential error with a code and message
type ValidationError struct {
	Code     ErrorCode
	Message  string
	Internal error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *ValidationError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(code ErrorCode, message string, internal error) *ValidationError {
	return &ValidationError{
		Code:     code,
		Message:  message,
		Internal: internal,
	}
}

// CodeOf extracts the error code from err, or "UNKNOWN"
func CodeOf(err error) ErrorCode {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Code
	}
	return "UNKNOWN"
}

// IsMissingCredential reports whether err means no credential was presented
func IsMissingCredential(err error) bool {
	return CodeOf(err) == ErrMissingToken
}
