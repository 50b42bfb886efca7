// Package domain defines the core domain models for the WasteWise client.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a client-side error with a structured error code.
// Codes use the format WW-{AREA}-{NNNN}; the numeric part mirrors the closest
// HTTP status.
type DomainError struct {
	Code    string // Error code (e.g., "WW-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrNoRefreshToken indicates a refresh was requested without a refresh token.
	ErrNoRefreshToken = NewDomainError("WW-AUTH-4010", "no refresh token available")

	// ErrSessionExpired indicates the refresh token was rejected and the
	// session has been torn down.
	ErrSessionExpired = NewDomainError("WW-AUTH-4011", "session expired")

	// ErrNotAuthenticated indicates an operation needs a logged-in session.
	ErrNotAuthenticated = NewDomainError("WW-AUTH-4012", "not authenticated")

	// ErrMalformedToken indicates a token could not be decoded.
	ErrMalformedToken = NewDomainError("WW-AUTH-4000", "malformed token")
)

// ============================================================================
// Realtime Errors (RT)
// ============================================================================

var (
	// ErrNoAccessToken indicates a realtime connect without an access token.
	ErrNoAccessToken = NewDomainError("WW-RT-4000", "no auth token available for realtime connection")

	// ErrNotConnected indicates an outbound message with no open connection.
	ErrNotConnected = NewDomainError("WW-RT-5030", "realtime channel not connected")

	// ErrReconnectExhausted indicates the reconnect budget has been spent.
	ErrReconnectExhausted = NewDomainError("WW-RT-5031", "failed to reconnect to server")

	// ErrCommandRateLimited indicates sensor commands are sent too fast.
	ErrCommandRateLimited = NewDomainError("WW-RT-4290", "sensor command rate limited")
)

// ============================================================================
// Storage Errors (STOR)
// ============================================================================

var (
	// ErrRecordNotFound indicates no persisted record exists for a key.
	ErrRecordNotFound = NewDomainError("WW-STOR-4040", "record not found")

	// ErrRecordCorrupted indicates a persisted record could not be decoded.
	ErrRecordCorrupted = NewDomainError("WW-STOR-4220", "record corrupted")

	// ErrSealFailed indicates encryption or decryption of a record failed.
	ErrSealFailed = NewDomainError("WW-STOR-5000", "record seal failed")

	// ErrPersistFailed indicates the session record could not be written.
	ErrPersistFailed = NewDomainError("WW-STOR-5001", "persisting session failed")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("WW-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("WW-ARG-1002", "missing required argument")
)
