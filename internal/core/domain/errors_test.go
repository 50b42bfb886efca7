package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("WW-TEST-1000", "test message"),
			expected: "[WW-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("WW-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[WW-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("WW-TEST-1000", "message 1")
	err2 := NewDomainError("WW-TEST-1000", "message 2")
	err3 := NewDomainError("WW-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("WW-TEST-1000", "wrapper").WithCause(cause)

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := NewDomainError("WW-TEST-1000", "no cause")
	if errors.Unwrap(errNoCause) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	original := NewDomainError("WW-TEST-1000", "original message")
	withDetails := original.WithDetails("additional details")

	if original.Details != "" {
		t.Error("WithDetails should not modify original error")
	}
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "additional details")
	}
	if withDetails.Code != original.Code || withDetails.Message != original.Message {
		t.Errorf("code/message not preserved: %+v", withDetails)
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(ErrNoRefreshToken, "WW-AUTH-4010") {
		t.Error("IsDomainError should return true for matching code")
	}
	if IsDomainError(ErrNoRefreshToken, "WW-AUTH-9999") {
		t.Error("IsDomainError should return false for non-matching code")
	}
	if IsDomainError(fmt.Errorf("regular error"), "WW-AUTH-4010") {
		t.Error("IsDomainError should return false for non-DomainError")
	}
	if !IsDomainError(ErrNotConnected, "") {
		t.Error("IsDomainError with empty code should match any DomainError")
	}

	wrapped := fmt.Errorf("wrapped: %w", ErrSessionExpired)
	if !IsDomainError(wrapped, "WW-AUTH-4011") {
		t.Error("IsDomainError should work with wrapped errors")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"domain error", ErrNoAccessToken, "WW-RT-4000"},
		{"wrapped domain error", fmt.Errorf("wrapped: %w", ErrRecordNotFound), "WW-STOR-4040"},
		{"regular error", fmt.Errorf("regular error"), ""},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err  *DomainError
		code string
	}{
		{ErrMalformedToken, "WW-AUTH-4000"},
		{ErrNoRefreshToken, "WW-AUTH-4010"},
		{ErrSessionExpired, "WW-AUTH-4011"},
		{ErrNotAuthenticated, "WW-AUTH-4012"},

		{ErrNoAccessToken, "WW-RT-4000"},
		{ErrNotConnected, "WW-RT-5030"},
		{ErrReconnectExhausted, "WW-RT-5031"},
		{ErrCommandRateLimited, "WW-RT-4290"},

		{ErrRecordNotFound, "WW-STOR-4040"},
		{ErrRecordCorrupted, "WW-STOR-4220"},
		{ErrSealFailed, "WW-STOR-5000"},
		{ErrPersistFailed, "WW-STOR-5001"},

		{ErrInvalidArgument, "WW-ARG-1001"},
		{ErrMissingArgument, "WW-ARG-1002"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Error code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Error message should not be empty")
			}
		})
	}
}

func TestErrorChaining(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := ErrSealFailed.
		WithDetails("key: auth-storage").
		WithCause(cause)

	if err.Code != "WW-STOR-5000" {
		t.Errorf("Code = %q, want %q", err.Code, "WW-STOR-5000")
	}
	if err.Details != "key: auth-storage" {
		t.Errorf("Details = %q", err.Details)
	}
	if err.Cause != cause {
		t.Error("Cause should be preserved")
	}
	if !errors.Is(err, ErrSealFailed) {
		t.Error("errors.Is should work after chaining")
	}
}
