package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			appErr:   ErrSessionNotFound,
			expected: "Session not found",
		},
		{
			name: "error with wrapped error",
			appErr: &AppError{
				Code:       "TEST_ERROR",
				Message:    "Test message",
				StatusCode: 500,
				Err:        errors.New("underlying error"),
			},
			expected: "Test message: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	appErr := &AppError{
		Code:       "TEST",
		Message:    "test",
		StatusCode: 500,
		Err:        underlying,
	}

	if got := appErr.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	if got := ErrSessionNotFound.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestAppError_WithError(t *testing.T) {
	underlying := errors.New("db connection failed")
	newErr := ErrInternal.WithError(underlying)

	if newErr.Code != ErrInternal.Code {
		t.Errorf("Code = %v, want %v", newErr.Code, ErrInternal.Code)
	}

	if newErr.StatusCode != ErrInternal.StatusCode {
		t.Errorf("StatusCode = %v, want %v", newErr.StatusCode, ErrInternal.StatusCode)
	}

	if newErr.Err != underlying {
		t.Errorf("Err = %v, want %v", newErr.Err, underlying)
	}

	if !errors.Is(newErr, underlying) {
		t.Errorf("errors.Is should return true for wrapped error")
	}
}

func TestAppError_Is(t *testing.T) {
	wrapped := fmt.Errorf("scan: %w", ErrInvalidLandmarks.WithError(errors.New("short mesh")))

	if !errors.Is(wrapped, ErrInvalidLandmarks) {
		t.Errorf("errors.Is should match a copy with the same code")
	}

	if errors.Is(wrapped, ErrInvalidImage) {
		t.Errorf("errors.Is should not match a different code")
	}
}
