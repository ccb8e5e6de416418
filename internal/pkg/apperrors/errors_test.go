package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "With Code",
			appError: &AppError{
				Code:    "TEST_CODE",
				Message: "This is a test error",
			},
			expected: "[TEST_CODE] This is a test error",
		},
		{
			name: "Without Code",
			appError: &AppError{
				Message: "This is a test error without code",
			},
			expected: "This is a test error without code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Validation", NewValidationError(FieldViolation{Field: "email", Message: "is required"}), "VALIDATION_ERROR"},
		{"Invalid Argument", fmt.Errorf("%w: bad input", ErrInvalidArgument), "VALIDATION_ERROR"},
		{"Not Found", fmt.Errorf("%w: customer missing", ErrNotFound), "NOT_FOUND"},
		{"Conflict", fmt.Errorf("%w: email taken", ErrConflict), "CONFLICT"},
		{"Unauthorized", ErrUnauthorized, "UNAUTHORIZED"},
		{"Database", fmt.Errorf("%w: connection reset", ErrDatabase), "INTERNAL_ERROR"},
		{"Unknown", errors.New("something odd"), "INTERNAL_ERROR"},
		{"Nil", nil, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Run("joins violations into one message", func(t *testing.T) {
		err := NewValidationError(
			FieldViolation{Field: "first_name", Message: "is required"},
			FieldViolation{Field: "email", Message: "must be a valid email address"},
		)

		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected error to wrap ErrValidation")
		}

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected *ValidationError in chain")
		}
		if len(vErr.Violations) != 2 {
			t.Fatalf("expected 2 violations, got %d", len(vErr.Violations))
		}

		expected := "first_name: is required, email: must be a valid email address"
		if vErr.Error() != expected {
			t.Errorf("expected %q, got %q", expected, vErr.Error())
		}
	})

	t.Run("empty violations falls back to generic message", func(t *testing.T) {
		vErr := &ValidationError{}
		if vErr.Error() != "validation failed" {
			t.Errorf("unexpected message: %q", vErr.Error())
		}
	})
}

func TestWrapDatabaseError(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapDatabaseError(cause, "query customers failed")

	if !errors.Is(err, ErrDatabase) {
		t.Errorf("expected error to wrap ErrDatabase")
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected error to wrap the original cause")
	}
	if Code(err) != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR code, got %q", Code(err))
	}
}
