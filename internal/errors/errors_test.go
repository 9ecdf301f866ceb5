package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "domain error falls back to key",
			err:  Domain("auth.invalid_credentials"),
			want: "auth.invalid_credentials",
		},
		{
			name: "transport error with cause",
			err:  Transport(errors.New("connection refused")),
			want: "request failed: connection refused",
		},
		{
			name: "validation error lists fields",
			err: Validation(
				FieldError{Field: "email", Key: "validation.email_invalid"},
				FieldError{Field: "password", Key: "validation.password_too_short"},
			),
			want: "validation failed (email=validation.email_invalid, password=validation.password_too_short)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Storage(cause, "persist %s", "auth_token")

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
	if err.Key != KeyInternal {
		t.Errorf("Storage().Key = %v, want %v", err.Key, KeyInternal)
	}
}

func TestDomain_EmptyKey(t *testing.T) {
	err := Domain("  ")
	if err.Key != KeyInternal {
		t.Errorf("Domain(\"\").Key = %v, want %v", err.Key, KeyInternal)
	}
}

func TestPredicates(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", Domain("auth.forbidden"))

	if !IsDomain(wrapped) {
		t.Error("IsDomain() = false for wrapped domain error")
	}
	if IsTransport(wrapped) || IsValidation(wrapped) || IsStorage(wrapped) {
		t.Error("unexpected predicate match for domain error")
	}
	if GetCode(wrapped) != ErrCodeDomain {
		t.Errorf("GetCode() = %v, want %v", GetCode(wrapped), ErrCodeDomain)
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode() should be empty for non-AppError")
	}
}

func TestKeyOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("boom"), want: KeyInternal},
		{name: "domain", err: Domain("event.not_found"), want: "event.not_found"},
		{name: "wrapped transport", err: fmt.Errorf("x: %w", Transport(nil)), want: KeyInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyOf(tt.err); got != tt.want {
				t.Errorf("KeyOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFieldsOf(t *testing.T) {
	err := ValidationField("email", "validation.email_required")
	fields := FieldsOf(fmt.Errorf("register: %w", err))
	if len(fields) != 1 || fields[0].Field != "email" {
		t.Fatalf("FieldsOf() = %+v", fields)
	}
	if FieldsOf(errors.New("plain")) != nil {
		t.Fatal("FieldsOf() should be nil for non-AppError")
	}
}
