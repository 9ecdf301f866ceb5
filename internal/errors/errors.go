package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a category of client-side failure.
type ErrorCode string

const (
	// ErrCodeTransport indicates the request never produced a usable envelope
	// (network failure, timeout, non-JSON body, undecodable data).
	ErrCodeTransport ErrorCode = "transport"
	// ErrCodeDomain indicates the backend rejected the call with its own error key.
	ErrCodeDomain ErrorCode = "domain"
	// ErrCodeValidation indicates a local check failed before any request was sent.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeStorage indicates the persisted key-value backing store failed.
	ErrCodeStorage ErrorCode = "storage"
)

// KeyInternal is the well-known error key used for every failure that was not
// reported by the backend itself.
const KeyInternal = "internal_error"

// FieldError pairs an input field with the error key describing what is wrong with it.
type FieldError struct {
	Field string `json:"field"`
	Key   string `json:"key"`
}

// AppError represents a structured client error with a code, an error key, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Key is the error key surfaced to consumers (backend key or internal_error)
	Key string
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Fields lists per-field validation failures (validation errors only)
	Fields []FieldError
}

// Error implements the error interface.
func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Key
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+"="+f.Key)
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, ", "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Transport creates a transport error carrying the internal_error key.
func Transport(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeTransport,
		Key:     KeyInternal,
		Message: "request failed",
		Cause:   cause,
	}
}

// Domain creates an error for a backend-reported error key.
// An empty key is treated as internal_error.
func Domain(key string) *AppError {
	key = strings.TrimSpace(key)
	if key == "" {
		key = KeyInternal
	}
	return &AppError{
		Code: ErrCodeDomain,
		Key:  key,
	}
}

// Validation creates a validation error from one or more field errors.
func Validation(fields ...FieldError) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Key:     "validation.failed",
		Message: "validation failed",
		Fields:  fields,
	}
}

// ValidationField creates a validation error for a single field.
func ValidationField(field, key string) *AppError {
	return Validation(FieldError{Field: field, Key: key})
}

// Storage wraps a persistence failure. The surfaced key is internal_error.
func Storage(cause error, format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeStorage,
		Key:     KeyInternal,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsTransport checks if an error is a transport error.
func IsTransport(err error) bool {
	return isCode(err, ErrCodeTransport)
}

// IsDomain checks if an error is a backend-reported error.
func IsDomain(err error) bool {
	return isCode(err, ErrCodeDomain)
}

// IsValidation checks if an error is a local validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsStorage checks if an error is a storage error.
func IsStorage(err error) bool {
	return isCode(err, ErrCodeStorage)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// KeyOf returns the error key for err. Nil yields "", and errors that are not
// AppErrors yield internal_error.
func KeyOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Key != "" {
		return appErr.Key
	}
	return KeyInternal
}

// FieldsOf returns the per-field validation failures carried by err, if any.
func FieldsOf(err error) []FieldError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
