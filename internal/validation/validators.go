// Package validation runs local field checks before any request reaches the network.
// Validators return error keys (not messages) so consumers can localize them.
package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/church-agenda/agenda-client/internal/errors"
)

// Error keys reported by the validators.
const (
	KeyRequired         = "validation.required"
	KeyTooLong          = "validation.too_long"
	KeyEmailInvalid     = "validation.email_invalid"
	KeyPasswordShort    = "validation.password_too_short"
	KeyPasswordLower    = "validation.password_needs_lowercase"
	KeyPasswordUpper    = "validation.password_needs_uppercase"
	KeyPasswordDigit    = "validation.password_needs_digit"
	KeyPasswordSymbol   = "validation.password_needs_symbol"
	KeyPasswordMismatch = "validation.password_mismatch"
	KeyNameShort        = "validation.name_too_short"
	KeyNameIncomplete   = "validation.name_incomplete"
	KeyNotAllowed       = "validation.not_allowed"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 12

// passwordSymbols are the symbols that satisfy the symbol rule.
const passwordSymbols = "!@#$%^&*"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator checks a value and returns the error keys it violates.
type Validator func(v string) []string

// Required rejects blank values and values longer than maxLen runes.
func Required(maxLen int) Validator {
	return func(v string) []string {
		v = strings.TrimSpace(v)
		if v == "" {
			return []string{KeyRequired}
		}
		if maxLen > 0 && utf8.RuneCountInString(v) > maxLen {
			return []string{KeyTooLong}
		}
		return nil
	}
}

// Email checks the shape name@domain.tld.
func Email() Validator {
	return func(v string) []string {
		if !emailPattern.MatchString(v) {
			return []string{KeyEmailInvalid}
		}
		return nil
	}
}

// StrongPassword reports every unmet rule: length, lowercase, uppercase, digit and symbol.
func StrongPassword() Validator {
	return func(v string) []string {
		var keys []string
		if utf8.RuneCountInString(v) < MinPasswordLength {
			keys = append(keys, KeyPasswordShort)
		}
		if !strings.ContainsFunc(v, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
			keys = append(keys, KeyPasswordLower)
		}
		if !strings.ContainsFunc(v, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
			keys = append(keys, KeyPasswordUpper)
		}
		if !strings.ContainsFunc(v, unicode.IsDigit) {
			keys = append(keys, KeyPasswordDigit)
		}
		if !strings.ContainsAny(v, passwordSymbols) {
			keys = append(keys, KeyPasswordSymbol)
		}
		return keys
	}
}

// FullName requires at least 3 characters and at least two words.
func FullName() Validator {
	return func(v string) []string {
		v = strings.TrimSpace(v)
		if utf8.RuneCountInString(v) < 3 {
			return []string{KeyNameShort}
		}
		if len(strings.Fields(v)) < 2 {
			return []string{KeyNameIncomplete}
		}
		return nil
	}
}

// Matches requires the value to equal other exactly.
func Matches(other string) Validator {
	return func(v string) []string {
		if v != other {
			return []string{KeyPasswordMismatch}
		}
		return nil
	}
}

// OneOf accepts only the listed options, compared case-insensitively.
func OneOf(options ...string) Validator {
	return func(v string) []string {
		v = strings.TrimSpace(v)
		for _, opt := range options {
			if strings.EqualFold(v, opt) {
				return nil
			}
		}
		return []string{KeyNotAllowed}
	}
}

// FieldValidator accumulates field errors across several fields.
type FieldValidator struct {
	fields []apperrors.FieldError
}

// New creates an empty FieldValidator.
func New() *FieldValidator {
	return &FieldValidator{}
}

// Validate runs validators in order and records the keys of the first one that fails.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		keys := v(value)
		if len(keys) == 0 {
			continue
		}
		for _, k := range keys {
			fv.fields = append(fv.fields, apperrors.FieldError{Field: field, Key: k})
		}
		break
	}
	return fv
}

// Fields returns the accumulated field errors.
func (fv *FieldValidator) Fields() []apperrors.FieldError {
	return fv.fields
}

// Err returns a validation AppError when any field failed, nil otherwise.
func (fv *FieldValidator) Err() error {
	if len(fv.fields) == 0 {
		return nil
	}
	return apperrors.Validation(fv.fields...)
}
