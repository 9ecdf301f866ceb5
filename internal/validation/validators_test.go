package validation

import (
	"testing"

	apperrors "github.com/church-agenda/agenda-client/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name   string
		maxLen int
		value  string
		want   []string
	}{
		{name: "valid input", maxLen: 10, value: "valid"},
		{name: "empty string", maxLen: 10, value: "", want: []string{KeyRequired}},
		{name: "whitespace only", maxLen: 10, value: "   ", want: []string{KeyRequired}},
		{name: "exceeds max length", maxLen: 5, value: "toolong", want: []string{KeyTooLong}},
		{name: "unicode counted by rune", maxLen: 5, value: "ãéíõú"},
		{name: "no limit", maxLen: 0, value: "anything at all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Required(tt.maxLen)(tt.value))
		})
	}
}

func TestEmail(t *testing.T) {
	valid := []string{"a@b.com", "ana.silva@igreja.org.br", "x+y@d.co"}
	invalid := []string{"", "a@b", "a b@c.com", "@b.com", "a@.com ", "ab.com"}

	for _, v := range valid {
		assert.Nil(t, Email()(v), v)
	}
	for _, v := range invalid {
		assert.Equal(t, []string{KeyEmailInvalid}, Email()(v), v)
	}
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{name: "strong", value: "Aa1!aaaaaaaa"},
		{name: "short", value: "Aa1!aaa", want: []string{KeyPasswordShort}},
		{name: "no symbol", value: "Aa1aaaaaaaaa", want: []string{KeyPasswordSymbol}},
		{name: "symbol outside the set", value: "Aa1?aaaaaaaa", want: []string{KeyPasswordSymbol}},
		{
			name:  "empty",
			value: "",
			want: []string{
				KeyPasswordShort, KeyPasswordLower, KeyPasswordUpper, KeyPasswordDigit, KeyPasswordSymbol,
			},
		},
		{
			name:  "lowercase only",
			value: "abcdefghijklmnop",
			want:  []string{KeyPasswordUpper, KeyPasswordDigit, KeyPasswordSymbol},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrongPassword()(tt.value))
		})
	}
}

func TestFullName(t *testing.T) {
	assert.Nil(t, FullName()("Ana Silva"))
	assert.Nil(t, FullName()("  João  da Costa "))
	assert.Equal(t, []string{KeyNameShort}, FullName()("Al"))
	assert.Equal(t, []string{KeyNameShort}, FullName()("  "))
	assert.Equal(t, []string{KeyNameIncomplete}, FullName()("Ana"))
}

func TestMatchesAndOneOf(t *testing.T) {
	assert.Nil(t, Matches("Secret123!abc")("Secret123!abc"))
	assert.Equal(t, []string{KeyPasswordMismatch}, Matches("a")("b"))

	assert.Nil(t, OneOf("going", "maybe", "not_going")(" GOING "))
	assert.Equal(t, []string{KeyNotAllowed}, OneOf("going")("later"))
}

func TestFieldValidator(t *testing.T) {
	fv := New().
		Validate("email", "", Required(0), Email()).
		Validate("full_name", "Ana Silva", Required(0), FullName()).
		Validate("password", "short", Required(0), StrongPassword())

	err := fv.Err()
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	fields := apperrors.FieldsOf(err)
	assert.Equal(t, apperrors.FieldError{Field: "email", Key: KeyRequired}, fields[0])
	for _, f := range fields[1:] {
		assert.Equal(t, "password", f.Field)
	}
	assert.Contains(t, fields, apperrors.FieldError{Field: "password", Key: KeyPasswordUpper})

	require.NoError(t, New().Validate("email", "a@b.com", Email()).Err())
}
