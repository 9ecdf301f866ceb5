// Package locale defines the supported interface languages.
package locale

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported BCP 47 tag in its persisted string form.
type Locale string

const (
	PortugueseBrazil Locale = "pt-BR"
	English          Locale = "en"
	Spanish          Locale = "es"
)

// Default is used when nothing valid has been chosen.
const Default = PortugueseBrazil

// Supported lists the locales in matcher preference order.
func Supported() []Locale {
	return []Locale{PortugueseBrazil, English, Spanish}
}

var (
	supportedTags = []language.Tag{language.BrazilianPortuguese, language.English, language.Spanish}
	matcher       = language.NewMatcher(supportedTags)
)

// ErrUnsupported is returned when input cannot be matched to a supported locale.
var ErrUnsupported = errors.New("unsupported locale")

// Parse matches free-form input ("pt", "en-US", "es-419", "pt-BR") to a supported locale.
func Parse(s string) (Locale, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrUnsupported
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", ErrUnsupported
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return "", ErrUnsupported
	}
	return Supported()[idx], nil
}

// IsSupported reports whether s is exactly one of the persisted locale strings.
func IsSupported(s string) bool {
	for _, l := range Supported() {
		if string(l) == s {
			return true
		}
	}
	return false
}
