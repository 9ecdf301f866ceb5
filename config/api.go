package config

import (
	"strings"
	"time"
)

const (
	minAPITimeout = time.Second
	maxAPITimeout = 2 * time.Minute
)

// APIConfig points the client at the agenda backend.
type APIConfig struct {
	// BaseURL is the backend origin, optionally with a path prefix.
	BaseURL string `env:"AGENDA_API_BASE_URL" envDefault:"http://localhost:8000"`

	// Timeout bounds each request end to end. Clamped to 1s..2m.
	Timeout time.Duration `env:"AGENDA_API_TIMEOUT" envDefault:"15s"`

	UserAgent string `env:"AGENDA_API_USER_AGENT" envDefault:"agenda-client"`
}

// Sanitize applies guardrails to API configuration values.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8000"
	}

	switch {
	case c.Timeout <= 0:
		c.Timeout = 15 * time.Second
	case c.Timeout < minAPITimeout:
		c.Timeout = minAPITimeout
	case c.Timeout > maxAPITimeout:
		c.Timeout = maxAPITimeout
	}

	c.UserAgent = strings.TrimSpace(c.UserAgent)
}
