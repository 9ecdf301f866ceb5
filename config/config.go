package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: backend base URL and request timeout
//   - storage.go: persisted key-value backend (file, redis, memory)
//   - session.go: session role policy
//   - observability.go: logging and metrics
type AppConfig struct {
	// IsDev enables verbose defaults for local work.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	API           APIConfig
	Storage       StorageConfig
	Session       SessionConfig
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.API.Sanitize()
	c.Storage.Sanitize()
	c.Session.Sanitize()
	c.Observability.Sanitize()

	if c.IsDev && !c.Observability.Logging.levelSet {
		c.Observability.Logging.Level = LogLevelDebug
	}
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
