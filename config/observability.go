package config

import (
	"strings"
)

const defaultMetricsPrefix = "agenda"

// Log levels accepted by LOG_LEVEL.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Log formats accepted by LOG_FORMAT.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// ObservabilityConfig groups configuration that controls logging and metrics.
type ObservabilityConfig struct {
	Logging LoggingConfig
	Metrics ObservabilityMetricsConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Logging.Sanitize()
	c.Metrics.Sanitize()
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`

	levelSet bool
}

// Sanitize lowercases values and replaces unknown ones with defaults.
func (c *LoggingConfig) Sanitize() {
	level := strings.ToLower(strings.TrimSpace(c.Level))
	switch level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		c.Level = level
		c.levelSet = true
	case "warning":
		c.Level = LogLevelWarn
		c.levelSet = true
	default:
		c.Level = LogLevelWarn
	}

	format := strings.ToLower(strings.TrimSpace(c.Format))
	if format != LogFormatJSON {
		format = LogFormatText
	}
	c.Format = format
}

// ObservabilityMetricsConfig controls emission of metrics to StatsD.
type ObservabilityMetricsConfig struct {
	Enabled       bool              `env:"STATSD_ENABLED" envDefault:"false"`
	StatsdAddress string            `env:"STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string            `env:"STATSD_PREFIX"  envDefault:"agenda"`
	Tags          map[string]string `env:"STATSD_TAGS"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), ".")
	if c.Prefix == "" {
		c.Prefix = defaultMetricsPrefix
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}
