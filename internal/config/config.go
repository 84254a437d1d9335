package config

import (
	"time"

	"github.com/lughati/lughati/internal/textgen"
)

// Config represents the complete application configuration: code defaults,
// then an optional YAML file, then LUGHATI_* environment overrides.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Gate     GateConfig     `mapstructure:"gate"`
	Generate textgen.Config `mapstructure:"generate"`
	Store    StoreConfig    `mapstructure:"store"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// TrustForwardedFor controls whether the client identifier may come
	// from the X-Forwarded-For header. On by default since the hosted
	// deployment sits behind a reverse proxy.
	TrustForwardedFor bool `mapstructure:"trust_forwarded_for"`
}

// GateConfig contains the abuse-control thresholds.
type GateConfig struct {
	MaxTextLength  int           `mapstructure:"max_text_length"`
	MaxRequests    int           `mapstructure:"max_requests"`
	Window         time.Duration `mapstructure:"window"`
	MinInterval    time.Duration `mapstructure:"min_interval"`
	DailyFreeLimit int           `mapstructure:"daily_free_limit"`
}

// StoreConfig contains the usage-ledger database configuration.
type StoreConfig struct {
	// Enabled toggles the libsql usage ledger. The gate itself is always
	// in-memory; the ledger only records decisions for inspection.
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level.
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format).
	// Metrics are also proxied at /metrics on the main HTTP port.
	Port int `mapstructure:"port"`
}
