// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Normalize NormalizeConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Upload    UploadConfig
	Rate      RateConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// NormalizeConfig holds settings for the normalization pass itself.
type NormalizeConfig struct {
	// Region is the ISO 3166-1 region used to parse phone numbers (default: BR)
	Region string `env:"PHONE_REGION" default:"BR" validate:"len=2,uppercase"`

	// InputPath is the CSV file read by the batch command (default: ./input.csv)
	InputPath string `env:"INPUT_PATH" default:"./input.csv" validate:"required"`

	// OutputPath is the JSON file written by the batch command (default: ./output.json)
	OutputPath string `env:"OUTPUT_PATH" default:"./output.json" validate:"required"`

	// RejectsPath optionally receives a CSV report of rejected addresses
	RejectsPath string `env:"REJECTS_PATH"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080" validate:"min=1,max=65535"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s" validate:"gte=0"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s" validate:"gte=0"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s" validate:"gt=0"`
}

// DatabaseConfig holds database connection settings.
// Persistence is enabled only when URL is set.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10" validate:"gt=0"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1" validate:"gte=0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// ConnectTimeout bounds the retrying initial connect (default: 20s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"20s" validate:"gt=0"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// UploadConfig holds settings for files submitted over HTTP.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 32MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"33554432" validate:"gt=0"`

	// MaxConcurrent is the maximum number of parallel normalizations (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4" validate:"gt=0"`

	// Backlog is how many requests may queue for a slot (default: 16)
	Backlog int `env:"UPLOAD_BACKLOG" default:"16" validate:"gte=0"`

	// MaxWaitTime is how long a queued request waits for a slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s" validate:"gt=0"`
}

// RateConfig holds per-IP rate limiting settings.
type RateConfig struct {
	// Enabled turns on rate limiting (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the per-IP budget for all routes (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100" validate:"gt=0"`
}

// SecurityConfig holds settings for the HTTP surface.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES" validate:"dive,cidr|ip"`

	// RequireAPIKey enables X-API-Key authentication on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text" validate:"oneof=text json TEXT JSON"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
