// Package config provides centralized configuration management for the dashboard.
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
	Server    ServerConfig
	Database  DatabaseConfig
	Upload    UploadConfig
	Session   SessionConfig
	Render    RenderConfig
	Dashboard DashboardConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds the optional upload-history database settings.
// History recording is disabled when URL is empty.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether upload history should be recorded.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// UploadConfig holds CSV upload processing settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 50MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`

	// MaxRows caps the number of data rows parsed from a file (default: 500000)
	MaxRows int `env:"UPLOAD_MAX_ROWS" default:"500000"`

	// MaxConcurrent is the maximum number of uploads parsed in parallel (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a parse slot (default: 15s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"15s"`

	// PreviewRows is the number of rows shown in the data preview (default: 5)
	PreviewRows int `env:"UPLOAD_PREVIEW_ROWS" default:"5"`
}

// SessionConfig holds per-browser dataset storage settings.
type SessionConfig struct {
	// CookieName is the name of the session cookie (default: vizboard_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"vizboard_session"`

	// TTL is how long an uploaded dataset is kept after the last access (default: 2h)
	TTL time.Duration `env:"SESSION_TTL" default:"2h"`

	// SweepInterval is how often expired in-memory sessions are removed (default: 5m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"5m"`

	// CacheSize is the number of parsed datasets kept in process (default: 32)
	CacheSize int `env:"SESSION_CACHE_SIZE" default:"32"`

	// RedisURL switches session storage to Redis when set (e.g. redis://localhost:6379/0)
	RedisURL string `env:"REDIS_URL"`

	// RedisPrefix namespaces session keys in Redis (default: vizboard:session:)
	RedisPrefix string `env:"REDIS_KEY_PREFIX" default:"vizboard:session:"`
}

// RenderConfig holds chart rendering settings.
type RenderConfig struct {
	// Width is the chart width in pixels (default: 720)
	Width int `env:"RENDER_WIDTH" default:"720"`

	// Height is the chart height in pixels (default: 420)
	Height int `env:"RENDER_HEIGHT" default:"420"`

	// Workers bounds the number of charts rendered concurrently (default: 4)
	Workers int `env:"RENDER_WORKERS" default:"4"`

	// MaxCategories caps the categories drawn by bar, pie, treemap and network charts (default: 40)
	MaxCategories int `env:"RENDER_MAX_CATEGORIES" default:"40"`

	// MaxPoints caps the points drawn by line, area and scatter charts (default: 20000)
	MaxPoints int `env:"RENDER_MAX_POINTS" default:"20000"`

	// NetworkIterations is the number of force-directed layout updates (default: 60)
	NetworkIterations int `env:"RENDER_NETWORK_ITERATIONS" default:"60"`

	// Timeout bounds rendering of a whole dashboard (default: 30s)
	Timeout time.Duration `env:"RENDER_TIMEOUT" default:"30s"`
}

// DashboardConfig selects which chart battery is served.
type DashboardConfig struct {
	// Variant is "full" (every chart) or "simple" (the reduced battery) (default: full)
	Variant string `env:"DASHBOARD_VARIANT" default:"full"`

	// Title is shown in the sidebar header
	Title string `env:"DASHBOARD_TITLE" default:"Visualization Dashboard"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// UploadLimit is requests per minute for upload endpoints (default: 20)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects /api routes with the X-API-Key header (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`

	// SecureCookies marks the session cookie Secure (default: false)
	SecureCookies bool `env:"SECURE_COOKIES" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
