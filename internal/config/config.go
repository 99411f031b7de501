// Package config provides centralized configuration management for the site
// server and the sync tool. It loads configuration from environment variables
// with sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds the site server configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Carousel CarouselConfig
	Session  SessionConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// CatalogConfig says where the catalog document and translations come from.
// A URL, when set, takes precedence over the local path.
type CatalogConfig struct {
	// Path is the catalog document written by the sync tool (default: config/projects.json)
	Path string `env:"CATALOG_PATH" default:"config/projects.json"`

	// URL is the base URL of a remote catalog; projects.json is fetched from it
	URL string `env:"CATALOG_URL"`

	// I18nDir holds <lang>.json translation tables (default: i18n)
	I18nDir string `env:"I18N_DIR" default:"i18n"`

	// I18nURL is the base URL of remote translation tables
	I18nURL string `env:"I18N_URL"`

	// FetchTimeout bounds each remote fetch at startup (default: 10s)
	FetchTimeout time.Duration `env:"CATALOG_FETCH_TIMEOUT" default:"10s"`

	// Watch reloads the local catalog when the file changes (default: true)
	Watch bool `env:"CATALOG_WATCH" default:"true"`

	// StaticSections are the editorial sections shown in the menu (default: about,contact)
	StaticSections []string `env:"STATIC_SECTIONS" default:"about,contact"`
}

// CarouselConfig holds autoplay settings.
type CarouselConfig struct {
	// Interval is the autoplay period (default: 5s)
	Interval time.Duration `env:"CAROUSEL_INTERVAL" default:"5s"`
}

// SessionConfig holds visitor session settings.
type SessionConfig struct {
	// IdleTimeout expires sessions without requests (default: 30m)
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"30m"`

	// MaxSessions caps live sessions; the oldest idle one is evicted (default: 10000)
	MaxSessions int `env:"SESSION_MAX" default:"10000"`

	// CookieName is the session cookie (default: pf_session)
	CookieName string `env:"SESSION_COOKIE" default:"pf_session"`

	// SecureCookie sets the Secure flag on the session cookie (default: false)
	SecureCookie bool `env:"SESSION_SECURE_COOKIE" default:"false"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// APILimit is requests per minute for /api endpoints (default: 60)
	APILimit int `env:"RATE_LIMIT_API" default:"60"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// SyncConfig holds the sync tool configuration. The tool takes no flags;
// paths can only be moved through the environment.
type SyncConfig struct {
	// CSVPath is the editor spreadsheet export (default: config/projects.csv)
	CSVPath string `env:"SYNC_CSV_PATH" default:"config/projects.csv"`

	// JSONPath is the catalog document to regenerate (default: config/projects.json)
	JSONPath string `env:"SYNC_JSON_PATH" envAlt:"CATALOG_PATH" default:"config/projects.json"`

	// Delimiter separates CSV fields (default: ;)
	Delimiter string `env:"SYNC_CSV_DELIMITER" default:";"`

	Logging LoggingConfig
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Remote reports whether the catalog is fetched over HTTP.
func (c *CatalogConfig) Remote() bool {
	return c.URL != ""
}

// DelimiterRune returns the delimiter as a rune.
func (c *SyncConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ';'
}
