package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Lookup reads one variable. os.LookupEnv is the production implementation;
// tests pass a map.
type Lookup func(key string) (string, bool)

// Load reads the server configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with an explicit variable source.
func LoadFrom(lookup Lookup) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadSync reads the sync tool configuration from environment variables.
func LoadSync() (*SyncConfig, error) {
	return LoadSyncFrom(os.LookupEnv)
}

// LoadSyncFrom is LoadSync with an explicit variable source.
func LoadSyncFrom(lookup Lookup) (*SyncConfig, error) {
	cfg := &SyncConfig{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// MapLookup adapts a map to Lookup.
func MapLookup(m map[string]string) Lookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value, lookup Lookup) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal, lookup); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value, _ := lookup(envName)
		if value == "" && envAlt != "" {
			value, _ = lookup(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		// Split comma-separated values, trim whitespace
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Catalog validation
	if c.Catalog.Path == "" && c.Catalog.URL == "" {
		errs = append(errs, "one of CATALOG_PATH or CATALOG_URL is required")
	}
	if c.Catalog.URL != "" && !isHTTPURL(c.Catalog.URL) {
		errs = append(errs, fmt.Sprintf("CATALOG_URL (%q) must be an http or https URL", c.Catalog.URL))
	}
	if c.Catalog.I18nURL != "" && !isHTTPURL(c.Catalog.I18nURL) {
		errs = append(errs, fmt.Sprintf("I18N_URL (%q) must be an http or https URL", c.Catalog.I18nURL))
	}
	if c.Catalog.FetchTimeout <= 0 {
		errs = append(errs, "CATALOG_FETCH_TIMEOUT must be positive")
	}
	for _, name := range c.Catalog.StaticSections {
		if reserved[name] {
			errs = append(errs, fmt.Sprintf("STATIC_SECTIONS entry %q clashes with a built-in view", name))
		}
	}

	// Carousel validation
	if c.Carousel.Interval < 500*time.Millisecond {
		errs = append(errs, "CAROUSEL_INTERVAL must be at least 500ms")
	}

	// Session validation
	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, "SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.Session.MaxSessions <= 0 {
		errs = append(errs, "SESSION_MAX must be positive")
	}
	if c.Session.CookieName == "" {
		errs = append(errs, "SESSION_COOKIE must not be empty")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.APILimit <= 0 {
		errs = append(errs, "RATE_LIMIT_API must be positive when rate limiting is enabled")
	}

	errs = append(errs, c.Logging.validate()...)

	return joinErrors(errs)
}

// Validate checks the sync configuration.
func (c *SyncConfig) Validate() error {
	var errs []string

	if c.CSVPath == "" {
		errs = append(errs, "SYNC_CSV_PATH must not be empty")
	}
	if c.JSONPath == "" {
		errs = append(errs, "SYNC_JSON_PATH must not be empty")
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		errs = append(errs, fmt.Sprintf("SYNC_CSV_DELIMITER (%q) must be a single character", c.Delimiter))
	} else if strings.ContainsAny(c.Delimiter, "\"\r\n") {
		errs = append(errs, "SYNC_CSV_DELIMITER must not be a quote or line break")
	}

	errs = append(errs, c.Logging.validate()...)

	return joinErrors(errs)
}

var reserved = map[string]bool{
	"portfolio": true, "all-projects": true, "project-detail": true,
	"projects": true, "category": true, "carousel": true, "back": true,
}

func (l LoggingConfig) validate() []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(l.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", l.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(l.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", l.Format))
	}
	return errs
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func joinErrors(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a compact representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Addr: %q}, ", c.Server.Addr()))
	if c.Catalog.Remote() {
		b.WriteString(fmt.Sprintf("Catalog: {URL: %q, Watch: false}, ", c.Catalog.URL))
	} else {
		b.WriteString(fmt.Sprintf("Catalog: {Path: %q, Watch: %v}, ", c.Catalog.Path, c.Catalog.Watch))
	}
	b.WriteString(fmt.Sprintf("Carousel: {Interval: %s}, ", c.Carousel.Interval))
	b.WriteString(fmt.Sprintf("Session: {IdleTimeout: %s, Max: %d}, ",
		c.Session.IdleTimeout, c.Session.MaxSessions))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
