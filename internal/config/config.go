// Package config loads and validates environment-based configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

// Cache backends.
const (
	BackendFile     = "file"
	BackendSqlite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendBadger   = "badger"
	BackendMemory   = "memory"
)

// Routing providers.
const (
	ProviderGoogle = "google"
	ProviderMock   = "mock"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	Port string

	GoogleAPIKey   string
	RoutesProvider string
	RoutesQPS      float64

	CacheBackend    string
	CacheDir        string
	SqlitePath      string
	DatabaseURL     string
	RedisAddr       string
	BadgerPath      string
	CacheTTL        time.Duration
	GeocodeCacheTTL time.Duration

	CostPerElement float64
	CostThreshold  float64
	// CostMax is the hard spending limit per request for the HTTP service.
	CostMax float64

	RateLimitCooldown time.Duration
	MaxAttempts       int
	FetchConcurrency  int
}

// Load reads and validates environment variables.
// Returns a ConfigError for any invalid value.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           Get("PORT", "8080"),
		GoogleAPIKey:   strings.TrimSpace(os.Getenv("GMAPS_API_KEY")),
		RoutesProvider: strings.ToLower(Get("ROUTES_PROVIDER", ProviderGoogle)),
		CacheBackend:   strings.ToLower(Get("CACHE_BACKEND", BackendFile)),
		CacheDir:       Get("CACHE_DIR", "cache"),
		SqlitePath:     Get("SQLITE_PATH", "data/cache.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      Get("REDIS_ADDR", "localhost:6379"),
		BadgerPath:     Get("BADGER_PATH", "data/badger"),
	}

	var err error
	if cfg.RoutesQPS, err = parseFloat("ROUTES_QPS", 0); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = parseDuration("CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.GeocodeCacheTTL, err = parseDuration("GEOCODE_CACHE_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CostPerElement, err = parseFloat("COST_PER_ELEMENT", 0.005); err != nil {
		return nil, err
	}
	if cfg.CostThreshold, err = parseFloat("COST_THRESHOLD", 1.0); err != nil {
		return nil, err
	}
	if cfg.CostMax, err = parseFloat("COST_MAX", 5.0); err != nil {
		return nil, err
	}
	if cfg.RateLimitCooldown, err = parseDuration("RATE_LIMIT_COOLDOWN", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxAttempts, err = parseInt("MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.FetchConcurrency, err = parseInt("FETCH_CONCURRENCY", 4); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints on an already-constructed Config.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return &ConfigError{Field: "PORT", Message: "must be an integer between 1 and 65535"}
	}

	// GMAPS_API_KEY is checked when the provider is built: cache
	// maintenance runs without one.
	switch c.RoutesProvider {
	case ProviderGoogle, ProviderMock:
	default:
		return &ConfigError{Field: "ROUTES_PROVIDER", Message: "must be google or mock"}
	}

	switch c.CacheBackend {
	case BackendFile, BackendSqlite, BackendRedis, BackendBadger, BackendMemory:
	case BackendPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return &ConfigError{Field: "DATABASE_URL", Message: "required when CACHE_BACKEND=postgres"}
		}
	default:
		return &ConfigError{Field: "CACHE_BACKEND", Message: "must be one of file, sqlite, postgres, redis, badger, memory"}
	}

	if c.CostPerElement < 0 {
		return &ConfigError{Field: "COST_PER_ELEMENT", Message: "must not be negative"}
	}
	if c.MaxAttempts < 1 {
		return &ConfigError{Field: "MAX_ATTEMPTS", Message: "must be at least 1"}
	}
	if c.FetchConcurrency < 1 {
		return &ConfigError{Field: "FETCH_CONCURRENCY", Message: "must be at least 1"}
	}
	return nil
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// parseDuration accepts Go duration strings like "30s", "1h", "720h".
func parseDuration(key string, def time.Duration) (time.Duration, error) {
	raw := Get(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, &ConfigError{Field: key, Message: "must be a non-negative duration"}
	}
	return d, nil
}

func parseFloat(key string, def float64) (float64, error) {
	raw := Get(key, "")
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0, &ConfigError{Field: key, Message: "must be a non-negative number"}
	}
	return f, nil
}

func parseInt(key string, def int) (int, error) {
	raw := Get(key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be a valid integer"}
	}
	return n, nil
}
