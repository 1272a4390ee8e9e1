package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulule/limiter/v3"
)

// Config contains all runtime configuration for the dashboard.
type Config struct {
	// Core
	ListenAddr string
	APIBaseURL string
	LogLevel   string
	LogFile    string // empty: log to stdout

	// Prediction API client
	RequestTimeout     time.Duration
	HealthPollInterval time.Duration
	HealthCheckTimeout time.Duration

	// HTTP surface
	PredictRate     string // limiter formatted rate, e.g. "10-S"
	StatsCacheTTL   time.Duration
	CORSAllowOrigin string
	MetricsEnabled  bool
}

// Load parses env vars and returns a validated Config.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr: getEnvString("LISTEN_ADDR", ":8080"),
		APIBaseURL: getEnvString("API_BASE_URL", "http://localhost:8000"),
		LogLevel:   getEnvString("LOG_LEVEL", "info"),
		LogFile:    getEnvString("LOG_FILE", ""),

		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		HealthPollInterval: getEnvDuration("HEALTH_POLL_INTERVAL", 30*time.Second),
		HealthCheckTimeout: getEnvDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second),

		PredictRate:     getEnvString("PREDICT_RATE", "10-S"),
		StatsCacheTTL:   getEnvDuration("STATS_CACHE_TTL", 5*time.Second),
		CORSAllowOrigin: getEnvString("CORS_ALLOW_ORIGIN", ""),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks configuration constraints.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("LISTEN_ADDR must not be empty")
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must be http or https, got %q", c.APIBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("API_BASE_URL must include a host")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
		// ok
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %q (must be debug|info|warn|error)", c.LogLevel)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	if c.HealthPollInterval <= 0 {
		return fmt.Errorf("HEALTH_POLL_INTERVAL must be > 0")
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be > 0")
	}

	if _, err := limiter.NewRateFromFormatted(c.PredictRate); err != nil {
		return fmt.Errorf("invalid PREDICT_RATE %q: %w", c.PredictRate, err)
	}
	if c.StatsCacheTTL < 0 {
		return fmt.Errorf("STATS_CACHE_TTL must be >= 0")
	}

	return nil
}

// Helper functions for parsing environment variables

func getEnvString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}
