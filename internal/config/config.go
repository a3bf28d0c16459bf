// Package config loads configuration from environment variables, after
// reading a .env file when one is present. All variables use the
// LOGIPREP_ prefix.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Store  StoreConfig
	Cache  CacheConfig
	Events EventsConfig
	Log    LogConfig

	// User is the id sessions and history are recorded under.
	User string

	// Seed fixes the question sampling order. Zero seeds from the clock.
	Seed int64

	// UnlockThreshold is the per-topic attempt count that unlocks the
	// priority ranking.
	UnlockThreshold int
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver      string
	Path        string // SQLite file; empty uses the default data dir
	DatabaseURL string // PostgreSQL
	MaxConns    int
}

// CacheConfig holds Redis settings. An empty URL disables the cache.
type CacheConfig struct {
	URL string
	TTL time.Duration
}

// EventsConfig holds AMQP settings. An empty URL disables publishing.
type EventsConfig struct {
	URL      string
	Exchange string
	Answers  bool // also publish every committed answer
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env from the working directory if it exists, then the
// environment. Variables already set in the environment win over the file.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit env files. Missing files are skipped.
func LoadFiles(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := &Config{
		Store: StoreConfig{
			Driver:      strings.ToLower(envStr("LOGIPREP_DB_DRIVER", DriverSQLite)),
			Path:        envStr("LOGIPREP_DB", ""),
			DatabaseURL: envStr("LOGIPREP_DATABASE_URL", ""),
			MaxConns:    envInt("LOGIPREP_DATABASE_MAX_CONNS", 10),
		},
		Cache: CacheConfig{
			URL: envStr("LOGIPREP_CACHE_URL", ""),
			TTL: envDuration("LOGIPREP_CACHE_TTL", 10*time.Minute),
		},
		Events: EventsConfig{
			URL:      envStr("LOGIPREP_AMQP_URL", ""),
			Exchange: envStr("LOGIPREP_AMQP_EXCHANGE", "logiprep.events"),
			Answers:  envBool("LOGIPREP_AMQP_ANSWERS", true),
		},
		Log: LogConfig{
			Level:  strings.ToLower(envStr("LOGIPREP_LOG_LEVEL", "warn")),
			Format: strings.ToLower(envStr("LOGIPREP_LOG_FORMAT", "text")),
		},
		User:            envStr("LOGIPREP_USER", "local"),
		Seed:            int64(envInt("LOGIPREP_SEED", 0)),
		UnlockThreshold: envInt("LOGIPREP_UNLOCK_THRESHOLD", 20),
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("LOGIPREP_DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("LOGIPREP_DB_DRIVER must be 'sqlite' or 'postgres', got %q", c.Store.Driver)
	}

	if c.Store.MaxConns < 1 {
		return fmt.Errorf("LOGIPREP_DATABASE_MAX_CONNS must be positive, got %d", c.Store.MaxConns)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("LOGIPREP_CACHE_TTL must not be negative, got %s", c.Cache.TTL)
	}
	if c.UnlockThreshold < 1 {
		return fmt.Errorf("LOGIPREP_UNLOCK_THRESHOLD must be positive, got %d", c.UnlockThreshold)
	}
	if strings.TrimSpace(c.User) == "" {
		return fmt.Errorf("LOGIPREP_USER must not be empty")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOGIPREP_LOG_LEVEL must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("LOGIPREP_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// CacheEnabled reports whether a Redis URL is configured.
func (c *Config) CacheEnabled() bool { return c.Cache.URL != "" }

// EventsEnabled reports whether an AMQP URL is configured.
func (c *Config) EventsEnabled() bool { return c.Events.URL != "" }

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

// envDuration accepts Go durations ("90s", "10m") or a bare number of
// seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
