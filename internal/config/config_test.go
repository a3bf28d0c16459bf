package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv unsets all LOGIPREP_ environment variables for a clean test.
// t.Setenv registers the restore before the variable is removed.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"LOGIPREP_DB_DRIVER",
		"LOGIPREP_DB",
		"LOGIPREP_DATABASE_URL",
		"LOGIPREP_DATABASE_MAX_CONNS",
		"LOGIPREP_CACHE_URL",
		"LOGIPREP_CACHE_TTL",
		"LOGIPREP_AMQP_URL",
		"LOGIPREP_AMQP_EXCHANGE",
		"LOGIPREP_AMQP_ANSWERS",
		"LOGIPREP_LOG_LEVEL",
		"LOGIPREP_LOG_FORMAT",
		"LOGIPREP_USER",
		"LOGIPREP_SEED",
		"LOGIPREP_UNLOCK_THRESHOLD",
	}
	for _, v := range envVars {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFiles()
	if err != nil {
		t.Fatalf("LoadFiles() error = %v", err)
	}

	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("Store.Driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Store.MaxConns != 10 {
		t.Errorf("Store.MaxConns = %d, want 10", cfg.Store.MaxConns)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache.TTL = %s, want 10m", cfg.Cache.TTL)
	}
	if cfg.CacheEnabled() || cfg.EventsEnabled() {
		t.Error("cache and events should be disabled by default")
	}
	if !cfg.Events.Answers {
		t.Error("Events.Answers should default to true")
	}
	if cfg.User != "local" {
		t.Errorf("User = %q, want local", cfg.User)
	}
	if cfg.UnlockThreshold != 20 {
		t.Errorf("UnlockThreshold = %d, want 20", cfg.UnlockThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOGIPREP_DB_DRIVER", "Postgres")
	t.Setenv("LOGIPREP_DATABASE_URL", "postgres://prep@localhost/prep")
	t.Setenv("LOGIPREP_CACHE_URL", "redis://localhost:6379/1")
	t.Setenv("LOGIPREP_CACHE_TTL", "90")
	t.Setenv("LOGIPREP_AMQP_ANSWERS", "false")
	t.Setenv("LOGIPREP_SEED", "42")
	t.Setenv("LOGIPREP_LOG_LEVEL", "DEBUG")

	cfg, err := LoadFiles()
	if err != nil {
		t.Fatalf("LoadFiles() error = %v", err)
	}
	if cfg.Store.Driver != DriverPostgres {
		t.Errorf("Store.Driver = %q, want postgres", cfg.Store.Driver)
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Errorf("Cache.TTL = %s, want 90s", cfg.Cache.TTL)
	}
	if cfg.Events.Answers {
		t.Error("Events.Answers should be false")
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	body := "LOGIPREP_USER=alice\nLOGIPREP_CACHE_TTL=5m\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOGIPREP_CACHE_TTL", "30s")

	cfg, err := LoadFiles(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadFiles() error = %v", err)
	}
	if cfg.User != "alice" {
		t.Errorf("User = %q, want alice", cfg.User)
	}
	// The environment wins over the file.
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %s, want 30s", cfg.Cache.TTL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mut     func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, true},
		{"postgres without url", func(c *Config) { c.Store.Driver = DriverPostgres }, true},
		{"zero conns", func(c *Config) { c.Store.MaxConns = 0 }, true},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, true},
		{"zero threshold", func(c *Config) { c.UnlockThreshold = 0 }, true},
		{"blank user", func(c *Config) { c.User = " " }, true},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := LoadFiles()
			if err != nil {
				t.Fatal(err)
			}
			tt.mut(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
