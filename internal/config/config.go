package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	App    AppConfig
	Remote RemoteConfig
	Cache  CacheConfig
}

// AppConfig holds general application settings
type AppConfig struct {
	Env             string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// RemoteConfig holds remote-store connection settings. An incomplete
// endpoint/credential pair is not an error: it switches the application into
// offline mode at startup.
type RemoteConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// CacheConfig holds local fallback cache settings
type CacheConfig struct {
	Path string
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		App: AppConfig{
			Env:             getEnv("APP_ENV", "development"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Remote: RemoteConfig{
			Host:      getEnv("DB_HOST", ""),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "jimpitan"),
			Database:  getEnv("DB_DATABASE", "main"),
			User:      getEnv("DB_USER", ""),
			Password:  getEnv("DB_PASSWORD", ""),
		},
		Cache: CacheConfig{
			Path: getEnv("CACHE_PATH", "data/jimpitan.db"),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// RemoteConfigured reports whether a usable endpoint/credential pair is
// present. Decided once at startup; the mode never switches mid-session.
func (c *Config) RemoteConfigured() bool {
	r := c.Remote
	return r.Host != "" && r.User != "" && r.Password != ""
}

// Validate checks that all required configuration values are present and
// valid. It returns an error describing all validation failures, or nil if
// valid.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env != "development" && c.App.Env != "production" && c.App.Env != "test" {
		errs = append(errs, fmt.Errorf("APP_ENV must be 'development', 'production', or 'test', got '%s'", c.App.Env))
	}
	if c.Cache.Path == "" {
		errs = append(errs, errors.New("CACHE_PATH is required"))
	}

	// Remote settings are validated only when a remote is configured;
	// otherwise the application runs on the local cache alone.
	if c.RemoteConfigured() {
		if c.Remote.Port == "" {
			errs = append(errs, errors.New("DB_PORT is required"))
		}
		if c.Remote.Namespace == "" {
			errs = append(errs, errors.New("DB_NAMESPACE is required"))
		}
		if c.Remote.Database == "" {
			errs = append(errs, errors.New("DB_DATABASE is required"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
