// Package config provides application configuration management.
// Configuration is loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppHost string `env:"APP_HOST" envDefault:"127.0.0.1"`
	AppPort int    `env:"APP_PORT" envDefault:"1420"`

	// Home overrides the platform data root (config, data and cache dirs).
	Home string `env:"GITCHEST_HOME"`

	// Database: sqlite (default, file under the data dir) or postgres.
	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH"`

	// Cache (Redis). Optional; empty disables the user cache.
	RedisURL     string        `env:"REDIS_URL"`
	UserCacheTTL time.Duration `env:"USER_CACHE_TTL" envDefault:"10m"`

	// GitHub API
	GitHubToken   string        `env:"GITHUB_TOKEN"`
	GitHubAPIURL  string        `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	GitHubTimeout time.Duration `env:"GITHUB_TIMEOUT" envDefault:"15s"`

	// Base URL the API is reachable at, used for avatar URLs. Empty keeps
	// the asset:// form.
	BaseURL string `env:"BASE_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Rate limiting
	RateLimitEnabled bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst   int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// CORS configuration
	// Comma-separated list of allowed origins. The default covers the
	// desktop webview.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"tauri://localhost,http://localhost:1420"`

	// Toasts
	ToastTTL      time.Duration `env:"TOAST_TTL" envDefault:"5s"`
	ToastCapacity int           `env:"TOAST_CAPACITY" envDefault:"32"`
	EventBuffer   int           `env:"EVENT_BUFFER" envDefault:"64"`

	// Avatars
	AvatarSize int `env:"AVATAR_SIZE" envDefault:"460"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.AppHost, c.AppPort)
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks combinations env tags cannot express.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AvatarSize <= 0 {
		return fmt.Errorf("AVATAR_SIZE must be positive, got %d", c.AvatarSize)
	}
	if c.RateLimitEnabled && c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimitRPS)
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
