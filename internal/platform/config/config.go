// Copyright (c) 2026 QVSLV. All rights reserved.
// Author: dev@qvslv.org

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/qvslv/qvslv-api/internal/platform/constants"
)

// # Configuration Schema

// Config holds all runtime configuration for the QVSLV identity server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"3000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL). Required: the service must not serve
	// traffic without a working store connection.
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis). Optional: when empty, the auth audit trail is
	// disabled and the readiness probe skips the cache check.
	RedisURL string `env:"REDIS_URL"`

	// JWTSecret signs session tokens. When empty the compiled-in fallback is
	// used — preserved historical behavior, flagged loudly at startup.
	JWTSecret string `env:"JWT_SECRET"`

	// TokenTTL is the session token validity window.
	// Historical deployments used both 24h and 168h; the value is configurable.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// BcryptCost is the bcrypt work factor for new password hashes (10 or 12
	// historically; 12 is the current default).
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// RegistrationRole is the role stamped onto every freshly registered
	// account, regardless of any role value supplied by the caller.
	RegistrationRole string `env:"REGISTRATION_ROLE" envDefault:"VERIFIED"`

	// Cross-Origin Resource Sharing: comma-separated additional origins.
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// Guard against nonsensical security tunables before they reach bcrypt.
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("config: BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost)
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("config: TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	return cfg, nil
}

// SigningSecret returns the JWT signing secret, falling back to the insecure
// compiled-in default when JWT_SECRET is unset.
//
// The second return value reports whether the fallback is active so callers
// can log the condition.
func (c *Config) SigningSecret() (secret string, isFallback bool) {
	if c.JWTSecret == "" {
		return constants.FallbackJWTSecret, true
	}
	return c.JWTSecret, false
}

// baseOrigins are the QVSLV frontend origins that are always allowed.
var baseOrigins = []string{
	"https://qvslv-site.onrender.com",
	"https://qvslv-site-front.vercel.app",
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:8080",
}

// AllowedOrigins returns the CORS allow-list: the fixed frontend origins plus
// any comma-separated extras from EXTRA_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(baseOrigins)+4)
	origins = append(origins, baseOrigins...)

	for _, extra := range strings.Split(c.ExtraOrigins, ",") {
		if extra = strings.TrimSpace(extra); extra != "" {
			origins = append(origins, extra)
		}
	}

	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
