// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

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
  - DI-Friendly: Passed to core components (DB, Redis, Mailer) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/accounts/pkg/slice"
)

// minTokenSecret mirrors the minimum accepted HMAC key length.
const minTokenSecret = 32

// # Configuration Schema

// Config holds all runtime configuration for the accounts API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis) for refresh sessions
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing
	TokenSecret string `env:"TOKEN_SECRET,required,unset"`
	TokenIssuer string `env:"TOKEN_ISSUER" envDefault:"accounts"`

	// Password hashing cost (bcrypt)
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// AppURL is the public base URL used in email links.
	AppURL string `env:"APP_URL" envDefault:"http://localhost:3000"`

	// Outgoing mail (SMTP)
	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD,unset"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@localhost"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// "https://a.example/, ,https://b.example" becomes two clean origins
	cfg.AllowedOrigins = slice.Filter(slice.Map(cfg.AllowedOrigins, normalizeOrigin), func(origin string) bool {
		return origin != ""
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var problems []error

	if len(c.TokenSecret) < minTokenSecret {
		problems = append(problems, fmt.Errorf("TOKEN_SECRET must be at least %d bytes", minTokenSecret))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if parsed, err := url.Parse(c.AppURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		problems = append(problems, errors.New("APP_URL must be an absolute URL"))
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		problems = append(problems, errors.New("SMTP_PORT must be a valid port"))
	}

	return errors.Join(problems...)
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsAllowedOrigin reports whether a browser origin may call the API with credentials.
func (c *Config) IsAllowedOrigin(origin string) bool {
	if strings.EqualFold(origin, normalizeOrigin(c.AppURL)) {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func normalizeOrigin(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}
