// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads portal settings from INNER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
	"innercircle-dev-secret-change-me!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Inner Circle API
	APIBaseURL string        `env:"INNER_API_BASE_URL,required"`
	APITimeout time.Duration `env:"INNER_API_TIMEOUT" envDefault:"30s"`

	SessionSecret  string        `env:"INNER_SESSION_SECRET,required"`
	TokenTTL       time.Duration `env:"INNER_TOKEN_TTL" envDefault:"720h"`
	DBPath         string        `env:"INNER_DB_PATH" envDefault:"./data/portal.db"`
	ServerHost     string        `env:"INNER_SERVER_HOST" envDefault:"localhost"`
	ServerPort     int           `env:"INNER_SERVER_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"INNER_REQUEST_TIMEOUT" envDefault:"45s"`
	Env            string        `env:"INNER_ENV" envDefault:"development"`
	LogLevel       string        `env:"INNER_LOG_LEVEL" envDefault:"info"`

	// Emails under this domain are treated as staff by the admin guard.
	AdminEmailDomain string `env:"INNER_ADMIN_EMAIL_DOMAIN" envDefault:"paigeinnercircle.com"`

	// Catalog cache
	RedisURL     string        `env:"INNER_REDIS_URL"`
	CachePrefix  string        `env:"INNER_CACHE_PREFIX" envDefault:"innercircle:"`
	CacheTTL     time.Duration `env:"INNER_CACHE_TTL" envDefault:"300s"`
	CacheMaxSize int           `env:"INNER_CACHE_MAX_SIZE" envDefault:"1000"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// APIOrigin returns scheme://host of the API base URL.
func (c Config) APIOrigin() string {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses the process environment.
func Load() (*Config, error) {
	return LoadFrom(env.ToMap(os.Environ()))
}

// LoadFrom parses the given environment map.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("INNER_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	if !cfg.IsDevelopment() && strings.HasPrefix(cfg.APIBaseURL, "http://") {
		slog.Warn("INNER_API_BASE_URL uses plain http in production", "url", cfg.APIBaseURL)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	u, err := url.Parse(c.APIBaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("INNER_API_BASE_URL is not a valid URL: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("INNER_API_BASE_URL must use http or https, got %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, errors.New("INNER_API_BASE_URL must include a host"))
	}

	if len(c.SessionSecret) < MinSessionSecretLength {
		errs = append(errs, fmt.Errorf("INNER_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret)))
	}
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			errs = append(errs, errors.New("INNER_SESSION_SECRET is a known default value and must not be used; "+
				"generate a secure secret with: openssl rand -base64 32"))
			break
		}
	}

	if c.Env != "development" && c.Env != "production" {
		errs = append(errs, fmt.Errorf("INNER_ENV must be development or production, got %q", c.Env))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, errors.New("INNER_API_TIMEOUT must be positive"))
	}
	if c.RequestTimeout < c.APITimeout {
		errs = append(errs, fmt.Errorf("INNER_REQUEST_TIMEOUT (%s) must not be shorter than INNER_API_TIMEOUT (%s)",
			c.RequestTimeout, c.APITimeout))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("INNER_TOKEN_TTL must be positive"))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("INNER_SERVER_PORT out of range: %d", c.ServerPort))
	}
	if strings.Contains(c.AdminEmailDomain, "@") {
		errs = append(errs, errors.New("INNER_ADMIN_EMAIL_DOMAIN must be a bare domain without @"))
	}

	return errors.Join(errs...)
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
