// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Translation endpoint
	APIURL     string        `env:"BHASHINI_API_URL,required"`            // Remote translation endpoint
	APITimeout time.Duration `env:"BHASHINI_API_TIMEOUT" envDefault:"30s"` // Single attempt timeout

	SessionSecret string `env:"BHASHINI_SESSION_SECRET,required"`
	ServerHost    string `env:"BHASHINI_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"BHASHINI_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"BHASHINI_ENV" envDefault:"development"`
	LogLevel      string `env:"BHASHINI_LOG_LEVEL" envDefault:"info"`
	UILanguage    string `env:"BHASHINI_UI_LANGUAGE" envDefault:"en"`

	// Rate limiting of translation submissions, per client IP
	RateLimit float64 `env:"BHASHINI_RATE_LIMIT" envDefault:"2"`
	RateBurst int     `env:"BHASHINI_RATE_BURST" envDefault:"5"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MinSessionSecretLength is the minimum required length for the session secret.
// The CSRF middleware needs a 32 byte key.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("BHASHINI_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// validate applies the rules env tags cannot express.
func (c *Config) validate() error {
	c.APIURL = strings.TrimSpace(c.APIURL)
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("BHASHINI_API_URL is invalid (%q): %w", c.APIURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BHASHINI_API_URL must be an absolute http(s) URL, got %q", c.APIURL)
	}

	if c.APITimeout < 0 {
		return fmt.Errorf("BHASHINI_API_TIMEOUT must not be negative, got %s", c.APITimeout)
	}

	// Validate session secret length
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("BHASHINI_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return fmt.Errorf("BHASHINI_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if c.RateLimit <= 0 {
		return fmt.Errorf("BHASHINI_RATE_LIMIT must be positive, got %v", c.RateLimit)
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("BHASHINI_RATE_BURST must be at least 1, got %d", c.RateBurst)
	}

	return nil
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
