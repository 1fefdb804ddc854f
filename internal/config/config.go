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

// Config holds the panel configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"PANEL_DB_PATH" envDefault:"./data/panel.db"`
	SessionSecret string `env:"PANEL_SESSION_SECRET,required"`
	ServerHost    string `env:"PANEL_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"PANEL_SERVER_PORT" envDefault:"8081"`
	Env           string `env:"PANEL_ENV" envDefault:"development"`
	LogLevel      string `env:"PANEL_LOG_LEVEL" envDefault:"info"`

	// Content backend
	BackendURL     string        `env:"PANEL_BACKEND_URL" envDefault:"http://localhost:8080/api"`
	BackendTimeout time.Duration `env:"PANEL_BACKEND_TIMEOUT" envDefault:"15s"`
	PreviewURL     string        `env:"PANEL_PREVIEW_URL" envDefault:"http://localhost:3000"`

	// Uploads
	UploadMaxBytes     int64 `env:"PANEL_UPLOAD_MAX_BYTES" envDefault:"10485760"`
	UploadMaxDimension int   `env:"PANEL_UPLOAD_MAX_DIMENSION" envDefault:"2560"`

	// Cache configuration
	RedisURL     string `env:"PANEL_REDIS_URL"`                        // Optional Redis URL for shared caching
	CachePrefix  string `env:"PANEL_CACHE_PREFIX" envDefault:"panel:"` // Redis key prefix
	CacheTTL     int    `env:"PANEL_CACHE_TTL" envDefault:"600"`       // Language list TTL in seconds
	CacheMaxSize int    `env:"PANEL_CACHE_MAX_SIZE" envDefault:"1000"` // Max memory cache entries

	// Event log retention in days, 0 keeps everything
	EventRetentionDays int `env:"PANEL_EVENT_RETENTION_DAYS" envDefault:"30"`
}

// IsDevelopment returns true if the panel is running in development mode.
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

// PreviewOrigin returns the scheme://host part of the preview URL, used for frame-src.
func (c Config) PreviewOrigin() string {
	u, err := url.Parse(c.PreviewURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("PANEL_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("PANEL_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	u, err := url.Parse(cfg.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("PANEL_BACKEND_URL must be an absolute URL, got %q", cfg.BackendURL)
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("PANEL_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes.
func hasMinimumEntropy(s string) bool {
	classes := []string{
		"abcdefghijklmnopqrstuvwxyz",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		"0123456789",
		"!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\",
	}
	n := 0
	for _, c := range classes {
		if strings.ContainsAny(s, c) {
			n++
		}
	}
	return n >= 3
}
