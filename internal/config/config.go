// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"PORTAL_DB_PATH" envDefault:"./data/portal.db"`
	AdminToken string `env:"PORTAL_ADMIN_TOKEN,required"`
	ServerHost string `env:"PORTAL_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"PORTAL_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"PORTAL_ENV" envDefault:"development"`
	LogLevel   string `env:"PORTAL_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL         string `env:"PORTAL_REDIS_URL"`                           // Optional Redis URL for the byte-store cache
	CachePrefix      string `env:"PORTAL_CACHE_PREFIX" envDefault:"portal:"`   // Redis key prefix
	CacheTTLSecs     int    `env:"PORTAL_CACHE_TTL" envDefault:"3600"`         // Default cache TTL in seconds
	CacheMaxSize     int    `env:"PORTAL_CACHE_MAX_SIZE" envDefault:"1000"`    // Max in-process cache entries
	CacheCleanupSecs int    `env:"PORTAL_CACHE_CLEANUP" envDefault:"60"`       // Seconds between expiry sweeps
	RateLimitPerMin  int    `env:"PORTAL_RATE_LIMIT_PER_MIN" envDefault:"120"` // Public API requests per minute per client
	RateLimitBurst   int    `env:"PORTAL_RATE_LIMIT_BURST" envDefault:"30"`

	// Analytics configuration
	RetentionDays int `env:"PORTAL_ANALYTICS_RETENTION_DAYS" envDefault:"180"` // Bot event retention

	// GeoIP configuration
	GeoIPDBPath string `env:"PORTAL_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Seeding configuration
	DoSeed bool `env:"PORTAL_DO_SEED" envDefault:"false"` // Enable database seeding
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

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// CacheTTL returns the default cache TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSecs) * time.Second
}

// CacheCleanupInterval returns the expiry sweep interval as a duration.
func (c Config) CacheCleanupInterval() time.Duration {
	return time.Duration(c.CacheCleanupSecs) * time.Second
}

// MinAdminTokenLength is the minimum required length for the admin token.
const MinAdminTokenLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.AdminToken) < MinAdminTokenLength {
		return nil, fmt.Errorf("PORTAL_ADMIN_TOKEN must be at least %d bytes long, got %d bytes; "+
			"generate a secure token with: openssl rand -base64 32",
			MinAdminTokenLength, len(cfg.AdminToken))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.AdminToken == weak {
			return nil, fmt.Errorf("PORTAL_ADMIN_TOKEN is a known default value and must not be used; " +
				"generate a secure token with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.AdminToken) {
		slog.Warn("PORTAL_ADMIN_TOKEN has low character diversity; " +
			"consider generating a random token with: openssl rand -base64 32")
	}

	return cfg, nil
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
