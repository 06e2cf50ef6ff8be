// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"time"
)

// StoreConfig selects and configures the response-cache backend.
type StoreConfig struct {
	// RedisURL enables the Redis backend when non-empty.
	RedisURL string

	// Prefix is the Redis key prefix.
	Prefix string

	// DefaultTTL is the default TTL for cached responses.
	DefaultTTL time.Duration

	// CleanupInterval is the expiry sweep interval for the memory backend.
	CleanupInterval time.Duration
}

// NewStore creates the response-cache backend for the given configuration.
// When Redis is configured but unreachable it falls back to the memory
// backend so a cache outage never takes the portal down.
func NewStore(cfg StoreConfig, logger *slog.Logger) Store {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	if cfg.RedisURL != "" {
		opts := DefaultRedisOptions()
		opts.URL = cfg.RedisURL
		opts.DefaultTTL = cfg.DefaultTTL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}

		store, err := NewRedisStore(opts)
		if err == nil {
			return store
		}
		logger.Warn("redis unavailable, falling back to memory cache", "error", err)
	}

	return NewMemoryStore(cfg.DefaultTTL, cfg.CleanupInterval)
}
