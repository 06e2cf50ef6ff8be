// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "time"

// Config holds the runtime-tunable cache configuration. It is a plain
// value object: read it with Cache.Config, adjust, and write it back with
// Cache.SetConfig. Nothing is persisted; a restart returns to defaults.
type Config struct {
	// MaxSize is the entry count ceiling (0 = unlimited). When full, Set
	// purges expired entries and then evicts the entry closest to expiry.
	MaxSize int

	// DefaultTTL applies to entries stored without an explicit TTL.
	DefaultTTL time.Duration

	// CleanupInterval is the period of the background expiry sweep
	// (0 = no background sweep).
	CleanupInterval time.Duration
}

// DefaultConfig returns the cache configuration used when nothing is
// specified: one hour TTL, 1000 entries, sweep every minute.
func DefaultConfig() Config {
	return Config{
		MaxSize:         1000,
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Minute,
	}
}

// withDefaults fills zero fields that must not stay zero.
func (c Config) withDefaults() Config {
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = time.Hour
	}
	return c
}
