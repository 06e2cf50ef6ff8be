// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the in-process caching layer for the portal:
// a TTL cache with tag-based invalidation used by the analytics and
// maintenance services, plus a byte-valued response cache with memory
// and Redis backends.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache is a thread-safe in-memory cache with per-entry TTL and tags.
// Tags enable bulk invalidation of related entries (e.g. everything
// derived from news content) without tracking individual keys.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	cfg     Config

	stopCh  chan struct{}
	stopped atomic.Bool

	// Stats
	hits         atomic.Int64
	misses       atomic.Int64
	sets         atomic.Int64
	statsResetAt atomic.Pointer[time.Time]
}

// entry holds a cached value with its expiration time and tags.
type entry struct {
	value     any
	expiresAt time.Time
	tags      []string
}

// Option customizes a single Set or Wrap call.
type Option func(*setOptions)

type setOptions struct {
	ttl    time.Duration
	hasTTL bool
	tags   []string
}

// WithTTL sets an explicit TTL for the entry. A TTL of zero (or negative)
// makes the entry expired immediately.
func WithTTL(ttl time.Duration) Option {
	return func(o *setOptions) {
		o.ttl = ttl
		o.hasTTL = true
	}
}

// WithTags attaches tags to the entry for later bulk invalidation.
func WithTags(tags ...string) Option {
	return func(o *setOptions) {
		o.tags = tags
	}
}

// New creates a cache with the given configuration and starts the
// periodic expiry sweep if CleanupInterval is set.
func New(cfg Config) *Cache {
	cfg = cfg.withDefaults()
	c := &Cache{
		entries: make(map[string]*entry),
		cfg:     cfg,
		stopCh:  make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go c.sweepLoop()
	}
	return c
}

// Get retrieves a value from the cache.
// Returns the value and true if found and not expired, nil and false otherwise.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	if !time.Now().Before(e.expiresAt) {
		// Entry expired, remove it
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return e.value, true
}

// Set stores a value in the cache. Without options the configured default
// TTL applies and the entry carries no tags. An existing entry under the
// same key is replaced, tags included.
func (c *Cache) Set(key string, value any, opts ...Option) {
	o := setOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := o.ttl
	if !o.hasTTL {
		ttl = c.cfg.DefaultTTL
	}

	if _, exists := c.entries[key]; !exists && c.cfg.MaxSize > 0 && len(c.entries) >= c.cfg.MaxSize {
		c.makeRoomLocked()
	}

	c.entries[key] = &entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
		tags:      o.tags,
	}
	c.sets.Add(1)
}

// Wrap returns the cached value for key, or invokes producer on a miss,
// stores its result under the given options and returns it. Producer
// errors propagate to the caller and nothing is cached.
// Concurrent misses for the same key may each invoke the producer.
func (c *Cache) Wrap(key string, producer func() (any, error), opts ...Option) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := producer()
	if err != nil {
		return nil, err
	}

	c.Set(key, v, opts...)
	return v, nil
}

// Delete removes a key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateByTags removes every entry whose tag set intersects the given
// tags and returns the number of entries removed. Entries without a
// matching tag are unaffected.
func (c *Cache) InvalidateByTags(tags []string) int {
	if len(tags) == 0 {
		return 0
	}

	wanted := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		wanted[t] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		for _, t := range e.tags {
			if _, ok := wanted[t]; ok {
				delete(c.entries, key)
				removed++
				break
			}
		}
	}
	return removed
}

// Cleanup removes all expired entries and returns the count removed.
// It runs on the sweep timer and can be called on demand.
func (c *Cache) Cleanup() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
}

// Config returns a copy of the current cache configuration.
func (c *Cache) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// SetConfig replaces the cache configuration at runtime. The maintenance
// routine uses this to tune MaxSize and DefaultTTL from observed hit rates.
// The sweep loop picks up a changed CleanupInterval on its next cycle.
func (c *Cache) SetConfig(cfg Config) {
	cfg = cfg.withDefaults()
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
}

// Stats holds cache statistics.
type Stats struct {
	Hits    int64      `json:"hits"`
	Misses  int64      `json:"misses"`
	Sets    int64      `json:"sets"`
	Size    int        `json:"size"`
	HitRate float64    `json:"hit_rate"`
	ResetAt *time.Time `json:"reset_at,omitempty"`
}

// Stats returns current cache statistics. HitRate is the rolling
// hit/(hit+miss) percentage since the last reset.
func (c *Cache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Size:    size,
		HitRate: hitRate,
		ResetAt: c.statsResetAt.Load(),
	}
}

// ResetStats resets the cache statistics.
func (c *Cache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
	now := time.Now()
	c.statsResetAt.Store(&now)
}

// EntryInfo describes a single cache entry for introspection.
type EntryInfo struct {
	Key       string    `json:"key"`
	Tags      []string  `json:"tags,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DebugInfo returns the full entry list for introspection and tuning.
// Not intended for production hot paths.
func (c *Cache) DebugInfo() []EntryInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]EntryInfo, 0, len(c.entries))
	for key, e := range c.entries {
		infos = append(infos, EntryInfo{
			Key:       key,
			Tags:      append([]string(nil), e.tags...),
			ExpiresAt: e.expiresAt,
		})
	}
	return infos
}

// Stop stops the sweep goroutine.
func (c *Cache) Stop() {
	if c.stopped.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
}

// makeRoomLocked frees at least one slot: expired entries first, then the
// entry closest to expiry. Caller must hold the write lock.
func (c *Cache) makeRoomLocked() {
	now := time.Now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.cfg.MaxSize {
		return
	}

	var victim string
	var soonest time.Time
	for key, e := range c.entries {
		if victim == "" || e.expiresAt.Before(soonest) {
			victim = key
			soonest = e.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}

// sweepLoop periodically removes expired entries. The interval is re-read
// each cycle so runtime config changes take effect.
func (c *Cache) sweepLoop() {
	for {
		c.mu.RLock()
		interval := c.cfg.CleanupInterval
		c.mu.RUnlock()
		if interval <= 0 {
			interval = time.Minute
		}

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
			c.Cleanup()
		case <-c.stopCh:
			timer.Stop()
			return
		}
	}
}
