// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore is the in-process Store implementation. It backs the
// response cache when no Redis URL is configured.
type MemoryStore struct {
	data       sync.Map
	defaultTTL time.Duration
	stopCh     chan struct{}
	closed     atomic.Bool
}

// storeEntry holds a cached value with its expiration time.
type storeEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates a memory store with the given default TTL and
// starts an expiry sweep at the given interval (0 = no sweep).
func NewMemoryStore(defaultTTL, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		defaultTTL: defaultTTL,
		stopCh:     make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.sweepLoop(cleanupInterval)
	}
	return s
}

// Get retrieves a value from the store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrCacheClosed
	}

	val, ok := s.data.Load(key)
	if !ok {
		return nil, ErrCacheMiss
	}

	e := val.(*storeEntry)
	if time.Now().After(e.expiresAt) {
		s.data.Delete(key)
		return nil, ErrCacheMiss
	}

	// Return a copy to prevent mutation
	result := make([]byte, len(e.value))
	copy(result, e.value)
	return result, nil
}

// Set stores a value with the specified TTL.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrCacheClosed
	}

	if ttl == 0 {
		ttl = s.defaultTTL
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	s.data.Store(key, &storeEntry{
		value:     valueCopy,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete removes a key from the store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if s.closed.Load() {
		return ErrCacheClosed
	}
	s.data.Delete(key)
	return nil
}

// DeleteByPrefix removes all keys starting with the given prefix.
func (s *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	if s.closed.Load() {
		return ErrCacheClosed
	}

	s.data.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			s.data.Delete(key)
		}
		return true
	})
	return nil
}

// Close stops the sweep goroutine.
func (s *MemoryStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	return nil
}

// sweepLoop periodically removes expired entries.
func (s *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.data.Range(func(key, value any) bool {
				if now.After(value.(*storeEntry).expiresAt) {
					s.data.Delete(key)
				}
				return true
			})
		case <-s.stopCh:
			return
		}
	}
}

var _ Store = (*MemoryStore)(nil)
