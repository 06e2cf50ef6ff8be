// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter map; beyond it the map is
// dropped wholesale rather than evicted entry by entry.
const maxTrackedClients = 10000

// Limits describes the active rate limit policy.
type Limits struct {
	PerMinute int `json:"per_minute"`
	Burst     int `json:"burst"`
}

// RateLimiter applies a per-client-IP token bucket to API routes. The
// policy is adjustable at runtime from the admin security screen; an
// adjustment resets all buckets.
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limits   Limits
}

// NewRateLimiter creates a limiter allowing perMinute requests with the
// given burst per client.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limits:   Limits{PerMinute: perMinute, Burst: burst},
	}
}

// Limits returns the active policy.
func (rl *RateLimiter) Limits() Limits {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.limits
}

// SetLimits replaces the policy and resets every client bucket.
func (rl *RateLimiter) SetLimits(l Limits) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.limits = l
	rl.limiters = make(map[string]*rate.Limiter)
}

// get returns the limiter for a client, creating one if needed.
func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()
	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = rl.limiters[key]; exists {
		return limiter
	}
	if len(rl.limiters) > maxTrackedClients {
		rl.limiters = make(map[string]*rate.Limiter)
	}

	limiter = rate.NewLimiter(rate.Limit(float64(rl.limits.PerMinute)/60), rl.limits.Burst)
	rl.limiters[key] = limiter
	return limiter
}

// Middleware returns the rate limiting middleware, responding with a
// JSON 429 when a client exceeds its budget.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !rl.get(ip).Allow() {
				slog.Warn("rate limit exceeded", "category", "security", "ip", ip, "path", r.URL.Path)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
