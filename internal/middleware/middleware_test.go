// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "203.0.113.9:4312", nil, "203.0.113.9"},
		{"x-real-ip wins", "10.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"forwarded first hop", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.2"}, "198.51.100.7"},
		{"ipv6 remote", "[::1]:8080", nil, "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAdminAuth(t *testing.T) {
	const token = "secret-admin-token-32-chars-long"
	handler := AdminAuth(token)(okHandler())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"case-insensitive scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/admin/logs", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(60, 3)
	handler := rl.Middleware()(okHandler())

	send := func() int {
		r := httptest.NewRequest(http.MethodGet, "/api/news", nil)
		r.RemoteAddr = "203.0.113.9:1000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		if code := send(); code != http.StatusOK {
			t.Fatalf("request %d blocked early: %d", i+1, code)
		}
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Errorf("burst exceeded but got %d", code)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	handler := rl.Middleware()(okHandler())

	send := func(ip string) int {
		r := httptest.NewRequest(http.MethodGet, "/api/news", nil)
		r.RemoteAddr = ip
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	if code := send("203.0.113.9:1"); code != http.StatusOK {
		t.Fatalf("first client blocked: %d", code)
	}
	if code := send("203.0.113.9:2"); code != http.StatusTooManyRequests {
		t.Errorf("same IP not limited: %d", code)
	}
	if code := send("198.51.100.7:1"); code != http.StatusOK {
		t.Errorf("other client blocked: %d", code)
	}
}

func TestRateLimiterSetLimitsResetsBuckets(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	handler := rl.Middleware()(okHandler())

	send := func() int {
		r := httptest.NewRequest(http.MethodGet, "/api/news", nil)
		r.RemoteAddr = "203.0.113.9:1000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	_ = send()
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected limit hit, got %d", code)
	}

	rl.SetLimits(Limits{PerMinute: 600, Burst: 10})
	if got := rl.Limits(); got.PerMinute != 600 || got.Burst != 10 {
		t.Errorf("Limits = %+v after SetLimits", got)
	}
	if code := send(); code != http.StatusOK {
		t.Errorf("bucket not reset after SetLimits: %d", code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(DefaultSecurityHeadersConfig(false))(okHandler())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS missing in production mode")
	}

	// Development mode leaves HSTS off.
	devHandler := SecurityHeaders(DefaultSecurityHeadersConfig(true))(okHandler())
	w = httptest.NewRecorder()
	devHandler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS set in development mode")
	}
}
