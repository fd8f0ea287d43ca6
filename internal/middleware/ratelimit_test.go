// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLimiterCacheGet(t *testing.T) {
	lc := newLimiterCache[string](1, 1)

	a := lc.get("10.0.0.1")
	if a != lc.get("10.0.0.1") {
		t.Error("get() returned a different limiter for the same key")
	}
	if a == lc.get("10.0.0.2") {
		t.Error("get() returned the same limiter for different keys")
	}
	if lc.len() != 2 {
		t.Errorf("len() = %d, want 2", lc.len())
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[int](1, 1)
	for i := range 5 {
		lc.get(i)
	}

	if lc.clearIfExceeds(10) {
		t.Error("clearIfExceeds(10) cleared a cache of 5")
	}
	if !lc.clearIfExceeds(4) {
		t.Error("clearIfExceeds(4) did not clear a cache of 5")
	}
	if lc.len() != 0 {
		t.Errorf("len() = %d after clear, want 0", lc.len())
	}
}

func TestGlobalRateLimiterMiddleware(t *testing.T) {
	rl := NewGlobalRateLimiter(0.001, 2)
	handler := rl.Middleware()(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/translate", nil)
		req.RemoteAddr = "192.0.2.10:4444"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)

		if rec.Code == http.StatusTooManyRequests {
			var apiErr APIError
			if err := json.NewDecoder(rec.Body).Decode(&apiErr); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if apiErr.Error.Code != "rate_limit_exceeded" {
				t.Errorf("error code = %q, want rate_limit_exceeded", apiErr.Error.Code)
			}
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: status = %d, want %d", i, codes[i], want[i])
		}
	}

	// Another client has its own budget
	req := httptest.NewRequest(http.MethodPost, "/api/translate", nil)
	req.RemoteAddr = "192.0.2.11:4444"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestGlobalRateLimiterHTMLMiddleware(t *testing.T) {
	rl := NewGlobalRateLimiter(0.001, 1)
	handler := rl.HTMLMiddleware()(okHandler())

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/translate", nil)
		req.RemoteAddr = "192.0.2.20:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("request %d: status = %d, want %d", i, rec.Code, want)
		}
		if want == http.StatusTooManyRequests && rec.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
			t.Errorf("Content-Type = %q, want text/plain", rec.Header().Get("Content-Type"))
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr with port", "192.0.2.1:1234", nil, "192.0.2.1"},
		{"remote addr without port", "192.0.2.1", nil, "192.0.2.1"},
		{"x-real-ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "203.0.113.5"}, "203.0.113.5"},
		{"x-forwarded-for first hop", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, "203.0.113.7"},
		{"ipv6", "[2001:db8::1]:8080", nil, "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
