// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/bhashini-go/internal/config"
	"github.com/olegiv/bhashini-go/internal/handler"
	"github.com/olegiv/bhashini-go/internal/i18n"
	"github.com/olegiv/bhashini-go/internal/logging"
	"github.com/olegiv/bhashini-go/internal/render"
	"github.com/olegiv/bhashini-go/internal/session"
	"github.com/olegiv/bhashini-go/internal/submission"
	"github.com/olegiv/bhashini-go/internal/translate"
	"github.com/olegiv/bhashini-go/internal/version"
	"github.com/olegiv/bhashini-go/web"
)

func newTestRouter(t *testing.T, rateBurst int) http.Handler {
	t.Helper()

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translated_content":"bonjour"}`))
	}))
	t.Cleanup(remote.Close)

	cfg := &config.Config{
		APIURL:        remote.URL,
		APITimeout:    2 * time.Second,
		SessionSecret: "test-secret-key-32-bytes-long!!!",
		ServerHost:    "localhost",
		ServerPort:    8080,
		Env:           "production",
		LogLevel:      "error",
		UILanguage:    "en",
		RateLimit:     0.001,
		RateBurst:     rateBurst,
	}

	logger, recent := logging.New(io.Discard, cfg.LogLevel)

	catalog, err := i18n.New(cfg.UILanguage, logger)
	require.NoError(t, err)

	client, err := translate.New(translate.Config{Endpoint: cfg.APIURL, Timeout: cfg.APITimeout, Logger: logger})
	require.NoError(t, err)

	registry := submission.NewRegistry(client, submission.RegistryOptions{Logger: logger})
	t.Cleanup(func() { _ = registry.Close() })

	sm := session.New(true)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		Localizer:      catalog,
		Locales:        i18n.SupportedLocales,
	})
	require.NoError(t, err)

	router, err := newRouter(routerDeps{
		cfg:      cfg,
		sessions: sm,
		catalog:  catalog,
		page:     handler.NewTranslatorHandler(renderer, sm, registry, catalog, slog.New(slog.NewTextHandler(io.Discard, nil))),
		api:      handler.NewAPIHandler(sm, registry, client, logger),
		health:   handler.NewHealthHandler(client, registry, recent, version.Current()),
	})
	require.NoError(t, err)
	return router
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_IndexHasSecurityHeaders(t *testing.T) {
	router := newTestRouter(t, 5)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Body.String(), "Welcome to Bhashini Translator Project")
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"), "production config enables HSTS")
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, 5)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		rec := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Empty(t, rec.Header().Get("Content-Security-Policy"), path)
		assert.Empty(t, rec.Header().Get("Set-Cookie"), "health checks must not start sessions")
	}
}

func TestRouter_StaticAssets(t *testing.T) {
	router := newTestRouter(t, 5)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestRouter_APITranslateSkipsCSRF(t *testing.T) {
	router := newTestRouter(t, 5)

	req := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader(`{"source":"hi","content":"hello","target":"bn"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Origin", "https://script.example")
	rec := serve(router, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var out map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "bonjour", out["translated_content"])
}

func TestRouter_FormRejectsCrossSitePost(t *testing.T) {
	router := newTestRouter(t, 5)

	form := url.Values{"source": {"hi"}, "target": {"bn"}, "content": {"hello"}}
	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Origin", "https://evil.example")

	rec := serve(router, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_FormSameOriginRedirects(t *testing.T) {
	router := newTestRouter(t, 5)

	form := url.Values{"source": {"hi"}, "target": {"bn"}, "content": {"hello"}}
	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "same-origin")

	rec := serve(router, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRouter_APIRateLimit(t *testing.T) {
	router := newTestRouter(t, 2)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader(`{"content":"hello"}`))
		req.RemoteAddr = "198.51.100.7:5555"
		codes = append(codes, serve(router, req).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// The language list is not rate limited
	req := httptest.NewRequest(http.MethodGet, "/api/languages", nil)
	req.RemoteAddr = "198.51.100.7:5555"
	assert.Equal(t, http.StatusOK, serve(router, req).Code)
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t, 5)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestRouter_TrailingSlash(t *testing.T) {
	router := newTestRouter(t, 5)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/health/", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/health", rec.Header().Get("Location"))
}
