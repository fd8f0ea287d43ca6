// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/bhashini-go/internal/config"
	"github.com/olegiv/bhashini-go/internal/handler"
	"github.com/olegiv/bhashini-go/internal/i18n"
	"github.com/olegiv/bhashini-go/internal/middleware"
	"github.com/olegiv/bhashini-go/web"
)

// requestTimeoutSlack is added to the translation timeout so the outbound
// call fails before the inbound request does.
const requestTimeoutSlack = 10 * time.Second

// routerDeps are the collaborators the router mounts.
type routerDeps struct {
	cfg      *config.Config
	sessions *scs.SessionManager
	catalog  *i18n.Catalog
	page     *handler.TranslatorHandler
	api      *handler.APIHandler
	health   *handler.HealthHandler
}

// newRouter builds the HTTP routing tree with its middleware stack.
func newRouter(d routerDeps) (http.Handler, error) {
	cfg := d.cfg
	isDev := cfg.IsDevelopment()

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))                                        // Gzip compression with level 5
	r.Use(chimw.GetHead)                                            // Handle HEAD requests for uptime monitoring
	r.Use(middleware.Timeout(cfg.APITimeout + requestTimeoutSlack)) // Outlives the outbound call
	r.Use(middleware.StripTrailingSlash)                            // Redirect /path/ to /path

	securityConfig := middleware.DefaultSecurityHeadersConfig(isDev)
	securityConfig.ExcludePaths = []string{"/health"}
	r.Use(middleware.SecurityHeaders(securityConfig))

	// Health checks (no session, no CSRF)
	r.Get("/health", d.health.Health)
	r.Get("/health/live", d.health.Liveness)
	r.Get("/health/ready", d.health.Readiness)

	// Static assets: cache for 1 day
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", middleware.StaticCache(86400)(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))

	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), isDev, cfg.ServerAddr())
	csrfMiddleware := middleware.CSRF(csrfConfig)

	pageLimiter := middleware.NewGlobalRateLimiter(cfg.RateLimit, cfg.RateBurst)
	apiLimiter := middleware.NewGlobalRateLimiter(cfg.RateLimit, cfg.RateBurst)

	r.Group(func(r chi.Router) {
		r.Use(d.sessions.LoadAndSave)
		r.Use(middleware.Locale(d.catalog, !isDev))
		r.Use(middleware.SkipCSRF("/api/translate")) // JSON API callers send no Fetch metadata
		r.Use(csrfMiddleware)

		r.Get("/", d.page.Index)
		r.With(pageLimiter.HTMLMiddleware(), middleware.NoStore).Post("/translate", d.page.Submit)

		r.Route("/api", func(r chi.Router) {
			r.Get("/languages", d.api.Languages)
			r.With(apiLimiter.Middleware(), middleware.NoStore).Post("/translate", d.api.Translate)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if middleware.WantsJSON(req) {
			middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Not found", nil)
			return
		}
		http.NotFound(w, req)
	})

	return r, nil
}
