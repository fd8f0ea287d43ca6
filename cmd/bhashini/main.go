// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command bhashini serves the Bhashini translator front-end: a form page
// and a JSON endpoint that forward text to the remote translation API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

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

// sweepInterval is how often idle submission controllers are evicted.
const sweepInterval = 10 * time.Minute

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Bhashini Translator - web front-end for the Bhashini translation API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHINI_API_URL          Translation endpoint (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHINI_API_TIMEOUT      Timeout of one translation request (default: 30s)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHINI_SESSION_SECRET   Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHINI_SERVER_HOST      Listen host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHINI_SERVER_PORT      Listen port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHINI_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHINI_LOG_LEVEL        debug|info|warn|error (default: info)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHINI_RATE_LIMIT       Translations per second per client IP (default: 2)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHINI_RATE_BURST       Rate limit burst (default: 5)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHINI_UI_LANGUAGE      Default interface language: en|hi (default: en)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Println(version.Current())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, recent := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	versionInfo := version.Current()

	catalog, err := i18n.New(cfg.UILanguage, logger)
	if err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	client, err := translate.New(translate.Config{
		Endpoint: cfg.APIURL,
		Timeout:  cfg.APITimeout,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("creating translation client: %w", err)
	}

	registry := submission.NewRegistry(client, submission.RegistryOptions{
		IdleTTL:         session.Lifetime,
		CleanupInterval: sweepInterval,
		Logger:          logger,
	})
	defer func() {
		if err := registry.Close(); err != nil {
			slog.Error("error closing submission registry", "error", err)
		}
	}()

	sessionManager := session.New(cfg.IsDevelopment())

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		Localizer:      catalog,
		Locales:        i18n.SupportedLocales,
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	router, err := newRouter(routerDeps{
		cfg:      cfg,
		sessions: sessionManager,
		catalog:  catalog,
		page:     handler.NewTranslatorHandler(renderer, sessionManager, registry, catalog, logger),
		api:      handler.NewAPIHandler(sessionManager, registry, client, logger),
		health:   handler.NewHealthHandler(client, registry, recent, versionInfo),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.APITimeout + 2*requestTimeoutSlack, // Must outlive the translation call
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			"addr", cfg.ServerAddr(),
			"env", cfg.Env,
			"version", versionInfo.Version,
			"endpoint", client.Endpoint(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
