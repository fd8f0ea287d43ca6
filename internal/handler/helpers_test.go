// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/bhashini-go/internal/i18n"
	"github.com/olegiv/bhashini-go/internal/middleware"
	"github.com/olegiv/bhashini-go/internal/render"
	"github.com/olegiv/bhashini-go/internal/session"
	"github.com/olegiv/bhashini-go/internal/submission"
	"github.com/olegiv/bhashini-go/internal/translate"
	"github.com/olegiv/bhashini-go/web"
)

// remote simulates the translation service.
type remote struct {
	*httptest.Server
	calls  atomic.Int32
	bodies chan string
	reply  atomic.Value // func(http.ResponseWriter, *http.Request)
}

func (rm *remote) setReply(status int, body string) {
	rm.reply.Store(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func newRemote(t *testing.T) *remote {
	t.Helper()
	rm := &remote{bodies: make(chan string, 32)}
	rm.setReply(http.StatusOK, `{"translated_content":"bonjour"}`)
	rm.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rm.calls.Add(1)
		data, _ := io.ReadAll(r.Body)
		rm.bodies <- string(data)
		rm.reply.Load().(func(http.ResponseWriter, *http.Request))(w, r)
	}))
	t.Cleanup(rm.Close)
	return rm
}

// testApp wires the handlers the way main does, minus the ambient middleware.
type testApp struct {
	remote   *remote
	client   *translate.Client
	registry *submission.Registry
	sessions *scs.SessionManager
	catalog  *i18n.Catalog
	server   *httptest.Server
	browser  *http.Client
}

func newTestApp(t *testing.T, clientTimeout time.Duration) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rm := newRemote(t)

	client, err := translate.New(translate.Config{
		Endpoint: rm.URL,
		Timeout:  clientTimeout,
		Logger:   logger,
	})
	require.NoError(t, err)

	catalog, err := i18n.New("en", logger)
	require.NoError(t, err)

	sm := session.New(true)
	registry := submission.NewRegistry(client, submission.RegistryOptions{Logger: logger})
	t.Cleanup(func() { _ = registry.Close() })

	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		Localizer:      catalog,
		Locales:        i18n.SupportedLocales,
	})
	require.NoError(t, err)

	page := NewTranslatorHandler(renderer, sm, registry, catalog, logger)
	api := NewAPIHandler(sm, registry, client, logger)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.Locale(catalog, false))
	r.Get("/", page.Index)
	r.Post("/translate", page.Submit)
	r.Post("/api/translate", api.Translate)
	r.Get("/api/languages", api.Languages)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		remote:   rm,
		client:   client,
		registry: registry,
		sessions: sm,
		catalog:  catalog,
		server:   srv,
		browser:  &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}
}

// get fetches path with the app's cookie jar and returns status and body.
func (a *testApp) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := a.browser.Get(a.server.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// submitForm posts the translation form and follows the redirect.
func (a *testApp) submitForm(t *testing.T, source, target, content string) (int, string) {
	t.Helper()
	form := url.Values{"source": {source}, "target": {target}, "content": {content}}
	resp, err := a.browser.PostForm(a.server.URL+"/translate", form)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// postJSON posts body to the API without cookies unless withJar is set.
func (a *testApp) postJSON(t *testing.T, body string, withJar bool) (*http.Response, string) {
	t.Helper()
	c := &http.Client{Timeout: 10 * time.Second}
	if withJar {
		c = a.browser
	}
	resp, err := c.Post(a.server.URL+"/api/translate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

// nextBody returns the next body received by the remote.
func (rm *remote) nextBody(t *testing.T) string {
	t.Helper()
	select {
	case b := <-rm.bodies:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("remote received no request")
		return ""
	}
}
