// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/bhashini-go/internal/i18n"
	"github.com/olegiv/bhashini-go/internal/language"
	"github.com/olegiv/bhashini-go/internal/middleware"
	"github.com/olegiv/bhashini-go/internal/render"
	"github.com/olegiv/bhashini-go/internal/session"
	"github.com/olegiv/bhashini-go/internal/submission"
)

// TranslatorHandler serves the translation form page.
type TranslatorHandler struct {
	renderer   *render.Renderer
	sessions   *scs.SessionManager
	registry   *submission.Registry
	catalog    *i18n.Catalog
	logger     *slog.Logger
	maxContent int
}

// NewTranslatorHandler creates a new translator page handler.
func NewTranslatorHandler(renderer *render.Renderer, sm *scs.SessionManager, registry *submission.Registry, catalog *i18n.Catalog, logger *slog.Logger) *TranslatorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranslatorHandler{
		renderer:   renderer,
		sessions:   sm,
		registry:   registry,
		catalog:    catalog,
		logger:     logger,
		maxContent: DefaultMaxContent,
	}
}

// languageOption is one entry of a language selector.
type languageOption struct {
	ID   string
	Name string
}

// selectView feeds the language_select partial.
type selectView struct {
	Name        string
	Selected    string
	Placeholder string
	Options     []languageOption
}

// indexView is the page model of the translation form.
type indexView struct {
	SourceSelect selectView
	TargetSelect selectView
	Content      string
	Result       string
	Pending      bool
	Error        string
	Reason       string
	MaxContent   int
}

// Index handles GET / - renders the form with the session's last input and
// the current translation state.
func (h *TranslatorHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := middleware.GetLocale(r)

	source := h.sessions.GetString(ctx, session.KeySource)
	target := h.sessions.GetString(ctx, session.KeyTarget)
	content := h.sessions.GetString(ctx, session.KeyContent)

	// First visit: guess the target from the browser languages
	if !h.sessions.Exists(ctx, session.KeyTarget) {
		target = language.Match(r.Header.Get("Accept-Language"))
	}

	view := indexView{
		SourceSelect: h.selectView(locale, "source", source),
		TargetSelect: h.selectView(locale, "target", target),
		Content:      content,
		MaxContent:   h.maxContent,
	}

	if id := session.PeekClientID(ctx, h.sessions); id != "" {
		if state, ok := h.registry.Lookup(id); ok {
			view.Result = state.LastText
			view.Pending = state.Status == submission.Pending
			if state.Status == submission.Failed {
				view.Error = h.catalog.T(locale, reasonMessageKey(state.Reason), nil)
				view.Reason = state.Reason
			}
		}
	}

	if err := h.renderer.Render(w, r, "index", render.TemplateData{
		Locale: locale,
		Data:   view,
	}); err != nil {
		logAndInternalError(w, "failed to render index", "error", err)
	}
}

// Submit handles POST /translate - runs one submission and redirects back to
// the form (post/redirect/get). A failed submission shows up as the page's
// error banner while the previous result stays on the page. Rejected input
// is reported with a flash message.
func (h *TranslatorHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := middleware.GetLocale(r)

	if err := r.ParseForm(); err != nil {
		flashAndRedirect(w, r, h.renderer, "/", h.catalog.T(locale, "ErrorUnknown", nil), flashError)
		return
	}

	sel := submission.Selection{
		Source:  strings.TrimSpace(r.PostFormValue("source")),
		Target:  strings.TrimSpace(r.PostFormValue("target")),
		Content: r.PostFormValue("content"),
	}

	h.sessions.Put(ctx, session.KeySource, sel.Source)
	h.sessions.Put(ctx, session.KeyTarget, sel.Target)
	h.sessions.Put(ctx, session.KeyContent, sel.Content)

	if utf8.RuneCountInString(sel.Content) > h.maxContent {
		msg := h.catalog.T(locale, "ErrorContentTooLong", map[string]any{"Max": h.maxContent})
		flashAndRedirect(w, r, h.renderer, "/", msg, flashError)
		return
	}

	ctrl := h.registry.Get(session.ClientID(ctx, h.sessions))
	if _, err := ctrl.Submit(ctx, sel); errors.Is(err, submission.ErrSuperseded) {
		flashAndRedirect(w, r, h.renderer, "/", h.catalog.T(locale, "ErrorSuperseded", nil), flashInfo)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *TranslatorHandler) selectView(locale, name, selected string) selectView {
	if selected != "" && !language.IsSupported(selected) {
		selected = ""
	}
	if selected != "" {
		selected = language.Normalize(selected)
	}

	all := language.All()
	opts := make([]languageOption, 0, len(all))
	for _, l := range all {
		opts = append(opts, languageOption{ID: l.ID, Name: h.catalog.LanguageName(locale, l.ID)})
	}

	return selectView{
		Name:        name,
		Selected:    selected,
		Placeholder: h.catalog.T(locale, "ChooseLanguage", nil),
		Options:     opts,
	}
}
