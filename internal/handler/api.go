// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/bhashini-go/internal/language"
	"github.com/olegiv/bhashini-go/internal/middleware"
	"github.com/olegiv/bhashini-go/internal/session"
	"github.com/olegiv/bhashini-go/internal/submission"
)

// APIHandler serves the JSON translation API.
type APIHandler struct {
	sessions   *scs.SessionManager
	registry   *submission.Registry
	translator submission.Translator
	logger     *slog.Logger
	maxContent int
}

// NewAPIHandler creates a new API handler. Callers with a browser session
// share that session's controller; others get a one-off controller.
func NewAPIHandler(sm *scs.SessionManager, registry *submission.Registry, translator submission.Translator, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		sessions:   sm,
		registry:   registry,
		translator: translator,
		logger:     logger,
		maxContent: DefaultMaxContent,
	}
}

// TranslateRequest is the body of POST /api/translate. Source and Target are
// language identifiers such as "hi"; unknown or empty ones are sent to the
// remote service without a code.
type TranslateRequest struct {
	Source  string `json:"source"`
	Content string `json:"content"`
	Target  string `json:"target"`
}

// TranslateResponse is the success body of POST /api/translate.
type TranslateResponse struct {
	TranslatedContent string `json:"translated_content"`
}

// Translate handles POST /api/translate.
func (h *APIHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalidRequest, "Request body must be a JSON object")
		return
	}

	if n := utf8.RuneCountInString(req.Content); n > h.maxContent {
		middleware.WriteAPIError(w, http.StatusUnprocessableEntity, codeContentTooLong, "Content is too long",
			map[string]string{"max": strconv.Itoa(h.maxContent), "length": strconv.Itoa(n)})
		return
	}

	sel := submission.Selection{
		Source:  strings.TrimSpace(req.Source),
		Target:  strings.TrimSpace(req.Target),
		Content: req.Content,
	}

	state, err := h.controller(r).Submit(r.Context(), sel)
	if errors.Is(err, submission.ErrSuperseded) {
		writeJSONError(w, http.StatusConflict, codeSuperseded, "A newer translation request replaced this one")
		return
	}

	w.Header().Set("X-Submission-ID", state.SubmissionID)

	if state.Status == submission.Failed {
		writeJSONError(w, reasonStatus(state.Reason), state.Reason, "Translation failed")
		return
	}

	writeJSON(w, http.StatusOK, TranslateResponse{TranslatedContent: state.Text})
}

// Languages handles GET /api/languages.
func (h *APIHandler) Languages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, language.All())
}

// controller picks the submission controller for the caller.
func (h *APIHandler) controller(r *http.Request) *submission.Controller {
	if h.sessions != nil {
		if id := session.PeekClientID(r.Context(), h.sessions); id != "" {
			return h.registry.Get(id)
		}
	}
	return submission.NewController(h.translator, h.logger)
}
