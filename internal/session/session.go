// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the browser session that ties a visitor to
// their submission controller and carries flash messages across redirects.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/google/uuid"
)

// Session keys.
const (
	KeyClientID  = "client_id"
	KeyFlash     = "flash"
	KeyFlashType = "flash_type"

	// Last form input, restored when the page is shown again
	KeySource  = "form_source"
	KeyTarget  = "form_target"
	KeyContent = "form_content"
)

// CookieName is the session cookie name.
const CookieName = "bhashini_session"

// Lifetime is how long an idle session is kept.
const Lifetime = 24 * time.Hour

// New creates a new session manager backed by the in-memory store.
func New(isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = memstore.NewWithCleanupInterval(time.Minute)

	sm.Lifetime = Lifetime
	sm.Cookie.Name = CookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}

// ClientID returns the stable id of the visitor owning ctx, creating one on
// first use. The context must come from a request wrapped by LoadAndSave.
func ClientID(ctx context.Context, sm *scs.SessionManager) string {
	if id := sm.GetString(ctx, KeyClientID); id != "" {
		return id
	}
	id := uuid.NewString()
	sm.Put(ctx, KeyClientID, id)
	return id
}

// PeekClientID returns the visitor id without creating one.
func PeekClientID(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, KeyClientID)
}
