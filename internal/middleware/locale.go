// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyLocale holds the UI locale chosen for the request.
const ContextKeyLocale ContextKey = "locale"

// LocaleCookieName is the cookie name for the UI locale preference.
const LocaleCookieName = "bhashini_lang"

// LocaleMatcher resolves UI locales. *i18n.Catalog satisfies it.
type LocaleMatcher interface {
	DefaultLocale() string
	IsSupported(locale string) bool
	Match(acceptLang string) string
}

// Locale creates middleware that picks the UI locale for the request.
// Priority order:
// 1. Query parameter ?lang=XX (explicit switch, updates cookie)
// 2. Cookie preference
// 3. Accept-Language header
// 4. Default locale
func Locale(m LocaleMatcher, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := ""

			if q := r.URL.Query().Get("lang"); q != "" && m.IsSupported(q) {
				locale = m.Match(q)
				SetLocaleCookie(w, locale, secureCookie)
			}

			if locale == "" {
				if cookie, err := r.Cookie(LocaleCookieName); err == nil && m.IsSupported(cookie.Value) {
					locale = m.Match(cookie.Value)
				}
			}

			if locale == "" {
				if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
					locale = m.Match(accept)
				}
			}

			if locale == "" {
				locale = m.DefaultLocale()
			}

			ctx := context.WithValue(r.Context(), ContextKeyLocale, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLocale retrieves the UI locale from the request context.
// Returns an empty string if the Locale middleware did not run.
func GetLocale(r *http.Request) string {
	locale, _ := r.Context().Value(ContextKeyLocale).(string)
	return locale
}

// SetLocaleCookie sets the UI locale preference cookie.
func SetLocaleCookie(w http.ResponseWriter, locale string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     LocaleCookieName,
		Value:    locale,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
