// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package language holds the fixed table of languages supported by the
// Bhashini translation API and the integer codes it expects.
package language

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is one entry of the code table.
type Language struct {
	ID   string `json:"id"`   // ISO 639 identifier used by the UI (e.g. "hi")
	Name string `json:"name"` // English display name
	Code int    `json:"code"` // Integer code expected by the remote API
}

// table is ordered as the selectors show it. Never mutated.
var table = []Language{
	{ID: "hi", Name: "Hindi", Code: 1},
	{ID: "bn", Name: "Bengali", Code: 2},
	{ID: "gu", Name: "Gujarati", Code: 3},
	{ID: "kn", Name: "Kannada", Code: 4},
	{ID: "ml", Name: "Malayalam", Code: 5},
	{ID: "mr", Name: "Marathi", Code: 6},
	{ID: "or", Name: "Odia", Code: 7},
	{ID: "pa", Name: "Punjabi", Code: 8},
	{ID: "ta", Name: "Tamil", Code: 9},
	{ID: "te", Name: "Telugu", Code: 10},
	{ID: "as", Name: "Assamese", Code: 11},
}

var (
	byID    map[string]Language
	matcher language.Matcher
	tags    []language.Tag
)

func init() {
	byID = make(map[string]Language, len(table))
	tags = make([]language.Tag, 0, len(table))
	for _, l := range table {
		byID[l.ID] = l
		tags = append(tags, language.MustParse(l.ID))
	}
	matcher = language.NewMatcher(tags)
}

// All returns the supported languages in selector order.
// The returned slice is a copy.
func All() []Language {
	out := make([]Language, len(table))
	copy(out, table)
	return out
}

// Normalize canonicalizes an identifier to the base language subtag
// ("HI", "hi-IN" and "hi_IN" all become "hi"). Returns "" if id is empty
// or cannot be parsed.
func Normalize(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(id, "_", "-"))
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

// Lookup returns the API code for id. Unknown identifiers report ok=false;
// no error is raised.
func Lookup(id string) (code int, ok bool) {
	l, ok := byID[Normalize(id)]
	if !ok {
		return 0, false
	}
	return l.Code, true
}

// Get returns the full table entry for id.
func Get(id string) (Language, bool) {
	l, ok := byID[Normalize(id)]
	return l, ok
}

// Code returns a pointer to the API code for id, or nil if id is unknown or
// unselected. A nil code is left out of the outgoing request.
func Code(id string) *int {
	code, ok := Lookup(id)
	if !ok {
		return nil
	}
	return &code
}

// IsSupported reports whether id resolves to an entry of the table.
func IsSupported(id string) bool {
	_, ok := Lookup(id)
	return ok
}

// Match picks the supported identifier that best fits an Accept-Language
// header value. Returns "" when nothing matches with at least high confidence.
func Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return ""
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return ""
	}
	_, idx, conf := matcher.Match(prefs...)
	if conf < language.High || idx < 0 || idx >= len(table) {
		return ""
	}
	return table[idx].ID
}
