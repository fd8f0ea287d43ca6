// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n provides localized strings for the translator UI.
package i18n

import (
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed locales/active.*.toml
var localesFS embed.FS

// SupportedLocales lists the UI locales shipped with the binary.
var SupportedLocales = []string{"en", "hi"}

// Catalog is a thin wrapper around go-i18n's Bundle/Localizer.
type Catalog struct {
	bundle      *i18n.Bundle
	defaultLang language.Tag
	supported   []language.Tag
	matcher     language.Matcher
	logger      *slog.Logger
}

// New builds a Catalog from the embedded active.*.toml files. An unknown
// defaultLocale falls back to English.
func New(defaultLocale string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tag, err := language.Parse(defaultLocale)
	if err != nil || !isShipped(tag) {
		logger.Warn("unsupported UI locale, using English", "locale", defaultLocale)
		tag = language.English
	}
	base, _ := tag.Base()
	tag = language.Make(base.String())

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	supported := make([]language.Tag, 0, len(SupportedLocales))
	for _, locale := range SupportedLocales {
		file := fmt.Sprintf("locales/active.%s.toml", locale)
		if _, err := bundle.LoadMessageFileFS(localesFS, file); err != nil {
			return nil, fmt.Errorf("i18n: loading %s: %w", file, err)
		}
		supported = append(supported, language.MustParse(locale))
	}

	// The default goes first so the matcher falls back to it.
	ordered := []language.Tag{tag}
	for _, t := range supported {
		if t != tag {
			ordered = append(ordered, t)
		}
	}

	logger.Debug("i18n initialized", "locales", SupportedLocales, "default", tag.String())

	return &Catalog{
		bundle:      bundle,
		defaultLang: tag,
		supported:   ordered,
		matcher:     language.NewMatcher(ordered),
		logger:      logger,
	}, nil
}

// DefaultLocale returns the fallback locale.
func (c *Catalog) DefaultLocale() string {
	return c.defaultLang.String()
}

// T renders the message identified by key for the given locale.
// If the key/locale is not found, it falls back to the default locale,
// then finally to the key itself.
func (c *Catalog) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, c.defaultLang.String())

	localizer := i18n.NewLocalizer(c.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		c.logger.Debug("i18n: localize failed", "key", key, "locales", languages, "error", err)
		return key
	}
	return msg
}

// IsSupported reports whether locale is one of the shipped UI locales.
func (c *Catalog) IsSupported(locale string) bool {
	tag, err := language.Parse(locale)
	return err == nil && isShipped(tag)
}

// Match finds the best matching UI locale for an Accept-Language header or
// a single language code. Returns the default locale when nothing fits.
func (c *Catalog) Match(acceptLang string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return c.DefaultLocale()
		}
		tags = []language.Tag{tag}
	}

	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(c.supported) {
		return c.DefaultLocale()
	}
	return c.supported[idx].String()
}

// LanguageName returns the localized display name of a language table id.
func (c *Catalog) LanguageName(locale, id string) string {
	if id == "" {
		return ""
	}
	return c.T(locale, "Language"+strings.ToUpper(id[:1])+id[1:], nil)
}

func isShipped(tag language.Tag) bool {
	base, _ := tag.Base()
	for _, locale := range SupportedLocales {
		if base.String() == locale {
			return true
		}
	}
	return false
}
