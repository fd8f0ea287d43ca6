// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that keeps the most recent
// warnings and errors in memory for the verbose health report.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultCapacity is the number of records kept by NewRecentHandler.
const DefaultCapacity = 50

// Entry is a captured log record.
type Entry struct {
	Time    time.Time         `json:"time"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// ring is shared by a RecentHandler and every handler derived from it.
type ring struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

func (r *ring) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// snapshot returns entries oldest first.
func (r *ring) snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		out := make([]Entry, r.next)
		copy(out, r.entries[:r.next])
		return out
	}
	out := make([]Entry, 0, len(r.entries))
	out = append(out, r.entries[r.next:]...)
	out = append(out, r.entries[:r.next]...)
	return out
}

// RecentHandler is a slog.Handler that wraps another handler and also keeps
// records at or above a minimum level in a fixed-size ring buffer.
type RecentHandler struct {
	inner  slog.Handler
	buf    *ring
	level  slog.Level // Minimum level to capture (default: WARN)
	attrs  []slog.Attr
	groups []string
}

// NewRecentHandler creates a RecentHandler capturing WARN and above.
func NewRecentHandler(inner slog.Handler, capacity int) *RecentHandler {
	return NewRecentHandlerWithLevel(inner, capacity, slog.LevelWarn)
}

// NewRecentHandlerWithLevel creates a RecentHandler with a custom minimum level.
func NewRecentHandlerWithLevel(inner slog.Handler, capacity int, level slog.Level) *RecentHandler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RecentHandler{
		inner: inner,
		buf:   &ring{entries: make([]Entry, capacity)},
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *RecentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RecentHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.buf.add(h.toEntry(r))
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *RecentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), h.qualify(attrs)...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *RecentHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.inner = h.inner.WithGroup(name)
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

// Recent returns the captured records, oldest first.
func (h *RecentHandler) Recent() []Entry {
	return h.buf.snapshot()
}

func (h *RecentHandler) toEntry(r slog.Record) Entry {
	e := Entry{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
	}
	n := len(h.attrs) + r.NumAttrs()
	if n == 0 {
		return e
	}
	e.Attrs = make(map[string]string, n)
	for _, a := range h.attrs {
		e.Attrs[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		for _, q := range h.qualify([]slog.Attr{a}) {
			e.Attrs[q.Key] = q.Value.String()
		}
		return true
	})
	return e
}

// qualify prefixes attribute keys with the active group names.
func (h *RecentHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}
	prefix := strings.Join(h.groups, ".") + "."
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}

// ParseLevel maps a configured level name to a slog.Level. Unknown names
// fall back to INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the application logger: a text handler on w wrapped by a
// RecentHandler. The RecentHandler is returned for the health endpoint.
func New(w io.Writer, level string) (*slog.Logger, *RecentHandler) {
	text := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	recent := NewRecentHandler(text, DefaultCapacity)
	return slog.New(recent), recent
}
