// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package submission tracks what a user has submitted for translation and
// what the UI should show for it. Each browser session owns one Controller;
// a newer submission always supersedes an older one still in flight.
package submission

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/bhashini-go/internal/language"
	"github.com/olegiv/bhashini-go/internal/translate"
)

// ErrSuperseded is returned by Submit when a newer submission for the same
// controller started before this one finished. Its result is discarded.
var ErrSuperseded = errors.New("submission: superseded by a newer submission")

// Status is the observable stage of a submission.
type Status int

const (
	Idle Status = iota
	Pending
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reasons reported in State.Reason for Failed submissions.
const (
	ReasonTimeout = "timeout"
	ReasonUnknown = "unknown_error"
)

// State is what the UI renders. Text is set only when Succeeded and Reason
// only when Failed. LastText survives failures so prior output can stay on
// screen.
type State struct {
	Status       Status
	Text         string
	Reason       string
	Err          error
	LastText     string
	SubmissionID string
	UpdatedAt    time.Time
}

// Selection is the raw user input: language identifiers as picked in the
// selectors (possibly empty) and the text to translate.
type Selection struct {
	Source  string
	Target  string
	Content string
}

// Request resolves the selection against the language table. Unknown or
// unselected identifiers become nil codes; nothing blocks the request.
func (s Selection) Request() translate.Request {
	return translate.Request{
		Source:  language.Code(s.Source),
		Content: s.Content,
		Target:  language.Code(s.Target),
	}
}

// Translator performs one translation round trip.
type Translator interface {
	Translate(ctx context.Context, req translate.Request) (*translate.Response, error)
}

// Controller drives the Idle → Pending → Succeeded|Failed cycle for one
// session.
type Controller struct {
	translator Translator
	logger     *slog.Logger

	mu       sync.Mutex
	state    State
	seq      uint64
	cancel   context.CancelFunc
	lastUsed time.Time
}

// NewController creates an Idle controller.
func NewController(t Translator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		translator: t,
		logger:     logger,
		lastUsed:   time.Now(),
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastUsed = time.Now()
	return c.state
}

// Submit translates sel. Any submission still in flight is cancelled and its
// eventual result ignored, so the displayed result follows submission order.
// The returned State is the one this submission produced; if a newer
// submission took over meanwhile, the current State and ErrSuperseded are
// returned instead.
func (c *Controller) Submit(ctx context.Context, sel Selection) (State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	c.cancel = cancel
	id := uuid.NewString()
	c.state = State{
		Status:       Pending,
		LastText:     c.state.LastText,
		SubmissionID: id,
		UpdatedAt:    time.Now(),
	}
	c.lastUsed = c.state.UpdatedAt
	c.mu.Unlock()

	resp, err := c.translator.Translate(ctx, sel.Request())

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seq != seq {
		c.logger.Debug("discarding superseded translation result", "submission_id", id)
		return c.state, ErrSuperseded
	}
	c.cancel = nil

	now := time.Now()
	if err != nil {
		c.state = State{
			Status:       Failed,
			Reason:       reasonFor(err),
			Err:          err,
			LastText:     c.state.LastText,
			SubmissionID: id,
			UpdatedAt:    now,
		}
		c.logger.Warn("translation failed",
			"submission_id", id,
			"reason", c.state.Reason,
			"error", err,
		)
		return c.state, nil
	}

	c.state = State{
		Status:       Succeeded,
		Text:         resp.TranslatedContent,
		LastText:     resp.TranslatedContent,
		SubmissionID: id,
		UpdatedAt:    now,
	}
	return c.state, nil
}

// Reset cancels any pending submission and returns the controller to Idle.
// The last displayed text is kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.state = State{Status: Idle, LastText: c.state.LastText, UpdatedAt: time.Now()}
}

func (c *Controller) touch() {
	c.mu.Lock()
	c.lastUsed = time.Now()
	c.mu.Unlock()
}

// idleSince reports when the controller was last used.
func (c *Controller) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// busy reports whether a submission is in flight.
func (c *Controller) busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Status == Pending
}

func reasonFor(err error) string {
	if translate.IsTimeout(err) {
		return ReasonTimeout
	}
	if kind := translate.KindOf(err); kind != 0 {
		return kind.String()
	}
	return ReasonUnknown
}
