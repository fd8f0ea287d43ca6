// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package submission

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	IdleTTL         time.Duration // Controllers unused for longer are evicted (0 = never)
	CleanupInterval time.Duration // Interval for idle sweeps (0 = no background sweeps)
	Logger          *slog.Logger
}

// Registry hands out one Controller per session key.
type Registry struct {
	translator Translator
	idleTTL    time.Duration
	logger     *slog.Logger

	mu          sync.Mutex
	controllers map[string]*Controller

	stopCh chan struct{}
	closed atomic.Bool
}

// NewRegistry creates a registry whose controllers use t.
func NewRegistry(t Translator, opts RegistryOptions) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		translator:  t,
		idleTTL:     opts.IdleTTL,
		logger:      logger,
		controllers: make(map[string]*Controller),
		stopCh:      make(chan struct{}),
	}

	// Start cleanup goroutine if interval is set
	if opts.CleanupInterval > 0 && opts.IdleTTL > 0 {
		go r.cleanupLoop(opts.CleanupInterval)
	}

	return r
}

// Get returns the controller for key, creating it on first use, and
// restarts its idle clock.
func (r *Registry) Get(key string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.controllers[key]
	if !ok {
		c = NewController(r.translator, r.logger.With("session", shortKey(key)))
		r.controllers[key] = c
		return c
	}
	c.touch()
	return c
}

// Lookup returns the state for key without creating a controller.
func (r *Registry) Lookup(key string) (State, bool) {
	r.mu.Lock()
	c, ok := r.controllers[key]
	r.mu.Unlock()
	if !ok {
		return State{}, false
	}
	return c.State(), true
}

// Remove drops the controller for key, cancelling anything in flight.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	c, ok := r.controllers[key]
	delete(r.controllers, key)
	r.mu.Unlock()
	if ok {
		c.Reset()
	}
}

// Len returns the number of live controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Sweep evicts controllers idle since before now-IdleTTL. Controllers with
// a submission in flight are kept. Returns the number evicted.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, c := range r.controllers {
		if c.busy() || c.idleSince().After(cutoff) {
			continue
		}
		delete(r.controllers, key)
		evicted++
	}
	if evicted > 0 {
		r.logger.Debug("evicted idle submission controllers", "count", evicted)
	}
	return evicted
}

// Close stops the cleanup goroutine.
func (r *Registry) Close() error {
	if r.closed.CompareAndSwap(false, true) {
		close(r.stopCh)
	}
	return nil
}

// cleanupLoop periodically evicts idle controllers.
func (r *Registry) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			r.Sweep(now)
		case <-r.stopCh:
			return
		}
	}
}

// shortKey keeps session tokens out of logs.
func shortKey(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8]
}
