// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Configuration errors returned by New.
var (
	ErrNoEndpoint      = errors.New("translate: endpoint is not configured")
	ErrInvalidEndpoint = errors.New("translate: endpoint must be an absolute http(s) URL")
)

// Failure classes. Every error returned by Client.Translate matches exactly
// one of them with errors.Is.
var (
	ErrNetwork   = errors.New("translate: network error")
	ErrServer    = errors.New("translate: server error")
	ErrMalformed = errors.New("translate: malformed response")
)

// Kind classifies a failed translation round trip.
type Kind int

const (
	// KindNetwork covers transport failures, timeouts and cancellation.
	KindNetwork Kind = iota + 1
	// KindServer is a non-2xx response from the endpoint.
	KindServer
	// KindMalformed is a 2xx response whose body is not a JSON object
	// carrying a string translated_content field.
	KindMalformed
)

// String returns the machine-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_error"
	case KindServer:
		return "server_error"
	case KindMalformed:
		return "malformed_response"
	default:
		return "unknown_error"
	}
}

// Error is the typed failure returned by Client.Translate.
type Error struct {
	Kind       Kind
	StatusCode int // set for KindServer and KindMalformed
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("translate: %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("translate: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the failure class sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrServer:
		return e.Kind == KindServer
	case ErrMalformed:
		return e.Kind == KindMalformed
	}
	return false
}

// KindOf returns the Kind of err, or 0 if err is not a translation failure.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// IsTimeout reports whether err was caused by a deadline, either the
// client timeout or the caller's context.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsCanceled reports whether err was caused by the caller cancelling the
// request context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
