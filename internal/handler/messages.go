// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/bhashini-go/internal/submission"
	"github.com/olegiv/bhashini-go/internal/translate"
)

// DefaultMaxContent is the longest text, in characters, accepted for
// translation.
const DefaultMaxContent = 5000

// API error codes beyond the failure reasons reported by submissions.
const (
	codeInvalidRequest = "invalid_request"
	codeContentTooLong = "content_too_long"
	codeSuperseded     = "superseded"
)

// reasonMessageKey maps a submission failure reason to its UI string.
func reasonMessageKey(reason string) string {
	switch reason {
	case translate.KindNetwork.String():
		return "ErrorNetwork"
	case translate.KindServer.String():
		return "ErrorServer"
	case translate.KindMalformed.String():
		return "ErrorMalformed"
	case submission.ReasonTimeout:
		return "ErrorTimeout"
	default:
		return "ErrorUnknown"
	}
}

// reasonStatus maps a submission failure reason to the API status code.
func reasonStatus(reason string) int {
	switch reason {
	case submission.ReasonTimeout:
		return http.StatusGatewayTimeout
	case translate.KindNetwork.String(), translate.KindServer.String(), translate.KindMalformed.String():
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
