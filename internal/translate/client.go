// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate is the HTTP client for the remote Bhashini translation
// endpoint. One call to Translate is exactly one POST: no retries, no
// backoff and no caching of results.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	// DefaultTimeout bounds a single round trip when Config.Timeout is zero.
	DefaultTimeout = 30 * time.Second

	// FieldTranslatedContent is the response field holding the translation.
	FieldTranslatedContent = "translated_content"

	// maxResponseSize caps how much of the response body is read.
	maxResponseSize = 1 << 20

	// maxErrorSnippet caps how much of a failed response body ends up in errors.
	maxErrorSnippet = 256
)

// Request is the body POSTed to the endpoint. A nil Source or Target is left
// out of the JSON entirely; the client does not validate codes.
type Request struct {
	Source  *int   `json:"source,omitempty"`
	Content string `json:"content"`
	Target  *int   `json:"target,omitempty"`
}

// Response is a successful reply from the endpoint.
type Response struct {
	// TranslatedContent is the translated_content field of the payload.
	TranslatedContent string `json:"translated_content"`
	// Raw is the payload exactly as received.
	Raw json.RawMessage `json:"-"`
}

// Config configures a Client.
type Config struct {
	Endpoint   string
	Timeout    time.Duration // per attempt; DefaultTimeout when zero, none when negative
	HTTPClient *http.Client  // http.DefaultClient when nil
	Logger     *slog.Logger  // slog.Default() when nil
}

// Client sends translation requests to a single configured endpoint.
// It is safe for concurrent use and keeps no state between calls.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint:   endpoint,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Translate performs one round trip. On failure the returned error is an
// *Error whose Kind tells network, server and malformed-response failures
// apart.
func (c *Client) Translate(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("translate: encoding request: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:       KindServer,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", snippet(data)),
		}
	}

	if !gjson.ValidBytes(data) {
		return nil, &Error{Kind: KindMalformed, StatusCode: resp.StatusCode, Err: fmt.Errorf("invalid JSON: %s", snippet(data))}
	}
	payload := gjson.ParseBytes(data)
	if !payload.IsObject() {
		return nil, &Error{Kind: KindMalformed, StatusCode: resp.StatusCode, Err: fmt.Errorf("payload is not an object")}
	}
	field := payload.Get(FieldTranslatedContent)
	if !field.Exists() || field.Type != gjson.String {
		return nil, &Error{Kind: KindMalformed, StatusCode: resp.StatusCode, Err: fmt.Errorf("missing string field %q", FieldTranslatedContent)}
	}

	return &Response{
		TranslatedContent: field.String(),
		Raw:               json.RawMessage(data),
	}, nil
}

// Fetch translates content and never returns an error: failures are logged
// and reported as a nil response. Callers must treat nil as failure, which
// they cannot tell apart from a missing payload. Prefer Translate.
func (c *Client) Fetch(ctx context.Context, source *int, content string, target *int) *Response {
	resp, err := c.Translate(ctx, Request{Source: source, Content: content, Target: target})
	if err != nil {
		c.logger.Error("translation request failed",
			"endpoint", c.endpoint,
			"kind", KindOf(err).String(),
			"error", err,
		)
		return nil
	}
	c.logger.Debug("translation response", "payload", string(resp.Raw))
	return resp
}

// requestID reuses the inbound chi request id when there is one.
func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorSnippet {
		s = s[:maxErrorSnippet] + "..."
	}
	if s == "" {
		return "<empty body>"
	}
	return s
}
