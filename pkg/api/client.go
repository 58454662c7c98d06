// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api is the HTTP adapter between the dashboard and the admin
// backend.
//
// Every outbound request flows through one Client, which applies the
// base URL, attaches credentials, stamps an X-Request-ID, retries
// transient failures with exponential backoff, and maps failures into
// a small error taxonomy (TransportError, APIError, ErrAuthExpired).
//
// # Architecture
//
//	Resource accessor → Client.Get/Post/... → HTTPClient interface → http.Client
//	                           ↓
//	                    retry + backoff + 401 interception
//
// Retry behavior is explicit configuration, not library defaults:
// callers pass a RetryPolicy with the retry budget, the backoff base,
// and the retryable-status predicate, so each can be tested on its own.
//
// # File Organization
//
// This file follows optimal Go code style:
//  1. Interfaces (contracts first)
//  2. Configuration structs
//  3. Implementation structs
//  4. Constructor functions
//  5. Methods on structs
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// INTERFACES
// =============================================================================

// HTTPClient abstracts the transport so tests can substitute a mock.
//
// # Description
//
// Accepts standard *http.Request objects created via
// http.NewRequestWithContext and returns the raw response. *http.Client
// satisfies this directly; tests provide function-field mocks.
//
// # Examples
//
//	type mockHTTPClient struct {
//	    DoFunc func(*http.Request) (*http.Response, error)
//	}
//
//	func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
//	    return m.DoFunc(req)
//	}
//
// # Limitations
//
//   - Only Do is required; convenience verbs live on Client
//
// # Assumptions
//
//   - Implementations honor the request's context
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CredentialSource supplies the current auth token per request.
//
// Token returns ok=false when no session exists; the request is then
// sent unauthenticated. The session store implements this.
type CredentialSource interface {
	Token() (token string, ok bool)
}

// =============================================================================
// CONFIGURATION STRUCTS
// =============================================================================

// RetryPolicy makes every retry knob an explicit value.
//
// # Fields
//
//   - MaxRetries: retry budget after the first attempt. Default: 3.
//   - BackoffBase: first retry delay; later attempts double it. Default: 500ms.
//   - BackoffMax: ceiling for any single delay. Default: 8s.
//   - Jitter: random fraction (0..1) applied to each delay. Default: 0.25.
//   - RetryableStatus: predicate deciding which HTTP statuses are worth
//     retrying. Default: any 5xx.
//
// Network-level failures are always retried within the budget. HTTP
// statuses are retried only when RetryableStatus says so AND the method
// is idempotent; a POST that reached the server is never replayed.
type RetryPolicy struct {
	MaxRetries      int
	BackoffBase     time.Duration
	BackoffMax      time.Duration
	Jitter          float64
	RetryableStatus func(status int) bool
}

// DefaultRetryPolicy returns the production retry configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		BackoffBase:     500 * time.Millisecond,
		BackoffMax:      8 * time.Second,
		Jitter:          0.25,
		RetryableStatus: func(status int) bool { return status >= 500 && status <= 599 },
	}
}

// ClientConfig holds configuration for the backend client.
//
// # Fields
//
//   - BaseURL: Required. Backend URL without trailing slash.
//   - Timeout: Optional. Per-request cap. Default: 30s.
//   - Credentials: Optional. Auth token source; nil sends anonymous requests.
//   - Retry: Optional. Zero value adopts DefaultRetryPolicy.
//   - OnAuthExpired: Optional. Fired once per expiry episode when the
//     backend returns 401. Typically wired to clear the saved session
//     and prompt for login.
type ClientConfig struct {
	BaseURL       string
	Timeout       time.Duration
	Credentials   CredentialSource
	Retry         RetryPolicy
	OnAuthExpired func()
}

// =============================================================================
// IMPLEMENTATION STRUCTS
// =============================================================================

// Client executes JSON requests against the admin backend.
//
// # Thread Safety
//
// Safe for concurrent use. The only mutable state is the auth-expiry
// latch, which is an atomic.
type Client struct {
	http          HTTPClient
	baseURL       string
	creds         CredentialSource
	retry         RetryPolicy
	onAuthExpired func()

	// authExpired latches after the first 401 so the hook fires once
	// per expiry episode. A later authenticated success resets it.
	authExpired atomic.Bool
}

// =============================================================================
// CONSTRUCTOR FUNCTIONS
// =============================================================================

// New creates a Client with a production http.Client.
//
// # Inputs
//
//   - config: Client configuration. Only BaseURL is required.
//
// # Outputs
//
//   - *Client: Ready-to-use backend client.
//
// # Examples
//
//	client := api.New(api.ClientConfig{
//	    BaseURL:     "http://localhost:8000",
//	    Credentials: store,
//	})
func New(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return NewWithClient(&http.Client{Timeout: timeout}, config)
}

// NewWithClient creates a Client with an injected transport.
//
// Use this constructor for testing with mock clients.
func NewWithClient(httpClient HTTPClient, config ClientConfig) *Client {
	retry := config.Retry
	defaults := DefaultRetryPolicy()
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 0
	}
	if retry.BackoffBase <= 0 {
		retry.BackoffBase = defaults.BackoffBase
	}
	if retry.BackoffMax <= 0 {
		retry.BackoffMax = defaults.BackoffMax
	}
	if retry.Jitter <= 0 || retry.Jitter > 1 {
		retry.Jitter = defaults.Jitter
	}
	if retry.RetryableStatus == nil {
		retry.RetryableStatus = defaults.RetryableStatus
	}

	return &Client{
		http:          httpClient,
		baseURL:       strings.TrimRight(config.BaseURL, "/"),
		creds:         config.Credentials,
		retry:         retry,
		onAuthExpired: config.OnAuthExpired,
	}
}

// =============================================================================
// REQUEST METHODS
// =============================================================================

// Get issues a GET and decodes the JSON response into out.
//
// Description:
//
//	Query parameters are encoded onto the path. Pass nil for out to
//	discard the response body.
//
// Inputs:
//   - ctx: Context for cancellation/timeout.
//   - path: Path relative to the base URL, e.g. "/jobs".
//   - query: Optional query parameters.
//   - out: Optional destination for the decoded JSON body.
//
// Outputs:
//   - error: TransportError, APIError, ErrAuthExpired, or decode failure.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// PostWithCookies issues a POST and also returns the response cookies.
//
// Login-style endpoints deliver credentials via Set-Cookie rather than
// the body; this variant surfaces them alongside the decoded response.
func (c *Client) PostWithCookies(ctx context.Context, path string, body, out any) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	err := c.doCapture(ctx, http.MethodPost, path, nil, body, out, &cookies)
	return cookies, err
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch issues a PATCH with a JSON body and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// =============================================================================
// REQUEST EXECUTION
// =============================================================================

// do runs one logical request through the retry loop.
//
// Description:
//
//	Marshals the body once, then attempts the request up to
//	1+MaxRetries times. Network failures are always retry candidates;
//	HTTP statuses only when the policy's predicate accepts them and
//	the method is idempotent. A 401 short-circuits everything.
//
// Limitations:
//   - The request body must be JSON-marshalable; streaming bodies are
//     not supported.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.doCapture(ctx, method, path, query, body, out, nil)
}

// doCapture is do with an optional cookie sink for the final response.
func (c *Client) doCapture(ctx context.Context, method, path string, query url.Values, body, out any, cookies *[]*http.Cookie) error {
	requestID := uuid.New().String()
	op := fmt.Sprintf("%s %s", method, path)
	targetURL := c.baseURL + path
	if len(query) > 0 {
		targetURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			slog.Debug("retrying backend request",
				"request_id", requestID,
				"op", op,
				"attempt", attempt,
			)
		}

		done, err := c.attempt(ctx, method, targetURL, op, requestID, payload, out, cookies)
		if done {
			return err
		}
		lastErr = err

		if attempt >= c.retry.MaxRetries {
			break
		}
		if !c.sleepWithContext(ctx, c.backoffDelay(attempt)) {
			return &TransportError{Op: op, URL: targetURL, Err: ctx.Err()}
		}
	}

	slog.Warn("backend request failed after retries",
		"request_id", requestID,
		"op", op,
		"retries", c.retry.MaxRetries,
		"error", lastErr,
	)
	return lastErr
}

// attempt executes a single try. done=true means the result is final
// (success, non-retryable error, or context cancellation); done=false
// asks the caller to back off and try again with err as the candidate
// final error.
func (c *Client) attempt(ctx context.Context, method, targetURL, op, requestID string, payload []byte, out any, cookies *[]*http.Cookie) (done bool, err error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, targetURL, bodyReader)
	if err != nil {
		return true, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.attachCredentials(req)

	resp, err := c.http.Do(req)
	if err != nil {
		terr := &TransportError{Op: op, URL: targetURL, Err: err}
		// Cancellation is the caller's decision, not a transient fault.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return true, terr
		}
		slog.Debug("backend request transport failure",
			"request_id", requestID,
			"op", op,
			"error", err,
		)
		return false, terr
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Error("failed to close response body", "error", cerr)
		}
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return true, c.handleAuthExpired(op, requestID)
	}

	if resp.StatusCode >= 400 {
		apiErr := c.readAPIError(resp, requestID)
		if c.retry.RetryableStatus(resp.StatusCode) && isIdempotent(method) {
			return false, apiErr
		}
		return true, apiErr
	}

	// Credentials evidently work again; unlatch the expiry episode.
	c.authExpired.Store(false)

	if cookies != nil {
		*cookies = resp.Cookies()
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return true, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return true, nil
}

// handleAuthExpired fires the expiry hook at most once per episode.
func (c *Client) handleAuthExpired(op, requestID string) error {
	if c.authExpired.CompareAndSwap(false, true) {
		slog.Info("backend rejected credentials, session expired",
			"request_id", requestID,
			"op", op,
		)
		if c.onAuthExpired != nil {
			c.onAuthExpired()
		}
	}
	return fmt.Errorf("%s: %w", op, ErrAuthExpired)
}

// readAPIError parses the server's error payload into an APIError.
//
// The backend reports failures as {"detail": "..."}; detail may also be
// a structured validation payload, which is surfaced as compact JSON.
func (c *Client) readAPIError(resp *http.Response, requestID string) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, RequestID: requestID}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(bodyBytes, &envelope); err == nil {
		switch {
		case len(envelope.Detail) > 0:
			var detail string
			if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
				apiErr.Message = detail
			} else {
				apiErr.Message = string(envelope.Detail)
			}
		case envelope.Message != "":
			apiErr.Message = envelope.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(bodyBytes))
	}
	return apiErr
}

// attachCredentials adds the session token to the request.
//
// The backend reads the access_token cookie (value "Bearer <jwt>", the
// same shape it sets at login); the Authorization header is attached as
// well for proxies that expect it.
func (c *Client) attachCredentials(req *http.Request) {
	if c.creds == nil {
		return
	}
	token, ok := c.creds.Token()
	if !ok || token == "" {
		return
	}
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "Bearer " + token})
	req.Header.Set("Authorization", "Bearer "+token)
}

// =============================================================================
// BACKOFF HELPERS
// =============================================================================

// backoffDelay computes the jittered exponential delay for a retry.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retry.BackoffBase << uint(attempt)
	if delay > c.retry.BackoffMax || delay <= 0 {
		delay = c.retry.BackoffMax
	}
	// Jitter spreads out clients retrying in lockstep.
	jitterRange := float64(delay) * c.retry.Jitter
	jittered := float64(delay) - jitterRange/2 + rand.Float64()*jitterRange
	return time.Duration(jittered)
}

// sleepWithContext waits for the duration unless the context ends first.
// Returns false when interrupted.
func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// isIdempotent reports whether a method may be safely replayed once it
// has reached the server.
func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}
