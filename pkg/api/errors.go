// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrAuthExpired reports that the backend rejected our credentials.
//
// The client intercepts 401 responses globally: it fires the configured
// OnAuthExpired hook (once per expiry episode) and returns this sentinel
// wrapped in the call's error. Callers should route the user to login
// rather than render it as an ordinary failure.
var ErrAuthExpired = errors.New("session expired")

// TransportError wraps a network-level failure where no HTTP response
// was received (DNS, connect, timeout, connection reset).
//
// These are retried automatically before being surfaced. They are
// deliberately distinct from APIError so callers can tell "the backend
// said no" apart from "we never reached the backend".
type TransportError struct {
	Op  string // e.g. "GET /jobs"
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is an HTTP-status failure carrying the server's error payload.
type APIError struct {
	Status    int
	Message   string // server-provided detail, may be empty
	RequestID string // X-Request-ID sent with the failed request
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (%d)", e.Status)
	}
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// StatusOf returns the HTTP status behind err, or 0 when err is not an
// APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
