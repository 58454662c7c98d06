// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"time"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/api"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/session"
)

// healthReport is the combined backend and session probe behind the
// status command (the dashboard reuses it for its status line).
type healthReport struct {
	BaseURL    string        `json:"base_url"`
	Reachable  bool          `json:"reachable"`
	Latency    time.Duration `json:"latency_ms"`
	Service    string        `json:"service,omitempty"`
	Error      string        `json:"error,omitempty"`
	LoggedIn   bool          `json:"logged_in"`
	Email      string        `json:"email,omitempty"`
	Expired    bool          `json:"expired,omitempty"`
	ExpiresAt  time.Time     `json:"expires_at,omitempty"`
	SessionErr string        `json:"session_error,omitempty"`
}

// checkHealth probes GET /health and inspects the saved session
// without touching the network for the latter.
func checkHealth(ctx context.Context, a *app) healthReport {
	report := healthReport{BaseURL: a.baseURL}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	started := time.Now()
	err := a.client.Get(probeCtx, "/health", nil, &body)
	report.Latency = time.Since(started).Round(time.Millisecond)
	if err != nil {
		report.Error = err.Error()
		var apiErr *api.APIError
		// Any HTTP answer means the backend is up, even an error one.
		report.Reachable = errors.As(err, &apiErr)
	} else {
		report.Reachable = true
		report.Service = body.Service
	}

	current, err := a.sessions.Load()
	switch {
	case errors.Is(err, session.ErrNoSession):
		// Not logged in; nothing more to report.
	case err != nil:
		report.SessionErr = err.Error()
	default:
		report.LoggedIn = true
		report.Email = current.Email
		if claims, err := session.Introspect(current.Token); err == nil {
			report.ExpiresAt = claims.ExpiresAt
			report.Expired = current.Expired(time.Now())
		}
	}
	return report
}
