// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fieldsvc

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/api"
)

// Backend is the HTTP surface accessors call through. *api.Client
// satisfies it; tests substitute a recording fake.
//
// # Description
//
// The six verbs mirror the adapter's request methods one to one.
// Accessors never build *http.Request values themselves; the adapter
// owns credentials, retries, and error classification, and accessors
// own paths, parameters, and response shapes.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	PostWithCookies(ctx context.Context, path string, body, out any) ([]*http.Cookie, error)
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Compile-time interface implementation check.
var _ Backend = (*api.Client)(nil)

// Services bundles one accessor per backend resource, all sharing the
// same Backend.
type Services struct {
	Auth         *AuthService
	Jobs         *JobService
	Partners     *PartnerService
	Analytics    *AnalyticsService
	Checklists   *ChecklistService
	Requisitions *RequisitionService
}

// New wires every resource accessor to backend.
func New(backend Backend) *Services {
	return &Services{
		Auth:         NewAuthService(backend),
		Jobs:         NewJobService(backend),
		Partners:     NewPartnerService(backend),
		Analytics:    NewAnalyticsService(backend),
		Checklists:   NewChecklistService(backend),
		Requisitions: NewRequisitionService(backend),
	}
}
