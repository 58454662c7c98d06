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
	"fmt"
	"net/url"
)

// PartnerService lists and verifies field installation partners.
//
// The listing endpoints are scoped server-side to the partners the
// calling admin manages; superadmins see everyone.
type PartnerService struct {
	backend Backend
}

// NewPartnerService creates a PartnerService on backend.
func NewPartnerService(backend Backend) *PartnerService {
	return &PartnerService{backend: backend}
}

// List returns every partner assigned to the calling admin, verified
// or not.
func (s *PartnerService) List(ctx context.Context) ([]Personnel, error) {
	var out []Personnel
	if err := s.backend.Get(ctx, "/admin/ips", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListApproved returns only ID-verified partners, the set eligible
// for job assignment.
func (s *PartnerService) ListApproved(ctx context.Context) ([]Personnel, error) {
	var out []Personnel
	if err := s.backend.Get(ctx, "/admin/ips/approved", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Verify marks the partner with the given phone number as fully
// verified, setting every verification flag at once. Unknown phone
// numbers are a 404.
func (s *PartnerService) Verify(ctx context.Context, phoneNumber string) (*VerifyResult, error) {
	if phoneNumber == "" {
		return nil, &ValidationError{Resource: "partner verify", Fields: []string{"PhoneNumber (required)"}}
	}
	var out VerifyResult
	path := fmt.Sprintf("/admin/verify-ip/%s", url.PathEscape(phoneNumber))
	if err := s.backend.Post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
