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
)

// ChecklistService manages checklist templates and their items, and
// links templates onto jobs.
type ChecklistService struct {
	backend Backend
}

// NewChecklistService creates a ChecklistService on backend.
func NewChecklistService(backend Backend) *ChecklistService {
	return &ChecklistService{backend: backend}
}

// List returns every checklist template.
func (s *ChecklistService) List(ctx context.Context) ([]Checklist, error) {
	var out []Checklist
	if err := s.backend.Get(ctx, "/checklists/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one template by id.
func (s *ChecklistService) Get(ctx context.Context, id int) (*Checklist, error) {
	var out Checklist
	if err := s.backend.Get(ctx, fmt.Sprintf("/checklists/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a new checklist template.
func (s *ChecklistService) Create(ctx context.Context, req ChecklistCreate) (*Checklist, error) {
	if err := checkRequest("checklist create", req); err != nil {
		return nil, err
	}
	var out Checklist
	if err := s.backend.Post(ctx, "/checklists/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddItem appends an item to a template.
func (s *ChecklistService) AddItem(ctx context.Context, req ChecklistItemCreate) (*ChecklistItem, error) {
	if err := checkRequest("checklist item", req); err != nil {
		return nil, err
	}
	var out ChecklistItem
	if err := s.backend.Post(ctx, "/checklists/items", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Link attaches a template to a job. Linking twice is acknowledged
// with "Already linked" rather than an error.
func (s *ChecklistService) Link(ctx context.Context, req ChecklistLink) (*MessageResponse, error) {
	if err := checkRequest("checklist link", req); err != nil {
		return nil, err
	}
	var out MessageResponse
	if err := s.backend.Post(ctx, "/checklists/link", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JobItems returns the items of every checklist linked to a job, in
// template position order.
func (s *ChecklistService) JobItems(ctx context.Context, jobID int) ([]ChecklistItem, error) {
	var out []ChecklistItem
	path := fmt.Sprintf("/checklists/job/%d/items", jobID)
	if err := s.backend.Get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
