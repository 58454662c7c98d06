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

// JobService reads and mutates dispatch jobs.
//
// # Description
//
// Covers the full job surface: paginated listing with filters, CRUD,
// the start/pause/finish lifecycle in both its plain and OTP-verified
// forms, status history, and admin approval of per-job checklist
// items.
//
// Lifecycle rules are enforced server-side and surface as 400s:
// starting needs an assigned partner and a "created" or "paused"
// status, pausing and finishing need "in_progress", and jobs with a
// customer phone on file must go through the OTP endpoints.
type JobService struct {
	backend Backend
}

// NewJobService creates a JobService on backend.
func NewJobService(backend Backend) *JobService {
	return &JobService{backend: backend}
}

// List fetches one page of jobs.
//
// # Inputs
//   - ctx: Context for cancellation/timeout.
//   - params: Page/limit plus optional status, type, and search
//     filters. Page and limit default to 1 and DefaultPageSize.
//
// # Outputs
//   - []Job: The page, possibly empty. A short page means the listing
//     is exhausted; the endpoint reports no total.
//   - error: Transport or server failure.
func (s *JobService) List(ctx context.Context, params JobListParams) ([]Job, error) {
	var out []Job
	if err := s.backend.Get(ctx, "/jobs", params.query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single job by id.
func (s *JobService) Get(ctx context.Context, id int) (*Job, error) {
	var out Job
	if err := s.backend.Get(ctx, fmt.Sprintf("/jobs/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create registers a new job. Referencing an already-assigned partner
// is rejected server-side with a 400.
func (s *JobService) Create(ctx context.Context, req JobCreate) (*Job, error) {
	if err := checkRequest("job create", req); err != nil {
		return nil, err
	}
	var out Job
	if err := s.backend.Post(ctx, "/jobs", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial update. Reassigning the partner of an
// in-progress job swaps the assignment flags server-side.
func (s *JobService) Update(ctx context.Context, id int, req JobUpdate) (*Job, error) {
	if err := checkRequest("job update", req); err != nil {
		return nil, err
	}
	var out Job
	if err := s.backend.Put(ctx, fmt.Sprintf("/jobs/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a job, releasing its partner assignment.
func (s *JobService) Delete(ctx context.Context, id int) error {
	var out MessageResponse
	return s.backend.Delete(ctx, fmt.Sprintf("/jobs/%d", id), &out)
}

// Start moves a created or paused job to in_progress. Fails with a
// 400 when the job's customer has a phone on file; those jobs go
// through the OTP flow instead.
func (s *JobService) Start(ctx context.Context, id int, notes string) (*Job, error) {
	return s.transition(ctx, id, "start", notes)
}

// Pause moves an in-progress job to paused and frees its partner.
func (s *JobService) Pause(ctx context.Context, id int, notes string) (*Job, error) {
	return s.transition(ctx, id, "pause", notes)
}

// Finish moves an in-progress job to completed and frees its partner.
// Jobs with a customer phone must use the OTP flow.
func (s *JobService) Finish(ctx context.Context, id int, notes string) (*Job, error) {
	return s.transition(ctx, id, "finish", notes)
}

func (s *JobService) transition(ctx context.Context, id int, action, notes string) (*Job, error) {
	var out Job
	path := fmt.Sprintf("/jobs/%d/%s", id, action)
	if err := s.backend.Post(ctx, path, StatusNote{Notes: notes}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestStartOTP sends a verification code to the job's customer
// ahead of starting. 400 when the job has no customer phone.
func (s *JobService) RequestStartOTP(ctx context.Context, id int) (*OTPResponse, error) {
	return s.requestOTP(ctx, id, "request-start-otp")
}

// RequestEndOTP sends a verification code ahead of finishing.
func (s *JobService) RequestEndOTP(ctx context.Context, id int) (*OTPResponse, error) {
	return s.requestOTP(ctx, id, "request-end-otp")
}

func (s *JobService) requestOTP(ctx context.Context, id int, action string) (*OTPResponse, error) {
	var out OTPResponse
	path := fmt.Sprintf("/jobs/%d/%s", id, action)
	if err := s.backend.Post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyStartOTP checks the customer's code and starts the job in one
// call. An invalid or expired code is a 400.
func (s *JobService) VerifyStartOTP(ctx context.Context, id int, req OTPVerify) (*Job, error) {
	return s.verifyOTP(ctx, id, "verify-start-otp", req)
}

// VerifyEndOTP checks the customer's code and finishes the job.
func (s *JobService) VerifyEndOTP(ctx context.Context, id int, req OTPVerify) (*Job, error) {
	return s.verifyOTP(ctx, id, "verify-end-otp", req)
}

func (s *JobService) verifyOTP(ctx context.Context, id int, action string, req OTPVerify) (*Job, error) {
	if err := checkRequest("otp verify", req); err != nil {
		return nil, err
	}
	var out Job
	path := fmt.Sprintf("/jobs/%d/%s", id, action)
	if err := s.backend.Post(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns the job's status log, newest first, including every
// pause and resume.
func (s *JobService) History(ctx context.Context, id int) ([]JobStatusLog, error) {
	var out []JobStatusLog
	if err := s.backend.Get(ctx, fmt.Sprintf("/jobs/%d/history", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApproveChecklistItem sets admin approval state and comment on one
// checklist item of a job.
func (s *JobService) ApproveChecklistItem(ctx context.Context, jobID, itemID int, req ItemStatusUpdate) (*ItemStatus, error) {
	var out ItemStatus
	path := fmt.Sprintf("/jobs/%d/checklists/items/%d/approve", jobID, itemID)
	if err := s.backend.Put(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
