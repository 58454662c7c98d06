// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stub

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

// jobID parses the :id path parameter.
func jobID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid job id %q", c.Param("id"))
		return 0, false
	}
	return id, true
}

// =============================================================================
// JOB CRUD
// =============================================================================

func (s *Server) handleListJobs(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.Query("status")
	jobType := c.Query("type")
	search := strings.ToLower(c.Query("search"))

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	matches := func(j *fieldsvc.Job) bool {
		if status != "" && j.Status != status {
			return false
		}
		if jobType != "" && j.Type != jobType {
			return false
		}
		if search != "" {
			hit := strings.HasPrefix(strings.ToLower(j.Name), search) ||
				strings.HasPrefix(strings.ToLower(j.CustomerName), search) ||
				strings.HasPrefix(strings.ToLower(j.City), search)
			if !hit {
				return false
			}
		}
		return true
	}

	out := []fieldsvc.Job{}
	seen := 0
	for _, id := range ids {
		j := s.jobs[id]
		if !matches(j) {
			continue
		}
		if seen < skip {
			seen++
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, *j)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		errDetail(c, http.StatusNotFound, "Job %d not found", id)
		return
	}
	c.JSON(http.StatusOK, *j)
}

func (s *Server) handleCreateJob(c *gin.Context) {
	var req fieldsvc.JobCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid job payload: %v", err)
		return
	}
	if req.Name == "" {
		errDetail(c, http.StatusUnprocessableEntity, "Job name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job := &fieldsvc.Job{
		ID:                s.id(),
		Name:              req.Name,
		CustomerName:      req.CustomerName,
		CustomerPhone:     req.CustomerPhone,
		Address:           req.Address,
		City:              req.City,
		Pincode:           req.Pincode,
		Type:              req.Type,
		Rate:              req.Rate,
		Size:              req.Size,
		StartDate:         req.StartDate,
		ChecklistLink:     req.ChecklistLink,
		GoogleMapLink:     req.GoogleMapLink,
		AdditionalExpense: req.AdditionalExpense,
		Status:            fieldsvc.JobStatusCreated,
	}
	if !req.DeliveryDate.IsZero() {
		d := req.DeliveryDate
		job.DeliveryDate = &d
	}

	// Validate everything before writing any shared state, so a
	// rejected request leaves no half-created records behind.
	for _, checklistID := range req.ChecklistIDs {
		if _, ok := s.checklists[checklistID]; !ok {
			errDetail(c, http.StatusBadRequest, "Checklist %d not found", checklistID)
			return
		}
	}
	if req.AssignedIPID != nil {
		if !s.assignPartnerLocked(c, job, *req.AssignedIPID) {
			return
		}
	}
	for _, checklistID := range req.ChecklistIDs {
		s.jobLinks = append(s.jobLinks, fieldsvc.JobChecklist{ID: s.id(), JobID: job.ID, ChecklistID: checklistID})
	}

	s.jobs[job.ID] = job
	s.appendHistoryLocked(job.ID, fieldsvc.JobStatusCreated, "Job created")
	c.JSON(http.StatusCreated, *job)
}

// assignPartnerLocked points a job at a partner, mirroring the
// backend's assignment rules. Writes the HTTP error itself and
// returns false on rejection. Caller holds s.mu.
func (s *Server) assignPartnerLocked(c *gin.Context, job *fieldsvc.Job, partnerID int) bool {
	p, ok := s.partners[partnerID]
	if !ok {
		errDetail(c, http.StatusBadRequest, "IP %d not found", partnerID)
		return false
	}
	if !p.IsIDVerified {
		errDetail(c, http.StatusBadRequest, "IP %s is not ID-verified", p.PhoneNumber)
		return false
	}
	if p.IsAssigned && (job.AssignedIPID == nil || *job.AssignedIPID != partnerID) {
		errDetail(c, http.StatusBadRequest, "IP %s is already assigned to another job", p.PhoneNumber)
		return false
	}
	id := p.ID
	job.AssignedIPID = &id
	job.AssignedIP = &fieldsvc.IPSummary{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		PhoneNumber: p.PhoneNumber,
		IsAssigned:  p.IsAssigned,
	}
	return true
}

func (s *Server) handleUpdateJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	var req fieldsvc.JobUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid job payload: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		errDetail(c, http.StatusNotFound, "Job %d not found", id)
		return
	}

	// Stage the changes on a copy so a rejected assignment leaves the
	// stored job untouched.
	updated := *job
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.CustomerName != nil {
		updated.CustomerName = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		updated.CustomerPhone = *req.CustomerPhone
	}
	if req.Address != nil {
		updated.Address = *req.Address
	}
	if req.City != nil {
		updated.City = *req.City
	}
	if req.Pincode != nil {
		updated.Pincode = *req.Pincode
	}
	if req.Type != nil {
		updated.Type = *req.Type
	}
	if req.Rate != nil {
		updated.Rate = *req.Rate
	}
	if req.Size != nil {
		updated.Size = *req.Size
	}
	if req.StartDate != nil {
		updated.StartDate = req.StartDate
	}
	if req.DeliveryDate != nil {
		updated.DeliveryDate = req.DeliveryDate
	}
	if req.ChecklistLink != nil {
		updated.ChecklistLink = *req.ChecklistLink
	}
	if req.GoogleMapLink != nil {
		updated.GoogleMapLink = *req.GoogleMapLink
	}
	if req.AdditionalExpense != nil {
		updated.AdditionalExpense = *req.AdditionalExpense
	}
	var release *int
	if req.AssignedIPID != nil {
		prev := updated.AssignedIPID
		if *req.AssignedIPID == 0 {
			updated.AssignedIPID = nil
			updated.AssignedIP = nil
		} else if !s.assignPartnerLocked(c, &updated, *req.AssignedIPID) {
			return
		}
		// Swapping or unassigning releases the previous partner.
		if prev != nil && (updated.AssignedIPID == nil || *updated.AssignedIPID != *prev) {
			release = prev
		}
	}
	statusChanged := req.Status != nil && *req.Status != updated.Status
	if statusChanged {
		updated.Status = *req.Status
	}

	*job = updated
	if release != nil {
		if old, ok := s.partners[*release]; ok {
			old.IsAssigned = false
		}
	}
	if statusChanged {
		s.appendHistoryLocked(job.ID, job.Status, "Status updated")
	}

	c.JSON(http.StatusOK, *job)
}

func (s *Server) handleDeleteJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		errDetail(c, http.StatusNotFound, "Job %d not found", id)
		return
	}

	// Deleting releases the partner and cascades the job's records.
	if job.AssignedIPID != nil {
		if p, ok := s.partners[*job.AssignedIPID]; ok {
			p.IsAssigned = false
		}
	}
	delete(s.jobs, id)
	delete(s.history, id)
	kept := s.jobLinks[:0]
	for _, link := range s.jobLinks {
		if link.JobID != id {
			kept = append(kept, link)
		}
	}
	s.jobLinks = kept

	c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// transitionHandler builds the legacy (non-OTP) lifecycle handler for
// one action. Jobs whose customer has a phone on file must use the
// OTP endpoints for start and finish.
func (s *Server) transitionHandler(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := jobID(c)
		if !ok {
			return
		}
		var note fieldsvc.StatusNote
		// The note body is optional.
		_ = c.ShouldBindJSON(&note)

		s.mu.Lock()
		defer s.mu.Unlock()
		job, ok := s.jobs[id]
		if !ok {
			errDetail(c, http.StatusNotFound, "Job %d not found", id)
			return
		}
		if (action == "start" || action == "finish") && job.CustomerPhone != "" {
			errDetail(c, http.StatusBadRequest, "Customer has a phone on file; use the OTP flow to %s this job", action)
			return
		}
		if !s.applyTransitionLocked(c, job, action, note.Notes) {
			return
		}
		c.JSON(http.StatusOK, *job)
	}
}

// applyTransitionLocked enforces the lifecycle rules and mutates the
// job. Writes the HTTP error itself and returns false on rejection.
// Caller holds s.mu.
func (s *Server) applyTransitionLocked(c *gin.Context, job *fieldsvc.Job, action, notes string) bool {
	switch action {
	case "start":
		if job.Status != fieldsvc.JobStatusCreated && job.Status != fieldsvc.JobStatusPaused {
			errDetail(c, http.StatusBadRequest, "Job cannot start from status %q", job.Status)
			return false
		}
		if job.AssignedIPID == nil {
			errDetail(c, http.StatusBadRequest, "Job has no assigned IP")
			return false
		}
		resumed := job.Status == fieldsvc.JobStatusPaused
		job.Status = fieldsvc.JobStatusInProgress
		if p, ok := s.partners[*job.AssignedIPID]; ok {
			p.IsAssigned = true
		}
		if notes == "" {
			if resumed {
				notes = "Job resumed"
			} else {
				notes = "Job started"
			}
		}
	case "pause":
		if job.Status != fieldsvc.JobStatusInProgress {
			errDetail(c, http.StatusBadRequest, "Job cannot pause from status %q", job.Status)
			return false
		}
		job.Status = fieldsvc.JobStatusPaused
		s.releasePartnerLocked(job)
		if notes == "" {
			notes = "Job paused"
		}
	case "finish":
		if job.Status != fieldsvc.JobStatusInProgress {
			errDetail(c, http.StatusBadRequest, "Job cannot finish from status %q", job.Status)
			return false
		}
		job.Status = fieldsvc.JobStatusCompleted
		s.releasePartnerLocked(job)
		if notes == "" {
			notes = "Job completed"
		}
	default:
		errDetail(c, http.StatusBadRequest, "Unknown action %q", action)
		return false
	}

	s.appendHistoryLocked(job.ID, job.Status, notes)
	return true
}

// releasePartnerLocked clears the assignment flag on the job's
// partner. Caller holds s.mu.
func (s *Server) releasePartnerLocked(job *fieldsvc.Job) {
	if job.AssignedIPID == nil {
		return
	}
	if p, ok := s.partners[*job.AssignedIPID]; ok {
		p.IsAssigned = false
	}
}

// =============================================================================
// OTP FLOW
// =============================================================================

// otpRequestHandler builds the request-OTP handler for one end of the
// lifecycle ("start" or "end").
func (s *Server) otpRequestHandler(end string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := jobID(c)
		if !ok {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		job, ok := s.jobs[id]
		if !ok {
			errDetail(c, http.StatusNotFound, "Job %d not found", id)
			return
		}
		if job.CustomerPhone == "" {
			errDetail(c, http.StatusBadRequest, "Job has no customer phone for OTP delivery")
			return
		}

		// A real backend texts a random code; the stub always issues
		// the fixed dev code.
		s.pendingOTP[otpKey(id, end)] = DevOTP
		c.JSON(http.StatusOK, fieldsvc.OTPResponse{
			Success: true,
			Message: "OTP sent to customer phone " + job.CustomerPhone,
		})
	}
}

// otpVerifyHandler builds the verify-OTP handler: code check, then
// the corresponding lifecycle transition in one call.
func (s *Server) otpVerifyHandler(end string) gin.HandlerFunc {
	action := "start"
	if end == "end" {
		action = "finish"
	}
	return func(c *gin.Context) {
		id, ok := jobID(c)
		if !ok {
			return
		}
		var req fieldsvc.OTPVerify
		if err := c.ShouldBindJSON(&req); err != nil {
			errDetail(c, http.StatusUnprocessableEntity, "Invalid OTP payload: %v", err)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		job, ok := s.jobs[id]
		if !ok {
			errDetail(c, http.StatusNotFound, "Job %d not found", id)
			return
		}
		key := otpKey(id, end)
		expected, pending := s.pendingOTP[key]
		if !pending {
			errDetail(c, http.StatusBadRequest, "No OTP requested for this job")
			return
		}
		if req.OTP != expected {
			errDetail(c, http.StatusBadRequest, "Invalid or expired OTP")
			return
		}
		if !s.applyTransitionLocked(c, job, action, req.Notes) {
			return
		}
		// Single use.
		delete(s.pendingOTP, key)
		if end == "start" {
			job.StartOTPVerified = true
		} else {
			job.EndOTPVerified = true
		}
		c.JSON(http.StatusOK, *job)
	}
}

// =============================================================================
// HISTORY
// =============================================================================

func (s *Server) handleJobHistory(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		errDetail(c, http.StatusNotFound, "Job %d not found", id)
		return
	}

	logs := append([]fieldsvc.JobStatusLog(nil), s.history[id]...)
	// Newest first. Ids break timestamp ties, which happen whenever
	// two transitions land within the same second.
	sort.Slice(logs, func(i, k int) bool {
		if !logs[i].Timestamp.Equal(logs[k].Timestamp.Time) {
			return logs[i].Timestamp.After(logs[k].Timestamp.Time)
		}
		return logs[i].ID > logs[k].ID
	})
	c.JSON(http.StatusOK, logs)
}
