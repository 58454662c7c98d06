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
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/analytics"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

// =============================================================================
// PARTNERS
// =============================================================================

// partnersLocked returns all partners sorted by id. Caller holds s.mu.
func (s *Server) partnersLocked() []fieldsvc.Personnel {
	out := make([]fieldsvc.Personnel, 0, len(s.partners))
	for _, p := range s.partners {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

func (s *Server) handleListPartners(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.partnersLocked())
}

func (s *Server) handleListApprovedPartners(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []fieldsvc.Personnel{}
	for _, p := range s.partnersLocked() {
		if p.IsIDVerified {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleVerifyPartner(c *gin.Context) {
	phone := c.Param("phone")

	s.mu.Lock()
	defer s.mu.Unlock()
	var target *fieldsvc.Personnel
	for _, p := range s.partners {
		if p.PhoneNumber == phone {
			target = p
			break
		}
	}
	if target == nil {
		errDetail(c, http.StatusNotFound, "IP with phone %s not found", phone)
		return
	}

	// Verification sets every flag at once.
	target.IsVerified = true
	target.IsPANVerified = true
	target.IsBankDetailsVerified = true
	target.IsIDVerified = true
	now := fieldsvc.Time{Time: time.Now().UTC()}
	target.VerifiedAt = &now

	c.JSON(http.StatusOK, fieldsvc.VerifyResult{
		Message:               "IP verified successfully",
		PhoneNumber:           target.PhoneNumber,
		IsIDVerified:          true,
		IsVerified:            true,
		IsPANVerified:         true,
		IsBankDetailsVerified: true,
	})
}

// =============================================================================
// ANALYTICS
// =============================================================================

// jobsLocked snapshots all jobs sorted by id. Caller holds s.mu.
func (s *Server) jobsLocked() []fieldsvc.Job {
	out := make([]fieldsvc.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

func (s *Server) handlePayoutSummary(c *gin.Context) {
	period := c.DefaultQuery("period", fieldsvc.PeriodMonth)
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))
	quarter, _ := strconv.Atoi(c.Query("quarter"))
	week, _ := strconv.Atoi(c.Query("week"))

	start, end, err := analytics.DateRange(time.Now().UTC(), period, year, month, quarter, week)
	if err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "%v", err)
		return
	}

	s.mu.Lock()
	jobs := s.jobsLocked()
	s.mu.Unlock()

	c.JSON(http.StatusOK, analytics.Recompute(jobs, period, start, end))
}

func (s *Server) handleJobStages(c *gin.Context) {
	s.mu.Lock()
	jobs := s.jobsLocked()
	s.mu.Unlock()

	byStatus := map[string]*fieldsvc.JobStageStat{}
	order := []string{}
	for _, j := range jobs {
		stat, ok := byStatus[j.Status]
		if !ok {
			stat = &fieldsvc.JobStageStat{Status: j.Status}
			byStatus[j.Status] = stat
			order = append(order, j.Status)
		}
		stat.Count++
		stat.TotalPayout += fieldsvc.Number(analytics.JobPayout(j))
		stat.TotalAdditionalExpense += j.AdditionalExpense
	}
	sort.Strings(order)

	out := make([]fieldsvc.JobStageStat, 0, len(order))
	for _, status := range order {
		out = append(out, *byStatus[status])
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleIPPerformance(c *gin.Context) {
	s.mu.Lock()
	jobs := s.jobsLocked()
	s.mu.Unlock()

	byIP := map[int]*fieldsvc.PersonnelPayoutStat{}
	for _, j := range jobs {
		// Payout accrues to the partner on completion only.
		if j.Status != fieldsvc.JobStatusCompleted || j.AssignedIP == nil {
			continue
		}
		stat, ok := byIP[j.AssignedIP.ID]
		if !ok {
			stat = &fieldsvc.PersonnelPayoutStat{
				IPID:   j.AssignedIP.ID,
				IPName: j.AssignedIP.FullName(),
			}
			byIP[j.AssignedIP.ID] = stat
		}
		stat.JobCount++
		stat.TotalPayout += fieldsvc.Number(analytics.JobPayout(j))
		stat.TotalAdditionalExpense += j.AdditionalExpense
	}

	out := make([]fieldsvc.PersonnelPayoutStat, 0, len(byIP))
	for _, stat := range byIP {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].IPID < out[k].IPID })
	c.JSON(http.StatusOK, out)
}

// =============================================================================
// CHECKLISTS
// =============================================================================

func (s *Server) handleListChecklists(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fieldsvc.Checklist, 0, len(s.checklists))
	for _, cl := range s.checklists {
		out = append(out, *cl)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetChecklist(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid checklist id %q", c.Param("id"))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cl, ok := s.checklists[id]
	if !ok {
		errDetail(c, http.StatusNotFound, "Checklist %d not found", id)
		return
	}
	c.JSON(http.StatusOK, *cl)
}

func (s *Server) handleCreateChecklist(c *gin.Context) {
	var req fieldsvc.ChecklistCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid checklist payload: %v", err)
		return
	}
	if req.Name == "" {
		errDetail(c, http.StatusUnprocessableEntity, "Checklist name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := fieldsvc.Time{Time: time.Now().UTC()}
	cl := &fieldsvc.Checklist{
		ID:          s.id(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.checklists[cl.ID] = cl
	c.JSON(http.StatusCreated, *cl)
}

func (s *Server) handleAddChecklistItem(c *gin.Context) {
	var req fieldsvc.ChecklistItemCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid item payload: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checklists[req.ChecklistID]; !ok {
		errDetail(c, http.StatusNotFound, "Checklist %d not found", req.ChecklistID)
		return
	}
	now := fieldsvc.Time{Time: time.Now().UTC()}
	item := &fieldsvc.ChecklistItem{
		ID:          s.id(),
		ChecklistID: req.ChecklistID,
		Text:        req.Text,
		Position:    req.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.items[item.ID] = item
	c.JSON(http.StatusCreated, *item)
}

func (s *Server) handleLinkChecklist(c *gin.Context) {
	var req fieldsvc.ChecklistLink
	if err := c.ShouldBindJSON(&req); err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid link payload: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[req.JobID]; !ok {
		errDetail(c, http.StatusNotFound, "Job %d not found", req.JobID)
		return
	}
	if _, ok := s.checklists[req.ChecklistID]; !ok {
		errDetail(c, http.StatusNotFound, "Checklist %d not found", req.ChecklistID)
		return
	}
	for _, link := range s.jobLinks {
		if link.JobID == req.JobID && link.ChecklistID == req.ChecklistID {
			c.JSON(http.StatusOK, gin.H{"message": "Already linked"})
			return
		}
	}
	s.jobLinks = append(s.jobLinks, fieldsvc.JobChecklist{
		ID:          s.id(),
		JobID:       req.JobID,
		ChecklistID: req.ChecklistID,
		CreatedAt:   fieldsvc.Time{Time: time.Now().UTC()},
	})
	c.JSON(http.StatusOK, gin.H{"message": "Checklist linked to job"})
}

func (s *Server) handleJobChecklistItems(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid job id %q", c.Param("id"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		errDetail(c, http.StatusNotFound, "Job %d not found", id)
		return
	}

	linked := map[int]bool{}
	for _, link := range s.jobLinks {
		if link.JobID == id {
			linked[link.ChecklistID] = true
		}
	}
	out := []fieldsvc.ChecklistItem{}
	for _, item := range s.items {
		if linked[item.ChecklistID] {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].ChecklistID != out[k].ChecklistID {
			return out[i].ChecklistID < out[k].ChecklistID
		}
		return out[i].Position < out[k].Position
	})
	c.JSON(http.StatusOK, out)
}

// handleApproveItem is the admin side of a job's checklist: approval
// flag and comment on one item's per-job status record, created on
// first touch.
func (s *Server) handleApproveItem(c *gin.Context) {
	jobID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid job id %q", c.Param("id"))
		return
	}
	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid item id %q", c.Param("itemID"))
		return
	}
	var req fieldsvc.ItemStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid item status payload: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobID]; !ok {
		errDetail(c, http.StatusNotFound, "Job %d not found", jobID)
		return
	}
	if _, ok := s.items[itemID]; !ok {
		errDetail(c, http.StatusNotFound, "Checklist item %d not found", itemID)
		return
	}

	now := fieldsvc.Time{Time: time.Now().UTC()}
	key := statusKey(jobID, itemID)
	st, ok := s.statuses[key]
	if !ok {
		st = &fieldsvc.ItemStatus{
			ID:              s.id(),
			JobID:           jobID,
			ChecklistItemID: itemID,
			CreatedAt:       now,
		}
		s.statuses[key] = st
	}
	if req.Checked != nil {
		st.Checked = *req.Checked
	}
	if req.IsApproved != nil {
		st.IsApproved = *req.IsApproved
	}
	if req.Comment != nil {
		st.Comment = *req.Comment
	}
	if req.AdminComment != nil {
		st.AdminComment = *req.AdminComment
	}
	if req.DocumentLink != nil {
		st.DocumentLink = *req.DocumentLink
	}
	st.UpdatedAt = now

	c.JSON(http.StatusOK, *st)
}

// =============================================================================
// BOM / REQUISITIONS
// =============================================================================

func (s *Server) handleBOMTree(c *gin.Context) {
	so := c.Param("so")
	cabinet := c.Param("cabinet")

	// The real backend proxies the ERP; the stub fabricates a small
	// deterministic tree from the inputs.
	tree := []fieldsvc.BOMItem{
		{
			ProductName:     "Cabinet " + cabinet + " (" + so + ")",
			CabinetPosition: cabinet,
			Depth:           0,
			Children: []fieldsvc.BOMItem{
				{ProductName: "Carcass panel", CabinetPosition: cabinet, Depth: 1},
				{
					ProductName:     "Shutter assembly",
					CabinetPosition: cabinet,
					Depth:           1,
					Children: []fieldsvc.BOMItem{
						{ProductName: "Hinge set", CabinetPosition: cabinet, Depth: 2},
						{ProductName: "Handle", CabinetPosition: cabinet, Depth: 2},
					},
				},
			},
		},
		{ProductName: "Hardware kit", CabinetPosition: cabinet, Depth: 0},
	}
	c.JSON(http.StatusOK, tree)
}

func (s *Server) handleRequisitionSubmit(c *gin.Context) {
	var req fieldsvc.RequisitionSubmit
	if err := c.ShouldBindJSON(&req); err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid requisition payload: %v", err)
		return
	}
	if req.SalesOrder == "" || len(req.Items) == 0 {
		errDetail(c, http.StatusUnprocessableEntity, "Sales order and at least one item are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := fieldsvc.Time{Time: time.Now().UTC()}

	// Submissions against an open sales order append to its record.
	var so *fieldsvc.SODetail
	for _, existing := range s.orders {
		if existing.SalesOrder == req.SalesOrder && existing.Status == fieldsvc.RequisitionStatusPending {
			so = existing
			break
		}
	}
	if so == nil {
		so = &fieldsvc.SODetail{
			ID:          s.id(),
			SalesOrder:  req.SalesOrder,
			Status:      fieldsvc.RequisitionStatusPending,
			SRPOC:       req.SRPOC,
			CreatedDate: now,
		}
		s.orders[so.ID] = so
	}
	for _, item := range req.Items {
		so.SiteRequisites = append(so.SiteRequisites, fieldsvc.SiteRequisite{
			ID:                    s.id(),
			ProductName:           item.ProductName,
			Quantity:              item.Quantity,
			IssueDescription:      item.IssueDescription,
			ResponsibleDepartment: item.ResponsibleDepartment,
			CreatedDate:           now,
		})
	}

	c.JSON(http.StatusCreated, *so)
}

func (s *Server) handleRequisitionHistory(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]fieldsvc.SODetail, 0, len(s.orders))
	for _, so := range s.orders {
		all = append(all, *so)
	}
	// Newest first.
	sort.Slice(all, func(i, k int) bool {
		if !all[i].CreatedDate.Equal(all[k].CreatedDate.Time) {
			return all[i].CreatedDate.After(all[k].CreatedDate.Time)
		}
		return all[i].ID > all[k].ID
	})

	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	c.JSON(http.StatusOK, all)
}

func (s *Server) handleRequisitionBySO(c *gin.Context) {
	salesOrder := c.Param("so")

	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *fieldsvc.SODetail
	for _, so := range s.orders {
		if !strings.EqualFold(so.SalesOrder, salesOrder) {
			continue
		}
		if latest == nil || so.CreatedDate.After(latest.CreatedDate.Time) {
			latest = so
		}
	}
	if latest == nil {
		errDetail(c, http.StatusNotFound, "No requisition found for sales order %s", salesOrder)
		return
	}
	c.JSON(http.StatusOK, *latest)
}

func (s *Server) handleRequisitionStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("so"))
	if err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid requisition id %q", c.Param("so"))
		return
	}
	status := c.Query("status")
	if status != fieldsvc.RequisitionStatusPending && status != fieldsvc.RequisitionStatusCompleted {
		errDetail(c, http.StatusUnprocessableEntity, "Status must be pending or completed, got %q", status)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	so, ok := s.orders[id]
	if !ok {
		errDetail(c, http.StatusNotFound, "Requisition %d not found", id)
		return
	}

	so.Status = status
	if status == fieldsvc.RequisitionStatusCompleted {
		now := fieldsvc.Time{Time: time.Now().UTC()}
		so.ClosedDate = &now
	} else {
		so.ClosedDate = nil
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated", "data": *so})
}
