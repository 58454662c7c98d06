// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package stub is an in-memory double of the admin backend.
//
// It implements the REST contract the SDK consumes, with the real
// backend's rules: JWT cookie auth, the job lifecycle with its
// OTP-gated start/finish, partner assignment flags, payout analytics,
// checklists, and BOM requisitions, all over seeded fixtures instead
// of a database. `partnerdash dev serve` runs it standalone; the SDK
// end-to-end tests host it in-process via httptest.
//
// It is a development collaborator, not a product: passwords are
// stored in clear text, the OTP is a fixed dev code, and all state
// vanishes on exit.
package stub

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

// Default configuration values.
const (
	// DefaultJWTSecret signs dev tokens. Override for anything shared.
	DefaultJWTSecret = "partnerdash-stub-secret"

	// DevOTP is the fixed one-time password every OTP flow accepts.
	DevOTP = "123456"

	// DefaultTokenTTL is how long issued sessions last.
	DefaultTokenTTL = 12 * time.Hour

	// loginRatePerMinute mirrors the backend's login rate limit.
	loginRatePerMinute = 5
)

// Options configures a stub Server.
type Options struct {
	// JWTSecret signs session tokens. Empty uses DefaultJWTSecret.
	JWTSecret string

	// TokenTTL bounds session lifetime. Zero uses DefaultTokenTTL.
	TokenTTL time.Duration

	// Seed loads the demo fixtures. Tests that want a blank slate
	// leave it false and create what they need through the API.
	Seed bool
}

// account is a stored admin login. Clear-text password: dev only.
type account struct {
	user     fieldsvc.User
	password string
}

// Server holds all stub state behind one mutex.
//
// # Thread Safety
//
// Handlers lock s.mu around every state access. The dataset is tiny;
// contention is irrelevant here.
type Server struct {
	opts   Options
	router *gin.Engine

	loginLimiter *rate.Limiter

	mu         sync.Mutex
	accounts   map[string]*account
	partners   map[int]*fieldsvc.Personnel
	jobs       map[int]*fieldsvc.Job
	history    map[int][]fieldsvc.JobStatusLog
	checklists map[int]*fieldsvc.Checklist
	items      map[int]*fieldsvc.ChecklistItem
	jobLinks   []fieldsvc.JobChecklist
	statuses   map[string]*fieldsvc.ItemStatus // "jobID/itemID"
	orders     map[int]*fieldsvc.SODetail
	pendingOTP map[string]string // "jobID/start" or "jobID/end" → code
	nextID     int
}

// NewServer creates a stub server and builds its routes.
func NewServer(opts Options) *Server {
	if opts.JWTSecret == "" {
		opts.JWTSecret = DefaultJWTSecret
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = DefaultTokenTTL
	}

	s := &Server{
		opts:         opts,
		loginLimiter: rate.NewLimiter(rate.Every(time.Minute/loginRatePerMinute), loginRatePerMinute),
		accounts:     make(map[string]*account),
		partners:     make(map[int]*fieldsvc.Personnel),
		jobs:         make(map[int]*fieldsvc.Job),
		history:      make(map[int][]fieldsvc.JobStatusLog),
		checklists:   make(map[int]*fieldsvc.Checklist),
		items:        make(map[int]*fieldsvc.ChecklistItem),
		statuses:     make(map[string]*fieldsvc.ItemStatus),
		orders:       make(map[int]*fieldsvc.SODetail),
		pendingOTP:   make(map[string]string),
		nextID:       1,
	}
	if opts.Seed {
		s.seed()
	}
	s.router = s.buildRouter()
	return s
}

// Router exposes the gin engine for http.Server and httptest hosting.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// id hands out the next identifier. Caller holds s.mu.
func (s *Server) id() int {
	id := s.nextID
	s.nextID++
	return id
}

// statusKey addresses one checklist item's state on one job.
func statusKey(jobID, itemID int) string {
	return fmt.Sprintf("%d/%d", jobID, itemID)
}

// otpKey addresses a pending OTP for one end of a job's lifecycle.
func otpKey(jobID int, action string) string {
	return fmt.Sprintf("%d/%s", jobID, action)
}

// errDetail is the backend's error envelope.
func errDetail(c *gin.Context, status int, format string, args ...any) {
	c.AbortWithStatusJSON(status, gin.H{"detail": fmt.Sprintf(format, args...)})
}

// seed loads the demo dataset: one approved admin, three partners in
// assorted verification states, a handful of jobs across the
// lifecycle, a checklist, and two sales orders.
func (s *Server) seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts["admin@example.com"] = &account{
		user:     fieldsvc.User{ID: s.id(), Email: "admin@example.com", IsActive: true, IsApproved: true, IsSuperadmin: true},
		password: "admin123",
	}

	now := fieldsvc.Time{Time: time.Now().UTC()}
	asha := &fieldsvc.Personnel{
		ID: s.id(), PhoneNumber: "919800000001", FirstName: "Asha", LastName: "Nair",
		City: "Kochi", Pincode: "682001",
		IsVerified: true, IsIDVerified: true, IsPANVerified: true, IsBankDetailsVerified: true,
		RegisteredAt: &now, VerifiedAt: &now,
	}
	ravi := &fieldsvc.Personnel{
		ID: s.id(), PhoneNumber: "919800000002", FirstName: "Ravi", LastName: "Kumar",
		City: "Pune", Pincode: "411001",
		IsVerified: true, IsIDVerified: true,
		RegisteredAt: &now,
	}
	meera := &fieldsvc.Personnel{
		ID: s.id(), PhoneNumber: "919800000003", FirstName: "Meera", LastName: "Joshi",
		City: "Jaipur", Pincode: "302001",
		RegisteredAt: &now,
	}
	for _, p := range []*fieldsvc.Personnel{asha, ravi, meera} {
		s.partners[p.ID] = p
	}

	today := time.Now().UTC()
	day := func(offset int) *fieldsvc.Date {
		d := fieldsvc.Date{Time: today.AddDate(0, 0, offset).Truncate(24 * time.Hour)}
		return &d
	}

	checklist := &fieldsvc.Checklist{ID: s.id(), Name: "Site handover", CreatedAt: now, UpdatedAt: now}
	s.checklists[checklist.ID] = checklist
	for pos, text := range []string{"Photos uploaded", "Customer signature", "Debris cleared"} {
		item := &fieldsvc.ChecklistItem{ID: s.id(), ChecklistID: checklist.ID, Text: text, Position: pos, CreatedAt: now, UpdatedAt: now}
		s.items[item.ID] = item
	}

	seedJobs := []*fieldsvc.Job{
		{
			Name: "Modular kitchen install", CustomerName: "Verma Residence", CustomerPhone: "919700000001",
			City: "Pune", Type: "Install", Rate: 120, Size: 14, DeliveryDate: day(3),
			Status: fieldsvc.JobStatusCreated, AssignedIPID: &asha.ID,
			AssignedIP: &fieldsvc.IPSummary{ID: asha.ID, FirstName: asha.FirstName, LastName: asha.LastName, PhoneNumber: asha.PhoneNumber},
		},
		{
			Name: "Wardrobe repair", CustomerName: "Iyer Flat", City: "Kochi",
			Type: "Repair", Rate: 80, Size: 4, DeliveryDate: day(-2), AdditionalExpense: 250,
			Status: fieldsvc.JobStatusInProgress, AssignedIPID: &ravi.ID,
			AssignedIP: &fieldsvc.IPSummary{ID: ravi.ID, FirstName: ravi.FirstName, LastName: ravi.LastName, PhoneNumber: ravi.PhoneNumber, IsAssigned: true},
		},
		{
			Name: "Office cabinets", CustomerName: "Acme Interiors", City: "Jaipur",
			Type: "Install", Rate: 150, Size: 22, DeliveryDate: day(-6), AdditionalExpense: 1200,
			Status: fieldsvc.JobStatusCompleted, AssignedIPID: &asha.ID,
			AssignedIP: &fieldsvc.IPSummary{ID: asha.ID, FirstName: asha.FirstName, LastName: asha.LastName, PhoneNumber: asha.PhoneNumber},
		},
	}
	for _, j := range seedJobs {
		j.ID = s.id()
		s.jobs[j.ID] = j
		s.appendHistoryLocked(j.ID, fieldsvc.JobStatusCreated, "Job created")
	}
	ravi.IsAssigned = true

	pending := &fieldsvc.SODetail{
		ID: s.id(), SalesOrder: "SO-1042", Status: fieldsvc.RequisitionStatusPending,
		SRPOC: "Dinesh", CreatedDate: now,
		SiteRequisites: []fieldsvc.SiteRequisite{
			{ID: s.id(), ProductName: "Hinge set", Quantity: 12, ResponsibleDepartment: "Stores", CreatedDate: now},
		},
	}
	closed := &fieldsvc.SODetail{
		ID: s.id(), SalesOrder: "SO-1043", Status: fieldsvc.RequisitionStatusCompleted,
		SRPOC: "Lata", CreatedDate: now, ClosedDate: &now,
		SiteRequisites: []fieldsvc.SiteRequisite{
			{ID: s.id(), ProductName: "Shutter panel", Quantity: 2, IssueDescription: "Transit damage", ResponsibleDepartment: "QC", CreatedDate: now},
		},
	}
	s.orders[pending.ID] = pending
	s.orders[closed.ID] = closed
}

// appendHistoryLocked records a status transition. Caller holds s.mu.
func (s *Server) appendHistoryLocked(jobID int, status, notes string) {
	s.history[jobID] = append(s.history[jobID], fieldsvc.JobStatusLog{
		ID:        s.id(),
		JobID:     jobID,
		Status:    status,
		Notes:     notes,
		Timestamp: fieldsvc.Time{Time: time.Now().UTC()},
	})
}
