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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

// =============================================================================
// Test Helpers
// =============================================================================

func newSeededServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(Options{Seed: true})
}

// exec runs one request through the router as the seeded admin.
// A nil body sends no payload; anything else is JSON-encoded.
func exec(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	token, err := s.issueToken("admin@example.com")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

// decode unmarshals a recorder body into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

// detail extracts the error envelope's message.
func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Detail string `json:"detail"`
	}
	decode(t, w, &envelope)
	return envelope.Detail
}

// findJob locates a seeded job by name.
func findJob(t *testing.T, s *Server, name string) fieldsvc.Job {
	t.Helper()
	w := exec(t, s, http.MethodGet, "/jobs?limit=50", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var jobs []fieldsvc.Job
	decode(t, w, &jobs)
	for _, j := range jobs {
		if j.Name == name {
			return j
		}
	}
	t.Fatalf("seeded job %q not found", name)
	return fieldsvc.Job{}
}

// =============================================================================
// Auth
// =============================================================================

func TestHealth_NoAuthRequired(t *testing.T) {
	s := newSeededServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_MissingSessionRejected(t *testing.T) {
	s := newSeededServer(t)
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "detail")
}

func TestAuth_GarbageTokenRejected(t *testing.T) {
	s := newSeededServer(t)
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_SetsBearerCookie(t *testing.T) {
	s := newSeededServer(t)
	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "admin123"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Login successful")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "access_token", cookies[0].Name)
	assert.True(t, len(cookies[0].Value) > len("Bearer "), "cookie should carry a token")
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newSeededServer(t)
	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "nope"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnapprovedAccountRejected(t *testing.T) {
	s := newSeededServer(t)
	signup, _ := json.Marshal(map[string]any{"email": "new@example.com", "password": "longenough"})
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewReader(signup))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	login, _ := json.Marshal(map[string]string{"email": "new@example.com", "password": "longenough"})
	req = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(login))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, detail(t, w), "approved")
}

func TestLogin_RateLimited(t *testing.T) {
	s := newSeededServer(t)
	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "nope"})

	var last int
	for i := 0; i < loginRatePerMinute+1; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.Router().ServeHTTP(w, req)
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestMe_ReturnsAccount(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user fieldsvc.User
	decode(t, w, &user)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.True(t, user.IsApproved)
}

// =============================================================================
// Jobs: CRUD & Filters
// =============================================================================

func TestListJobs_StatusFilter(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodGet, "/jobs?status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var jobs []fieldsvc.Job
	decode(t, w, &jobs)
	require.NotEmpty(t, jobs)
	for _, j := range jobs {
		assert.Equal(t, fieldsvc.JobStatusCompleted, j.Status)
	}
}

func TestListJobs_SearchPrefix(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodGet, "/jobs?search=ward", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var jobs []fieldsvc.Job
	decode(t, w, &jobs)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Wardrobe repair", jobs[0].Name)
}

func TestListJobs_SkipLimit(t *testing.T) {
	s := newSeededServer(t)

	w := exec(t, s, http.MethodGet, "/jobs?skip=0&limit=2", nil)
	var first []fieldsvc.Job
	decode(t, w, &first)
	require.Len(t, first, 2)

	w = exec(t, s, http.MethodGet, "/jobs?skip=2&limit=2", nil)
	var second []fieldsvc.Job
	decode(t, w, &second)
	require.NotEmpty(t, second)
	assert.NotEqual(t, first[0].ID, second[0].ID)
}

func TestCreateJob_RecordsHistory(t *testing.T) {
	s := newSeededServer(t)
	create := fieldsvc.JobCreate{
		Name:         "Balcony railing",
		CustomerName: "Rao Villa",
		Type:         "Install",
		Rate:         90,
		Size:         5,
		DeliveryDate: fieldsvc.NewDate(2026, 9, 10),
	}
	w := exec(t, s, http.MethodPost, "/jobs", create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var job fieldsvc.Job
	decode(t, w, &job)
	assert.Equal(t, fieldsvc.JobStatusCreated, job.Status)

	w = exec(t, s, http.MethodGet, "/jobs/"+itoa(job.ID)+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []fieldsvc.JobStatusLog
	decode(t, w, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, "Job created", logs[0].Notes)
}

func TestCreateJob_UnverifiedPartnerRejected(t *testing.T) {
	s := newSeededServer(t)

	// Meera is seeded unverified.
	var meeraID int
	w := exec(t, s, http.MethodGet, "/admin/ips", nil)
	var partners []fieldsvc.Personnel
	decode(t, w, &partners)
	for _, p := range partners {
		if !p.IsIDVerified {
			meeraID = p.ID
		}
	}
	require.NotZero(t, meeraID)

	create := fieldsvc.JobCreate{
		Name:         "Doomed job",
		CustomerName: "Nobody",
		Type:         "Install",
		DeliveryDate: fieldsvc.NewDate(2026, 9, 10),
		AssignedIPID: &meeraID,
	}
	w = exec(t, s, http.MethodPost, "/jobs", create)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, detail(t, w), "ID-verified")
}

func TestCreateJob_UnknownChecklistLeavesNoLinks(t *testing.T) {
	s := newSeededServer(t)

	s.mu.Lock()
	var validID int
	for id := range s.checklists {
		validID = id
		break
	}
	linksBefore := len(s.jobLinks)
	s.mu.Unlock()
	require.NotZero(t, validID)

	create := fieldsvc.JobCreate{
		Name:         "Doomed job",
		CustomerName: "Nobody",
		Type:         "Install",
		DeliveryDate: fieldsvc.NewDate(2026, 9, 10),
		ChecklistIDs: []int{validID, 99999},
	}
	w := exec(t, s, http.MethodPost, "/jobs", create)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, detail(t, w), "Checklist 99999 not found")

	// A rejected create must not leave links from the valid id behind.
	s.mu.Lock()
	assert.Equal(t, linksBefore, len(s.jobLinks))
	s.mu.Unlock()
}

func TestUpdateJob_PartialFields(t *testing.T) {
	s := newSeededServer(t)
	job := findJob(t, s, "Modular kitchen install")

	city := "Mumbai"
	w := exec(t, s, http.MethodPut, "/jobs/"+itoa(job.ID), fieldsvc.JobUpdate{City: &city})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated fieldsvc.Job
	decode(t, w, &updated)
	assert.Equal(t, "Mumbai", updated.City)
	assert.Equal(t, job.Name, updated.Name, "untouched fields survive")
}

func TestUpdateJob_RejectedAssignmentLeavesJobUntouched(t *testing.T) {
	s := newSeededServer(t)
	job := findJob(t, s, "Modular kitchen install")

	name := "Renamed kitchen"
	bogus := 99999
	w := exec(t, s, http.MethodPut, "/jobs/"+itoa(job.ID), fieldsvc.JobUpdate{
		Name:         &name,
		AssignedIPID: &bogus,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, detail(t, w), "not found")

	// The rejected assignment must roll back the rename with it.
	w = exec(t, s, http.MethodGet, "/jobs/"+itoa(job.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after fieldsvc.Job
	decode(t, w, &after)
	assert.Equal(t, job.Name, after.Name)
	assert.Equal(t, job.AssignedIPID, after.AssignedIPID)
}

func TestDeleteJob_ReleasesPartner(t *testing.T) {
	s := newSeededServer(t)
	job := findJob(t, s, "Wardrobe repair")
	require.NotNil(t, job.AssignedIPID)

	w := exec(t, s, http.MethodDelete, "/jobs/"+itoa(job.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = exec(t, s, http.MethodGet, "/jobs/"+itoa(job.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = exec(t, s, http.MethodGet, "/admin/ips", nil)
	var partners []fieldsvc.Personnel
	decode(t, w, &partners)
	for _, p := range partners {
		if p.ID == *job.AssignedIPID {
			assert.False(t, p.IsAssigned)
		}
	}
}

// =============================================================================
// Jobs: Lifecycle
// =============================================================================

func TestLifecycle_PauseAndResume(t *testing.T) {
	s := newSeededServer(t)
	job := findJob(t, s, "Wardrobe repair") // seeded in_progress

	w := exec(t, s, http.MethodPost, "/jobs/"+itoa(job.ID)+"/pause", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paused fieldsvc.Job
	decode(t, w, &paused)
	assert.Equal(t, fieldsvc.JobStatusPaused, paused.Status)

	w = exec(t, s, http.MethodPost, "/jobs/"+itoa(job.ID)+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resumed fieldsvc.Job
	decode(t, w, &resumed)
	assert.Equal(t, fieldsvc.JobStatusInProgress, resumed.Status)

	w = exec(t, s, http.MethodGet, "/jobs/"+itoa(job.ID)+"/history", nil)
	var logs []fieldsvc.JobStatusLog
	decode(t, w, &logs)
	require.GreaterOrEqual(t, len(logs), 3)
	// Newest first.
	assert.Equal(t, "Job resumed", logs[0].Notes)
	assert.Equal(t, "Job paused", logs[1].Notes)
}

func TestLifecycle_FinishReleasesPartner(t *testing.T) {
	s := newSeededServer(t)
	job := findJob(t, s, "Wardrobe repair")
	require.NotNil(t, job.AssignedIPID)

	w := exec(t, s, http.MethodPost, "/jobs/"+itoa(job.ID)+"/finish", fieldsvc.StatusNote{Notes: "Handover done"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var done fieldsvc.Job
	decode(t, w, &done)
	assert.Equal(t, fieldsvc.JobStatusCompleted, done.Status)

	w = exec(t, s, http.MethodGet, "/admin/ips", nil)
	var partners []fieldsvc.Personnel
	decode(t, w, &partners)
	for _, p := range partners {
		if p.ID == *job.AssignedIPID {
			assert.False(t, p.IsAssigned)
		}
	}
}

func TestLifecycle_InvalidTransitions(t *testing.T) {
	s := newSeededServer(t)
	created := findJob(t, s, "Modular kitchen install") // created
	completed := findJob(t, s, "Office cabinets")       // completed

	w := exec(t, s, http.MethodPost, "/jobs/"+itoa(created.ID)+"/pause", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "pause requires in_progress")

	w = exec(t, s, http.MethodPost, "/jobs/"+itoa(created.ID)+"/finish", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "finish requires in_progress")

	w = exec(t, s, http.MethodPost, "/jobs/"+itoa(completed.ID)+"/start", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "completed is terminal")
}

func TestLifecycle_StartRequiresAssignedPartner(t *testing.T) {
	s := newSeededServer(t)
	create := fieldsvc.JobCreate{
		Name:         "Orphan job",
		CustomerName: "Someone",
		Type:         "Install",
		DeliveryDate: fieldsvc.NewDate(2026, 9, 1),
	}
	w := exec(t, s, http.MethodPost, "/jobs", create)
	require.Equal(t, http.StatusCreated, w.Code)
	var job fieldsvc.Job
	decode(t, w, &job)

	w = exec(t, s, http.MethodPost, "/jobs/"+itoa(job.ID)+"/start", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, detail(t, w), "assigned IP")
}

// =============================================================================
// Jobs: OTP Flow
// =============================================================================

func TestOTP_PlainStartBlockedWhenPhonePresent(t *testing.T) {
	s := newSeededServer(t)
	job := findJob(t, s, "Modular kitchen install") // has customer phone

	w := exec(t, s, http.MethodPost, "/jobs/"+itoa(job.ID)+"/start", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, detail(t, w), "OTP")
}

func TestOTP_StartFlow(t *testing.T) {
	s := newSeededServer(t)
	job := findJob(t, s, "Modular kitchen install")

	w := exec(t, s, http.MethodPost, "/jobs/"+itoa(job.ID)+"/request-start-otp", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp fieldsvc.OTPResponse
	decode(t, w, &resp)
	assert.True(t, resp.Success)

	// Wrong code first.
	w = exec(t, s, http.MethodPost, "/jobs/"+itoa(job.ID)+"/verify-start-otp", fieldsvc.OTPVerify{OTP: "000000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = exec(t, s, http.MethodPost, "/jobs/"+itoa(job.ID)+"/verify-start-otp", fieldsvc.OTPVerify{OTP: DevOTP})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var started fieldsvc.Job
	decode(t, w, &started)
	assert.Equal(t, fieldsvc.JobStatusInProgress, started.Status)
	assert.True(t, started.StartOTPVerified)

	// The code is single use.
	w = exec(t, s, http.MethodPost, "/jobs/"+itoa(job.ID)+"/verify-start-otp", fieldsvc.OTPVerify{OTP: DevOTP})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOTP_VerifyWithoutRequest(t *testing.T) {
	s := newSeededServer(t)
	job := findJob(t, s, "Modular kitchen install")

	w := exec(t, s, http.MethodPost, "/jobs/"+itoa(job.ID)+"/verify-start-otp", fieldsvc.OTPVerify{OTP: DevOTP})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, detail(t, w), "No OTP requested")
}

// =============================================================================
// Partners
// =============================================================================

func TestVerifyPartner_SetsAllFlags(t *testing.T) {
	s := newSeededServer(t)

	w := exec(t, s, http.MethodPost, "/admin/verify-ip/919800000003", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result fieldsvc.VerifyResult
	decode(t, w, &result)
	assert.True(t, result.IsIDVerified)
	assert.True(t, result.IsVerified)
	assert.True(t, result.IsPANVerified)
	assert.True(t, result.IsBankDetailsVerified)

	w = exec(t, s, http.MethodGet, "/admin/ips/approved", nil)
	var approved []fieldsvc.Personnel
	decode(t, w, &approved)
	assert.Len(t, approved, 3, "all three partners verified now")
}

func TestVerifyPartner_UnknownPhone(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodPost, "/admin/verify-ip/000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =============================================================================
// Analytics
// =============================================================================

func TestPayoutSummary_CompletedOnly(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodGet, "/analytics/payout?period=month", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary fieldsvc.PayoutSummary
	decode(t, w, &summary)
	assert.Equal(t, "month", summary.Period)

	// Payout accrues from completed jobs only; every assigned IP in
	// the breakdown must carry a positive completed-job count.
	for _, stat := range summary.PayoutByIP {
		assert.Greater(t, stat.JobCount, 0)
	}
}

func TestPayoutSummary_BadPeriod(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodGet, "/analytics/payout?period=fortnight", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestJobStages_CountsEveryJob(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodGet, "/analytics/job-stages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stages []fieldsvc.JobStageStat
	decode(t, w, &stages)

	total := 0
	for _, st := range stages {
		total += st.Count
	}
	assert.Equal(t, 3, total, "seeded jobs all counted")
}

func TestIPPerformance_CompletedOnly(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodGet, "/analytics/ip-performance", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats []fieldsvc.PersonnelPayoutStat
	decode(t, w, &stats)
	// Only Asha has a completed job in the fixtures.
	require.Len(t, stats, 1)
	assert.Equal(t, "Asha Nair", stats[0].IPName)
	assert.Equal(t, 1, stats[0].JobCount)
	assert.InDelta(t, 150*22, stats[0].TotalPayout.Float(), 0.001)
}

// =============================================================================
// Checklists
// =============================================================================

func TestChecklists_CreateAndFetch(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodPost, "/checklists/", fieldsvc.ChecklistCreate{Name: "Electrical audit"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created fieldsvc.Checklist
	decode(t, w, &created)

	w = exec(t, s, http.MethodGet, "/checklists/"+itoa(created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched fieldsvc.Checklist
	decode(t, w, &fetched)
	assert.Equal(t, "Electrical audit", fetched.Name)
}

func TestChecklists_LinkIsIdempotent(t *testing.T) {
	s := newSeededServer(t)
	job := findJob(t, s, "Modular kitchen install")

	w := exec(t, s, http.MethodGet, "/checklists/", nil)
	var lists []fieldsvc.Checklist
	decode(t, w, &lists)
	require.NotEmpty(t, lists)
	link := fieldsvc.ChecklistLink{JobID: job.ID, ChecklistID: lists[0].ID}

	w = exec(t, s, http.MethodPost, "/checklists/link", link)
	require.Equal(t, http.StatusOK, w.Code)

	w = exec(t, s, http.MethodPost, "/checklists/link", link)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Already linked")
}

func TestChecklists_JobItemsInPositionOrder(t *testing.T) {
	s := newSeededServer(t)
	job := findJob(t, s, "Modular kitchen install")

	w := exec(t, s, http.MethodGet, "/checklists/", nil)
	var lists []fieldsvc.Checklist
	decode(t, w, &lists)
	link := fieldsvc.ChecklistLink{JobID: job.ID, ChecklistID: lists[0].ID}
	exec(t, s, http.MethodPost, "/checklists/link", link)

	w = exec(t, s, http.MethodGet, "/checklists/job/"+itoa(job.ID)+"/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []fieldsvc.ChecklistItem
	decode(t, w, &items)
	require.Len(t, items, 3)
	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i-1].Position, items[i].Position)
	}
}

func TestApproveItem_CreatedOnFirstTouch(t *testing.T) {
	s := newSeededServer(t)
	job := findJob(t, s, "Modular kitchen install")

	w := exec(t, s, http.MethodGet, "/checklists/", nil)
	var lists []fieldsvc.Checklist
	decode(t, w, &lists)
	exec(t, s, http.MethodPost, "/checklists/link", fieldsvc.ChecklistLink{JobID: job.ID, ChecklistID: lists[0].ID})

	w = exec(t, s, http.MethodGet, "/checklists/job/"+itoa(job.ID)+"/items", nil)
	var items []fieldsvc.ChecklistItem
	decode(t, w, &items)
	require.NotEmpty(t, items)

	approved := true
	comment := "Photos look complete"
	path := "/jobs/" + itoa(job.ID) + "/checklists/items/" + itoa(items[0].ID) + "/approve"
	w = exec(t, s, http.MethodPut, path, fieldsvc.ItemStatusUpdate{IsApproved: &approved, AdminComment: &comment})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var status fieldsvc.ItemStatus
	decode(t, w, &status)
	assert.True(t, status.IsApproved)
	assert.Equal(t, comment, status.AdminComment)
	assert.Equal(t, items[0].ID, status.ChecklistItemID)

	// Second update mutates the same record.
	w = exec(t, s, http.MethodPut, path, fieldsvc.ItemStatusUpdate{AdminComment: &comment})
	var again fieldsvc.ItemStatus
	decode(t, w, &again)
	assert.Equal(t, status.ID, again.ID)
	assert.True(t, again.IsApproved, "earlier approval survives a partial update")
}

// =============================================================================
// BOM / Requisitions
// =============================================================================

func TestBOMTree_Deterministic(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodGet, "/bom/SO-1042/C1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tree []fieldsvc.BOMItem
	decode(t, w, &tree)
	require.NotEmpty(t, tree)
	assert.Contains(t, tree[0].ProductName, "SO-1042")

	flat := tree[0].Flatten()
	assert.Greater(t, len(flat), 1, "tree has nested children")
}

func TestRequisitionSubmit_AppendsToOpenOrder(t *testing.T) {
	s := newSeededServer(t)
	submit := fieldsvc.RequisitionSubmit{
		SalesOrder:      "SO-1042",
		CabinetPosition: "C1",
		Items: []fieldsvc.BucketItem{
			{ProductName: "Drawer channel", Quantity: 4},
		},
	}
	w := exec(t, s, http.MethodPost, "/bom/submit", submit)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var so fieldsvc.SODetail
	decode(t, w, &so)
	assert.Equal(t, "SO-1042", so.SalesOrder)
	assert.Len(t, so.SiteRequisites, 2, "new line joins the seeded one")
}

func TestRequisitionHistory_NewestFirstWithPaging(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodGet, "/bom/history?offset=0&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page []fieldsvc.SODetail
	decode(t, w, &page)
	require.Len(t, page, 1)

	w = exec(t, s, http.MethodGet, "/bom/history?offset=10&limit=5", nil)
	var empty []fieldsvc.SODetail
	decode(t, w, &empty)
	assert.Empty(t, empty)
}

func TestRequisitionBySO_CaseInsensitive(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodGet, "/bom/history/so-1043", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var so fieldsvc.SODetail
	decode(t, w, &so)
	assert.Equal(t, "SO-1043", so.SalesOrder)
}

func TestRequisitionStatus_EnvelopeAndClosedDate(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodGet, "/bom/history/SO-1042", nil)
	var so fieldsvc.SODetail
	decode(t, w, &so)

	w = exec(t, s, http.MethodPatch, "/bom/history/"+itoa(so.ID)+"/status?status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var envelope struct {
		Message string            `json:"message"`
		Data    fieldsvc.SODetail `json:"data"`
	}
	decode(t, w, &envelope)
	assert.Equal(t, fieldsvc.RequisitionStatusCompleted, envelope.Data.Status)
	assert.NotNil(t, envelope.Data.ClosedDate)

	// Reopening clears the closed date. The nil closed_date is omitted
	// from the response, so reset the reused struct before decoding to
	// avoid reading the stale pointer from the previous decode.
	w = exec(t, s, http.MethodPatch, "/bom/history/"+itoa(so.ID)+"/status?status=pending", nil)
	envelope.Data = fieldsvc.SODetail{}
	decode(t, w, &envelope)
	assert.Nil(t, envelope.Data.ClosedDate)
}

func TestRequisitionStatus_InvalidStatus(t *testing.T) {
	s := newSeededServer(t)
	w := exec(t, s, http.MethodPatch, "/bom/history/1/status?status=shipped", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func itoa(n int) string { return strconv.Itoa(n) }
