// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package fieldsvc provides typed accessors for every backend resource
// the admin dashboard works with: jobs and their lifecycle, field
// personnel (IPs), payout analytics, checklist templates, and BOM site
// requisitions.
//
// Each accessor is a pure mapping from typed parameters to one HTTP
// call on the Backend: parameters are validated locally, translated to
// the backend's wire conventions (page/limit becomes skip/limit,
// envelopes are unwrapped), and responses are decoded into the types
// in this file. Accessors hold no cache and do no retrying of their
// own; both concerns belong to the layers around them.
//
// The backend grew through several schema migrations, and some
// responses still carry the older field names. Where that matters the
// types here decode both spellings and normalize to the canonical one
// (see PayoutSummary and JobStatusLog).
package fieldsvc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// =============================================================================
// WIRE SCALARS
// =============================================================================

// Date is a calendar day on the wire, formatted "2006-01-02".
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	*d = Date{t}
	return nil
}

// String renders the wire form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// Time is a timestamp on the wire. The backend emits RFC 3339 for
// timezone-aware columns and a bare "2006-01-02T15:04:05" for naive
// ones; both decode here, the naive form as UTC.
type Time struct {
	time.Time
}

// timeLayouts are tried in order when decoding.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		*t = Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Time{parsed.UTC()}
			return nil
		}
	}
	return fmt.Errorf("timestamp %q: unrecognized format", s)
}

// Number is a money/decimal field. Some backend versions serialize
// decimals as JSON numbers, newer ones as strings; Number decodes both
// and always encodes as a plain number.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("numeric field %q: %w", string(data), err)
	}
	*n = Number(v)
	return nil
}

// Float returns the plain float64 value.
func (n Number) Float() float64 { return float64(n) }

// =============================================================================
// PAGINATION
// =============================================================================

// DefaultPageSize is used when a list call does not set Limit.
const DefaultPageSize = 20

// ListParams is the 1-based page/limit pair list accessors take.
// Accessors translate it to the backend's offset convention.
type ListParams struct {
	Page  int
	Limit int
}

// offsetLimit translates page/limit to the wire's offset convention.
// Page 0 and 1 are equivalent; a zero Limit takes the default.
func (p ListParams) offsetLimit() (offset, limit int) {
	limit = p.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit, limit
}

// JobListParams filters the jobs list.
type JobListParams struct {
	ListParams

	// Status filters by lifecycle state ("created", "in_progress",
	// "paused", "completed"). Empty means all.
	Status string

	// Type filters by the job rate's type name.
	Type string

	// Search matches a prefix of the job name, customer name, or city.
	Search string
}

// query renders the wire query string. The jobs endpoint calls its
// offset parameter "skip".
func (p JobListParams) query() url.Values {
	skip, limit := p.offsetLimit()
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

// =============================================================================
// AUTH / ACCOUNT TYPES
// =============================================================================

// LoginRequest is the credential pair for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest registers a new admin account. Accounts start
// unapproved; a superadmin flips isApproved before the first login.
type SignupRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	IsActive     bool   `json:"isActive"`
	IsApproved   bool   `json:"isApproved"`
	IsSuperadmin bool   `json:"is_superadmin"`
}

// User is the authenticated account, as returned by GET /auth/me.
// The mixed JSON key casing is the backend's, kept verbatim.
type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	IsActive     bool   `json:"isActive"`
	IsApproved   bool   `json:"isApproved"`
	IsSuperadmin bool   `json:"is_superadmin"`
}

// LoginResult carries the session token extracted from the login
// response's Set-Cookie, plus the server's acknowledgement message.
type LoginResult struct {
	Token   string
	Message string
}

// SignupResult is the envelope of POST /auth/signup.
type SignupResult struct {
	Message string `json:"message"`
	User    string `json:"user"`
}

// MessageResponse is the bare acknowledgement several endpoints return.
type MessageResponse struct {
	Message string `json:"message"`
}

// =============================================================================
// JOB TYPES
// =============================================================================

// IPSummary is the compact personnel record embedded in a job.
type IPSummary struct {
	ID          int    `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	IsAssigned  bool   `json:"is_assigned"`
}

// FullName joins first and last name for display.
func (s IPSummary) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	default:
		return s.FirstName + " " + s.LastName
	}
}

// Job is a dispatch job as the backend returns it.
//
// Customer fields (name, phone, address, city, pincode) and rate
// fields (type, rate) are denormalized from the jobs' customer and
// job-rate references, so reads carry the flat values even though
// writes may reference by id.
type Job struct {
	ID                int            `json:"id"`
	Name              string         `json:"name,omitempty"`
	CustomerID        *int           `json:"customer_id,omitempty"`
	CustomerName      string         `json:"customer_name,omitempty"`
	CustomerPhone     string         `json:"customer_phone,omitempty"`
	Address           string         `json:"address,omitempty"`
	City              string         `json:"city,omitempty"`
	Pincode           int            `json:"pincode,omitempty"`
	JobRateID         *int           `json:"job_rate_id,omitempty"`
	Type              string         `json:"type,omitempty"`
	Rate              Number         `json:"rate,omitempty"`
	Size              float64        `json:"size,omitempty"`
	AssignedIPID      *int           `json:"assigned_ip_id,omitempty"`
	UserID            *int           `json:"user_id,omitempty"`
	AssignedIP        *IPSummary     `json:"assigned_ip,omitempty"`
	StartDate         *Date          `json:"start_date,omitempty"`
	DeliveryDate      *Date          `json:"delivery_date,omitempty"`
	ChecklistLink     string         `json:"checklist_link,omitempty"`
	GoogleMapLink     string         `json:"google_map_link,omitempty"`
	Status            string         `json:"status"`
	AdditionalExpense Number         `json:"additional_expense"`
	StartOTPVerified  bool           `json:"start_otp_verified"`
	EndOTPVerified    bool           `json:"end_otp_verified"`
	JobChecklists     []JobChecklist `json:"job_checklists,omitempty"`
}

// Job lifecycle states.
const (
	JobStatusCreated    = "created"
	JobStatusInProgress = "in_progress"
	JobStatusPaused     = "paused"
	JobStatusCompleted  = "completed"
)

// JobCreate is the payload for POST /jobs.
//
// Either reference an existing customer/rate by id, or supply the
// flat fields and the backend upserts the records. When both are
// present the ids win and the flat fields are ignored server-side.
type JobCreate struct {
	Name              string  `json:"name" validate:"required"`
	CustomerName      string  `json:"customer_name" validate:"required_without=CustomerID"`
	CustomerPhone     string  `json:"customer_phone,omitempty" validate:"omitempty,numeric,min=10"`
	Address           string  `json:"address,omitempty"`
	City              string  `json:"city,omitempty"`
	Pincode           int     `json:"pincode,omitempty"`
	Type              string  `json:"type" validate:"required_without=JobRateID"`
	Rate              Number  `json:"rate,omitempty" validate:"omitempty,gte=0"`
	Size              float64 `json:"size,omitempty" validate:"omitempty,gt=0"`
	AssignedIPID      *int    `json:"assigned_ip_id,omitempty"`
	CustomerID        *int    `json:"customer_id,omitempty"`
	JobRateID         *int    `json:"job_rate_id,omitempty"`
	StartDate         *Date   `json:"start_date,omitempty"`
	DeliveryDate      Date    `json:"delivery_date" validate:"required"`
	ChecklistLink     string  `json:"checklist_link,omitempty" validate:"omitempty,url"`
	GoogleMapLink     string  `json:"google_map_link,omitempty" validate:"omitempty,url"`
	AdditionalExpense Number  `json:"additional_expense,omitempty" validate:"omitempty,gte=0"`
	ChecklistIDs      []int   `json:"checklist_ids,omitempty"`
	UserID            *int    `json:"user_id,omitempty"`
}

// JobUpdate is the partial payload for PUT /jobs/{id}. Nil fields are
// omitted from the request and left untouched by the backend; a nil
// AssignedIPID is distinct from an explicit unassignment, which is
// expressed by pointing at zero.
type JobUpdate struct {
	Name              *string  `json:"name,omitempty"`
	CustomerName      *string  `json:"customer_name,omitempty"`
	CustomerPhone     *string  `json:"customer_phone,omitempty"`
	Address           *string  `json:"address,omitempty"`
	City              *string  `json:"city,omitempty"`
	Pincode           *int     `json:"pincode,omitempty"`
	Type              *string  `json:"type,omitempty"`
	Rate              *Number  `json:"rate,omitempty"`
	Size              *float64 `json:"size,omitempty"`
	AssignedIPID      *int     `json:"assigned_ip_id,omitempty"`
	CustomerID        *int     `json:"customer_id,omitempty"`
	JobRateID         *int     `json:"job_rate_id,omitempty"`
	Status            *string  `json:"status,omitempty" validate:"omitempty,oneof=created in_progress paused completed"`
	StartDate         *Date    `json:"start_date,omitempty"`
	DeliveryDate      *Date    `json:"delivery_date,omitempty"`
	ChecklistIDs      []int    `json:"checklist_ids,omitempty"`
	ChecklistLink     *string  `json:"checklist_link,omitempty"`
	GoogleMapLink     *string  `json:"google_map_link,omitempty"`
	AdditionalExpense *Number  `json:"additional_expense,omitempty"`
}

// StatusNote is the optional note attached to start/pause/finish.
type StatusNote struct {
	Notes string `json:"notes,omitempty"`
}

// OTPVerify carries the customer's code for the OTP-verified
// lifecycle endpoints.
type OTPVerify struct {
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
	Notes string `json:"notes,omitempty"`
}

// OTPResponse acknowledges an OTP send.
type OTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JobStatusLog is one entry of a job's lifecycle history, newest
// first. Older backend versions emit "created_at" instead of
// "timestamp"; both decode into Timestamp.
type JobStatusLog struct {
	ID        int    `json:"id"`
	JobID     int    `json:"job_id"`
	Status    string `json:"status"`
	Notes     string `json:"notes,omitempty"`
	Timestamp Time   `json:"timestamp"`
}

func (l *JobStatusLog) UnmarshalJSON(data []byte) error {
	type alias JobStatusLog
	aux := struct {
		*alias
		CreatedAt Time `json:"created_at"`
	}{alias: (*alias)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = aux.CreatedAt
	}
	return nil
}

// CustomerOption is a customer in the job-form dropdown.
type CustomerOption struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	Pincode     *int   `json:"pincode,omitempty"`
	CreatedAt   *Time  `json:"created_at,omitempty"`
}

// JobRateOption is a rate-card entry in the job-form dropdown.
type JobRateOption struct {
	ID          int    `json:"id"`
	JobTypeName string `json:"job_type_name"`
	BaseRate    Number `json:"base_rate"`
}

// =============================================================================
// PERSONNEL TYPES
// =============================================================================

// Personnel is a field installation partner (IP) as listed under
// /admin/ips. Pincode is a string here, unlike the numeric customer
// pincode; the two tables disagree and the wire reflects it.
type Personnel struct {
	ID          int    `json:"id"`
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	City        string `json:"city"`
	Pincode     string `json:"pincode"`
	IsAssigned  bool   `json:"is_assigned"`

	// Verification flags; IsIDVerified gates job assignment.
	IsVerified            bool `json:"is_verified"`
	IsPANVerified         bool `json:"is_pan_verified"`
	IsBankDetailsVerified bool `json:"is_bank_details_verified"`
	IsIDVerified          bool `json:"is_id_verified"`

	PANNumber         string `json:"pan_number,omitempty"`
	PANName           string `json:"pan_name,omitempty"`
	AccountNumber     string `json:"account_number,omitempty"`
	IFSCCode          string `json:"ifsc_code,omitempty"`
	AccountHolderName string `json:"account_holder_name,omitempty"`

	RegisteredAt *Time `json:"registered_at,omitempty"`
	VerifiedAt   *Time `json:"verified_at,omitempty"`
}

// FullName joins first and last name for display.
func (p Personnel) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// VerifyResult is the envelope of POST /admin/verify-ip/{phone}.
// Verification sets every flag at once.
type VerifyResult struct {
	Message               string `json:"message"`
	PhoneNumber           string `json:"phone_number"`
	IsIDVerified          bool   `json:"is_id_verified"`
	IsVerified            bool   `json:"is_verified"`
	IsPANVerified         bool   `json:"is_pan_verified"`
	IsBankDetailsVerified bool   `json:"is_bank_details_verified"`
}

// =============================================================================
// ANALYTICS TYPES
// =============================================================================

// Analytics period names accepted by PayoutParams.
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

// PayoutParams selects the reporting window for the payout summary.
// Only the field matching Period is consulted (plus Year); zero values
// mean "the current one".
type PayoutParams struct {
	Period  string `validate:"required,oneof=week month quarter year"`
	Year    int    `validate:"omitempty,gte=2000,lte=2100"`
	Month   int    `validate:"omitempty,gte=1,lte=12"`
	Quarter int    `validate:"omitempty,gte=1,lte=4"`
	Week    int    `validate:"omitempty,gte=1,lte=53"`
}

func (p PayoutParams) query() url.Values {
	q := url.Values{}
	q.Set("period", p.Period)
	if p.Year > 0 {
		q.Set("year", strconv.Itoa(p.Year))
	}
	if p.Month > 0 {
		q.Set("month", strconv.Itoa(p.Month))
	}
	if p.Quarter > 0 {
		q.Set("quarter", strconv.Itoa(p.Quarter))
	}
	if p.Week > 0 {
		q.Set("week", strconv.Itoa(p.Week))
	}
	return q
}

// JobStageStat is the per-status rollup inside the payout summary.
type JobStageStat struct {
	Status                 string `json:"status"`
	Count                  int    `json:"count"`
	TotalPayout            Number `json:"total_payout"`
	TotalAdditionalExpense Number `json:"total_additional_expense"`
}

// PersonnelPayoutStat is the per-IP rollup of completed-job payouts.
type PersonnelPayoutStat struct {
	IPID                   int    `json:"ip_id"`
	IPName                 string `json:"ip_name"`
	JobCount               int    `json:"job_count"`
	TotalPayout            Number `json:"total_payout"`
	TotalAdditionalExpense Number `json:"total_additional_expense"`
}

// PayoutSummary is the payout analytics response for one period.
//
// Payout figures count completed jobs only; TotalJobs counts every
// job delivered in the window regardless of status.
type PayoutSummary struct {
	Period                 string                `json:"period"`
	StartDate              Date                  `json:"start_date"`
	EndDate                Date                  `json:"end_date"`
	TotalJobs              int                   `json:"total_jobs"`
	TotalPayout            Number                `json:"total_payout"`
	TotalAdditionalExpense Number                `json:"total_additional_expense"`
	JobStages              []JobStageStat        `json:"job_stages"`
	PayoutByIP             []PersonnelPayoutStat `json:"payout_by_ip"`
}

// UnmarshalJSON accepts the deprecated "payout_by_ip_user" key some
// backend versions still emit and normalizes it into PayoutByIP. When
// both keys are present the canonical one wins.
func (s *PayoutSummary) UnmarshalJSON(data []byte) error {
	type alias PayoutSummary
	aux := struct {
		*alias
		PayoutByIPUser []PersonnelPayoutStat `json:"payout_by_ip_user"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if s.PayoutByIP == nil {
		s.PayoutByIP = aux.PayoutByIPUser
	}
	return nil
}

// =============================================================================
// CHECKLIST TYPES
// =============================================================================

// Checklist is a reusable checklist template.
type Checklist struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   Time   `json:"created_at"`
	UpdatedAt   Time   `json:"updated_at"`
}

// ChecklistCreate is the payload for POST /checklists/.
type ChecklistCreate struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// ChecklistItem is one line of a checklist template.
type ChecklistItem struct {
	ID          int    `json:"id"`
	ChecklistID int    `json:"checklist_id"`
	Text        string `json:"text"`
	Position    int    `json:"position"`
	CreatedAt   Time   `json:"created_at"`
	UpdatedAt   Time   `json:"updated_at"`
}

// ChecklistItemCreate is the payload for POST /checklists/items.
type ChecklistItemCreate struct {
	ChecklistID int    `json:"checklist_id" validate:"required,gt=0"`
	Text        string `json:"text" validate:"required"`
	Position    int    `json:"position" validate:"gte=0"`
}

// JobChecklist links a checklist template to a job.
type JobChecklist struct {
	ID          int  `json:"id"`
	JobID       int  `json:"job_id"`
	ChecklistID int  `json:"checklist_id"`
	CreatedAt   Time `json:"created_at"`
}

// ChecklistLink is the payload for POST /checklists/link.
type ChecklistLink struct {
	JobID       int `json:"job_id" validate:"required,gt=0"`
	ChecklistID int `json:"checklist_id" validate:"required,gt=0"`
}

// ItemStatus is the per-job state of one checklist item: the field
// partner checks it off and comments, the admin approves.
type ItemStatus struct {
	ID              int    `json:"id"`
	JobID           int    `json:"job_id"`
	ChecklistItemID int    `json:"checklist_item_id"`
	Checked         bool   `json:"checked"`
	IsApproved      bool   `json:"is_approved"`
	Comment         string `json:"comment,omitempty"`
	AdminComment    string `json:"admin_comment,omitempty"`
	DocumentLink    string `json:"document_link,omitempty"`
	CreatedAt       Time   `json:"created_at"`
	UpdatedAt       Time   `json:"updated_at"`
}

// ItemStatusUpdate is the partial payload for the admin approval
// endpoint. Nil fields are left untouched.
type ItemStatusUpdate struct {
	Checked      *bool   `json:"checked,omitempty"`
	IsApproved   *bool   `json:"is_approved,omitempty"`
	Comment      *string `json:"comment,omitempty"`
	AdminComment *string `json:"admin_comment,omitempty"`
	DocumentLink *string `json:"document_link,omitempty"`
}

// =============================================================================
// BOM / REQUISITION TYPES
// =============================================================================

// BOMItem is one node of the bill-of-materials tree fetched from the
// ERP for a sales order and cabinet position.
type BOMItem struct {
	ProductName     string    `json:"product_name"`
	CabinetPosition string    `json:"cabinet_position,omitempty"`
	Depth           int       `json:"depth"`
	Children        []BOMItem `json:"children,omitempty"`
}

// Flatten walks the tree depth-first into a single slice.
func (b BOMItem) Flatten() []BOMItem {
	out := []BOMItem{b}
	for _, child := range b.Children {
		out = append(out, child.Flatten()...)
	}
	return out
}

// BucketItem is one product line in a requisition submission.
type BucketItem struct {
	ProductName           string  `json:"product_name" validate:"required"`
	Quantity              float64 `json:"quantity" validate:"gt=0"`
	IssueDescription      string  `json:"issue_description,omitempty"`
	ResponsibleDepartment string  `json:"responsible_department,omitempty"`
}

// RequisitionSubmit is the payload for POST /bom/submit.
type RequisitionSubmit struct {
	SalesOrder      string       `json:"sales_order" validate:"required"`
	CabinetPosition string       `json:"cabinet_position" validate:"required"`
	SRPOC           string       `json:"sr_poc,omitempty"`
	Items           []BucketItem `json:"items" validate:"required,min=1,dive"`
}

// SiteRequisite is one submitted product line as stored.
type SiteRequisite struct {
	ID                    int     `json:"id"`
	ProductName           string  `json:"product_name"`
	Quantity              float64 `json:"quantity"`
	IssueDescription      string  `json:"issue_description,omitempty"`
	ResponsibleDepartment string  `json:"responsible_department,omitempty"`
	CreatedDate           Time    `json:"created_date"`
}

// Requisition statuses accepted by UpdateStatus.
const (
	RequisitionStatusPending   = "pending"
	RequisitionStatusCompleted = "completed"
)

// SODetail is a sales order's requisition record with its lines.
type SODetail struct {
	ID             int             `json:"id"`
	SalesOrder     string          `json:"sales_order"`
	CreatedDate    Time            `json:"created_date"`
	ClosedDate     *Time           `json:"closed_date,omitempty"`
	Status         string          `json:"status"`
	SRPOC          string          `json:"sr_poc,omitempty"`
	SiteRequisites []SiteRequisite `json:"site_requisites"`
}

// statusUpdateEnvelope wraps the PATCH status response.
type statusUpdateEnvelope struct {
	Message string   `json:"message"`
	Data    SODetail `json:"data"`
}
