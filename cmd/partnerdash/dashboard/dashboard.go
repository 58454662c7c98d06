// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dashboard is the interactive terminal dashboard.
//
// # Description
//
// This package implements the operations view using bubbletea: a jobs
// table, partner roster, and payout analytics, all read through the
// query cache so the status line can show fresh/stale/loading per
// resource.
//
// # Thread Safety
//
// Model state lives inside the bubbletea event loop. Fetches run as
// tea.Cmd goroutines and report back via messages; do not touch the
// model from outside Update.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/api"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/logging"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/query"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/session"
)

// =============================================================================
// Tabs
// =============================================================================

// tab selects the active pane.
type tab int

const (
	tabJobs tab = iota
	tabPartners
	tabAnalytics
)

func (t tab) String() string {
	switch t {
	case tabJobs:
		return "Jobs"
	case tabPartners:
		return "Partners"
	case tabAnalytics:
		return "Payout"
	default:
		return "?"
	}
}

// fetchTimeout bounds each background fetch.
const fetchTimeout = 15 * time.Second

// refreshEvery drives the periodic re-read of the active pane. The
// query layer decides whether anything actually hits the network.
const refreshEvery = 30 * time.Second

// =============================================================================
// Messages
// =============================================================================

type jobsMsg struct {
	jobs []fieldsvc.Job
	res  query.Result
	err  error
}

type partnersMsg struct {
	partners []fieldsvc.Personnel
	res      query.Result
	err      error
}

type payoutMsg struct {
	summary *fieldsvc.PayoutSummary
	res     query.Result
	err     error
}

type historyMsg struct {
	jobID int
	logs  []fieldsvc.JobStatusLog
	err   error
}

type loginMsg struct {
	email string
	err   error
}

type tickMsg time.Time

// =============================================================================
// Model
// =============================================================================

// Deps is everything the dashboard borrows from the command layer.
type Deps struct {
	Services *fieldsvc.Services
	Cache    *query.Store
	Sessions session.Store
	Logger   *logging.Logger

	// Buffer feeds the debug pane when set.
	Buffer *logging.BufferedExporter

	BaseURL string
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	deps Deps

	active tab
	width  int
	height int
	ready  bool

	jobsTable     table.Model
	partnersTable table.Model
	detail        viewport.Model
	showDetail    bool
	showDebug     bool

	jobs     []fieldsvc.Job
	jobsRes  query.Result
	jobsErr  error
	history  []fieldsvc.JobStatusLog
	histErr  error
	detailID int

	partners    []fieldsvc.Personnel
	partnersRes query.Result
	partnersErr error

	payout    *fieldsvc.PayoutSummary
	payoutRes query.Result
	payoutErr error

	// Login overlay. A 401 opens it once; further 401s while it is
	// already resolved this way stay on the form instead of looping.
	showLogin  bool
	loginSeen  bool
	emailIn    textinput.Model
	passwordIn textinput.Model
	loginFocus int
	loginErr   error
	loggingIn  bool

	quitting bool
}

// New builds the dashboard model.
func New(deps Deps) Model {
	email := textinput.New()
	email.Placeholder = "admin@example.com"
	email.CharLimit = 64
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 64

	jobsTable := table.New(
		table.WithColumns(jobColumns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	partnersTable := table.New(
		table.WithColumns(partnerColumns),
		table.WithHeight(12),
	)
	styleTables(&jobsTable, &partnersTable)

	return Model{
		deps:          deps,
		jobsTable:     jobsTable,
		partnersTable: partnersTable,
		emailIn:       email,
		passwordIn:    password,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchJobs(false),
		m.fetchPartners(false),
		m.fetchPayout(false),
		tick(),
	)
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// =============================================================================
// Fetch commands
// =============================================================================

var dashboardJobParams = fieldsvc.JobListParams{
	ListParams: fieldsvc.ListParams{Limit: 100},
}

func (m Model) fetchJobs(force bool) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		key := query.Key("jobs", dashboardJobParams)
		fetch := func(ctx context.Context) ([]fieldsvc.Job, error) {
			return deps.Services.Jobs.List(ctx, dashboardJobParams)
		}
		jobs, res, err := getOrRefresh(ctx, deps.Cache, key, fetch, force)
		return jobsMsg{jobs: jobs, res: res, err: err}
	}
}

func (m Model) fetchPartners(force bool) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		key := query.Key("partners", "all")
		fetch := func(ctx context.Context) ([]fieldsvc.Personnel, error) {
			return deps.Services.Partners.List(ctx)
		}
		partners, res, err := getOrRefresh(ctx, deps.Cache, key, fetch, force)
		return partnersMsg{partners: partners, res: res, err: err}
	}
}

func (m Model) fetchPayout(force bool) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		params := fieldsvc.PayoutParams{Period: fieldsvc.PeriodMonth}
		key := query.Key("analytics", params)
		fetch := func(ctx context.Context) (*fieldsvc.PayoutSummary, error) {
			return deps.Services.Analytics.PayoutSummary(ctx, params)
		}
		summary, res, err := getOrRefresh(ctx, deps.Cache, key, fetch, force)
		return payoutMsg{summary: summary, res: res, err: err}
	}
}

func (m Model) fetchHistory(jobID int) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		key := query.Key("jobs", map[string]any{"history": jobID})
		fetch := func(ctx context.Context) ([]fieldsvc.JobStatusLog, error) {
			return deps.Services.Jobs.History(ctx, jobID)
		}
		logs, _, err := getOrRefresh(ctx, deps.Cache, key, fetch, false)
		return historyMsg{jobID: jobID, logs: logs, err: err}
	}
}

func getOrRefresh[T any](ctx context.Context, store *query.Store, key string, fetch func(ctx context.Context) (T, error), force bool) (T, query.Result, error) {
	if force {
		return query.RefreshAs(ctx, store, key, fetch)
	}
	return query.GetAs(ctx, store, key, fetch)
}

func (m Model) submitLogin() tea.Cmd {
	deps := m.deps
	email := m.emailIn.Value()
	password := m.passwordIn.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		result, err := deps.Services.Auth.Login(ctx, fieldsvc.LoginRequest{
			Email:    email,
			Password: password,
		})
		if err != nil {
			return loginMsg{email: email, err: err}
		}
		err = deps.Sessions.Save(session.Session{
			Token:   result.Token,
			Email:   email,
			BaseURL: deps.BaseURL,
			SavedAt: time.Now(),
		})
		return loginMsg{email: email, err: err}
	}
}

// =============================================================================
// Update
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		if m.showLogin {
			return m.updateLogin(msg)
		}
		return m.updateKeys(msg)

	case jobsMsg:
		m.jobs = msg.jobs
		m.jobsRes = msg.res
		m.jobsErr = msg.err
		m.jobsTable.SetRows(jobRows(m.jobs))
		return m.noteAuth(msg.err), nil

	case partnersMsg:
		m.partners = msg.partners
		m.partnersRes = msg.res
		m.partnersErr = msg.err
		m.partnersTable.SetRows(partnerRows(m.partners))
		return m.noteAuth(msg.err), nil

	case payoutMsg:
		m.payout = msg.summary
		m.payoutRes = msg.res
		m.payoutErr = msg.err
		return m.noteAuth(msg.err), nil

	case historyMsg:
		if msg.jobID == m.detailID {
			m.history = msg.logs
			m.histErr = msg.err
			m.detail.SetContent(m.renderDetail())
		}
		return m, nil

	case loginMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.loginErr = msg.err
			return m, nil
		}
		m.deps.Logger.Info("dashboard login", "email", msg.email)
		m.showLogin = false
		m.loginErr = nil
		m.passwordIn.SetValue("")
		// Close the expiry episode so a later 401 opens the form again.
		m.loginSeen = false
		// Session renewed; repopulate every pane.
		return m, tea.Batch(m.fetchJobs(true), m.fetchPartners(true), m.fetchPayout(true))

	case tickMsg:
		return m, tea.Batch(m.refreshActive(false), tick())
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab", "right":
		m.active = (m.active + 1) % 3
		m.showDetail = false
		return m, m.refreshActive(false)

	case "shift+tab", "left":
		m.active = (m.active + 2) % 3
		m.showDetail = false
		return m, m.refreshActive(false)

	case "1":
		m.active = tabJobs
		return m, m.refreshActive(false)
	case "2":
		m.active = tabPartners
		return m, m.refreshActive(false)
	case "3":
		m.active = tabAnalytics
		return m, m.refreshActive(false)

	case "r":
		return m, m.refreshActive(true)

	case "d":
		m.showDebug = !m.showDebug
		return m, nil

	case "enter":
		if m.active == tabJobs && len(m.jobs) > 0 {
			if job := m.selectedJob(); job != nil {
				m.detailID = job.ID
				m.history = nil
				m.histErr = nil
				m.showDetail = true
				m.detail.SetContent(m.renderDetail())
				return m, m.fetchHistory(job.ID)
			}
		}
		return m, nil

	case "esc":
		m.showDetail = false
		return m, nil
	}

	var cmd tea.Cmd
	switch m.active {
	case tabJobs:
		if m.showDetail {
			m.detail, cmd = m.detail.Update(msg)
		} else {
			m.jobsTable, cmd = m.jobsTable.Update(msg)
		}
	case tabPartners:
		m.partnersTable, cmd = m.partnersTable.Update(msg)
	}
	return m, cmd
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab", "shift+tab", "up", "down":
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.emailIn.Focus()
			m.passwordIn.Blur()
		} else {
			m.emailIn.Blur()
			m.passwordIn.Focus()
		}
		return m, nil

	case "enter":
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.emailIn.Blur()
			m.passwordIn.Focus()
			return m, nil
		}
		if m.loggingIn {
			return m, nil
		}
		m.loggingIn = true
		m.loginErr = nil
		return m, m.submitLogin()
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.emailIn, cmd = m.emailIn.Update(msg)
	} else {
		m.passwordIn, cmd = m.passwordIn.Update(msg)
	}
	return m, cmd
}

// noteAuth flips to the login view on the first expired-session error.
func (m Model) noteAuth(err error) Model {
	if err == nil || !errors.Is(err, api.ErrAuthExpired) {
		return m
	}
	if !m.loginSeen {
		m.loginSeen = true
		m.showLogin = true
		m.loginFocus = 0
		m.emailIn.Focus()
		m.passwordIn.Blur()
		if current, err := m.deps.Sessions.Load(); err == nil {
			m.emailIn.SetValue(current.Email)
		}
	}
	return m
}

func (m Model) refreshActive(force bool) tea.Cmd {
	switch m.active {
	case tabPartners:
		return m.fetchPartners(force)
	case tabAnalytics:
		return m.fetchPayout(force)
	default:
		return m.fetchJobs(force)
	}
}

func (m *Model) selectedJob() *fieldsvc.Job {
	cursor := m.jobsTable.Cursor()
	if cursor < 0 || cursor >= len(m.jobs) {
		return nil
	}
	return &m.jobs[cursor]
}

func (m *Model) layout() {
	bodyHeight := m.height - 6
	if bodyHeight < 4 {
		bodyHeight = 4
	}
	m.jobsTable.SetHeight(bodyHeight)
	m.partnersTable.SetHeight(bodyHeight)
	m.detail = viewport.New(m.width, bodyHeight)
	if m.detailID != 0 {
		m.detail.SetContent(m.renderDetail())
	}
}
