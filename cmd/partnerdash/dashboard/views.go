// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/logging"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/query"
)

// =============================================================================
// Styles
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	freshStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	loginBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(1, 2)
)

// =============================================================================
// Tables
// =============================================================================

var jobColumns = []table.Column{
	{Title: "ID", Width: 5},
	{Title: "Name", Width: 26},
	{Title: "Status", Width: 12},
	{Title: "City", Width: 12},
	{Title: "Rate", Width: 8},
	{Title: "Size", Width: 6},
	{Title: "Partner", Width: 18},
}

var partnerColumns = []table.Column{
	{Title: "ID", Width: 5},
	{Title: "Name", Width: 22},
	{Title: "Phone", Width: 14},
	{Title: "City", Width: 12},
	{Title: "ID-ver", Width: 7},
	{Title: "Busy", Width: 5},
}

func styleTables(tables ...*table.Model) {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		Foreground(lipgloss.Color("39")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	for _, t := range tables {
		t.SetStyles(styles)
	}
}

func jobRows(jobs []fieldsvc.Job) []table.Row {
	rows := make([]table.Row, 0, len(jobs))
	for _, j := range jobs {
		partner := ""
		if j.AssignedIP != nil {
			partner = j.AssignedIP.FullName()
		}
		rows = append(rows, table.Row{
			strconv.Itoa(j.ID), j.Name, j.Status, j.City,
			fmt.Sprintf("%.0f", j.Rate.Float()),
			fmt.Sprintf("%.0f", j.Size),
			partner,
		})
	}
	return rows
}

func partnerRows(partners []fieldsvc.Personnel) []table.Row {
	rows := make([]table.Row, 0, len(partners))
	for _, p := range partners {
		rows = append(rows, table.Row{
			strconv.Itoa(p.ID), p.FullName(), p.PhoneNumber, p.City,
			yesNo(p.IsIDVerified), yesNo(p.IsAssigned),
		})
	}
	return rows
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// =============================================================================
// View
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch {
	case m.showLogin:
		b.WriteString(m.renderLogin())
	case m.showDebug:
		b.WriteString(m.renderDebug())
	case m.active == tabJobs && m.showDetail:
		b.WriteString(m.detail.View())
	case m.active == tabJobs:
		b.WriteString(m.jobsTable.View())
	case m.active == tabPartners:
		b.WriteString(m.partnersTable.View())
	case m.active == tabAnalytics:
		b.WriteString(m.renderPayout())
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab/1-3 switch · enter detail · r refresh · d logs · q quit"))
	return b.String()
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, 3)
	for _, t := range []tab{tabJobs, tabPartners, tabAnalytics} {
		if t == m.active {
			parts = append(parts, activeTabStyle.Render(t.String()))
		} else {
			parts = append(parts, tabStyle.Render(t.String()))
		}
	}
	return titleStyle.Render("partnerdash") + "  " + strings.Join(parts, "")
}

// renderStatusLine shows the cache state per resource so staleness is
// visible at a glance.
func (m Model) renderStatusLine() string {
	parts := []string{
		resourceState("jobs", m.jobsRes, m.jobsErr),
		resourceState("partners", m.partnersRes, m.partnersErr),
		resourceState("payout", m.payoutRes, m.payoutErr),
	}
	return statusStyle.Render(m.deps.BaseURL) + "  " + strings.Join(parts, "  ")
}

func resourceState(name string, res query.Result, err error) string {
	switch {
	case err != nil:
		return errorStyle.Render(name + ":error")
	case res.State == query.StateLoading:
		return staleStyle.Render(name + ":loading")
	case res.Stale:
		return staleStyle.Render(name + ":stale")
	case res.State == query.StateReady:
		return freshStyle.Render(name + ":fresh")
	default:
		return statusStyle.Render(name + ":" + res.State.String())
	}
}

// =============================================================================
// Detail pane
// =============================================================================

func (m Model) renderDetail() string {
	var job *fieldsvc.Job
	for i := range m.jobs {
		if m.jobs[i].ID == m.detailID {
			job = &m.jobs[i]
			break
		}
	}
	if job == nil {
		return "Job no longer in the list."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(job.Name))
	b.WriteString(fmt.Sprintf("  (id %d, %s)\n\n", job.ID, job.Status))
	b.WriteString(labelStyle.Render("Customer: "))
	b.WriteString(job.CustomerName)
	if job.CustomerPhone != "" {
		b.WriteString("  " + job.CustomerPhone)
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Payout:   "))
	b.WriteString(fmt.Sprintf("%.2f × %.1f = %.2f", job.Rate.Float(), job.Size, job.Rate.Float()*job.Size))
	b.WriteString("\n")
	if job.DeliveryDate != nil {
		b.WriteString(labelStyle.Render("Delivery: "))
		b.WriteString(job.DeliveryDate.String())
		b.WriteString("\n")
	}
	if job.AssignedIP != nil {
		b.WriteString(labelStyle.Render("Partner:  "))
		b.WriteString(job.AssignedIP.FullName())
		b.WriteString("\n")
	}

	b.WriteString("\n" + titleStyle.Render("History") + "\n")
	switch {
	case m.histErr != nil:
		b.WriteString(errorStyle.Render(m.histErr.Error()) + "\n")
	case len(m.history) == 0:
		b.WriteString(statusStyle.Render("(loading)") + "\n")
	default:
		for _, log := range m.history {
			b.WriteString(fmt.Sprintf("  %s  %-12s %s\n",
				log.Timestamp.Format("01-02 15:04"), log.Status, log.Notes))
		}
	}
	return b.String()
}

// =============================================================================
// Payout pane
// =============================================================================

func (m Model) renderPayout() string {
	if m.payoutErr != nil {
		return errorStyle.Render(m.payoutErr.Error())
	}
	if m.payout == nil {
		return statusStyle.Render("(loading)")
	}

	s := m.payout
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Payout — %s", s.Period)))
	b.WriteString(fmt.Sprintf("  %s to %s\n\n", s.StartDate, s.EndDate))
	b.WriteString(fmt.Sprintf("Jobs %d   Payout %.2f   Expense %.2f\n\n",
		s.TotalJobs, s.TotalPayout.Float(), s.TotalAdditionalExpense.Float()))

	if len(s.PayoutByIP) > 0 {
		b.WriteString(labelStyle.Render("By partner") + "\n")
		b.WriteString(renderBars(s.PayoutByIP))
		b.WriteString("\n")
	}
	if len(s.JobStages) > 0 {
		b.WriteString(labelStyle.Render("By stage") + "\n")
		for _, st := range s.JobStages {
			b.WriteString(fmt.Sprintf("  %-12s %3d  %10.2f\n", st.Status, st.Count, st.TotalPayout.Float()))
		}
	}
	return b.String()
}

const barWidth = 30

func renderBars(stats []fieldsvc.PersonnelPayoutStat) string {
	max := 0.0
	for _, s := range stats {
		if v := s.TotalPayout.Float(); v > max {
			max = v
		}
	}

	var b strings.Builder
	for _, s := range stats {
		width := 0
		if max > 0 {
			width = int(s.TotalPayout.Float() / max * barWidth)
		}
		if width == 0 && s.TotalPayout > 0 {
			width = 1
		}
		b.WriteString(fmt.Sprintf("  %-20s %s %.2f\n",
			s.IPName, barStyle.Render(strings.Repeat("█", width)), s.TotalPayout.Float()))
	}
	return b.String()
}

// =============================================================================
// Login overlay
// =============================================================================

func (m Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Session expired — sign in") + "\n\n")
	b.WriteString("Email\n" + m.emailIn.View() + "\n\n")
	b.WriteString("Password\n" + m.passwordIn.View() + "\n")
	if m.loggingIn {
		b.WriteString("\n" + statusStyle.Render("Signing in..."))
	}
	if m.loginErr != nil {
		b.WriteString("\n" + errorStyle.Render(m.loginErr.Error()))
	}
	return loginBoxStyle.Render(b.String())
}

// =============================================================================
// Debug pane
// =============================================================================

func (m Model) renderDebug() string {
	if m.deps.Buffer == nil {
		return statusStyle.Render("No log buffer attached.")
	}
	entries := m.deps.Buffer.Tail(30)
	if len(entries) == 0 {
		return statusStyle.Render("No log entries yet.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent logs") + "\n\n")
	for _, e := range entries {
		line := fmt.Sprintf("%s %-5s %s", e.Timestamp.Format("15:04:05"), e.Level, e.Message)
		if e.Level >= logging.LevelError {
			b.WriteString(errorStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}
