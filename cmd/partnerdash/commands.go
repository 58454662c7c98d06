// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	jsonOut bool // machine-readable stdout
	noCache bool // bypass the query cache for this invocation

	// List paging and filters
	pageFlag     int
	limitFlag    int
	statusFilter string
	typeFilter   string
	searchFilter string

	// Auth
	emailFlag    string
	passwordFlag string

	// Job lifecycle
	notesFlag string
	otpFlag   bool
	otpCode   string

	// Job create/update fields (empty/zero means "not set")
	jobNameFlag    string
	customerFlag   string
	phoneFlag      string
	cityFlag       string
	rateFlag       float64
	sizeFlag       float64
	deliveryFlag   string
	assignedIPFlag int
	expenseFlag    float64
	jobStatusFlag  string
	nonInteractive bool

	// Analytics window
	periodFlag  string
	yearFlag    int
	monthFlag   int
	quarterFlag int
	weekFlag    int

	exportFormat string
	exportOut    string

	// Checklist check-off and approval
	checkedFlag      bool
	approvedFlag     bool
	fieldCommentFlag string
	adminCommentFlag string

	// Stub server
	serveAddr   string
	serveNoSeed bool

	rootCmd = &cobra.Command{
		Use:   "partnerdash",
		Short: "Admin CLI for the field-services partner dashboard",
		Long: `partnerdash manages dispatch jobs, installation partners, payout
analytics, checklists, and site requisitions against the admin backend.

Configuration lives at ~/.partnerdash/partnerdash.yaml (created on
first run). Log in once with "partnerdash auth login"; the session is
saved and reused until it expires.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// --- Auth ---
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Manage the login session",
	}
	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		RunE:  runLogin, // Defined in cmd_auth.go
	}
	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the saved session",
		RunE:  runLogout, // Defined in cmd_auth.go
	}
	authStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the saved session and its expiry",
		RunE:  runAuthStatus, // Defined in cmd_auth.go
	}
	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the current session",
		RunE:  runWhoami, // Defined in cmd_auth.go
	}

	// --- Jobs ---
	jobsCmd = &cobra.Command{
		Use:   "jobs",
		Short: "Manage dispatch jobs",
	}
	jobsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List jobs with optional filters",
		RunE:  runJobsList, // Defined in cmd_jobs.go
	}
	jobsGetCmd = &cobra.Command{
		Use:   "get [id]",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsGet, // Defined in cmd_jobs.go
	}
	jobsCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a job (interactive form unless fields are flagged)",
		RunE:  runJobsCreate, // Defined in cmd_jobs.go
	}
	jobsUpdateCmd = &cobra.Command{
		Use:   "update [id]",
		Short: "Update fields of a job",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsUpdate, // Defined in cmd_jobs.go
	}
	jobsDeleteCmd = &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a job",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsDelete, // Defined in cmd_jobs.go
	}
	jobsStartCmd = &cobra.Command{
		Use:   "start [id]",
		Short: "Start or resume a job (OTP flow when the customer has a phone)",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsStart, // Defined in cmd_jobs.go
	}
	jobsPauseCmd = &cobra.Command{
		Use:   "pause [id]",
		Short: "Pause an in-progress job",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsPause, // Defined in cmd_jobs.go
	}
	jobsFinishCmd = &cobra.Command{
		Use:   "finish [id]",
		Short: "Complete an in-progress job (OTP flow when the customer has a phone)",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsFinish, // Defined in cmd_jobs.go
	}
	jobsHistoryCmd = &cobra.Command{
		Use:   "history [id]",
		Short: "Show a job's status log, newest first",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsHistory, // Defined in cmd_jobs.go
	}

	// --- Partners ---
	partnersCmd = &cobra.Command{
		Use:     "partners",
		Aliases: []string{"ips"},
		Short:   "Manage installation partners (IPs)",
	}
	partnersListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all partners with verification flags",
		RunE:  runPartnersList, // Defined in cmd_partners.go
	}
	partnersApprovedCmd = &cobra.Command{
		Use:   "approved",
		Short: "List ID-verified partners eligible for assignment",
		RunE:  runPartnersApproved, // Defined in cmd_partners.go
	}
	partnersVerifyCmd = &cobra.Command{
		Use:   "verify [phone]",
		Short: "Mark a partner verified (sets every verification flag)",
		Args:  cobra.ExactArgs(1),
		RunE:  runPartnersVerify, // Defined in cmd_partners.go
	}

	// --- Analytics ---
	analyticsCmd = &cobra.Command{
		Use:   "analytics",
		Short: "Payout and performance rollups",
	}
	analyticsPayoutCmd = &cobra.Command{
		Use:   "payout",
		Short: "Payout summary for a reporting window",
		RunE:  runAnalyticsPayout, // Defined in cmd_analytics.go
	}
	analyticsStagesCmd = &cobra.Command{
		Use:   "stages",
		Short: "All-time per-status job rollup",
		RunE:  runAnalyticsStages, // Defined in cmd_analytics.go
	}
	analyticsPartnersCmd = &cobra.Command{
		Use:   "partners",
		Short: "All-time per-partner payout rollup",
		RunE:  runAnalyticsPartners, // Defined in cmd_analytics.go
	}
	analyticsExportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export the payout summary as PDF or CSV",
		RunE:  runAnalyticsExport, // Defined in cmd_analytics.go
	}

	// --- Checklists ---
	checklistsCmd = &cobra.Command{
		Use:   "checklists",
		Short: "Checklist templates and per-job item approval",
	}
	checklistsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List checklist templates",
		RunE:  runChecklistsList, // Defined in cmd_checklists.go
	}
	checklistsItemsCmd = &cobra.Command{
		Use:   "items [job-id]",
		Short: "Show the checklist items linked to a job",
		Args:  cobra.ExactArgs(1),
		RunE:  runChecklistsItems, // Defined in cmd_checklists.go
	}
	checklistsLinkCmd = &cobra.Command{
		Use:   "link [job-id] [checklist-id]",
		Short: "Attach a checklist template to a job",
		Args:  cobra.ExactArgs(2),
		RunE:  runChecklistsLink, // Defined in cmd_checklists.go
	}
	checklistsCheckCmd = &cobra.Command{
		Use:   "check [job-id] [item-id]",
		Short: "Mark a job's checklist item checked off in the field",
		Args:  cobra.ExactArgs(2),
		RunE:  runChecklistsCheck, // Defined in cmd_checklists.go
	}
	checklistsApproveCmd = &cobra.Command{
		Use:   "approve [job-id] [item-id]",
		Short: "Set approval state and comment on a job's checklist item",
		Args:  cobra.ExactArgs(2),
		RunE:  runChecklistsApprove, // Defined in cmd_checklists.go
	}

	// --- BOM / Requisitions ---
	bomCmd = &cobra.Command{
		Use:   "bom",
		Short: "Bill-of-materials lookups and site requisitions",
	}
	bomHistoryCmd = &cobra.Command{
		Use:   "history",
		Short: "List submitted requisitions, newest first",
		RunE:  runBOMHistory, // Defined in cmd_bom.go
	}
	bomShowCmd = &cobra.Command{
		Use:   "show [sales-order]",
		Short: "Show one sales order's requisition record",
		Args:  cobra.ExactArgs(1),
		RunE:  runBOMShow, // Defined in cmd_bom.go
	}
	bomStatusCmd = &cobra.Command{
		Use:   "status [id] [pending|completed]",
		Short: "Mark a requisition pending or completed",
		Args:  cobra.ExactArgs(2),
		RunE:  runBOMStatus, // Defined in cmd_bom.go
	}
	bomTreeCmd = &cobra.Command{
		Use:   "tree [sales-order] [cabinet-position]",
		Short: "Fetch the BOM tree for a sales order and cabinet",
		Args:  cobra.ExactArgs(2),
		RunE:  runBOMTree, // Defined in cmd_bom.go
	}

	// --- Dashboard / Dev ---
	dashboardCmd = &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive terminal dashboard",
		RunE:  runDashboard, // Defined in cmd_dev.go
	}
	devCmd = &cobra.Command{
		Use:   "dev",
		Short: "Development helpers",
	}
	devServeCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the in-memory stub backend",
		RunE:  runDevServe, // Defined in cmd_dev.go
	}
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Check backend reachability and session health",
		RunE:  runStatus, // Defined in cmd_dev.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON on stdout")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Bypass the query cache and hit the backend directly")

	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(whoamiCmd)
	loginCmd.Flags().StringVar(&emailFlag, "email", "", "Account email (prompted when omitted)")
	loginCmd.Flags().StringVar(&passwordFlag, "password", "", "Account password (prompted when omitted)")

	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsGetCmd)
	jobsCmd.AddCommand(jobsCreateCmd)
	jobsCmd.AddCommand(jobsUpdateCmd)
	jobsCmd.AddCommand(jobsDeleteCmd)
	jobsCmd.AddCommand(jobsStartCmd)
	jobsCmd.AddCommand(jobsPauseCmd)
	jobsCmd.AddCommand(jobsFinishCmd)
	jobsCmd.AddCommand(jobsHistoryCmd)
	jobsListCmd.Flags().IntVar(&pageFlag, "page", 1, "1-based page number")
	jobsListCmd.Flags().IntVar(&limitFlag, "limit", 20, "Page size")
	jobsListCmd.Flags().StringVar(&statusFilter, "status", "", "Filter by lifecycle state (created, in_progress, paused, completed)")
	jobsListCmd.Flags().StringVar(&typeFilter, "type", "", "Filter by job type")
	jobsListCmd.Flags().StringVar(&searchFilter, "search", "", "Prefix match on job name, customer, or city")
	for _, cmd := range []*cobra.Command{jobsCreateCmd, jobsUpdateCmd} {
		cmd.Flags().StringVar(&jobNameFlag, "name", "", "Job name")
		cmd.Flags().StringVar(&customerFlag, "customer", "", "Customer name")
		cmd.Flags().StringVar(&phoneFlag, "phone", "", "Customer phone (enables the OTP lifecycle)")
		cmd.Flags().StringVar(&cityFlag, "city", "", "City")
		cmd.Flags().StringVar(&typeFilter, "type", "", "Job type")
		cmd.Flags().Float64Var(&rateFlag, "rate", 0, "Rate per unit")
		cmd.Flags().Float64Var(&sizeFlag, "size", 0, "Job size in units")
		cmd.Flags().StringVar(&deliveryFlag, "delivery", "", "Delivery date (YYYY-MM-DD)")
		cmd.Flags().IntVar(&assignedIPFlag, "assign", 0, "Partner id to assign")
		cmd.Flags().Float64Var(&expenseFlag, "expense", 0, "Additional expense")
	}
	jobsCreateCmd.Flags().BoolVar(&nonInteractive, "no-input", false, "Never prompt; rely on flags alone")
	jobsUpdateCmd.Flags().StringVar(&jobStatusFlag, "status", "", "Override the lifecycle state directly")
	for _, cmd := range []*cobra.Command{jobsStartCmd, jobsPauseCmd, jobsFinishCmd} {
		cmd.Flags().StringVar(&notesFlag, "notes", "", "Note to record in the status log")
	}
	for _, cmd := range []*cobra.Command{jobsStartCmd, jobsFinishCmd} {
		cmd.Flags().BoolVar(&otpFlag, "otp", false, "Force the OTP flow")
		cmd.Flags().StringVar(&otpCode, "code", "", "OTP code (prompted when omitted)")
	}

	rootCmd.AddCommand(partnersCmd)
	partnersCmd.AddCommand(partnersListCmd)
	partnersCmd.AddCommand(partnersApprovedCmd)
	partnersCmd.AddCommand(partnersVerifyCmd)

	rootCmd.AddCommand(analyticsCmd)
	analyticsCmd.AddCommand(analyticsPayoutCmd)
	analyticsCmd.AddCommand(analyticsStagesCmd)
	analyticsCmd.AddCommand(analyticsPartnersCmd)
	analyticsCmd.AddCommand(analyticsExportCmd)
	for _, cmd := range []*cobra.Command{analyticsPayoutCmd, analyticsExportCmd} {
		cmd.Flags().StringVar(&periodFlag, "period", "month", "Reporting window: week, month, quarter, or year")
		cmd.Flags().IntVar(&yearFlag, "year", 0, "Year (defaults to the current one)")
		cmd.Flags().IntVar(&monthFlag, "month", 0, "Month 1-12")
		cmd.Flags().IntVar(&quarterFlag, "quarter", 0, "Quarter 1-4")
		cmd.Flags().IntVar(&weekFlag, "week", 0, "ISO-style week number")
	}
	analyticsExportCmd.Flags().StringVar(&exportFormat, "format", "pdf", "Output format: pdf or csv")
	analyticsExportCmd.Flags().StringVar(&exportOut, "out", "", "Output path (defaults to a generated filename)")

	rootCmd.AddCommand(checklistsCmd)
	checklistsCmd.AddCommand(checklistsListCmd)
	checklistsCmd.AddCommand(checklistsItemsCmd)
	checklistsCmd.AddCommand(checklistsLinkCmd)
	checklistsCmd.AddCommand(checklistsCheckCmd)
	checklistsCmd.AddCommand(checklistsApproveCmd)
	checklistsCheckCmd.Flags().StringVar(&fieldCommentFlag, "comment", "", "Field note to attach")
	checklistsApproveCmd.Flags().BoolVar(&checkedFlag, "checked", false, "Mark the item checked")
	checklistsApproveCmd.Flags().BoolVar(&approvedFlag, "approved", true, "Set admin approval")
	checklistsApproveCmd.Flags().StringVar(&adminCommentFlag, "comment", "", "Admin comment")

	rootCmd.AddCommand(bomCmd)
	bomCmd.AddCommand(bomHistoryCmd)
	bomCmd.AddCommand(bomShowCmd)
	bomCmd.AddCommand(bomStatusCmd)
	bomCmd.AddCommand(bomTreeCmd)
	bomHistoryCmd.Flags().IntVar(&pageFlag, "page", 1, "1-based page number")
	bomHistoryCmd.Flags().IntVar(&limitFlag, "limit", 20, "Page size")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(devCmd)
	devCmd.AddCommand(devServeCmd)
	devServeCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "Listen address")
	devServeCmd.Flags().BoolVar(&serveNoSeed, "no-seed", false, "Start with empty state instead of demo fixtures")
	rootCmd.AddCommand(statusCmd)
}
