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
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/analytics"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/report"
)

func payoutParams() fieldsvc.PayoutParams {
	return fieldsvc.PayoutParams{
		Period:  periodFlag,
		Year:    yearFlag,
		Month:   monthFlag,
		Quarter: quarterFlag,
		Week:    weekFlag,
	}
}

func fetchPayoutSummary(ctx context.Context) (*fieldsvc.PayoutSummary, error) {
	params := payoutParams()
	return cached(ctx, "analytics", params, func(ctx context.Context) (*fieldsvc.PayoutSummary, error) {
		return application.services.Analytics.PayoutSummary(ctx, params)
	})
}

func runAnalyticsPayout(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	summary, err := fetchPayoutSummary(ctx)
	if err != nil {
		return fail(err)
	}

	return emit(summary, func() {
		fmt.Printf("%s %s — %s\n",
			headerStyle.Render("Payout ("+summary.Period+")"),
			summary.StartDate, summary.EndDate)
		fmt.Printf("  Jobs delivered: %d\n", summary.TotalJobs)
		fmt.Printf("  Total payout:   %s\n", money(summary.TotalPayout))
		fmt.Printf("  Total expense:  %s\n", money(summary.TotalAdditionalExpense))
		if len(summary.JobStages) > 0 {
			fmt.Println()
			stageTable(summary.JobStages)
		}
		if len(summary.PayoutByIP) > 0 {
			fmt.Println()
			partnerStatTable(summary.PayoutByIP)
		}
	})
}

func stageTable(stages []fieldsvc.JobStageStat) {
	rows := make([][]string, 0, len(stages))
	for _, s := range stages {
		rows = append(rows, []string{
			s.Status, strconv.Itoa(s.Count), money(s.TotalPayout), money(s.TotalAdditionalExpense),
		})
	}
	table([]string{"STATUS", "COUNT", "PAYOUT", "EXPENSE"}, []int{13, 6, 12, 12}, rows)
}

func partnerStatTable(stats []fieldsvc.PersonnelPayoutStat) {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			strconv.Itoa(s.IPID), s.IPName, strconv.Itoa(s.JobCount),
			money(s.TotalPayout), money(s.TotalAdditionalExpense),
		})
	}
	table([]string{"IP", "NAME", "JOBS", "PAYOUT", "EXPENSE"}, []int{5, 22, 5, 12, 12}, rows)
}

func runAnalyticsStages(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	stages, err := cached(ctx, "analytics", "stages", func(ctx context.Context) ([]fieldsvc.JobStageStat, error) {
		return application.services.Analytics.JobStages(ctx)
	})
	if err != nil {
		return fail(err)
	}
	return emit(stages, func() { stageTable(stages) })
}

func runAnalyticsPartners(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	stats, err := cached(ctx, "analytics", "partners", func(ctx context.Context) ([]fieldsvc.PersonnelPayoutStat, error) {
		return application.services.Analytics.PartnerPerformance(ctx)
	})
	if err != nil {
		return fail(err)
	}
	return emit(stats, func() { partnerStatTable(stats) })
}

// runAnalyticsExport renders the payout summary to PDF or CSV. The
// per-type cost grouping comes from a local pass over the job list
// since the backend has no endpoint for it.
func runAnalyticsExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	summary, err := fetchPayoutSummary(ctx)
	if err != nil {
		return fail(err)
	}
	jobs, err := application.services.Jobs.List(ctx, fieldsvc.JobListParams{
		ListParams: fieldsvc.ListParams{Limit: 500},
	})
	if err != nil {
		return fail(err)
	}
	groups := analytics.GroupByType(jobs)

	var data []byte
	var name string
	switch exportFormat {
	case "pdf":
		data, name, err = report.PayoutPDF(*summary, groups)
	case "csv":
		data, name, err = report.PayoutCSV(*summary)
	default:
		return fail(fmt.Errorf("format %q: want pdf or csv", exportFormat))
	}
	if err != nil {
		return fail(err)
	}

	out := exportOut
	if out == "" {
		out = name
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fail(err)
	}

	return emit(map[string]any{"path": out, "bytes": len(data)}, func() {
		fmt.Println(okStyle.Render(fmt.Sprintf("Wrote %s (%d bytes)", out, len(data))))
	})
}
