// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report renders payout summaries to files an operations team
// can hand around: a one-page PDF and a spreadsheet-friendly CSV.
//
// Rendering is pure: summary in, bytes plus a suggested filename out.
// The CLI decides where the bytes land.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/phpdave11/gofpdf"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/analytics"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

// PayoutPDF renders a payout summary to a one-page A4 PDF.
//
// # Inputs
//   - summary: The reporting window's payout rollup.
//   - groups: Optional client-side per-type aggregation to append;
//     pass nil to omit the section.
//
// # Outputs
//   - []byte: The PDF document.
//   - string: Suggested filename, e.g. "payout_month_2025-06-01.pdf".
//   - error: PDF assembly failure.
func PayoutPDF(summary fieldsvc.PayoutSummary, groups []analytics.Group) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payout Summary", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYOUT SUMMARY")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Period          : %s", summary.Period),
		fmt.Sprintf("Window          : %s to %s", summary.StartDate, summary.EndDate),
		fmt.Sprintf("Total jobs      : %d", summary.TotalJobs),
		fmt.Sprintf("Total payout    : %.2f", summary.TotalPayout.Float()),
		fmt.Sprintf("Total expense   : %.2f", summary.TotalAdditionalExpense.Float()),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	if len(summary.JobStages) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "By job stage")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, stage := range summary.JobStages {
			pdf.Cell(0, 6, fmt.Sprintf("%-14s  jobs %-4d  payout %.2f  expense %.2f",
				stage.Status, stage.Count, stage.TotalPayout.Float(), stage.TotalAdditionalExpense.Float()))
			pdf.Ln(6)
		}
	}

	if len(summary.PayoutByIP) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "By partner (completed jobs)")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, row := range summary.PayoutByIP {
			pdf.Cell(0, 6, fmt.Sprintf("%-24s  jobs %-4d  payout %.2f  expense %.2f",
				row.IPName, row.JobCount, row.TotalPayout.Float(), row.TotalAdditionalExpense.Float()))
			pdf.Ln(6)
		}
	}

	if len(groups) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "By job type (client-side)")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, g := range groups {
			pdf.Cell(0, 6, fmt.Sprintf("%-18s  jobs %-4d  cost %.2f  avg/unit %.2f",
				g.Type, g.Count, g.TotalCost, g.AvgRatePerUnit))
			pdf.Ln(6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render payout pdf: %w", err)
	}

	filename := fmt.Sprintf("payout_%s_%s.pdf", summary.Period, summary.StartDate)
	return buf.Bytes(), filename, nil
}

// PayoutCSV renders per-partner payout rows as CSV with a header.
func PayoutCSV(summary fieldsvc.PayoutSummary) ([]byte, string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"ip_id", "ip_name", "job_count", "total_payout", "total_additional_expense"},
	}
	for _, row := range summary.PayoutByIP {
		records = append(records, []string{
			strconv.Itoa(row.IPID),
			row.IPName,
			strconv.Itoa(row.JobCount),
			strconv.FormatFloat(row.TotalPayout.Float(), 'f', 2, 64),
			strconv.FormatFloat(row.TotalAdditionalExpense.Float(), 'f', 2, 64),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return nil, "", fmt.Errorf("render payout csv: %w", err)
	}

	filename := fmt.Sprintf("payout_%s_%s.csv", summary.Period, summary.StartDate)
	return buf.Bytes(), filename, nil
}

// GroupsCSV renders the client-side per-type aggregation as CSV.
func GroupsCSV(groups []analytics.Group) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"type", "count", "payout", "expense", "total_size", "total_cost", "avg_rate_per_unit"},
	}
	for _, g := range groups {
		records = append(records, []string{
			g.Type,
			strconv.Itoa(g.Count),
			strconv.FormatFloat(g.Payout, 'f', 2, 64),
			strconv.FormatFloat(g.Expense, 'f', 2, 64),
			strconv.FormatFloat(g.TotalSize, 'f', 2, 64),
			strconv.FormatFloat(g.TotalCost, 'f', 2, 64),
			strconv.FormatFloat(g.AvgRatePerUnit, 'f', 2, 64),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("render groups csv: %w", err)
	}
	return buf.Bytes(), nil
}
