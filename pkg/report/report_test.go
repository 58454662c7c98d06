// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/analytics"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

func sampleSummary() fieldsvc.PayoutSummary {
	return fieldsvc.PayoutSummary{
		Period:                 fieldsvc.PeriodMonth,
		StartDate:              fieldsvc.NewDate(2025, time.June, 1),
		EndDate:                fieldsvc.NewDate(2025, time.June, 30),
		TotalJobs:              3,
		TotalPayout:            410,
		TotalAdditionalExpense: 15,
		JobStages: []fieldsvc.JobStageStat{
			{Status: "completed", Count: 2, TotalPayout: 410, TotalAdditionalExpense: 15},
			{Status: "in_progress", Count: 1},
		},
		PayoutByIP: []fieldsvc.PersonnelPayoutStat{
			{IPID: 7, IPName: "Asha Nair", JobCount: 2, TotalPayout: 410, TotalAdditionalExpense: 15},
		},
	}
}

func TestPayoutPDF(t *testing.T) {
	groups := []analytics.Group{
		{Type: "Install", Count: 2, Payout: 400, Expense: 10, TotalSize: 6, TotalCost: 410, AvgRatePerUnit: 68.33},
	}

	data, filename, err := PayoutPDF(sampleSummary(), groups)
	if err != nil {
		t.Fatalf("PayoutPDF() failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output does not look like a PDF")
	}
	if filename != "payout_month_2025-06-01.pdf" {
		t.Errorf("filename = %q", filename)
	}
}

func TestPayoutPDF_NoGroups(t *testing.T) {
	data, _, err := PayoutPDF(sampleSummary(), nil)
	if err != nil {
		t.Fatalf("PayoutPDF() failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty PDF output")
	}
}

func TestPayoutCSV(t *testing.T) {
	data, filename, err := PayoutCSV(sampleSummary())
	if err != nil {
		t.Fatalf("PayoutCSV() failed: %v", err)
	}
	if filename != "payout_month_2025-06-01.csv" {
		t.Errorf("filename = %q", filename)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parsing CSV back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want header + 1 row", len(records))
	}
	if records[1][1] != "Asha Nair" || records[1][3] != "410.00" {
		t.Errorf("row = %v", records[1])
	}
}

func TestGroupsCSV(t *testing.T) {
	data, err := GroupsCSV([]analytics.Group{
		{Type: "Install", Count: 2, TotalCost: 410},
		{Type: "Other", Count: 1, TotalCost: 5},
	})
	if err != nil {
		t.Fatalf("GroupsCSV() failed: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parsing CSV back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want header + 2 rows", len(records))
	}
	if records[1][0] != "Install" {
		t.Errorf("first row type = %q", records[1][0])
	}
}
