// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

// DateRange computes the reporting window for a period selector,
// matching the backend's window arithmetic day for day.
//
// Description:
//
//	Both bounds are inclusive calendar days. Zero year/month/quarter/
//	week values mean "the one containing today":
//	  - week: Monday through Sunday. An explicit week counts from
//	    Jan 1 of the year, snapped back to its Monday.
//	  - month: first through last day of the month.
//	  - quarter: Q1 Jan-Mar, Q2 Apr-Jun, Q3 Jul-Sep, Q4 Oct-Dec.
//	  - year: Jan 1 through Dec 31.
//
// Inputs:
//   - today: Reference date for the implicit "current" window.
//     Injected so tests stay deterministic.
//   - period: One of fieldsvc.PeriodWeek/Month/Quarter/Year.
//   - year, month, quarter, week: Explicit selectors, 0 for current.
//
// Outputs:
//   - start, end: Inclusive window bounds at midnight UTC.
//   - error: Unknown period or out-of-range quarter.
func DateRange(today time.Time, period string, year, month, quarter, week int) (start, end time.Time, err error) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	// Monday-based weekday offset; Go counts Sunday as 0.
	mondayOffset := func(t time.Time) int {
		return (int(t.Weekday()) + 6) % 7
	}

	switch period {
	case fieldsvc.PeriodWeek:
		if week > 0 && year > 0 {
			start = day(year, time.January, 1).AddDate(0, 0, (week-1)*7)
			start = start.AddDate(0, 0, -mondayOffset(start))
		} else {
			start = day(today.Year(), today.Month(), today.Day()).AddDate(0, 0, -mondayOffset(today))
		}
		end = start.AddDate(0, 0, 6)

	case fieldsvc.PeriodMonth:
		y, m := today.Year(), int(today.Month())
		if month > 0 && year > 0 {
			y, m = year, month
		}
		start = day(y, time.Month(m), 1)
		if m < 12 {
			end = day(y, time.Month(m+1), 1).AddDate(0, 0, -1)
		} else {
			end = day(y, time.December, 31)
		}

	case fieldsvc.PeriodQuarter:
		y := today.Year()
		q := (int(today.Month())-1)/3 + 1
		if quarter > 0 && year > 0 {
			y, q = year, quarter
		}
		if q < 1 || q > 4 {
			return start, end, fmt.Errorf("quarter must be between 1 and 4, got %d", q)
		}
		startMonth := time.Month((q-1)*3 + 1)
		start = day(y, startMonth, 1)
		if q == 4 {
			end = day(y, time.December, 31)
		} else {
			end = day(y, startMonth+3, 1).AddDate(0, 0, -1)
		}

	case fieldsvc.PeriodYear:
		y := today.Year()
		if year > 0 {
			y = year
		}
		start = day(y, time.January, 1)
		end = day(y, time.December, 31)

	default:
		return start, end, fmt.Errorf("invalid period %q: use week, month, quarter, or year", period)
	}

	return start, end, nil
}

// Recompute derives a payout summary from a raw job list, reproducing
// the backend's aggregation locally.
//
// Description:
//
//	The window filter keys on delivery_date (inclusive bounds; jobs
//	without one fall outside every window). TotalJobs and JobStages
//	count every job in the window regardless of status, while
//	TotalPayout, TotalAdditionalExpense, and PayoutByIP cover
//	completed jobs only, exactly as the server computes them.
//
//	Output ordering is deterministic: stages sorted by status name,
//	per-partner rows by partner id. The server leaves both orders to
//	its database, so cross-checks should compare as sets or sort the
//	server response the same way.
//
// Inputs:
//   - jobs: Raw job records; the caller decides how many pages to feed.
//   - period: Label copied into the summary.
//   - start, end: Inclusive window bounds, from DateRange.
//
// Outputs:
//   - fieldsvc.PayoutSummary: Locally derived summary.
func Recompute(jobs []fieldsvc.Job, period string, start, end time.Time) fieldsvc.PayoutSummary {
	summary := fieldsvc.PayoutSummary{
		Period:     period,
		StartDate:  fieldsvc.Date{Time: start},
		EndDate:    fieldsvc.Date{Time: end},
		JobStages:  []fieldsvc.JobStageStat{},
		PayoutByIP: []fieldsvc.PersonnelPayoutStat{},
	}

	stages := make(map[string]*fieldsvc.JobStageStat)
	perIP := make(map[int]*fieldsvc.PersonnelPayoutStat)

	for _, j := range jobs {
		if !inWindow(j, start, end) {
			continue
		}
		summary.TotalJobs++

		stage, ok := stages[j.Status]
		if !ok {
			stage = &fieldsvc.JobStageStat{Status: j.Status}
			stages[j.Status] = stage
		}
		stage.Count++
		stage.TotalPayout += fieldsvc.Number(JobPayout(j))
		stage.TotalAdditionalExpense += j.AdditionalExpense

		if j.Status != fieldsvc.JobStatusCompleted {
			continue
		}
		summary.TotalPayout += fieldsvc.Number(JobPayout(j))
		summary.TotalAdditionalExpense += j.AdditionalExpense

		if j.AssignedIP == nil {
			continue
		}
		row, ok := perIP[j.AssignedIP.ID]
		if !ok {
			row = &fieldsvc.PersonnelPayoutStat{
				IPID:   j.AssignedIP.ID,
				IPName: ipName(*j.AssignedIP),
			}
			perIP[j.AssignedIP.ID] = row
		}
		row.JobCount++
		row.TotalPayout += fieldsvc.Number(JobPayout(j))
		row.TotalAdditionalExpense += j.AdditionalExpense
	}

	for _, stage := range stages {
		summary.JobStages = append(summary.JobStages, *stage)
	}
	sort.Slice(summary.JobStages, func(i, k int) bool {
		return summary.JobStages[i].Status < summary.JobStages[k].Status
	})

	for _, row := range perIP {
		summary.PayoutByIP = append(summary.PayoutByIP, *row)
	}
	sort.Slice(summary.PayoutByIP, func(i, k int) bool {
		return summary.PayoutByIP[i].IPID < summary.PayoutByIP[k].IPID
	})

	return summary
}

// inWindow reports whether a job's delivery date falls inside the
// inclusive [start, end] window.
func inWindow(j fieldsvc.Job, start, end time.Time) bool {
	if j.DeliveryDate == nil || j.DeliveryDate.IsZero() {
		return false
	}
	d := j.DeliveryDate.Time
	return !d.Before(start) && !d.After(end)
}
