// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analytics derives payout metrics from job lists on the
// client side.
//
// Every function here is pure and synchronous: job records in, numbers
// out, no I/O and no hidden state, so identical inputs always produce
// identical outputs. The dashboard uses these to aggregate whatever
// job page is on screen; Recompute additionally mirrors the backend's
// payout-summary query so the two can be cross-checked.
package analytics

import (
	"sort"
	"strings"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

// OtherType is the bucket for jobs without a job-type tag.
const OtherType = "Other"

// Group is the aggregate for one job type.
type Group struct {
	// Type is the job-type name, or OtherType for untagged jobs.
	Type string

	// Count is how many jobs fell in this group.
	Count int

	// Payout is Σ rate×size over the group.
	Payout float64

	// Expense is Σ additional_expense over the group.
	Expense float64

	// TotalSize is Σ size over the group.
	TotalSize float64

	// TotalCost is Payout + Expense.
	TotalCost float64

	// AvgRatePerUnit is TotalCost / TotalSize, 0 when TotalSize is 0.
	AvgRatePerUnit float64
}

// JobCost is a job's total cost: rate×size plus additional expense.
func JobCost(j fieldsvc.Job) float64 {
	return j.Rate.Float()*j.Size + j.AdditionalExpense.Float()
}

// JobPayout is a job's payout component: rate×size.
func JobPayout(j fieldsvc.Job) float64 {
	return j.Rate.Float() * j.Size
}

// UnitCost is a job's cost per unit of size, 0 for zero-size jobs.
func UnitCost(j fieldsvc.Job) float64 {
	if j.Size == 0 {
		return 0
	}
	return JobCost(j) / j.Size
}

// GroupByType partitions jobs by type and aggregates each group.
//
// Description:
//
//	Jobs with an empty type land in the OtherType bucket. Groups come
//	back sorted by TotalCost descending for display. The sum of group
//	counts always equals len(jobs).
//
// Inputs:
//   - jobs: Any job list; nil and empty are fine.
//
// Outputs:
//   - []Group: One group per distinct type, possibly empty.
func GroupByType(jobs []fieldsvc.Job) []Group {
	byType := make(map[string]*Group)
	// Keep first-encounter order so output is deterministic before the
	// sort; map iteration order is not.
	var order []string

	for _, j := range jobs {
		typ := j.Type
		if typ == "" {
			typ = OtherType
		}
		g, ok := byType[typ]
		if !ok {
			g = &Group{Type: typ}
			byType[typ] = g
			order = append(order, typ)
		}
		g.Count++
		g.Payout += JobPayout(j)
		g.Expense += j.AdditionalExpense.Float()
		g.TotalSize += j.Size
	}

	groups := make([]Group, 0, len(order))
	for _, typ := range order {
		g := byType[typ]
		g.TotalCost = g.Payout + g.Expense
		if g.TotalSize != 0 {
			g.AvgRatePerUnit = g.TotalCost / g.TotalSize
		}
		groups = append(groups, *g)
	}

	sort.Slice(groups, func(i, k int) bool {
		return groups[i].TotalCost > groups[k].TotalCost
	})
	return groups
}

// LargestByCost returns the job with the highest total cost.
//
// Linear scan with a running maximum; ties keep the first-encountered
// job. ok is false for an empty list.
func LargestByCost(jobs []fieldsvc.Job) (best fieldsvc.Job, ok bool) {
	var bestCost float64
	for _, j := range jobs {
		cost := JobCost(j)
		if !ok || cost > bestCost {
			best, bestCost, ok = j, cost, true
		}
	}
	return best, ok
}

// LargestByUnitCost returns the job with the highest per-unit cost.
//
// Zero-size jobs have no meaningful per-unit rate and are excluded
// from the scan; ok is false when no job has positive size. Ties keep
// the first-encountered job.
func LargestByUnitCost(jobs []fieldsvc.Job) (best fieldsvc.Job, ok bool) {
	var bestUnit float64
	for _, j := range jobs {
		if j.Size == 0 {
			continue
		}
		unit := UnitCost(j)
		if !ok || unit > bestUnit {
			best, bestUnit, ok = j, unit, true
		}
	}
	return best, ok
}

// ipName renders a partner's display name the way the backend does:
// first and last joined and trimmed.
func ipName(s fieldsvc.IPSummary) string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
