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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

// job builds a minimal job record for aggregation tests.
func job(typ string, rate fieldsvc.Number, size float64, expense fieldsvc.Number) fieldsvc.Job {
	return fieldsvc.Job{
		Type:              typ,
		Rate:              rate,
		Size:              size,
		AdditionalExpense: expense,
		Status:            fieldsvc.JobStatusCreated,
	}
}

// =============================================================================
// Grouping Tests
// =============================================================================

// The documented scenario: [{rate:100,size:2,A,+10},{rate:50,size:4,A}].
func TestGroupByType_KnownScenario(t *testing.T) {
	jobs := []fieldsvc.Job{
		job("A", 100, 2, 10),
		job("A", 50, 4, 0),
	}

	groups := GroupByType(jobs)
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}

	g := groups[0]
	if g.Type != "A" || g.Count != 2 {
		t.Errorf("group = %q count %d, want A count 2", g.Type, g.Count)
	}
	if g.Payout != 400 {
		t.Errorf("Payout = %v, want 400", g.Payout)
	}
	if g.Expense != 10 {
		t.Errorf("Expense = %v, want 10", g.Expense)
	}
	if g.TotalCost != 410 {
		t.Errorf("TotalCost = %v, want 410", g.TotalCost)
	}
	if g.TotalSize != 6 {
		t.Errorf("TotalSize = %v, want 6", g.TotalSize)
	}
	if math.Abs(g.AvgRatePerUnit-410.0/6.0) > 1e-9 {
		t.Errorf("AvgRatePerUnit = %v, want ≈68.33", g.AvgRatePerUnit)
	}
}

// Σ group.Count == len(jobs), with the untagged bucket included.
func TestGroupByType_CountsPartition(t *testing.T) {
	jobs := []fieldsvc.Job{
		job("A", 10, 1, 0),
		job("B", 20, 1, 0),
		job("", 30, 1, 0),
		job("A", 40, 1, 0),
		job("", 0, 0, 0),
	}

	groups := GroupByType(jobs)
	total := 0
	sawOther := false
	for _, g := range groups {
		total += g.Count
		if g.Type == OtherType {
			sawOther = true
			if g.Count != 2 {
				t.Errorf("Other count = %d, want 2", g.Count)
			}
		}
	}
	if total != len(jobs) {
		t.Errorf("Σ counts = %d, want %d", total, len(jobs))
	}
	if !sawOther {
		t.Error("untagged jobs should land in the Other bucket")
	}
}

// TotalCost == Payout + Expense for every group.
func TestGroupByType_CostIdentity(t *testing.T) {
	jobs := []fieldsvc.Job{
		job("A", 100, 2, 10),
		job("B", 7, 3, 5),
		job("B", 12, 0.5, 0),
		job("", 9, 9, 1),
	}

	for _, g := range GroupByType(jobs) {
		if math.Abs(g.TotalCost-(g.Payout+g.Expense)) > 1e-9 {
			t.Errorf("group %q: TotalCost %v != Payout %v + Expense %v",
				g.Type, g.TotalCost, g.Payout, g.Expense)
		}
	}
}

// An all-zero-size group must report AvgRatePerUnit 0, not NaN or panic.
func TestGroupByType_ZeroSizeGuard(t *testing.T) {
	jobs := []fieldsvc.Job{
		job("A", 100, 0, 25),
		job("A", 50, 0, 0),
	}

	groups := GroupByType(jobs)
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
	if got := groups[0].AvgRatePerUnit; got != 0 {
		t.Errorf("AvgRatePerUnit = %v, want 0 for zero total size", got)
	}
	if groups[0].TotalCost != 25 {
		t.Errorf("TotalCost = %v, want 25 (expense only)", groups[0].TotalCost)
	}
}

// Empty list: zero-valued output, no divide-by-zero.
func TestGroupByType_EmptyList(t *testing.T) {
	if groups := GroupByType(nil); len(groups) != 0 {
		t.Errorf("GroupByType(nil) = %v, want empty", groups)
	}
	if groups := GroupByType([]fieldsvc.Job{}); len(groups) != 0 {
		t.Errorf("GroupByType([]) = %v, want empty", groups)
	}
}

// Groups come back sorted descending by TotalCost.
func TestGroupByType_SortedByCostDesc(t *testing.T) {
	jobs := []fieldsvc.Job{
		job("cheap", 1, 1, 0),
		job("dear", 1000, 1, 0),
		job("mid", 50, 1, 0),
	}

	groups := GroupByType(jobs)
	for i := 1; i < len(groups); i++ {
		if groups[i-1].TotalCost < groups[i].TotalCost {
			t.Errorf("groups out of order at %d: %v before %v",
				i, groups[i-1].TotalCost, groups[i].TotalCost)
		}
	}
	if groups[0].Type != "dear" {
		t.Errorf("first group = %q, want dear", groups[0].Type)
	}
}

// Idempotence: two runs over the same list are identical.
func TestGroupByType_Deterministic(t *testing.T) {
	jobs := []fieldsvc.Job{
		job("A", 100, 2, 10),
		job("B", 100, 2, 10), // same cost as A: order must still be stable
		job("", 5, 1, 0),
		job("A", 50, 4, 0),
	}

	first := GroupByType(jobs)
	second := GroupByType(jobs)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated grouping differs (-first +second):\n%s", diff)
	}
}

// =============================================================================
// Extremes Tests
// =============================================================================

func TestLargestByCost(t *testing.T) {
	jobs := []fieldsvc.Job{
		job("A", 10, 2, 0),  // 20
		job("B", 10, 5, 50), // 100
		job("C", 100, 1, 0), // 100, tie: first wins
	}

	best, ok := LargestByCost(jobs)
	if !ok {
		t.Fatal("LargestByCost() found nothing")
	}
	if best.Type != "B" {
		t.Errorf("largest = %q, want B (first of the tie)", best.Type)
	}

	if _, ok := LargestByCost(nil); ok {
		t.Error("empty list should report ok=false")
	}
}

func TestLargestByUnitCost_SkipsZeroSize(t *testing.T) {
	jobs := []fieldsvc.Job{
		job("zero", 0, 0, 9999), // size 0: excluded however large the expense
		job("A", 10, 2, 0),      // unit 10
		job("B", 5, 1, 20),      // unit 25
	}

	best, ok := LargestByUnitCost(jobs)
	if !ok {
		t.Fatal("LargestByUnitCost() found nothing")
	}
	if best.Type != "B" {
		t.Errorf("largest by unit = %q, want B", best.Type)
	}

	onlyZero := []fieldsvc.Job{job("zero", 0, 0, 100)}
	if _, ok := LargestByUnitCost(onlyZero); ok {
		t.Error("all-zero-size list should report ok=false")
	}
}

// =============================================================================
// Per-Job Helpers
// =============================================================================

func TestUnitCost_ZeroSize(t *testing.T) {
	if got := UnitCost(job("A", 100, 0, 50)); got != 0 {
		t.Errorf("UnitCost(size=0) = %v, want 0", got)
	}
	if got := UnitCost(job("A", 100, 2, 10)); got != 105 {
		t.Errorf("UnitCost = %v, want 105", got)
	}
}

func TestJobCost(t *testing.T) {
	if got := JobCost(job("A", 100, 2, 10)); got != 210 {
		t.Errorf("JobCost = %v, want 210", got)
	}
}
