// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fieldsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsService_PayoutSummary(t *testing.T) {
	backend := &mockBackend{
		Responses: map[string]string{
			"GET /analytics/payout": `{
				"period": "quarter",
				"start_date": "2026-01-01",
				"end_date": "2026-03-31",
				"total_jobs": 24,
				"total_payout": 180000,
				"total_additional_expense": 9500,
				"job_stages": [
					{"status": "completed", "count": 18, "total_payout": 180000, "total_additional_expense": 9500},
					{"status": "in_progress", "count": 6, "total_payout": 0, "total_additional_expense": 0}
				],
				"payout_by_ip": [
					{"ip_id": 5, "ip_name": "Ravi Kumar", "job_count": 10, "total_payout": 110000, "total_additional_expense": 6000}
				]
			}`,
		},
	}
	svc := NewAnalyticsService(backend)

	summary, err := svc.PayoutSummary(context.Background(), PayoutParams{
		Period:  PeriodQuarter,
		Year:    2026,
		Quarter: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, 24, summary.TotalJobs)
	assert.Equal(t, "2026-01-01", summary.StartDate.String())
	require.Len(t, summary.JobStages, 2)
	require.Len(t, summary.PayoutByIP, 1)

	q := backend.lastCall(t).Query
	assert.Equal(t, "quarter", q.Get("period"))
	assert.Equal(t, "2026", q.Get("year"))
	assert.Equal(t, "1", q.Get("quarter"))
	_, hasMonth := q["month"]
	assert.False(t, hasMonth, "unset selectors stay off the wire")
}

func TestAnalyticsService_PayoutSummary_CurrentPeriodDefaults(t *testing.T) {
	backend := &mockBackend{
		Responses: map[string]string{"GET /analytics/payout": `{"period": "month"}`},
	}
	svc := NewAnalyticsService(backend)

	_, err := svc.PayoutSummary(context.Background(), PayoutParams{Period: PeriodMonth})

	require.NoError(t, err)
	q := backend.lastCall(t).Query
	assert.Equal(t, "month", q.Get("period"))
	assert.Empty(t, q.Get("year"), "zero year means the current one and is omitted")
}

func TestAnalyticsService_PayoutSummary_RejectsBadPeriod(t *testing.T) {
	backend := &mockBackend{}
	svc := NewAnalyticsService(backend)

	tests := []PayoutParams{
		{Period: "fortnight"},
		{Period: ""},
		{Period: PeriodMonth, Month: 13},
		{Period: PeriodQuarter, Quarter: 5},
		{Period: PeriodWeek, Week: 54},
	}
	for _, params := range tests {
		_, err := svc.PayoutSummary(context.Background(), params)
		require.Error(t, err, "params %+v should fail validation", params)
		assert.True(t, IsValidation(err), "params %+v", params)
	}
	assert.Empty(t, backend.Calls)
}

func TestAnalyticsService_JobStages(t *testing.T) {
	backend := &mockBackend{
		Responses: map[string]string{
			"GET /analytics/job-stages": `[
				{"status": "created", "count": 4, "total_payout": 0, "total_additional_expense": 0},
				{"status": "completed", "count": 31, "total_payout": "412000.00", "total_additional_expense": 18000}
			]`,
		},
	}
	svc := NewAnalyticsService(backend)

	stages, err := svc.JobStages(context.Background())

	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, 31, stages[1].Count)
	assert.InDelta(t, 412000.0, stages[1].TotalPayout.Float(), 1e-9)
}

func TestAnalyticsService_PartnerPerformance(t *testing.T) {
	backend := &mockBackend{
		Responses: map[string]string{
			"GET /analytics/ip-performance": `[
				{"ip_id": 5, "ip_name": "Ravi Kumar", "job_count": 25, "total_payout": 300000, "total_additional_expense": 12000},
				{"ip_id": 6, "ip_name": "Meera Nair", "job_count": 0, "total_payout": 0, "total_additional_expense": 0}
			]`,
		},
	}
	svc := NewAnalyticsService(backend)

	stats, err := svc.PartnerPerformance(context.Background())

	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 0, stats[1].JobCount, "partners with no completed jobs still appear")
}
