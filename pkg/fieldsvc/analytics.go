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

import "context"

// AnalyticsService fetches server-computed payout rollups.
//
// The numbers here come straight from the backend's SQL aggregation
// (payout = base rate x job size, completed jobs only). The analytics
// package derives the same figures locally from job lists; the two
// must agree, and its tests hold them to that.
type AnalyticsService struct {
	backend Backend
}

// NewAnalyticsService creates an AnalyticsService on backend.
func NewAnalyticsService(backend Backend) *AnalyticsService {
	return &AnalyticsService{backend: backend}
}

// PayoutSummary fetches the payout rollup for one reporting window.
//
// # Inputs
//   - ctx: Context for cancellation/timeout.
//   - params: Period selector; validated locally. A bad period is
//     rejected before the request is built.
//
// # Outputs
//   - *PayoutSummary: Window bounds, totals, per-stage and
//     per-partner breakdowns.
//   - error: *ValidationError or the backend's failure.
func (s *AnalyticsService) PayoutSummary(ctx context.Context, params PayoutParams) (*PayoutSummary, error) {
	if err := checkRequest("payout summary", params); err != nil {
		return nil, err
	}
	var out PayoutSummary
	if err := s.backend.Get(ctx, "/analytics/payout", params.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JobStages fetches the all-time per-status rollup.
func (s *AnalyticsService) JobStages(ctx context.Context) ([]JobStageStat, error) {
	var out []JobStageStat
	if err := s.backend.Get(ctx, "/analytics/job-stages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PartnerPerformance fetches the all-time per-partner payout rollup,
// counting completed jobs only.
func (s *AnalyticsService) PartnerPerformance(ctx context.Context) ([]PersonnelPayoutStat, error) {
	var out []PersonnelPayoutStat
	if err := s.backend.Get(ctx, "/analytics/ip-performance", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
