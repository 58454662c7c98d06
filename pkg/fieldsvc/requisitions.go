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
	"fmt"
	"net/url"
	"strconv"
)

// RequisitionService handles bill-of-materials lookups and site
// requisition submissions against sales orders.
type RequisitionService struct {
	backend Backend
}

// NewRequisitionService creates a RequisitionService on backend.
func NewRequisitionService(backend Backend) *RequisitionService {
	return &RequisitionService{backend: backend}
}

// BOM fetches the bill-of-materials tree for a sales order and
// cabinet position from the ERP.
func (s *RequisitionService) BOM(ctx context.Context, salesOrder, cabinetPosition string) ([]BOMItem, error) {
	if salesOrder == "" || cabinetPosition == "" {
		return nil, &ValidationError{
			Resource: "bom lookup",
			Fields:   []string{"SalesOrder (required)", "CabinetPosition (required)"},
		}
	}
	var out []BOMItem
	path := fmt.Sprintf("/bom/%s/%s", url.PathEscape(salesOrder), url.PathEscape(cabinetPosition))
	if err := s.backend.Get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Submit files a site requisition against a sales order.
func (s *RequisitionService) Submit(ctx context.Context, req RequisitionSubmit) (*SODetail, error) {
	if err := checkRequest("requisition submit", req); err != nil {
		return nil, err
	}
	var out SODetail
	if err := s.backend.Post(ctx, "/bom/submit", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History lists submitted requisitions, newest first. This endpoint
// names its offset parameter "offset", unlike the jobs list's "skip".
func (s *RequisitionService) History(ctx context.Context, params ListParams) ([]SODetail, error) {
	offset, limit := params.offsetLimit()
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var out []SODetail
	if err := s.backend.Get(ctx, "/bom/history", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BySalesOrder fetches the requisition record of one sales order.
func (s *RequisitionService) BySalesOrder(ctx context.Context, salesOrder string) (*SODetail, error) {
	if salesOrder == "" {
		return nil, &ValidationError{Resource: "requisition lookup", Fields: []string{"SalesOrder (required)"}}
	}
	var out SODetail
	path := fmt.Sprintf("/bom/history/%s", url.PathEscape(salesOrder))
	if err := s.backend.Get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus marks a requisition pending or completed. The status
// travels as a query parameter, and the updated record comes back
// inside a message envelope, which is unwrapped here.
func (s *RequisitionService) UpdateStatus(ctx context.Context, soID int, status string) (*SODetail, error) {
	if status != RequisitionStatusPending && status != RequisitionStatusCompleted {
		return nil, &ValidationError{Resource: "requisition status", Fields: []string{"Status (oneof)"}}
	}

	// The adapter has no query support on PATCH; encode it in the path.
	path := fmt.Sprintf("/bom/history/%d/status?status=%s", soID, url.QueryEscape(status))
	var envelope statusUpdateEnvelope
	if err := s.backend.Patch(ctx, path, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}
