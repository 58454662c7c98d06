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

func TestPartnerService_List(t *testing.T) {
	backend := &mockBackend{
		Responses: map[string]string{
			"GET /admin/ips": `[
				{"id": 5, "phone_number": "919812345678", "first_name": "Ravi", "last_name": "Kumar",
				 "city": "Bengaluru", "pincode": "560001", "is_assigned": true,
				 "is_verified": true, "is_pan_verified": true, "is_bank_details_verified": false, "is_id_verified": true,
				 "registered_at": "2026-01-10T08:00:00", "verified_at": "2026-01-12T09:30:00+00:00"}
			]`,
		},
	}
	svc := NewPartnerService(backend)

	partners, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, partners, 1)
	p := partners[0]
	assert.Equal(t, "Ravi Kumar", p.FullName())
	assert.Equal(t, "560001", p.Pincode, "partner pincode is a string on the wire")
	assert.True(t, p.IsAssigned)
	assert.False(t, p.IsBankDetailsVerified)
	require.NotNil(t, p.RegisteredAt)
	require.NotNil(t, p.VerifiedAt)
}

func TestPartnerService_ListApproved(t *testing.T) {
	backend := &mockBackend{
		Responses: map[string]string{
			"GET /admin/ips/approved": `[{"id": 6, "first_name": "Meera", "last_name": "Nair", "is_id_verified": true}]`,
		},
	}
	svc := NewPartnerService(backend)

	partners, err := svc.ListApproved(context.Background())

	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.True(t, partners[0].IsIDVerified)
	assert.Equal(t, "/admin/ips/approved", backend.lastCall(t).Path)
}

func TestPartnerService_Verify(t *testing.T) {
	backend := &mockBackend{
		Responses: map[string]string{
			"POST /admin/verify-ip/919812345678": `{
				"message": "IP user verified successfully",
				"phone_number": "919812345678",
				"is_id_verified": true, "is_verified": true,
				"is_pan_verified": true, "is_bank_details_verified": true
			}`,
		},
	}
	svc := NewPartnerService(backend)

	result, err := svc.Verify(context.Background(), "919812345678")

	require.NoError(t, err)
	assert.Equal(t, "919812345678", result.PhoneNumber)
	assert.True(t, result.IsIDVerified && result.IsVerified && result.IsPANVerified && result.IsBankDetailsVerified,
		"verification sets every flag at once")
}

func TestPartnerService_Verify_EmptyPhone(t *testing.T) {
	backend := &mockBackend{}
	svc := NewPartnerService(backend)

	_, err := svc.Verify(context.Background(), "")

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Empty(t, backend.Calls)
}

func TestPartnerService_Verify_PlusPrefixedPhone(t *testing.T) {
	// "+" is legal in a path segment and passes through unescaped.
	backend := &mockBackend{
		Responses: map[string]string{
			"POST /admin/verify-ip/+919812345678": `{"message": "IP user verified successfully", "phone_number": "+919812345678"}`,
		},
	}
	svc := NewPartnerService(backend)

	result, err := svc.Verify(context.Background(), "+919812345678")

	require.NoError(t, err)
	assert.Equal(t, "+919812345678", result.PhoneNumber)
}
