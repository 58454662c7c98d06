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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

func runPartnersList(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	partners, err := cached(ctx, "partners", "all", func(ctx context.Context) ([]fieldsvc.Personnel, error) {
		return application.services.Partners.List(ctx)
	})
	if err != nil {
		return fail(err)
	}
	return emit(partners, func() { partnerTable(partners) })
}

func runPartnersApproved(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	partners, err := cached(ctx, "partners", "approved", func(ctx context.Context) ([]fieldsvc.Personnel, error) {
		return application.services.Partners.ListApproved(ctx)
	})
	if err != nil {
		return fail(err)
	}
	return emit(partners, func() { partnerTable(partners) })
}

func partnerTable(partners []fieldsvc.Personnel) {
	if len(partners) == 0 {
		fmt.Println(dimStyle.Render("No partners."))
		return
	}
	rows := make([][]string, 0, len(partners))
	for _, p := range partners {
		rows = append(rows, []string{
			strconv.Itoa(p.ID), p.FullName(), p.PhoneNumber, p.City,
			flagMark(p.IsIDVerified), flagMark(p.IsPANVerified),
			flagMark(p.IsBankDetailsVerified), flagMark(p.IsAssigned),
		})
	}
	table(
		[]string{"ID", "NAME", "PHONE", "CITY", "ID-VER", "PAN", "BANK", "BUSY"},
		[]int{6, 22, 14, 14, 7, 5, 5, 5},
		rows,
	)
}

func flagMark(b bool) string {
	if b {
		return okStyle.Render("yes")
	}
	return dimStyle.Render("no")
}

func runPartnersVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	result, err := application.services.Partners.Verify(ctx, args[0])
	if err != nil {
		return fail(err)
	}
	application.cache.Invalidate("partners")

	return emit(result, func() {
		fmt.Println(okStyle.Render(result.Message))
		fmt.Printf("  %s: id=%v pan=%v bank=%v\n",
			result.PhoneNumber, result.IsIDVerified, result.IsPANVerified, result.IsBankDetailsVerified)
	})
}
