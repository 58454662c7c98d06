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
	"strings"

	"github.com/spf13/cobra"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

func runBOMHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	params := fieldsvc.ListParams{Page: pageFlag, Limit: limitFlag}
	orders, err := cached(ctx, "requisitions", params, func(ctx context.Context) ([]fieldsvc.SODetail, error) {
		return application.services.Requisitions.History(ctx, params)
	})
	if err != nil {
		return fail(err)
	}

	return emit(orders, func() {
		if len(orders) == 0 {
			fmt.Println(dimStyle.Render("No requisitions."))
			return
		}
		rows := make([][]string, 0, len(orders))
		for _, so := range orders {
			closed := "—"
			if so.ClosedDate != nil {
				closed = so.ClosedDate.Format("2006-01-02")
			}
			rows = append(rows, []string{
				strconv.Itoa(so.ID), so.SalesOrder, so.Status,
				so.CreatedDate.Format("2006-01-02"), closed,
				strconv.Itoa(len(so.SiteRequisites)),
			})
		}
		table(
			[]string{"ID", "SALES ORDER", "STATUS", "CREATED", "CLOSED", "LINES"},
			[]int{6, 14, 11, 12, 12, 6},
			rows,
		)
	})
}

func runBOMShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	so, err := cached(ctx, "requisitions", map[string]string{"so": args[0]}, func(ctx context.Context) (*fieldsvc.SODetail, error) {
		return application.services.Requisitions.BySalesOrder(ctx, args[0])
	})
	if err != nil {
		return fail(err)
	}
	return emit(so, func() { printSODetail(so) })
}

func printSODetail(so *fieldsvc.SODetail) {
	fmt.Printf("%s (id %d) — %s\n", headerStyle.Render(so.SalesOrder), so.ID, so.Status)
	fmt.Printf("  Created: %s\n", so.CreatedDate.Format("2006-01-02"))
	if so.ClosedDate != nil {
		fmt.Printf("  Closed:  %s\n", so.ClosedDate.Format("2006-01-02"))
	}
	if so.SRPOC != "" {
		fmt.Printf("  POC:     %s\n", so.SRPOC)
	}
	if len(so.SiteRequisites) == 0 {
		return
	}
	rows := make([][]string, 0, len(so.SiteRequisites))
	for _, line := range so.SiteRequisites {
		rows = append(rows, []string{
			strconv.Itoa(line.ID), line.ProductName,
			strconv.FormatFloat(line.Quantity, 'f', -1, 64),
			line.ResponsibleDepartment, line.IssueDescription,
		})
	}
	fmt.Println()
	table([]string{"ID", "PRODUCT", "QTY", "DEPT", "ISSUE"}, []int{6, 24, 6, 14, 28}, rows)
}

func runBOMStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return fail(err)
	}
	status := strings.ToLower(args[1])
	if status != fieldsvc.RequisitionStatusPending && status != fieldsvc.RequisitionStatusCompleted {
		return fail(fmt.Errorf("status %q: want pending or completed", args[1]))
	}

	ctx, cancel := cmdContext()
	defer cancel()
	so, err := application.services.Requisitions.UpdateStatus(ctx, id, status)
	if err != nil {
		return fail(err)
	}
	application.cache.Invalidate("requisitions")

	return emit(so, func() {
		fmt.Println(okStyle.Render(fmt.Sprintf("%s is now %s.", so.SalesOrder, so.Status)))
	})
}

func runBOMTree(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	key := map[string]string{"so": args[0], "cabinet": args[1]}
	items, err := cached(ctx, "requisitions", key, func(ctx context.Context) ([]fieldsvc.BOMItem, error) {
		return application.services.Requisitions.BOM(ctx, args[0], args[1])
	})
	if err != nil {
		return fail(err)
	}

	return emit(items, func() {
		if len(items) == 0 {
			fmt.Println(dimStyle.Render("Empty BOM."))
			return
		}
		for _, root := range items {
			printBOMItem(root)
		}
	})
}

func printBOMItem(item fieldsvc.BOMItem) {
	indent := strings.Repeat("  ", item.Depth)
	fmt.Printf("%s%s\n", indent, item.ProductName)
	for _, child := range item.Children {
		printBOMItem(child)
	}
}
