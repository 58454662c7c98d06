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

func runChecklistsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	lists, err := cached(ctx, "checklists", "all", func(ctx context.Context) ([]fieldsvc.Checklist, error) {
		return application.services.Checklists.List(ctx)
	})
	if err != nil {
		return fail(err)
	}

	return emit(lists, func() {
		if len(lists) == 0 {
			fmt.Println(dimStyle.Render("No checklist templates."))
			return
		}
		rows := make([][]string, 0, len(lists))
		for _, c := range lists {
			rows = append(rows, []string{strconv.Itoa(c.ID), c.Name, c.Description})
		}
		table([]string{"ID", "NAME", "DESCRIPTION"}, []int{6, 24, 40}, rows)
	})
}

func runChecklistsItems(cmd *cobra.Command, args []string) error {
	jobID, err := parseID(args[0])
	if err != nil {
		return fail(err)
	}
	ctx, cancel := cmdContext()
	defer cancel()

	items, err := cached(ctx, "checklists", map[string]int{"job": jobID}, func(ctx context.Context) ([]fieldsvc.ChecklistItem, error) {
		return application.services.Checklists.JobItems(ctx, jobID)
	})
	if err != nil {
		return fail(err)
	}

	return emit(items, func() {
		if len(items) == 0 {
			fmt.Println(dimStyle.Render("No checklist items linked to this job."))
			return
		}
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{
				strconv.Itoa(it.ID), strconv.Itoa(it.ChecklistID),
				strconv.Itoa(it.Position), it.Text,
			})
		}
		table([]string{"ITEM", "LIST", "POS", "TEXT"}, []int{6, 6, 5, 44}, rows)
	})
}

func runChecklistsLink(cmd *cobra.Command, args []string) error {
	jobID, err := parseID(args[0])
	if err != nil {
		return fail(err)
	}
	checklistID, err := parseID(args[1])
	if err != nil {
		return fail(err)
	}
	ctx, cancel := cmdContext()
	defer cancel()

	msg, err := application.services.Checklists.Link(ctx, fieldsvc.ChecklistLink{
		JobID:       jobID,
		ChecklistID: checklistID,
	})
	if err != nil {
		return fail(err)
	}
	application.cache.Invalidate("checklists")

	return emit(msg, func() {
		fmt.Println(okStyle.Render(msg.Message))
	})
}

// runChecklistsCheck records the field partner's check-off.
func runChecklistsCheck(cmd *cobra.Command, args []string) error {
	jobID, err := parseID(args[0])
	if err != nil {
		return fail(err)
	}
	itemID, err := parseID(args[1])
	if err != nil {
		return fail(err)
	}

	checked := true
	req := fieldsvc.ItemStatusUpdate{Checked: &checked}
	if cmd.Flags().Changed("comment") {
		req.Comment = &fieldCommentFlag
	}

	ctx, cancel := cmdContext()
	defer cancel()
	status, err := application.services.Jobs.ApproveChecklistItem(ctx, jobID, itemID, req)
	if err != nil {
		return fail(err)
	}
	application.cache.Invalidate("checklists")

	return emit(status, func() {
		fmt.Println(okStyle.Render(fmt.Sprintf("Checked item %d on job %d.", status.ChecklistItemID, status.JobID)))
	})
}

func runChecklistsApprove(cmd *cobra.Command, args []string) error {
	jobID, err := parseID(args[0])
	if err != nil {
		return fail(err)
	}
	itemID, err := parseID(args[1])
	if err != nil {
		return fail(err)
	}

	var req fieldsvc.ItemStatusUpdate
	flags := cmd.Flags()
	if flags.Changed("checked") {
		req.Checked = &checkedFlag
	}
	if flags.Changed("approved") || req.Checked == nil {
		req.IsApproved = &approvedFlag
	}
	if flags.Changed("comment") {
		req.AdminComment = &adminCommentFlag
	}

	ctx, cancel := cmdContext()
	defer cancel()
	status, err := application.services.Jobs.ApproveChecklistItem(ctx, jobID, itemID, req)
	if err != nil {
		return fail(err)
	}
	application.cache.Invalidate("checklists")

	return emit(status, func() {
		fmt.Println(okStyle.Render(fmt.Sprintf(
			"Item %d on job %d: checked=%v approved=%v",
			status.ChecklistItemID, status.JobID, status.Checked, status.IsApproved)))
		if status.AdminComment != "" {
			fmt.Printf("  Comment: %s\n", status.AdminComment)
		}
	})
}
