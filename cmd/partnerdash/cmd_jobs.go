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
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/api"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

// invalidateJobData drops every cache entry a job mutation can affect:
// the job lists themselves and the payout rollups derived from them.
func invalidateJobData() {
	application.cache.Invalidate("jobs")
	application.cache.Invalidate("analytics")
}

func runJobsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	params := fieldsvc.JobListParams{
		ListParams: fieldsvc.ListParams{Page: pageFlag, Limit: limitFlag},
		Status:     statusFilter,
		Type:       typeFilter,
		Search:     searchFilter,
	}
	jobs, err := cached(ctx, "jobs", params, func(ctx context.Context) ([]fieldsvc.Job, error) {
		return application.services.Jobs.List(ctx, params)
	})
	if err != nil {
		return fail(err)
	}

	return emit(jobs, func() {
		if len(jobs) == 0 {
			fmt.Println(dimStyle.Render("No jobs match."))
			return
		}
		rows := make([][]string, 0, len(jobs))
		for _, j := range jobs {
			partner := "—"
			if j.AssignedIP != nil {
				partner = j.AssignedIP.FullName()
			}
			delivery := "—"
			if j.DeliveryDate != nil {
				delivery = j.DeliveryDate.String()
			}
			rows = append(rows, []string{
				strconv.Itoa(j.ID), j.Name, j.Status, j.Type,
				money(j.Rate), strconv.FormatFloat(j.Size, 'f', -1, 64),
				delivery, partner,
			})
		}
		table(
			[]string{"ID", "NAME", "STATUS", "TYPE", "RATE", "SIZE", "DELIVERY", "PARTNER"},
			[]int{6, 28, 13, 10, 10, 7, 12, 20},
			rows,
		)
	})
}

func runJobsGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return fail(err)
	}
	ctx, cancel := cmdContext()
	defer cancel()

	job, err := cached(ctx, "jobs", map[string]int{"id": id}, func(ctx context.Context) (*fieldsvc.Job, error) {
		return application.services.Jobs.Get(ctx, id)
	})
	if err != nil {
		return fail(err)
	}
	return emit(job, func() { printJob(job) })
}

func printJob(j *fieldsvc.Job) {
	fmt.Printf("%s (id %d)\n", headerStyle.Render(j.Name), j.ID)
	fmt.Printf("  Status:    %s\n", j.Status)
	fmt.Printf("  Customer:  %s", j.CustomerName)
	if j.CustomerPhone != "" {
		fmt.Printf("  (%s)", j.CustomerPhone)
	}
	fmt.Println()
	if j.City != "" {
		fmt.Printf("  City:      %s\n", j.City)
	}
	fmt.Printf("  Rate/Size: %s × %s\n", money(j.Rate), strconv.FormatFloat(j.Size, 'f', -1, 64))
	fmt.Printf("  Expense:   %s\n", money(j.AdditionalExpense))
	if j.DeliveryDate != nil {
		fmt.Printf("  Delivery:  %s\n", j.DeliveryDate)
	}
	if j.AssignedIP != nil {
		fmt.Printf("  Partner:   %s (%s)\n", j.AssignedIP.FullName(), j.AssignedIP.PhoneNumber)
	}
	if j.StartOTPVerified || j.EndOTPVerified {
		fmt.Printf("  OTP:       start=%v end=%v\n", j.StartOTPVerified, j.EndOTPVerified)
	}
}

func runJobsCreate(cmd *cobra.Command, args []string) error {
	req := fieldsvc.JobCreate{
		Name:              jobNameFlag,
		CustomerName:      customerFlag,
		CustomerPhone:     phoneFlag,
		City:              cityFlag,
		Type:              typeFilter,
		Rate:              fieldsvc.Number(rateFlag),
		Size:              sizeFlag,
		AdditionalExpense: fieldsvc.Number(expenseFlag),
	}
	if assignedIPFlag > 0 {
		id := assignedIPFlag
		req.AssignedIPID = &id
	}

	delivery := deliveryFlag
	if (req.Name == "" || req.CustomerName == "" || delivery == "") && !nonInteractive {
		if err := jobForm(&req, &delivery); err != nil {
			return fail(err)
		}
	}
	if delivery != "" {
		day, err := time.Parse("2006-01-02", delivery)
		if err != nil {
			return fail(fmt.Errorf("delivery date %q: expected YYYY-MM-DD", delivery))
		}
		req.DeliveryDate = fieldsvc.Date{Time: day}
	}

	ctx, cancel := cmdContext()
	defer cancel()
	job, err := application.services.Jobs.Create(ctx, req)
	if err != nil {
		return fail(err)
	}
	invalidateJobData()

	return emit(job, func() {
		fmt.Println(okStyle.Render(fmt.Sprintf("Created job %d: %s", job.ID, job.Name)))
	})
}

// jobForm collects the missing create fields interactively.
func jobForm(req *fieldsvc.JobCreate, delivery *string) error {
	rate := money(req.Rate)
	size := strconv.FormatFloat(req.Size, 'f', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Job name").Value(&req.Name).
				Validate(huh.ValidateNotEmpty()),
			huh.NewInput().Title("Customer name").Value(&req.CustomerName).
				Validate(huh.ValidateNotEmpty()),
			huh.NewInput().Title("Customer phone (optional, enables OTP)").Value(&req.CustomerPhone),
			huh.NewInput().Title("City").Value(&req.City),
		),
		huh.NewGroup(
			huh.NewInput().Title("Job type").Value(&req.Type).
				Validate(huh.ValidateNotEmpty()),
			huh.NewInput().Title("Rate per unit").Value(&rate),
			huh.NewInput().Title("Size (units)").Value(&size),
			huh.NewInput().Title("Delivery date (YYYY-MM-DD)").Value(delivery).
				Validate(func(s string) error {
					_, err := time.Parse("2006-01-02", s)
					if err != nil {
						return errors.New("expected YYYY-MM-DD")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if v, err := strconv.ParseFloat(rate, 64); err == nil {
		req.Rate = fieldsvc.Number(v)
	}
	if v, err := strconv.ParseFloat(size, 64); err == nil {
		req.Size = v
	}
	return nil
}

func runJobsUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return fail(err)
	}

	var req fieldsvc.JobUpdate
	flags := cmd.Flags()
	if flags.Changed("name") {
		req.Name = &jobNameFlag
	}
	if flags.Changed("customer") {
		req.CustomerName = &customerFlag
	}
	if flags.Changed("phone") {
		req.CustomerPhone = &phoneFlag
	}
	if flags.Changed("city") {
		req.City = &cityFlag
	}
	if flags.Changed("type") {
		req.Type = &typeFilter
	}
	if flags.Changed("rate") {
		n := fieldsvc.Number(rateFlag)
		req.Rate = &n
	}
	if flags.Changed("size") {
		req.Size = &sizeFlag
	}
	if flags.Changed("expense") {
		n := fieldsvc.Number(expenseFlag)
		req.AdditionalExpense = &n
	}
	if flags.Changed("assign") {
		req.AssignedIPID = &assignedIPFlag
	}
	if flags.Changed("status") {
		req.Status = &jobStatusFlag
	}
	if flags.Changed("delivery") {
		day, err := time.Parse("2006-01-02", deliveryFlag)
		if err != nil {
			return fail(fmt.Errorf("delivery date %q: expected YYYY-MM-DD", deliveryFlag))
		}
		d := fieldsvc.Date{Time: day}
		req.DeliveryDate = &d
	}

	ctx, cancel := cmdContext()
	defer cancel()
	job, err := application.services.Jobs.Update(ctx, id, req)
	if err != nil {
		return fail(err)
	}
	invalidateJobData()

	return emit(job, func() {
		fmt.Println(okStyle.Render(fmt.Sprintf("Updated job %d", job.ID)))
		printJob(job)
	})
}

func runJobsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return fail(err)
	}
	ctx, cancel := cmdContext()
	defer cancel()

	if err := application.services.Jobs.Delete(ctx, id); err != nil {
		return fail(err)
	}
	invalidateJobData()

	return emit(map[string]any{"deleted": id}, func() {
		fmt.Printf("Deleted job %d.\n", id)
	})
}

func runJobsStart(cmd *cobra.Command, args []string) error {
	return runTransition(args[0], "start")
}

func runJobsPause(cmd *cobra.Command, args []string) error {
	return runTransition(args[0], "pause")
}

func runJobsFinish(cmd *cobra.Command, args []string) error {
	return runTransition(args[0], "finish")
}

// runTransition drives one lifecycle action, switching to the OTP flow
// when requested or when the backend demands it.
func runTransition(arg, action string) error {
	id, err := parseID(arg)
	if err != nil {
		return fail(err)
	}
	ctx, cancel := cmdContext()
	defer cancel()

	var job *fieldsvc.Job
	if otpFlag && action != "pause" {
		job, err = otpTransition(ctx, id, action)
	} else {
		switch action {
		case "start":
			job, err = application.services.Jobs.Start(ctx, id, notesFlag)
		case "pause":
			job, err = application.services.Jobs.Pause(ctx, id, notesFlag)
		case "finish":
			job, err = application.services.Jobs.Finish(ctx, id, notesFlag)
		}
		// A 400 on start/finish usually means the job is OTP-gated;
		// fall through to the verified flow.
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 400 && action != "pause" {
			application.logger.Info("switching to otp flow", "job_id", id, "action", action)
			job, err = otpTransition(ctx, id, action)
		}
	}
	if err != nil {
		return fail(err)
	}
	invalidateJobData()

	return emit(job, func() {
		fmt.Println(okStyle.Render(fmt.Sprintf("Job %d is now %s.", job.ID, job.Status)))
	})
}

// otpTransition requests a code for the customer and verifies it.
func otpTransition(ctx context.Context, id int, action string) (*fieldsvc.Job, error) {
	var request func(context.Context, int) (*fieldsvc.OTPResponse, error)
	var verify func(context.Context, int, fieldsvc.OTPVerify) (*fieldsvc.Job, error)
	if action == "start" {
		request = application.services.Jobs.RequestStartOTP
		verify = application.services.Jobs.VerifyStartOTP
	} else {
		request = application.services.Jobs.RequestEndOTP
		verify = application.services.Jobs.VerifyEndOTP
	}

	resp, err := request(ctx, id)
	if err != nil {
		return nil, err
	}
	fmt.Println(resp.Message)

	code := otpCode
	if code == "" {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("OTP code").Value(&code).
				Validate(func(s string) error {
					if len(s) != 6 {
						return errors.New("six digits expected")
					}
					return nil
				}),
		))
		if err := form.Run(); err != nil {
			return nil, err
		}
	}
	return verify(ctx, id, fieldsvc.OTPVerify{OTP: code, Notes: notesFlag})
}

func runJobsHistory(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return fail(err)
	}
	ctx, cancel := cmdContext()
	defer cancel()

	logs, err := cached(ctx, "jobs", map[string]any{"history": id}, func(ctx context.Context) ([]fieldsvc.JobStatusLog, error) {
		return application.services.Jobs.History(ctx, id)
	})
	if err != nil {
		return fail(err)
	}

	return emit(logs, func() {
		if len(logs) == 0 {
			fmt.Println(dimStyle.Render("No history yet."))
			return
		}
		rows := make([][]string, 0, len(logs))
		for _, l := range logs {
			rows = append(rows, []string{
				l.Timestamp.Format("2006-01-02 15:04"), l.Status, l.Notes,
			})
		}
		table([]string{"WHEN", "STATUS", "NOTES"}, []int{18, 13, 40}, rows)
	})
}
