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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/cmd/partnerdash/dashboard"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/logging"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/services/stubapi/stub"
)

// runDevServe hosts the in-memory stub backend, the same one the api
// service runs standalone. Handy for demos and CLI development.
func runDevServe(cmd *cobra.Command, args []string) error {
	server := stub.NewServer(stub.Options{Seed: !serveNoSeed})

	httpServer := &http.Server{
		Addr:              serveAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		application.logger.Info("stub backend listening", "addr", serveAddr, "seeded", !serveNoSeed)
		fmt.Printf("Stub backend on %s (login: admin@example.com / admin123)\n", serveAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fail(err)
		}
	case sig := <-stop:
		application.logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fail(err)
		}
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	report := checkHealth(ctx, application)

	return emit(report, func() {
		fmt.Printf("Backend: %s\n", report.BaseURL)
		if report.Reachable {
			fmt.Printf("  %s (%s)\n", okStyle.Render("reachable"), report.Latency)
			if report.Service != "" {
				fmt.Printf("  Service: %s\n", report.Service)
			}
		} else {
			fmt.Printf("  %s: %s\n", errStyle.Render("unreachable"), report.Error)
		}

		if !report.LoggedIn {
			fmt.Println("Session: " + dimStyle.Render("none — run `partnerdash auth login`"))
			return
		}
		state := okStyle.Render("valid")
		if report.Expired {
			state = errStyle.Render("expired")
		}
		fmt.Printf("Session: %s as %s\n", state, report.Email)
		if !report.ExpiresAt.IsZero() {
			fmt.Printf("  Expires: %s\n", report.ExpiresAt.Local().Format(time.RFC822))
		}
	})
}

func runDashboard(cmd *cobra.Command, args []string) error {
	// Stderr logging would corrupt the alt screen; route everything
	// into a buffer the debug pane reads instead.
	buffer := logging.NewBufferedExporter()
	logger := logging.New(logging.Config{
		Level:    parseLevel(application.cfg.Logging.GetLevel()),
		LogDir:   application.cfg.Logging.Dir,
		Service:  "dashboard",
		Quiet:    true,
		Exporter: buffer,
	})
	defer logger.Close()

	model := dashboard.New(dashboard.Deps{
		Services: application.services,
		Cache:    application.cache,
		Sessions: application.sessions,
		Logger:   logger,
		Buffer:   buffer,
		BaseURL:  application.baseURL,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fail(err)
	}
	return nil
}
