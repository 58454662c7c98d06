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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/cmd/partnerdash/config"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/api"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/logging"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/query"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/session"
)

// Exit codes. Scripts branch on these.
const (
	exitFailure    = 1
	exitValidation = 2
	exitAuth       = 3
)

// app bundles the wired client stack every command runs against.
type app struct {
	cfg      config.PartnerdashConfig
	baseURL  string
	logger   *logging.Logger
	sessions *session.FileStore
	client   *api.Client
	services *fieldsvc.Services
	cache    *query.Store
}

// application is built once in PersistentPreRunE and shared by every
// command in the invocation.
var application *app

// newApp loads config and wires sessions, the HTTP adapter, the typed
// accessors, and the query cache, top to bottom.
func newApp() (*app, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := config.Global

	logger := logging.New(logging.Config{
		Level:   parseLevel(cfg.Logging.GetLevel()),
		JSON:    cfg.Logging.JSON,
		Console: cfg.Logging.Console,
		LogDir:  cfg.Logging.Dir,
		Service: "cli",
	})

	sessions := session.NewFileStore(cfg.Session.GetPath())

	baseURL := cfg.Backend.GetBaseURL()
	if env := os.Getenv("PARTNERDASH_BASE_URL"); env != "" {
		baseURL = env
	}

	client := api.New(api.ClientConfig{
		BaseURL:     baseURL,
		Timeout:     cfg.Backend.GetTimeout(),
		Credentials: sessions,
		Retry: api.RetryPolicy{
			MaxRetries:  cfg.Backend.Retry.GetMaxRetries(),
			BackoffBase: cfg.Backend.Retry.GetBackoffBase(),
		},
		OnAuthExpired: func() {
			// Drop the dead session so the next run prompts cleanly.
			_ = sessions.Clear()
		},
	})

	cache := query.NewStore(
		query.WithMaxEntries(cfg.Cache.GetMaxEntries()),
		query.WithTTLFor(cfg.Cache.TTLSeconds.TTLFor),
	)

	return &app{
		cfg:      cfg,
		baseURL:  baseURL,
		logger:   logger,
		sessions: sessions,
		client:   client,
		services: fieldsvc.New(client),
		cache:    cache,
	}, nil
}

// close flushes pending background work before the process exits.
func (a *app) close() {
	a.cache.Wait()
	_ = a.logger.Close()
}

func parseLevel(name string) logging.Level {
	switch strings.ToLower(name) {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// cmdContext is the lifetime of one CLI invocation.
func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Minute)
}

// =============================================================================
// CACHED READS
// =============================================================================

// cached routes a read through the query cache; --no-cache forces a
// refetch instead. Either way the result lands in the cache so the
// stats stay meaningful.
func cached[T any](ctx context.Context, resource string, params any, fetch func(ctx context.Context) (T, error)) (T, error) {
	key := query.Key(resource, params)
	anyFetch := func(ctx context.Context) (T, error) { return fetch(ctx) }

	if noCache {
		data, _, err := query.RefreshAs(ctx, application.cache, key, anyFetch)
		return data, err
	}
	data, _, err := query.GetAs(ctx, application.cache, key, anyFetch)
	return data, err
}

// =============================================================================
// OUTPUT
// =============================================================================

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// emit prints v as JSON when --json is set, otherwise runs the human
// renderer.
func emit(v any, human func()) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human()
	return nil
}

// table prints a lipgloss-styled header row followed by tab-separated
// rows with fixed column widths.
func table(headers []string, widths []int, rows [][]string) {
	var b strings.Builder
	for i, h := range headers {
		b.WriteString(pad(h, widths[i]))
	}
	fmt.Println(headerStyle.Render(strings.TrimRight(b.String(), " ")))
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			line.WriteString(pad(cell, widths[i]))
		}
		fmt.Println(strings.TrimRight(line.String(), " "))
	}
}

func pad(s string, width int) string {
	// Truncate over runes so multibyte names are never split mid-sequence.
	runes := []rune(s)
	if len(runes) > width-2 && width > 3 {
		runes = append(runes[:width-3], '…')
	}
	if len(runes) < width {
		return string(runes) + strings.Repeat(" ", width-len(runes))
	}
	return string(runes)
}

// fail maps an error to a user message and exit code.
func fail(err error) error {
	var valErr *fieldsvc.ValidationError
	var apiErr *api.APIError

	switch {
	case errors.Is(err, api.ErrAuthExpired):
		fmt.Fprintln(os.Stderr, errStyle.Render("Session expired. Run `partnerdash auth login`."))
		os.Exit(exitAuth)
	case errors.As(err, &valErr):
		fmt.Fprintln(os.Stderr, errStyle.Render(valErr.Error()))
		os.Exit(exitValidation)
	case errors.As(err, &apiErr):
		fmt.Fprintln(os.Stderr, errStyle.Render(fmt.Sprintf("Backend rejected the request (%d): %s", apiErr.Status, apiErr.Message)))
		os.Exit(exitFailure)
	default:
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(exitFailure)
	}
	return err
}

// parseID converts a positional id argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a valid id", arg)
	}
	return id, nil
}

func money(n fieldsvc.Number) string {
	return strconv.FormatFloat(n.Float(), 'f', 2, 64)
}
