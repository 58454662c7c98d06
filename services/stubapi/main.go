// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command stubapi runs the in-memory development backend standalone.
//
// The same server is reachable through `partnerdash dev serve`; this
// binary exists for docker-compose style setups where the backend and
// the CLI run as separate processes.
//
// Configuration comes from flags, with .env / environment fallbacks:
//
//	STUBAPI_ADDR        listen address (default :8000)
//	STUBAPI_JWT_SECRET  session signing secret
//	STUBAPI_NO_SEED     set to any value to start with empty state
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/logging"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/services/stubapi/stub"
)

const shutdownGrace = 5 * time.Second

func main() {
	// Missing .env is fine; the defaults stand on their own.
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("STUBAPI_ADDR", ":8000"), "listen address")
	secret := flag.String("jwt-secret", os.Getenv("STUBAPI_JWT_SECRET"), "session signing secret")
	noSeed := flag.Bool("no-seed", os.Getenv("STUBAPI_NO_SEED") != "", "start with empty state instead of demo fixtures")
	logDir := flag.String("log-dir", "", "also write JSON logs to this directory")
	flag.Parse()

	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		LogDir:  *logDir,
		Service: "stubapi",
		Console: true,
	})
	defer logger.Close()

	server := stub.NewServer(stub.Options{
		JWTSecret: *secret,
		Seed:      !*noSeed,
	})

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("stub backend listening", "addr", *addr, "seeded", !*noSeed)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("shutdown incomplete", "error", err)
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
