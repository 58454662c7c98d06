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
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/session"
)

func runLogin(cmd *cobra.Command, args []string) error {
	email, password := emailFlag, passwordFlag
	if email == "" || password == "" {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Email").Value(&email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
		))
		if err := form.Run(); err != nil {
			return fail(err)
		}
	}

	ctx, cancel := cmdContext()
	defer cancel()

	result, err := application.services.Auth.Login(ctx, fieldsvc.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fail(err)
	}

	err = application.sessions.Save(session.Session{
		Token:   result.Token,
		Email:   email,
		BaseURL: application.baseURL,
		SavedAt: time.Now(),
	})
	if err != nil {
		return fail(fmt.Errorf("session saved nowhere: %w", err))
	}

	application.logger.Info("logged in", "email", email)
	return emit(map[string]string{"message": result.Message, "email": email}, func() {
		fmt.Println(okStyle.Render("Logged in as " + email))
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	// Best effort server side; the local session goes regardless.
	if err := application.services.Auth.Logout(ctx); err != nil {
		application.logger.Warn("server logout failed", "error", err)
	}
	if err := application.sessions.Clear(); err != nil {
		return fail(err)
	}
	return emit(map[string]string{"message": "logged out"}, func() {
		fmt.Println("Logged out.")
	})
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	current, err := application.sessions.Load()
	if errors.Is(err, session.ErrNoSession) {
		return emit(map[string]any{"logged_in": false}, func() {
			fmt.Println("No saved session. Run `partnerdash auth login`.")
		})
	}
	if err != nil {
		return fail(err)
	}

	claims, err := session.Introspect(current.Token)
	if err != nil {
		return fail(fmt.Errorf("saved token is unreadable: %w", err))
	}
	expired := current.Expired(time.Now())

	out := map[string]any{
		"logged_in":  true,
		"email":      claims.Email,
		"expires_at": claims.ExpiresAt,
		"expired":    expired,
		"base_url":   current.BaseURL,
	}
	return emit(out, func() {
		fmt.Printf("Session for %s\n", headerStyle.Render(claims.Email))
		fmt.Printf("  Backend:  %s\n", current.BaseURL)
		if expired {
			fmt.Printf("  Expiry:   %s\n", errStyle.Render("expired "+claims.ExpiresAt.Format(time.RFC1123)))
		} else {
			fmt.Printf("  Expiry:   %s\n", claims.ExpiresAt.Format(time.RFC1123))
		}
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	user, err := application.services.Auth.Me(ctx)
	if err != nil {
		return fail(err)
	}
	return emit(user, func() {
		fmt.Printf("%s (id %d)\n", headerStyle.Render(user.Email), user.ID)
		fmt.Printf("  Active:     %v\n", user.IsActive)
		fmt.Printf("  Approved:   %v\n", user.IsApproved)
		fmt.Printf("  Superadmin: %v\n", user.IsSuperadmin)
	})
}
