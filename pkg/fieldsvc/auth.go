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
	"net/http"
	"strings"
)

// sessionCookie is the cookie carrying the bearer token.
const sessionCookie = "access_token"

// AuthService signs admins in and out.
//
// Login is the one accessor that inspects response headers: the
// backend delivers the JWT via Set-Cookie (value "Bearer <token>"),
// not the body, so the token is pulled out of the cookie jar and
// handed to the caller for the session store.
type AuthService struct {
	backend Backend
}

// NewAuthService creates an AuthService on backend.
func NewAuthService(backend Backend) *AuthService {
	return &AuthService{backend: backend}
}

// Login exchanges credentials for a session token.
//
// # Inputs
//   - ctx: Context for cancellation/timeout.
//   - req: Email and password; validated locally first.
//
// # Outputs
//   - *LoginResult: Token from the access_token cookie plus the
//     server's message.
//   - error: *ValidationError, *api.APIError (401 invalid credentials
//     or unapproved account, 429 rate limited), or transport failure.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := checkRequest("login", req); err != nil {
		return nil, err
	}

	var msg MessageResponse
	cookies, err := s.backend.PostWithCookies(ctx, "/auth/login", req, &msg)
	if err != nil {
		return nil, err
	}

	token, ok := extractToken(cookies)
	if !ok {
		return nil, fmt.Errorf("login succeeded but no %s cookie was set", sessionCookie)
	}
	return &LoginResult{Token: token, Message: msg.Message}, nil
}

// Signup registers a new admin account. The account still needs
// approval before it can log in.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	if err := checkRequest("signup", req); err != nil {
		return nil, err
	}
	var out SignupResult
	if err := s.backend.Post(ctx, "/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account behind the current credentials.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	var out User
	if err := s.backend.Get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the backend to drop the cookie. The local session is
// cleared by the caller regardless of the outcome here.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.backend.Post(ctx, "/auth/logout", nil, nil)
}

// extractToken finds the session cookie and strips the Bearer prefix.
func extractToken(cookies []*http.Cookie) (string, bool) {
	for _, c := range cookies {
		if c.Name != sessionCookie {
			continue
		}
		token := strings.TrimPrefix(c.Value, "Bearer ")
		if token == "" {
			return "", false
		}
		return token, true
	}
	return "", false
}
