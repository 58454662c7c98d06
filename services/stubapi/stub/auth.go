// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stub

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ProgrammingGuy001/partner-app-dashboard-sub000/pkg/fieldsvc"
)

const sessionCookie = "access_token"

// buildRouter assembles all routes. Everything except /health and the
// auth entry points sits behind the session middleware.
func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "partnerdash-stubapi"})
	})

	router.POST("/auth/signup", s.handleSignup)
	router.POST("/auth/login", s.handleLogin)

	authed := router.Group("/", s.requireSession)
	{
		authed.GET("/auth/me", s.handleMe)
		authed.POST("/auth/logout", s.handleLogout)

		authed.GET("/jobs", s.handleListJobs)
		authed.POST("/jobs", s.handleCreateJob)
		authed.GET("/jobs/:id", s.handleGetJob)
		authed.PUT("/jobs/:id", s.handleUpdateJob)
		authed.DELETE("/jobs/:id", s.handleDeleteJob)
		authed.POST("/jobs/:id/start", s.transitionHandler("start"))
		authed.POST("/jobs/:id/pause", s.transitionHandler("pause"))
		authed.POST("/jobs/:id/finish", s.transitionHandler("finish"))
		authed.POST("/jobs/:id/request-start-otp", s.otpRequestHandler("start"))
		authed.POST("/jobs/:id/request-end-otp", s.otpRequestHandler("end"))
		authed.POST("/jobs/:id/verify-start-otp", s.otpVerifyHandler("start"))
		authed.POST("/jobs/:id/verify-end-otp", s.otpVerifyHandler("end"))
		authed.GET("/jobs/:id/history", s.handleJobHistory)
		authed.PUT("/jobs/:id/checklists/items/:itemID/approve", s.handleApproveItem)

		authed.GET("/admin/ips", s.handleListPartners)
		authed.GET("/admin/ips/approved", s.handleListApprovedPartners)
		authed.POST("/admin/verify-ip/:phone", s.handleVerifyPartner)

		authed.GET("/analytics/payout", s.handlePayoutSummary)
		authed.GET("/analytics/job-stages", s.handleJobStages)
		authed.GET("/analytics/ip-performance", s.handleIPPerformance)

		authed.GET("/checklists/", s.handleListChecklists)
		authed.POST("/checklists/", s.handleCreateChecklist)
		authed.GET("/checklists/:id", s.handleGetChecklist)
		authed.POST("/checklists/items", s.handleAddChecklistItem)
		authed.POST("/checklists/link", s.handleLinkChecklist)
		authed.GET("/checklists/job/:id/items", s.handleJobChecklistItems)

		authed.GET("/bom/history", s.handleRequisitionHistory)
		authed.GET("/bom/history/:so", s.handleRequisitionBySO)
		authed.PATCH("/bom/history/:so/status", s.handleRequisitionStatus)
		authed.POST("/bom/submit", s.handleRequisitionSubmit)
		authed.GET("/bom/:so/:cabinet", s.handleBOMTree)
	}

	return router
}

// =============================================================================
// SESSION HANDLING
// =============================================================================

// issueToken signs a session JWT for an account.
func (s *Server) issueToken(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.JWTSecret))
}

// requireSession authenticates via the access_token cookie, falling
// back to the Authorization header, and stores the account email in
// the gin context.
func (s *Server) requireSession(c *gin.Context) {
	raw, err := c.Cookie(sessionCookie)
	if err != nil || raw == "" {
		raw = c.GetHeader("Authorization")
	}
	token := strings.TrimPrefix(raw, "Bearer ")
	if token == "" {
		errDetail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		errDetail(c, http.StatusUnauthorized, "Invalid or expired session")
		return
	}
	claims := parsed.Claims.(*jwt.RegisteredClaims)

	s.mu.Lock()
	_, ok := s.accounts[claims.Subject]
	s.mu.Unlock()
	if !ok {
		errDetail(c, http.StatusUnauthorized, "Unknown account")
		return
	}

	c.Set("email", claims.Subject)
	c.Next()
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

func (s *Server) handleSignup(c *gin.Context) {
	var req struct {
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required,min=8"`
		IsSuperadmin bool   `json:"is_superadmin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid signup payload: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		errDetail(c, http.StatusBadRequest, "Email already registered")
		return
	}
	s.accounts[req.Email] = &account{
		user:     fieldsvc.User{ID: s.id(), Email: req.Email, IsActive: true, IsSuperadmin: req.IsSuperadmin},
		password: req.Password,
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created, awaiting approval",
		"user":    req.Email,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	if !s.loginLimiter.Allow() {
		errDetail(c, http.StatusTooManyRequests, "Too many login attempts, try again later")
		return
	}

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errDetail(c, http.StatusUnprocessableEntity, "Invalid login payload: %v", err)
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || acct.password != req.Password {
		errDetail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !acct.user.IsApproved {
		errDetail(c, http.StatusUnauthorized, "Account not yet approved")
		return
	}

	token, err := s.issueToken(req.Email)
	if err != nil {
		errDetail(c, http.StatusInternalServerError, "Could not issue session")
		return
	}
	// Set directly rather than via gin, which would query-escape the
	// space in "Bearer <token>"; net/http quotes the value instead,
	// matching what clients expect to parse back out.
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    "Bearer " + token,
		Path:     "/",
		MaxAge:   int(s.opts.TokenTTL.Seconds()),
		HttpOnly: true,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

func (s *Server) handleMe(c *gin.Context) {
	email := c.GetString("email")

	s.mu.Lock()
	acct := s.accounts[email]
	s.mu.Unlock()

	c.JSON(http.StatusOK, acct.user)
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
