// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session persists the login session between CLI runs.
//
// The backend issues a JWT at login; this package stores it (plus a
// little identity context for display) in a 0600 JSON file under the
// user's home directory, and exposes the token to the HTTP adapter via
// the CredentialSource contract. Claims are read with an unverified
// parse purely for local introspection (expiry display, account email).
// The server remains the authority on token validity.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned by Load when no session has been saved.
var ErrNoSession = errors.New("no saved session")

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is the persisted login state.
type Session struct {
	Token   string    `json:"token"`
	Email   string    `json:"email,omitempty"`
	BaseURL string    `json:"base_url,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// Claims is the subset of JWT claims the CLI cares about. The backend
// puts the account email in the standard sub claim.
type Claims struct {
	Email     string
	ExpiresAt time.Time
}

// Introspect reads the token's claims without verifying the signature.
// Verification happens server-side; locally we only want expiry and
// identity for display.
func Introspect(token string) (Claims, error) {
	var claims Claims
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return claims, fmt.Errorf("parse token: %w", err)
	}
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return claims, fmt.Errorf("unexpected claims type %T", parsed.Claims)
	}

	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Email = sub
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// Expired reports whether the session's token has a past exp claim.
// Unreadable tokens count as expired.
func (s Session) Expired(now time.Time) bool {
	if s.Token == "" {
		return true
	}
	claims, err := Introspect(s.Token)
	if err != nil {
		return true
	}
	if claims.ExpiresAt.IsZero() {
		return false
	}
	return claims.ExpiresAt.Before(now)
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store persists and recalls the login session.
//
// Implementations also satisfy the HTTP adapter's CredentialSource:
// Token returns the current token even if its exp claim has passed,
// because the backend, not the client clock, decides validity.
type Store interface {
	// Load returns the current session, or ErrNoSession.
	Load() (Session, error)

	// Save replaces the current session.
	Save(s Session) error

	// Clear forgets the session. Clearing an empty store is not an error.
	Clear() error

	// Token returns the current token for request credentials.
	Token() (string, bool)
}

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore keeps the session in a JSON file, 0600.
//
// The file content is cached in memory after the first read, so Token
// does not hit the disk per request.
type FileStore struct {
	path string

	mu      sync.RWMutex
	current *Session
	loaded  bool
}

// NewFileStore creates a store at path. A leading ~ expands to the
// user's home directory.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: expandPath(path)}
}

// Path returns the resolved session file location.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(); err != nil {
		return Session{}, err
	}
	if f.current == nil {
		return Session{}, ErrNoSession
	}
	return *f.current, nil
}

func (f *FileStore) Save(s Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	// 0600: the token grants account access.
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	copied := s
	f.current = &copied
	f.loaded = true
	return nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = nil
	f.loaded = true
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (f *FileStore) Token() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(); err != nil {
		return "", false
	}
	if f.current == nil || f.current.Token == "" {
		return "", false
	}
	return f.current.Token, true
}

// loadLocked populates the cache from disk once. Caller holds f.mu.
func (f *FileStore) loadLocked() error {
	if f.loaded {
		return nil
	}
	f.loaded = true

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session file: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt file is treated as logged out rather than a hard
		// failure; the next Save overwrites it.
		return nil
	}
	f.current = &s
	return nil
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemStore is an in-memory Store for tests and the stub backend.
type MemStore struct {
	mu      sync.RWMutex
	current *Session
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore { return &MemStore{} }

func (m *MemStore) Load() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, ErrNoSession
	}
	return *m.current, nil
}

func (m *MemStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := s
	m.current = &copied
	return nil
}

func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return nil
}

func (m *MemStore) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.Token == "" {
		return "", false
	}
	return m.current.Token, true
}

// =============================================================================
// HELPERS
// =============================================================================

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
