// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"time"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// CurrentConfigVersion is written into new config files and checked
	// on load so future migrations know what they are reading.
	CurrentConfigVersion = "1.0.0"

	// DefaultBaseURL points at a locally running backend.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeoutSeconds caps every request round-trip.
	DefaultTimeoutSeconds = 30

	// DefaultMaxRetries bounds transient-failure retries per request.
	DefaultMaxRetries = 3

	// DefaultBackoffBaseMS is the first retry delay; later attempts double it.
	DefaultBackoffBaseMS = 500

	// DefaultCacheEntries bounds the in-memory query cache.
	DefaultCacheEntries = 256

	// DefaultSessionPath stores the login session between runs.
	DefaultSessionPath = "~/.partnerdash/session.json"
)

// Default cache freshness windows, in seconds. Jobs churn fastest so
// they go stale first; partner records barely change.
const (
	DefaultJobsTTLSeconds         = 120
	DefaultPartnersTTLSeconds     = 300
	DefaultAnalyticsTTLSeconds    = 300
	DefaultChecklistsTTLSeconds   = 300
	DefaultRequisitionsTTLSeconds = 180
	DefaultCacheTTLSeconds        = 180
)

// =============================================================================
// Config Types
// =============================================================================

// PartnerdashConfig is the root of ~/.partnerdash/partnerdash.yaml.
type PartnerdashConfig struct {
	// Meta: version and modification tracking
	Meta ConfigMeta `yaml:"meta"`

	// Backend: where the admin API lives and how hard to lean on it
	Backend BackendConfig `yaml:"backend"`

	// Cache: freshness windows and capacity for the query cache
	Cache CacheConfig `yaml:"cache"`

	// Logging: level, format, and optional file destination
	Logging LoggingConfig `yaml:"logging"`

	// Session: where the login session is persisted
	Session SessionConfig `yaml:"session"`
}

// ConfigMeta tracks config file provenance.
type ConfigMeta struct {
	Version    string `yaml:"version"`
	CreatedAt  int64  `yaml:"created_at"`  // unix millis
	ModifiedAt int64  `yaml:"modified_at"` // unix millis
	ModifiedBy string `yaml:"modified_by"`
}

func newConfigMeta() ConfigMeta {
	now := time.Now().UnixMilli()
	return ConfigMeta{
		Version:    CurrentConfigVersion,
		CreatedAt:  now,
		ModifiedAt: now,
		ModifiedBy: "partnerdash-cli",
	}
}

// CreatedAtTime converts the CreatedAt timestamp to time.Time.
func (m ConfigMeta) CreatedAtTime() time.Time {
	return time.UnixMilli(m.CreatedAt)
}

// ModifiedAtTime converts the ModifiedAt timestamp to time.Time.
func (m ConfigMeta) ModifiedAtTime() time.Time {
	return time.UnixMilli(m.ModifiedAt)
}

// BackendConfig names the admin API endpoint and request behavior.
type BackendConfig struct {
	BaseURL        string      `yaml:"base_url"`        // e.g. https://api.example.com
	TimeoutSeconds int         `yaml:"timeout_seconds"` // per-request cap
	Retry          RetryConfig `yaml:"retry"`
}

// GetBaseURL returns the configured URL or the local default.
func (b BackendConfig) GetBaseURL() string {
	if b.BaseURL == "" {
		return DefaultBaseURL
	}
	return b.BaseURL
}

// GetTimeout returns the request timeout, falling back to the default
// when unset or nonsense.
func (b BackendConfig) GetTimeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// RetryConfig bounds transient-failure retries.
type RetryConfig struct {
	MaxRetries    int `yaml:"max_retries"`
	BackoffBaseMS int `yaml:"backoff_base_ms"`
}

// GetMaxRetries returns the retry budget. Zero is a valid setting
// (retries off); negative values fall back to the default.
func (r RetryConfig) GetMaxRetries() int {
	if r.MaxRetries < 0 {
		return DefaultMaxRetries
	}
	return r.MaxRetries
}

// GetBackoffBase returns the first retry delay.
func (r RetryConfig) GetBackoffBase() time.Duration {
	if r.BackoffBaseMS <= 0 {
		return DefaultBackoffBaseMS * time.Millisecond
	}
	return time.Duration(r.BackoffBaseMS) * time.Millisecond
}

// CacheConfig tunes the query cache.
type CacheConfig struct {
	MaxEntries int       `yaml:"max_entries"`
	TTLSeconds TTLConfig `yaml:"ttl_seconds"`
}

// GetMaxEntries returns the cache capacity.
func (c CacheConfig) GetMaxEntries() int {
	if c.MaxEntries <= 0 {
		return DefaultCacheEntries
	}
	return c.MaxEntries
}

// TTLConfig holds per-resource freshness windows in seconds.
// Zero means "use the built-in default" for that resource.
type TTLConfig struct {
	Jobs         int `yaml:"jobs"`
	Partners     int `yaml:"partners"`
	Analytics    int `yaml:"analytics"`
	Checklists   int `yaml:"checklists"`
	Requisitions int `yaml:"requisitions"`
	Default      int `yaml:"default"`
}

// TTLFor maps a resource name to its freshness window.
func (t TTLConfig) TTLFor(resource string) time.Duration {
	pick := func(configured, fallback int) time.Duration {
		if configured <= 0 {
			return time.Duration(fallback) * time.Second
		}
		return time.Duration(configured) * time.Second
	}
	switch resource {
	case "jobs":
		return pick(t.Jobs, DefaultJobsTTLSeconds)
	case "partners":
		return pick(t.Partners, DefaultPartnersTTLSeconds)
	case "analytics":
		return pick(t.Analytics, DefaultAnalyticsTTLSeconds)
	case "checklists":
		return pick(t.Checklists, DefaultChecklistsTTLSeconds)
	case "requisitions":
		return pick(t.Requisitions, DefaultRequisitionsTTLSeconds)
	default:
		return pick(t.Default, DefaultCacheTTLSeconds)
	}
}

// LoggingConfig controls the CLI's log output.
type LoggingConfig struct {
	Level   string `yaml:"level"`   // debug, info, warn, error
	JSON    bool   `yaml:"json"`    // machine-readable stderr
	Console bool   `yaml:"console"` // colorized stderr when on a TTY
	Dir     string `yaml:"dir"`     // optional log file directory
}

// GetLevel returns the configured level name, defaulting to info.
func (l LoggingConfig) GetLevel() string {
	if l.Level == "" {
		return "info"
	}
	return l.Level
}

// SessionConfig names where the login session lives on disk.
type SessionConfig struct {
	Path string `yaml:"path"`
}

// GetPath returns the session file path or its default location.
func (s SessionConfig) GetPath() string {
	if s.Path == "" {
		return DefaultSessionPath
	}
	return s.Path
}

// =============================================================================
// Defaults
// =============================================================================

// DefaultConfig is what a first run writes to disk.
func DefaultConfig() PartnerdashConfig {
	return PartnerdashConfig{
		Meta: newConfigMeta(),
		Backend: BackendConfig{
			BaseURL:        DefaultBaseURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
			Retry: RetryConfig{
				MaxRetries:    DefaultMaxRetries,
				BackoffBaseMS: DefaultBackoffBaseMS,
			},
		},
		Cache: CacheConfig{
			MaxEntries: DefaultCacheEntries,
			TTLSeconds: TTLConfig{
				Jobs:         DefaultJobsTTLSeconds,
				Partners:     DefaultPartnersTTLSeconds,
				Analytics:    DefaultAnalyticsTTLSeconds,
				Checklists:   DefaultChecklistsTTLSeconds,
				Requisitions: DefaultRequisitionsTTLSeconds,
				Default:      DefaultCacheTTLSeconds,
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
		Session: SessionConfig{
			Path: DefaultSessionPath,
		},
	}
}
