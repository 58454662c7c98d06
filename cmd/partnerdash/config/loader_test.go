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
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestCreateDefault verifies default config creation.
func TestCreateDefault(t *testing.T) {
	// Create a temp directory
	tempDir, err := os.MkdirTemp("", "partnerdash-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, ".partnerdash", "partnerdash.yaml")

	// Create the config
	err = createDefault(configPath)
	if err != nil {
		t.Fatalf("createDefault() failed: %v", err)
	}

	// Verify the file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	// Read and verify the config
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}

	var cfg PartnerdashConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	// Verify some defaults
	if cfg.Backend.BaseURL != DefaultBaseURL {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, DefaultBaseURL)
	}
	if cfg.Meta.Version != CurrentConfigVersion {
		t.Errorf("Meta.Version = %q, want %q", cfg.Meta.Version, CurrentConfigVersion)
	}
}

// TestCreateDefault_DirectoryCreation verifies directory is created.
func TestCreateDefault_DirectoryCreation(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "partnerdash-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	// Use a nested path
	configPath := filepath.Join(tempDir, "deep", "nested", "path", "partnerdash.yaml")

	err = createDefault(configPath)
	if err != nil {
		t.Fatalf("createDefault() failed with nested path: %v", err)
	}

	// Verify the directories were created
	dirPath := filepath.Dir(configPath)
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		t.Fatal("nested directories were not created")
	}
}

// TestLoadFrom verifies reading a custom config without the singleton.
func TestLoadFrom(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "partnerdash-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "partnerdash.yaml")
	content := []byte(`
backend:
  base_url: https://staging.example.com
  timeout_seconds: 15
  retry:
    max_retries: 1
cache:
  max_entries: 32
  ttl_seconds:
    jobs: 45
logging:
  level: debug
`)
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if cfg.Backend.BaseURL != "https://staging.example.com" {
		t.Errorf("Backend.BaseURL = %q, want staging URL", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutSeconds != 15 {
		t.Errorf("Backend.TimeoutSeconds = %d, want 15", cfg.Backend.TimeoutSeconds)
	}
	if cfg.Backend.Retry.MaxRetries != 1 {
		t.Errorf("Retry.MaxRetries = %d, want 1", cfg.Backend.Retry.MaxRetries)
	}
	if cfg.Cache.MaxEntries != 32 {
		t.Errorf("Cache.MaxEntries = %d, want 32", cfg.Cache.MaxEntries)
	}
	if cfg.Cache.TTLSeconds.Jobs != 45 {
		t.Errorf("TTLSeconds.Jobs = %d, want 45", cfg.Cache.TTLSeconds.Jobs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

// TestLoadFrom_MissingFile verifies the error path.
func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom("/nonexistent/partnerdash.yaml")
	if err == nil {
		t.Fatal("LoadFrom() should fail for a missing file")
	}
}

// TestLoadFrom_MalformedYAML verifies the parse error path.
func TestLoadFrom_MalformedYAML(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "partnerdash-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "partnerdash.yaml")
	if err := os.WriteFile(configPath, []byte("backend: [not: valid"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Fatal("LoadFrom() should fail for malformed yaml")
	}
}
