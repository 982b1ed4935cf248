// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zeusconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Capability.MaxHeartbeatAge != 30*time.Second {
		t.Errorf("expected max_heartbeat_age=30s, got %s", cfg.Capability.MaxHeartbeatAge)
	}
	if cfg.Queue.RetryBase != 2*time.Second || cfg.Queue.RetryCap != 60*time.Second {
		t.Errorf("unexpected retry bounds: base=%s cap=%s", cfg.Queue.RetryBase, cfg.Queue.RetryCap)
	}
	if cfg.Drain.InflightLease != 120*time.Second {
		t.Errorf("expected inflight_lease=120s, got %s", cfg.Drain.InflightLease)
	}
}

func TestLoad_NoZeusConfigUsesDefaults(t *testing.T) {
	origConfig := os.Getenv("ZEUS_CONFIG")
	defer os.Setenv("ZEUS_CONFIG", origConfig)
	os.Unsetenv("ZEUS_CONFIG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StateDir == "" {
		t.Error("expected StateDir to be resolved even with no config file")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "zeus.yaml")

	content := `
environment: production
state_dir: ` + dir + `/state
queue:
  retry_base: 1s
  retry_cap: 30s
production:
  capability:
    max_heartbeat_age: 10s
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Queue.RetryBase != time.Second || cfg.Queue.RetryCap != 30*time.Second {
		t.Errorf("unexpected retry override: base=%s cap=%s", cfg.Queue.RetryBase, cfg.Queue.RetryCap)
	}
	if cfg.Capability.MaxHeartbeatAge != 10*time.Second {
		t.Errorf("expected production override max_heartbeat_age=10s, got %s", cfg.Capability.MaxHeartbeatAge)
	}
	if cfg.StateDir != dir+"/state" {
		t.Errorf("expected state_dir=%s/state, got %s", dir, cfg.StateDir)
	}
}

func TestResolveStateDir(t *testing.T) {
	origStateDir := os.Getenv("ZEUS_STATE_DIR")
	origHome := os.Getenv("ZEUS_HOME")
	defer func() {
		os.Setenv("ZEUS_STATE_DIR", origStateDir)
		os.Setenv("ZEUS_HOME", origHome)
	}()

	os.Setenv("ZEUS_STATE_DIR", "/custom/state")
	os.Unsetenv("ZEUS_HOME")
	if got := ResolveStateDir(); got != "/custom/state" {
		t.Errorf("expected ZEUS_STATE_DIR to win, got %s", got)
	}

	os.Unsetenv("ZEUS_STATE_DIR")
	os.Setenv("ZEUS_HOME", "/custom/home")
	if got := ResolveStateDir(); got != "/custom/home" {
		t.Errorf("expected ZEUS_HOME to win when STATE_DIR unset, got %s", got)
	}
}

func TestValidate_RejectsBadRetryBounds(t *testing.T) {
	cfg := Default()
	cfg.StateDir = t.TempDir()
	cfg.Queue.RetryCap = cfg.Queue.RetryBase - time.Second

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error when retry_cap < retry_base")
	}
}

func TestValidate_RequiresRecipientsFileWhenSealEnabled(t *testing.T) {
	cfg := Default()
	cfg.StateDir = t.TempDir()
	cfg.Seal.Enabled = true

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error when seal.enabled but no recipients_file")
	}
}
