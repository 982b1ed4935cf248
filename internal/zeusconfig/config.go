// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zeusconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the master configuration for the Zeus message bus. Every
// field has a sensible default from [Default]; a config file only
// needs to set what it wants to change.
type Config struct {
	Environment Environment `yaml:"environment"`

	// StateDir is the root directory for all durable bus state. If
	// empty, [ResolveStateDir] is used instead at load time.
	StateDir string `yaml:"state_dir"`

	// RosterFile optionally points at a static YAML roster of agents
	// (internal/registry.LoadRosterFile's format), for deployments
	// that have not wired up a real discovery subsystem. Left empty,
	// internal/zeusworld.New starts with an empty in-memory registry
	// that a caller populates via Registry.Put.
	RosterFile string `yaml:"roster_file"`

	Capability CapabilityConfig `yaml:"capability"`
	Queue      QueueConfig      `yaml:"queue"`
	Drain      DrainConfig      `yaml:"drain"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Seal       SealConfig       `yaml:"seal"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Capability *CapabilityConfig `yaml:"capability,omitempty"`
	Queue      *QueueConfig      `yaml:"queue,omitempty"`
	Drain      *DrainConfig      `yaml:"drain,omitempty"`
	Ledger     *LedgerConfig     `yaml:"ledger,omitempty"`
}

// CapabilityConfig tunes the capability registry (§4.B).
type CapabilityConfig struct {
	// HeartbeatInterval is how often an extension re-publishes its
	// capability heartbeat. Default: 5s.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// MaxHeartbeatAge is the freshness window: a heartbeat older than
	// this is stale and blocks delivery. Default: 30s.
	MaxHeartbeatAge time.Duration `yaml:"max_heartbeat_age"`
}

// QueueConfig tunes the envelope queue and its retry policy (§4.D).
type QueueConfig struct {
	// RetryBase is the base delay of the bounded-exponential backoff.
	// Default: 2s.
	RetryBase time.Duration `yaml:"retry_base"`

	// RetryCap bounds the backoff delay. Default: 60s.
	RetryCap time.Duration `yaml:"retry_cap"`

	// AttemptsNotify is the attempt count after which an operator
	// notification fires (throttled). Default: 3.
	AttemptsNotify int `yaml:"attempts_notify"`

	// NotifyThrottle bounds how often a repeated notification for the
	// same (envelope, reason) pair is allowed to fire. Default: 60s.
	NotifyThrottle time.Duration `yaml:"notify_throttle"`

	// ReresolveAfter is how long an envelope must have been queued
	// before recipient resolution is re-run. Default: 60s.
	ReresolveAfter time.Duration `yaml:"reresolve_after"`
}

// DrainConfig tunes the dispatcher's drain loop (§4.E).
type DrainConfig struct {
	// SweepInterval is the fallback sweep timer period. Default: 2s.
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// InflightLease bounds how long an envelope may sit claimed in
	// inflight/ before a sweep reclaims it back to new/. Default: 120s.
	InflightLease time.Duration `yaml:"inflight_lease"`

	// WakeDebounce coalesces overlapping wake signals. Default: 50ms.
	WakeDebounce time.Duration `yaml:"wake_debounce"`
}

// LedgerConfig tunes processed-ledger trimming (§3, §9).
type LedgerConfig struct {
	// MaxIDs is the number of ids kept before the oldest are pruned.
	// Default: 10000.
	MaxIDs int `yaml:"max_ids"`

	// MaxAge prunes ids older than this regardless of count.
	// Default: 720h (30 days).
	MaxAge time.Duration `yaml:"max_age"`

	// CompactAbove switches the ledger from whole-file rewrite to an
	// append-only log past this many in-memory ids (§9 scaling note).
	// Default: 4096.
	CompactAbove int `yaml:"compact_above"`
}

// SealConfig configures optional at-rest encryption of envelope and
// inbox item payloads using age recipients (see internal/sealedstore).
// Left zero-valued, payloads are plain JSON, matching the bus design's
// baseline (single trusted local machine, §1).
type SealConfig struct {
	// Enabled turns on payload sealing.
	Enabled bool `yaml:"enabled"`

	// RecipientsFile lists age public-key recipients, one per line.
	RecipientsFile string `yaml:"recipients_file"`

	// IdentityFile is the age private key used to unseal payloads.
	// Needed on hosts that unseal (an extension, or zeus-queue-inspect's
	// preview); a dispatcher-only host seals without it.
	IdentityFile string `yaml:"identity_file"`
}

// Default returns the baseline configuration: every tunable set to the
// value named in the bus design. A config file only needs to express
// the deltas it wants.
func Default() *Config {
	return &Config{
		Environment: Development,
		Capability: CapabilityConfig{
			HeartbeatInterval: 5 * time.Second,
			MaxHeartbeatAge:   30 * time.Second,
		},
		Queue: QueueConfig{
			RetryBase:      2 * time.Second,
			RetryCap:       60 * time.Second,
			AttemptsNotify: 3,
			NotifyThrottle: 60 * time.Second,
			ReresolveAfter: 60 * time.Second,
		},
		Drain: DrainConfig{
			SweepInterval: 2 * time.Second,
			InflightLease: 120 * time.Second,
			WakeDebounce:  50 * time.Millisecond,
		},
		Ledger: LedgerConfig{
			MaxIDs:       10000,
			MaxAge:       30 * 24 * time.Hour,
			CompactAbove: 4096,
		},
	}
}

// Load loads configuration from the ZEUS_CONFIG environment variable.
// A missing variable is not an error — [Default] is returned as-is,
// since every component has a workable built-in tunable set.
func Load() (*Config, error) {
	configPath := os.Getenv("ZEUS_CONFIG")
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. A path
// ending in .jsonc is accepted alongside plain YAML — comments are
// stripped before unmarshaling, since JSON is valid YAML once they're
// gone.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("zeusconfig: reading %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".jsonc") {
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("zeusconfig: parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.Capability != nil {
		if overrides.Capability.HeartbeatInterval != 0 {
			c.Capability.HeartbeatInterval = overrides.Capability.HeartbeatInterval
		}
		if overrides.Capability.MaxHeartbeatAge != 0 {
			c.Capability.MaxHeartbeatAge = overrides.Capability.MaxHeartbeatAge
		}
	}
	if overrides.Queue != nil {
		if overrides.Queue.RetryBase != 0 {
			c.Queue.RetryBase = overrides.Queue.RetryBase
		}
		if overrides.Queue.RetryCap != 0 {
			c.Queue.RetryCap = overrides.Queue.RetryCap
		}
		if overrides.Queue.AttemptsNotify != 0 {
			c.Queue.AttemptsNotify = overrides.Queue.AttemptsNotify
		}
		if overrides.Queue.NotifyThrottle != 0 {
			c.Queue.NotifyThrottle = overrides.Queue.NotifyThrottle
		}
		if overrides.Queue.ReresolveAfter != 0 {
			c.Queue.ReresolveAfter = overrides.Queue.ReresolveAfter
		}
	}
	if overrides.Drain != nil {
		if overrides.Drain.SweepInterval != 0 {
			c.Drain.SweepInterval = overrides.Drain.SweepInterval
		}
		if overrides.Drain.InflightLease != 0 {
			c.Drain.InflightLease = overrides.Drain.InflightLease
		}
		if overrides.Drain.WakeDebounce != 0 {
			c.Drain.WakeDebounce = overrides.Drain.WakeDebounce
		}
	}
	if overrides.Ledger != nil {
		if overrides.Ledger.MaxIDs != 0 {
			c.Ledger.MaxIDs = overrides.Ledger.MaxIDs
		}
		if overrides.Ledger.MaxAge != 0 {
			c.Ledger.MaxAge = overrides.Ledger.MaxAge
		}
		if overrides.Ledger.CompactAbove != 0 {
			c.Ledger.CompactAbove = overrides.Ledger.CompactAbove
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in
// StateDir and the seal file paths, then resolves StateDir via
// [ResolveStateDir] if it is still empty.
func (c *Config) expandVariables() {
	home, _ := os.UserHomeDir()
	vars := map[string]string{"HOME": home}

	c.StateDir = expandVars(c.StateDir, vars)
	if c.StateDir == "" {
		c.StateDir = ResolveStateDir()
	}
	vars["ZEUS_STATE_DIR"] = c.StateDir

	c.Seal.RecipientsFile = expandVars(c.Seal.RecipientsFile, vars)
	c.Seal.IdentityFile = expandVars(c.Seal.IdentityFile, vars)
	c.RosterFile = expandVars(c.RosterFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// ResolveStateDir derives STATE_DIR per §3: ZEUS_STATE_DIR, ZEUS_HOME,
// $HOME/.zeus, /tmp/zeus, in that order.
func ResolveStateDir() string {
	if dir := os.Getenv("ZEUS_STATE_DIR"); dir != "" {
		return dir
	}
	if dir := os.Getenv("ZEUS_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".zeus")
	}
	return "/tmp/zeus"
}

// MessageQueueDir returns STATE_DIR/zeus-message-queue.
func (c *Config) MessageQueueDir() string {
	return filepath.Join(c.StateDir, "zeus-message-queue")
}

// AgentBusDir returns STATE_DIR/zeus-agent-bus.
func (c *Config) AgentBusDir() string {
	return filepath.Join(c.StateDir, "zeus-agent-bus")
}

// Validate checks the configuration for internally-inconsistent values.
func (c *Config) Validate() error {
	var errs []error
	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.StateDir == "" {
		errs = append(errs, errors.New("state_dir is required"))
	}
	if c.Queue.RetryBase <= 0 || c.Queue.RetryCap <= 0 || c.Queue.RetryCap < c.Queue.RetryBase {
		errs = append(errs, errors.New("queue.retry_cap must be >= queue.retry_base, both > 0"))
	}
	if c.Seal.Enabled && c.Seal.RecipientsFile == "" {
		errs = append(errs, errors.New("seal.recipients_file is required when seal.enabled is true"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsureStateDirs creates the two bus roots if they don't exist.
func (c *Config) EnsureStateDirs() error {
	for _, dir := range []string{c.StateDir, c.MessageQueueDir(), c.AgentBusDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("zeusconfig: creating %s: %w", dir, err)
		}
	}
	return nil
}
