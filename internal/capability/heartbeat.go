// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"path/filepath"

	"github.com/zeus-fleet/zeus/internal/atomicstore"
	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/zeusid"
)

// Supports records the protocol features an extension implements.
// queue_bus must be true for the dispatcher to consider the agent a
// valid delivery target at all.
type Supports struct {
	QueueBus  bool `json:"queue_bus"`
	ReceiptV1 bool `json:"receipt_v1"`
}

// Extension identifies the agent-side integration publishing the
// heartbeat, for operator diagnostics when multiple extension
// versions are in play during a rollout.
type Extension struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Heartbeat is the on-disk shape of caps/<agent-id>.json (spec §3).
type Heartbeat struct {
	AgentID     string    `json:"agent_id"`
	Role        string    `json:"role"`
	SessionID   string    `json:"session_id"`
	SessionPath string    `json:"session_path"`
	Cwd         string    `json:"cwd"`
	UpdatedAt   int64     `json:"updated_at"`
	Supports    Supports  `json:"supports"`
	Extension   Extension `json:"extension"`
}

// Registry reads and writes heartbeat files under a caps directory. A
// Registry has no mutable state of its own beyond the directory path
// and a clock — agent_id -> liveness mapping lives entirely on disk,
// so every dispatcher and extension process sees the same truth.
type Registry struct {
	capsDir        string
	maxHeartbeatAge int64 // seconds
	clk            clock.Clock
}

// NewRegistry returns a Registry rooted at capsDir. maxHeartbeatAge is
// the MAX_HEARTBEAT_AGE tunable from spec §3 (default 30s, configured
// via internal/zeusconfig.CapabilityConfig).
func NewRegistry(capsDir string, maxHeartbeatAgeSeconds int64, clk clock.Clock) *Registry {
	return &Registry{capsDir: capsDir, maxHeartbeatAge: maxHeartbeatAgeSeconds, clk: clk}
}

func (r *Registry) path(agentID zeusid.AgentID) string {
	return filepath.Join(r.capsDir, agentID.String()+".json")
}

// PublishHeartbeat writes hb atomically to this agent's capability
// file, stamping UpdatedAt with the registry's clock. Called by the
// extension side on every HEARTBEAT_INTERVAL tick and, best-effort, on
// every runtime lifecycle event (spec §4.C step 1).
func (r *Registry) PublishHeartbeat(agentID zeusid.AgentID, hb Heartbeat) error {
	if err := atomicstore.EnsureDir(r.capsDir); err != nil {
		return err
	}
	hb.AgentID = agentID.String()
	hb.UpdatedAt = clock.UnixSeconds(r.clk.Now())
	return atomicstore.WriteJSONAtomic(r.path(agentID), hb)
}

// IsFresh reports whether agentID has a capability file that exists,
// decodes, advertises supports.queue_bus, and was updated within
// MaxHeartbeatAge of now. Any read or decode error is treated as "not
// fresh" per spec §4.B — freshness checks never fail loudly, they just
// block delivery.
func (r *Registry) IsFresh(agentID zeusid.AgentID) bool {
	hb, err := atomicstore.ReadJSON[Heartbeat](r.path(agentID))
	if err != nil {
		return false
	}
	if !hb.Supports.QueueBus {
		return false
	}
	// A negative age means UpdatedAt is in the future relative to our
	// clock (skew between hosts) — treated as fresh, not stale, matching
	// the original capability_health resolution of this edge case.
	age := clock.UnixSeconds(r.clk.Now()) - hb.UpdatedAt
	return age <= r.maxHeartbeatAge
}

// Lookup returns the raw heartbeat for agentID, for diagnostics (e.g.
// the zeus-queue-inspect TUI showing session_path/cwd per agent). The
// second return value is false when the file is missing or corrupt.
func (r *Registry) Lookup(agentID zeusid.AgentID) (Heartbeat, bool) {
	hb, err := atomicstore.ReadJSON[Heartbeat](r.path(agentID))
	if err != nil {
		return Heartbeat{}, false
	}
	return hb, true
}
