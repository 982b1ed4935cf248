// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package drain

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/zeus-fleet/zeus/internal/atomicstore"
	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/envelope"
	"github.com/zeus-fleet/zeus/internal/queue"
	"github.com/zeus-fleet/zeus/internal/registry"
	"github.com/zeus-fleet/zeus/internal/watch"
	"github.com/zeus-fleet/zeus/internal/zeusid"
)

// Config tunes the drain loop's timing (mirrors
// internal/zeusconfig.DrainConfig).
type Config struct {
	// SweepInterval is the fallback sweep timer period.
	SweepInterval time.Duration
	// InflightLease bounds how long an envelope may sit claimed before
	// a sweep reclaims it back to new/.
	InflightLease time.Duration
	// WakeDebounce coalesces overlapping filesystem wake signals.
	WakeDebounce time.Duration
}

// Loop is the dispatcher's single drain task: one OS thread of
// execution (a goroutine, here) runs exactly one DispatchOnce at a
// time, so the queue is sequential within a process while
// inter-process safety still comes from atomic rename (spec §4.E
// "Scheduling model").
type Loop struct {
	queue    *queue.Queue
	registry registry.AgentRegistry
	logger   *slog.Logger
	clk      clock.Clock

	inflightLease time.Duration
	sweepInterval time.Duration

	newWatcher      watch.Watcher
	receiptsWatcher watch.Watcher
}

// New returns a Loop ready to Run. newWatcher observes
// zeus-message-queue/new/; receiptsWatcher observes
// zeus-agent-bus/receipts/ (top-level only — nested per-agent receipt
// writes rely on the sweep timer, per spec §9's "must work with the
// sweep timer alone" requirement). Pass watch.Noop{} for either to
// disable that latency optimization.
func New(q *queue.Queue, reg registry.AgentRegistry, logger *slog.Logger, clk clock.Clock, cfg Config, newWatcher, receiptsWatcher watch.Watcher) *Loop {
	return &Loop{
		queue:           q,
		registry:        reg,
		logger:          logger,
		clk:             clk,
		inflightLease:   cfg.InflightLease,
		sweepInterval:   cfg.SweepInterval,
		newWatcher:      newWatcher,
		receiptsWatcher: receiptsWatcher,
	}
}

// Run blocks until ctx is cancelled, driving the IDLE/SWEEP state
// machine. Shutdown is cooperative: Run finishes whatever DispatchOnce
// call is in flight, then returns — no envelope is left half-handled.
func (l *Loop) Run(ctx context.Context) {
	defer l.newWatcher.Close()
	defer l.receiptsWatcher.Close()

	// Startup recovery: reclaim every inflight/ envelope regardless of
	// lease age, since any of them may belong to a dispatcher that
	// crashed before this process started (spec §4.E "Startup recovery").
	l.reclaimInflight(true)
	l.sweep(ctx)

	ticker := l.clk.NewTicker(l.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(ctx)
		case <-l.newWatcher.Signal():
			l.sweep(ctx)
		case <-l.receiptsWatcher.Signal():
			l.sweep(ctx)
		}
	}
}

// sweep is one IDLE->SWEEP->IDLE pass: reclaim stale inflight/
// envelopes, then claim and dispatch every new/ envelope whose
// next_attempt_at has arrived (spec §4.E steps 1-2).
func (l *Loop) sweep(ctx context.Context) {
	l.reclaimInflight(false)

	names, err := atomicstore.ListSorted(l.queue.NewDir(), ".json")
	if err != nil {
		l.logger.Warn("drain: listing new/ failed", "error", err)
		return
	}

	now := epochSeconds(l.clk.Now())
	for _, name := range names {
		select {
		case <-ctx.Done():
			return
		default:
		}

		id := name[:len(name)-len(".json")]
		path := filepath.Join(l.queue.NewDir(), name)

		data, err := os.ReadFile(path)
		if err != nil {
			continue // vanished between list and read; another sweep will see it, or not.
		}
		var env envelope.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Poison: let DispatchOnce's own poison handling run once
			// claimed, rather than duplicating that branch here.
			env.NextAttemptAt = 0
		}
		if env.NextAttemptAt > now {
			continue
		}

		inflightPath := filepath.Join(l.queue.InflightDir(), name)
		if err := atomicstore.EnsureDir(l.queue.InflightDir()); err != nil {
			l.logger.Warn("drain: creating inflight/ failed", "error", err)
			continue
		}
		ok, err := atomicstore.ClaimMove(path, inflightPath)
		if err != nil || !ok {
			continue // lost the race to another dispatcher process, or already gone.
		}

		l.dispatch(id, env.SourceAgentID)
	}
}

// dispatch resolves the sending agent's phalanx (needed for "phalanx"
// targets) and calls DispatchOnce on the envelope now claimed at
// inflight/<id>.json.
func (l *Loop) dispatch(id, sourceAgentID string) {
	var phalanxID string
	if agentID, err := zeusid.ParseAgentID(sourceAgentID); err == nil {
		if info, ok := l.registry.LookupByID(agentID); ok {
			phalanxID = info.PhalanxID
		}
	}

	decision, err := l.queue.DispatchOnce(id, phalanxID)
	if err != nil {
		l.logger.Warn("drain: DispatchOnce failed, leaving in inflight/ for next sweep", "envelope_id", id, "error", err)
		return
	}
	l.logger.Debug("drain: dispatched", "envelope_id", id, "decision", decision.Kind)
}

// reclaimInflight moves every inflight/ envelope whose updated_at is
// older than the lease back to new/. force=true ignores the lease
// (startup recovery); force=false only reclaims envelopes a prior
// dispatcher abandoned (spec §4.E step 1).
func (l *Loop) reclaimInflight(force bool) {
	names, err := atomicstore.ListSorted(l.queue.InflightDir(), ".json")
	if err != nil {
		return
	}

	now := epochSeconds(l.clk.Now())
	for _, name := range names {
		path := filepath.Join(l.queue.InflightDir(), name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var env envelope.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		if !force && now-env.UpdatedAt < l.inflightLease.Seconds() {
			continue
		}

		if err := atomicstore.EnsureDir(l.queue.NewDir()); err != nil {
			continue
		}
		atomicstore.ClaimMove(path, filepath.Join(l.queue.NewDir(), name))
	}
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
