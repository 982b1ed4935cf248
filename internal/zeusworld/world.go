// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zeusworld

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/zeus-fleet/zeus/internal/capability"
	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/notify"
	"github.com/zeus-fleet/zeus/internal/registry"
	"github.com/zeus-fleet/zeus/internal/sealedstore"
	"github.com/zeus-fleet/zeus/internal/zeusconfig"
)

// World is every collaborator a Zeus binary's components need,
// constructed once and passed down explicitly. None of its fields are
// package-level state anywhere else in this module.
type World struct {
	Config   *zeusconfig.Config
	Clock    clock.Clock
	Logger   *slog.Logger
	Registry registry.AgentRegistry
	Caps     *capability.Registry
	Notifier notify.Notifier

	// Sealer is nil unless cfg.Seal.Enabled — see internal/sealedstore.
	Sealer *sealedstore.Sealer
}

// New assembles a World from cfg using a real wall clock. If
// cfg.RosterFile is set, the agent registry is loaded from it;
// otherwise an empty *registry.Registry is used, ready for a caller to
// populate via Put. A custom discovery integration bypasses New
// entirely and builds its own World with a different Registry.
func New(cfg *zeusconfig.Config, logger *slog.Logger) (*World, error) {
	if err := cfg.EnsureStateDirs(); err != nil {
		return nil, fmt.Errorf("zeusworld: %w", err)
	}

	clk := clock.Real()

	var reg registry.AgentRegistry
	if cfg.RosterFile != "" {
		loaded, err := registry.LoadRosterFile(cfg.RosterFile)
		if err != nil {
			return nil, fmt.Errorf("zeusworld: loading roster: %w", err)
		}
		reg = loaded
	} else {
		reg = registry.NewRegistry()
	}

	caps := capability.NewRegistry(filepath.Join(cfg.AgentBusDir(), "caps"), int64(cfg.Capability.MaxHeartbeatAge.Seconds()), clk)
	notifier := notify.NewSlogNotifier(logger, clk, cfg.Queue.NotifyThrottle)

	sealer, err := sealedstore.New(cfg.Seal)
	if err != nil {
		return nil, fmt.Errorf("zeusworld: %w", err)
	}

	return &World{
		Config:   cfg,
		Clock:    clk,
		Logger:   logger,
		Registry: reg,
		Caps:     caps,
		Notifier: notifier,
		Sealer:   sealer,
	}, nil
}

// WithClock returns a copy of w using clk in place of its clock, and
// rebuilds Caps/Notifier (both clock-dependent) against it. Intended
// for tests that need a World built from production wiring but driven
// by clock.Fake.
func (w *World) WithClock(clk clock.Clock) *World {
	cp := *w
	cp.Clock = clk
	cp.Caps = capability.NewRegistry(filepath.Join(w.Config.AgentBusDir(), "caps"), int64(w.Config.Capability.MaxHeartbeatAge.Seconds()), clk)
	cp.Notifier = notify.NewSlogNotifier(w.Logger, clk, w.Config.Queue.NotifyThrottle)
	return &cp
}
