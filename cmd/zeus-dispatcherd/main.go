// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// zeus-dispatcherd owns the single drain loop for one Zeus message bus:
// it claims due envelopes out of zeus-message-queue/new/, resolves their
// recipients, and writes inbox items, retrying on its own schedule until
// every recipient has a receipt. One instance runs per STATE_DIR.
package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/zeus-fleet/zeus/internal/atomicstore"
	"github.com/zeus-fleet/zeus/internal/drain"
	"github.com/zeus-fleet/zeus/internal/process"
	"github.com/zeus-fleet/zeus/internal/queue"
	"github.com/zeus-fleet/zeus/internal/watch"
	"github.com/zeus-fleet/zeus/internal/zeusconfig"
	"github.com/zeus-fleet/zeus/internal/zeusworld"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	cfg, err := zeusconfig.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := process.NewLogger()

	world, err := zeusworld.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("building world: %w", err)
	}

	q := queue.New(cfg.MessageQueueDir(), cfg.AgentBusDir(), world.Registry, world.Caps, world.Notifier, world.Clock, queue.ConfigFromQueueConfig(cfg.Queue))
	q.SetSealer(world.Sealer)

	receiptsDir := filepath.Join(cfg.AgentBusDir(), "receipts")
	if err := atomicstore.EnsureDir(q.NewDir()); err != nil {
		return fmt.Errorf("creating %s: %w", q.NewDir(), err)
	}
	if err := atomicstore.EnsureDir(receiptsDir); err != nil {
		return fmt.Errorf("creating %s: %w", receiptsDir, err)
	}

	newWatcher, err := watch.NewInotify(q.NewDir(), cfg.Drain.WakeDebounce)
	if err != nil {
		logger.Warn("falling back to sweep-only watching for new/", "error", err)
		newWatcher = watch.Noop{}
	}
	receiptsWatcher, err := watch.NewInotify(receiptsDir, cfg.Drain.WakeDebounce)
	if err != nil {
		logger.Warn("falling back to sweep-only watching for receipts/", "error", err)
		receiptsWatcher = watch.Noop{}
	}

	loop := drain.New(q, world.Registry, logger, world.Clock, drain.Config{
		SweepInterval: cfg.Drain.SweepInterval,
		InflightLease: cfg.Drain.InflightLease,
		WakeDebounce:  cfg.Drain.WakeDebounce,
	}, newWatcher, receiptsWatcher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("dispatcher running",
		"state_dir", cfg.StateDir,
		"sweep_interval", cfg.Drain.SweepInterval,
		"inflight_lease", cfg.Drain.InflightLease,
	)

	loop.Run(ctx)

	logger.Info("dispatcher shut down")
	return nil
}
