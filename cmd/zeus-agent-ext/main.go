// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// zeus-agent-ext is the extension-side harness for one agent's inbox:
// it runs internal/inbox.Pump against ZEUS_STATE_DIR/zeus-agent-bus,
// publishes capability heartbeats, and watches its inbox for new
// arrivals (spec §4.C). Submitting a message to the actual agent
// runtime is delegated to the external program named by the
// ZEUS_SUBMIT_COMMAND environment variable (this binary parses no
// flags), which receives the message text on stdin and the deliver-as
// hint as its sole argument; a zero exit means the runtime accepted it. This
// keeps the one genuinely host-specific integration point (how a
// given agent runtime ingests a message) outside this binary, which
// is otherwise runtime-agnostic.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/zeus-fleet/zeus/internal/atomicstore"
	"github.com/zeus-fleet/zeus/internal/capability"
	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/inbox"
	"github.com/zeus-fleet/zeus/internal/ledger"
	"github.com/zeus-fleet/zeus/internal/process"
	"github.com/zeus-fleet/zeus/internal/sealedstore"
	"github.com/zeus-fleet/zeus/internal/watch"
	"github.com/zeus-fleet/zeus/internal/zeusconfig"
	"github.com/zeus-fleet/zeus/internal/zeuserr"
	"github.com/zeus-fleet/zeus/internal/zeusid"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	rawAgentID := os.Getenv("ZEUS_AGENT_ID")
	if rawAgentID == "" {
		// Blank ZEUS_AGENT_ID disables the extension entirely (spec §6).
		return nil
	}
	agentID, err := zeusid.ParseAgentID(rawAgentID)
	if err != nil {
		return fmt.Errorf("parsing ZEUS_AGENT_ID: %w", err)
	}
	role := os.Getenv("ZEUS_ROLE")
	if role == "" {
		role = "hippeus"
	}

	cfg, err := zeusconfig.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.EnsureStateDirs(); err != nil {
		return fmt.Errorf("ensuring state dirs: %w", err)
	}

	logger := process.NewLogger().With("agent_id", agentID.String())
	clk := clock.Real()

	sealer, err := sealedstore.New(cfg.Seal)
	if err != nil {
		return fmt.Errorf("building sealer: %w", err)
	}

	sessionID := os.Getenv("ZEUS_SESSION_ID")
	sessionPath := os.Getenv("ZEUS_SESSION_PATH")
	cwd, _ := os.Getwd()

	caps := capability.NewRegistry(filepath.Join(cfg.AgentBusDir(), "caps"), int64(cfg.Capability.MaxHeartbeatAge.Seconds()), clk)
	led := ledger.New(filepath.Join(cfg.AgentBusDir(), "processed"), agentID, clk, cfg.Ledger.MaxIDs, cfg.Ledger.MaxAge, cfg.Ledger.CompactAbove)

	runtime := &execRuntime{command: os.Getenv("ZEUS_SUBMIT_COMMAND")}
	if runtime.command == "" {
		runtime.logOnly = true
		logger.Warn("ZEUS_SUBMIT_COMMAND not set, submitted messages are logged but not delivered")
	}

	session := inbox.Session{AgentID: agentID.String(), SessionID: sessionID, SessionPath: sessionPath}
	inboxDir := filepath.Join(cfg.AgentBusDir(), "inbox", agentID.String())
	receiptDir := filepath.Join(cfg.AgentBusDir(), "receipts", agentID.String())
	pump := inbox.New(inboxDir, receiptDir, session, runtime, led, clk)
	pump.SetSealer(sealer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := atomicstore.EnsureDir(filepath.Join(inboxDir, "new")); err != nil {
		return fmt.Errorf("creating inbox new/: %w", err)
	}
	if err := atomicstore.EnsureDir(filepath.Join(inboxDir, "processing")); err != nil {
		return fmt.Errorf("creating inbox processing/: %w", err)
	}

	watcher, err := watch.NewInotify(filepath.Join(inboxDir, "new"), cfg.Drain.WakeDebounce)
	if err != nil {
		logger.Warn("falling back to poll-only watching for inbox/new", "error", err)
		watcher = watch.Noop{}
	}
	defer watcher.Close()

	publishHeartbeat := func() {
		if err := caps.PublishHeartbeat(agentID, capability.Heartbeat{
			Role:        role,
			SessionID:   sessionID,
			SessionPath: sessionPath,
			Cwd:         cwd,
			Supports:    capability.Supports{QueueBus: true, ReceiptV1: true},
			Extension:   capability.Extension{Name: "zeus-agent-ext", Version: "1"},
		}); err != nil {
			logger.Warn("publishing heartbeat failed", "error", err)
		}
	}

	publishHeartbeat()
	pump.Trigger(ctx)

	heartbeatTicker := time.NewTicker(cfg.Capability.HeartbeatInterval)
	defer heartbeatTicker.Stop()
	pollTicker := time.NewTicker(cfg.Drain.SweepInterval)
	defer pollTicker.Stop()

	logger.Info("extension running", "inbox_dir", inboxDir)

	for {
		select {
		case <-ctx.Done():
			logger.Info("extension shut down")
			return nil
		case <-heartbeatTicker.C:
			publishHeartbeat()
		case <-pollTicker.C:
			pump.Trigger(ctx)
		case <-watcher.Signal():
			pump.Trigger(ctx)
		}
	}
}

// execRuntime submits a message by running command with the message
// on stdin and the deliver-as hint as argv[1]. A non-zero exit or
// launch failure is returned wrapping zeuserr.ErrSubmitFailed — the
// pump treats any error as retryable.
type execRuntime struct {
	command string
	logOnly bool
}

func (r *execRuntime) Submit(ctx context.Context, message string, deliverAs string) error {
	if r.logOnly {
		fmt.Printf("zeus-agent-ext: (no submit command configured) %s: %s\n", deliverAs, message)
		return nil
	}
	cmd := exec.CommandContext(ctx, r.command, deliverAs)
	cmd.Stdin = bytes.NewBufferString(message)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: submit command: %w (output: %s)", zeuserr.ErrSubmitFailed, err, output)
	}
	return nil
}
