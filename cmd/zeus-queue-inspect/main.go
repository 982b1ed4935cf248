// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// zeus-queue-inspect is a read-only terminal dashboard over one Zeus
// message bus's STATE_DIR: pending/inflight envelope counts, each
// known agent's capability freshness, and a markdown preview of the
// oldest queued envelope. It never writes anything to STATE_DIR — all
// mutation happens through zeus-dispatcherd and the extension
// processes.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/zeus-fleet/zeus/internal/process"
	"github.com/zeus-fleet/zeus/internal/zeusconfig"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("zeus-queue-inspect", pflag.ContinueOnError)
	interval := flagSet.Duration("interval", defaultPollInterval, "how often to re-poll STATE_DIR")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := zeusconfig.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	model := newModel(cfg, *interval)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
