// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewLogger returns a structured logger for a Zeus binary's stderr:
// text-formatted when stderr is an attached terminal (a human running
// the binary interactively), JSON when it's piped or redirected (a
// supervisor, log collector, or test harness expecting one record per
// line).
func NewLogger() *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
