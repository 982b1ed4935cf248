// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/zeus-fleet/zeus/internal/clock"
)

// Level distinguishes a throttled, routine notification from a
// force-visible one. Force-visible reasons (structural impossibility —
// an unresolvable recipient, a missing deterministic agent id) are
// logged at Error on first occurrence regardless of throttle state;
// everything else logs at Warn.
type Level int

const (
	// Throttled notifications obey the per-(envelope, reason) NOTIFY_THROTTLE
	// window (spec §7, default 60s).
	Throttled Level = iota
	// ForceVisible notifications always log immediately and are never
	// throttled.
	ForceVisible
)

// Notifier is the dispatcher's outbound boundary to an operator (spec
// §6). Notify is called with a stable Reason so throttling can key on
// it.
type Notifier interface {
	Notify(level Level, envelopeID, reason, text string)
}

// SlogNotifier logs notifications via log/slog, throttling repeats of
// the same (envelope id, reason) pair to once per window.
type SlogNotifier struct {
	logger *slog.Logger
	clk    clock.Clock
	window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// NewSlogNotifier returns a Notifier that logs through logger,
// throttling repeat notifications for the same envelope/reason pair to
// once per window (pass internal/zeusconfig's QueueConfig.NotifyThrottle,
// default 60s).
func NewSlogNotifier(logger *slog.Logger, clk clock.Clock, window time.Duration) *SlogNotifier {
	return &SlogNotifier{
		logger: logger,
		clk:    clk,
		window: window,
		last:   make(map[string]time.Time),
	}
}

func (n *SlogNotifier) Notify(level Level, envelopeID, reason, text string) {
	key := envelopeID + "\x00" + reason

	if level == Throttled {
		n.mu.Lock()
		now := n.clk.Now()
		if last, ok := n.last[key]; ok && now.Sub(last) < n.window {
			n.mu.Unlock()
			return
		}
		n.last[key] = now
		n.mu.Unlock()
	}

	attrs := []any{"envelope_id", envelopeID, "reason", reason}
	if level == ForceVisible {
		n.logger.Error(text, attrs...)
		return
	}
	n.logger.Warn(text, attrs...)
}
