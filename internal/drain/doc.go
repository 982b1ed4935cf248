// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package drain implements the dispatcher's drain loop (spec §4.E):
// the IDLE/SWEEP state machine that reclaims stale inflight/
// envelopes, claims due new/ envelopes, and calls
// internal/queue.Queue.DispatchOnce on each. internal/queue implements
// what happens to one envelope; this package implements when.
package drain
