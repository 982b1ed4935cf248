// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package queue implements the dispatcher-side Envelope Queue (spec
// §4.D): Enqueue, ResolveRecipients, DispatchOnce, and the retry
// policy that schedules redelivery attempts. internal/drain owns the
// long-running loop that calls DispatchOnce under an exclusive claim;
// this package only implements what happens once that claim is held.
package queue
