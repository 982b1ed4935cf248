// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify implements the dispatcher's Notifier boundary (spec
// §6): a single Notify(level, envelopeID, reason, text) call the queue
// package uses to surface StaleCapability, UnknownRecipient, AmbiguousRecipient,
// and MissingParent/MissingPhalanx conditions to an operator.
//
// This module's non-goal is cross-host delivery, so there is no
// Matrix transport here posting room events — that belongs to the
// out-of-scope dashboard layer. Instead notifications go out as
// structured log/slog records, throttled per (envelope id, reason) to
// avoid flooding the operator with repeated health-check failures.
package notify
