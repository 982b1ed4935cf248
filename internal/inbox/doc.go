// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package inbox implements the extension-side Agent Inbox & Receipt
// Protocol (spec §4.C): per-agent new/ -> processing/ claim, submission
// to the local agent runtime via a pluggable Runtime interface,
// processed-ledger bookkeeping, and accepted-receipt emission.
//
// The pump is cooperative single-threaded within a process: at most
// one pump runs at a time; a Trigger call arriving while one is already
// running is coalesced into a single re-run after the current pump
// completes, modeled as the {Idle, Running, RunningWithPending} state
// machine spec §9 calls for rather than chained callbacks.
package inbox
