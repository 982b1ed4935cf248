// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledger implements the per-agent processed-id set (spec §3,
// §4.C step 2-5): a durable, monotone record of every message id an
// agent's extension has already submitted to its runtime, checked
// before every submit to enforce at-most-once delivery (I4).
//
// Below CompactAbove entries, the ledger is a single small JSON file
// rewritten in full on every accept — the public contract spec.md §3
// describes. Above that threshold, rewriting the whole file on every
// accept gets expensive (§9), so the ledger instead appends
// zstd-compressed CBOR-encoded records to a log file and only
// rewrites the compacted snapshot periodically, once the log has grown
// past a multiple of the snapshot's size. Readers never see the
// difference: Contains and the lazy Load both present the same
// in-memory set regardless of which representation is on disk.
package ledger
