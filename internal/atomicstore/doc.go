// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package atomicstore provides the filesystem primitives the bus builds
// on: atomic JSON writes, atomic directory-to-directory claims, and
// sorted directory listings. The other packages that touch the state
// directory (capability, ledger, inbox, queue, drain) make their
// writes, claims, listings and deletes through this package; some of
// them still read or stat files with os directly.
//
// Atomicity rests on two guarantees POSIX makes and Bureau's watchdog
// package already exercised: rename(2) within a filesystem is atomic,
// and fsync on a file followed by fsync on its parent directory makes
// the write and its visibility durable across a crash. Every write
// here follows write-temp, fsync, rename, fsync-parent. Every claim
// is a bare rename between two sibling directories — no file content
// changes hands, so there is nothing to fsync beyond the directory
// entries themselves.
package atomicstore
