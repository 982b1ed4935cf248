// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package watch provides the drain loop's and the inbox pump's wake
// sources: a debounced signal fired on filesystem activity in a
// directory, backed by Linux inotify where available.
//
// The watcher is pure latency optimization (spec §9: "the design MUST
// work with only the sweep timer"). Callers always pair a Watcher with
// their own periodic sweep/pump timer; a Watcher that never fires is a
// legal, if slow, implementation. Noop satisfies that case directly,
// for tests and non-Linux builds.
package watch
