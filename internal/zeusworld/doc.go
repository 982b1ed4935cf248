// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package zeusworld bundles the bus's collaborators — config, clock,
// capability registry, agent registry, and notifier — into a single
// value constructed once in a cmd/ binary's main() and threaded
// explicitly into every constructor that needs it. None of these
// collaborators is a package-level singleton; a test builds its own
// World instead of resetting global state (spec §9).
package zeusworld
