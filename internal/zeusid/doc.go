// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package zeusid provides strongly typed, immutable identifiers for the
// Zeus message bus: agent ids and envelope ids.
//
// Both types follow the ref package's convention from the wider fleet
// codebase — validated at construction, immutable afterward, and
// implementing encoding.TextMarshaler/TextUnmarshaler so they drop
// directly into the JSON structs in internal/envelope and
// internal/inbox without any ad hoc string scrubbing at the
// boundaries.
package zeusid
