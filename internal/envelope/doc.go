// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package envelope defines the durable send request (spec §3) that
// flows through zeus-message-queue/{new,inflight}: its on-disk shape,
// its deliver-as hint, and its target expression grammar. Minting an
// id and persisting the envelope is internal/queue's job; this package
// only owns the data and the pure parsing of a target string into a
// structured Target.
package envelope
