// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry defines the AgentRegistry boundary (spec §6) the
// dispatcher uses to resolve a send target into concrete agent ids,
// plus an in-memory reference implementation backed by a static
// roster. Agent discovery and process launching are out of scope for
// the bus (spec §1); production deployments supply their own
// AgentRegistry over the same interface, sourced from whatever
// discovery subsystem assigns and tracks agent identity. This package
// exists so the module is runnable end-to-end without that external
// collaborator.
package registry
