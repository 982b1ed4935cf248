// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package capability implements the bus's liveness gate: each agent
// extension periodically publishes a heartbeat recording that it is
// alive and able to accept bus deliveries, and the dispatcher queries
// that heartbeat's freshness before fanning an envelope out to the
// agent's inbox.
//
// There is no tombstone on exit and no ping/pong handshake — staleness
// is detected purely by age, the same way Bureau's watchdog package
// treats an old state file as irrelevant rather than as an error.
package capability
