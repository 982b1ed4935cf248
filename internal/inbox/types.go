// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inbox

import "github.com/zeus-fleet/zeus/internal/envelope"

// Item is the per-recipient materialised copy of an envelope, written
// by the dispatcher to inbox/<agent-id>/{new,processing}/<id>.json
// (spec §3).
type Item struct {
	ID            string             `json:"id"`
	Message       string             `json:"message"`
	DeliverAs     envelope.DeliverAs `json:"deliver_as"`
	SourceName    string             `json:"source_name"`
	SourceAgentID string             `json:"source_agent_id"`
	SourceRole    string             `json:"source_role"`
	CreatedAt     float64            `json:"created_at"`
	ContentHash   string             `json:"content_hash,omitempty"`
}

// Valid reports whether item has everything a non-poison item needs:
// a non-empty id and a message that is non-empty after trimming (spec
// §4.C step 1).
func (item Item) Valid() bool {
	return item.ID != "" && trimmedNonEmpty(item.Message)
}

func trimmedNonEmpty(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return true
		}
	}
	return false
}

// Receipt is the extension's durable record that it handed id to the
// local agent runtime (zeus-agent-bus/receipts/<agent-id>/<id>.json).
type Receipt struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	AcceptedAt  float64 `json:"accepted_at"`
	AgentID     string  `json:"agent_id"`
	SessionID   string  `json:"session_id"`
	SessionPath string  `json:"session_path"`
}

// StatusAccepted is the only Receipt.Status value the protocol
// produces today; kept as a named constant so call sites never
// hand-type the literal.
const StatusAccepted = "accepted"
