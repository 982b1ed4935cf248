// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/zeusid"
)

// DeliverAs is a UI hint on how the recipient runtime should present
// the message: steer interrupts the current turn, followUp queues
// behind it. zeus-msg send sets it with --deliver-as (default
// followUp); the CLI has no separate queue verb.
type DeliverAs string

const (
	Steer    DeliverAs = "steer"
	FollowUp DeliverAs = "followUp"
)

// RecipientRef is one entry in an envelope's cached resolution.
type RecipientRef struct {
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

// Envelope is one durable send request, serialized to
// zeus-message-queue/{new,inflight}/<id>.json.
type Envelope struct {
	ID            string    `json:"id"`
	SourceAgentID string    `json:"source_agent_id"`
	SourceName    string    `json:"source_name"`
	SourceRole    string    `json:"source_role"`
	Target        string    `json:"target"`
	Message       string    `json:"message"`
	DeliverAs     DeliverAs `json:"deliver_as"`

	CreatedAt     float64 `json:"created_at"`
	UpdatedAt     float64 `json:"updated_at"`
	Attempts      int     `json:"attempts"`
	NextAttemptAt float64 `json:"next_attempt_at"`

	// RecipientsResolved caches the result of the first successful
	// resolution so retries are stable; nil means "not yet resolved."
	RecipientsResolved []RecipientRef `json:"recipients_resolved,omitempty"`

	// ContentHash fingerprints Message as written to disk (after
	// sealing, if sealing is enabled), so a reader of new/, inflight/,
	// or an inbox item can detect filesystem-level corruption before
	// handing a payload to an agent runtime. Empty on envelopes
	// written before this field existed — callers must treat that as
	// "nothing to verify," not as a mismatch.
	ContentHash string `json:"content_hash,omitempty"`
}

// messageDomainKey domain-separates envelope message fingerprints from
// any other BLAKE3 usage in this module, the same keyed-hashing
// convention the artifact store this is grounded on uses to keep
// digests from different contexts from colliding.
var messageDomainKey = [32]byte{
	'z', 'e', 'u', 's', '.', 'e', 'n', 'v', 'e', 'l', 'o', 'p', 'e', '.',
	'm', 'e', 's', 's', 'a', 'g', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Fingerprint returns a hex-encoded BLAKE3 digest of message, keyed for
// domain separation. Used to populate ContentHash on write and to
// verify it on read.
func Fingerprint(message string) string {
	hasher, _ := blake3.NewKeyed(messageDomainKey[:])
	hasher.Write([]byte(message))
	return hex.EncodeToString(hasher.Sum(nil))
}

// VerifyFingerprint reports whether hash is empty (nothing to check,
// for envelopes written before ContentHash existed) or matches
// message's fingerprint.
func VerifyFingerprint(message, hash string) bool {
	if hash == "" {
		return true
	}
	return Fingerprint(message) == hash
}

// NewID mints a new envelope id using clk as the time source. ULID-
// style ids must sort in creation order (spec §4.A); the actual
// encoding lives in internal/zeusid since AgentID and EnvelopeID share
// that package's validated-type conventions.
func NewID(clk clock.Clock) string {
	return zeusid.NewEnvelopeID(clk).String()
}
