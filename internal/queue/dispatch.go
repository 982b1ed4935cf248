// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queue

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/zeus-fleet/zeus/internal/atomicstore"
	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/envelope"
	"github.com/zeus-fleet/zeus/internal/inbox"
	"github.com/zeus-fleet/zeus/internal/notify"
	"github.com/zeus-fleet/zeus/internal/zeusid"
	"github.com/zeus-fleet/zeus/internal/zeuserr"
)

// DecisionKind is the outcome of one DispatchOnce pass over an
// envelope (spec §4.D).
type DecisionKind int

const (
	// DecisionComplete means every resolved recipient has a receipt
	// or a dedup marker; the envelope was removed from inflight/.
	DecisionComplete DecisionKind = iota
	// DecisionRetry means at least one recipient is still pending;
	// the envelope was rewritten and moved back to new/.
	DecisionRetry
	// DecisionPoison means the envelope file could not be parsed; it
	// was deleted.
	DecisionPoison
)

// Decision is DispatchOnce's result.
type Decision struct {
	Kind  DecisionKind
	Delay time.Duration
}

// DispatchOnce processes the envelope currently claimed at
// inflight/<id>.json. sourcePhalanxID is the sender's phalanx, needed
// to resolve a "phalanx" target; pass "" when the sender belongs to
// none.
//
// Called by the drain loop under an exclusive claim — DispatchOnce
// itself never claims new/<id> into inflight/, that is the caller's
// job via atomicstore.ClaimMove.
func (q *Queue) DispatchOnce(id, sourcePhalanxID string) (Decision, error) {
	path := filepath.Join(q.InflightDir(), id+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return Decision{}, err
	}

	var env envelope.Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.ID == "" || env.Target == "" || env.Message == "" {
		q.notifier.Notify(notify.ForceVisible, id, "poison", "envelope file is unparseable or missing required fields")
		atomicstore.Unlink(path)
		return Decision{Kind: DecisionPoison}, nil
	}

	recipients := env.RecipientsResolved
	if recipients == nil || q.pastReresolveWindow(&env) {
		resolved, resolveErr := q.ResolveRecipients(&env, sourcePhalanxID)
		if resolveErr != nil {
			return q.retry(&env, path, resolveReason(resolveErr), resolveErr)
		}
		recipients = resolved
		env.RecipientsResolved = recipients
	}

	allComplete := true
	var blockingReason string
	var blockingErr error

	for _, recipient := range recipients {
		agentID, err := zeusid.ParseAgentID(recipient.AgentID)
		if err != nil {
			allComplete = false
			if blockingReason == "" {
				blockingReason, blockingErr = "unknown_recipient", zeuserr.ErrUnknownRecipient
			}
			continue
		}

		done, reason, err := q.dispatchToRecipient(agentID, env)
		if done {
			continue
		}
		allComplete = false
		if blockingReason == "" {
			blockingReason, blockingErr = reason, err
		}
	}

	if allComplete {
		atomicstore.Unlink(path)
		return Decision{Kind: DecisionComplete}, nil
	}

	return q.retry(&env, path, blockingReason, blockingErr)
}

// dispatchToRecipient runs the four-step per-recipient check from
// spec §4.D: dedup marker, existing receipt, capability freshness,
// then an idempotent inbox-item write. Returns done=true once the
// recipient needs no further action this pass.
func (q *Queue) dispatchToRecipient(agentID zeusid.AgentID, env envelope.Envelope) (done bool, reason string, err error) {
	dedupPath := filepath.Join(q.queueDir, "receipts-seen", agentID.String(), env.ID)
	if _, statErr := os.Stat(dedupPath); statErr == nil {
		return true, "", nil
	}

	receiptPath := filepath.Join(q.busDir, "receipts", agentID.String(), env.ID+".json")
	if _, statErr := os.Stat(receiptPath); statErr == nil {
		atomicstore.EnsureDir(filepath.Dir(dedupPath))
		atomicstore.WriteFileAtomic(dedupPath, nil)
		return true, "", nil
	}

	if !q.caps.IsFresh(agentID) {
		return false, "stale_capability", zeuserr.ErrStaleCapability
	}

	inboxNewDir := filepath.Join(q.busDir, "inbox", agentID.String(), "new")
	itemPath := filepath.Join(inboxNewDir, env.ID+".json")
	if _, statErr := os.Stat(itemPath); statErr == nil {
		return false, "awaiting_receipt", nil
	}

	if err := atomicstore.EnsureDir(inboxNewDir); err != nil {
		return false, "io", zeuserr.ErrIO
	}
	item := inbox.Item{
		ID:            env.ID,
		Message:       env.Message,
		DeliverAs:     env.DeliverAs,
		SourceName:    env.SourceName,
		SourceAgentID: env.SourceAgentID,
		SourceRole:    env.SourceRole,
		CreatedAt:     env.CreatedAt,
		ContentHash:   env.ContentHash,
	}
	if err := atomicstore.WriteJSONAtomic(itemPath, item); err != nil {
		return false, "io", zeuserr.ErrIO
	}
	return false, "awaiting_receipt", nil
}

// retry applies the RETRY branch of DispatchOnce's decision: increment
// attempts, reschedule, rewrite the envelope in place, then
// ClaimMove it back to new/. Emits an operator notification once
// attempts crosses attemptsNotify, force-visible immediately for
// structurally-impossible reasons.
func (q *Queue) retry(env *envelope.Envelope, inflightPath, reason string, reasonErr error) (Decision, error) {
	env.Attempts++
	delay := q.retryPolicy.Delay(env.Attempts - 1)
	now := clock.EpochSeconds(q.clk.Now())
	env.UpdatedAt = now
	env.NextAttemptAt = now + delay.Seconds()

	if reason != "" && reasonErr != nil {
		structuralFailure := structural(reasonErr)
		switch {
		case structuralFailure && env.Attempts == 1:
			// Structural impossibility: force-visible on first occurrence.
			q.notifier.Notify(notify.ForceVisible, env.ID, reason, reasonErr.Error())
		case structuralFailure || env.Attempts >= q.attemptsNotify:
			// Past ATTEMPTS_NOTIFY, or a later pass still blocked on the
			// same structural reason: throttled per spec §7.
			q.notifier.Notify(notify.Throttled, env.ID, reason, reasonErr.Error())
		}
	}

	if err := atomicstore.WriteJSONAtomic(inflightPath, env); err != nil {
		return Decision{}, err
	}
	if err := atomicstore.EnsureDir(q.NewDir()); err != nil {
		return Decision{}, err
	}
	newPath := filepath.Join(q.NewDir(), env.ID+".json")
	if _, err := atomicstore.ClaimMove(inflightPath, newPath); err != nil && !errors.Is(err, atomicstore.ErrClaimLost) {
		return Decision{}, err
	}
	return Decision{Kind: DecisionRetry, Delay: delay}, nil
}

func structural(err error) bool {
	return errors.Is(err, zeuserr.ErrUnknownRecipient) ||
		errors.Is(err, zeuserr.ErrAmbiguousRecipient) ||
		errors.Is(err, zeuserr.ErrMissingParent) ||
		errors.Is(err, zeuserr.ErrMissingPhalanx)
}

// pastReresolveWindow reports whether env has been queued long enough
// that a cached RecipientsResolved should be discarded and resolution
// re-run, so an operator-visible condition like phalanx membership
// picked up on a later pass (spec §4.D). A non-positive reresolveAfter
// disables this and trusts the cache forever.
func (q *Queue) pastReresolveWindow(env *envelope.Envelope) bool {
	if env.RecipientsResolved == nil || q.reresolveAfter <= 0 {
		return false
	}
	age := clock.EpochSeconds(q.clk.Now()) - env.CreatedAt
	return age >= q.reresolveAfter.Seconds()
}

func resolveReason(err error) string {
	switch {
	case errors.Is(err, zeuserr.ErrAmbiguousRecipient):
		return "ambiguous_recipient"
	case errors.Is(err, zeuserr.ErrMissingParent):
		return "missing_parent"
	case errors.Is(err, zeuserr.ErrMissingPhalanx):
		return "missing_phalanx"
	default:
		return "unknown_recipient"
	}
}
