// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inbox

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/zeus-fleet/zeus/internal/atomicstore"
	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/envelope"
	"github.com/zeus-fleet/zeus/internal/ledger"
	"github.com/zeus-fleet/zeus/internal/sealedstore"
)

// pumpState is the {Idle, Running, RunningWithPending} state machine
// spec §9 calls for: at most one pump runs at a time, and a trigger
// arriving mid-pump coalesces into exactly one re-run afterward rather
// than queueing one re-run per trigger.
type pumpState int

const (
	stateIdle pumpState = iota
	stateRunning
	stateRunningWithPending
)

// Pump is the extension-side inbox drain for one agent: claims items
// from new/ into processing/, submits them to Runtime, and ledgers +
// receipts on success (spec §4.C).
type Pump struct {
	inboxDir   string // .../inbox/<agent-id>
	receiptDir string // .../receipts/<agent-id>
	session    Session
	runtime    Runtime
	ledger     *ledger.Ledger
	clk        clock.Clock
	sealer     *sealedstore.Sealer

	mu    sync.Mutex
	state pumpState
}

// New returns a Pump for one agent's inbox and receipt directories.
func New(inboxDir, receiptDir string, session Session, runtime Runtime, led *ledger.Ledger, clk clock.Clock) *Pump {
	return &Pump{
		inboxDir:   inboxDir,
		receiptDir: receiptDir,
		session:    session,
		runtime:    runtime,
		ledger:     led,
		clk:        clk,
	}
}

// SetSealer installs s as the Pump's message unsealer; items claimed
// afterward have their Message decrypted before being submitted to
// Runtime. A nil s (the default) submits item.Message unchanged.
func (p *Pump) SetSealer(s *sealedstore.Sealer) {
	p.sealer = s
}

func (p *Pump) newDir() string        { return filepath.Join(p.inboxDir, "new") }
func (p *Pump) processingDir() string { return filepath.Join(p.inboxDir, "processing") }

// Trigger schedules a pump run. If a pump is already running, the
// request is coalesced: the running pump will re-run exactly once more
// after it finishes, picking up anything Trigger's caller wanted
// processed. Non-blocking — safe to call from an event handler.
func (p *Pump) Trigger(ctx context.Context) {
	p.mu.Lock()
	switch p.state {
	case stateIdle:
		p.state = stateRunning
		p.mu.Unlock()
		go p.runLoop(ctx)
		return
	case stateRunning:
		p.state = stateRunningWithPending
	case stateRunningWithPending:
		// already coalesced
	}
	p.mu.Unlock()
}

func (p *Pump) runLoop(ctx context.Context) {
	for {
		p.runOnce(ctx)

		p.mu.Lock()
		if p.state == stateRunningWithPending {
			p.state = stateRunning
			p.mu.Unlock()
			continue
		}
		p.state = stateIdle
		p.mu.Unlock()
		return
	}
}

// runOnce performs one pump pass: recover stuck claims, then drain new
// arrivals (spec §4.C a/b).
func (p *Pump) runOnce(ctx context.Context) {
	if err := atomicstore.EnsureDir(p.newDir()); err != nil {
		return
	}
	if err := atomicstore.EnsureDir(p.processingDir()); err != nil {
		return
	}

	stuck, err := atomicstore.ListSorted(p.processingDir(), ".json")
	if err == nil {
		for _, name := range stuck {
			p.processFile(ctx, filepath.Join(p.processingDir(), name), name)
		}
	}

	fresh, err := atomicstore.ListSorted(p.newDir(), ".json")
	if err != nil {
		return
	}
	for _, name := range fresh {
		dst := filepath.Join(p.processingDir(), name)
		ok, err := atomicstore.ClaimMove(filepath.Join(p.newDir(), name), dst)
		if err != nil || !ok {
			continue
		}
		p.processFile(ctx, dst, name)
	}
}

// processFile runs the seven-step per-file protocol from spec §4.C on
// the item claimed at path (originally named filename, which new/
// retries reuse).
func (p *Pump) processFile(ctx context.Context, path, filename string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var item Item
	if err := json.Unmarshal(data, &item); err != nil || !item.Valid() {
		// Step 1: poison — nothing valid to retry.
		atomicstore.Unlink(path)
		return
	}
	if !envelope.VerifyFingerprint(item.Message, item.ContentHash) {
		// Corrupted on disk: retrying won't fix bytes that don't match
		// the hash recorded at enqueue time.
		atomicstore.Unlink(path)
		return
	}

	contained, err := p.ledger.Contains(item.ID)
	if err != nil {
		// Transient ledger I/O: leave the file in processing/ for the
		// next pump to retry (ErrIO is always retryable per §7).
		return
	}
	if contained {
		// Step 3: duplicate path — idempotent re-emit, then delete.
		p.ensureReceipt(item.ID)
		atomicstore.Unlink(path)
		return
	}

	message, err := p.sealer.Unseal(item.Message)
	if err != nil {
		// Undecryptable payload: retrying won't change the ciphertext.
		atomicstore.Unlink(path)
		return
	}

	if err := p.runtime.Submit(ctx, message, string(item.DeliverAs)); err != nil {
		// Step 4: submit failed — move back to new/ under the original
		// name for retry; do not touch the ledger or write a receipt.
		atomicstore.ClaimMove(path, filepath.Join(p.newDir(), filename))
		return
	}

	// Step 5: ledger write precedes receipt write precedes delete —
	// if the process crashes here, the next pump observes id in the
	// ledger and re-emits the receipt (step 3's duplicate path),
	// converging without a second submit.
	if err := p.ledger.Accept(item.ID); err != nil {
		return
	}
	p.ensureReceipt(item.ID)
	atomicstore.Unlink(path)
}

func (p *Pump) ensureReceipt(id string) {
	receiptPath := filepath.Join(p.receiptDir, id+".json")
	if _, err := os.Stat(receiptPath); err == nil {
		return
	}
	atomicstore.EnsureDir(p.receiptDir)
	atomicstore.WriteJSONAtomic(receiptPath, Receipt{
		ID:          id,
		Status:      StatusAccepted,
		AcceptedAt:  clock.EpochSeconds(p.clk.Now()),
		AgentID:     p.session.AgentID,
		SessionID:   p.session.SessionID,
		SessionPath: p.session.SessionPath,
	})
}
