// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inbox

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/zeus-fleet/zeus/internal/atomicstore"
	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/envelope"
	"github.com/zeus-fleet/zeus/internal/ledger"
	"github.com/zeus-fleet/zeus/internal/zeusid"
)

type fakeRuntime struct {
	mu        sync.Mutex
	submitted []string
	fail      map[string]bool
}

func (r *fakeRuntime) Submit(ctx context.Context, message, deliverAs string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[message] {
		delete(r.fail, message)
		return context.DeadlineExceeded
	}
	r.submitted = append(r.submitted, message)
	return nil
}

func writeInboxItem(t *testing.T, dir, id string) {
	t.Helper()
	if err := atomicstore.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	item := Item{ID: id, Message: "hello " + id, SourceAgentID: "carol"}
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func waitForPumpIdle(t *testing.T, p *Pump) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		idle := p.state == stateIdle
		p.mu.Unlock()
		if idle {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("pump did not return to idle in time")
}

func TestPump_HappyPath(t *testing.T) {
	root := t.TempDir()
	inboxDir := filepath.Join(root, "inbox", "bob")
	receiptDir := filepath.Join(root, "receipts", "bob")
	writeInboxItem(t, filepath.Join(inboxDir, "new"), "E1")

	rt := &fakeRuntime{}
	led := ledger.New(filepath.Join(root, "processed"), zeusid.MustAgentID("bob"), clock.Real(), 10000, 30*24*time.Hour, 4096)
	p := New(inboxDir, receiptDir, Session{AgentID: "bob"}, rt, led, clock.Real())

	p.Trigger(context.Background())
	waitForPumpIdle(t, p)

	if _, err := os.Stat(filepath.Join(inboxDir, "new", "E1.json")); !os.IsNotExist(err) {
		t.Error("expected new/E1.json to be gone")
	}
	if _, err := os.Stat(filepath.Join(inboxDir, "processing", "E1.json")); !os.IsNotExist(err) {
		t.Error("expected processing/E1.json to be gone")
	}
	if _, err := os.Stat(filepath.Join(receiptDir, "E1.json")); err != nil {
		t.Errorf("expected a receipt to exist: %v", err)
	}

	ok, err := led.Contains("E1")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Error("expected E1 to be in the ledger")
	}
	if len(rt.submitted) != 1 {
		t.Errorf("expected exactly one submit, got %d", len(rt.submitted))
	}
}

func TestPump_SubmitFailureMovesBackToNew(t *testing.T) {
	root := t.TempDir()
	inboxDir := filepath.Join(root, "inbox", "bob")
	receiptDir := filepath.Join(root, "receipts", "bob")
	writeInboxItem(t, filepath.Join(inboxDir, "new"), "E2")

	rt := &fakeRuntime{fail: map[string]bool{"hello E2": true}}
	led := ledger.New(filepath.Join(root, "processed"), zeusid.MustAgentID("bob"), clock.Real(), 10000, 30*24*time.Hour, 4096)
	p := New(inboxDir, receiptDir, Session{AgentID: "bob"}, rt, led, clock.Real())

	p.Trigger(context.Background())
	waitForPumpIdle(t, p)

	if _, err := os.Stat(filepath.Join(inboxDir, "new", "E2.json")); err != nil {
		t.Errorf("expected E2 back in new/ after submit failure: %v", err)
	}
	if _, err := os.Stat(filepath.Join(receiptDir, "E2.json")); !os.IsNotExist(err) {
		t.Error("expected no receipt after a failed submit")
	}
	ok, err := led.Contains("E2")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Error("expected E2 not to be ledgered after a failed submit")
	}
}

func TestPump_DuplicateInLedgerReemitsReceiptWithoutResubmitting(t *testing.T) {
	root := t.TempDir()
	inboxDir := filepath.Join(root, "inbox", "carol")
	receiptDir := filepath.Join(root, "receipts", "carol")
	processingDir := filepath.Join(inboxDir, "processing")
	writeInboxItem(t, processingDir, "E5")

	led := ledger.New(filepath.Join(root, "processed"), zeusid.MustAgentID("carol"), clock.Real(), 10000, 30*24*time.Hour, 4096)
	if err := led.Accept("E5"); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	rt := &fakeRuntime{}
	p := New(inboxDir, receiptDir, Session{AgentID: "carol"}, rt, led, clock.Real())

	p.Trigger(context.Background())
	waitForPumpIdle(t, p)

	if len(rt.submitted) != 0 {
		t.Errorf("expected no resubmission for an already-ledgered id, got %d", len(rt.submitted))
	}
	if _, err := os.Stat(filepath.Join(receiptDir, "E5.json")); err != nil {
		t.Errorf("expected a re-emitted receipt: %v", err)
	}
	if _, err := os.Stat(filepath.Join(processingDir, "E5.json")); !os.IsNotExist(err) {
		t.Error("expected processing/E5.json to be cleaned up")
	}
}

func TestPump_PoisonItemIsDeleted(t *testing.T) {
	root := t.TempDir()
	inboxDir := filepath.Join(root, "inbox", "dave")
	receiptDir := filepath.Join(root, "receipts", "dave")
	newDir := filepath.Join(inboxDir, "new")
	if err := atomicstore.EnsureDir(newDir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(newDir, "E6.json"), []byte(`{"id":"E6"}`), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	led := ledger.New(filepath.Join(root, "processed"), zeusid.MustAgentID("dave"), clock.Real(), 10000, 30*24*time.Hour, 4096)
	p := New(inboxDir, receiptDir, Session{AgentID: "dave"}, &fakeRuntime{}, led, clock.Real())

	p.Trigger(context.Background())
	waitForPumpIdle(t, p)

	if _, err := os.Stat(filepath.Join(newDir, "E6.json")); !os.IsNotExist(err) {
		t.Error("expected poison item to be deleted")
	}
	if _, err := os.Stat(filepath.Join(inboxDir, "processing", "E6.json")); !os.IsNotExist(err) {
		t.Error("expected no leftover processing file for a poison item")
	}
}

func TestPump_ContentHashMismatchIsDeletedWithoutSubmit(t *testing.T) {
	root := t.TempDir()
	inboxDir := filepath.Join(root, "inbox", "frank")
	receiptDir := filepath.Join(root, "receipts", "frank")
	newDir := filepath.Join(inboxDir, "new")
	if err := atomicstore.EnsureDir(newDir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}

	item := Item{ID: "E8", Message: "hello E8", SourceAgentID: "frank", ContentHash: envelope.Fingerprint("a different message")}
	if err := atomicstore.WriteJSONAtomic(filepath.Join(newDir, "E8.json"), item); err != nil {
		t.Fatalf("WriteJSONAtomic: %v", err)
	}

	rt := &fakeRuntime{}
	led := ledger.New(filepath.Join(root, "processed"), zeusid.MustAgentID("frank"), clock.Real(), 10000, 30*24*time.Hour, 4096)
	p := New(inboxDir, receiptDir, Session{AgentID: "frank"}, rt, led, clock.Real())

	p.Trigger(context.Background())
	waitForPumpIdle(t, p)

	if len(rt.submitted) != 0 {
		t.Errorf("expected no submit for a content-hash mismatch, got %d", len(rt.submitted))
	}
	if _, err := os.Stat(filepath.Join(newDir, "E8.json")); !os.IsNotExist(err) {
		t.Error("expected the corrupted item to be deleted")
	}
	ok, err := led.Contains("E8")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Error("expected E8 not to be ledgered after a content-hash mismatch")
	}
}

func TestPump_RecoversStuckProcessingFileOnRestart(t *testing.T) {
	root := t.TempDir()
	inboxDir := filepath.Join(root, "inbox", "erin")
	receiptDir := filepath.Join(root, "receipts", "erin")
	writeInboxItem(t, filepath.Join(inboxDir, "processing"), "E7")

	rt := &fakeRuntime{}
	led := ledger.New(filepath.Join(root, "processed"), zeusid.MustAgentID("erin"), clock.Real(), 10000, 30*24*time.Hour, 4096)
	p := New(inboxDir, receiptDir, Session{AgentID: "erin"}, rt, led, clock.Real())

	p.Trigger(context.Background())
	waitForPumpIdle(t, p)

	if len(rt.submitted) != 1 {
		t.Errorf("expected exactly one submit recovering a stuck claim, got %d", len(rt.submitted))
	}
	if _, err := os.Stat(filepath.Join(receiptDir, "E7.json")); err != nil {
		t.Errorf("expected a receipt after recovery: %v", err)
	}
}
