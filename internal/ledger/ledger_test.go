// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"testing"
	"time"

	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/zeusid"
)

func TestAccept_ContainsIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	clk := clock.Real()
	l := New(dir, zeusid.MustAgentID("bob"), clk, 10000, 30*24*time.Hour, 4096)

	ok, err := l.Contains("E1")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Fatal("expected E1 to be absent before Accept")
	}

	if err := l.Accept("E1"); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if err := l.Accept("E1"); err != nil {
		t.Fatalf("second Accept: %v", err)
	}

	ok, err = l.Contains("E1")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Fatal("expected E1 to be present after Accept")
	}
}

func TestAccept_PersistsAcrossLedgerInstances(t *testing.T) {
	dir := t.TempDir()
	clk := clock.Real()
	agent := zeusid.MustAgentID("carol")

	first := New(dir, agent, clk, 10000, 30*24*time.Hour, 4096)
	if err := first.Accept("E1"); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	second := New(dir, agent, clk, 10000, 30*24*time.Hour, 4096)
	ok, err := second.Contains("E1")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Fatal("expected a fresh Ledger instance to see the persisted id")
	}
}

func TestAccept_SwitchesToCompactedFormAboveThreshold(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	dir := t.TempDir()
	agent := zeusid.MustAgentID("dave")

	l := New(dir, agent, fake, 10000, 30*24*time.Hour, 3)
	for i := 0; i < 10; i++ {
		id := zeusid.NewEnvelopeID(fake).String()
		if err := l.Accept(id); err != nil {
			t.Fatalf("Accept %d: %v", i, err)
		}
		fake.Advance(time.Millisecond)
	}

	reloaded := New(dir, agent, fake, 10000, 30*24*time.Hour, 3)
	for id := range l.ids {
		ok, err := reloaded.Contains(id)
		if err != nil {
			t.Fatalf("Contains: %v", err)
		}
		if !ok {
			t.Errorf("expected reloaded ledger to contain %q", id)
		}
	}
}

func TestTrim_DropsOldestAboveMaxIDs(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	dir := t.TempDir()
	l := New(dir, zeusid.MustAgentID("erin"), fake, 3, 0, 4096)

	var ids []string
	for i := 0; i < 5; i++ {
		id := zeusid.NewEnvelopeID(fake).String()
		ids = append(ids, id)
		if err := l.Accept(id); err != nil {
			t.Fatalf("Accept %d: %v", i, err)
		}
		fake.Advance(time.Millisecond)
	}

	ok, err := l.Contains(ids[0])
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Error("expected the oldest id to have been trimmed")
	}

	ok, err = l.Contains(ids[len(ids)-1])
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Error("expected the newest id to survive trimming")
	}
}

func TestTrim_AgesOutEntriesOlderThanMaxAge(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	dir := t.TempDir()
	l := New(dir, zeusid.MustAgentID("frank"), fake, 10000, time.Hour, 4096)

	oldID := zeusid.NewEnvelopeID(fake).String()
	if err := l.Accept(oldID); err != nil {
		t.Fatalf("Accept old: %v", err)
	}

	fake.Advance(2 * time.Hour)
	newID := zeusid.NewEnvelopeID(fake).String()
	if err := l.Accept(newID); err != nil {
		t.Fatalf("Accept new: %v", err)
	}

	ok, err := l.Contains(oldID)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Error("expected the old id to have aged out")
	}
	ok, err = l.Contains(newID)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Error("expected the new id to remain")
	}
}
