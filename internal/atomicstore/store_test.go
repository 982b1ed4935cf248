// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atomicstore

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type envelope struct {
	ID      string `json:"id"`
	Attempt int    `json:"attempt"`
}

func TestWriteJSONAtomic_ReadJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "envelope.json")
	want := envelope{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", Attempt: 2}

	if err := WriteJSONAtomic(path, want); err != nil {
		t.Fatalf("WriteJSONAtomic: %v", err)
	}

	got, err := ReadJSON[envelope](path)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got != want {
		t.Errorf("ReadJSON = %+v, want %+v", got, want)
	}
}

func TestWriteJSONAtomic_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "envelope.json")

	if err := WriteJSONAtomic(path, envelope{ID: "a", Attempt: 0}); err != nil {
		t.Fatalf("first WriteJSONAtomic: %v", err)
	}
	if err := WriteJSONAtomic(path, envelope{ID: "a", Attempt: 1}); err != nil {
		t.Fatalf("second WriteJSONAtomic: %v", err)
	}

	got, err := ReadJSON[envelope](path)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Attempt != 1 {
		t.Errorf("Attempt = %d, want 1 (second write should overwrite)", got.Attempt)
	}
}

func TestWriteJSONAtomic_NoTemporaryFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "envelope.json")

	if err := WriteJSONAtomic(path, envelope{ID: "a"}); err != nil {
		t.Fatalf("WriteJSONAtomic: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "envelope.json" {
		t.Errorf("directory entries = %v, want only envelope.json", entries)
	}
}

func TestReadJSON_MissingFileWrapsErrNotExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := ReadJSON[envelope](path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected error wrapping os.ErrNotExist, got %v", err)
	}
}

func TestClaimMove_MovesDirectoryEntry(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "new", "msg.json")
	dst := filepath.Join(dir, "inflight", "msg.json")

	if err := EnsureDir(filepath.Dir(src)); err != nil {
		t.Fatalf("EnsureDir src: %v", err)
	}
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		t.Fatalf("EnsureDir dst: %v", err)
	}
	if err := WriteFileAtomic(src, []byte("{}")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	ok, err := ClaimMove(src, dst)
	if err != nil {
		t.Fatalf("ClaimMove: %v", err)
	}
	if !ok {
		t.Fatal("ClaimMove returned false for an uncontested claim")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("src still exists after claim")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("dst missing after claim: %v", err)
	}
}

func TestClaimMove_OnlyOneWinnerUnderConcurrency(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "new", "msg.json")
	if err := EnsureDir(filepath.Dir(src)); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if err := WriteFileAtomic(src, []byte("{}")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	const racers = 8
	var wg sync.WaitGroup
	wins := make([]bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dst := filepath.Join(dir, "inflight", "agent-"+string(rune('a'+i)), "msg.json")
			if err := EnsureDir(filepath.Dir(dst)); err != nil {
				return
			}
			ok, err := ClaimMove(src, dst)
			if err == nil && ok {
				wins[i] = true
			}
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, w := range wins {
		if w {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("expected exactly 1 winner, got %d", winners)
	}
}

func TestClaimMove_LostRaceReturnsErrClaimLost(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "new", "msg.json")
	dst := filepath.Join(dir, "inflight", "msg.json")
	if err := EnsureDir(filepath.Dir(src)); err != nil {
		t.Fatalf("EnsureDir src: %v", err)
	}
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		t.Fatalf("EnsureDir dst: %v", err)
	}

	_, err := ClaimMove(src, dst)
	if !errors.Is(err, ErrClaimLost) {
		t.Errorf("expected ErrClaimLost for a missing src, got %v", err)
	}
}

func TestListSorted_SortsLexically(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"01B.json", "01A.json", "01C.json", "skip.txt"} {
		if err := WriteFileAtomic(filepath.Join(dir, name), []byte("{}")); err != nil {
			t.Fatalf("WriteFileAtomic %s: %v", name, err)
		}
	}

	got, err := ListSorted(dir, ".json")
	if err != nil {
		t.Fatalf("ListSorted: %v", err)
	}
	want := []string{"01A.json", "01B.json", "01C.json"}
	if len(got) != len(want) {
		t.Fatalf("ListSorted = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListSorted[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListSorted_MissingDirReturnsEmpty(t *testing.T) {
	got, err := ListSorted(filepath.Join(t.TempDir(), "does-not-exist"), "")
	if err != nil {
		t.Fatalf("ListSorted: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no entries, got %v", got)
	}
}

func TestUnlink_IdempotentOnMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	if err := Unlink(path); err != nil {
		t.Errorf("Unlink of missing file should be nil, got %v", err)
	}
}
