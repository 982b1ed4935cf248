// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestEpochSeconds_RoundTripsFractionalSeconds(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 500_000_000, time.UTC)
	got := EpochSeconds(t1)
	want := float64(t1.Unix()) + 0.5
	if got != want {
		t.Fatalf("EpochSeconds(%v) = %v, want %v", t1, got, want)
	}
}

func TestUnixSeconds_TruncatesToWholeSeconds(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 999_000_000, time.UTC)
	if got, want := UnixSeconds(t1), t1.Unix(); got != want {
		t.Fatalf("UnixSeconds(%v) = %v, want %v", t1, got, want)
	}
}
