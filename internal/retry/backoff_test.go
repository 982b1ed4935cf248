// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"testing"
	"time"
)

func TestDelay_GrowsExponentiallyWithinJitter(t *testing.T) {
	p := Policy{Base: 2 * time.Second, Cap: 60 * time.Second}

	cases := []struct {
		attempt  int
		wantBase time.Duration
	}{
		{0, 2 * time.Second},
		{1, 4 * time.Second},
		{2, 8 * time.Second},
		{3, 16 * time.Second},
	}

	for _, c := range cases {
		for i := 0; i < 20; i++ {
			got := p.Delay(c.attempt)
			low := time.Duration(float64(c.wantBase) * 0.79)
			high := time.Duration(float64(c.wantBase) * 1.21)
			if got < low || got > high {
				t.Errorf("attempt %d: Delay() = %v, want in [%v, %v]", c.attempt, got, low, high)
			}
		}
	}
}

func TestDelay_CappedForLargeAttempts(t *testing.T) {
	p := Policy{Base: 2 * time.Second, Cap: 60 * time.Second}

	for i := 0; i < 20; i++ {
		got := p.Delay(10)
		if got > time.Duration(float64(p.Cap)*1.21) {
			t.Errorf("Delay(10) = %v, want capped near %v", got, p.Cap)
		}
	}
}

func TestDelay_NegativeAttemptTreatedAsZero(t *testing.T) {
	p := Policy{Base: 2 * time.Second, Cap: 60 * time.Second}
	got := p.Delay(-5)
	if got < time.Second || got > 3*time.Second {
		t.Errorf("Delay(-5) = %v, want near Delay(0)", got)
	}
}
