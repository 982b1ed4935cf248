// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zeusid

import (
	"sort"
	"testing"
	"time"

	"github.com/zeus-fleet/zeus/internal/clock"
)

func TestNewEnvelopeID_Length(t *testing.T) {
	id := NewEnvelopeID(clock.Real())
	if len(id.String()) != 26 {
		t.Errorf("expected 26-character id, got %d: %q", len(id.String()), id)
	}
}

func TestNewEnvelopeID_SortsInCreationOrder(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, NewEnvelopeID(fake).String())
		fake.Advance(time.Millisecond)
	}

	if !sort.StringsAreSorted(ids) {
		t.Errorf("expected ids to sort in creation order, got %v", ids)
	}
}

func TestNewEnvelopeID_MonotonicWithinSameMillisecond(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	first := NewEnvelopeID(fake).String()
	second := NewEnvelopeID(fake).String()

	if first >= second {
		t.Errorf("expected monotonic increase within the same millisecond, got %q then %q", first, second)
	}
}

func TestParseEnvelopeID_RoundTrip(t *testing.T) {
	id := NewEnvelopeID(clock.Real())

	parsed, err := ParseEnvelopeID(id.String())
	if err != nil {
		t.Fatalf("ParseEnvelopeID: %v", err)
	}
	if !parsed.Equal(id) {
		t.Errorf("round trip mismatch: %q vs %q", parsed, id)
	}
}

func TestParseEnvelopeID_RejectsWrongLength(t *testing.T) {
	if _, err := ParseEnvelopeID("too-short"); err != ErrInvalidEnvelopeID {
		t.Errorf("expected ErrInvalidEnvelopeID, got %v", err)
	}
}

func TestEnvelopeID_Timestamp_RoundTrips(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 3, 15, 12, 30, 45, 0, time.UTC))
	id := NewEnvelopeID(fake)

	got, ok := id.Timestamp()
	if !ok {
		t.Fatal("expected Timestamp to decode successfully")
	}
	want := fake.Now().Truncate(time.Millisecond)
	if !got.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", got, want)
	}
}

func TestParseEnvelopeID_RejectsDisallowedCharacters(t *testing.T) {
	// 26 characters but containing 'I', which Crockford base32 excludes.
	if _, err := ParseEnvelopeID("IIIIIIIIIIIIIIIIIIIIIIIIII"); err != ErrInvalidEnvelopeID {
		t.Errorf("expected ErrInvalidEnvelopeID, got %v", err)
	}
}
