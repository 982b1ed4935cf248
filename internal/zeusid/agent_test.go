// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zeusid

import "testing"

func TestParseAgentID_StripsDisallowedCharacters(t *testing.T) {
	id, err := ParseAgentID("bob@workstation!#1")
	if err != nil {
		t.Fatalf("ParseAgentID: %v", err)
	}
	if id.String() != "bobworkstation1" {
		t.Errorf("expected canonicalised id %q, got %q", "bobworkstation1", id.String())
	}
}

func TestParseAgentID_AllowsUnderscoreAndHyphen(t *testing.T) {
	id, err := ParseAgentID("hoplite-7_alpha")
	if err != nil {
		t.Fatalf("ParseAgentID: %v", err)
	}
	if id.String() != "hoplite-7_alpha" {
		t.Errorf("expected id unchanged, got %q", id.String())
	}
}

func TestParseAgentID_EmptyAfterStrip(t *testing.T) {
	_, err := ParseAgentID("@@@ !!!")
	if err != ErrEmptyAgentID {
		t.Fatalf("expected ErrEmptyAgentID, got %v", err)
	}
}

func TestAgentID_Equal(t *testing.T) {
	a := MustAgentID("bob")
	b := MustAgentID("b!o#b")
	if !a.Equal(b) {
		t.Error("expected canonicalised ids to compare equal")
	}
}

func TestAgentID_TextRoundTrip(t *testing.T) {
	a := MustAgentID("carol")
	data, err := a.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var b AgentID
	if err := b.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if !a.Equal(b) {
		t.Errorf("round trip mismatch: %q vs %q", a, b)
	}
}
