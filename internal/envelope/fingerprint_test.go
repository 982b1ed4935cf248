// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import "testing"

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("hello")
	b := Fingerprint("hello")
	if a != b {
		t.Fatalf("Fingerprint not deterministic: %q != %q", a, b)
	}
}

func TestFingerprint_DifferentInputsDiffer(t *testing.T) {
	if Fingerprint("hello") == Fingerprint("goodbye") {
		t.Fatal("different messages produced the same fingerprint")
	}
}

func TestVerifyFingerprint_MatchSucceeds(t *testing.T) {
	hash := Fingerprint("steer now")
	if !VerifyFingerprint("steer now", hash) {
		t.Fatal("expected a matching fingerprint to verify")
	}
}

func TestVerifyFingerprint_MismatchFails(t *testing.T) {
	hash := Fingerprint("steer now")
	if VerifyFingerprint("something else", hash) {
		t.Fatal("expected a mismatched fingerprint to fail verification")
	}
}

func TestVerifyFingerprint_EmptyHashAlwaysVerifies(t *testing.T) {
	if !VerifyFingerprint("anything at all", "") {
		t.Fatal("expected an empty hash (pre-existing envelope) to verify unconditionally")
	}
}
