// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import "testing"

func TestNoop_NeverSignals(t *testing.T) {
	var w Noop
	if w.Signal() != nil {
		t.Error("expected Noop.Signal() to return a nil channel")
	}
	w.Close()
	w.Close()
}
