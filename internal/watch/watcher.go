// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watch

// Watcher emits a signal on Signal() whenever it believes the watched
// directory changed. Signals are debounced/coalesced by the
// implementation — a caller that drains Signal() in a loop and
// re-sweeps on every receive sees at most one extra sweep per burst of
// filesystem activity, never one sweep per individual event.
//
// Close stops the watcher and releases any OS resources. Calling
// Close more than once is safe.
type Watcher interface {
	Signal() <-chan struct{}
	Close()
}

// Noop is a Watcher that never fires. Callers relying solely on their
// own sweep timer (spec §9's required no-watcher path) use this
// directly; it is also what non-Linux builds fall back to.
type Noop struct{}

func (Noop) Signal() <-chan struct{} { return nil }
func (Noop) Close()                  {}
