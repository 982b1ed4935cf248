// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package zeuserr defines the bus's error taxonomy (spec §7) as
// sentinel values. Call sites wrap them with fmt.Errorf("pkg: doing
// thing: %w", err) and callers compare with errors.Is, the same
// convention used throughout this module's cmd/ and internal/
// packages.
package zeuserr

import "errors"

var (
	// ErrPoison marks an unparseable envelope or inbox item: missing
	// id, malformed JSON, or empty trimmed message. Poison items are
	// deleted, never retried.
	ErrPoison = errors.New("zeuserr: poison payload")

	// ErrUnknownRecipient is returned by recipient resolution when an
	// agent:/hoplite: id or name: display has no match.
	ErrUnknownRecipient = errors.New("zeuserr: unknown recipient")

	// ErrAmbiguousRecipient is returned when a name: or bare-display
	// target matches more than one agent.
	ErrAmbiguousRecipient = errors.New("zeuserr: ambiguous recipient")

	// ErrMissingParent is returned resolving a polemarch target when
	// the sender has no ZEUS_PARENT_ID.
	ErrMissingParent = errors.New("zeuserr: missing parent")

	// ErrMissingPhalanx is returned resolving a phalanx target when
	// the sender has no phalanx membership.
	ErrMissingPhalanx = errors.New("zeuserr: missing phalanx")

	// ErrStaleCapability marks a recipient whose heartbeat is absent
	// or older than MAX_HEARTBEAT_AGE; dispatch is deferred, not
	// failed.
	ErrStaleCapability = errors.New("zeuserr: stale capability")

	// ErrSubmitFailed marks a runtime submit that threw; the extension
	// moves the inbox item back to new/ for retry.
	ErrSubmitFailed = errors.New("zeuserr: submit failed")

	// ErrIO marks a transient filesystem error. Treated as retry
	// everywhere except the one fatal case: STATE_DIR unwritable at
	// startup.
	ErrIO = errors.New("zeuserr: io error")
)
