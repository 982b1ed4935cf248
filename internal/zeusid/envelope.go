// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zeusid

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/zeus-fleet/zeus/internal/clock"
)

// crockford is the Crockford base32 alphabet: no I, L, O, U, to avoid
// visual confusion when an operator reads a filename aloud.
const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// EnvelopeID is a 26-character, lexically sortable identifier. Atomic
// File Store's ListSorted contract (§4.A) requires filenames that sort
// in creation order; EnvelopeID's layout — 48-bit millisecond
// timestamp followed by an 80-bit tail that increments when two ids
// are minted within the same millisecond — satisfies that without
// taking on a UUID dependency (UUIDv4's random ordering doesn't sort
// by creation time at all).
type EnvelopeID struct {
	value string
}

// ErrInvalidEnvelopeID is returned when a string is not 26 Crockford
// base32 characters.
var ErrInvalidEnvelopeID = errors.New("zeusid: invalid envelope id")

var genMu sync.Mutex
var lastMillis int64
var lastTail [10]byte // 80 bits

// NewEnvelopeID mints a new id using clk for the timestamp component.
// A retried envelope keeps its existing id (§3) — this is only called
// once, at Enqueue time.
func NewEnvelopeID(clk clock.Clock) EnvelopeID {
	millis := clk.Now().UnixMilli()

	genMu.Lock()
	var tail [10]byte
	if millis == lastMillis {
		tail = incrementTail(lastTail)
	} else {
		rand.Read(tail[:]) //nolint:errcheck // crypto/rand.Read never errors on supported platforms
	}
	lastMillis = millis
	lastTail = tail
	genMu.Unlock()

	var raw [16]byte
	raw[0] = byte(millis >> 40)
	raw[1] = byte(millis >> 32)
	raw[2] = byte(millis >> 24)
	raw[3] = byte(millis >> 16)
	raw[4] = byte(millis >> 8)
	raw[5] = byte(millis)
	copy(raw[6:], tail[:])

	return EnvelopeID{value: encodeCrockford(raw)}
}

func incrementTail(tail [10]byte) [10]byte {
	for i := len(tail) - 1; i >= 0; i-- {
		tail[i]++
		if tail[i] != 0 {
			break
		}
	}
	return tail
}

// encodeCrockford encodes 16 bytes (128 bits) into 26 base32 characters.
func encodeCrockford(raw [16]byte) string {
	var out [26]byte
	// Process 5 bits at a time over a 130-bit window (2 bits padding).
	var buf uint64
	var bits int
	pos := 0
	for _, b := range raw {
		buf = (buf << 8) | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = crockford[(buf>>uint(bits))&0x1F]
			pos++
		}
	}
	if bits > 0 {
		out[pos] = crockford[(buf<<uint(5-bits))&0x1F]
		pos++
	}
	return string(out[:pos])
}

// ParseEnvelopeID validates that raw looks like a well-formed envelope
// id (26 characters from the Crockford alphabet). It does not attempt
// to decode the timestamp — callers that need creation order rely on
// lexical filename ordering, not on parsing this id back apart.
func ParseEnvelopeID(raw string) (EnvelopeID, error) {
	if len(raw) != 26 {
		return EnvelopeID{}, ErrInvalidEnvelopeID
	}
	upper := strings.ToUpper(raw)
	for _, r := range upper {
		if !strings.ContainsRune(crockford, r) {
			return EnvelopeID{}, ErrInvalidEnvelopeID
		}
	}
	return EnvelopeID{value: upper}, nil
}

// Timestamp decodes the 48-bit millisecond timestamp embedded in the
// leading bytes of e. Used by the processed ledger to age out entries
// without storing a separate per-id timestamp (internal/ledger) —
// ordinary lookups never need this, since they rely on lexical
// filename ordering instead (see ParseEnvelopeID).
func (e EnvelopeID) Timestamp() (time.Time, bool) {
	raw, ok := decodeCrockford(e.value)
	if !ok {
		return time.Time{}, false
	}
	millis := int64(raw[0])<<40 | int64(raw[1])<<32 | int64(raw[2])<<24 |
		int64(raw[3])<<16 | int64(raw[4])<<8 | int64(raw[5])
	return time.UnixMilli(millis).UTC(), true
}

func decodeCrockford(s string) ([16]byte, bool) {
	var out [16]byte
	var buf uint64
	var bits int
	pos := 0
	for _, r := range s {
		idx := strings.IndexRune(crockford, r)
		if idx < 0 {
			return out, false
		}
		buf = (buf << 5) | uint64(idx)
		bits += 5
		if bits >= 8 {
			bits -= 8
			if pos >= len(out) {
				break
			}
			out[pos] = byte(buf >> uint(bits))
			pos++
		}
	}
	return out, true
}

func (e EnvelopeID) String() string { return e.value }

func (e EnvelopeID) IsZero() bool { return e.value == "" }

func (e EnvelopeID) Equal(other EnvelopeID) bool { return e.value == other.value }

func (e EnvelopeID) MarshalText() ([]byte, error) {
	return []byte(e.value), nil
}

func (e *EnvelopeID) UnmarshalText(data []byte) error {
	parsed, err := ParseEnvelopeID(string(data))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
