// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// EpochSeconds converts t to a fractional Unix timestamp. This is the
// on-disk representation of Envelope.CreatedAt/UpdatedAt/NextAttemptAt
// and every other sub-second timestamp field serialized to
// zeus-message-queue/{new,inflight} JSON — fractional so two envelopes
// minted in the same second still order by NextAttemptAt.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// UnixSeconds converts t to a whole-second Unix timestamp, the on-disk
// representation used by capability heartbeats and ledger entries,
// where sub-second resolution isn't needed.
func UnixSeconds(t time.Time) int64 {
	return t.Unix()
}
