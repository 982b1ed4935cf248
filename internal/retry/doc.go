// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package retry implements the bounded-exponential backoff with
// jitter spec §4.D specifies for envelope redelivery: delay_k =
// min(base * 2^k, cap), ±20% jitter, unbounded attempts.
package retry
