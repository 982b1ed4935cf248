// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"math"
	"math/rand"
	"time"
)

// Policy is a bounded-exponential backoff schedule: delay_k =
// min(Base * 2^k, Cap), jittered by ±20%.
type Policy struct {
	Base time.Duration
	Cap  time.Duration
}

// Delay returns the backoff delay for the given attempt count (the
// number of attempts already made; the first retry uses attempt 0).
// Jitter is applied with the package's shared math/rand source —
// attempts are advisory scheduling, not security-sensitive, so a
// cryptographic source is unnecessary here (unlike internal/zeusid's
// id generation).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	multiplier := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(p.Base) * multiplier)
	if delay > p.Cap || delay <= 0 {
		delay = p.Cap
	}

	jitter := 1 + (rand.Float64()*0.4 - 0.2) // ±20%
	jittered := time.Duration(float64(delay) * jitter)
	if jittered < 0 {
		jittered = 0
	}
	return jittered
}
