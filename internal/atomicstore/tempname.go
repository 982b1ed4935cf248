// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atomicstore

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"sync/atomic"
	"time"
)

// counter disambiguates temporary file names from concurrent writers in
// the same process; pid disambiguates across processes. Each name also
// carries a nanosecond timestamp and random bytes. Unlike the
// watchdog package's single fixed ".tmp" suffix, the bus has many
// writers sharing a handful of directories, so a collision here would
// mean two goroutines racing on the same temporary path.
var counter uint64

func randomSuffix() string {
	n := atomic.AddUint64(&counter, 1)
	var random [4]byte
	rand.Read(random[:]) //nolint:errcheck // crypto/rand.Read never errors on supported platforms
	return strconv.Itoa(os.Getpid()) + "-" + strconv.FormatInt(time.Now().UnixNano(), 36) + "-" +
		hex.EncodeToString(random[:]) + "-" + strconv.FormatUint(n, 36)
}
