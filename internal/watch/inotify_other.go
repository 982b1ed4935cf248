// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package watch

import "time"

// NewInotify is unavailable outside Linux; callers fall back to Noop,
// relying solely on their sweep timer — exactly the path spec §9
// requires every implementation to support regardless of platform.
func NewInotify(dir string, debounce time.Duration) (Watcher, error) {
	return Noop{}, nil
}
