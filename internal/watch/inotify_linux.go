// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package watch

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// inotifyMask covers file creation, atomic renames into the directory,
// and completed writes — the three ways a new/ or receipts/<id>/
// directory gains an item the dispatcher or extension cares about.
const inotifyMask = unix.IN_CREATE | unix.IN_MOVED_TO | unix.IN_CLOSE_WRITE

// NewInotify watches dir for activity and emits a debounced signal on
// Signal(), coalescing any events arriving within debounce of each
// other into one signal. Grounded on cmd/bureau-launcher's single-file
// inotify watcher (poll(2) with a 100ms timeout so the read loop stays
// responsive to Close), generalized from "watch for one named file" to
// "watch a directory for any create/move/write."
func NewInotify(dir string, debounce time.Duration) (Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("watch: inotify_init1: %w", err)
	}

	if _, err := unix.InotifyAddWatch(fd, dir, inotifyMask); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("watch: inotify_add_watch on %s: %w", dir, err)
	}

	w := &inotifyWatcher{
		fd:       fd,
		signal:   make(chan struct{}, 1),
		rawEvent: make(chan struct{}, 1),
		stop:     make(chan struct{}),
		debounce: debounce,
	}
	go w.readLoop()
	go w.debounceLoop()
	return w, nil
}

type inotifyWatcher struct {
	fd       int
	signal   chan struct{}
	rawEvent chan struct{}
	stop     chan struct{}
	debounce time.Duration
}

func (w *inotifyWatcher) Signal() <-chan struct{} { return w.signal }

func (w *inotifyWatcher) Close() {
	select {
	case <-w.stop:
		return
	default:
		close(w.stop)
	}
}

// readLoop polls the inotify fd with a 100ms timeout so it stays
// responsive to stop without busy-waiting. Every event batch —
// regardless of how many individual inotify_event records it
// contains — produces one rawEvent tick; debounceLoop does the
// coalescing.
func (w *inotifyWatcher) readLoop() {
	defer unix.Close(w.fd)

	buffer := make([]byte, 4096)
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		pollDescriptors := []unix.PollFd{{Fd: int32(w.fd), Events: unix.POLLIN}}
		count, err := unix.Poll(pollDescriptors, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if count == 0 {
			continue
		}

		n, err := unix.Read(w.fd, buffer)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		if n <= 0 {
			continue
		}

		select {
		case w.rawEvent <- struct{}{}:
		default:
		}
	}
}

// debounceLoop coalesces bursts of rawEvent ticks into a single
// Signal() firing per debounce window (spec §4.E/§9: "overlapping
// wakes are coalesced (debounce 50 ms)").
func (w *inotifyWatcher) debounceLoop() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.rawEvent:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-timerC:
			select {
			case w.signal <- struct{}{}:
			default:
			}
			timer = nil
			timerC = nil
		}
	}
}
