// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/zeus-fleet/zeus/internal/atomicstore"
	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/zeusid"
)

// jsonSnapshot is the plain on-disk shape from spec §3, used while the
// set stays small.
type jsonSnapshot struct {
	UpdatedAt int64    `json:"updated_at"`
	IDs       []string `json:"ids"`
}

// Ledger is one agent's processed-id set: a durable record checked
// before every runtime submit (I4) and updated only after a successful
// submit. Safe for concurrent use; in practice there is exactly one
// writer (the agent's own extension process) but Contains may be
// called from multiple goroutines within that process.
type Ledger struct {
	dir          string
	agentID      zeusid.AgentID
	clk          clock.Clock
	maxIDs       int
	maxAge       time.Duration
	compactAbove int

	mu     sync.Mutex
	loaded bool
	ids    map[string]struct{}
	sorted []string // kept in sync with ids, ascending — also creation order
}

// New returns a Ledger for agentID rooted at dir
// (zeus-agent-bus/processed/). Nothing is read from disk until the
// first Contains or Accept call (spec §4.C: "loaded lazily once per
// process lifetime").
func New(dir string, agentID zeusid.AgentID, clk clock.Clock, maxIDs int, maxAge time.Duration, compactAbove int) *Ledger {
	return &Ledger{
		dir:          dir,
		agentID:      agentID,
		clk:          clk,
		maxIDs:       maxIDs,
		maxAge:       maxAge,
		compactAbove: compactAbove,
	}
}

func (l *Ledger) jsonPath() string     { return filepath.Join(l.dir, l.agentID.String()+".json") }
func (l *Ledger) snapshotPath() string { return filepath.Join(l.dir, l.agentID.String()+".snap.zst") }
func (l *Ledger) logPath() string      { return filepath.Join(l.dir, l.agentID.String()+".log.zst") }

func (l *Ledger) ensureLoadedLocked() error {
	if l.loaded {
		return nil
	}
	l.ids = make(map[string]struct{})

	// Prefer the compacted snapshot + any log entries appended since,
	// falling back to the plain JSON form for small/legacy ledgers.
	if ids, ok, err := readCompactedSnapshot(l.snapshotPath()); err != nil {
		return err
	} else if ok {
		for _, id := range ids {
			l.ids[id] = struct{}{}
		}
		logged, err := readLogEntries(l.logPath())
		if err != nil {
			return err
		}
		for _, id := range logged {
			l.ids[id] = struct{}{}
		}
	} else {
		snap, err := atomicstore.ReadJSON[jsonSnapshot](l.jsonPath())
		if err == nil {
			for _, id := range snap.IDs {
				l.ids[id] = struct{}{}
			}
		}
		// Missing file means an empty ledger — not an error.
	}

	l.rebuildSortedLocked()
	l.loaded = true
	return nil
}

func (l *Ledger) rebuildSortedLocked() {
	l.sorted = l.sorted[:0]
	for id := range l.ids {
		l.sorted = append(l.sorted, id)
	}
	sort.Strings(l.sorted)
}

// Contains reports whether id has already been processed for this
// agent. Loads the ledger from disk on first call.
func (l *Ledger) Contains(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ensureLoadedLocked(); err != nil {
		return false, err
	}
	_, ok := l.ids[id]
	return ok, nil
}

// Accept records id as processed and persists the ledger. Called only
// after a successful runtime submit (spec §4.C step 5) — the ledger
// write must precede the receipt write (I4's ordering guarantee).
//
// Accept is idempotent: adding an id already present is a no-op that
// still succeeds.
func (l *Ledger) Accept(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLoadedLocked(); err != nil {
		return err
	}
	if _, ok := l.ids[id]; ok {
		return nil
	}
	l.ids[id] = struct{}{}
	l.insertSortedLocked(id)
	l.trimLocked()

	return l.persistLocked(id)
}

func (l *Ledger) insertSortedLocked(id string) {
	i := sort.SearchStrings(l.sorted, id)
	l.sorted = append(l.sorted, "")
	copy(l.sorted[i+1:], l.sorted[i:])
	l.sorted[i] = id
}

// trimLocked drops the oldest entries once the set exceeds maxIDs, and
// ages out entries older than maxAge when the id encodes a decodable
// envelope timestamp. Entries that aren't parseable ULID-style ids
// (e.g. from an older schema) are kept — only count-based trimming
// applies to them.
func (l *Ledger) trimLocked() {
	if l.maxIDs > 0 {
		for len(l.sorted) > l.maxIDs {
			oldest := l.sorted[0]
			l.sorted = l.sorted[1:]
			delete(l.ids, oldest)
		}
	}
	if l.maxAge <= 0 {
		return
	}
	now := l.clk.Now()
	cut := 0
	for cut < len(l.sorted) {
		id := l.sorted[cut]
		parsed, err := zeusid.ParseEnvelopeID(id)
		if err != nil {
			break
		}
		ts, ok := parsed.Timestamp()
		if !ok || now.Sub(ts) <= l.maxAge {
			break
		}
		delete(l.ids, id)
		cut++
	}
	if cut > 0 {
		l.sorted = l.sorted[cut:]
	}
}

func (l *Ledger) persistLocked(id string) error {
	if err := atomicstore.EnsureDir(l.dir); err != nil {
		return err
	}

	if len(l.sorted) <= l.compactAbove {
		return atomicstore.WriteJSONAtomic(l.jsonPath(), jsonSnapshot{
			UpdatedAt: clock.UnixSeconds(l.clk.Now()),
			IDs:       l.sorted,
		})
	}

	// Above the threshold: append the new id to the compressed log
	// rather than rewriting everything, then compact if the log has
	// grown disproportionately to the last snapshot.
	if _, kept := l.ids[id]; kept {
		if err := appendLogEntry(l.logPath(), id); err != nil {
			return err
		}
	}

	logSize, snapSize, err := compactionSizes(l.logPath(), l.snapshotPath())
	if err != nil {
		return err
	}
	if snapSize == 0 || logSize > 4*snapSize {
		if err := writeCompactedSnapshot(l.snapshotPath(), l.sorted); err != nil {
			return err
		}
		if err := atomicstore.Unlink(l.logPath()); err != nil {
			return err
		}
		if err := atomicstore.Unlink(l.jsonPath()); err != nil {
			return err
		}
	}
	return nil
}
