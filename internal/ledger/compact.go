// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/zeus-fleet/zeus/internal/atomicstore"
)

// compactedSnapshot is the CBOR-encoded payload behind <agent-id>.snap.zst,
// carrying the same fields as jsonSnapshot in a denser wire format.
type compactedSnapshot struct {
	UpdatedAt int64    `cbor:"updated_at"`
	IDs       []string `cbor:"ids"`
}

// writeCompactedSnapshot CBOR-encodes then zstd-compresses ids into a
// single frame at path, written atomically.
func writeCompactedSnapshot(path string, ids []string) error {
	payload, err := cbor.Marshal(compactedSnapshot{IDs: ids})
	if err != nil {
		return fmt.Errorf("ledger: encoding compacted snapshot: %w", err)
	}

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("ledger: opening zstd writer: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		w.Close()
		return fmt.Errorf("ledger: compressing snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("ledger: closing zstd writer: %w", err)
	}

	return atomicstore.WriteFileAtomic(path, buf.Bytes())
}

// readCompactedSnapshot returns the ids from path, or ok=false if path
// does not exist.
func readCompactedSnapshot(path string) ([]string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("ledger: reading compacted snapshot %s: %w", path, err)
	}

	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("ledger: opening zstd reader for %s: %w", path, err)
	}
	defer r.Close()

	decompressed, err := io.ReadAll(r)
	if err != nil {
		return nil, false, fmt.Errorf("ledger: decompressing snapshot %s: %w", path, err)
	}

	var snap compactedSnapshot
	if err := cbor.Unmarshal(decompressed, &snap); err != nil {
		return nil, false, fmt.Errorf("ledger: decoding snapshot %s: %w", path, err)
	}
	return snap.IDs, true, nil
}

// appendLogEntry appends one zstd-framed, CBOR-encoded id to the
// append-only log at path. Each call writes an independent zstd
// frame; zstd readers decode a stream of concatenated frames
// transparently, so the log never needs read-modify-write.
func appendLogEntry(path, id string) error {
	if err := atomicstore.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	payload, err := cbor.Marshal(id)
	if err != nil {
		return fmt.Errorf("ledger: encoding log entry: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("ledger: opening log %s: %w", path, err)
	}
	defer file.Close()

	w, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("ledger: opening zstd writer for log: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		w.Close()
		return fmt.Errorf("ledger: appending log entry: %w", err)
	}
	return w.Close()
}

// readLogEntries decodes every id appended to the log at path, in
// append order. Returns nil, nil when path does not exist.
func readLogEntries(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: reading log %s: %w", path, err)
	}

	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ledger: opening zstd reader for log %s: %w", path, err)
	}
	defer r.Close()

	decompressed, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ledger: decompressing log %s: %w", path, err)
	}

	dec := cbor.NewDecoder(bytes.NewReader(decompressed))
	var ids []string
	for {
		var id string
		if err := dec.Decode(&id); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("ledger: decoding log entry in %s: %w", path, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// compactionSizes returns the on-disk size of the log and the last
// compacted snapshot, 0 for either that does not exist yet.
func compactionSizes(logPath, snapPath string) (logSize, snapSize int64, err error) {
	logSize, err = fileSize(logPath)
	if err != nil {
		return 0, 0, err
	}
	snapSize, err = fileSize(snapPath)
	if err != nil {
		return 0, 0, err
	}
	return logSize, snapSize, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("ledger: stat %s: %w", path, err)
	}
	return info.Size(), nil
}
