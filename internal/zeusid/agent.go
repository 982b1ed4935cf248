// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zeusid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyAgentID is returned when an agent id canonicalises to the
// empty string (no allowed characters present).
var ErrEmptyAgentID = errors.New("zeusid: agent id is empty after canonicalisation")

// AgentID is an opaque, validated agent identifier. Per the bus
// design's data model, an agent id is canonicalised by stripping to
// [A-Za-z0-9_-]; an agent with no deterministic id is not addressable
// through the bus.
type AgentID struct {
	value string
}

// ParseAgentID canonicalises raw by stripping every character outside
// [A-Za-z0-9_-] and returns the resulting AgentID. Returns
// ErrEmptyAgentID if nothing survives the strip.
func ParseAgentID(raw string) (AgentID, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	value := b.String()
	if value == "" {
		return AgentID{}, ErrEmptyAgentID
	}
	return AgentID{value: value}, nil
}

// MustAgentID is ParseAgentID, panicking on error. Intended for
// constants and tests where raw is known-good.
func MustAgentID(raw string) AgentID {
	id, err := ParseAgentID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the canonical form.
func (a AgentID) String() string { return a.value }

// IsZero reports whether a is the zero value (never produced by
// ParseAgentID — only possible via the zero value of the type itself).
func (a AgentID) IsZero() bool { return a.value == "" }

// Equal reports whether two AgentIDs have the same canonical form.
func (a AgentID) Equal(other AgentID) bool { return a.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (a AgentID) MarshalText() ([]byte, error) {
	return []byte(a.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AgentID) UnmarshalText(data []byte) error {
	parsed, err := ParseAgentID(string(data))
	if err != nil {
		return fmt.Errorf("unmarshal AgentID: %w", err)
	}
	*a = parsed
	return nil
}
