// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import "strings"

// TargetKind classifies a parsed send target (spec §4.D).
type TargetKind int

const (
	// TargetAgentID targets a single agent by id ("agent:<id>" or
	// "hoplite:<id>").
	TargetAgentID TargetKind = iota
	// TargetName targets agents by display name ("name:<display>" or
	// a bare display name).
	TargetName
	// TargetPolemarch resolves to the sender's ZEUS_PARENT_ID.
	TargetPolemarch
	// TargetPhalanx resolves to every agent sharing the sender's
	// phalanx, excluding the sender.
	TargetPhalanx
)

// Target is a send target expression parsed into its kind and value.
// Value holds the agent id for TargetAgentID, the display name for
// TargetName, and is empty for TargetPolemarch/TargetPhalanx.
type Target struct {
	Kind  TargetKind
	Value string
}

// ParseTarget parses a raw target expression per spec §4.D: "agent:<id>",
// "hoplite:<id>", "name:<display>", "polemarch", "phalanx", or a bare
// display name (treated the same as "name:<display>").
func ParseTarget(raw string) Target {
	switch {
	case raw == "polemarch":
		return Target{Kind: TargetPolemarch}
	case raw == "phalanx":
		return Target{Kind: TargetPhalanx}
	case strings.HasPrefix(raw, "agent:"):
		return Target{Kind: TargetAgentID, Value: strings.TrimPrefix(raw, "agent:")}
	case strings.HasPrefix(raw, "hoplite:"):
		return Target{Kind: TargetAgentID, Value: strings.TrimPrefix(raw, "hoplite:")}
	case strings.HasPrefix(raw, "name:"):
		return Target{Kind: TargetName, Value: strings.TrimPrefix(raw, "name:")}
	default:
		return Target{Kind: TargetName, Value: raw}
	}
}
