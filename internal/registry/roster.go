// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"os"

	"github.com/zeus-fleet/zeus/internal/zeusid"
	"gopkg.in/yaml.v3"
)

// rosterEntry is the YAML shape of one roster line, mirroring
// AgentInfo but with plain strings for the id fields so yaml.v3 can
// decode it before validation runs through zeusid.ParseAgentID.
type rosterEntry struct {
	AgentID   string `yaml:"agent_id"`
	Name      string `yaml:"name"`
	Role      string `yaml:"role"`
	ParentID  string `yaml:"parent_id"`
	PhalanxID string `yaml:"phalanx_id"`
}

type roster struct {
	Agents []rosterEntry `yaml:"agents"`
}

// LoadRosterFile reads a static roster YAML file (its own document
// with a top-level agents list, separate from the zeusconfig file) and
// returns a populated Registry.
//
// This exists purely as a stand-in for the real discovery subsystem
// (spec §1 non-goal); internal/zeusworld.New loads it when the config's
// roster_file is set.
func LoadRosterFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: reading roster %s: %w", path, err)
	}

	var doc roster
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registry: parsing roster %s: %w", path, err)
	}

	reg := NewRegistry()
	for _, entry := range doc.Agents {
		id, err := zeusid.ParseAgentID(entry.AgentID)
		if err != nil {
			return nil, fmt.Errorf("registry: roster entry %q: %w", entry.AgentID, err)
		}

		info := AgentInfo{
			AgentID:   id,
			Name:      entry.Name,
			Role:      entry.Role,
			PhalanxID: entry.PhalanxID,
		}
		if entry.ParentID != "" {
			parent, err := zeusid.ParseAgentID(entry.ParentID)
			if err != nil {
				return nil, fmt.Errorf("registry: roster entry %q parent_id: %w", entry.AgentID, err)
			}
			info.ParentID = parent
		}
		reg.Put(info)
	}
	return reg, nil
}
