// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queue

import (
	"fmt"

	"github.com/zeus-fleet/zeus/internal/envelope"
	"github.com/zeus-fleet/zeus/internal/registry"
	"github.com/zeus-fleet/zeus/internal/zeusid"
	"github.com/zeus-fleet/zeus/internal/zeuserr"
)

// ResolveRecipients maps env's target expression to concrete agents
// (spec §4.D). The sender is env.SourceAgentID; sourcePhalanxID is the
// sender's phalanx as supplied by the caller — polemarch/phalanx
// targets are relative to the sender.
func (q *Queue) ResolveRecipients(env *envelope.Envelope, sourcePhalanxID string) ([]envelope.RecipientRef, error) {
	sourceAgentID, err := zeusid.ParseAgentID(env.SourceAgentID)
	if err != nil {
		return nil, fmt.Errorf("queue: resolving source agent id %q: %w", env.SourceAgentID, zeuserr.ErrUnknownRecipient)
	}

	target := envelope.ParseTarget(env.Target)
	switch target.Kind {
	case envelope.TargetAgentID:
		id, err := zeusid.ParseAgentID(target.Value)
		if err != nil {
			return nil, fmt.Errorf("queue: resolving target %q: %w", env.Target, zeuserr.ErrUnknownRecipient)
		}
		info, ok := q.registry.LookupByID(id)
		if !ok {
			return nil, fmt.Errorf("queue: resolving target %q: %w", env.Target, zeuserr.ErrUnknownRecipient)
		}
		return []envelope.RecipientRef{refFrom(info)}, nil

	case envelope.TargetName:
		matches, err := q.registry.LookupByName(target.Value)
		if err != nil {
			return nil, fmt.Errorf("queue: resolving target %q: %w", env.Target, err)
		}
		if len(matches) > 1 {
			return nil, fmt.Errorf("queue: resolving target %q: %w", env.Target, zeuserr.ErrAmbiguousRecipient)
		}
		return []envelope.RecipientRef{refFrom(matches[0])}, nil

	case envelope.TargetPolemarch:
		parentID, ok := q.registry.ParentOf(sourceAgentID)
		if !ok {
			return nil, fmt.Errorf("queue: resolving polemarch for %q: %w", sourceAgentID, zeuserr.ErrMissingParent)
		}
		info, ok := q.registry.LookupByID(parentID)
		if !ok {
			return nil, fmt.Errorf("queue: resolving polemarch for %q: %w", sourceAgentID, zeuserr.ErrUnknownRecipient)
		}
		return []envelope.RecipientRef{refFrom(info)}, nil

	case envelope.TargetPhalanx:
		members, err := q.registry.ListPhalanx(sourcePhalanxID)
		if err != nil {
			return nil, fmt.Errorf("queue: resolving phalanx %q: %w", sourcePhalanxID, err)
		}
		var refs []envelope.RecipientRef
		for _, m := range members {
			if m.AgentID.Equal(sourceAgentID) {
				continue
			}
			refs = append(refs, refFrom(m))
		}
		if len(refs) == 0 {
			return nil, fmt.Errorf("queue: resolving phalanx %q: %w", sourcePhalanxID, zeuserr.ErrMissingPhalanx)
		}
		return refs, nil
	}

	return nil, fmt.Errorf("queue: unrecognised target %q: %w", env.Target, zeuserr.ErrUnknownRecipient)
}

func refFrom(info registry.AgentInfo) envelope.RecipientRef {
	return envelope.RecipientRef{
		AgentID: info.AgentID.String(),
		Name:    info.Name,
		Role:    info.Role,
	}
}
