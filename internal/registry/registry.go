// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/zeus-fleet/zeus/internal/zeusid"
	"github.com/zeus-fleet/zeus/internal/zeuserr"
)

// AgentInfo is everything the registry knows about one agent, enough
// to resolve every target expression in spec §4.D.
type AgentInfo struct {
	AgentID   zeusid.AgentID
	Name      string
	Role      string
	ParentID  zeusid.AgentID // polemarch's id, for resolving "polemarch"
	PhalanxID string         // for resolving "phalanx"
}

// AgentRegistry is the dispatcher-side boundary to agent discovery
// (spec §6). Production deployments supply their own implementation;
// Registry below is the in-memory reference one.
type AgentRegistry interface {
	LookupByID(id zeusid.AgentID) (AgentInfo, bool)
	LookupByName(name string) ([]AgentInfo, error)
	ListPhalanx(phalanxID string) ([]AgentInfo, error)
	ParentOf(agentID zeusid.AgentID) (zeusid.AgentID, bool)
}

// Registry is a mutex-guarded, in-memory AgentRegistry backed by a
// static roster. Intended for tests and single-host deployments where
// a real discovery subsystem is not in the picture.
type Registry struct {
	mu   sync.RWMutex
	byID map[string]AgentInfo
}

// NewRegistry returns an empty Registry. Use Load or Put to populate
// it.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]AgentInfo)}
}

// Put inserts or replaces the entry for info.AgentID. Safe for
// concurrent use alongside lookups.
func (r *Registry) Put(info AgentInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[info.AgentID.String()] = info
}

// Remove deletes the entry for id, if any.
func (r *Registry) Remove(id zeusid.AgentID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id.String())
}

func (r *Registry) LookupByID(id zeusid.AgentID) (AgentInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byID[id.String()]
	return info, ok
}

// LookupByName performs a case-insensitive exact match against
// current display names. Zero matches return an error wrapping
// ErrUnknownRecipient; more than one match is returned as is, and per
// spec §4.D the caller turns that into ErrAmbiguousRecipient.
func (r *Registry) LookupByName(name string) ([]AgentInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(name)
	var matches []AgentInfo
	for _, info := range r.byID {
		if strings.ToLower(info.Name) == needle {
			matches = append(matches, info)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("registry: resolving name %q: %w", name, zeuserr.ErrUnknownRecipient)
	}
	return matches, nil
}

func (r *Registry) ListPhalanx(phalanxID string) ([]AgentInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []AgentInfo
	for _, info := range r.byID {
		if info.PhalanxID == phalanxID {
			members = append(members, info)
		}
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("registry: resolving phalanx %q: %w", phalanxID, zeuserr.ErrMissingPhalanx)
	}
	return members, nil
}

func (r *Registry) ParentOf(agentID zeusid.AgentID) (zeusid.AgentID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byID[agentID.String()]
	if !ok || info.ParentID.IsZero() {
		return zeusid.AgentID{}, false
	}
	return info.ParentID, true
}
