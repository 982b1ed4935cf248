// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queue

import (
	"path/filepath"
	"time"

	"github.com/zeus-fleet/zeus/internal/atomicstore"
	"github.com/zeus-fleet/zeus/internal/capability"
	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/envelope"
	"github.com/zeus-fleet/zeus/internal/notify"
	"github.com/zeus-fleet/zeus/internal/registry"
	"github.com/zeus-fleet/zeus/internal/retry"
	"github.com/zeus-fleet/zeus/internal/sealedstore"
	"github.com/zeus-fleet/zeus/internal/zeusconfig"
)

// Queue is the dispatcher's durable outbound envelope queue. One Queue
// per dispatcher process, constructed from an internal/zeusworld.World
// and threaded into internal/drain.Loop.
type Queue struct {
	queueDir string // STATE_DIR/zeus-message-queue
	busDir   string // STATE_DIR/zeus-agent-bus

	registry registry.AgentRegistry
	caps     *capability.Registry
	notifier notify.Notifier
	clk      clock.Clock

	retryPolicy    retry.Policy
	attemptsNotify int
	reresolveAfter time.Duration

	sealer *sealedstore.Sealer
}

// SetSealer installs s as the Queue's message sealer; messages enqueued
// afterward are sealed to s's recipients before being written to disk.
// A nil s (the default) leaves Enqueue writing plain JSON messages.
func (q *Queue) SetSealer(s *sealedstore.Sealer) {
	q.sealer = s
}

// Config bundles the tunables Queue needs beyond its collaborators.
// ConfigFromQueueConfig builds it from internal/zeusconfig.QueueConfig,
// folding RetryBase/RetryCap into RetryPolicy; NotifyThrottle is not
// part of it, since the notifier applies that itself.
type Config struct {
	RetryPolicy    retry.Policy
	AttemptsNotify int
	ReresolveAfter time.Duration
}

// New returns a Queue rooted at queueDir/busDir.
func New(queueDir, busDir string, reg registry.AgentRegistry, caps *capability.Registry, notifier notify.Notifier, clk clock.Clock, cfg Config) *Queue {
	return &Queue{
		queueDir:       queueDir,
		busDir:         busDir,
		registry:       reg,
		caps:           caps,
		notifier:       notifier,
		clk:            clk,
		retryPolicy:    cfg.RetryPolicy,
		attemptsNotify: cfg.AttemptsNotify,
		reresolveAfter: cfg.ReresolveAfter,
	}
}

// ConfigFromQueueConfig converts internal/zeusconfig's QueueConfig
// into the shape Queue needs.
func ConfigFromQueueConfig(cfg zeusconfig.QueueConfig) Config {
	return Config{
		RetryPolicy:    retry.Policy{Base: cfg.RetryBase, Cap: cfg.RetryCap},
		AttemptsNotify: cfg.AttemptsNotify,
		ReresolveAfter: cfg.ReresolveAfter,
	}
}

func (q *Queue) NewDir() string      { return filepath.Join(q.queueDir, "new") }
func (q *Queue) InflightDir() string { return filepath.Join(q.queueDir, "inflight") }

// EnqueueRequest is the dispatcher boundary's Enqueue input (spec §6).
type EnqueueRequest struct {
	SourceAgentID string
	SourceName    string
	SourceRole    string
	Target        string
	Message       string
	DeliverAs     envelope.DeliverAs
}

// Enqueue builds an envelope, assigns it a ULID-style id, and writes
// it to new/<id>.json atomically. Never blocks, never contacts
// recipients, and succeeds even if no dispatcher is currently running
// (spec §4.D) — later startup will drain it.
func (q *Queue) Enqueue(req EnqueueRequest) (string, error) {
	id := envelope.NewID(q.clk)
	now := clock.EpochSeconds(q.clk.Now())

	message := req.Message
	if q.sealer != nil {
		sealed, err := q.sealer.Seal(message)
		if err != nil {
			return "", err
		}
		message = sealed
	}

	env := envelope.Envelope{
		ID:            id,
		SourceAgentID: req.SourceAgentID,
		SourceName:    req.SourceName,
		SourceRole:    req.SourceRole,
		Target:        req.Target,
		Message:       message,
		DeliverAs:     req.DeliverAs,
		CreatedAt:     now,
		UpdatedAt:     now,
		NextAttemptAt: now,
		ContentHash:   envelope.Fingerprint(message),
	}

	if err := atomicstore.EnsureDir(q.NewDir()); err != nil {
		return "", err
	}
	if err := atomicstore.WriteJSONAtomic(filepath.Join(q.NewDir(), id+".json"), env); err != nil {
		return "", err
	}
	return id, nil
}
