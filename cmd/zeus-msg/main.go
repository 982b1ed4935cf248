// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// zeus-msg is the one-shot CLI wrapper around internal/queue.Enqueue:
//
//	zeus-msg send --to <target> (--text <s> | --stdin | --file <path>) \
//	    [--from <name>] [--wait-delivery --timeout <sec>]
//
// It prints ZEUS_MSG_ENQUEUED=<id> on success and exits 0 once the
// envelope is durably queued. With --wait-delivery it additionally
// polls until the envelope file disappears from new/ and inflight/
// (meaning every recipient has a receipt), exiting non-zero on
// timeout. Argument parsing itself is intentionally thin — the
// dashboard and other callers are expected to call Enqueue directly.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/envelope"
	"github.com/zeus-fleet/zeus/internal/process"
	"github.com/zeus-fleet/zeus/internal/queue"
	"github.com/zeus-fleet/zeus/internal/sealedstore"
	"github.com/zeus-fleet/zeus/internal/zeusconfig"
)

// exitError signals a non-zero exit without an extra printed message,
// for outcomes (like a delivery timeout) that already explain
// themselves on stdout/stderr.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit code %d", e.code) }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := run(os.Args[1:]); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		process.Fatal(err)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] != "send" {
		return fmt.Errorf("usage: zeus-msg send --to <target> (--text <s> | --stdin | --file <path>) [--from <name>] [--wait-delivery --timeout <sec>]")
	}

	flagSet := pflag.NewFlagSet("zeus-msg send", pflag.ContinueOnError)
	to := flagSet.String("to", "", "target expression (agent:<id>, hoplite:<id>, name:<display>, polemarch, phalanx)")
	text := flagSet.String("text", "", "message text")
	stdin := flagSet.Bool("stdin", false, "read message text from stdin")
	file := flagSet.String("file", "", "read message text from this file")
	from := flagSet.String("from", "", "override sender display name")
	deliverAs := flagSet.String("deliver-as", "followUp", "steer or followUp")
	waitDelivery := flagSet.Bool("wait-delivery", false, "block until the envelope is fully delivered")
	timeoutSeconds := flagSet.Int("timeout", 30, "seconds to wait with --wait-delivery")
	if err := flagSet.Parse(args[1:]); err != nil {
		return err
	}

	if *to == "" {
		return fmt.Errorf("--to is required")
	}
	message, err := resolveMessage(*text, *stdin, *file)
	if err != nil {
		return err
	}

	sourceAgentID := os.Getenv("ZEUS_AGENT_ID")
	sourceRole := os.Getenv("ZEUS_ROLE")
	sourceName := *from
	if sourceName == "" {
		sourceName = sourceAgentID
	}

	cfg, err := zeusconfig.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sealer, err := sealedstore.New(cfg.Seal)
	if err != nil {
		return fmt.Errorf("building sealer: %w", err)
	}

	// zeus-msg does not need the agent registry or capability freshness
	// checker: Enqueue never resolves recipients or touches inboxes, it
	// only durably writes new/<id>.json for the dispatcher to pick up.
	q := queue.New(cfg.MessageQueueDir(), cfg.AgentBusDir(), nil, nil, nil, clock.Real(), queue.ConfigFromQueueConfig(cfg.Queue))
	q.SetSealer(sealer)

	id, err := q.Enqueue(queue.EnqueueRequest{
		SourceAgentID: sourceAgentID,
		SourceName:    sourceName,
		SourceRole:    sourceRole,
		Target:        *to,
		Message:       message,
		DeliverAs:     envelope.DeliverAs(*deliverAs),
	})
	if err != nil {
		return fmt.Errorf("enqueueing: %w", err)
	}
	fmt.Printf("ZEUS_MSG_ENQUEUED=%s\n", id)

	if !*waitDelivery {
		return nil
	}
	return waitForDelivery(cfg, id, time.Duration(*timeoutSeconds)*time.Second)
}

func resolveMessage(text string, stdin bool, file string) (string, error) {
	count := 0
	for _, set := range []bool{text != "", stdin, file != ""} {
		if set {
			count++
		}
	}
	if count != 1 {
		return "", fmt.Errorf("exactly one of --text, --stdin, --file is required")
	}

	switch {
	case text != "":
		return text, nil
	case stdin:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", file, err)
		}
		return string(data), nil
	}
}

// waitForDelivery polls new/ and inflight/ for <id>.json until neither
// exists (the envelope has converged: every recipient has a receipt
// and DispatchOnce deleted it) or timeout elapses.
func waitForDelivery(cfg *zeusconfig.Config, id string, timeout time.Duration) error {
	newPath := filepath.Join(cfg.MessageQueueDir(), "new", id+".json")
	inflightPath := filepath.Join(cfg.MessageQueueDir(), "inflight", id+".json")

	deadline := time.Now().Add(timeout)
	for {
		if !exists(newPath) && !exists(inflightPath) {
			return nil
		}
		if time.Now().After(deadline) {
			fmt.Fprintf(os.Stderr, "zeus-msg: timed out waiting for delivery of %s\n", id)
			return &exitError{code: 1}
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
