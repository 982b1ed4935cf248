// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inbox

import "context"

// Runtime is the host agent runtime's submit boundary (spec §6's
// "sendUserMessage(text, { deliverAs })"). The extension calls Submit
// once per item, after which — on success — the item is ledgered and
// receipted; on failure the item goes back to new/ for retry.
//
// Submit errors are always treated as retryable (spec §7, SubmitFailed);
// Runtime implementations should not distinguish fatal from transient
// failures here, since the protocol doesn't either.
type Runtime interface {
	Submit(ctx context.Context, message string, deliverAs string) error
}

// Session is the subset of sessionManager (spec §6) the extension
// needs when stamping a receipt: the running session's id, its
// on-disk transcript path, and the agent's id.
type Session struct {
	AgentID     string
	SessionID   string
	SessionPath string
}
