// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealedstore optionally encrypts envelope and inbox item
// payloads at rest using age (filippo.io/age), for deployments that
// don't trust every reader of STATE_DIR (spec §9's sealed-payload
// expansion; baseline behaviour per §1 is plain JSON on a single
// trusted machine).
//
// A Sealer holds the recipient public keys a message is encrypted to
// and, optionally, the private key this process can use to decrypt.
// Unlike the credential-bundle sealing this is adapted from, plaintext
// here is a short chat message rather than a long-lived secret, so
// there is no mmap-locked secure buffer in this package — plaintext
// passes through as an ordinary string and is dropped when the caller
// is done with it.
package sealedstore
