// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealedstore

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"

	"github.com/zeus-fleet/zeus/internal/zeusconfig"
)

// Sealer encrypts outgoing payloads to a fixed set of recipients and,
// if it holds a private key, decrypts payloads sealed to it. Built
// once per process by New and threaded down like every other
// collaborator in internal/zeusworld.World.
type Sealer struct {
	recipients []age.Recipient
	identity   age.Identity // nil if this process cannot unseal
}

// New builds a Sealer from cfg. A disabled config returns (nil, nil);
// callers treat a nil *Sealer as "payloads travel as plain JSON."
func New(cfg zeusconfig.SealConfig) (*Sealer, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	recipients, err := loadRecipients(cfg.RecipientsFile)
	if err != nil {
		return nil, fmt.Errorf("sealedstore: loading recipients: %w", err)
	}

	var identity age.Identity
	if cfg.IdentityFile != "" {
		identity, err = loadIdentity(cfg.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("sealedstore: loading identity: %w", err)
		}
	}

	return &Sealer{recipients: recipients, identity: identity}, nil
}

// CanUnseal reports whether this Sealer was given a private key.
// Dispatcher-only hosts typically seal without being able to unseal;
// extension hosts need both.
func (s *Sealer) CanUnseal() bool {
	return s != nil && s.identity != nil
}

// Seal encrypts plaintext to the Sealer's recipients and returns a
// base64-encoded ciphertext suitable for a JSON string field.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if s == nil {
		return plaintext, nil
	}
	if len(s.recipients) == 0 {
		return "", fmt.Errorf("sealedstore: no recipients configured")
	}

	var buf bytes.Buffer
	writer, err := age.Encrypt(&buf, s.recipients...)
	if err != nil {
		return "", fmt.Errorf("sealedstore: creating encryptor: %w", err)
	}
	if _, err := io.WriteString(writer, plaintext); err != nil {
		return "", fmt.Errorf("sealedstore: writing plaintext: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("sealedstore: finalizing encryption: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Unseal decrypts a base64-encoded ciphertext produced by Seal. Fails
// if this Sealer has no private key.
func (s *Sealer) Unseal(ciphertext string) (string, error) {
	if s == nil {
		return ciphertext, nil
	}
	if s.identity == nil {
		return "", fmt.Errorf("sealedstore: no private key configured, cannot unseal")
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("sealedstore: decoding base64 ciphertext: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(raw), s.identity)
	if err != nil {
		return "", fmt.Errorf("sealedstore: decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("sealedstore: reading decrypted plaintext: %w", err)
	}
	return string(plaintext), nil
}

// loadRecipients reads one age1... public key per line from path,
// skipping blank lines and #-comments.
func loadRecipients(path string) ([]age.Recipient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var recipients []age.Recipient
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		recipient, err := age.ParseX25519Recipient(line)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient %q: %w", line, err)
		}
		recipients = append(recipients, recipient)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%s: no recipients found", path)
	}
	return recipients, nil
}

// loadIdentity reads a single AGE-SECRET-KEY-1... private key from
// path, which must contain exactly one non-comment, non-blank line.
func loadIdentity(path string) (age.Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return age.ParseX25519Identity(line)
	}
	return nil, fmt.Errorf("%s: no private key found", path)
}
