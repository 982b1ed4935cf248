// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package zeusconfig provides YAML configuration loading for Zeus
// dispatcher and extension components.
//
// Configuration is loaded from a single file specified by either the
// ZEUS_CONFIG environment variable (via [Load]) or an explicit path
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery, and
// no automatic file search: an unset ZEUS_CONFIG is not an error (the
// [Config] returned by [Default] already has every tunable set to
// the values spec'd throughout the bus design), but an unreadable or
// malformed one is.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches, mirroring the rest of the fleet's
// configuration convention.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${ZEUS_STATE_DIR}, and ${VAR:-default} patterns are
// expanded. No other environment variable silently overrides a config
// value — §6 of the bus design insists on deterministic, auditable
// configuration.
package zeusconfig
