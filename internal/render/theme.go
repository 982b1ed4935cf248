// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import "github.com/charmbracelet/lipgloss"

// Theme carries the small set of colors the terminal markdown renderer
// needs. zeus-queue-inspect uses it to preview an envelope's message
// payload without pulling in a full application theme system.
type Theme struct {
	NormalText       lipgloss.Color
	FaintText        lipgloss.Color
	StatusClosed     lipgloss.Color
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
}

// DefaultTheme is the palette zeus-queue-inspect renders with.
var DefaultTheme = Theme{
	NormalText:       lipgloss.Color("252"),
	FaintText:        lipgloss.Color("245"),
	StatusClosed:     lipgloss.Color("245"),
	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
}
