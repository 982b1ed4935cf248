// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the queue inspector. There is no
// focus state to navigate — just refresh and quit.
type KeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

var DefaultKeyMap = KeyMap{
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

func helpLine(km KeyMap) string {
	return km.Refresh.Help().Key + " " + km.Refresh.Help().Desc + "   " +
		km.Quit.Help().Key + " " + km.Quit.Help().Desc
}
