// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package console

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the interactive console. Keys not
// bound here go to the line editor.
type KeyMap struct {
	Submit   key.Binding
	Complete key.Binding

	// History navigation.
	Previous key.Binding
	Next     key.Binding

	// Interrupt always quits; EndOfInput quits only on an empty line.
	Interrupt  key.Binding
	EndOfInput key.Binding
}

// DefaultKeyMap follows the usual readline conventions.
var DefaultKeyMap = KeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run command"),
	),
	Complete: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "complete"),
	),
	Previous: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "previous command"),
	),
	Next: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "next command"),
	),
	Interrupt: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "exit"),
	),
	EndOfInput: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "exit on empty line"),
	),
}
