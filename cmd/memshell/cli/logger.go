// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the process logger. When stderr is a
// terminal it uses slog.TextHandler for human-readable output;
// otherwise slog.JSONHandler, so piped sessions produce
// machine-parseable logs.
//
// Records go to stderr, never to the console's stdout, so they never
// mix with command output in scripted sessions.
func NewCommandLogger(level slog.Leveler) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
