// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package console reads command lines from the user and hands them to a
// [Dispatcher].
//
// Two front ends share the same dispatch path. [RunLines] reads
// newline-separated commands from any reader and prints no prompt, for
// scripted sessions. [RunInteractive] drives a bubbletea program with a
// single-line editor, command history, and tab completion; command
// output is printed above the prompt line.
//
// The console knows nothing about the storage engine. Completion
// candidates come from [Dispatcher.Candidates] and are ranked by
// [Suggest]: prefix matches first, fuzzy matches (fzf's algorithm) when
// nothing has the prefix.
package console
