// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands implements the memshell console verbs as
// [cli.Command] values bound to one [session.Session].
//
// [Shell] is the console's dispatcher: it owns the command tree, routes
// each tokenized line through it, and renders results as the one-line
// messages users of the console expect ("Content written", "Directory
// not empty"). Failures are returned as categorized [cli.ToolError]
// values whose message is the text to show; the underlying error stays
// reachable through errors.Is and is logged at debug level.
package commands
