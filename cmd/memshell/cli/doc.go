// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework behind memshell's console
// verbs.
//
// The central type is [Command]: a named verb with an optional
// [pflag.FlagSet] factory and a Run function, or a dispatcher over
// [Command.Subcommands]. The console's root command holds one
// subcommand per verb and every input line is dispatched through
// [Command.Execute], which handles flag parsing, help output, and
// "did you mean" suggestions for mistyped verbs and flags (Levenshtein
// distance of at most 3, see suggest.go).
//
// Commands report failures as [ToolError] values whose message is the
// one line the console shows. The category (validation, not_found,
// conflict, internal) travels alongside for logging. [ExitError] lets
// the exit verb hand a status code back to main.
//
// [FlagsFromParams] builds flag sets from tagged structs, and
// [NewCommandLogger] builds the process logger.
package cli
