// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package console

import "strings"

// Completion is the result of completing the last word of a line.
type Completion struct {
	// Line is the edited line. It equals the input when nothing could
	// be completed.
	Line string

	// Choices lists the candidates when more than one matched, for
	// display. Empty when the completion was unique or impossible.
	Choices []string
}

// Complete completes the word under the cursor at the end of line.
// candidates receives the words before it (empty when completing the
// verb) and returns everything that could go in its place.
//
// A unique match replaces the word and appends a space. Several matches
// extend the word to their common prefix and are returned as Choices.
func Complete(line string, candidates func(words []string) []string) Completion {
	words := strings.Fields(line)
	partial := ""
	if len(words) > 0 && !strings.HasSuffix(line, " ") && !strings.HasSuffix(line, "\t") {
		partial = words[len(words)-1]
		words = words[:len(words)-1]
	}

	matches := Suggest(partial, candidates(words))
	head := strings.TrimSuffix(line, partial)

	switch len(matches) {
	case 0:
		return Completion{Line: line}
	case 1:
		return Completion{Line: head + matches[0] + " "}
	}

	completed := partial
	if shared := commonPrefix(matches); strings.HasPrefix(shared, partial) {
		completed = shared
	}
	return Completion{Line: head + completed, Choices: matches}
}
