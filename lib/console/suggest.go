// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"slices"
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// Suggest returns the candidates that complete prefix.
//
// Candidates that start with prefix are returned in their original
// order. When none do, candidates that fuzzy-match prefix (its
// characters appear in order, case-insensitively) are returned best
// score first, ties keeping candidate order. An empty prefix returns
// every candidate.
func Suggest(prefix string, candidates []string) []string {
	var matches []string
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, prefix) {
			matches = append(matches, candidate)
		}
	}
	if len(matches) > 0 || prefix == "" {
		return matches
	}
	return fuzzyRank(prefix, candidates)
}

type scored struct {
	candidate string
	score     int
}

func fuzzyRank(prefix string, candidates []string) []string {
	// fzf's case-insensitive mode expects a lowercased pattern.
	pattern := []rune(strings.ToLower(prefix))
	slab := util.MakeSlab(100*1024, 2048)

	var ranked []scored
	for _, candidate := range candidates {
		chars := util.ToChars([]byte(candidate))
		result, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, slab)
		if result.Score > 0 {
			ranked = append(ranked, scored{candidate: candidate, score: int(result.Score)})
		}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return b.score - a.score
	})

	matches := make([]string, 0, len(ranked))
	for _, entry := range ranked {
		matches = append(matches, entry.candidate)
	}
	return matches
}

// commonPrefix returns the longest prefix shared by every word.
func commonPrefix(words []string) string {
	if len(words) == 0 {
		return ""
	}
	prefix := words[0]
	for _, word := range words[1:] {
		for !strings.HasPrefix(word, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
