// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
)

// =============================================================================
// FUZZY SUGGESTION
// =============================================================================

// similarityThreshold is the minimum character-overlap score a candidate
// needs before it is offered as a correction.
const similarityThreshold = 0.3

// completionLimit caps the prefix-completion list.
const completionLimit = 10

// SuggestSimilar fuzzy-matches an unknown command token against the
// registry's command vocabulary and returns the closest known command, or
// "" when nothing scores above the threshold.
//
// The metric is character-set overlap (|intersection| / max length), not
// edit distance: commands sharing the same letters in a different order
// score identically. Ties keep the first candidate in vocabulary order.
func SuggestSimilar(unknown string, reg *Registry) string {
	unknown = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(unknown), "/"))
	if unknown == "" {
		return ""
	}

	best := ""
	bestScore := 0.0
	for _, name := range vocabulary(reg) {
		score := overlapScore(unknown, name)
		if score > bestScore {
			best, bestScore = name, score
		}
	}
	if bestScore <= similarityThreshold {
		return ""
	}
	return "/" + best
}

// overlapScore computes |character intersection| / max(len(a), len(b)).
func overlapScore(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inA := make(map[rune]bool, len(a))
	for _, r := range a {
		inA[r] = true
	}
	shared := make(map[rune]bool, len(b))
	for _, r := range b {
		if inA[r] {
			shared[r] = true
		}
	}
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	return float64(len(shared)) / float64(denom)
}

// vocabulary lists the bare command names (lowercased, slash stripped) from
// the registry's description table, in table order.
func vocabulary(reg *Registry) []string {
	descs := reg.Descriptions()
	names := make([]string, 0, len(descs))
	for _, d := range descs {
		token := d.Command
		if i := strings.IndexByte(token, ' '); i >= 0 {
			token = token[:i]
		}
		names = append(names, strings.ToLower(strings.TrimPrefix(token, "/")))
	}
	return names
}

// =============================================================================
// PREFIX COMPLETIONS
// =============================================================================

// Completion is one prefix-completion candidate for a partial input.
type Completion struct {
	// Command is the full usage form, e.g. "/note-create <content>".
	Command string

	// Description is the one-line summary.
	Description string

	// Remainder is the unentered part of the command token.
	Remainder string
}

// SuggestCompletions filters the registry vocabulary by case-insensitive
// prefix match against the partial input. Exact-prefix matches on the bare
// command token sort first; ties break alphabetically. At most
// completionLimit entries are returned.
func SuggestCompletions(partial string, reg *Registry) []Completion {
	partial = strings.TrimSpace(partial)
	if !strings.HasPrefix(partial, "/") {
		return nil
	}
	lower := strings.ToLower(partial)

	var out []Completion
	for _, d := range reg.Descriptions() {
		token := d.Command
		if i := strings.IndexByte(token, ' '); i >= 0 {
			token = token[:i]
		}
		if !strings.HasPrefix(strings.ToLower(token), lower) {
			continue
		}
		out = append(out, Completion{
			Command:     d.Command,
			Description: d.Summary,
			Remainder:   token[len(partial):],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ei := strings.EqualFold(commandToken(out[i].Command), partial)
		ej := strings.EqualFold(commandToken(out[j].Command), partial)
		if ei != ej {
			return ei
		}
		return out[i].Command < out[j].Command
	})

	if len(out) > completionLimit {
		out = out[:completionLimit]
	}
	return out
}

func commandToken(usage string) string {
	if i := strings.IndexByte(usage, ' '); i >= 0 {
		return usage[:i]
	}
	return usage
}
