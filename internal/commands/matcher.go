// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"unicode"
)

// =============================================================================
// MATCH TYPES
// =============================================================================

// Capture is one regex capture group from a grammar match. Present is false
// when an optional group did not participate in the match.
type Capture struct {
	Value   string
	Present bool
}

// MatchAttempt records one grammar rule that matched an input, with its
// ordered capture groups. Ephemeral, produced per input.
type MatchAttempt struct {
	Command string
	Groups  []Capture
}

// MatchOutcome classifies the result of testing an input against a rule set.
type MatchOutcome int

const (
	// NoMatch means no grammar in the set matched the input.
	NoMatch MatchOutcome = iota

	// SingleMatch means exactly one grammar matched.
	SingleMatch

	// MultiMatch means more than one grammar matched the identical input.
	// Callers decide whether to take the first attempt (permissive mode) or
	// treat the overlap as an authoring error.
	MultiMatch
)

// MatchResult is the full outcome of matching an input against a rule set.
// Attempts preserves registry order.
type MatchResult struct {
	Outcome  MatchOutcome
	Attempts []MatchAttempt
}

// First returns the first attempt in registry order. Only valid when
// Outcome is SingleMatch or MultiMatch.
func (m MatchResult) First() MatchAttempt { return m.Attempts[0] }

// Candidates returns the names of all matching rules in registry order.
func (m MatchResult) Candidates() []string {
	names := make([]string, len(m.Attempts))
	for i, a := range m.Attempts {
		names[i] = a.Command
	}
	return names
}

// =============================================================================
// MATCHER
// =============================================================================

// Match evaluates every grammar rule in registry order and collects all
// rules that match the entire input. Matching is case-insensitive and
// anchored at both ends; partial matches do not count.
//
// Input not starting with "/" is free text and yields NoMatch without
// testing any grammar.
func Match(input string, reg *Registry) MatchResult {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return MatchResult{Outcome: NoMatch}
	}

	var attempts []MatchAttempt
	for _, rule := range reg.All() {
		groups := rule.Pattern.FindStringSubmatchIndex(input)
		if groups == nil {
			continue
		}
		attempts = append(attempts, MatchAttempt{
			Command: rule.Name,
			Groups:  capturesFromIndex(input, groups),
		})
	}

	switch len(attempts) {
	case 0:
		return MatchResult{Outcome: NoMatch}
	case 1:
		return MatchResult{Outcome: SingleMatch, Attempts: attempts}
	default:
		return MatchResult{Outcome: MultiMatch, Attempts: attempts}
	}
}

// capturesFromIndex converts a FindStringSubmatchIndex result into ordered
// Captures, skipping the whole-match pair. A -1 offset marks an optional
// group that did not participate.
func capturesFromIndex(input string, idx []int) []Capture {
	n := len(idx)/2 - 1
	caps := make([]Capture, 0, n)
	for g := 1; g <= n; g++ {
		start, end := idx[2*g], idx[2*g+1]
		if start < 0 {
			caps = append(caps, Capture{})
			continue
		}
		caps = append(caps, Capture{Value: input[start:end], Present: true})
	}
	return caps
}

// =============================================================================
// INPUT CLASSIFICATION HELPERS
// =============================================================================

// IsCommand reports whether the input appears to be a slash command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// ExtractCommandName extracts just the command token from input.
// e.g. `/node-create process "X"` -> "/node-create".
func ExtractCommandName(input string) string {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ""
	}
	end := strings.IndexFunc(input, unicode.IsSpace)
	if end == -1 {
		return input
	}
	return input[:end]
}

// workflowKeywords screens unmatched slash input for workflow vocabulary.
// An unknown command containing one of these is reported as an unknown
// workflow command (with a suggestion) rather than passed through.
var workflowKeywords = []string{
	"node", "task", "flow", "tag", "workflow", "matrix", "select", "view",
	"create", "delete", "move", "connect", "save", "load",
}

// looksLikeWorkflowCommand reports whether unmatched input mentions any
// workflow vocabulary.
func looksLikeWorkflowCommand(input string) bool {
	lower := strings.ToLower(input)
	for _, kw := range workflowKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
