// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine is the interpretation facade over the two grammar tables. It is
// stateless beyond the immutable registries: every method is a pure
// function of its inputs, safe for concurrent use without locking.
type Engine struct {
	chat     *Registry
	workflow *Registry
}

// NewEngine builds an engine with freshly constructed chat and workflow
// registries.
func NewEngine() *Engine {
	return &Engine{
		chat:     NewChatRegistry(),
		workflow: NewWorkflowRegistry(),
	}
}

// registry returns the rule set's registry; the chat table is the default
// for an unrecognized set name.
func (e *Engine) registry(set RuleSet) *Registry {
	if set == RuleSetWorkflow {
		return e.workflow
	}
	return e.chat
}

// Parse interprets one input line against the named rule set and never
// fails: malformed input degrades to an unknown-command or free-text
// result, and an internal panic during matching or extraction is caught at
// this boundary and converted to an error result that routes the input to
// free-text handling.
//
// When more than one grammar matches, Parse is permissive: it takes the
// first match in registry order and records every candidate in Ambiguous
// so callers can surface or log the overlap.
func (e *Engine) Parse(input string, set RuleSet) (parsed ParsedCommand) {
	defer func() {
		if r := recover(); r != nil {
			parsed = ParsedCommand{
				Kind:                      KindError,
				OriginalInput:             input,
				Error:                     fmt.Sprintf("internal error interpreting input: %v", r),
				ShouldProcessWithFreeText: true,
			}
		}
	}()

	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return ParsedCommand{
			Kind:                      KindText,
			OriginalInput:             input,
			ShouldProcessWithFreeText: true,
		}
	}

	reg := e.registry(set)
	result := Match(trimmed, reg)
	if result.Outcome == NoMatch {
		return e.unmatched(input, trimmed, reg)
	}

	attempt := result.First()
	action, params := extract(attempt.Command, attempt.Groups)
	parsed = ParsedCommand{
		IsCommand:     true,
		Kind:          KindCommand,
		CommandType:   attempt.Command,
		Action:        action,
		Parameters:    params,
		RawGroups:     attempt.Groups,
		OriginalInput: input,
	}
	if result.Outcome == MultiMatch {
		parsed.Ambiguous = result.Candidates()
	}
	return parsed
}

// unmatched classifies slash input no grammar matched. The chat set treats
// everything as an unknown command; the workflow set first screens for
// workflow vocabulary, and input without any belongs to another subsystem
// and flows onward as free text.
func (e *Engine) unmatched(original, trimmed string, reg *Registry) ParsedCommand {
	name := ExtractCommandName(trimmed)

	if reg.Set() == RuleSetWorkflow && !looksLikeWorkflowCommand(trimmed) {
		return ParsedCommand{
			Kind:                      KindNonWorkflow,
			OriginalInput:             original,
			ShouldProcessWithFreeText: true,
		}
	}

	kind := KindUnknownCommand
	if reg.Set() == RuleSetWorkflow {
		kind = KindUnknownWorkflow
	}
	return ParsedCommand{
		IsCommand:     true,
		Kind:          kind,
		OriginalInput: original,
		Error:         fmt.Sprintf("unknown command: %s", name),
		Suggestion:    SuggestSimilar(name, reg),
	}
}

// Validate checks a parsed command against the per-command rule table.
func (e *Engine) Validate(p ParsedCommand) ValidationResult {
	return Validate(p)
}

// Completions returns prefix completions for a partial slash input from the
// named rule set's vocabulary.
func (e *Engine) Completions(partial string, set RuleSet) []Completion {
	return SuggestCompletions(partial, e.registry(set))
}

// Help composes help from the chat vocabulary, which spans both
// subsystems.
func (e *Engine) Help(topic string) HelpPayload {
	return Help(topic, e.chat)
}

// Envelope normalizes a recognized command into the payload handed to the
// execution collaborator. It returns false for free text and
// unknown-command results.
func (e *Engine) Envelope(p ParsedCommand) (Envelope, bool) {
	if !p.IsCommand || p.CommandType == "" {
		return Envelope{}, false
	}
	return Envelope{
		Action:        p.Action,
		Parameters:    p.Parameters,
		CommandType:   p.CommandType,
		OriginalInput: p.OriginalInput,
	}, true
}

// Lint runs the grammar ambiguity lint over the documented examples.
func (e *Engine) Lint() []AmbiguityReport {
	return LintExamples(e.chat, e.workflow)
}
