// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"
)

// =============================================================================
// AMBIGUITY LINT TESTS
// =============================================================================

func TestLintExamplesClean(t *testing.T) {
	e := NewEngine()

	if reports := e.Lint(); len(reports) != 0 {
		for _, r := range reports {
			t.Errorf("ambiguous example %q matched %v", r.Input, r.Candidates)
		}
	}
}

func TestLintEveryExampleMatches(t *testing.T) {
	chat := NewChatRegistry()
	wf := NewWorkflowRegistry()

	for _, input := range exampleInvocations {
		chatRes := Match(input, chat)
		wfRes := Match(input, wf)
		if chatRes.Outcome == NoMatch && wfRes.Outcome == NoMatch {
			t.Errorf("documented example %q matches no grammar", input)
		}
	}
}

func TestLintEveryRuleExercised(t *testing.T) {
	chat := NewChatRegistry()
	wf := NewWorkflowRegistry()

	matched := make(map[string]bool)
	for _, input := range exampleInvocations {
		for _, reg := range []*Registry{chat, wf} {
			for _, name := range Match(input, reg).Candidates() {
				matched[string(reg.Set())+"/"+name] = true
			}
		}
	}
	for _, reg := range []*Registry{chat, wf} {
		for _, rule := range reg.All() {
			if !matched[string(reg.Set())+"/"+rule.Name] {
				t.Errorf("rule %s/%s has no documented example", reg.Set(), rule.Name)
			}
		}
	}
}

func TestLintFlagsOverlappingGrammars(t *testing.T) {
	specific := newRegistry(RuleSetWorkflow)
	specific.register("node-create", `^/node[-_]?create\s+(\w+)(?:\s+"([^"]+)")?$`)
	specific.register("node-any", `^/node[-_]?\w+\s+(.+)$`)

	empty := newRegistry(RuleSetChat)

	reports := LintInputs([]string{`/node-create process "Test Node"`}, empty, specific)
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	r := reports[0]
	if len(r.Candidates) != 2 {
		t.Errorf("candidates = %v, want both overlapping rules", r.Candidates)
	}
	if r.Candidates[0] != "workflow/node-create" || r.Candidates[1] != "workflow/node-any" {
		t.Errorf("candidates = %v", r.Candidates)
	}
}
