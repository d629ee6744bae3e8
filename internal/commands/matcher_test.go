// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"
)

// =============================================================================
// MATCHER TESTS
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/node-create process", true},
		{"  /help", true},
		{"hello", false},
		{"hello /help", false},
		{"", false},
		{"/", true},
	}

	for _, tc := range tests {
		got := IsCommand(tc.input)
		if got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestExtractCommandName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/help", "/help"},
		{`/node-create process "X"`, "/node-create"},
		{"  /workflow-save  ", "/workflow-save"},
		{"hello", ""},
		{"/", "/"},
	}

	for _, tc := range tests {
		got := ExtractCommandName(tc.input)
		if got != tc.want {
			t.Errorf("ExtractCommandName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestMatchOutcomes(t *testing.T) {
	chat := NewChatRegistry()

	tests := []struct {
		input   string
		outcome MatchOutcome
		command string
	}{
		{"/note-create buy milk", SingleMatch, "note-create"},
		{"/NOTE-CREATE Buy Milk", SingleMatch, "note-create"},
		{"/note_create buy milk", SingleMatch, "note-create"},
		{"  /status  ", SingleMatch, "status"},
		{"/nonexistent thing", NoMatch, ""},
		{"plain text", NoMatch, ""},
		{"/status extra words", NoMatch, ""}, // anchored: no trailing junk
	}

	for _, tc := range tests {
		res := Match(tc.input, chat)
		if res.Outcome != tc.outcome {
			t.Errorf("Match(%q) outcome = %v, want %v", tc.input, res.Outcome, tc.outcome)
			continue
		}
		if tc.outcome == SingleMatch && res.First().Command != tc.command {
			t.Errorf("Match(%q) command = %q, want %q", tc.input, res.First().Command, tc.command)
		}
	}
}

func TestMatchCaptures(t *testing.T) {
	wf := NewWorkflowRegistry()

	res := Match(`/node-create process "Review Documents" 100,200`, wf)
	if res.Outcome != SingleMatch {
		t.Fatalf("outcome = %v, want SingleMatch", res.Outcome)
	}
	g := res.First().Groups
	if len(g) != 5 {
		t.Fatalf("got %d groups, want 5", len(g))
	}
	if g[0].Value != "process" || !g[0].Present {
		t.Errorf("type group = %+v", g[0])
	}
	if g[1].Value != "Review Documents" {
		t.Errorf("quoted name group = %+v", g[1])
	}
	if g[2].Present {
		t.Errorf("bare name group should be absent, got %+v", g[2])
	}
	if g[3].Value != "100" || g[4].Value != "200" {
		t.Errorf("coordinates = %+v, %+v", g[3], g[4])
	}
}

func TestMatchOptionalGroupsAbsent(t *testing.T) {
	wf := NewWorkflowRegistry()

	res := Match("/node-create process", wf)
	if res.Outcome != SingleMatch {
		t.Fatalf("outcome = %v, want SingleMatch", res.Outcome)
	}
	g := res.First().Groups
	for i := 1; i < len(g); i++ {
		if g[i].Present {
			t.Errorf("group %d should be absent, got %+v", i, g[i])
		}
	}
}

func TestMatchMultiMatchSurfaced(t *testing.T) {
	// A permissive catch-all alongside a specific rule reproduces the
	// overlapping-grammar defect class; Match must report both.
	r := newRegistry(RuleSetWorkflow)
	r.register("node-create", `^/node[-_]?create\s+(\w+)(?:\s+"([^"]+)")?$`)
	r.register("node-any", `^/node[-_]?\w+\s+(.+)$`)

	res := Match(`/node-create process "Test Node"`, r)
	if res.Outcome != MultiMatch {
		t.Fatalf("outcome = %v, want MultiMatch", res.Outcome)
	}
	got := res.Candidates()
	if len(got) != 2 || got[0] != "node-create" || got[1] != "node-any" {
		t.Errorf("candidates = %v, want [node-create node-any]", got)
	}
}

func TestLooksLikeWorkflowCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/node-explode thing", true},
		{"/taskify x", true},
		{"/render-view", true},
		{"/frobnicate", false},
		{"/weather london", false},
	}

	for _, tc := range tests {
		if got := looksLikeWorkflowCommand(tc.input); got != tc.want {
			t.Errorf("looksLikeWorkflowCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate rule name")
		}
	}()
	r := newRegistry(RuleSetChat)
	r.register("note", `^/note$`)
	r.register("note", `^/note2$`)
}
