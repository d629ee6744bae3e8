// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"
)

// =============================================================================
// HELP COMPOSER TESTS
// =============================================================================

func TestHelpGeneral(t *testing.T) {
	e := NewEngine()

	h := e.Help("")
	if len(h.Categories) == 0 {
		t.Fatal("no categories")
	}
	if len(h.GettingStarted) == 0 {
		t.Error("no getting-started examples")
	}
	for _, cat := range h.Categories {
		if len(cat.Commands) == 0 {
			t.Errorf("category %q is empty", cat.Name)
		}
	}
}

func TestHelpEveryCommandCategorized(t *testing.T) {
	chat := NewChatRegistry()
	cats := categorize(chat)

	seen := make(map[string]bool)
	for _, cat := range cats {
		for _, d := range cat.Commands {
			seen[commandToken(d.Command)] = true
		}
	}
	for _, d := range chat.Descriptions() {
		if !seen[commandToken(d.Command)] {
			t.Errorf("command %q appears in no category", d.Command)
		}
	}
}

func TestHelpCommandInMultipleCategories(t *testing.T) {
	chat := NewChatRegistry()
	cats := categorize(chat)

	// /task-note is both a note command and a task command.
	count := 0
	for _, cat := range cats {
		for _, d := range cat.Commands {
			if commandToken(d.Command) == "/task-note" {
				count++
			}
		}
	}
	if count < 2 {
		t.Errorf("/task-note appears in %d categories, want at least 2", count)
	}
}

func TestHelpSpecific(t *testing.T) {
	e := NewEngine()

	h := e.Help("node-create")
	if len(h.Matches) != 1 {
		t.Fatalf("matches = %+v, want exactly /node-create", h.Matches)
	}
	if commandToken(h.Matches[0].Command) != "/node-create" {
		t.Errorf("match = %q", h.Matches[0].Command)
	}

	// Substring search: "tag" matches the whole tag family plus /note-tag.
	h = e.Help("tag")
	if len(h.Matches) < 5 {
		t.Errorf("substring search found %d matches, want the tag family", len(h.Matches))
	}
}

func TestHelpFuzzyFallback(t *testing.T) {
	e := NewEngine()

	h := e.Help("nod-create")
	if len(h.Matches) != 0 {
		t.Fatalf("unexpected substring matches: %+v", h.Matches)
	}
	if h.Suggestion != "/node-create" {
		t.Errorf("suggestion = %q, want /node-create", h.Suggestion)
	}
}
