// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package palette

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/flowdesk/internal/commands"
)

func keys(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func typeRunes(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialListShowsCommands(t *testing.T) {
	m := New(commands.NewEngine())
	if len(m.filtered) == 0 {
		t.Fatal("expected completions for the empty prompt")
	}
	view := m.View()
	if !strings.Contains(view, "/analyze") {
		t.Errorf("expected /analyze in initial view, got:\n%s", view)
	}
}

func TestTypingFiltersList(t *testing.T) {
	m := New(commands.NewEngine())
	m = keys(t, m, typeRunes("/note-c"))

	if len(m.filtered) != 1 {
		t.Fatalf("expected exactly one completion for /note-c, got %d", len(m.filtered))
	}
	if !strings.HasPrefix(m.filtered[0].Command, "/note-create") {
		t.Errorf("unexpected completion %q", m.filtered[0].Command)
	}
}

func TestMergeDropsDuplicateTokens(t *testing.T) {
	a := []commands.Completion{{Command: "/status", Description: "chat"}}
	b := []commands.Completion{
		{Command: "/status", Description: "workflow"},
		{Command: "/stats", Description: "workflow"},
	}
	out := merge(a, b)
	if len(out) != 2 {
		t.Fatalf("expected 2 merged completions, got %d", len(out))
	}
	if out[0].Description != "chat" {
		t.Errorf("first occurrence should win, got %q", out[0].Description)
	}
}

func TestNavigationAndEnterSetsChoice(t *testing.T) {
	m := New(commands.NewEngine())
	m = keys(t, m,
		typeRunes("/task-"),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyUp},
	)
	if m.selected != 1 {
		t.Fatalf("expected selected index 1, got %d", m.selected)
	}
	want := m.filtered[1].Command

	m = keys(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Choice != want {
		t.Errorf("Choice = %q, want %q", m.Choice, want)
	}
}

func TestEscapeDismissesWithoutChoice(t *testing.T) {
	m := New(commands.NewEngine())
	m = keys(t, m, typeRunes("/help"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.Choice != "" {
		t.Errorf("dismissed palette should have no choice, got %q", m.Choice)
	}
	if m.View() != "" {
		t.Error("dismissed palette should render nothing")
	}
}

func TestTabCompletesInput(t *testing.T) {
	m := New(commands.NewEngine())
	m = keys(t, m, typeRunes("/node-c"), tea.KeyMsg{Type: tea.KeyTab})
	if got := m.input.Value(); got != "/node-create" {
		t.Errorf("tab completion = %q, want /node-create", got)
	}
}

func TestNoMatchesMessage(t *testing.T) {
	m := New(commands.NewEngine())
	m = keys(t, m, typeRunes("/zzz"))
	if !strings.Contains(m.View(), "no matching commands") {
		t.Error("expected the empty-state message")
	}
}
