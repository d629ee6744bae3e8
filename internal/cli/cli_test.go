// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/morganforge/flowdesk/internal/analysis"
	"github.com/morganforge/flowdesk/internal/commands"
	"github.com/morganforge/flowdesk/internal/config"
	"github.com/morganforge/flowdesk/internal/notes"
	"github.com/morganforge/flowdesk/internal/workflow"
)

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

func TestParseArgsCommands(t *testing.T) {
	tests := []struct {
		argv []string
		want Command
	}{
		{nil, CmdREPL},
		{[]string{"parse", "/status"}, CmdParse},
		{[]string{"lint"}, CmdLint},
		{[]string{"palette"}, CmdPalette},
		{[]string{"status"}, CmdStatus},
		{[]string{"s"}, CmdStatus},
		{[]string{"version"}, CmdVersion},
		{[]string{"--version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"-h"}, CmdHelp},
		{[]string{"bogus"}, CmdHelp},
	}
	for _, tt := range tests {
		got := ParseArgs(tt.argv)
		if got.Command != tt.want {
			t.Errorf("ParseArgs(%v).Command = %v, want %v", tt.argv, got.Command, tt.want)
		}
	}
}

func TestParseArgsParseCommand(t *testing.T) {
	args := ParseArgs([]string{"parse", "--set", "workflow", "--json", "/node-create process"})
	if args.Command != CmdParse {
		t.Fatalf("Command = %v, want CmdParse", args.Command)
	}
	if args.RuleSet != commands.RuleSetWorkflow {
		t.Errorf("RuleSet = %q, want workflow", args.RuleSet)
	}
	if !args.JSON {
		t.Error("expected JSON flag")
	}
	if args.Input != "/node-create process" {
		t.Errorf("Input = %q", args.Input)
	}
}

func TestParseArgsGlobalFlags(t *testing.T) {
	args := ParseArgs([]string{"-q", "status"})
	if !args.Quiet {
		t.Error("expected quiet")
	}
	if args.Command != CmdStatus {
		t.Errorf("Command = %v, want CmdStatus", args.Command)
	}
}

func TestArgParserFlagForms(t *testing.T) {
	p := NewArgParser([]string{"parse", "--set=workflow", "--json=false", "input"})
	if p.Flag("set") != "workflow" {
		t.Errorf("Flag(set) = %q", p.Flag("set"))
	}
	if p.BoolFlag("json") {
		t.Error("json=false should parse as false")
	}
	if got := p.Rest(); len(got) != 1 || got[0] != "input" {
		t.Errorf("Rest() = %v", got)
	}
}

// =============================================================================
// RENDERING
// =============================================================================

func TestHelpMarkdownGeneral(t *testing.T) {
	payload := commands.Help("", commands.NewChatRegistry())
	md := helpMarkdown(payload)

	for _, want := range []string{"# Commands", "## Notes", "## Getting started", "/note-create"} {
		if !strings.Contains(md, want) {
			t.Errorf("help markdown missing %q", want)
		}
	}
}

func TestHelpMarkdownTopicFallback(t *testing.T) {
	payload := commands.Help("nodecreate", commands.NewChatRegistry())
	md := helpMarkdown(payload)
	if !strings.Contains(md, "No matching commands") {
		t.Errorf("expected no-match message, got:\n%s", md)
	}
	if !strings.Contains(md, "Did you mean") {
		t.Errorf("expected fuzzy fallback, got:\n%s", md)
	}
}

func TestRenderParsedValid(t *testing.T) {
	engine := commands.NewEngine()
	parsed := engine.Parse("/note-create remember the milk", commands.RuleSetChat)
	out := renderParsed(parsed, engine.Validate(parsed), true)

	for _, want := range []string{"kind:    command", "command: note-create", "action:  create_note"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderParsed missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderParsedUnknown(t *testing.T) {
	engine := commands.NewEngine()
	parsed := engine.Parse("/nod-create process", commands.RuleSetWorkflow)
	out := renderParsed(parsed, engine.Validate(parsed), true)

	if !strings.Contains(out, "unknown command") {
		t.Errorf("expected unknown-command error in:\n%s", out)
	}
	if !strings.Contains(out, "/node-create") {
		t.Errorf("expected suggestion in:\n%s", out)
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"id", "title"}, [][]string{
		{"opp-1", "Migrate billing"},
		{"opp-2", "Renew contract"},
	})
	if !strings.Contains(out, "opp-1") || !strings.Contains(out, "(2 rows)") {
		t.Errorf("unexpected table:\n%s", out)
	}
}

func TestRenderProfile(t *testing.T) {
	profile := analysis.Analyze("We need to create a task for opp-123 before the deadline on 12/31/2025")
	out := renderProfile(profile, true)

	if !strings.Contains(out, "intent: create") {
		t.Errorf("expected intent line in:\n%s", out)
	}
	if !strings.Contains(out, "opp-123") {
		t.Errorf("expected entity line in:\n%s", out)
	}
	if !strings.Contains(out, "note-worthy") {
		t.Errorf("expected worthiness nudge in:\n%s", out)
	}
}

// =============================================================================
// SESSION DISPATCH
// =============================================================================

// testSession builds a session without touching the real config dir, the
// database or the nb binary.
func testSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.UI.Quiet = true

	var out bytes.Buffer
	s := &Session{
		cfg:    cfg,
		engine: commands.NewEngine(),
		graph:  workflow.New(t.TempDir()),
		bridge: notes.NewBridge(cfg.Notes),
		out:    &out,
	}
	return s, &out
}

func TestDispatchWorkflowCommand(t *testing.T) {
	s, out := testSession(t)
	s.Dispatch(context.Background(), `/node-create process "Review Documents"`)

	if !strings.Contains(out.String(), "Review Documents") {
		t.Errorf("expected creation message, got:\n%s", out.String())
	}
}

func TestDispatchUnknownWorkflowCommand(t *testing.T) {
	s, out := testSession(t)
	s.Dispatch(context.Background(), "/nod-create process")

	if !strings.Contains(out.String(), "did you mean /node-create?") {
		t.Errorf("expected suggestion, got:\n%s", out.String())
	}
}

func TestDispatchInvalidCommandDoesNotExecute(t *testing.T) {
	s, out := testSession(t)
	s.Dispatch(context.Background(), "/node-create blob")

	text := out.String()
	if !strings.Contains(text, `invalid type "blob"`) {
		t.Errorf("expected validation error, got:\n%s", text)
	}
	if strings.Contains(text, "created") {
		t.Errorf("invalid command must not execute, got:\n%s", text)
	}
}

func TestDispatchFreeText(t *testing.T) {
	s, out := testSession(t)
	s.Dispatch(context.Background(), "We should create a new task for the client meeting")

	if !strings.Contains(out.String(), "intent: create") {
		t.Errorf("expected analysis output, got:\n%s", out.String())
	}
}

func TestDispatchHelp(t *testing.T) {
	s, out := testSession(t)
	s.Dispatch(context.Background(), "/help node-create")

	if !strings.Contains(out.String(), "/node-create") {
		t.Errorf("expected help output, got:\n%s", out.String())
	}
}

func TestDispatchRecordsHistory(t *testing.T) {
	s, _ := testSession(t)
	s.Dispatch(context.Background(), "/matrix-enter")
	s.Dispatch(context.Background(), "budget approval is pending")

	conv := analysis.AnalyzeConversation(s.history)
	if len(conv.RecentCommands) != 1 || conv.RecentCommands[0] != "/matrix-enter" {
		t.Errorf("RecentCommands = %v", conv.RecentCommands)
	}
}
