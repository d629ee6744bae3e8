// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Interactive session for flowdesk.
//
// USABILITY: Markdown rendering and history for better CLI experience
//
// Every input line flows through the same pipeline the designer frontend
// uses: the chat rule set gets first refusal, unrecognized slash input is
// offered to the workflow rule set, and everything else is analyzed as
// free text.
//
// Interactive Commands (during the session):
//   /help [topic]       Show available commands
//   /commands           List every command
//   /status             Show system status
//   /quit, /q, /exit    Exit the session
//   Ctrl+C              Cancel current input
//   Ctrl+D              Exit the session

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/morganforge/flowdesk/internal/analysis"
	"github.com/morganforge/flowdesk/internal/commands"
	"github.com/morganforge/flowdesk/internal/config"
	"github.com/morganforge/flowdesk/internal/notes"
	"github.com/morganforge/flowdesk/internal/storage"
	"github.com/morganforge/flowdesk/internal/ui/styles"
	"github.com/morganforge/flowdesk/internal/workflow"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader provides input history and line editing for the session.
// USABILITY: Supports arrow keys for history navigation and line editing.
type LineReader struct {
	line        *liner.State
	historyFile string
}

// NewLineReader creates a line reader with persistent input history.
func NewLineReader(cfg *config.Config) *LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile, err := cfg.HistoryPath()
	if err != nil {
		historyFile = filepath.Join(os.TempDir(), "flowdesk_history")
	}

	r := &LineReader{line: line, historyFile: historyFile}
	r.loadHistory()
	return r
}

func (r *LineReader) loadHistory() {
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with the given prompt. Non-empty input is added
// to the history.
func (r *LineReader) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// saveHistory persists input history with owner-only permissions.
func (r *LineReader) saveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.WriteHistory(f)
}

// Close saves history and releases the terminal.
func (r *LineReader) Close() {
	r.saveHistory()
	r.line.Close()
}

// =============================================================================
// SESSION
// =============================================================================

// Session holds the state of one interactive run: the interpretation
// engine, the in-memory workflow graph, the opportunity store and the
// note-taking bridge, plus the rolling free-text history.
type Session struct {
	cfg    *config.Config
	engine *commands.Engine
	graph  *workflow.Graph
	store  *storage.Store
	bridge *notes.Bridge

	// history feeds conversation-context extraction for free text.
	history []analysis.Message

	// session counters for the exit summary
	commandCount  int
	freeTextCount int

	out io.Writer
}

// NewSession assembles a session from configuration. The opportunity
// store is optional: when the database cannot be opened the session runs
// without it and the storage-backed commands report the failure.
func NewSession(cfg *config.Config) *Session {
	s := &Session{
		cfg:    cfg,
		engine: commands.NewEngine(),
		bridge: notes.NewBridge(cfg.Notes),
		out:    os.Stdout,
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	s.graph = workflow.New(filepath.Join(configDir, "workflows"))

	if dbPath, err := cfg.DatabasePath(); err == nil {
		if store, err := storage.Open(dbPath); err == nil {
			s.store = store
		} else {
			s.printf(styles.Warning, "opportunity store unavailable: %v\n", err)
		}
	}
	return s
}

// Close releases session resources.
func (s *Session) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *Session) printf(style lipgloss.Style, format string, args ...any) {
	text := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintln(s.out, styles.Render(style, s.cfg.UI.Quiet, text))
}

// =============================================================================
// REPL LOOP
// =============================================================================

// exitCommands end the session. These are session controls, not grammar
// rules, so they are handled before interpretation.
var exitCommands = map[string]bool{
	"/quit": true, "/q": true, "/exit": true,
}

// RunREPL starts the interactive session and blocks until exit.
func RunREPL(cfg *config.Config) error {
	session := NewSession(cfg)
	defer session.Close()

	reader := NewLineReader(cfg)
	defer reader.Close()

	if !cfg.UI.Quiet {
		fmt.Println(styles.Title.Render("flowdesk " + Version))
		fmt.Println(styles.Muted.Render("Type /help for commands, Ctrl+D to exit."))
		fmt.Println()
	}

	prompt := "flowdesk> "
	for {
		input, err := reader.ReadInput(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println()
			session.printSummary()
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if exitCommands[strings.ToLower(trimmed)] {
			session.printSummary()
			return nil
		}

		session.Dispatch(context.Background(), input)
	}
}

// printSummary prints the session totals on exit.
func (s *Session) printSummary() {
	if s.cfg.UI.Quiet || s.commandCount+s.freeTextCount == 0 {
		return
	}
	s.printf(styles.Muted, "session: %d commands, %d free-text inputs\n",
		s.commandCount, s.freeTextCount)
}

// =============================================================================
// DISPATCH
// =============================================================================

// Dispatch routes one input line. The chat rule set gets first refusal;
// slash input it does not recognize is offered to the workflow rule set,
// whose keyword screen decides between a workflow suggestion and the
// chat-side unknown-command report. Free text goes to analysis.
func (s *Session) Dispatch(ctx context.Context, input string) {
	s.history = append(s.history, analysis.Message{Content: strings.TrimSpace(input)})

	chatParsed := s.engine.Parse(input, commands.RuleSetChat)
	switch chatParsed.Kind {
	case commands.KindCommand:
		s.commandCount++
		s.runChatCommand(ctx, chatParsed)
		return
	case commands.KindText, commands.KindError:
		s.freeTextCount++
		s.runFreeText(input)
		return
	}

	workflowParsed := s.engine.Parse(input, commands.RuleSetWorkflow)
	switch workflowParsed.Kind {
	case commands.KindCommand:
		s.commandCount++
		s.runWorkflowCommand(workflowParsed)
	case commands.KindUnknownWorkflow:
		s.printUnknown(workflowParsed)
	default:
		// No workflow vocabulary either; report the chat-side diagnosis.
		s.printUnknown(chatParsed)
	}
}

// runWorkflowCommand validates a workflow command and applies it to the
// graph.
func (s *Session) runWorkflowCommand(parsed commands.ParsedCommand) {
	if !s.checkValidation(parsed) {
		return
	}
	env, ok := s.engine.Envelope(parsed)
	if !ok {
		return
	}

	res, err := s.graph.Apply(env.Action, env.Parameters)
	if err != nil {
		s.printf(styles.Error, "error: %v\n", err)
		return
	}
	if res.Message != "" {
		s.printf(styles.Success, "%s\n", res.Message)
	}
	// Listing results carry their rows in Data as a slice; creation results
	// repeat the created element there, which the message already covers.
	if res.Data != nil && reflect.ValueOf(res.Data).Kind() == reflect.Slice {
		fmt.Fprint(s.out, renderData(res.Data))
	}
}

// checkValidation prints validation output and reports whether execution
// should proceed. Warnings and suggestions print either way.
func (s *Session) checkValidation(parsed commands.ParsedCommand) bool {
	v := s.engine.Validate(parsed)
	for _, e := range v.Errors {
		s.printf(styles.Error, "error: %s\n", e)
	}
	for _, w := range v.Warnings {
		s.printf(styles.Warning, "warning: %s\n", w)
	}
	for _, sg := range v.Suggestions {
		s.printf(styles.Suggestion, "hint: %s\n", sg)
	}
	return v.Valid
}

// printUnknown reports an unrecognized command with its closest match.
func (s *Session) printUnknown(parsed commands.ParsedCommand) {
	s.printf(styles.Error, "%s\n", parsed.Error)
	if parsed.Suggestion != "" {
		s.printf(styles.Suggestion, "did you mean %s?\n", parsed.Suggestion)
	}
}

// runFreeText analyzes non-command input and surfaces what the designer
// frontend would: extracted context, a note-worthiness nudge and command
// suggestions.
func (s *Session) runFreeText(input string) {
	profile := analysis.Analyze(input)
	fmt.Fprint(s.out, renderProfile(profile, s.cfg.UI.Quiet))
}
