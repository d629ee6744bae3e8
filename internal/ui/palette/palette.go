// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package palette implements the interactive command palette: a small
// Bubble Tea overlay that filters the command vocabulary by prefix as the
// user types and returns the chosen command.
package palette

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/morganforge/flowdesk/internal/commands"
	"github.com/morganforge/flowdesk/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the palette Bubble Tea model. After the program finishes,
// Choice holds the selected command usage string ("" when dismissed).
type Model struct {
	input    textinput.Model
	engine   *commands.Engine
	filtered []commands.Completion
	selected int
	width    int

	// Choice is the accepted command, set on enter.
	Choice string
	done   bool
}

// New builds a palette over the engine's command vocabulary.
func New(engine *commands.Engine) Model {
	ti := textinput.New()
	ti.Placeholder = "/command"
	ti.Prompt = "> "
	ti.CharLimit = 100
	ti.Width = 50
	ti.PromptStyle = styles.Prompt
	ti.PlaceholderStyle = styles.Muted
	ti.Focus()

	m := Model{input: ti, engine: engine, width: 72}
	m.refilter()
	return m
}

// refilter recomputes the completion list for the current input. An empty
// input lists the chat-set prefix "/" completions.
func (m *Model) refilter() {
	partial := strings.TrimSpace(m.input.Value())
	if partial == "" {
		partial = "/"
	}
	chat := m.engine.Completions(partial, commands.RuleSetChat)
	workflow := m.engine.Completions(partial, commands.RuleSetWorkflow)
	m.filtered = merge(chat, workflow)
	if m.selected >= len(m.filtered) {
		m.selected = 0
	}
}

// merge interleaves chat and workflow completions, dropping duplicate
// command tokens.
func merge(a, b []commands.Completion) []commands.Completion {
	seen := make(map[string]bool, len(a)+len(b))
	var out []commands.Completion
	for _, list := range [][]commands.Completion{a, b} {
		for _, c := range list {
			token := strings.Fields(c.Command)[0]
			if seen[token] {
				continue
			}
			seen[token] = true
			out = append(out, c)
		}
	}
	return out
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.done = true
			return m, tea.Quit

		case "enter":
			if m.selected < len(m.filtered) {
				m.Choice = m.filtered[m.selected].Command
			}
			m.done = true
			return m, tea.Quit

		case "up", "ctrl+p":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.selected < len(m.filtered)-1 {
				m.selected++
			}
			return m, nil

		case "tab":
			// Complete the input to the selected command token.
			if m.selected < len(m.filtered) {
				token := strings.Fields(m.filtered[m.selected].Command)[0]
				m.input.SetValue(token)
				m.input.CursorEnd()
				m.refilter()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refilter()
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if len(m.filtered) == 0 {
		b.WriteString(styles.Muted.Render("  no matching commands"))
		b.WriteString("\n")
		return b.String()
	}

	usageWidth := 0
	for _, c := range m.filtered {
		if w := runewidth.StringWidth(c.Command); w > usageWidth {
			usageWidth = w
		}
	}

	for i, c := range m.filtered {
		line := "  " + runewidth.FillRight(c.Command, usageWidth) + "  " + c.Description
		line = runewidth.Truncate(line, m.width, "…")
		if i == m.selected {
			line = styles.Selected.Render(line)
		} else {
			line = lipgloss.NewStyle().Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(styles.Muted.Render("  enter: accept · tab: complete · esc: dismiss"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the palette program and returns the chosen command.
func Run(engine *commands.Engine) (string, error) {
	p := tea.NewProgram(New(engine))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	return final.(Model).Choice, nil
}
