// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Terminal rendering for parse results, help and analysis.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/morganforge/flowdesk/internal/analysis"
	"github.com/morganforge/flowdesk/internal/commands"
	"github.com/morganforge/flowdesk/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// helpWidth clamps the configured help width to the terminal.
func helpWidth(configured int) int {
	width := configured
	if width <= 0 {
		width = 100
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 && cols < width {
			width = cols
		}
	}
	return width
}

// renderMarkdown renders markdown for the terminal, falling back to the
// raw text when the renderer cannot be built.
func renderMarkdown(md string, width int, quiet bool) string {
	if quiet || !styles.Enabled() {
		return md
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// =============================================================================
// HELP
// =============================================================================

// renderHelp renders a help payload as markdown.
func renderHelp(payload commands.HelpPayload, width int, quiet bool) string {
	return renderMarkdown(helpMarkdown(payload), helpWidth(width), quiet)
}

// helpMarkdown composes the markdown document for a help payload.
func helpMarkdown(payload commands.HelpPayload) string {
	var b strings.Builder

	if payload.Topic == "" {
		b.WriteString("# Commands\n\n")
		for _, cat := range payload.Categories {
			fmt.Fprintf(&b, "## %s\n\n", cat.Name)
			for _, d := range cat.Commands {
				fmt.Fprintf(&b, "- `%s` - %s\n", d.Command, d.Summary)
			}
			b.WriteString("\n")
		}
		if len(payload.GettingStarted) > 0 {
			b.WriteString("## Getting started\n\n")
			for _, example := range payload.GettingStarted {
				fmt.Fprintf(&b, "- `%s`\n", example)
			}
			b.WriteString("\n")
		}
		return b.String()
	}

	fmt.Fprintf(&b, "# Help: %s\n\n", payload.Topic)
	if len(payload.Matches) == 0 {
		b.WriteString("No matching commands.\n")
		if payload.Suggestion != "" {
			fmt.Fprintf(&b, "\nDid you mean `%s`?\n", payload.Suggestion)
		}
		return b.String()
	}
	for _, d := range payload.Matches {
		fmt.Fprintf(&b, "- `%s` - %s\n", d.Command, d.Summary)
	}
	return b.String()
}

// =============================================================================
// PARSE RESULTS
// =============================================================================

// renderParsed renders a parse outcome for the parse subcommand.
func renderParsed(parsed commands.ParsedCommand, v commands.ValidationResult, quiet bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "kind:    %s\n", parsed.Kind)
	if parsed.IsCommand && parsed.CommandType != "" {
		fmt.Fprintf(&b, "command: %s\n", parsed.CommandType)
		fmt.Fprintf(&b, "action:  %s\n", parsed.Action)
		if len(parsed.Parameters) > 0 {
			data, err := json.MarshalIndent(parsed.Parameters, "  ", "  ")
			if err == nil {
				fmt.Fprintf(&b, "params:  %s\n", data)
			}
		}
	}
	if len(parsed.Ambiguous) > 1 {
		fmt.Fprintf(&b, "ambiguous: %s\n", strings.Join(parsed.Ambiguous, ", "))
	}
	if parsed.Error != "" {
		b.WriteString(styles.Render(styles.Error, quiet, parsed.Error) + "\n")
	}
	if parsed.Suggestion != "" {
		b.WriteString(styles.Render(styles.Suggestion, quiet, "did you mean "+parsed.Suggestion+"?") + "\n")
	}

	for _, e := range v.Errors {
		b.WriteString(styles.Render(styles.Error, quiet, "error: "+e) + "\n")
	}
	for _, w := range v.Warnings {
		b.WriteString(styles.Render(styles.Warning, quiet, "warning: "+w) + "\n")
	}
	for _, sg := range v.Suggestions {
		b.WriteString(styles.Render(styles.Suggestion, quiet, "hint: "+sg) + "\n")
	}
	return b.String()
}

// =============================================================================
// ANALYSIS
// =============================================================================

// renderProfile renders a free-text analysis profile: extracted context
// first, then the note-worthiness nudge and command suggestions.
func renderProfile(p analysis.Profile, quiet bool) string {
	var b strings.Builder

	if p.Intent != analysis.IntentUnknown {
		b.WriteString(styles.Render(styles.Muted, quiet, "intent: "+p.Intent) + "\n")
	}
	if len(p.Topics) > 0 {
		b.WriteString(styles.Render(styles.Muted, quiet, "topics: "+strings.Join(p.Topics, ", ")) + "\n")
	}
	if len(p.Entities) > 0 {
		parts := make([]string, len(p.Entities))
		for i, e := range p.Entities {
			parts[i] = fmt.Sprintf("%s (%s)", e.Text, e.Type)
		}
		b.WriteString(styles.Render(styles.Muted, quiet, "entities: "+strings.Join(parts, ", ")) + "\n")
	}
	if len(p.References) > 0 {
		b.WriteString(styles.Render(styles.Muted, quiet, "references: "+strings.Join(p.References, ", ")) + "\n")
	}

	if p.NoteWorthy.Worthy {
		b.WriteString(styles.Render(styles.Suggestion, quiet,
			fmt.Sprintf("this looks note-worthy (%.1f), save it with /note-create", p.NoteWorthy.Score)) + "\n")
	}
	for _, c := range p.SuggestedCommands {
		b.WriteString(styles.Render(styles.Suggestion, quiet, c.Command+" - "+c.Reason) + "\n")
	}
	return b.String()
}

// =============================================================================
// DATA
// =============================================================================

// renderTable renders a SQL result set with simple column padding.
func renderTable(cols []string, rows [][]string) string {
	if len(cols) == 0 {
		return "no results\n"
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], cell)
		}
		b.WriteString("\n")
	}
	writeRow(cols)
	for _, row := range rows {
		writeRow(row)
	}
	fmt.Fprintf(&b, "(%d rows)\n", len(rows))
	return b.String()
}

// renderData renders arbitrary result data from a workflow action.
func renderData(data any) string {
	switch v := data.(type) {
	case []string:
		return strings.Join(v, "\n") + "\n"
	case string:
		return v + "\n"
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v\n", v)
		}
		return string(out) + "\n"
	}
}
