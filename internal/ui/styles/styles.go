// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for flowdesk terminal output.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// COLORS
// =============================================================================

// Cyan - brand color, commands, prompts
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Purple - accents, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Emerald - success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - warnings
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// TextPrimary - main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextMuted - hints, previews, subtle text
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// Overlay - borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// =============================================================================
// STYLES
// =============================================================================

var (
	// Prompt is the REPL input prompt.
	Prompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	// Command renders a slash command token.
	Command = lipgloss.NewStyle().Foreground(Cyan)

	// Title renders section headings.
	Title = lipgloss.NewStyle().Foreground(Purple).Bold(true)

	// Success renders confirmation messages.
	Success = lipgloss.NewStyle().Foreground(Emerald)

	// Error renders error messages.
	Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	// Warning renders validation warnings.
	Warning = lipgloss.NewStyle().Foreground(Amber)

	// Suggestion renders corrected invocations and hints.
	Suggestion = lipgloss.NewStyle().Foreground(Purple).Italic(true)

	// Muted renders previews, timestamps and secondary text.
	Muted = lipgloss.NewStyle().Foreground(TextMuted)

	// Selected highlights the active palette row.
	Selected = lipgloss.NewStyle().Foreground(TextPrimary).Background(Overlay).Bold(true)
)

// =============================================================================
// TERMINAL DETECTION
// =============================================================================

// Enabled reports whether styled output should be produced. Styling is off
// for dumb terminals and when NO_COLOR is set.
func Enabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// Render applies a style unless styling is disabled or quiet mode asked
// for plain output.
func Render(style lipgloss.Style, quiet bool, s string) string {
	if quiet || !Enabled() {
		return s
	}
	return style.Render(s)
}
