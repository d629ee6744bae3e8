// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "fmt"

// =============================================================================
// PARSED COMMAND
// =============================================================================

// Result kinds, mirroring the classification a caller dispatches on.
const (
	// KindText is free text (no leading slash); route to free-text handling.
	KindText = "text"

	// KindCommand is a recognized, extracted command.
	KindCommand = "command"

	// KindUnknownCommand is slash input matching no chat grammar.
	KindUnknownCommand = "unknown_command"

	// KindUnknownWorkflow is slash input matching no workflow grammar but
	// containing workflow vocabulary.
	KindUnknownWorkflow = "unknown_workflow_command"

	// KindNonWorkflow is slash input with no workflow vocabulary at all,
	// offered to the workflow rule set. It belongs to another subsystem.
	KindNonWorkflow = "non_workflow_command"

	// KindError is an internal failure during matching or extraction,
	// degraded to free-text handling.
	KindError = "error"
)

// ParsedCommand is the canonical result of interpreting one input line.
//
// Exactly one of these shapes holds:
//   - IsCommand=false: free text (or an internal error degraded to free
//     text); ShouldProcessWithFreeText says what to do with it.
//   - IsCommand=true with CommandType set: a recognized command with Action
//     and Parameters populated.
//   - IsCommand=true with CommandType empty: the unknown-command variant;
//     Error and Suggestion are populated instead.
type ParsedCommand struct {
	IsCommand   bool
	Kind        string
	CommandType string

	// Action is the semantic verb for the execution collaborator,
	// e.g. "create_node".
	Action string

	// Parameters holds the typed, named parameters. Absent optional
	// parameters are omitted from the map entirely.
	Parameters map[string]any

	// RawGroups is the ordered capture sequence the parameters were
	// extracted from.
	RawGroups []Capture

	OriginalInput string

	// Error and Suggestion carry the unknown-command diagnostics.
	Error      string
	Suggestion string

	// Ambiguous lists every matching rule name when more than one grammar
	// matched. The first entry is the rule the permissive parse used.
	Ambiguous []string

	// ShouldProcessWithFreeText is true when the input should flow to the
	// free-text pipeline (context extraction) instead of command handling.
	ShouldProcessWithFreeText bool
}

// Param returns a string parameter, or "" when absent or not a string.
func (p ParsedCommand) Param(name string) string {
	v, _ := p.Parameters[name].(string)
	return v
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult accumulates the outcome of validating one ParsedCommand.
// Errors block execution; warnings and suggestions never affect Valid.
type ValidationResult struct {
	Valid       bool
	Errors      []string
	Warnings    []string
	Suggestions []string
}

func (v *ValidationResult) errorf(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
	v.Valid = false
}

func (v *ValidationResult) warnf(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

func (v *ValidationResult) suggest(s string) {
	v.Suggestions = append(v.Suggestions, s)
}

// =============================================================================
// EXECUTION ENVELOPE
// =============================================================================

// Envelope is the normalized payload handed to the execution collaborator
// for a successfully validated command. The engine never applies the action
// itself.
type Envelope struct {
	Action        string         `json:"action"`
	Parameters    map[string]any `json:"parameters"`
	CommandType   string         `json:"command_type"`
	OriginalInput string         `json:"original_input"`
}
