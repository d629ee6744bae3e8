// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"slices"
	"strings"
)

// =============================================================================
// VALIDATION
// =============================================================================

// Length floors and ceilings for free-text parameters, and the canvas the
// position warnings check against.
const (
	minContentLen = 3
	minQueryLen   = 2
	maxContentLen = 10000

	canvasMin = 0
	canvasMax = 2000
)

// validatorFunc checks one command type's parameters. Multiple independent
// checks may fire; the function appends to v rather than returning early.
type validatorFunc func(p ParsedCommand, v *ValidationResult)

// Validate checks a parsed command against its command type's rule table.
// Errors make the result invalid; warnings and suggestions never do.
// Commands without a rule table entry validate trivially.
//
// On a valid result an advisory pass runs as well, adding style warnings
// (generic titles and the like) that do not affect validity.
func Validate(p ParsedCommand) ValidationResult {
	v := ValidationResult{Valid: true}
	if !p.IsCommand || p.CommandType == "" {
		v.errorf("not a recognized command")
		return v
	}
	if fn, ok := validators[p.CommandType]; ok {
		fn(p, &v)
	}
	if v.Valid {
		advise(p, &v)
	}
	return v
}

var validators = map[string]validatorFunc{
	// ----- chat: notes -----
	"note":        validateNoteContent,
	"note-create": validateNoteContent,
	"note-search": validateQuery("query"),
	"note-find":   validateQuery("query"),
	"note-tag": func(p ParsedCommand, v *ValidationResult) {
		requireID(p, v, "note_id")
		if tags, _ := p.Parameters["tags"].([]string); len(tags) == 0 {
			v.errorf("at least one tag is required")
		}
	},
	"note-link": validateLink("note_id", "target_id"),

	// ----- chat: opportunities -----
	"opp": func(p ParsedCommand, v *ValidationResult) {
		if len(strings.TrimSpace(p.Param("content"))) < minContentLen {
			v.errorf("opportunity content must be at least %d characters", minContentLen)
		}
	},
	"opp-create": func(p ParsedCommand, v *ValidationResult) {
		if len(strings.TrimSpace(p.Param("title"))) < minContentLen {
			v.errorf("opportunity title must be at least %d characters", minContentLen)
		}
	},
	"opp-link":   validateLink("opp_id", "target_id"),
	"opp-search": validateQuery("query"),

	// ----- chat: tasks -----
	"task-note": func(p ParsedCommand, v *ValidationResult) {
		requireID(p, v, "task_id")
		if len(strings.TrimSpace(p.Param("content"))) < minContentLen {
			v.errorf("note content must be at least %d characters", minContentLen)
		}
	},
	"task-link": validateLink("task_id", "note_id"),

	// ----- chat: analysis and database -----
	"analyze":   validateQuery("text"),
	"associate": validateLink("id1", "id2"),
	"sql":       validateQuery("query"),
	"db-query":  validateQuery("query"),

	// ----- workflow: nodes -----
	"node-create": func(p ParsedCommand, v *ValidationResult) {
		enum(p, v, "type", NodeTypes)
		checkCanvasBounds(p, v)
	},
	"node-move": func(p ParsedCommand, v *ValidationResult) {
		requireID(p, v, "identifier")
		checkCanvasBounds(p, v)
	},
	"node-type": func(p ParsedCommand, v *ValidationResult) {
		requireID(p, v, "identifier")
		enum(p, v, "type", NodeTypes)
	},
	"node-rename": func(p ParsedCommand, v *ValidationResult) {
		if strings.TrimSpace(p.Param("new_name")) == "" {
			v.errorf("new name must not be empty")
		}
	},

	// ----- workflow: tasks -----
	"task-create": func(p ParsedCommand, v *ValidationResult) {
		if len(strings.TrimSpace(p.Param("name"))) < minQueryLen {
			v.errorf("task name must be at least %d characters", minQueryLen)
		}
		enum(p, v, "priority", TaskPriorities)
	},
	"task-priority": func(p ParsedCommand, v *ValidationResult) {
		requireID(p, v, "task")
		enum(p, v, "priority", TaskPriorities)
	},
	"task-move":    validateLink("task", "target_node"),
	"task-advance": validateLink("task", "target_node"),

	// ----- workflow: flowlines -----
	"flowline-create": func(p ParsedCommand, v *ValidationResult) {
		validateEndpoints(p, v)
		enum(p, v, "type", FlowlineTypes)
	},
	"flowline-delete": func(p ParsedCommand, v *ValidationResult) {
		validateEndpoints(p, v)
	},
	"flowline-type": func(p ParsedCommand, v *ValidationResult) {
		validateEndpoints(p, v)
		enum(p, v, "type", FlowlineTypes)
	},

	// ----- workflow: tags -----
	"tag-create": func(p ParsedCommand, v *ValidationResult) {
		if strings.TrimSpace(p.Param("name")) == "" {
			v.errorf("tag name must not be empty")
		}
	},
	"tag-add":    validateLink("tag", "element"),
	"tag-remove": validateLink("tag", "element"),

	// ----- workflow: lifecycle -----
	"workflow-export": func(p ParsedCommand, v *ValidationResult) {
		enum(p, v, "format", ExportFormats)
	},
	"workflow-clear": func(p ParsedCommand, v *ValidationResult) {
		// Destructive without confirmation: flagged, not blocked. The caller
		// decides whether to prompt.
		if ok, _ := p.Parameters["confirmed"].(bool); !ok {
			v.warnf("this will clear the entire workflow")
			v.suggest("/workflow-clear confirm")
		}
	},
	"workflow-load": func(p ParsedCommand, v *ValidationResult) {
		if strings.TrimSpace(p.Param("filename")) == "" {
			v.errorf("filename is required")
		}
	},

	// ----- workflow: matrix, view, selection -----
	"matrix-move": func(p ParsedCommand, v *ValidationResult) {
		requireID(p, v, "task")
		enum(p, v, "quadrant", MatrixQuadrants)
	},
	"matrix-show": func(p ParsedCommand, v *ValidationResult) {
		enum(p, v, "quadrant", MatrixQuadrants)
	},
	"view-zoom": func(p ParsedCommand, v *ValidationResult) {
		level := strings.ToLower(p.Param("level"))
		if !slices.Contains(ViewZoomLevels, level) && !allDigits(level) {
			v.errorf("zoom level must be one of %s or a percentage", oneOf(ViewZoomLevels))
		}
	},
	"select-all": func(p ParsedCommand, v *ValidationResult) {
		enum(p, v, "type", ElementTypes)
	},
	"next":     func(p ParsedCommand, v *ValidationResult) { enum(p, v, "type", ElementTypes) },
	"previous": func(p ParsedCommand, v *ValidationResult) { enum(p, v, "type", ElementTypes) },

	// ----- workflow: batch -----
	"batch-create": func(p ParsedCommand, v *ValidationResult) {
		enum(p, v, "type", ElementTypes)
		if strings.TrimSpace(p.Param("data")) == "" {
			v.errorf("element list must not be empty")
		}
	},
	"batch-connect": validateLink("sources", "targets"),
	"batch-tag":     validateLink("tag", "elements"),
}

// =============================================================================
// RULE HELPERS
// =============================================================================

func validateNoteContent(p ParsedCommand, v *ValidationResult) {
	content := strings.TrimSpace(p.Param("content"))
	if len(content) < minContentLen {
		v.errorf("note content must be at least %d characters", minContentLen)
		return
	}
	if len(content) > maxContentLen {
		v.warnf("note content is very long (%d characters); consider splitting it", len(content))
	}
}

func validateQuery(field string) validatorFunc {
	return func(p ParsedCommand, v *ValidationResult) {
		if len(strings.TrimSpace(p.Param(field))) < minQueryLen {
			v.errorf("%s must be at least %d characters", field, minQueryLen)
		}
	}
}

// validateLink requires both endpoint identifiers of a linking command.
func validateLink(a, b string) validatorFunc {
	return func(p ParsedCommand, v *ValidationResult) {
		requireID(p, v, a)
		requireID(p, v, b)
	}
}

func validateEndpoints(p ParsedCommand, v *ValidationResult) {
	requireID(p, v, "source")
	requireID(p, v, "target")
}

func requireID(p ParsedCommand, v *ValidationResult, field string) {
	if strings.TrimSpace(p.Param(field)) == "" {
		v.errorf("%s is required", strings.ReplaceAll(field, "_", " "))
	}
}

// enum checks an enumerated field against its closed allowed-set. Absent
// fields pass: defaults are applied at extraction, so absence means the
// parameter genuinely does not apply.
func enum(p ParsedCommand, v *ValidationResult, field string, allowed []string) {
	raw, ok := p.Parameters[field].(string)
	if !ok || raw == "" {
		return
	}
	if !slices.Contains(allowed, strings.ToLower(raw)) {
		v.errorf("invalid %s %q; must be one of %s", field, raw, oneOf(allowed))
	}
}

// checkCanvasBounds warns on positions outside the canvas. Out-of-bounds
// placements are accepted; the designer clamps them on render.
func checkCanvasBounds(p ParsedCommand, v *ValidationResult) {
	for _, axis := range []string{"x", "y"} {
		n, ok := p.Parameters[axis].(int)
		if !ok {
			continue
		}
		if n < canvasMin || n > canvasMax {
			v.warnf("%s=%d is outside the canvas (%d-%d)", axis, n, canvasMin, canvasMax)
		}
	}
}

func oneOf(allowed []string) string {
	return "{" + strings.Join(allowed, ", ") + "}"
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// =============================================================================
// ADVISORY PASS
// =============================================================================

// genericNames are placeholder-looking titles worth flagging.
var genericNames = []string{"test", "todo", "untitled", "new", "temp", "foo"}

// advise runs best-practice checks for commands that validated cleanly.
// Advisories are warnings and suggestions only; Valid is already settled.
func advise(p ParsedCommand, v *ValidationResult) {
	switch p.CommandType {
	case "opp-create":
		title := strings.ToLower(strings.TrimSpace(p.Param("title")))
		if slices.Contains(genericNames, title) {
			v.warnf("title %q looks generic; a descriptive title searches better", p.Param("title"))
		}
		if p.Param("description") == "" {
			v.suggest(fmt.Sprintf("/opp-create %s - <description>", p.Param("title")))
		}
	case "node-create", "task-create", "tag-create":
		name := strings.ToLower(strings.TrimSpace(p.Param("name")))
		if name != "" && slices.Contains(genericNames, name) {
			v.warnf("name %q looks generic", p.Param("name"))
		}
	case "sql", "db-query":
		q := strings.ToLower(strings.TrimSpace(p.Param("query")))
		if !strings.HasPrefix(q, "select") {
			v.warnf("non-SELECT statement; it will modify the database")
		}
	}
}
