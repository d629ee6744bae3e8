// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strconv"
	"strings"
)

// =============================================================================
// PARAMETER EXTRACTION
// =============================================================================

// extractorFunc maps the ordered capture groups of one matched grammar to a
// semantic action and a named-parameter record. Extractors are pure; absent
// optional captures map to documented defaults or are omitted entirely.
type extractorFunc func(groups []Capture) (action string, params map[string]any)

// extract resolves the extractor for a command name across both tables.
// Every registered rule has an extractor (enforced by tests); the fallback
// action exists only as a safety net for grammars added without one.
func extract(command string, groups []Capture) (string, map[string]any) {
	if fn, ok := chatExtractors[command]; ok {
		return fn(groups)
	}
	if fn, ok := workflowExtractors[command]; ok {
		return fn(groups)
	}
	return "handle_" + strings.ReplaceAll(command, "-", "_"), map[string]any{}
}

// group returns the capture value at i, or "" when absent or out of range.
func group(groups []Capture, i int) string {
	if i >= len(groups) || !groups[i].Present {
		return ""
	}
	return groups[i].Value
}

// has reports whether the capture at i participated in the match.
func has(groups []Capture, i int) bool {
	return i < len(groups) && groups[i].Present
}

// either returns the first present capture of the alternatives - used for
// grammars that accept a quoted or bare-word form of the same slot.
func either(groups []Capture, i, j int) (string, bool) {
	if has(groups, i) {
		return groups[i].Value, true
	}
	if has(groups, j) {
		return groups[j].Value, true
	}
	return "", false
}

// confirmed maps the literal confirmation tokens to true; anything else,
// including an absent capture, is false.
func confirmed(token string) bool {
	return strings.EqualFold(token, "yes") || strings.EqualFold(token, "confirm")
}

// =============================================================================
// CHAT EXTRACTORS
// =============================================================================

var chatExtractors = map[string]extractorFunc{
	"note": func(g []Capture) (string, map[string]any) {
		return "create_note", map[string]any{"content": group(g, 0)}
	},
	"note-create": func(g []Capture) (string, map[string]any) {
		return "create_note", map[string]any{"content": group(g, 0)}
	},
	"note-search": func(g []Capture) (string, map[string]any) {
		return "search_notes", map[string]any{"query": group(g, 0)}
	},
	"note-find": func(g []Capture) (string, map[string]any) {
		return "search_notes", map[string]any{"query": group(g, 0)}
	},
	"note-tag": func(g []Capture) (string, map[string]any) {
		return "add_tags_to_note", map[string]any{
			"note_id": group(g, 0),
			"tags":    strings.Fields(group(g, 1)),
		}
	},
	"note-list": func(g []Capture) (string, map[string]any) {
		return "list_notes", map[string]any{"filters": ParseFilters(group(g, 0))}
	},
	"note-link": func(g []Capture) (string, map[string]any) {
		return "link_note", map[string]any{
			"note_id":   group(g, 0),
			"target_id": group(g, 1),
		}
	},

	"opp": func(g []Capture) (string, map[string]any) {
		return "handle_opp", map[string]any{"content": group(g, 0)}
	},
	"opp-create": func(g []Capture) (string, map[string]any) {
		// "Title - description" splits on the first separator; the title may
		// be quoted.
		title, description, _ := strings.Cut(group(g, 0), " - ")
		return "create_opportunity", map[string]any{
			"title":       strings.Trim(title, `"'`),
			"description": description,
		}
	},
	"opp-list": func(g []Capture) (string, map[string]any) {
		return "list_opportunities", map[string]any{"filters": ParseFilters(group(g, 0))}
	},
	"opp-link": func(g []Capture) (string, map[string]any) {
		return "link_opportunity", map[string]any{
			"opp_id":    group(g, 0),
			"target_id": group(g, 1),
		}
	},
	"opp-search": func(g []Capture) (string, map[string]any) {
		return "search_opportunities", map[string]any{"query": group(g, 0)}
	},

	"task-note": func(g []Capture) (string, map[string]any) {
		return "create_task_note", map[string]any{
			"task_id": group(g, 0),
			"content": group(g, 1),
		}
	},
	"task-link": func(g []Capture) (string, map[string]any) {
		return "link_task", map[string]any{
			"task_id": group(g, 0),
			"note_id": group(g, 1),
		}
	},

	"analyze": func(g []Capture) (string, map[string]any) {
		return "analyze_text", map[string]any{"text": group(g, 0)}
	},
	"suggest": func(g []Capture) (string, map[string]any) {
		params := map[string]any{}
		if has(g, 0) {
			params["context"] = g[0].Value
		}
		return "suggest_for_context", params
	},
	"associate": func(g []Capture) (string, map[string]any) {
		return "create_association", map[string]any{
			"id1": group(g, 0),
			"id2": group(g, 1),
		}
	},

	"sql": extractSQL,
	"db-query": extractSQL,

	"help": func(g []Capture) (string, map[string]any) {
		params := map[string]any{}
		if has(g, 0) {
			params["topic"] = g[0].Value
		}
		return "show_help", params
	},
	"commands": func(g []Capture) (string, map[string]any) {
		return "list_commands", map[string]any{}
	},
	"status": func(g []Capture) (string, map[string]any) {
		return "show_status", map[string]any{}
	},
}

// extractSQL handles the quoted-or-bare query alternatives of /sql and
// /db-query.
func extractSQL(g []Capture) (string, map[string]any) {
	query, _ := either(g, 0, 1)
	return "execute_sql", map[string]any{"query": query}
}

// =============================================================================
// WORKFLOW EXTRACTORS
// =============================================================================

var workflowExtractors = map[string]extractorFunc{
	"node-create": func(g []Capture) (string, map[string]any) {
		params := map[string]any{"type": defaultStr(group(g, 0), "process")}
		// Quoted and bare names are alternate captures for the same slot.
		if name, ok := either(g, 1, 2); ok {
			params["name"] = name
		}
		if has(g, 3) && has(g, 4) {
			params["x"] = mustInt(g[3].Value)
			params["y"] = mustInt(g[4].Value)
		}
		return "create_node", params
	},
	"node-delete": func(g []Capture) (string, map[string]any) {
		return "delete_node", map[string]any{"identifier": group(g, 0)}
	},
	"node-rename": func(g []Capture) (string, map[string]any) {
		return "rename_node", map[string]any{
			"old_name": group(g, 0),
			"new_name": group(g, 1),
		}
	},
	"node-move": func(g []Capture) (string, map[string]any) {
		return "move_node", map[string]any{
			"identifier": group(g, 0),
			"x":          mustInt(group(g, 1)),
			"y":          mustInt(group(g, 2)),
		}
	},
	"node-type": func(g []Capture) (string, map[string]any) {
		return "change_node_type", map[string]any{
			"identifier": group(g, 0),
			"type":       group(g, 1),
		}
	},

	"task-create": func(g []Capture) (string, map[string]any) {
		params := map[string]any{
			"name":     group(g, 0),
			"priority": defaultStr(group(g, 2), "normal"),
		}
		if has(g, 1) {
			params["node"] = g[1].Value
		}
		return "create_task", params
	},
	"task-delete": func(g []Capture) (string, map[string]any) {
		return "delete_task", map[string]any{"identifier": group(g, 0)}
	},
	"task-move": func(g []Capture) (string, map[string]any) {
		return "move_task", map[string]any{
			"task":        group(g, 0),
			"target_node": group(g, 1),
		}
	},
	"task-advance": func(g []Capture) (string, map[string]any) {
		return "advance_task", map[string]any{
			"task":        group(g, 0),
			"target_node": group(g, 1),
		}
	},
	"task-priority": func(g []Capture) (string, map[string]any) {
		return "set_task_priority", map[string]any{
			"task":     group(g, 0),
			"priority": group(g, 1),
		}
	},

	"flowline-create": func(g []Capture) (string, map[string]any) {
		return "create_flowline", map[string]any{
			"source": group(g, 0),
			"target": group(g, 1),
			"type":   defaultStr(group(g, 2), "sequence"),
		}
	},
	"flowline-delete": func(g []Capture) (string, map[string]any) {
		return "delete_flowline", map[string]any{
			"source": group(g, 0),
			"target": group(g, 1),
		}
	},
	"flowline-type": func(g []Capture) (string, map[string]any) {
		return "change_flowline_type", map[string]any{
			"source": group(g, 0),
			"target": group(g, 1),
			"type":   group(g, 2),
		}
	},
	"disconnect-all": func(g []Capture) (string, map[string]any) {
		return "disconnect_all_flowlines", map[string]any{}
	},

	"tag-create": func(g []Capture) (string, map[string]any) {
		params := map[string]any{
			"name":     group(g, 0),
			"category": defaultStr(group(g, 1), "general"),
		}
		if has(g, 2) {
			params["properties"] = g[2].Value
		}
		return "create_tag", params
	},
	"tag-add": func(g []Capture) (string, map[string]any) {
		return "add_tag", map[string]any{
			"tag":     group(g, 0),
			"element": group(g, 1),
		}
	},
	"tag-remove": func(g []Capture) (string, map[string]any) {
		return "remove_tag", map[string]any{
			"tag":     group(g, 0),
			"element": group(g, 1),
		}
	},
	"tag-list": func(g []Capture) (string, map[string]any) {
		return "list_tags", map[string]any{"filters": ParseFilters(group(g, 0))}
	},

	"workflow-save": func(g []Capture) (string, map[string]any) {
		params := map[string]any{}
		if has(g, 0) {
			params["filename"] = g[0].Value
		}
		return "save_workflow", params
	},
	"workflow-load": func(g []Capture) (string, map[string]any) {
		return "load_workflow", map[string]any{"filename": group(g, 0)}
	},
	"workflow-export": func(g []Capture) (string, map[string]any) {
		return "export_workflow", map[string]any{"format": defaultStr(group(g, 0), "json")}
	},
	"workflow-clear": func(g []Capture) (string, map[string]any) {
		return "clear_workflow", map[string]any{"confirmed": confirmed(group(g, 0))}
	},
	"workflow-status": func(g []Capture) (string, map[string]any) {
		return "show_workflow_status", map[string]any{}
	},
	"workflow-stats": func(g []Capture) (string, map[string]any) {
		return "show_workflow_stats", map[string]any{}
	},

	"matrix-enter": func(g []Capture) (string, map[string]any) {
		return "enter_matrix_mode", map[string]any{}
	},
	"matrix-exit": func(g []Capture) (string, map[string]any) {
		return "exit_matrix_mode", map[string]any{}
	},
	"matrix-move": func(g []Capture) (string, map[string]any) {
		return "move_task_in_matrix", map[string]any{
			"task":     group(g, 0),
			"quadrant": group(g, 1),
		}
	},
	"matrix-show": func(g []Capture) (string, map[string]any) {
		params := map[string]any{}
		if has(g, 0) {
			params["quadrant"] = g[0].Value
		}
		return "show_matrix_quadrant", params
	},

	"view-zoom": func(g []Capture) (string, map[string]any) {
		return "zoom_view", map[string]any{"level": group(g, 0)}
	},
	"view-center": func(g []Capture) (string, map[string]any) {
		params := map[string]any{}
		if has(g, 0) {
			params["target"] = g[0].Value
		}
		return "center_view", params
	},
	"view-focus": func(g []Capture) (string, map[string]any) {
		return "focus_element", map[string]any{"element": group(g, 0)}
	},

	"select": func(g []Capture) (string, map[string]any) {
		return "select_element", map[string]any{"target": group(g, 0)}
	},
	"select-all": func(g []Capture) (string, map[string]any) {
		params := map[string]any{}
		if has(g, 0) {
			params["type"] = g[0].Value
		}
		return "select_all", params
	},
	"select-none": func(g []Capture) (string, map[string]any) {
		return "clear_selection", map[string]any{}
	},
	"select-by": func(g []Capture) (string, map[string]any) {
		return "select_by_criteria", map[string]any{"criteria": group(g, 0)}
	},

	"goto": func(g []Capture) (string, map[string]any) {
		return "navigate_to_element", map[string]any{"target": group(g, 0)}
	},
	"find": func(g []Capture) (string, map[string]any) {
		return "find_element", map[string]any{"query": group(g, 0)}
	},
	"next": func(g []Capture) (string, map[string]any) {
		return "navigate_next", optionalType(g)
	},
	"previous": func(g []Capture) (string, map[string]any) {
		return "navigate_previous", optionalType(g)
	},

	"batch-create": func(g []Capture) (string, map[string]any) {
		return "batch_create_elements", map[string]any{
			"type": group(g, 0),
			"data": group(g, 1),
		}
	},
	"batch-connect": func(g []Capture) (string, map[string]any) {
		return "batch_connect_elements", map[string]any{
			"sources": group(g, 0),
			"targets": group(g, 1),
		}
	},
	"batch-tag": func(g []Capture) (string, map[string]any) {
		return "batch_tag_elements", map[string]any{
			"tag":      group(g, 0),
			"elements": group(g, 1),
		}
	},
}

func optionalType(g []Capture) map[string]any {
	params := map[string]any{}
	if has(g, 0) {
		params["type"] = g[0].Value
	}
	return params
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// mustInt converts a digits-only capture. Grammars only capture \d+ here,
// so failure cannot happen on matched input.
func mustInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
