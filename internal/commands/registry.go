// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands implements the slash command interpretation engine.
package commands

import (
	"fmt"
	"regexp"
)

// =============================================================================
// GRAMMAR RULE
// =============================================================================

// GrammarRule is a named pattern plus its capture layout, matching a full
// command line. Rules are compiled once at registry construction and never
// modified afterwards.
type GrammarRule struct {
	// Name is the command identity, unique within a registry (e.g. "note-create").
	Name string

	// Pattern is the compiled grammar. Patterns are anchored at both ends
	// and case-insensitive; whitespace between tokens is one-or-more spaces.
	Pattern *regexp.Regexp
}

// Description pairs a command usage string with its help text. The usage
// string doubles as the suggestion/completion vocabulary entry.
type Description struct {
	// Command is the usage form, e.g. "/note-create <content>".
	Command string

	// Summary is the one-line help text.
	Summary string
}

// =============================================================================
// REGISTRY
// =============================================================================

// RuleSet names one of the two independent grammar tables.
type RuleSet string

const (
	// RuleSetChat is the general chat command set (notes, opportunities,
	// analysis, database, help).
	RuleSetChat RuleSet = "chat"

	// RuleSetWorkflow is the workflow-specific set (nodes, tasks, flowlines,
	// tags, matrix, views, selection, navigation, batch).
	RuleSetWorkflow RuleSet = "workflow"
)

// Registry is an ordered, immutable table of grammar rules plus the
// command-description vocabulary used by help and suggestions. Insertion
// order is significant: it defines matching iteration order and help
// listing order.
//
// There is no runtime mutation API; registries are built by NewChatRegistry
// and NewWorkflowRegistry and are safe to share across goroutines.
type Registry struct {
	set    RuleSet
	rules  []GrammarRule
	byName map[string]int
	descs  []Description
}

// Set returns which rule set this registry holds.
func (r *Registry) Set() RuleSet { return r.set }

// All returns the grammar rules in registration order. The returned slice
// must not be modified.
func (r *Registry) All() []GrammarRule { return r.rules }

// Rule returns the rule with the given name.
func (r *Registry) Rule(name string) (GrammarRule, bool) {
	i, ok := r.byName[name]
	if !ok {
		return GrammarRule{}, false
	}
	return r.rules[i], true
}

// Descriptions returns the command-description table in registration order.
// The returned slice must not be modified.
func (r *Registry) Descriptions() []Description { return r.descs }

// register compiles and appends a rule. Construction-time only; panics on a
// bad pattern or duplicate name since both are authoring errors caught by
// the package tests.
func (r *Registry) register(name, pattern string) {
	if _, dup := r.byName[name]; dup {
		panic(fmt.Sprintf("commands: duplicate rule %q", name))
	}
	re := regexp.MustCompile("(?i)" + pattern)
	r.byName[name] = len(r.rules)
	r.rules = append(r.rules, GrammarRule{Name: name, Pattern: re})
}

func (r *Registry) describe(command, summary string) {
	r.descs = append(r.descs, Description{Command: command, Summary: summary})
}

func newRegistry(set RuleSet) *Registry {
	return &Registry{set: set, byName: make(map[string]int)}
}

// =============================================================================
// CHAT RULE SET
// =============================================================================

// NewChatRegistry builds the chat command grammar table. The description
// vocabulary deliberately includes the workflow commands as well: the chat
// surface is where users ask for help, so its help and suggestion
// vocabulary spans both subsystems.
func NewChatRegistry() *Registry {
	r := newRegistry(RuleSetChat)

	// Note-taking commands
	r.register("note", `^/note(?:\s+(.+))?$`)
	r.register("note-create", `^/note[-_]?create\s+(.+)$`)
	r.register("note-search", `^/note[-_]?search\s+(.+)$`)
	r.register("note-find", `^/note[-_]?find\s+(.+)$`)
	r.register("note-tag", `^/note[-_]?tag\s+(\S+)\s+(.+)$`)
	r.register("note-list", `^/note[-_]?list(?:\s+(.*))?$`)
	r.register("note-link", `^/note[-_]?link\s+(\S+)\s+(\S+)$`)

	// Opportunity commands
	r.register("opp", `^/opp(?:\s+(.+))?$`)
	r.register("opp-create", `^/opp[-_]?create\s+(.+)$`)
	r.register("opp-list", `^/opp[-_]?list(?:\s+(.*))?$`)
	r.register("opp-link", `^/opp[-_]?link\s+(\S+)\s+(\S+)$`)
	r.register("opp-search", `^/opp[-_]?search\s+(.+)$`)

	// Task commands
	r.register("task-note", `^/task[-_]?note\s+(\S+)\s+(.+)$`)
	r.register("task-link", `^/task[-_]?link\s+(\S+)\s+(\S+)$`)

	// Analysis commands
	r.register("analyze", `^/analyze\s+(.+)$`)
	r.register("suggest", `^/suggest(?:\s+(.+))?$`)
	r.register("associate", `^/associate\s+(\S+)\s+(\S+)$`)

	// Database commands
	r.register("sql", `^/sql\s+(?:"([^"]+)"|(.+))$`)
	r.register("db-query", `^/db[-_]?query\s+(?:"([^"]+)"|(.+))$`)

	// Help and info commands
	r.register("help", `^/help(?:\s+(.*))?$`)
	r.register("commands", `^/commands$`)
	r.register("status", `^/status$`)

	// Descriptions: chat commands first, then the workflow vocabulary.
	r.describe("/note", "General note operations")
	r.describe("/note-create <content>", "Create a new note")
	r.describe("/note-search <query>", "Search notes by content")
	r.describe("/note-find <query>", "Find notes (alias for search)")
	r.describe("/note-tag <note_id> <tags>", "Add tags to a note")
	r.describe("/note-list [filters]", "List notes with optional filters")
	r.describe("/note-link <note_id> <target_id>", "Link note to opportunity/task")

	r.describe("/opp", "General opportunity operations")
	r.describe("/opp-create <title>", "Create a new opportunity")
	r.describe("/opp-list [filters]", "List opportunities")
	r.describe("/opp-link <opp_id> <target_id>", "Link opportunity to task/workflow")
	r.describe("/opp-search <query>", "Search opportunities")

	r.describe("/task-note <task_id> <content>", "Create note for specific task")
	r.describe("/task-link <task_id> <note_id>", "Link task to note")

	r.describe("/analyze <text>", "Analyze text for potential associations")
	r.describe("/suggest [context]", "Get suggestions for current context")
	r.describe("/associate <id1> <id2>", "Create association between items")

	r.describe("/sql <query>", "Execute PostgreSQL query directly")
	r.describe("/db-query <query>", "Execute PostgreSQL query (alias for /sql)")

	r.describe("/help [command]", "Show help information")
	r.describe("/commands", "List all available commands")
	r.describe("/status", "Show system status")

	r.describe("/node-create <type> [name] [x,y]", "Create a new node (process, decision, terminal)")
	r.describe("/node-delete <identifier>", "Delete a node by name or ID")
	r.describe("/node-rename <old> <new>", "Rename a node")
	r.describe("/node-move <node> <x,y>", "Move a node to position")
	r.describe("/node-type <node> <type>", "Change node type")

	r.describe("/task-create <name> [node] [priority]", "Create a new task")
	r.describe("/task-delete <identifier>", "Delete a task")
	r.describe("/task-move <task> <target-node>", "Move task to node")
	r.describe("/task-advance <task> <target-node>", "Advance task to node")
	r.describe("/task-priority <task> <priority>", "Set task priority (low, normal, high, urgent)")

	r.describe("/connect <source> <target> [type]", "Create flowline between nodes")
	r.describe("/disconnect <source> <target>", "Remove flowline")
	r.describe("/flowline-type <source> <target> <type>", "Change flowline type")
	r.describe("/disconnect all", "Remove all flowlines")

	r.describe("/tag-create <name> [category] [props]", "Create a new tag")
	r.describe("/tag-add <tag> <element>", "Add tag to element")
	r.describe("/tag-remove <tag> <element>", "Remove tag from element")
	r.describe("/tag-list [filter]", "List tags")

	r.describe("/workflow-save [filename]", "Save current workflow")
	r.describe("/workflow-load <filename>", "Load workflow file")
	r.describe("/workflow-export [format]", "Export workflow (json, png, svg, pdf)")
	r.describe("/workflow-clear [confirm]", "Clear/reset workflow")
	r.describe("/workflow-status", "Show workflow statistics")
	r.describe("/workflow-stats", "Show detailed workflow stats")

	r.describe("/matrix-enter", "Enter Eisenhower Matrix mode")
	r.describe("/matrix-exit", "Exit Eisenhower Matrix mode")
	r.describe("/matrix-move <task> <quadrant>", "Move task in matrix")
	r.describe("/matrix-show [quadrant]", "Show matrix quadrant")

	r.describe("/view-zoom <level>", "Zoom view (in, out, fit, reset)")
	r.describe("/view-center [node]", "Center view on node")
	r.describe("/view-focus <element>", "Focus on element")
	r.describe("/select <element>", "Select element")
	r.describe("/select-all [type]", "Select all elements of type")
	r.describe("/select-none", "Clear selection")
	r.describe("/goto <node>", "Navigate to node")
	r.describe("/find <name>", "Find element by name")

	return r
}

// =============================================================================
// WORKFLOW RULE SET
// =============================================================================

// NewWorkflowRegistry builds the workflow command grammar table for the
// process flow designer.
func NewWorkflowRegistry() *Registry {
	r := newRegistry(RuleSetWorkflow)

	// Node management
	r.register("node-create", `^/node[-_]?create\s+(\w+)(?:\s+(?:"([^"]+)"|(\w+)))?(?:\s+(\d+),(\d+))?$`)
	r.register("node-delete", `^/(?:node[-_]?delete|delete[-_]?node|remove[-_]?node)\s+(.+)$`)
	r.register("node-rename", `^/node[-_]?rename\s+"([^"]+)"\s+"([^"]+)"$`)
	r.register("node-move", `^/node[-_]?move\s+(.+)\s+(\d+),(\d+)$`)
	r.register("node-type", `^/node[-_]?type\s+(.+)\s+(\w+)$`)

	// Task management
	r.register("task-create", `^/(?:task[-_]?create|add[-_]?task|create[-_]?task)\s+"([^"]+)"(?:\s+"([^"]+)")?(?:\s+(\w+))?$`)
	r.register("task-delete", `^/task[-_]?delete\s+(.+)$`)
	r.register("task-move", `^/task[-_]?move\s+(.+)\s+"([^"]+)"$`)
	r.register("task-advance", `^/task[-_]?advance\s+(.+)\s+"([^"]+)"$`)
	r.register("task-priority", `^/task[-_]?priority\s+(.+)\s+(\w+)$`)

	// Flowline management
	r.register("flowline-create", `^/(?:flowline[-_]?create|connect)\s+"([^"]+)"\s+"([^"]+)"(?:\s+(\w+))?$`)
	r.register("flowline-delete", `^/(?:flowline[-_]?delete|disconnect)\s+"([^"]+)"\s+"([^"]+)"$`)
	r.register("flowline-type", `^/flowline[-_]?type\s+"([^"]+)"\s+"([^"]+)"\s+(\w+)$`)
	r.register("disconnect-all", `^/disconnect\s+all$`)

	// Tag management
	r.register("tag-create", `^/tag[-_]?create\s+"([^"]+)"(?:\s+(\w+))?(?:\s+(.+))?$`)
	r.register("tag-add", `^/tag[-_]?add\s+"([^"]+)"\s+(.+)$`)
	r.register("tag-remove", `^/tag[-_]?remove\s+"([^"]+)"\s+(.+)$`)
	r.register("tag-list", `^/tag[-_]?list(?:\s+(.+))?$`)

	// Workflow management
	r.register("workflow-save", `^/workflow[-_]?save(?:\s+"([^"]+)")?$`)
	r.register("workflow-load", `^/workflow[-_]?load\s+"([^"]+)"$`)
	r.register("workflow-export", `^/workflow[-_]?export(?:\s+(\w+))?$`)
	r.register("workflow-clear", `^/workflow[-_]?(?:clear|reset)(?:\s+(yes|confirm))?$`)
	r.register("workflow-status", `^/workflow[-_]?status$`)
	r.register("workflow-stats", `^/workflow[-_]?stats$`)

	// Matrix and view commands
	r.register("matrix-enter", `^/matrix[-_]?enter$`)
	r.register("matrix-exit", `^/matrix[-_]?exit$`)
	r.register("matrix-move", `^/matrix[-_]?move\s+(.+)\s+(\w+[-_]\w+)$`)
	r.register("matrix-show", `^/matrix[-_]?show(?:\s+(\w+[-_]\w+))?$`)

	// View operations
	r.register("view-zoom", `^/view[-_]?zoom\s+(.+)$`)
	r.register("view-center", `^/view[-_]?center(?:\s+"([^"]+)")?$`)
	r.register("view-focus", `^/view[-_]?focus\s+(.+)$`)

	// Selection commands
	r.register("select", `^/select\s+(.+)$`)
	r.register("select-all", `^/select[-_]?all(?:\s+(\w+))?$`)
	r.register("select-none", `^/select[-_]?none$`)
	r.register("select-by", `^/select[-_]?by\s+(.+)$`)

	// Navigation commands
	r.register("goto", `^/goto\s+"([^"]+)"$`)
	r.register("find", `^/find\s+"([^"]+)"$`)
	r.register("next", `^/next(?:\s+(\w+))?$`)
	r.register("previous", `^/previous(?:\s+(\w+))?$`)

	// Batch operations
	r.register("batch-create", `^/batch[-_]?create\s+(\w+)\s+(.+)$`)
	r.register("batch-connect", `^/batch[-_]?connect\s+"([^"]+)"\s+"([^"]+)"$`)
	r.register("batch-tag", `^/batch[-_]?tag\s+"([^"]+)"\s+(.+)$`)

	r.describe("/node-create <type> [name] [x,y]", "Create a new node")
	r.describe("/node-delete <identifier>", "Delete a node")
	r.describe("/node-rename <old> <new>", "Rename a node")
	r.describe("/node-move <node> <x,y>", "Move a node to position")
	r.describe("/node-type <node> <type>", "Change node type")

	r.describe("/task-create <name> [node] [priority]", "Create a new task")
	r.describe("/task-delete <identifier>", "Delete a task")
	r.describe("/task-move <task> <target-node>", "Move task to node")
	r.describe("/task-advance <task> <target-node>", "Advance task to node")
	r.describe("/task-priority <task> <priority>", "Set task priority")

	r.describe("/connect <source> <target> [type]", "Create flowline between nodes")
	r.describe("/disconnect <source> <target>", "Remove flowline")
	r.describe("/flowline-type <source> <target> <type>", "Change flowline type")
	r.describe("/disconnect all", "Remove all flowlines")

	r.describe("/tag-create <name> [category] [props]", "Create a new tag")
	r.describe("/tag-add <tag> <element>", "Add tag to element")
	r.describe("/tag-remove <tag> <element>", "Remove tag from element")
	r.describe("/tag-list [filter]", "List tags")

	r.describe("/workflow-save [filename]", "Save current workflow")
	r.describe("/workflow-load <filename>", "Load workflow file")
	r.describe("/workflow-export [format]", "Export workflow")
	r.describe("/workflow-clear [confirm]", "Clear current workflow")
	r.describe("/workflow-status", "Show workflow status")
	r.describe("/workflow-stats", "Show detailed statistics")

	r.describe("/matrix-enter", "Enter Eisenhower Matrix mode")
	r.describe("/matrix-exit", "Exit matrix mode")
	r.describe("/matrix-move <task> <quadrant>", "Move task in matrix")
	r.describe("/matrix-show [quadrant]", "Show matrix quadrant")

	r.describe("/view-zoom <level|in|out|fit>", "Zoom view")
	r.describe("/view-center [node]", "Center view on element")
	r.describe("/view-focus <element>", "Focus on element")

	r.describe("/select <identifier>", "Select element")
	r.describe("/select-all [type]", "Select all elements of type")
	r.describe("/select-none", "Clear selection")
	r.describe("/select-by <criteria>", "Select by criteria")

	r.describe("/goto <name>", "Navigate to element")
	r.describe("/find <name>", "Find element by name")
	r.describe("/next [type]", "Navigate to next element")
	r.describe("/previous [type]", "Navigate to previous element")

	r.describe("/batch-create <type> <list>", "Create multiple elements")
	r.describe("/batch-connect <sources> <targets>", "Create multiple connections")
	r.describe("/batch-tag <tag> <elements>", "Tag multiple elements")

	return r
}

// =============================================================================
// DOMAIN VOCABULARIES
// =============================================================================

// Closed allowed-sets for enumerated command parameters. Violating one of
// these is a validation error, not a warning.
var (
	NodeTypes       = []string{"process", "decision", "terminal", "start"}
	FlowlineTypes   = []string{"sequence", "conditional", "error", "parallel"}
	TaskPriorities  = []string{"low", "normal", "high", "urgent"}
	MatrixQuadrants = []string{
		"urgent-important", "urgent-not-important",
		"not-urgent-important", "not-urgent-not-important",
	}
	ViewZoomLevels = []string{"in", "out", "fit", "reset"}
	ElementTypes   = []string{"node", "task", "flowline", "tag"}
	ExportFormats  = []string{"json", "png", "svg", "pdf"}
)
