// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package workflow executes validated workflow command envelopes against an
// in-memory process graph: nodes, tasks, flowlines and tags, plus view,
// selection and matrix state. The command engine produces envelopes; this
// package is the collaborator that applies them.
package workflow

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrFlowlineNotFound = errors.New("flowline not found")
	ErrTagNotFound      = errors.New("tag not found")
	ErrDuplicateName    = errors.New("name already in use")
	ErrUnknownAction    = errors.New("unknown action")
	ErrNotInMatrixMode  = errors.New("not in matrix mode")
)

// =============================================================================
// GRAPH ELEMENTS
// =============================================================================

// Node is one process step on the canvas.
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// Task is a unit of work, optionally attached to a node and placed in a
// matrix quadrant.
type Task struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Priority string `json:"priority"`
	Node     string `json:"node,omitempty"`
	Quadrant string `json:"quadrant,omitempty"`
}

// Flowline connects two nodes by name.
type Flowline struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Tag labels elements.
type Tag struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Properties string   `json:"properties,omitempty"`
	Elements   []string `json:"elements,omitempty"`
}

// ViewState is the canvas viewport.
type ViewState struct {
	Zoom     string `json:"zoom"`
	CenterOn string `json:"center_on,omitempty"`
	FocusOn  string `json:"focus_on,omitempty"`
}

// Graph is the mutable workflow state. All mutation goes through Apply;
// the zero value is not usable, construct with New.
type Graph struct {
	mu      sync.Mutex
	baseDir string

	nodes     []*Node
	tasks     []*Task
	flowlines []*Flowline
	tags      []*Tag

	view       ViewState
	selection  []string
	matrixMode bool
	cursor     int

	nextNodeID int
	nextTaskID int
}

// New returns an empty graph. Saved and exported workflows live under
// baseDir.
func New(baseDir string) *Graph {
	return &Graph{baseDir: baseDir, view: ViewState{Zoom: "fit"}}
}

// Result is the outcome of applying one envelope: a human-readable message
// plus optional structured data for the caller to render.
type Result struct {
	Message string
	Data    any
}

// =============================================================================
// LOOKUPS
// =============================================================================

func (g *Graph) findNode(identifier string) *Node {
	needle := strings.ToLower(strings.TrimSpace(identifier))
	for _, n := range g.nodes {
		if strings.ToLower(n.Name) == needle || n.ID == needle {
			return n
		}
	}
	return nil
}

func (g *Graph) findTask(identifier string) *Task {
	needle := strings.ToLower(strings.TrimSpace(identifier))
	for _, t := range g.tasks {
		if strings.ToLower(t.Name) == needle || t.ID == needle {
			return t
		}
	}
	return nil
}

func (g *Graph) findFlowline(source, target string) (int, *Flowline) {
	s, t := strings.ToLower(source), strings.ToLower(target)
	for i, f := range g.flowlines {
		if strings.ToLower(f.Source) == s && strings.ToLower(f.Target) == t {
			return i, f
		}
	}
	return -1, nil
}

func (g *Graph) findTag(name string) *Tag {
	needle := strings.ToLower(name)
	for _, t := range g.tags {
		if strings.ToLower(t.Name) == needle {
			return t
		}
	}
	return nil
}

// =============================================================================
// NODE OPERATIONS
// =============================================================================

func (g *Graph) createNode(nodeType, name string, x, y int) (*Node, error) {
	if name != "" && g.findNode(name) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	g.nextNodeID++
	n := &Node{
		ID:   fmt.Sprintf("node-%d", g.nextNodeID),
		Name: name,
		Type: strings.ToLower(nodeType),
		X:    x,
		Y:    y,
	}
	if n.Name == "" {
		n.Name = fmt.Sprintf("%s-%d", n.Type, g.nextNodeID)
	}
	g.nodes = append(g.nodes, n)
	return n, nil
}

func (g *Graph) deleteNode(identifier string) error {
	n := g.findNode(identifier)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, identifier)
	}
	for i, cand := range g.nodes {
		if cand == n {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			break
		}
	}
	// Drop flowlines touching the node and detach its tasks.
	kept := g.flowlines[:0]
	for _, f := range g.flowlines {
		if !strings.EqualFold(f.Source, n.Name) && !strings.EqualFold(f.Target, n.Name) {
			kept = append(kept, f)
		}
	}
	g.flowlines = kept
	for _, t := range g.tasks {
		if strings.EqualFold(t.Node, n.Name) {
			t.Node = ""
		}
	}
	return nil
}

// =============================================================================
// APPLY
// =============================================================================

// handler applies one action's parameters to the graph.
type handler func(g *Graph, p params) (Result, error)

// Apply dispatches an envelope to its action handler. Unknown actions are
// an error; the engine's action vocabulary and this table are kept in sync
// by the package tests.
func (g *Graph) Apply(action string, parameters map[string]any) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	h, ok := handlers[action]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return h(g, params(parameters))
}

var handlers = map[string]handler{
	// Nodes
	"create_node": func(g *Graph, p params) (Result, error) {
		n, err := g.createNode(p.str("type"), p.str("name"), p.num("x"), p.num("y"))
		if err != nil {
			return Result{}, err
		}
		return Result{Message: fmt.Sprintf("created %s node %q", n.Type, n.Name), Data: *n}, nil
	},
	"delete_node": func(g *Graph, p params) (Result, error) {
		id := p.str("identifier")
		if err := g.deleteNode(id); err != nil {
			return Result{}, err
		}
		return Result{Message: fmt.Sprintf("deleted node %q", id)}, nil
	},
	"rename_node": func(g *Graph, p params) (Result, error) {
		n := g.findNode(p.str("old_name"))
		if n == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrNodeNotFound, p.str("old_name"))
		}
		newName := p.str("new_name")
		if other := g.findNode(newName); other != nil && other != n {
			return Result{}, fmt.Errorf("%w: %s", ErrDuplicateName, newName)
		}
		old := n.Name
		for _, f := range g.flowlines {
			if strings.EqualFold(f.Source, old) {
				f.Source = newName
			}
			if strings.EqualFold(f.Target, old) {
				f.Target = newName
			}
		}
		for _, t := range g.tasks {
			if strings.EqualFold(t.Node, old) {
				t.Node = newName
			}
		}
		n.Name = newName
		return Result{Message: fmt.Sprintf("renamed %q to %q", old, newName)}, nil
	},
	"move_node": func(g *Graph, p params) (Result, error) {
		n := g.findNode(p.str("identifier"))
		if n == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrNodeNotFound, p.str("identifier"))
		}
		n.X, n.Y = p.num("x"), p.num("y")
		return Result{Message: fmt.Sprintf("moved %q to %d,%d", n.Name, n.X, n.Y)}, nil
	},
	"change_node_type": func(g *Graph, p params) (Result, error) {
		n := g.findNode(p.str("identifier"))
		if n == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrNodeNotFound, p.str("identifier"))
		}
		n.Type = strings.ToLower(p.str("type"))
		return Result{Message: fmt.Sprintf("%q is now a %s node", n.Name, n.Type)}, nil
	},

	// Tasks
	"create_task": func(g *Graph, p params) (Result, error) {
		name := p.str("name")
		if g.findTask(name) != nil {
			return Result{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		nodeName := ""
		if node := p.str("node"); node != "" {
			n := g.findNode(node)
			if n == nil {
				return Result{}, fmt.Errorf("%w: %s", ErrNodeNotFound, node)
			}
			nodeName = n.Name
		}
		g.nextTaskID++
		t := &Task{
			ID:       fmt.Sprintf("task-%d", g.nextTaskID),
			Name:     name,
			Priority: strings.ToLower(p.str("priority")),
			Node:     nodeName,
		}
		g.tasks = append(g.tasks, t)
		return Result{Message: fmt.Sprintf("created task %q", t.Name), Data: *t}, nil
	},
	"delete_task": func(g *Graph, p params) (Result, error) {
		t := g.findTask(p.str("identifier"))
		if t == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrTaskNotFound, p.str("identifier"))
		}
		for i, cand := range g.tasks {
			if cand == t {
				g.tasks = append(g.tasks[:i], g.tasks[i+1:]...)
				break
			}
		}
		return Result{Message: fmt.Sprintf("deleted task %q", t.Name)}, nil
	},
	"move_task":    moveTask,
	"advance_task": moveTask,
	"set_task_priority": func(g *Graph, p params) (Result, error) {
		t := g.findTask(p.str("task"))
		if t == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrTaskNotFound, p.str("task"))
		}
		t.Priority = strings.ToLower(p.str("priority"))
		return Result{Message: fmt.Sprintf("task %q priority set to %s", t.Name, t.Priority)}, nil
	},

	// Flowlines
	"create_flowline": func(g *Graph, p params) (Result, error) {
		source, target := p.str("source"), p.str("target")
		for _, name := range []string{source, target} {
			if g.findNode(name) == nil {
				return Result{}, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
			}
		}
		if _, f := g.findFlowline(source, target); f != nil {
			f.Type = strings.ToLower(p.str("type"))
			return Result{Message: fmt.Sprintf("updated flowline %s -> %s", source, target)}, nil
		}
		f := &Flowline{Source: source, Target: target, Type: strings.ToLower(p.str("type"))}
		g.flowlines = append(g.flowlines, f)
		return Result{Message: fmt.Sprintf("connected %s -> %s (%s)", source, target, f.Type), Data: *f}, nil
	},
	"delete_flowline": func(g *Graph, p params) (Result, error) {
		i, f := g.findFlowline(p.str("source"), p.str("target"))
		if f == nil {
			return Result{}, fmt.Errorf("%w: %s -> %s", ErrFlowlineNotFound, p.str("source"), p.str("target"))
		}
		g.flowlines = append(g.flowlines[:i], g.flowlines[i+1:]...)
		return Result{Message: fmt.Sprintf("disconnected %s -> %s", f.Source, f.Target)}, nil
	},
	"change_flowline_type": func(g *Graph, p params) (Result, error) {
		_, f := g.findFlowline(p.str("source"), p.str("target"))
		if f == nil {
			return Result{}, fmt.Errorf("%w: %s -> %s", ErrFlowlineNotFound, p.str("source"), p.str("target"))
		}
		f.Type = strings.ToLower(p.str("type"))
		return Result{Message: fmt.Sprintf("flowline %s -> %s is now %s", f.Source, f.Target, f.Type)}, nil
	},
	"disconnect_all_flowlines": func(g *Graph, p params) (Result, error) {
		n := len(g.flowlines)
		g.flowlines = nil
		return Result{Message: fmt.Sprintf("removed %d flowlines", n)}, nil
	},

	// Tags
	"create_tag": func(g *Graph, p params) (Result, error) {
		name := p.str("name")
		if g.findTag(name) != nil {
			return Result{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		t := &Tag{Name: name, Category: strings.ToLower(p.str("category")), Properties: p.str("properties")}
		g.tags = append(g.tags, t)
		return Result{Message: fmt.Sprintf("created tag %q (%s)", t.Name, t.Category), Data: *t}, nil
	},
	"add_tag": func(g *Graph, p params) (Result, error) {
		t := g.findTag(p.str("tag"))
		if t == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrTagNotFound, p.str("tag"))
		}
		element := p.str("element")
		for _, e := range t.Elements {
			if strings.EqualFold(e, element) {
				return Result{Message: fmt.Sprintf("%q already tagged %q", element, t.Name)}, nil
			}
		}
		t.Elements = append(t.Elements, element)
		return Result{Message: fmt.Sprintf("tagged %q with %q", element, t.Name)}, nil
	},
	"remove_tag": func(g *Graph, p params) (Result, error) {
		t := g.findTag(p.str("tag"))
		if t == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrTagNotFound, p.str("tag"))
		}
		element := p.str("element")
		for i, e := range t.Elements {
			if strings.EqualFold(e, element) {
				t.Elements = append(t.Elements[:i], t.Elements[i+1:]...)
				return Result{Message: fmt.Sprintf("untagged %q from %q", element, t.Name)}, nil
			}
		}
		return Result{}, fmt.Errorf("%w: %s not tagged %s", ErrTagNotFound, element, t.Name)
	},
	"list_tags": func(g *Graph, p params) (Result, error) {
		tags := make([]Tag, len(g.tags))
		for i, t := range g.tags {
			tags[i] = *t
		}
		return Result{Message: fmt.Sprintf("%d tags", len(tags)), Data: tags}, nil
	},

	// Matrix
	"enter_matrix_mode": func(g *Graph, p params) (Result, error) {
		g.matrixMode = true
		return Result{Message: "entered matrix mode"}, nil
	},
	"exit_matrix_mode": func(g *Graph, p params) (Result, error) {
		g.matrixMode = false
		return Result{Message: "exited matrix mode"}, nil
	},
	"move_task_in_matrix": func(g *Graph, p params) (Result, error) {
		if !g.matrixMode {
			return Result{}, ErrNotInMatrixMode
		}
		t := g.findTask(p.str("task"))
		if t == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrTaskNotFound, p.str("task"))
		}
		t.Quadrant = strings.ToLower(p.str("quadrant"))
		return Result{Message: fmt.Sprintf("task %q moved to %s", t.Name, t.Quadrant)}, nil
	},
	"show_matrix_quadrant": func(g *Graph, p params) (Result, error) {
		quadrant := strings.ToLower(p.str("quadrant"))
		var tasks []Task
		for _, t := range g.tasks {
			if quadrant == "" || t.Quadrant == quadrant {
				tasks = append(tasks, *t)
			}
		}
		return Result{Message: fmt.Sprintf("%d tasks", len(tasks)), Data: tasks}, nil
	},

	// View
	"zoom_view": func(g *Graph, p params) (Result, error) {
		g.view.Zoom = strings.ToLower(p.str("level"))
		return Result{Message: fmt.Sprintf("zoom: %s", g.view.Zoom), Data: g.view}, nil
	},
	"center_view": func(g *Graph, p params) (Result, error) {
		target := p.str("target")
		if target != "" && g.findNode(target) == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
		}
		g.view.CenterOn = target
		return Result{Message: "view centered", Data: g.view}, nil
	},
	"focus_element": func(g *Graph, p params) (Result, error) {
		g.view.FocusOn = p.str("element")
		return Result{Message: fmt.Sprintf("focused %q", g.view.FocusOn), Data: g.view}, nil
	},

	// Selection
	"select_element": func(g *Graph, p params) (Result, error) {
		target := p.str("target")
		if g.findNode(target) == nil && g.findTask(target) == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
		}
		g.selection = []string{target}
		return Result{Message: fmt.Sprintf("selected %q", target)}, nil
	},
	"select_all": func(g *Graph, p params) (Result, error) {
		kind := strings.ToLower(p.str("type"))
		g.selection = nil
		if kind == "" || kind == "node" {
			for _, n := range g.nodes {
				g.selection = append(g.selection, n.Name)
			}
		}
		if kind == "" || kind == "task" {
			for _, t := range g.tasks {
				g.selection = append(g.selection, t.Name)
			}
		}
		return Result{Message: fmt.Sprintf("selected %d elements", len(g.selection))}, nil
	},
	"clear_selection": func(g *Graph, p params) (Result, error) {
		g.selection = nil
		return Result{Message: "selection cleared"}, nil
	},
	"select_by_criteria": func(g *Graph, p params) (Result, error) {
		// Criteria is "field value", e.g. "priority high" or "type decision".
		field, value, _ := strings.Cut(strings.ToLower(p.str("criteria")), " ")
		g.selection = nil
		switch field {
		case "priority":
			for _, t := range g.tasks {
				if t.Priority == value {
					g.selection = append(g.selection, t.Name)
				}
			}
		case "type":
			for _, n := range g.nodes {
				if n.Type == value {
					g.selection = append(g.selection, n.Name)
				}
			}
		default:
			return Result{}, fmt.Errorf("unknown selection criteria %q", field)
		}
		return Result{Message: fmt.Sprintf("selected %d elements", len(g.selection))}, nil
	},

	// Navigation
	"navigate_to_element": func(g *Graph, p params) (Result, error) {
		target := p.str("target")
		for i, n := range g.nodes {
			if strings.EqualFold(n.Name, target) {
				g.cursor = i
				g.view.FocusOn = n.Name
				return Result{Message: fmt.Sprintf("at %q", n.Name), Data: *n}, nil
			}
		}
		return Result{}, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
	},
	"find_element": func(g *Graph, p params) (Result, error) {
		needle := strings.ToLower(p.str("query"))
		var found []string
		for _, n := range g.nodes {
			if strings.Contains(strings.ToLower(n.Name), needle) {
				found = append(found, n.Name)
			}
		}
		for _, t := range g.tasks {
			if strings.Contains(strings.ToLower(t.Name), needle) {
				found = append(found, t.Name)
			}
		}
		return Result{Message: fmt.Sprintf("%d matches", len(found)), Data: found}, nil
	},
	"navigate_next":     func(g *Graph, p params) (Result, error) { return g.step(1) },
	"navigate_previous": func(g *Graph, p params) (Result, error) { return g.step(-1) },

	// Batch
	"batch_create_elements": func(g *Graph, p params) (Result, error) {
		kind := strings.ToLower(p.str("type"))
		names := splitList(p.str("data"))
		if len(names) == 0 {
			return Result{}, errors.New("no element names given")
		}
		for _, name := range names {
			switch kind {
			case "task":
				g.nextTaskID++
				g.tasks = append(g.tasks, &Task{
					ID:       fmt.Sprintf("task-%d", g.nextTaskID),
					Name:     name,
					Priority: "normal",
				})
			default:
				if _, err := g.createNode("process", name, 0, 0); err != nil {
					return Result{}, err
				}
			}
		}
		return Result{Message: fmt.Sprintf("created %d %ss", len(names), kind)}, nil
	},
	"batch_connect_elements": func(g *Graph, p params) (Result, error) {
		sources := splitList(p.str("sources"))
		targets := splitList(p.str("targets"))
		count := 0
		for _, s := range sources {
			for _, t := range targets {
				if g.findNode(s) == nil || g.findNode(t) == nil {
					continue
				}
				if _, existing := g.findFlowline(s, t); existing != nil {
					continue
				}
				g.flowlines = append(g.flowlines, &Flowline{Source: s, Target: t, Type: "sequence"})
				count++
			}
		}
		return Result{Message: fmt.Sprintf("created %d flowlines", count)}, nil
	},
	"batch_tag_elements": func(g *Graph, p params) (Result, error) {
		t := g.findTag(p.str("tag"))
		if t == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrTagNotFound, p.str("tag"))
		}
		for _, element := range splitList(p.str("elements")) {
			tagged := false
			for _, e := range t.Elements {
				if strings.EqualFold(e, element) {
					tagged = true
					break
				}
			}
			if !tagged {
				t.Elements = append(t.Elements, element)
			}
		}
		return Result{Message: fmt.Sprintf("tag %q now covers %d elements", t.Name, len(t.Elements))}, nil
	},

	// Lifecycle
	"clear_workflow": func(g *Graph, p params) (Result, error) {
		if !p.boolean("confirmed") {
			return Result{Message: "confirmation required: /workflow-clear confirm"}, nil
		}
		g.nodes, g.tasks, g.flowlines, g.tags = nil, nil, nil, nil
		g.selection = nil
		g.matrixMode = false
		g.cursor = 0
		g.nextNodeID, g.nextTaskID = 0, 0
		g.view = ViewState{Zoom: "fit"}
		return Result{Message: "workflow cleared"}, nil
	},
	"save_workflow":        saveWorkflow,
	"load_workflow":        loadWorkflow,
	"export_workflow":      exportWorkflow,
	"show_workflow_status": func(g *Graph, p params) (Result, error) { return g.status(false) },
	"show_workflow_stats":  func(g *Graph, p params) (Result, error) { return g.status(true) },
}

func moveTask(g *Graph, p params) (Result, error) {
	t := g.findTask(p.str("task"))
	if t == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrTaskNotFound, p.str("task"))
	}
	n := g.findNode(p.str("target_node"))
	if n == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNodeNotFound, p.str("target_node"))
	}
	t.Node = n.Name
	return Result{Message: fmt.Sprintf("task %q moved to %q", t.Name, n.Name)}, nil
}

// step advances the navigation cursor over the node list, wrapping around.
func (g *Graph) step(delta int) (Result, error) {
	if len(g.nodes) == 0 {
		return Result{}, ErrNodeNotFound
	}
	g.cursor = (g.cursor + delta + len(g.nodes)) % len(g.nodes)
	n := g.nodes[g.cursor]
	g.view.FocusOn = n.Name
	return Result{Message: fmt.Sprintf("at %q", n.Name), Data: *n}, nil
}

// =============================================================================
// STATUS
// =============================================================================

// Stats summarizes the graph.
type Stats struct {
	Nodes      int            `json:"nodes"`
	Tasks      int            `json:"tasks"`
	Flowlines  int            `json:"flowlines"`
	Tags       int            `json:"tags"`
	Selected   int            `json:"selected"`
	MatrixMode bool           `json:"matrix_mode"`
	NodeTypes  map[string]int `json:"node_types,omitempty"`
	Priorities map[string]int `json:"priorities,omitempty"`
}

func (g *Graph) status(detailed bool) (Result, error) {
	s := Stats{
		Nodes:      len(g.nodes),
		Tasks:      len(g.tasks),
		Flowlines:  len(g.flowlines),
		Tags:       len(g.tags),
		Selected:   len(g.selection),
		MatrixMode: g.matrixMode,
	}
	if detailed {
		s.NodeTypes = make(map[string]int)
		for _, n := range g.nodes {
			s.NodeTypes[n.Type]++
		}
		s.Priorities = make(map[string]int)
		for _, t := range g.tasks {
			s.Priorities[t.Priority]++
		}
	}
	return Result{
		Message: fmt.Sprintf("%d nodes, %d tasks, %d flowlines, %d tags",
			s.Nodes, s.Tasks, s.Flowlines, s.Tags),
		Data: s,
	}, nil
}

// =============================================================================
// PARAMETER ACCESS
// =============================================================================

// params wraps an envelope's parameter map with typed accessors.
type params map[string]any

func (p params) str(key string) string {
	v, _ := p[key].(string)
	return v
}

func (p params) num(key string) int {
	v, _ := p[key].(int)
	return v
}

func (p params) boolean(key string) bool {
	v, _ := p[key].(bool)
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
