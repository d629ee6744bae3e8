// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/flowdesk/internal/commands"
)

// =============================================================================
// GRAPH TESTS
// =============================================================================

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	return New(t.TempDir())
}

// apply parses a workflow command and applies its envelope, failing the
// test on any stage.
func apply(t *testing.T, g *Graph, e *commands.Engine, input string) Result {
	t.Helper()
	res, err := applyErr(g, e, input)
	require.NoError(t, err, "input %q", input)
	return res
}

func applyErr(g *Graph, e *commands.Engine, input string) (Result, error) {
	p := e.Parse(input, commands.RuleSetWorkflow)
	env, ok := e.Envelope(p)
	if !ok {
		return Result{}, ErrUnknownAction
	}
	return g.Apply(env.Action, env.Parameters)
}

func TestEveryWorkflowActionHasHandler(t *testing.T) {
	e := commands.NewEngine()

	// Every grammar rule's action must dispatch; the rule table and this
	// handler table drift apart otherwise.
	inputs := []string{
		`/node-create process "A"`, "/node-delete A", `/node-rename "A" "B"`,
		"/node-move A 1,2", "/node-type A decision",
		`/task-create "T"`, "/task-delete T", `/task-move T "A"`,
		`/task-advance T "A"`, "/task-priority T high",
		`/connect "A" "B"`, `/disconnect "A" "B"`, `/flowline-type "A" "B" error`,
		"/disconnect all",
		`/tag-create "x"`, `/tag-add "x" A`, `/tag-remove "x" A`, "/tag-list",
		"/workflow-save", `/workflow-load "w"`, "/workflow-export",
		"/workflow-clear", "/workflow-status", "/workflow-stats",
		"/matrix-enter", "/matrix-exit", "/matrix-move T urgent-important",
		"/matrix-show",
		"/view-zoom fit", "/view-center", "/view-focus A",
		"/select A", "/select-all", "/select-none", "/select-by priority high",
		`/goto "A"`, `/find "A"`, "/next", "/previous",
		"/batch-create node a,b", `/batch-connect "a" "b"`, `/batch-tag "x" a,b`,
	}
	for _, input := range inputs {
		p := e.Parse(input, commands.RuleSetWorkflow)
		require.True(t, p.IsCommand && p.CommandType != "", "input %q did not parse", input)
		assert.Contains(t, handlers, p.Action, "no handler for %q (%s)", p.Action, input)
	}
}

func TestNodeLifecycle(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	res := apply(t, g, e, `/node-create process "Review Documents" 100,200`)
	node := res.Data.(Node)
	assert.Equal(t, "node-1", node.ID)
	assert.Equal(t, 100, node.X)

	apply(t, g, e, `/node-create decision "Approve"`)
	apply(t, g, e, `/connect "Review Documents" "Approve" conditional`)

	// Rename follows through to flowlines.
	apply(t, g, e, `/node-rename "Review Documents" "Review Contracts"`)
	require.Len(t, g.flowlines, 1)
	assert.Equal(t, "Review Contracts", g.flowlines[0].Source)

	apply(t, g, e, "/node-move Review Contracts 300,400")
	assert.Equal(t, 300, g.findNode("review contracts").X)

	apply(t, g, e, "/node-type Approve terminal")
	assert.Equal(t, "terminal", g.findNode("Approve").Type)

	// Deleting a node drops its flowlines.
	apply(t, g, e, "/node-delete Review Contracts")
	assert.Empty(t, g.flowlines)
	assert.Len(t, g.nodes, 1)
}

func TestDuplicateNodeNameRejected(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	apply(t, g, e, `/node-create process "A"`)
	_, err := applyErr(g, e, `/node-create decision "A"`)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestTaskLifecycle(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	apply(t, g, e, `/node-create process "Intake"`)
	apply(t, g, e, `/node-create process "Done"`)

	res := apply(t, g, e, `/task-create "Call client" "Intake" high`)
	task := res.Data.(Task)
	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, "high", task.Priority)
	assert.Equal(t, "Intake", task.Node)

	apply(t, g, e, `/task-advance Call client "Done"`)
	assert.Equal(t, "Done", g.findTask("call client").Node)

	apply(t, g, e, "/task-priority Call client urgent")
	assert.Equal(t, "urgent", g.findTask("Call client").Priority)

	apply(t, g, e, "/task-delete Call client")
	assert.Empty(t, g.tasks)
}

func TestTaskOnMissingNode(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	_, err := applyErr(g, e, `/task-create "T" "Nowhere"`)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestFlowlines(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	apply(t, g, e, `/node-create process "A"`)
	apply(t, g, e, `/node-create process "B"`)

	apply(t, g, e, `/connect "A" "B"`)
	require.Len(t, g.flowlines, 1)
	assert.Equal(t, "sequence", g.flowlines[0].Type, "default flowline type")

	apply(t, g, e, `/flowline-type "A" "B" error`)
	assert.Equal(t, "error", g.flowlines[0].Type)

	apply(t, g, e, `/disconnect "A" "B"`)
	assert.Empty(t, g.flowlines)

	_, err := applyErr(g, e, `/disconnect "A" "B"`)
	assert.ErrorIs(t, err, ErrFlowlineNotFound)
}

func TestDisconnectAll(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	apply(t, g, e, "/batch-create node a,b,c")
	apply(t, g, e, `/batch-connect "a,b" "c"`)
	require.Len(t, g.flowlines, 2)

	apply(t, g, e, "/disconnect all")
	assert.Empty(t, g.flowlines)
}

func TestTags(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	apply(t, g, e, `/node-create process "A"`)
	res := apply(t, g, e, `/tag-create "blocked" status`)
	tag := res.Data.(Tag)
	assert.Equal(t, "status", tag.Category)

	apply(t, g, e, `/tag-add "blocked" A`)
	apply(t, g, e, `/tag-add "blocked" A`) // idempotent
	assert.Equal(t, []string{"A"}, g.findTag("blocked").Elements)

	apply(t, g, e, `/tag-remove "blocked" A`)
	assert.Empty(t, g.findTag("blocked").Elements)

	apply(t, g, e, `/batch-tag "blocked" a,b,c`)
	assert.Len(t, g.findTag("blocked").Elements, 3)

	res = apply(t, g, e, "/tag-list")
	assert.Len(t, res.Data.([]Tag), 1)
}

func TestMatrixMode(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	apply(t, g, e, `/task-create "T"`)

	// Matrix moves require matrix mode.
	_, err := applyErr(g, e, "/matrix-move T urgent-important")
	assert.ErrorIs(t, err, ErrNotInMatrixMode)

	apply(t, g, e, "/matrix-enter")
	apply(t, g, e, "/matrix-move T urgent-important")
	assert.Equal(t, "urgent-important", g.findTask("T").Quadrant)

	res := apply(t, g, e, "/matrix-show urgent-important")
	assert.Len(t, res.Data.([]Task), 1)

	res = apply(t, g, e, "/matrix-show not-urgent-important")
	assert.Empty(t, res.Data)

	apply(t, g, e, "/matrix-exit")
	assert.False(t, g.matrixMode)
}

func TestSelectionAndNavigation(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	apply(t, g, e, `/node-create process "A"`)
	apply(t, g, e, `/node-create decision "B"`)
	apply(t, g, e, `/task-create "T" "A" high`)

	apply(t, g, e, "/select A")
	assert.Equal(t, []string{"A"}, g.selection)

	apply(t, g, e, "/select-all node")
	assert.Len(t, g.selection, 2)

	apply(t, g, e, "/select-all")
	assert.Len(t, g.selection, 3)

	apply(t, g, e, "/select-by priority high")
	assert.Equal(t, []string{"T"}, g.selection)

	apply(t, g, e, "/select-by type decision")
	assert.Equal(t, []string{"B"}, g.selection)

	apply(t, g, e, "/select-none")
	assert.Empty(t, g.selection)

	apply(t, g, e, `/goto "B"`)
	assert.Equal(t, "B", g.view.FocusOn)

	res := apply(t, g, e, "/next")
	assert.Equal(t, "A", res.Data.(Node).Name, "next wraps past the end")
	res = apply(t, g, e, "/previous")
	assert.Equal(t, "B", res.Data.(Node).Name)

	res = apply(t, g, e, `/find "a"`)
	assert.Equal(t, []string{"A"}, res.Data.([]string))
}

func TestViewState(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	apply(t, g, e, `/node-create process "A"`)

	apply(t, g, e, "/view-zoom in")
	assert.Equal(t, "in", g.view.Zoom)

	apply(t, g, e, `/view-center "A"`)
	assert.Equal(t, "A", g.view.CenterOn)

	_, err := applyErr(g, e, `/view-center "Nowhere"`)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	apply(t, g, e, "/view-focus A")
	assert.Equal(t, "A", g.view.FocusOn)
}

func TestClearRequiresConfirmation(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	apply(t, g, e, `/node-create process "A"`)

	res := apply(t, g, e, "/workflow-clear")
	assert.Contains(t, res.Message, "confirmation required")
	assert.Len(t, g.nodes, 1, "unconfirmed clear must not mutate")

	apply(t, g, e, "/workflow-clear confirm")
	assert.Empty(t, g.nodes)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	apply(t, g, e, `/node-create process "A" 10,20`)
	apply(t, g, e, `/node-create process "B"`)
	apply(t, g, e, `/connect "A" "B" parallel`)
	apply(t, g, e, `/task-create "T" "A" low`)
	apply(t, g, e, `/workflow-save "release-flow"`)

	apply(t, g, e, "/workflow-clear confirm")
	require.Empty(t, g.nodes)

	apply(t, g, e, `/workflow-load "release-flow"`)
	require.Len(t, g.nodes, 2)
	assert.Equal(t, 10, g.findNode("A").X)
	require.Len(t, g.flowlines, 1)
	assert.Equal(t, "parallel", g.flowlines[0].Type)
	assert.Equal(t, "A", g.findTask("T").Node)

	// Id counters resume; no collision with loaded elements.
	res := apply(t, g, e, `/node-create process "C"`)
	assert.Equal(t, "node-3", res.Data.(Node).ID)
}

func TestLoadMissingFile(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	_, err := applyErr(g, e, `/workflow-load "nope"`)
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	apply(t, g, e, `/node-create process "A"`)

	res := apply(t, g, e, "/workflow-export")
	assert.Contains(t, res.Message, "json")

	_, err := applyErr(g, e, "/workflow-export svg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestStatusAndStats(t *testing.T) {
	g := newTestGraph(t)
	e := commands.NewEngine()

	apply(t, g, e, `/node-create process "A"`)
	apply(t, g, e, `/node-create decision "B"`)
	apply(t, g, e, `/task-create "T" "A" high`)

	res := apply(t, g, e, "/workflow-status")
	stats := res.Data.(Stats)
	assert.Equal(t, 2, stats.Nodes)
	assert.Equal(t, 1, stats.Tasks)
	assert.Nil(t, stats.NodeTypes, "status is the summary view")

	res = apply(t, g, e, "/workflow-stats")
	stats = res.Data.(Stats)
	assert.Equal(t, 1, stats.NodeTypes["process"])
	assert.Equal(t, 1, stats.NodeTypes["decision"])
	assert.Equal(t, 1, stats.Priorities["high"])
}

func TestUnknownAction(t *testing.T) {
	g := newTestGraph(t)
	_, err := g.Apply("explode_everything", nil)
	assert.ErrorIs(t, err, ErrUnknownAction)
}
