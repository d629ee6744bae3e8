// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// PERSISTENCE
// =============================================================================

var ErrUnsupportedFormat = errors.New("unsupported export format")

// snapshot is the on-disk form of a graph.
type snapshot struct {
	Nodes      []*Node     `json:"nodes"`
	Tasks      []*Task     `json:"tasks"`
	Flowlines  []*Flowline `json:"flowlines"`
	Tags       []*Tag      `json:"tags"`
	View       ViewState   `json:"view"`
	NextNodeID int         `json:"next_node_id"`
	NextTaskID int         `json:"next_task_id"`
}

// workflowPath resolves a saved-workflow filename inside the base
// directory, appending .json when missing. Path separators are stripped so
// a filename cannot escape the directory.
func (g *Graph) workflowPath(filename string) string {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." {
		filename = "workflow"
	}
	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}
	return filepath.Join(g.baseDir, filename)
}

func saveWorkflow(g *Graph, p params) (Result, error) {
	path := g.workflowPath(p.str("filename"))
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Result{}, fmt.Errorf("saving workflow: %w", err)
	}

	snap := snapshot{
		Nodes:      g.nodes,
		Tasks:      g.tasks,
		Flowlines:  g.flowlines,
		Tags:       g.tags,
		View:       g.view,
		NextNodeID: g.nextNodeID,
		NextTaskID: g.nextTaskID,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("saving workflow: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return Result{}, fmt.Errorf("saving workflow: %w", err)
	}
	return Result{Message: fmt.Sprintf("saved workflow to %s", filepath.Base(path))}, nil
}

func loadWorkflow(g *Graph, p params) (Result, error) {
	path := g.workflowPath(p.str("filename"))
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("loading workflow: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Result{}, fmt.Errorf("loading workflow %s: %w", filepath.Base(path), err)
	}

	g.nodes = snap.Nodes
	g.tasks = snap.Tasks
	g.flowlines = snap.Flowlines
	g.tags = snap.Tags
	g.view = snap.View
	g.nextNodeID = snap.NextNodeID
	g.nextTaskID = snap.NextTaskID
	g.selection = nil
	g.cursor = 0
	return Result{Message: fmt.Sprintf("loaded workflow from %s", filepath.Base(path))}, nil
}

func exportWorkflow(g *Graph, p params) (Result, error) {
	format := strings.ToLower(p.str("format"))
	if format != "json" {
		// Rendered formats need the canvas renderer, which lives in the
		// designer frontend.
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	res, err := saveWorkflow(g, params{"filename": "export"})
	if err != nil {
		return Result{}, err
	}
	res.Message = "exported workflow as json"
	return res, nil
}
