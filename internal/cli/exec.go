// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// exec.go - Chat command execution for the interactive session.
//
// The interpretation engine only classifies and extracts; this file is the
// execution collaborator that carries each chat action out against the
// opportunity store, the nb bridge and the analysis pipeline.

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/morganforge/flowdesk/internal/analysis"
	"github.com/morganforge/flowdesk/internal/commands"
	"github.com/morganforge/flowdesk/internal/notes"
	"github.com/morganforge/flowdesk/internal/storage"
	"github.com/morganforge/flowdesk/internal/ui/styles"
)

// runChatCommand validates a chat command and executes its action.
func (s *Session) runChatCommand(ctx context.Context, parsed commands.ParsedCommand) {
	if !s.checkValidation(parsed) {
		return
	}
	env, ok := s.engine.Envelope(parsed)
	if !ok {
		return
	}

	if err := s.execute(ctx, env); err != nil {
		s.printf(styles.Error, "error: %v\n", err)
	}
}

// execute dispatches one chat action.
func (s *Session) execute(ctx context.Context, env commands.Envelope) error {
	p := env.Parameters

	switch env.Action {
	case "create_note":
		return s.createNote(ctx, str(p, "content"), notes.CreateOptions{})

	case "create_task_note":
		taskID := str(p, "task_id")
		return s.createNote(ctx, str(p, "content"), notes.CreateOptions{
			Title: "task " + taskID,
			Tags:  []string{taskID},
		})

	case "search_notes":
		results, err := s.bridge.Search(ctx, str(p, "query"), "")
		if err != nil {
			return err
		}
		s.printNotes(results)
		return nil

	case "list_notes":
		return s.listNotes(ctx, filters(p))

	case "add_tags_to_note":
		noteID := str(p, "note_id")
		tags, _ := p["tags"].([]string)
		if err := s.bridge.AddTags(ctx, noteID, tags); err != nil {
			return err
		}
		s.printf(styles.Success, "tagged note %s with %s\n", noteID, strings.Join(tags, ", "))
		return nil

	case "link_note":
		return s.associate(ctx, str(p, "note_id"), str(p, "target_id"))
	case "link_opportunity":
		return s.associate(ctx, str(p, "opp_id"), str(p, "target_id"))
	case "link_task":
		return s.associate(ctx, str(p, "task_id"), str(p, "note_id"))
	case "create_association":
		return s.associate(ctx, str(p, "id1"), str(p, "id2"))

	case "handle_opp":
		if content := str(p, "content"); content != "" {
			s.printf(styles.Muted, "use /opp-create, /opp-list, /opp-search or /opp-link\n")
			return nil
		}
		return s.listOpportunities(ctx, commands.FilterSet{})

	case "create_opportunity":
		store, err := s.requireStore()
		if err != nil {
			return err
		}
		opp, err := store.CreateOpportunity(ctx, str(p, "title"), str(p, "description"))
		if err != nil {
			return err
		}
		s.printf(styles.Success, "created opportunity %s: %s\n", opp.ID, opp.Title)
		return nil

	case "list_opportunities":
		return s.listOpportunities(ctx, filters(p))

	case "search_opportunities":
		store, err := s.requireStore()
		if err != nil {
			return err
		}
		opps, err := store.SearchOpportunities(ctx, str(p, "query"))
		if err != nil {
			return err
		}
		s.printOpportunities(opps)
		return nil

	case "analyze_text":
		profile := analysis.Analyze(str(p, "text"))
		fmt.Fprint(s.out, renderProfile(profile, s.cfg.UI.Quiet))
		return nil

	case "suggest_for_context":
		return s.suggestForContext(str(p, "context"))

	case "execute_sql":
		store, err := s.requireStore()
		if err != nil {
			return err
		}
		cols, rows, err := store.Query(ctx, str(p, "query"))
		if err != nil {
			return err
		}
		fmt.Fprint(s.out, renderTable(cols, rows))
		return nil

	case "show_help":
		payload := s.engine.Help(str(p, "topic"))
		fmt.Fprint(s.out, renderHelp(payload, s.cfg.UI.HelpWidth, s.cfg.UI.Quiet))
		return nil

	case "list_commands":
		payload := s.engine.Help("")
		fmt.Fprint(s.out, renderHelp(payload, s.cfg.UI.HelpWidth, s.cfg.UI.Quiet))
		return nil

	case "show_status":
		return s.showStatus(ctx)

	default:
		return fmt.Errorf("no handler for action %s", env.Action)
	}
}

// =============================================================================
// ACTION HELPERS
// =============================================================================

func (s *Session) createNote(ctx context.Context, content string, opts notes.CreateOptions) error {
	id, err := s.bridge.Create(ctx, content, opts)
	if err != nil {
		return err
	}
	s.printf(styles.Success, "created note %s\n", id)
	return nil
}

// listNotes lists notes, routing tag filters through nb search since nb
// carries tags inline as #hashtags.
func (s *Session) listNotes(ctx context.Context, f commands.FilterSet) error {
	limit := 0
	if f.HasLimit {
		limit = f.Limit
	}

	var (
		results []notes.Note
		err     error
	)
	if len(f.Tags) > 0 {
		results, err = s.bridge.Search(ctx, "#"+f.Tags[0], "")
		if err == nil && limit > 0 && len(results) > limit {
			results = results[:limit]
		}
	} else {
		results, err = s.bridge.List(ctx, "", limit)
	}
	if err != nil {
		return err
	}
	s.printNotes(results)
	return nil
}

func (s *Session) listOpportunities(ctx context.Context, f commands.FilterSet) error {
	store, err := s.requireStore()
	if err != nil {
		return err
	}
	opps, err := store.ListOpportunities(ctx, f)
	if err != nil {
		return err
	}
	s.printOpportunities(opps)
	return nil
}

func (s *Session) associate(ctx context.Context, sourceID, targetID string) error {
	store, err := s.requireStore()
	if err != nil {
		return err
	}
	assoc, err := store.CreateAssociation(ctx, sourceID, targetID)
	if err != nil {
		return err
	}
	s.printf(styles.Success, "associated %s with %s\n", assoc.SourceID, assoc.TargetID)
	return nil
}

// suggestForContext surfaces command suggestions: from explicit context
// text when given, otherwise from the rolling conversation history.
func (s *Session) suggestForContext(contextText string) error {
	if contextText != "" {
		profile := analysis.Analyze(contextText)
		if len(profile.SuggestedCommands) == 0 {
			s.printf(styles.Muted, "no suggestions for that context\n")
			return nil
		}
		for _, c := range profile.SuggestedCommands {
			s.printf(styles.Suggestion, "%s - %s\n", c.Command, c.Reason)
		}
		return nil
	}

	conv := analysis.AnalyzeConversation(s.history)
	if len(conv.RecentTopics) > 0 {
		s.printf(styles.Muted, "recent topics: %s\n", strings.Join(conv.RecentTopics, ", "))
	}
	if len(conv.RecentCommands) > 0 {
		s.printf(styles.Muted, "recent commands: %s\n", strings.Join(conv.RecentCommands, ", "))
	}
	if len(conv.RecentTopics) == 0 && len(conv.RecentCommands) == 0 {
		s.printf(styles.Muted, "nothing to suggest yet\n")
	}
	return nil
}

func (s *Session) showStatus(ctx context.Context) error {
	s.printf(styles.Title, "flowdesk %s\n", Version)

	if version, err := s.bridge.Version(ctx); err == nil {
		s.printf(styles.Muted, "notes tool: %s\n", version)
	} else {
		s.printf(styles.Warning, "notes tool: unavailable (%v)\n", err)
	}

	if s.store == nil {
		s.printf(styles.Warning, "opportunity store: unavailable\n")
	} else {
		s.printf(styles.Muted, "opportunity store: open\n")
	}

	res, err := s.graph.Apply("show_workflow_status", nil)
	if err != nil {
		return err
	}
	s.printf(styles.Muted, "workflow: %s\n", res.Message)
	return nil
}

func (s *Session) requireStore() (*storage.Store, error) {
	if s.store == nil {
		return nil, fmt.Errorf("opportunity store is not available")
	}
	return s.store, nil
}

func (s *Session) printNotes(results []notes.Note) {
	if len(results) == 0 {
		s.printf(styles.Muted, "no notes found\n")
		return
	}
	for _, n := range results {
		line := fmt.Sprintf("[%s] %s", n.ID, n.Title)
		if n.Preview != "" {
			line += " - " + n.Preview
		}
		fmt.Fprintln(s.out, styles.Render(styles.Command, s.cfg.UI.Quiet, line))
	}
}

func (s *Session) printOpportunities(opps []storage.Opportunity) {
	if len(opps) == 0 {
		s.printf(styles.Muted, "no opportunities found\n")
		return
	}
	for _, o := range opps {
		line := fmt.Sprintf("[%s] %s", o.ID, o.Title)
		if len(o.Tags) > 0 {
			line += " (" + strings.Join(o.Tags, ", ") + ")"
		}
		fmt.Fprintln(s.out, styles.Render(styles.Command, s.cfg.UI.Quiet, line))
	}
}

// =============================================================================
// PARAMETER ACCESS
// =============================================================================

func str(p map[string]any, key string) string {
	v, _ := p[key].(string)
	return v
}

func filters(p map[string]any) commands.FilterSet {
	f, _ := p["filters"].(commands.FilterSet)
	return f
}
