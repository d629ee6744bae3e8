// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

// =============================================================================
// GRAMMAR AMBIGUITY LINT
// =============================================================================

// AmbiguityReport records one example invocation matched by more than one
// grammar rule. Candidates carries every matching rule, prefixed with the
// rule set it belongs to (e.g. "workflow/node-create").
type AmbiguityReport struct {
	Input      string
	Candidates []string
}

// exampleInvocations is one representative invocation per command,
// exercised by the lint and by the package tests. Kept next to the grammars
// so rule edits update the examples in the same review.
var exampleInvocations = []string{
	`/note Remember to call the vendor`,
	`/note-create Budget approved for Q3`,
	`/note-search vendor contract`,
	`/note-find onboarding checklist`,
	`/note-tag note-12 finance urgent`,
	`/note-list tag:finance limit:5`,
	`/note-link note-12 opp-7`,
	`/opp New supplier inquiry`,
	`/opp-create "Renew hosting" - negotiate a multi-year discount`,
	`/opp-list tag:infra`,
	`/opp-link opp-7 task-3`,
	`/opp-search hosting`,
	`/task-note task-3 Waiting on legal review`,
	`/task-link task-3 note-12`,
	`/analyze we should ship the beta by Friday`,
	`/suggest current sprint`,
	`/associate note-12 task-3`,
	`/sql "SELECT count(*) FROM notes"`,
	`/db-query SELECT id FROM opportunities`,
	`/help note-create`,
	`/commands`,
	`/status`,

	`/node-create process "Review Documents" 100,200`,
	`/node-delete Review Documents`,
	`/node-rename "Review Documents" "Review Contracts"`,
	`/node-move Review Contracts 300,400`,
	`/node-type Review Contracts decision`,
	`/task-create "Call client" "Review Contracts" high`,
	`/task-delete Call client`,
	`/task-move Call client "Approve"`,
	`/task-advance Call client "Archive"`,
	`/task-priority Call client urgent`,
	`/connect "Review Contracts" "Approve" conditional`,
	`/disconnect "Review Contracts" "Approve"`,
	`/flowline-type "Review Contracts" "Approve" error`,
	`/disconnect all`,
	`/tag-create "blocked" status`,
	`/tag-add "blocked" Call client`,
	`/tag-remove "blocked" Call client`,
	`/tag-list tag:status`,
	`/workflow-save "release-flow"`,
	`/workflow-load "release-flow"`,
	`/workflow-export svg`,
	`/workflow-clear confirm`,
	`/workflow-status`,
	`/workflow-stats`,
	`/matrix-enter`,
	`/matrix-exit`,
	`/matrix-move Call client urgent-important`,
	`/matrix-show urgent-important`,
	`/view-zoom fit`,
	`/view-center "Approve"`,
	`/view-focus Call client`,
	`/select Approve`,
	`/select-all node`,
	`/select-none`,
	`/select-by priority high`,
	`/goto "Approve"`,
	`/find "Review Contracts"`,
	`/next node`,
	`/previous task`,
	`/batch-create node a,b,c`,
	`/batch-connect "a,b" "c,d"`,
	`/batch-tag "blocked" a,b,c`,
}

// LintExamples runs every documented example invocation against both rule
// sets and reports each input that more than one grammar matched. Overlaps
// within a single set are authoring defects; overlaps across the two sets
// are expected for shared prefixes and are still reported so reviewers see
// the full picture.
func LintExamples(chat, workflow *Registry) []AmbiguityReport {
	return LintInputs(exampleInvocations, chat, workflow)
}

// LintInputs is LintExamples over a caller-supplied input list.
func LintInputs(inputs []string, chat, workflow *Registry) []AmbiguityReport {
	var reports []AmbiguityReport
	for _, input := range inputs {
		var candidates []string
		for _, reg := range []*Registry{chat, workflow} {
			res := Match(input, reg)
			for _, name := range res.Candidates() {
				candidates = append(candidates, string(reg.Set())+"/"+name)
			}
		}
		if len(candidates) > 1 {
			reports = append(reports, AmbiguityReport{Input: input, Candidates: candidates})
		}
	}
	return reports
}
