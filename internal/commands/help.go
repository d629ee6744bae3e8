// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "strings"

// =============================================================================
// HELP COMPOSER
// =============================================================================

// HelpCategory is one named group of commands in the categorized listing.
type HelpCategory struct {
	Name     string
	Commands []Description
}

// HelpPayload is the structured result of a help request. Exactly one of
// the two shapes is populated: Categories plus GettingStarted for a general
// request, or Matches (with an optional Suggestion fallback) for a
// specific-command request.
type HelpPayload struct {
	Topic          string
	Categories     []HelpCategory
	GettingStarted []string

	Matches    []Description
	Suggestion string
}

// categoryDef assigns commands to a category by predicate. A command may
// satisfy more than one predicate and then appears in every category it
// matches.
type categoryDef struct {
	name  string
	match func(command string) bool
}

var helpCategories = []categoryDef{
	{"Notes", hasPrefix("/note", "/task-note")},
	{"Opportunities", hasPrefix("/opp")},
	{"Nodes", hasPrefix("/node")},
	{"Tasks", hasPrefix("/task")},
	{"Flowlines", hasPrefix("/connect", "/disconnect", "/flowline")},
	{"Tags", hasPrefix("/tag", "/batch-tag")},
	{"Workflow", hasPrefix("/workflow", "/batch")},
	{"Matrix", hasPrefix("/matrix")},
	{"View & Navigation", hasPrefix("/view", "/select", "/goto", "/find", "/next", "/previous")},
	{"Analysis", hasPrefix("/analyze", "/suggest", "/associate")},
	{"Database", hasPrefix("/sql", "/db-query")},
	{"General", hasPrefix("/help", "/commands", "/status")},
}

func hasPrefix(prefixes ...string) func(string) bool {
	return func(command string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(command, p) {
				return true
			}
		}
		return false
	}
}

// gettingStarted is the fixed example list shown with general help.
var gettingStarted = []string{
	`/note Remember to follow up with the design team`,
	`/node-create process "Review Documents" 100,200`,
	`/task-create "Call client" "Review Documents" high`,
	`/connect "Review Documents" "Approve" conditional`,
	`/note-list tag:meeting limit:5`,
	`/workflow-save "release-flow"`,
}

// Help composes the help payload for an optional topic. An empty topic
// yields the categorized listing plus getting-started examples. A specific
// topic performs a case-insensitive substring search over the command
// vocabulary; when nothing matches, the fuzzy suggester provides a
// fallback.
func Help(topic string, reg *Registry) HelpPayload {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return HelpPayload{
			Categories:     categorize(reg),
			GettingStarted: gettingStarted,
		}
	}

	needle := strings.ToLower(strings.TrimPrefix(topic, "/"))
	payload := HelpPayload{Topic: topic}
	for _, d := range reg.Descriptions() {
		if strings.Contains(strings.ToLower(commandToken(d.Command)), needle) {
			payload.Matches = append(payload.Matches, d)
		}
	}
	if len(payload.Matches) == 0 {
		payload.Suggestion = SuggestSimilar(topic, reg)
	}
	return payload
}

func categorize(reg *Registry) []HelpCategory {
	descs := reg.Descriptions()
	out := make([]HelpCategory, 0, len(helpCategories))
	for _, def := range helpCategories {
		var cat HelpCategory
		cat.Name = def.name
		for _, d := range descs {
			if def.match(commandToken(d.Command)) {
				cat.Commands = append(cat.Commands, d)
			}
		}
		if len(cat.Commands) > 0 {
			out = append(out, cat)
		}
	}
	return out
}
