// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strconv"
	"strings"
)

// =============================================================================
// FILTER EXPRESSION PARSER
// =============================================================================

// FilterSet is the parsed form of a list-command filter string. All fields
// are optional; zero values plus HasLimit=false mean "not specified".
type FilterSet struct {
	// Tags from "tag:a,b" (comma-split).
	Tags []string

	// OpportunityID from "opp:<id>".
	OpportunityID string

	// TaskID from "task:<id>".
	TaskID string

	// Limit from "limit:<n>", valid only when HasLimit is true.
	Limit    int
	HasLimit bool
}

// IsZero reports whether no filter was specified at all.
func (f FilterSet) IsZero() bool {
	return len(f.Tags) == 0 && f.OpportunityID == "" && f.TaskID == "" && !f.HasLimit
}

// ParseFilters parses a filter string: a space-separated sequence of
// key:value tokens. Recognized keys are tag, opp, task and limit; each key
// is parsed independently and the first occurrence of a repeated key wins.
//
// Unrecognized keys are ignored rather than rejected, so newer filter
// keys pass through older parsers. A limit whose value is not a
// non-negative integer is likewise skipped.
func ParseFilters(s string) FilterSet {
	var out FilterSet
	if strings.TrimSpace(s) == "" {
		return out
	}

	seen := make(map[string]bool, 4)
	for _, token := range strings.Fields(s) {
		key, value, ok := strings.Cut(token, ":")
		if !ok || value == "" {
			continue
		}
		if seen[key] {
			continue
		}

		switch key {
		case "tag":
			out.Tags = strings.Split(value, ",")
			seen[key] = true
		case "opp":
			out.OpportunityID = value
			seen[key] = true
		case "task":
			out.TaskID = value
			seen[key] = true
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				continue
			}
			out.Limit = n
			out.HasLimit = true
			seen[key] = true
		}
	}

	return out
}
