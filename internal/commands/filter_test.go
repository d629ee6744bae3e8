// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"reflect"
	"testing"
)

// =============================================================================
// FILTER PARSER TESTS
// =============================================================================

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FilterSet
	}{
		{
			"all keys",
			"tag:finance,urgent opp:opp-7 task:task-3 limit:5",
			FilterSet{
				Tags:          []string{"finance", "urgent"},
				OpportunityID: "opp-7",
				TaskID:        "task-3",
				Limit:         5,
				HasLimit:      true,
			},
		},
		{
			"single tag",
			"tag:meeting",
			FilterSet{Tags: []string{"meeting"}},
		},
		{
			"unknown keys ignored",
			"tag:a foo:bar color:red",
			FilterSet{Tags: []string{"a"}},
		},
		{
			"first occurrence wins",
			"tag:a tag:b limit:1 limit:2",
			FilterSet{Tags: []string{"a"}, Limit: 1, HasLimit: true},
		},
		{
			"invalid limit skipped, later valid one taken",
			"limit:abc limit:7",
			FilterSet{Limit: 7, HasLimit: true},
		},
		{
			"negative limit skipped",
			"limit:-3",
			FilterSet{},
		},
		{
			"empty string",
			"",
			FilterSet{},
		},
		{
			"whitespace only",
			"   ",
			FilterSet{},
		},
		{
			"bare words ignored",
			"finance urgent",
			FilterSet{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseFilters(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseFilters(%q) = %+v, want %+v", tc.input, got, tc.want)
			}
		})
	}
}

func TestFilterSetIsZero(t *testing.T) {
	if !(FilterSet{}).IsZero() {
		t.Error("empty FilterSet should be zero")
	}
	if (FilterSet{TaskID: "t"}).IsZero() {
		t.Error("FilterSet with task id should not be zero")
	}
	if (FilterSet{HasLimit: true}).IsZero() {
		t.Error("FilterSet with limit should not be zero")
	}
}
