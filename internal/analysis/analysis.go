// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package analysis profiles free text that was not recognized as a slash
// command: entities, intent, topics, references, sentiment and a
// note-worthiness score, plus command suggestions derived from all of the
// above. Every function is a pure heuristic over its input; there is no
// model, no I/O and no state.
package analysis

import (
	"regexp"
	"strings"
)

// =============================================================================
// PROFILE TYPES
// =============================================================================

// Entity is one recognized token with its kind and a fixed confidence.
type Entity struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Sentiment buckets.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// NoteWorthiness is the additive persist-this estimate for free text.
type NoteWorthiness struct {
	Score   float64  `json:"score"`
	Worthy  bool     `json:"worthy"`
	Reasons []string `json:"reasons"`
}

// CommandSuggestion is one hint derived from the profile.
type CommandSuggestion struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

// Profile is the full analysis of one free-text input. Rebuilt per call,
// never stored.
type Profile struct {
	Entities          []Entity            `json:"entities"`
	Intent            string              `json:"intent"`
	Topics            []string            `json:"topics"`
	References        []string            `json:"references"`
	Sentiment         string              `json:"sentiment"`
	NoteWorthy        NoteWorthiness      `json:"note_worthy"`
	SuggestedCommands []CommandSuggestion `json:"suggested_commands"`
}

// Analyze runs every heuristic stage over the text and assembles the
// profile. Stages are independent; later stages consume earlier results
// (worthiness reads entities and topics, suggestions read everything).
func Analyze(text string) Profile {
	p := Profile{
		Entities:   ExtractEntities(text),
		Intent:     ClassifyIntent(text),
		Topics:     ExtractTopics(text),
		References: ExtractReferences(text),
		Sentiment:  AnalyzeSentiment(text),
	}
	p.NoteWorthy = AssessNoteWorthiness(text, p.Entities, p.Topics)
	p.SuggestedCommands = SuggestCommands(text, p)
	return p
}

// =============================================================================
// ENTITY EXTRACTION
// =============================================================================

const (
	idConfidence   = 0.9
	dateConfidence = 0.8
)

var idPatterns = []struct {
	re   *regexp.Regexp
	kind string
}{
	{regexp.MustCompile(`(?i)\b(opp-\w+)\b`), "opportunity_id"},
	{regexp.MustCompile(`(?i)\b(task-\w+)\b`), "task_id"},
	{regexp.MustCompile(`(?i)\b(note-\w+)\b`), "note_id"},
	{regexp.MustCompile(`(?i)\b(workflow-\w+)\b`), "workflow_id"},
}

var datePattern = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`)

// ExtractEntities finds domain ids and date-like tokens. Ids carry a fixed
// 0.9 confidence, dates 0.8.
func ExtractEntities(text string) []Entity {
	var entities []Entity
	for _, p := range idPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			entities = append(entities, Entity{Text: m[1], Type: p.kind, Confidence: idConfidence})
		}
	}
	for _, m := range datePattern.FindAllStringSubmatch(text, -1) {
		entities = append(entities, Entity{Text: m[1], Type: "date", Confidence: dateConfidence})
	}
	return entities
}

// =============================================================================
// INTENT CLASSIFICATION
// =============================================================================

// intentBuckets are checked in order; the first bucket with any keyword
// present in the lowercased text wins. Order is part of the contract:
// "add a new link" classifies as create, not link.
var intentBuckets = []struct {
	intent   string
	keywords []string
}{
	{"create", []string{"create", "add", "new", "make"}},
	{"search", []string{"find", "search", "look for", "locate"}},
	{"update", []string{"update", "modify", "change", "edit"}},
	{"delete", []string{"delete", "remove", "drop"}},
	{"list", []string{"list", "show all", "display"}},
	{"link", []string{"link", "connect", "associate", "relate"}},
	{"question", []string{"what", "how", "why", "when", "where", "?"}},
}

// IntentUnknown is returned when no bucket matches.
const IntentUnknown = "unknown"

// ClassifyIntent assigns the text to the first matching intent bucket.
func ClassifyIntent(text string) string {
	lower := strings.ToLower(text)
	for _, bucket := range intentBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(lower, kw) {
				return bucket.intent
			}
		}
	}
	return IntentUnknown
}

// =============================================================================
// TOPIC EXTRACTION
// =============================================================================

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

// topicDictionaries map a topic to the whole words that indicate it.
// Checked in order so topic output is deterministic.
var topicDictionaries = []struct {
	topic    string
	keywords []string
}{
	{"meeting", []string{"meeting", "call", "discussion"}},
	{"deadline", []string{"deadline", "due", "urgent"}},
	{"project", []string{"project", "initiative", "campaign"}},
	{"client", []string{"client", "customer", "stakeholder"}},
	{"design", []string{"design", "ui", "ux", "layout"}},
	{"development", []string{"development", "coding", "programming"}},
	{"testing", []string{"test", "testing", "qa", "quality"}},
	{"deployment", []string{"deploy", "deployment", "release"}},
}

// ExtractTopics tags the text with every topic whose keywords appear as
// whole words.
func ExtractTopics(text string) []string {
	words := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		words[w] = true
	}

	var topics []string
	for _, dict := range topicDictionaries {
		for _, kw := range dict.keywords {
			if words[kw] {
				topics = append(topics, dict.topic)
				break
			}
		}
	}
	return topics
}

// =============================================================================
// REFERENCES AND SENTIMENT
// =============================================================================

var referencePattern = regexp.MustCompile(`[@#](\w+)`)

// ExtractReferences collects @mention and #hashtag tokens in order of
// appearance.
func ExtractReferences(text string) []string {
	var refs []string
	for _, m := range referencePattern.FindAllStringSubmatch(text, -1) {
		refs = append(refs, m[1])
	}
	return refs
}

var (
	positiveWords = []string{"good", "great", "excellent", "success", "complete", "finished"}
	negativeWords = []string{"problem", "issue", "error", "failed", "urgent", "blocked"}
)

// AnalyzeSentiment is a majority vote between the fixed positive and
// negative keyword lists; a tie is neutral.
func AnalyzeSentiment(text string) string {
	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// =============================================================================
// NOTE-WORTHINESS
// =============================================================================

// worthyThreshold is the score above which text is worth persisting.
const worthyThreshold = 0.5

var (
	actionWords   = []string{"todo", "need to", "should", "must", "action", "task"}
	decisionWords = []string{"decided", "agreed", "concluded", "result"}
)

// AssessNoteWorthiness scores the text additively, capped at 1.0:
// substance (+0.3 for length over 50), actionable wording (+0.4), extracted
// entities (+0.2), deadline topic (+0.3) and decision wording (+0.3).
func AssessNoteWorthiness(text string, entities []Entity, topics []string) NoteWorthiness {
	lower := strings.ToLower(text)
	score := 0.0
	var reasons []string

	if len(text) > 50 {
		score += 0.3
		reasons = append(reasons, "substantial_content")
	}
	if containsAny(lower, actionWords) {
		score += 0.4
		reasons = append(reasons, "actionable_content")
	}
	if len(entities) > 0 {
		score += 0.2
		reasons = append(reasons, "contains_entities")
	}
	if contains(topics, "deadline") {
		score += 0.3
		reasons = append(reasons, "time_sensitive")
	}
	if containsAny(lower, decisionWords) {
		score += 0.3
		reasons = append(reasons, "contains_decisions")
	}

	worthy := score > worthyThreshold
	if score > 1.0 {
		score = 1.0
	}
	return NoteWorthiness{Score: score, Worthy: worthy, Reasons: reasons}
}

// =============================================================================
// COMMAND SUGGESTIONS
// =============================================================================

// maxSuggestions caps the hint list.
const maxSuggestions = 3

// SuggestCommands derives up to three command hints from the profile, in
// fixed priority order: persist note-worthy text, capture project talk as
// an opportunity, search for questions, analyze long entity-bearing text.
func SuggestCommands(text string, p Profile) []CommandSuggestion {
	lower := strings.ToLower(text)
	var out []CommandSuggestion

	if p.NoteWorthy.Worthy {
		out = append(out, CommandSuggestion{
			Command: "/note-create",
			Reason:  "Content appears worth saving as a note",
		})
	}
	if contains(p.Topics, "project") || containsAny(lower, []string{"project", "initiative"}) {
		out = append(out, CommandSuggestion{
			Command: "/opp-create",
			Reason:  "Content mentions projects or initiatives",
		})
	}
	if p.Intent == "question" || strings.Contains(text, "?") {
		out = append(out, CommandSuggestion{
			Command: "/note-search",
			Reason:  "Appears to be asking a question",
		})
	}
	if len(text) > 100 && len(p.Entities) > 0 {
		out = append(out, CommandSuggestion{
			Command: "/analyze",
			Reason:  "Complex content could benefit from analysis",
		})
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
