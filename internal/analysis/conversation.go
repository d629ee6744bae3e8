// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package analysis

import "strings"

// =============================================================================
// CONVERSATION CONTEXT
// =============================================================================

// recentWindow is how many trailing messages the conversation analysis
// looks at.
const recentWindow = 5

// Message is one chat history entry.
type Message struct {
	Content string `json:"content"`
}

// ConversationContext summarizes the tail of a chat history: which topics
// came up in free text and which commands were issued. Both lists are
// deduplicated in first-seen order.
type ConversationContext struct {
	RecentTopics   []string `json:"recent_topics"`
	RecentCommands []string `json:"recent_commands"`
	Length         int      `json:"conversation_length"`
}

// AnalyzeConversation profiles the last few messages of a history.
func AnalyzeConversation(history []Message) ConversationContext {
	ctx := ConversationContext{Length: len(history)}
	if len(history) == 0 {
		return ctx
	}

	start := len(history) - recentWindow
	if start < 0 {
		start = 0
	}

	seenTopic := make(map[string]bool)
	seenCommand := make(map[string]bool)
	for _, msg := range history[start:] {
		content := msg.Content
		if strings.HasPrefix(content, "/") {
			command := content
			if i := strings.IndexByte(content, ' '); i >= 0 {
				command = content[:i]
			}
			if !seenCommand[command] {
				seenCommand[command] = true
				ctx.RecentCommands = append(ctx.RecentCommands, command)
			}
			continue
		}
		for _, topic := range ExtractTopics(content) {
			if !seenTopic[topic] {
				seenTopic[topic] = true
				ctx.RecentTopics = append(ctx.RecentTopics, topic)
			}
		}
	}
	return ctx
}
