// Package engine - enhancer.go rewrites ambiguous queries.
//
// DESIGN: Two cheap lexical triggers. A query that leans on contextual
// references ("that", "it", "earlier") is prefixed with a snippet of
// the most recent user message; a follow-up pattern ("tell me more")
// is prefixed with the topic of the last assistant answer. Anything
// else passes through untouched.
package engine

import (
	"fmt"
	"strings"
)

// snippetWordCount is how many words of prior context the reference
// rewrite quotes.
const snippetWordCount = 10

// enhancerMinQueryLen: queries shorter than this pass through as-is.
const enhancerMinQueryLen = 3

// enhancerUserLookback: how many trailing user messages are considered
// for the reference rewrite.
const enhancerUserLookback = 3

// Enhancer rewrites queries using the selected context window.
type Enhancer struct {
	extractor *Extractor
}

// NewEnhancer creates an Enhancer.
func NewEnhancer(cfg Config) *Enhancer {
	return &Enhancer{extractor: NewExtractor(cfg.MaxTopics)}
}

// Enhance returns the query rewritten against the window, or the query
// unchanged when no trigger applies. Bridge entries are never quoted.
func (e *Enhancer) Enhance(query string, window ContextWindow) string {
	if window.IsEmpty() || len(query) < enhancerMinQueryLen {
		return query
	}

	if hasContextualReference(query) {
		if enhanced, ok := e.referenceRewrite(query, window); ok {
			return enhanced
		}
	}

	if hasFollowUpPattern(query) {
		if enhanced, ok := e.followUpRewrite(query, window); ok {
			return enhanced
		}
	}

	return query
}

// referenceRewrite prefixes the query with a snippet of the most
// recent user message in the window.
func (e *Enhancer) referenceRewrite(query string, window ContextWindow) (string, bool) {
	users := lastUserMessages(window, enhancerUserLookback)
	if len(users) == 0 {
		return "", false
	}

	latest := users[0]
	snippet := contentSnippet(latest.Content, snippetWordCount)
	if snippet == "" {
		return "", false
	}

	enhanced := fmt.Sprintf("Referring to our previous discussion about %q, %s", snippet, query)
	if latest.HasImages() {
		enhanced += " (that discussion included a shared image)"
	}
	return enhanced, true
}

// followUpRewrite prefixes the query with the dominant topic of the
// last assistant message in the window.
func (e *Enhancer) followUpRewrite(query string, window ContextWindow) (string, bool) {
	for i := len(window.Entries) - 1; i >= 0; i-- {
		entry := window.Entries[i]
		if entry.Synthetic || entry.Role != RoleAssistant {
			continue
		}
		topics := e.extractor.Extract([]Message{entry.Message})
		if len(topics) == 0 {
			return "", false
		}
		return fmt.Sprintf("Building on your explanation about %s: %s", topics[0], query), true
	}
	return "", false
}

// hasContextualReference checks the query tokens against the
// contextual-reference word list.
func hasContextualReference(query string) bool {
	for _, tok := range tokenize(query) {
		if _, ok := contextualReferenceWords[tok]; ok {
			return true
		}
	}
	return false
}

// hasFollowUpPattern checks the lowercased query against the follow-up
// phrase list.
func hasFollowUpPattern(query string) bool {
	lower := strings.ToLower(query)
	for _, pattern := range followUpPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// lastUserMessages returns up to n real user messages from the window,
// most recent first.
func lastUserMessages(window ContextWindow, n int) []Message {
	var users []Message
	for i := len(window.Entries) - 1; i >= 0 && len(users) < n; i-- {
		entry := window.Entries[i]
		if !entry.Synthetic && entry.Role == RoleUser {
			users = append(users, entry.Message)
		}
	}
	return users
}

// contentSnippet returns the first n words of content joined by spaces.
func contentSnippet(content string, n int) string {
	words := strings.Fields(content)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
