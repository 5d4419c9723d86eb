// Package engine - summary.go condenses long conversations.
package engine

import (
	"fmt"
	"strings"
)

// summaryMinMessages: conversations shorter than this produce no summary.
const summaryMinMessages = 6

// summaryChunkSize: phase detection chunks the history into groups of
// this many messages.
const summaryChunkSize = 8

// summaryTopicLimit caps the overall-topics clause.
const summaryTopicLimit = 3

// summaryRecentWindow and summaryRecentTopicLimit drive the
// recent-focus clause.
const (
	summaryRecentWindow     = 10
	summaryRecentTopicLimit = 2
)

// Summarizer produces a human-readable paragraph for a conversation.
type Summarizer struct {
	extractor *Extractor
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(cfg Config) *Summarizer {
	return &Summarizer{extractor: NewExtractor(cfg.MaxTopics)}
}

// Summarize returns one paragraph describing the conversation, or ""
// when the history is too short to be worth summarizing.
func (s *Summarizer) Summarize(history []Message) string {
	if len(history) < summaryMinMessages {
		return ""
	}

	var parts []string
	parts = append(parts, s.countClause(history))

	if topics := s.extractor.ExtractN(history, summaryTopicLimit); len(topics) > 0 {
		parts = append(parts, fmt.Sprintf("The discussion covers %s.", joinNatural(topics)))
	}

	if phases := s.phases(history); len(phases) > 1 {
		parts = append(parts, fmt.Sprintf("It progressed from %s.", strings.Join(phases, " to ")))
	}

	if interactive(history) {
		parts = append(parts, "The user asked frequent questions throughout.")
	}

	if focus := s.recentFocus(history); len(focus) > 0 {
		parts = append(parts, fmt.Sprintf("Most recently the conversation has focused on %s.", joinNatural(focus)))
	}

	return strings.Join(parts, " ")
}

// countClause states the message count and, when present, the image count.
func (s *Summarizer) countClause(history []Message) string {
	images := 0
	for _, m := range history {
		images += len(m.Images)
	}
	if images > 0 {
		return fmt.Sprintf("This conversation spans %d messages, including %d shared images.", len(history), images)
	}
	return fmt.Sprintf("This conversation spans %d messages.", len(history))
}

// phases chunks the history into groups of summaryChunkSize and names
// each chunk by its single most frequent topic word, de-duplicating
// adjacent repeats.
func (s *Summarizer) phases(history []Message) []string {
	var phases []string
	for start := 0; start < len(history); start += summaryChunkSize {
		end := start + summaryChunkSize
		if end > len(history) {
			end = len(history)
		}
		top := s.extractor.ExtractN(history[start:end], 1)
		if len(top) == 0 {
			continue
		}
		if len(phases) > 0 && phases[len(phases)-1] == top[0] {
			continue
		}
		phases = append(phases, top[0])
	}
	return phases
}

// recentFocus extracts up to two topics from the last
// summaryRecentWindow messages, scanned newest first.
func (s *Summarizer) recentFocus(history []Message) []string {
	start := len(history) - summaryRecentWindow
	if start < 0 {
		start = 0
	}
	recent := history[start:]

	reversed := make([]Message, len(recent))
	for i, m := range recent {
		reversed[len(recent)-1-i] = m
	}
	return s.extractor.ExtractN(reversed, summaryRecentTopicLimit)
}

// interactive reports whether more than half of the user messages
// contain a question mark.
func interactive(history []Message) bool {
	users, questions := 0, 0
	for _, m := range history {
		if m.Role != RoleUser {
			continue
		}
		users++
		if strings.Contains(m.Content, "?") {
			questions++
		}
	}
	return users > 0 && questions*2 > users
}

// joinNatural joins words as "a", "a and b", or "a, b, and c".
func joinNatural(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	case 2:
		return words[0] + " and " + words[1]
	default:
		return strings.Join(words[:len(words)-1], ", ") + ", and " + words[len(words)-1]
	}
}
