// Package engine - topics.go implements lexical topic extraction.
//
// DESIGN: Deliberately a cheap heuristic, not semantic similarity.
// Topics are frequent content words; ranking is a stable sort
// (frequency desc, then lexical) so the "first N topics" of a set are
// reproducible across runs.
package engine

import (
	"regexp"
	"sort"
	"strings"
)

// nonWord strips everything that is not a letter, digit, or whitespace.
var nonWord = regexp.MustCompile(`[^a-z0-9\s]+`)

const (
	topicMinLen = 5  // tokens shorter than this are noise
	topicMaxLen = 15 // tokens longer than this are usually garbage (URLs, hashes)
)

// Extractor pulls bounded topic sets out of message groups.
type Extractor struct {
	maxTopics int
}

// NewExtractor creates an Extractor capped at maxTopics entries per set.
func NewExtractor(maxTopics int) *Extractor {
	if maxTopics <= 0 {
		maxTopics = DefaultConfig().MaxTopics
	}
	return &Extractor{maxTopics: maxTopics}
}

// Extract returns up to maxTopics topic words for the given messages,
// ranked by frequency and then lexically. The result is never nil.
func (e *Extractor) Extract(messages []Message) []string {
	counts := make(map[string]int)
	for _, m := range messages {
		for _, tok := range tokenize(m.Content) {
			if len(tok) < topicMinLen || len(tok) > topicMaxLen {
				continue
			}
			if _, stop := stopWords[tok]; stop {
				continue
			}
			counts[tok]++
		}
	}
	return rankTopics(counts, e.maxTopics)
}

// ExtractN is Extract with a one-off cap, used where a caller wants
// fewer topics than the extractor's configured maximum.
func (e *Extractor) ExtractN(messages []Message, n int) []string {
	topics := e.Extract(messages)
	if n >= 0 && len(topics) > n {
		topics = topics[:n]
	}
	return topics
}

// rankTopics orders topic candidates by frequency desc, breaking ties
// lexically, and returns at most limit entries.
func rankTopics(counts map[string]int, limit int) []string {
	ranked := make([]string, 0, len(counts))
	for word := range counts {
		ranked = append(ranked, word)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// tokenize lowercases text, strips punctuation, and splits on whitespace.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	cleaned := nonWord.ReplaceAllString(lower, " ")
	return strings.Fields(cleaned)
}

// meaningfulWords returns the set of tokens longer than two characters
// that are not stop-words. Shared by the transition classifier.
func meaningfulWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		words[tok] = struct{}{}
	}
	return words
}
