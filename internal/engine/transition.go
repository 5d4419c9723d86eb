// Package engine - transition.go classifies topic transitions.
package engine

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// classifierTailCount: the classifier compares the query against the
// last this-many messages only.
const classifierTailCount = 6

// Classifier classifies how a new query relates to recent conversation.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify compares query against the tail of history and returns the
// topic transition. Histories shorter than three messages always
// classify as a new conversation.
func (c *Classifier) Classify(history []Message, query string) Transition {
	if len(history) < 3 {
		return TransitionNewConversation
	}

	queryWords := meaningfulWords(query)
	if len(queryWords) == 0 {
		// Nothing to disagree about: pure filler stays a continuation.
		return TransitionContinuation
	}

	conversationWords := meaningfulWords(tailText(history, classifierTailCount))

	matched := 0
	for word := range queryWords {
		if _, ok := conversationWords[word]; ok {
			matched++
		}
	}
	overlap := float64(matched) / float64(len(queryWords))

	result := TransitionNewTopic
	switch {
	case overlap >= c.cfg.ContinuationOverlap:
		result = TransitionContinuation
	case overlap >= c.cfg.RelatedOverlap:
		result = TransitionRelated
	}

	log.Debug().
		Float64("overlap", overlap).
		Int("query_words", len(queryWords)).
		Str("transition", result.String()).
		Msg("Classified topic transition")

	return result
}

// tailText concatenates the lowercased content of the last n messages.
func tailText(history []Message, n int) string {
	start := len(history) - n
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	for _, m := range history[start:] {
		b.WriteString(strings.ToLower(m.Content))
		b.WriteByte(' ')
	}
	return b.String()
}
