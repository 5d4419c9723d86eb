// Package engine decides which parts of a long conversation to forward
// to a downstream model.
//
// DESIGN: All operations are pure functions over an immutable snapshot
// of the message history. The engine never performs I/O, never touches
// persistence, and never calls a model - it only selects, classifies,
// rewrites, and summarizes. Callers own the history; the engine never
// mutates it.
//
// ARCHITECTURE:
//   - Selector:    builds a bounded context window (recent / early /
//     topic-relevant / bridge stages)
//   - Classifier:  classifies a new query's topic transition
//   - Enhancer:    rewrites ambiguous or follow-up queries
//   - Summarizer:  condenses a long conversation into one paragraph
//   - Extractor:   shared lexical topic extraction
package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// ROLES
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// =============================================================================
// MESSAGES
// =============================================================================

// Message is one turn of a conversation. It is owned by the calling
// layer (session store) and never mutated by this package.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Images    []string  `json:"images,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Role      Role      `json:"role"`
}

// HasImages reports whether the message carries at least one image reference.
func (m Message) HasImages() bool {
	return len(m.Images) > 0
}

// =============================================================================
// CONTEXT WINDOW
// =============================================================================

// BridgeIDPrefix marks synthesized bridge entries. Any consumer that
// inspects entry IDs can distinguish them from genuine model output.
const BridgeIDPrefix = "ctx-bridge-"

// Entry is one slot in a context window: either a real conversation
// message or a synthesized bridge standing in for omitted history.
// The Synthetic tag is authoritative; the ID prefix is a secondary
// marker for consumers that only see serialized messages.
type Entry struct {
	Message
	Synthetic bool `json:"synthetic,omitempty"`
}

// ContextWindow is the ordered subset of a conversation forwarded to
// the model for one turn.
type ContextWindow struct {
	Entries []Entry
}

// Len returns the number of entries, bridge included.
func (w ContextWindow) Len() int {
	return len(w.Entries)
}

// IsEmpty reports whether the window has no entries.
func (w ContextWindow) IsEmpty() bool {
	return len(w.Entries) == 0
}

// Messages returns the real (non-bridge) messages in window order.
func (w ContextWindow) Messages() []Message {
	msgs := make([]Message, 0, len(w.Entries))
	for _, e := range w.Entries {
		if !e.Synthetic {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// IDs returns the entry IDs in window order. Useful for logging and tests.
func (w ContextWindow) IDs() []string {
	ids := make([]string, len(w.Entries))
	for i, e := range w.Entries {
		ids[i] = e.ID
	}
	return ids
}

// =============================================================================
// TOPIC TRANSITIONS
// =============================================================================

// Transition classifies how semantically continuous a new query is
// with the recent conversation.
type Transition string

const (
	// TransitionNewConversation: too little history to compare against.
	TransitionNewConversation Transition = "new_conversation"
	// TransitionContinuation: the query stays on the current subject.
	TransitionContinuation Transition = "continuation"
	// TransitionRelated: partial overlap with the current subject.
	TransitionRelated Transition = "related"
	// TransitionNewTopic: the query departs from recent discussion.
	TransitionNewTopic Transition = "new_topic"
)

// String implements fmt.Stringer.
func (t Transition) String() string { return string(t) }

// Valid reports whether t is one of the four known transitions.
func (t Transition) Valid() bool {
	switch t {
	case TransitionNewConversation, TransitionContinuation, TransitionRelated, TransitionNewTopic:
		return true
	}
	return false
}

var _ fmt.Stringer = TransitionNewConversation
