// Package history persists conversation histories for the engine's
// callers.
//
// DESIGN: The engine itself never touches storage - it consumes a
// []engine.Message snapshot. This package is the collaborator that
// produces those snapshots. Two implementations: an in-memory store
// with TTL eviction for single-process use, and a SQLite store for
// durability across restarts.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/convoflow/context-engine/internal/engine"
)

// DefaultTTL is how long an idle in-memory conversation is retained.
const DefaultTTL = 24 * time.Hour

// cleanupInterval is how often expired conversations are swept.
const cleanupInterval = 5 * time.Minute

// Store persists ordered conversation histories.
type Store interface {
	// Append adds one message to the end of a conversation.
	Append(ctx context.Context, conversationID string, msg engine.Message) error

	// Messages returns the full ordered history of a conversation.
	// A missing conversation yields an empty slice, not an error.
	Messages(ctx context.Context, conversationID string) ([]engine.Message, error)

	// Clear removes a conversation entirely.
	Clear(ctx context.Context, conversationID string) error

	// Close cleans up resources.
	Close() error
}

// MemoryStore is an in-memory Store with TTL eviction of idle
// conversations.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string]*conversation
	ttl      time.Duration
	stopChan chan struct{}
	stopped  bool
}

type conversation struct {
	messages []engine.Message
	touched  time.Time
}

// NewMemoryStore creates a MemoryStore with the given idle TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		data:     make(map[string]*conversation),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	go s.cleanup()

	return s
}

// Append adds a message to a conversation, creating it on first use.
func (s *MemoryStore) Append(_ context.Context, conversationID string, msg engine.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}

	conv, ok := s.data[conversationID]
	if !ok {
		conv = &conversation{}
		s.data[conversationID] = conv
	}
	conv.messages = append(conv.messages, msg)
	conv.touched = time.Now()
	return nil
}

// Messages returns a copy of the conversation history; callers may not
// share slices with the store.
func (s *MemoryStore) Messages(_ context.Context, conversationID string) ([]engine.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.data[conversationID]
	if !ok {
		return []engine.Message{}, nil
	}

	out := make([]engine.Message, len(conv.messages))
	copy(out, conv.messages)
	return out, nil
}

// Clear removes a conversation.
func (s *MemoryStore) Clear(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, conversationID)
	return nil
}

// Close stops the cleanup goroutine and drops all data.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stopped {
		s.stopped = true
		close(s.stopChan)
		s.data = nil
	}
	return nil
}

// cleanup periodically evicts conversations idle past the TTL.
func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.mu.Lock()
			if !s.stopped {
				cutoff := time.Now().Add(-s.ttl)
				for id, conv := range s.data {
					if conv.touched.Before(cutoff) {
						delete(s.data, id)
					}
				}
			}
			s.mu.Unlock()
		}
	}
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
