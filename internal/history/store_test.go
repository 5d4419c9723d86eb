package history_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoflow/context-engine/internal/engine"
	"github.com/convoflow/context-engine/internal/history"
)

func sampleMessage(id int, role engine.Role, content string, images ...string) engine.Message {
	return engine.Message{
		ID:        fmt.Sprintf("%d", id),
		Content:   content,
		Images:    images,
		Timestamp: time.Date(2026, 3, 14, 9, id, 0, 0, time.UTC),
		Role:      role,
	}
}

// =============================================================================
// MEMORY STORE
// =============================================================================

func TestMemoryStore_AppendAndList(t *testing.T) {
	s := history.NewMemoryStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "conv-1", sampleMessage(1, engine.RoleUser, "hello")))
	require.NoError(t, s.Append(ctx, "conv-1", sampleMessage(2, engine.RoleAssistant, "hi")))
	require.NoError(t, s.Append(ctx, "conv-2", sampleMessage(3, engine.RoleUser, "other")))

	msgs, err := s.Messages(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "1", msgs[0].ID)
	assert.Equal(t, "2", msgs[1].ID)
}

func TestMemoryStore_MissingConversation(t *testing.T) {
	s := history.NewMemoryStore(time.Hour)
	defer s.Close()

	msgs, err := s.Messages(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMemoryStore_ReturnsCopy(t *testing.T) {
	s := history.NewMemoryStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "conv", sampleMessage(1, engine.RoleUser, "original")))

	msgs, err := s.Messages(ctx, "conv")
	require.NoError(t, err)
	msgs[0].Content = "mutated"

	again, err := s.Messages(ctx, "conv")
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
}

func TestMemoryStore_Clear(t *testing.T) {
	s := history.NewMemoryStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "conv", sampleMessage(1, engine.RoleUser, "hello")))
	require.NoError(t, s.Clear(ctx, "conv"))

	msgs, err := s.Messages(ctx, "conv")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	s := history.NewMemoryStore(time.Hour)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.NoError(t, s.Append(context.Background(), "conv", sampleMessage(1, engine.RoleUser, "late")))
}

// =============================================================================
// SQLITE STORE
// =============================================================================

func openTestDB(t *testing.T) *history.SQLiteStore {
	t.Helper()
	s, err := history.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	in := []engine.Message{
		sampleMessage(1, engine.RoleUser, "Can you explain machine learning?"),
		sampleMessage(2, engine.RoleAssistant, "It is learning from data."),
		sampleMessage(3, engine.RoleUser, "What does this show?", "img://chart", "img://legend"),
	}
	for _, m := range in {
		require.NoError(t, s.Append(ctx, "conv-1", m))
	}

	out, err := s.Messages(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
		assert.Equal(t, in[i].Role, out[i].Role)
		assert.Equal(t, in[i].Content, out[i].Content)
		assert.True(t, in[i].Timestamp.Equal(out[i].Timestamp))
	}
	assert.Equal(t, []string{"img://chart", "img://legend"}, out[2].Images)
	assert.Empty(t, out[0].Images)
}

func TestSQLiteStore_ConversationsIsolated(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "a", sampleMessage(1, engine.RoleUser, "for a")))
	require.NoError(t, s.Append(ctx, "b", sampleMessage(2, engine.RoleUser, "for b")))

	msgs, err := s.Messages(ctx, "a")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "for a", msgs[0].Content)
}

func TestSQLiteStore_Clear(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "conv", sampleMessage(1, engine.RoleUser, "gone soon")))
	require.NoError(t, s.Clear(ctx, "conv"))

	msgs, err := s.Messages(ctx, "conv")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSQLiteStore_MissingConversation(t *testing.T) {
	s := openTestDB(t)

	msgs, err := s.Messages(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
