package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoflow/context-engine/internal/engine"
)

func enhancerFixture() *engine.Enhancer {
	return engine.NewEnhancer(engine.DefaultConfig())
}

func windowOf(messages ...engine.Message) engine.ContextWindow {
	entries := make([]engine.Entry, len(messages))
	for i, m := range messages {
		entries[i] = engine.Entry{Message: m}
	}
	return engine.ContextWindow{Entries: entries}
}

func TestEnhance_EmptyWindow(t *testing.T) {
	result := enhancerFixture().Enhance("what happened to that?", engine.ContextWindow{})

	assert.Equal(t, "what happened to that?", result)
}

func TestEnhance_ShortQuery(t *testing.T) {
	window := windowOf(msg(1, engine.RoleUser, "discussing compilers"))

	result := enhancerFixture().Enhance("ok", window)

	assert.Equal(t, "ok", result)
}

func TestEnhance_ContextualReference(t *testing.T) {
	window := windowOf(
		msg(1, engine.RoleUser, "How does computer vision handle occlusion?"),
		msg(2, engine.RoleAssistant, "Occlusion is handled through context and partial features."),
	)

	query := "Tell me more about that"
	result := enhancerFixture().Enhance(query, window)

	assert.Greater(t, len(result), len(query))
	assert.Contains(t, result, "computer vision")
	assert.Contains(t, result, query)
	assert.Contains(t, result, "Referring to our previous discussion")
}

func TestEnhance_ContextualReferenceUsesMostRecentUser(t *testing.T) {
	window := windowOf(
		msg(1, engine.RoleUser, "old question about databases"),
		msg(2, engine.RoleAssistant, "answer"),
		msg(3, engine.RoleUser, "newer question about compilers"),
	)

	result := enhancerFixture().Enhance("what about this one?", window)

	assert.Contains(t, result, "compilers")
	assert.NotContains(t, result, "databases")
}

func TestEnhance_ContextualReferenceImageNote(t *testing.T) {
	window := windowOf(
		msg(1, engine.RoleUser, "What is wrong with this chart?", "img://chart"),
		msg(2, engine.RoleAssistant, "The axes are mislabeled."),
	)

	result := enhancerFixture().Enhance("can you fix that?", window)

	assert.Contains(t, result, "image")
}

func TestEnhance_SnippetBounded(t *testing.T) {
	long := "one two three four five six seven eight nine ten eleven twelve"
	window := windowOf(msg(1, engine.RoleUser, long))

	result := enhancerFixture().Enhance("explain that again please", window)

	assert.Contains(t, result, "one two three four five six seven eight nine ten")
	assert.NotContains(t, result, "eleven")
}

func TestEnhance_FollowUp(t *testing.T) {
	window := windowOf(
		msg(1, engine.RoleUser, "intro"),
		msg(2, engine.RoleAssistant, "Transformers process sequences with attention. Transformers scale well."),
	)

	result := enhancerFixture().Enhance("tell me more", window)

	assert.Contains(t, result, "Building on your explanation about transformers")
	assert.Contains(t, result, "tell me more")
}

func TestEnhance_FollowUpSkipsBridge(t *testing.T) {
	window := engine.ContextWindow{Entries: []engine.Entry{
		{Message: msg(1, engine.RoleAssistant, "Monoliths versus microservices tradeoffs.")},
		{Message: msg(2, engine.RoleAssistant, "bridge filler"), Synthetic: true},
	}}

	result := enhancerFixture().Enhance("explain more", window)

	assert.Contains(t, result, "microservices")
	assert.NotContains(t, result, "filler")
}

func TestEnhance_PlainQueryUnchanged(t *testing.T) {
	window := windowOf(
		msg(1, engine.RoleUser, "How does computer vision handle occlusion?"),
		msg(2, engine.RoleAssistant, "Through context and partial features."),
	)

	query := "What is a red-black tree"
	result := enhancerFixture().Enhance(query, window)

	require.Equal(t, query, result)
}
