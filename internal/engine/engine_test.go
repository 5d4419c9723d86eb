package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoflow/context-engine/internal/engine"
)

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.RecentCount = cfg.MaxContextWindow + 1

	_, err := engine.New(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "recent_count")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*engine.Config)
		valid  bool
	}{
		{"defaults", func(*engine.Config) {}, true},
		{"zero window", func(c *engine.Config) { c.MaxContextWindow = 0 }, false},
		{"negative early", func(c *engine.Config) { c.EarlyCount = -1 }, false},
		{"overlap order", func(c *engine.Config) { c.RelatedOverlap = 0.9 }, false},
		{"overlap too high", func(c *engine.Config) { c.ContinuationOverlap = 1.5 }, false},
		{"zero topics", func(c *engine.Config) { c.MaxTopics = 0 }, false},
		{"shrunken window", func(c *engine.Config) { c.MaxContextWindow = 10; c.RecentCount = 8 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := engine.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestEngine_FullTurn(t *testing.T) {
	eng := engine.MustNew(engine.DefaultConfig())
	history := demoConversation()
	query := "Tell me more about that"

	window := eng.SelectContext(history)
	transition := eng.ClassifyTransition(history, query)
	enhanced := eng.EnhanceQuery(query, window)
	summary := eng.Summarize(history)

	assert.Equal(t, len(history), window.Len())
	assert.True(t, transition.Valid())
	assert.Greater(t, len(enhanced), len(query))
	assert.NotEmpty(t, summary)
}

func TestEngine_Topics(t *testing.T) {
	eng := engine.MustNew(engine.DefaultConfig())

	topics := eng.Topics(demoConversation())

	assert.NotEmpty(t, topics)
	assert.LessOrEqual(t, len(topics), 10)
}

func TestTransition_Valid(t *testing.T) {
	assert.True(t, engine.TransitionContinuation.Valid())
	assert.False(t, engine.Transition("weird").Valid())
}
