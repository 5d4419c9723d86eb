package engine_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoflow/context-engine/internal/engine"
)

func extractorFixture() *engine.Extractor {
	return engine.NewExtractor(engine.DefaultConfig().MaxTopics)
}

func TestExtract_BasicTopics(t *testing.T) {
	messages := []engine.Message{
		msg(1, engine.RoleUser, "Let's discuss database indexing strategies."),
		msg(2, engine.RoleAssistant, "Database indexing speeds up lookups; indexing has costs too."),
	}

	topics := extractorFixture().Extract(messages)

	assert.Contains(t, topics, "database")
	assert.Contains(t, topics, "indexing")
}

func TestExtract_ShortAndLongTokensExcluded(t *testing.T) {
	messages := []engine.Message{
		msg(1, engine.RoleUser, "the api is up but observability instrumentation-frameworks lag"),
	}

	topics := extractorFixture().Extract(messages)

	assert.NotContains(t, topics, "api")  // too short
	assert.NotContains(t, topics, "lag")  // too short
	assert.Contains(t, topics, "observability")
	// 15+ character tokens are dropped.
	for _, topic := range topics {
		assert.LessOrEqual(t, len(topic), 15)
	}
}

func TestExtract_StopWordsExcluded(t *testing.T) {
	messages := []engine.Message{
		msg(1, engine.RoleUser, "there should never be stopwords about which these would complain"),
	}

	topics := extractorFixture().Extract(messages)

	for _, stop := range []string{"there", "should", "about", "which", "these", "would"} {
		assert.NotContains(t, topics, stop)
	}
	assert.Contains(t, topics, "stopwords")
}

func TestExtract_CappedAtMax(t *testing.T) {
	content := "alpha1 bravo2 charlie3 delta4 echo55 foxtrot golf77 hotel8 india9 juliet kilo11 lima12"
	messages := []engine.Message{msg(1, engine.RoleUser, content)}

	topics := extractorFixture().Extract(messages)

	assert.Len(t, topics, 10)
}

func TestExtract_StableRanking(t *testing.T) {
	messages := []engine.Message{
		msg(1, engine.RoleUser, "zebra zebra apple mango mango zebra"),
	}

	topics := extractorFixture().Extract(messages)

	// Frequency first, lexical tiebreak.
	require.Equal(t, []string{"zebra", "mango", "apple"}, topics)
}

func TestExtract_Punctuation(t *testing.T) {
	messages := []engine.Message{
		msg(1, engine.RoleUser, "Kubernetes? KUBERNETES! (kubernetes)..."),
	}

	topics := extractorFixture().Extract(messages)

	require.Equal(t, []string{"kubernetes"}, topics)
}

func TestExtract_EmptyMessages(t *testing.T) {
	topics := extractorFixture().Extract([]engine.Message{
		msg(1, engine.RoleUser, ""),
		msg(2, engine.RoleAssistant, "   "),
	})

	assert.Empty(t, topics)
}

func TestExtractN_Truncates(t *testing.T) {
	messages := []engine.Message{
		msg(1, engine.RoleUser, strings.Repeat("alpha bravo charlie delta ", 3)+"alphabet browser chart dice"),
	}

	topics := extractorFixture().ExtractN(messages, 2)

	assert.Len(t, topics, 2)
}
