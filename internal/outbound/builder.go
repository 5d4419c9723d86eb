// Package outbound serializes context windows into provider request
// bodies.
//
// DESIGN: The engine hands over an ordered ContextWindow; this package
// turns it into the `messages` array of an Anthropic- or OpenAI-shaped
// request. Bridge entries are serialized as ordinary assistant
// messages - the downstream model should read them as narrative, while
// local consumers can still spot them by ID prefix before this point.
package outbound

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/convoflow/context-engine/internal/engine"
	"github.com/convoflow/context-engine/internal/tokens"
)

// Provider selects the request shape.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// Request is a built upstream request body plus its local metadata.
type Request struct {
	ID              string // local request ID, never sent upstream
	Provider        Provider
	Body            []byte
	EstimatedTokens int
}

// Builder builds provider requests from context windows.
type Builder struct {
	provider  Provider
	estimator *tokens.Estimator
}

// NewBuilder creates a Builder for the given provider.
func NewBuilder(provider Provider, estimator *tokens.Estimator) (*Builder, error) {
	switch provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return nil, fmt.Errorf("unknown provider: %q", provider)
	}
	if estimator == nil {
		estimator = tokens.NewHeuristicEstimator(tokens.DefaultRatio)
	}
	return &Builder{provider: provider, estimator: estimator}, nil
}

// Build serializes the window into a request body for model. The
// enhanced query, when non-empty, is appended as the final user turn.
func (b *Builder) Build(model string, window engine.ContextWindow, query string, maxTokens int) (*Request, error) {
	body := []byte(`{}`)

	var err error
	if body, err = sjson.SetBytes(body, "model", model); err != nil {
		return nil, fmt.Errorf("setting model: %w", err)
	}
	if b.provider == ProviderAnthropic && maxTokens > 0 {
		if body, err = sjson.SetBytes(body, "max_tokens", maxTokens); err != nil {
			return nil, fmt.Errorf("setting max_tokens: %w", err)
		}
	}

	for _, entry := range window.Entries {
		msg := map[string]interface{}{
			"role":    string(entry.Role),
			"content": entry.Content,
		}
		if body, err = sjson.SetBytes(body, "messages.-1", msg); err != nil {
			return nil, fmt.Errorf("appending message %s: %w", entry.ID, err)
		}
	}

	if query != "" {
		msg := map[string]interface{}{"role": string(engine.RoleUser), "content": query}
		if body, err = sjson.SetBytes(body, "messages.-1", msg); err != nil {
			return nil, fmt.Errorf("appending query: %w", err)
		}
	}

	estimated := b.estimator.CountWindow(window) + b.estimator.Count(query)
	requestID := uuid.New().String()

	log.Debug().
		Str("request_id", requestID).
		Str("provider", string(b.provider)).
		Str("model", model).
		Int("messages", window.Len()).
		Int("estimated_tokens", estimated).
		Msg("Built upstream request")

	return &Request{
		ID:              requestID,
		Provider:        b.provider,
		Body:            body,
		EstimatedTokens: estimated,
	}, nil
}

// ExtractQuery pulls the candidate query out of an inbound request
// body: the text of the last user message. Handles both plain string
// content and Anthropic-style content block arrays. Returns "" for
// anything malformed.
func ExtractQuery(body []byte) string {
	messages := gjson.GetBytes(body, "messages")
	if !messages.IsArray() {
		return ""
	}

	arr := messages.Array()
	for i := len(arr) - 1; i >= 0; i-- {
		if arr[i].Get("role").String() != string(engine.RoleUser) {
			continue
		}
		content := arr[i].Get("content")
		if content.Type == gjson.String {
			return content.String()
		}
		if content.IsArray() {
			var text string
			content.ForEach(func(_, block gjson.Result) bool {
				if block.Get("type").String() == "text" {
					if text != "" {
						text += "\n"
					}
					text += block.Get("text").String()
				}
				return true
			})
			return text
		}
		return ""
	}
	return ""
}
