// Package tokens estimates the token cost of context windows.
//
// DESIGN: tiktoken when the encoding is available, bytes/ratio
// heuristic otherwise. Encoding initialization can fail offline (the
// BPE ranks are fetched lazily), so the estimator always degrades to
// the heuristic instead of erroring at call sites.
package tokens

import (
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"

	"github.com/convoflow/context-engine/internal/engine"
)

// DefaultEncoding is the BPE used by current OpenAI models and close
// enough for budgeting against other providers.
const DefaultEncoding = "cl100k_base"

// DefaultRatio is the bytes-per-token fallback ratio.
const DefaultRatio = 4

// Estimator counts tokens for strings and context windows.
type Estimator struct {
	enc   *tiktoken.Tiktoken
	ratio int
}

// NewEstimator creates an Estimator for the given encoding. When the
// encoding cannot be initialized the estimator silently falls back to
// the bytes/ratio heuristic.
func NewEstimator(encoding string, ratio int) *Estimator {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	if ratio <= 0 {
		ratio = DefaultRatio
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		log.Warn().Err(err).Str("encoding", encoding).Msg("Token encoding unavailable, using byte heuristic")
		enc = nil
	}
	return &Estimator{enc: enc, ratio: ratio}
}

// NewHeuristicEstimator creates an Estimator that only uses the
// bytes/ratio heuristic. Used by tests and offline deployments.
func NewHeuristicEstimator(ratio int) *Estimator {
	if ratio <= 0 {
		ratio = DefaultRatio
	}
	return &Estimator{ratio: ratio}
}

// Count estimates the token count of text.
func (e *Estimator) Count(text string) int {
	if text == "" {
		return 0
	}
	if e.enc != nil {
		return len(e.enc.Encode(text, nil, nil))
	}
	n := len(text) / e.ratio
	if n == 0 {
		n = 1
	}
	return n
}

// CountWindow estimates the total token cost of a context window,
// bridge content included.
func (e *Estimator) CountWindow(window engine.ContextWindow) int {
	total := 0
	for _, entry := range window.Entries {
		total += e.Count(entry.Content)
	}
	return total
}
