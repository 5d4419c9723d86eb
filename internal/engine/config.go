// Package engine - config.go contains tunables and fixed word lists.
//
// DESIGN: Centralized configuration for the selection heuristics. The
// original constants are exposed as an explicit Config so tests can
// shrink the window sizes deterministically. This file contains ONLY
// data - no logic beyond validation and defaults.
package engine

import "fmt"

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config contains all tunables for the context engine.
type Config struct {
	// MaxContextWindow is the hard cap on window length. Histories at
	// or below this length pass through verbatim.
	MaxContextWindow int `yaml:"max_context_window"`

	// RecentCount is how many trailing messages feed the recent tier.
	RecentCount int `yaml:"recent_count"`

	// EarlyCount is how many leading messages feed the early-important tier.
	EarlyCount int `yaml:"early_count"`

	// TopicScanThreshold is the minimum history length before the
	// topic-relevant middle scan runs.
	TopicScanThreshold int `yaml:"topic_scan_threshold"`

	// TopicScanLimit caps how many middle messages the scan inspects.
	TopicScanLimit int `yaml:"topic_scan_limit"`

	// TopicAcceptLimit caps how many middle messages the scan accepts.
	TopicAcceptLimit int `yaml:"topic_accept_limit"`

	// BridgeGapThreshold: a bridge is synthesized when more than this
	// many messages sit between the early cutoff and the recent window.
	BridgeGapThreshold int `yaml:"bridge_gap_threshold"`

	// ContinuationOverlap and RelatedOverlap are the transition
	// classification thresholds on the query overlap ratio.
	ContinuationOverlap float64 `yaml:"continuation_overlap"`
	RelatedOverlap      float64 `yaml:"related_overlap"`

	// MaxTopics caps the size of an extracted topic set.
	MaxTopics int `yaml:"max_topics"`
}

// DefaultConfig returns the production tunables.
func DefaultConfig() Config {
	return Config{
		MaxContextWindow:    20,
		RecentCount:         12,
		EarlyCount:          6,
		TopicScanThreshold:  25,
		TopicScanLimit:      10,
		TopicAcceptLimit:    3,
		BridgeGapThreshold:  5,
		ContinuationOverlap: 0.5,
		RelatedOverlap:      0.2,
		MaxTopics:           10,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.MaxContextWindow <= 0 {
		return fmt.Errorf("max_context_window must be positive")
	}
	if c.RecentCount <= 0 || c.RecentCount > c.MaxContextWindow {
		return fmt.Errorf("recent_count must be in 1..max_context_window")
	}
	if c.EarlyCount < 0 {
		return fmt.Errorf("early_count must not be negative")
	}
	if c.TopicScanLimit < 0 || c.TopicAcceptLimit < 0 {
		return fmt.Errorf("topic scan limits must not be negative")
	}
	if c.ContinuationOverlap <= 0 || c.ContinuationOverlap > 1 {
		return fmt.Errorf("continuation_overlap must be in (0, 1]")
	}
	if c.RelatedOverlap < 0 || c.RelatedOverlap >= c.ContinuationOverlap {
		return fmt.Errorf("related_overlap must be in [0, continuation_overlap)")
	}
	if c.MaxTopics <= 0 {
		return fmt.Errorf("max_topics must be positive")
	}
	return nil
}

// =============================================================================
// WORD LISTS
// =============================================================================

// stopWords are common English function and filler words excluded from
// topic sets and overlap calculations.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "has": {}, "have": {}, "this": {}, "that": {},
	"with": {}, "they": {}, "from": {}, "what": {}, "were": {}, "been": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "about": {},
	"there": {}, "their": {}, "which": {}, "these": {}, "those": {},
	"then": {}, "than": {}, "them": {}, "some": {}, "such": {}, "very": {},
	"just": {}, "into": {}, "also": {}, "more": {}, "please": {},
}

// taskVerbs mark early messages that establish the task framing.
var taskVerbs = []string{
	"analyze", "explain", "summarize", "compare", "evaluate",
	"recommend", "solve", "create", "design", "implement",
}

// contextualReferenceWords signal that a query leans on prior context.
var contextualReferenceWords = map[string]struct{}{
	"this": {}, "that": {}, "it": {}, "they": {}, "them": {},
	"these": {}, "those": {}, "above": {}, "mentioned": {},
	"previous": {}, "earlier": {}, "before": {}, "same": {},
	"similar": {}, "different": {}, "compare": {}, "contrast": {},
}

// followUpPatterns signal that a query continues the assistant's last answer.
var followUpPatterns = []string{
	"what about", "how about", "can you also", "explain more",
	"tell me more", "continue", "also", "additionally", "furthermore",
	"what if", "but what", "and what",
}
