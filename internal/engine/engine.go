// Package engine - engine.go ties the components into one facade.
package engine

import "fmt"

// Engine bundles the selector, classifier, enhancer, and summarizer
// behind one stateless facade. Safe for concurrent use: it holds only
// immutable configuration.
type Engine struct {
	cfg        Config
	selector   *Selector
	classifier *Classifier
	enhancer   *Enhancer
	summarizer *Summarizer
	extractor  *Extractor
}

// New creates an Engine from the given configuration.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	return &Engine{
		cfg:        cfg,
		selector:   NewSelector(cfg),
		classifier: NewClassifier(cfg),
		enhancer:   NewEnhancer(cfg),
		summarizer: NewSummarizer(cfg),
		extractor:  NewExtractor(cfg.MaxTopics),
	}, nil
}

// MustNew is New for configurations known to be valid, e.g. DefaultConfig.
func MustNew(cfg Config) *Engine {
	e, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// SelectContext builds the bounded context window for the history.
func (e *Engine) SelectContext(history []Message) ContextWindow {
	return e.selector.Select(history)
}

// ClassifyTransition classifies how query relates to the recent history.
func (e *Engine) ClassifyTransition(history []Message, query string) Transition {
	return e.classifier.Classify(history, query)
}

// EnhanceQuery rewrites query against the window when it is ambiguous
// or a follow-up; otherwise returns it unchanged.
func (e *Engine) EnhanceQuery(query string, window ContextWindow) string {
	return e.enhancer.Enhance(query, window)
}

// Summarize condenses the conversation into one paragraph.
func (e *Engine) Summarize(history []Message) string {
	return e.summarizer.Summarize(history)
}

// Topics extracts the ranked topic set of the given messages.
func (e *Engine) Topics(messages []Message) []string {
	return e.extractor.Extract(messages)
}
