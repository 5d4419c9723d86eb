// Package engine - selector.go builds the bounded context window.
//
// DESIGN: Four prioritized stages over the full history:
//
//  1. Recent:         last RecentCount messages, substantial ones only
//  2. Early-important: first EarlyCount messages passing the importance
//     predicate (task framing tends to live here)
//  3. Topic-relevant: a bounded reverse scan of the middle for messages
//     matching the recent tier's topics
//  4. Combine:        early + bridge + topic-relevant + recent, deduped,
//     clipped to MaxContextWindow
//
// Histories at or below MaxContextWindow pass through verbatim,
// trivial messages included.
package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// substantialMinLen: user messages at or below this length with no
// image are dropped from the recent tier.
const substantialMinLen = 10

// importantContentLen: early messages longer than this are kept
// regardless of other signals.
const importantContentLen = 150

// bridgeMinuteFloor: elapsed spans of at most this many minutes are
// omitted from bridge text.
const bridgeMinuteFloor = 10

// structureMarkers are the formatting cues that mark a structured
// assistant answer (headers, bullets, bold, code fences).
var structureMarkers = []string{"# ", "## ", "- ", "* ", "**", "```"}

// Selector assembles context windows from conversation history.
type Selector struct {
	cfg       Config
	extractor *Extractor
	now       func() time.Time
}

// NewSelector creates a Selector with the given configuration.
func NewSelector(cfg Config) *Selector {
	return &Selector{
		cfg:       cfg,
		extractor: NewExtractor(cfg.MaxTopics),
		now:       time.Now,
	}
}

// Select builds the context window for the given history. The input is
// never mutated; calling Select twice on the same history yields equal
// results (bridge content is derived from message timestamps, not wall
// clock).
func (s *Selector) Select(history []Message) ContextWindow {
	if len(history) <= s.cfg.MaxContextWindow {
		return verbatimWindow(history)
	}

	recent := s.selectRecent(history)
	early := s.selectEarly(history)
	topical := s.selectTopicRelevant(history, recent)
	window := s.combine(history, early, topical, recent)

	log.Debug().
		Int("history", len(history)).
		Int("recent", len(recent)).
		Int("early", len(early)).
		Int("topical", len(topical)).
		Int("window", window.Len()).
		Msg("Selected context window")

	return window
}

// verbatimWindow wraps a short history unchanged, unfiltered.
func verbatimWindow(history []Message) ContextWindow {
	entries := make([]Entry, len(history))
	for i, m := range history {
		entries[i] = Entry{Message: m}
	}
	return ContextWindow{Entries: entries}
}

// =============================================================================
// STAGE 1: RECENT
// =============================================================================

// selectRecent keeps the substantial messages among the trailing
// RecentCount: any image, text longer than substantialMinLen, or an
// assistant turn.
func (s *Selector) selectRecent(history []Message) []Message {
	start := len(history) - s.cfg.RecentCount
	if start < 0 {
		start = 0
	}

	var kept []Message
	for _, m := range history[start:] {
		if m.HasImages() || len(m.Content) > substantialMinLen || m.Role == RoleAssistant {
			kept = append(kept, m)
		}
	}
	return kept
}

// =============================================================================
// STAGE 2: EARLY-IMPORTANT
// =============================================================================

// selectEarly keeps the leading EarlyCount messages that pass the
// importance predicate.
func (s *Selector) selectEarly(history []Message) []Message {
	end := s.cfg.EarlyCount
	if end > len(history) {
		end = len(history)
	}

	var kept []Message
	for _, m := range history[:end] {
		if isImportant(m) {
			kept = append(kept, m)
		}
	}
	return kept
}

// isImportant is the early-retention heuristic: images, long content,
// user questions, structured assistant answers, or task-framing verbs.
func isImportant(m Message) bool {
	if m.HasImages() {
		return true
	}
	if len(m.Content) > importantContentLen {
		return true
	}
	if m.Role == RoleUser && strings.Contains(m.Content, "?") {
		return true
	}
	if m.Role == RoleAssistant && hasStructure(m.Content) {
		return true
	}
	lower := strings.ToLower(m.Content)
	for _, verb := range taskVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

// hasStructure detects headers, bullets, numbered lists, bold markers,
// and code fences.
func hasStructure(content string) bool {
	for _, marker := range structureMarkers {
		if strings.HasPrefix(content, marker) || strings.Contains(content, "\n"+marker) {
			return true
		}
	}
	return hasNumberedList(content)
}

// hasNumberedList reports whether any line starts like "1." or "12.".
func hasNumberedList(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimLeft(line, " \t")
		i := 0
		for i < len(line) && line[i] >= '0' && line[i] <= '9' {
			i++
		}
		if i > 0 && i < len(line) && line[i] == '.' {
			return true
		}
	}
	return false
}

// =============================================================================
// STAGE 3: TOPIC-RELEVANT
// =============================================================================

// selectTopicRelevant scans the middle of the history (newest first,
// at most TopicScanLimit candidates) for messages matching the recent
// tier's topics. Accepted messages come back in chronological order.
func (s *Selector) selectTopicRelevant(history, recent []Message) []Message {
	if len(history) < s.cfg.TopicScanThreshold {
		return nil
	}

	topics := s.extractor.Extract(recent)
	if len(topics) == 0 {
		return nil
	}

	lo := s.cfg.EarlyCount
	hi := len(history) - s.cfg.RecentCount
	if hi <= lo {
		return nil
	}

	type hit struct {
		index int
		msg   Message
	}
	var hits []hit

	scanned := 0
	for i := hi - 1; i >= lo && scanned < s.cfg.TopicScanLimit; i-- {
		scanned++
		m := history[i]
		score := topicScore(m.Content, topics)
		if score >= 2 || (score >= 1 && m.HasImages()) {
			hits = append(hits, hit{index: i, msg: m})
			if len(hits) >= s.cfg.TopicAcceptLimit {
				break
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].index < hits[j].index })

	accepted := make([]Message, len(hits))
	for i, h := range hits {
		accepted[i] = h.msg
	}
	return accepted
}

// topicScore weighs keyword hits: 3 for a whole-word match, 1 for a
// substring match.
func topicScore(content string, topics []string) int {
	if content == "" {
		return 0
	}
	lower := strings.ToLower(content)
	words := make(map[string]struct{})
	for _, tok := range tokenize(lower) {
		words[tok] = struct{}{}
	}

	score := 0
	for _, topic := range topics {
		if _, whole := words[topic]; whole {
			score += 3
		} else if strings.Contains(lower, topic) {
			score++
		}
	}
	return score
}

// =============================================================================
// STAGE 4: COMBINE
// =============================================================================

// combine assembles early + bridge + topic-relevant + recent, dedupes
// by ID, and enforces the MaxContextWindow hard cap. The cap cannot be
// hit under the default constants (12 recent + 6 early + 1 bridge + a
// budget-bounded topical tier); the final clip covers shrunken
// configurations, dropping topical entries first, then the latest
// early entries, never recent ones.
func (s *Selector) combine(history, early, topical, recent []Message) ContextWindow {
	budget := s.cfg.MaxContextWindow - len(recent)

	seen := make(map[string]struct{})
	var entries []Entry

	appendReal := func(m Message) {
		if _, dup := seen[m.ID]; dup {
			return
		}
		seen[m.ID] = struct{}{}
		entries = append(entries, Entry{Message: m})
	}

	earlyBudget := budget
	if len(topical) > 0 || s.gapSize(history) > s.cfg.BridgeGapThreshold {
		earlyBudget-- // reserve a slot for the bridge
	}
	for _, m := range early {
		if len(entries) >= earlyBudget {
			break
		}
		appendReal(m)
	}

	earlyKept := len(entries)
	if earlyKept > 0 && (len(topical) > 0 || s.gapSize(history) > s.cfg.BridgeGapThreshold) {
		entries = append(entries, s.bridgeEntry(history))
	}

	for _, m := range topical {
		if len(entries) >= budget {
			break
		}
		appendReal(m)
	}

	for _, m := range recent {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		entries = append(entries, Entry{Message: m})
	}

	// Safety clip for adversarial configurations.
	if len(entries) > s.cfg.MaxContextWindow {
		entries = entries[len(entries)-s.cfg.MaxContextWindow:]
	}

	return ContextWindow{Entries: entries}
}

// gapSize is the number of messages between the early cutoff and the
// start of the recent window.
func (s *Selector) gapSize(history []Message) int {
	gap := len(history) - s.cfg.RecentCount - s.cfg.EarlyCount
	if gap < 0 {
		return 0
	}
	return gap
}

// =============================================================================
// BRIDGE SYNTHESIS
// =============================================================================

// bridgeEntry synthesizes the assistant-authored placeholder covering
// the skipped middle of the history.
func (s *Selector) bridgeEntry(history []Message) Entry {
	lo := s.cfg.EarlyCount
	hi := len(history) - s.cfg.RecentCount
	if hi < lo {
		hi = lo
	}
	skipped := history[lo:hi]

	var stamp time.Time
	if len(skipped) > 0 {
		stamp = skipped[len(skipped)-1].Timestamp
	} else if len(history) > 0 {
		stamp = history[len(history)-1].Timestamp
	} else {
		stamp = s.now()
	}

	return Entry{
		Message: Message{
			ID:        fmt.Sprintf("%s%d", BridgeIDPrefix, stamp.UnixNano()),
			Content:   bridgeContent(skipped, s.extractor),
			Timestamp: stamp,
			Role:      RoleAssistant,
		},
		Synthetic: true,
	}
}

// bridgeContent describes the skipped span: message count, elapsed
// time, and up to two topics inferred from the omitted messages.
func bridgeContent(skipped []Message, extractor *Extractor) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[Earlier in this conversation, %d messages were exchanged", len(skipped)))

	if span := elapsedSpan(skipped); span != "" {
		b.WriteString(" over " + span)
	}

	if topics := extractor.ExtractN(skipped, 2); len(topics) > 0 {
		b.WriteString(", covering " + strings.Join(topics, " and "))
	}

	b.WriteString(". They are omitted here for brevity.]")
	return b.String()
}

// elapsedSpan buckets the skipped span as days, hours, or minutes.
// Spans of ten minutes or less are omitted entirely.
func elapsedSpan(skipped []Message) string {
	if len(skipped) < 2 {
		return ""
	}
	elapsed := skipped[len(skipped)-1].Timestamp.Sub(skipped[0].Timestamp)

	switch {
	case elapsed >= 24*time.Hour:
		days := int(elapsed.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	case elapsed >= time.Hour:
		hours := int(elapsed.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	case elapsed > bridgeMinuteFloor*time.Minute:
		return fmt.Sprintf("%d minutes", int(elapsed.Minutes()))
	default:
		return ""
	}
}
