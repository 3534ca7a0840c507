package service

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
)

// expectedRoles is the role sequence a complete workflow touches at least
// once. Order-insensitive for completeness scoring.
var expectedRoles = []string{
	AgentGenerator,
	AgentCritic,
	AgentAdvocate,
	AgentSkeptic,
	AgentImprover,
}

// ConversationTracker records ordered interactions for one session and
// derives workflow metrics from them. Append-only; nothing expires until the
// caller clears the session.
type ConversationTracker struct {
	mu      sync.RWMutex
	nextID  int64
	records []domain.InteractionRecord
}

func NewConversationTracker() *ConversationTracker {
	return &ConversationTracker{nextID: 1}
}

// AddInteraction appends a record and returns its id.
func (t *ConversationTracker) AddInteraction(agent, input, output string, metadata map[string]any) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := domain.InteractionRecord{
		ID:        t.nextID,
		Agent:     agent,
		Input:     input,
		Output:    output,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
	t.nextID++
	t.records = append(t.records, rec)
	return rec.ID
}

// AnalyzeFlow summarizes the conversation: the agent sequence, how much of
// the expected workflow has been observed, and recurring agent transitions.
func (t *ConversationTracker) AnalyzeFlow() domain.FlowAnalysis {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seq := make([]string, len(t.records))
	seen := make(map[string]bool, len(expectedRoles))
	for i, rec := range t.records {
		seq[i] = rec.Agent
		seen[rec.Agent] = true
	}

	var observed int
	for _, role := range expectedRoles {
		if seen[role] {
			observed++
		}
	}

	return domain.FlowAnalysis{
		AgentSequence:        seq,
		InteractionCount:     len(t.records),
		WorkflowCompleteness: float64(observed) / float64(len(expectedRoles)),
		Patterns:             transitionPatterns(seq),
	}
}

// transitionPatterns reports agent-to-agent transitions that occur more than
// once, most frequent first.
func transitionPatterns(seq []string) []string {
	counts := make(map[string]int)
	for i := 1; i < len(seq); i++ {
		counts[seq[i-1]+"->"+seq[i]]++
	}

	type pair struct {
		key   string
		count int
	}
	var repeated []pair
	for k, c := range counts {
		if c > 1 {
			repeated = append(repeated, pair{k, c})
		}
	}
	sort.Slice(repeated, func(i, j int) bool {
		if repeated[i].count != repeated[j].count {
			return repeated[i].count > repeated[j].count
		}
		return repeated[i].key < repeated[j].key
	})

	var out []string
	for _, p := range repeated {
		out = append(out, fmt.Sprintf("%s (x%d)", p.key, p.count))
	}
	return out
}

// ExtractRelevant returns interactions related to query by the same Jaccard
// similarity used for context memory, sorted by descending similarity.
func (t *ConversationTracker) ExtractRelevant(query string, threshold float64) []domain.InteractionRecord {
	if threshold < 0 {
		threshold = DefaultSimilarityThreshold
	}
	queryTokens := tokenSet(query)

	type scored struct {
		rec domain.InteractionRecord
		sim float64
	}

	t.mu.RLock()
	var matches []scored
	for _, rec := range t.records {
		sim := jaccard(queryTokens, tokenSet(rec.Input+" "+rec.Output))
		if sim >= threshold {
			matches = append(matches, scored{rec, sim})
		}
	}
	t.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].sim != matches[j].sim {
			return matches[i].sim > matches[j].sim
		}
		return matches[i].rec.ID > matches[j].rec.ID
	})

	out := make([]domain.InteractionRecord, len(matches))
	for i, m := range matches {
		out[i] = m.rec
	}
	return out
}

// Count reports the number of recorded interactions.
func (t *ConversationTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Clear drops all recorded interactions. Ids keep increasing across clears.
func (t *ConversationTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = nil
}
