package service

import (
	"sort"
	"sync"
	"time"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"go.uber.org/zap"
)

const DefaultMemoryCapacity = 1000

// ContextMemory is a bounded FIFO store of past interactions with
// similarity-based retrieval. It owns its record list exclusively: records
// are immutable after Store and leave only through capacity eviction.
// One instance per run/session, injected where needed rather than shared
// process-wide.
type ContextMemory struct {
	mu       sync.RWMutex
	capacity int
	nextID   int64
	records  []domain.ContextRecord
	logger   *zap.Logger
}

func NewContextMemory(capacity int, logger *zap.Logger) *ContextMemory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &ContextMemory{
		capacity: capacity,
		nextID:   1,
		logger:   logger,
	}
}

// Store appends a record and returns its id. Ids are monotonically
// increasing and never reused. When capacity is exceeded the oldest records
// are evicted first.
func (m *ContextMemory) Store(agent, input, output string, metadata map[string]any) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := domain.ContextRecord{
		ID:        m.nextID,
		Agent:     agent,
		Input:     input,
		Output:    output,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
	m.nextID++
	m.records = append(m.records, rec)

	if evicted := len(m.records) - m.capacity; evicted > 0 {
		m.records = m.records[evicted:]
		m.logger.Debug("evicted oldest context records",
			zap.Int("evicted", evicted),
			zap.Int("capacity", m.capacity))
	}

	return rec.ID
}

// FindSimilar returns records whose input+output text has Jaccard similarity
// to query at or above threshold, sorted by descending similarity with ties
// broken most-recent-first. A negative threshold selects the default (0.3).
func (m *ContextMemory) FindSimilar(query string, threshold float64) []domain.ScoredContext {
	if threshold < 0 {
		threshold = DefaultSimilarityThreshold
	}
	queryTokens := tokenSet(query)

	m.mu.RLock()
	matches := make([]domain.ScoredContext, 0, len(m.records))
	for _, rec := range m.records {
		sim := jaccard(queryTokens, tokenSet(rec.Input+" "+rec.Output))
		if sim >= threshold {
			matches = append(matches, domain.ScoredContext{ContextRecord: rec, Similarity: sim})
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID > matches[j].ID
	})
	return matches
}

// SearchByAgent returns all records stored by the given agent in insertion
// order.
func (m *ContextMemory) SearchByAgent(agent string) []domain.ContextRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.ContextRecord
	for _, rec := range m.records {
		if rec.Agent == agent {
			out = append(out, rec)
		}
	}
	return out
}

// Len reports the number of stored records; always <= capacity.
func (m *ContextMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Capacity reports the configured bound.
func (m *ContextMemory) Capacity() int {
	return m.capacity
}
