package service

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func TestContextMemoryStoreAssignsMonotonicIDs(t *testing.T) {
	m := NewContextMemory(10, zap.NewNop())

	var last int64
	for i := 0; i < 5; i++ {
		id := m.Store(AgentGenerator, "input", "output", nil)
		if id <= last {
			t.Fatalf("id %d not greater than previous %d", id, last)
		}
		last = id
	}
}

func TestContextMemoryFIFOEviction(t *testing.T) {
	const capacity = 3
	m := NewContextMemory(capacity, zap.NewNop())

	for i := 0; i < 10; i++ {
		m.Store(AgentGenerator, fmt.Sprintf("input %d", i), "output", nil)
		if m.Len() > capacity {
			t.Fatalf("len %d exceeds capacity %d after store %d", m.Len(), capacity, i)
		}
	}

	// Oldest evicted first: only the newest records remain.
	records := m.SearchByAgent(AgentGenerator)
	if len(records) != capacity {
		t.Fatalf("got %d records, want %d", len(records), capacity)
	}
	if records[0].Input != "input 7" {
		t.Errorf("oldest surviving record = %q, want %q", records[0].Input, "input 7")
	}
	if records[len(records)-1].ID != 10 {
		t.Errorf("newest record id = %d, want 10", records[len(records)-1].ID)
	}
}

func TestContextMemoryFindSimilar(t *testing.T) {
	m := NewContextMemory(100, zap.NewNop())
	m.Store(AgentCritic, "solar powered phone charger", "score 7", nil)
	m.Store(AgentCritic, "wind turbine for rooftops", "score 5", nil)
	m.Store(AgentCritic, "solar charger for phones and tablets", "score 8", nil)

	got := m.FindSimilar("solar phone charger", 0.3)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Similarity < got[1].Similarity {
		t.Errorf("results not sorted by descending similarity: %v then %v", got[0].Similarity, got[1].Similarity)
	}
	for _, sc := range got {
		if sc.Similarity < 0.3 {
			t.Errorf("match below threshold: %v", sc.Similarity)
		}
	}
}

func TestContextMemoryFindSimilarThresholdZeroReturnsAll(t *testing.T) {
	m := NewContextMemory(100, zap.NewNop())
	m.Store(AgentGenerator, "alpha", "one", nil)
	m.Store(AgentCritic, "beta", "two", nil)
	m.Store(AgentImprover, "gamma", "three", nil)

	all := m.FindSimilar("completely unrelated query text", 0)
	if len(all) != m.Len() {
		t.Fatalf("threshold 0 returned %d of %d records", len(all), m.Len())
	}

	// Monotonicity: a higher threshold returns a subset.
	some := m.FindSimilar("completely unrelated query text", 0.5)
	if len(some) > len(all) {
		t.Errorf("higher threshold returned more records: %d > %d", len(some), len(all))
	}
}

func TestContextMemoryFindSimilarTiesMostRecentFirst(t *testing.T) {
	m := NewContextMemory(100, zap.NewNop())
	first := m.Store(AgentCritic, "identical text", "same", nil)
	second := m.Store(AgentCritic, "identical text", "same", nil)

	got := m.FindSimilar("identical text same", 0)
	if len(got) < 2 {
		t.Fatalf("got %d matches, want at least 2", len(got))
	}
	if got[0].ID != second || got[1].ID != first {
		t.Errorf("tie not broken most-recent-first: got ids %d, %d", got[0].ID, got[1].ID)
	}
}

func TestContextMemorySearchByAgentPreservesInsertionOrder(t *testing.T) {
	m := NewContextMemory(100, zap.NewNop())
	m.Store(AgentCritic, "first", "", nil)
	m.Store(AgentGenerator, "other", "", nil)
	m.Store(AgentCritic, "second", "", nil)

	got := m.SearchByAgent(AgentCritic)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Input != "first" || got[1].Input != "second" {
		t.Errorf("insertion order not preserved: %q, %q", got[0].Input, got[1].Input)
	}
}

func TestContextMemoryDefaultCapacity(t *testing.T) {
	m := NewContextMemory(0, zap.NewNop())
	if m.Capacity() != DefaultMemoryCapacity {
		t.Errorf("capacity = %d, want %d", m.Capacity(), DefaultMemoryCapacity)
	}
}
