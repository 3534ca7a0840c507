package service

import (
	"math"
	"testing"
)

func TestConversationTrackerAnalyzeFlowCompleteness(t *testing.T) {
	tr := NewConversationTracker()

	flow := tr.AnalyzeFlow()
	if flow.WorkflowCompleteness != 0 {
		t.Errorf("empty tracker completeness = %v, want 0", flow.WorkflowCompleteness)
	}

	tr.AddInteraction(AgentGenerator, "topic", "idea", nil)
	tr.AddInteraction(AgentCritic, "idea", "critique", nil)

	flow = tr.AnalyzeFlow()
	if want := 2.0 / 5.0; math.Abs(flow.WorkflowCompleteness-want) > 1e-9 {
		t.Errorf("completeness = %v, want %v", flow.WorkflowCompleteness, want)
	}
	if flow.InteractionCount != 2 {
		t.Errorf("interaction count = %d, want 2", flow.InteractionCount)
	}

	tr.AddInteraction(AgentAdvocate, "idea", "case for", nil)
	tr.AddInteraction(AgentSkeptic, "idea", "case against", nil)
	tr.AddInteraction(AgentImprover, "idea", "better idea", nil)

	flow = tr.AnalyzeFlow()
	if flow.WorkflowCompleteness != 1 {
		t.Errorf("full workflow completeness = %v, want 1", flow.WorkflowCompleteness)
	}
}

func TestConversationTrackerCompletenessOrderInsensitive(t *testing.T) {
	tr := NewConversationTracker()
	// Reverse order still counts every role once.
	tr.AddInteraction(AgentImprover, "", "", nil)
	tr.AddInteraction(AgentSkeptic, "", "", nil)
	tr.AddInteraction(AgentAdvocate, "", "", nil)
	tr.AddInteraction(AgentCritic, "", "", nil)
	tr.AddInteraction(AgentGenerator, "", "", nil)

	if got := tr.AnalyzeFlow().WorkflowCompleteness; got != 1 {
		t.Errorf("completeness = %v, want 1", got)
	}
}

func TestConversationTrackerTransitionPatterns(t *testing.T) {
	tr := NewConversationTracker()
	// Two generate->critique transitions, one critique->improve.
	tr.AddInteraction(AgentGenerator, "", "", nil)
	tr.AddInteraction(AgentCritic, "", "", nil)
	tr.AddInteraction(AgentGenerator, "", "", nil)
	tr.AddInteraction(AgentCritic, "", "", nil)
	tr.AddInteraction(AgentImprover, "", "", nil)

	patterns := tr.AnalyzeFlow().Patterns
	if len(patterns) != 1 {
		t.Fatalf("patterns = %v, want exactly one repeated transition", patterns)
	}
	if want := "generate->critique (x2)"; patterns[0] != want {
		t.Errorf("pattern = %q, want %q", patterns[0], want)
	}
}

func TestConversationTrackerExtractRelevant(t *testing.T) {
	tr := NewConversationTracker()
	tr.AddInteraction(AgentCritic, "solar charger for phones", "solid idea", nil)
	tr.AddInteraction(AgentCritic, "submarine cafe concept", "risky", nil)

	got := tr.ExtractRelevant("solar phone charger", 0.3)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Input != "solar charger for phones" {
		t.Errorf("extracted %q, want the solar record", got[0].Input)
	}
}

func TestConversationTrackerClearKeepsIDsIncreasing(t *testing.T) {
	tr := NewConversationTracker()
	first := tr.AddInteraction(AgentGenerator, "", "", nil)
	tr.Clear()

	if tr.Count() != 0 {
		t.Fatalf("count after clear = %d, want 0", tr.Count())
	}

	second := tr.AddInteraction(AgentGenerator, "", "", nil)
	if second <= first {
		t.Errorf("id %d not greater than pre-clear id %d", second, first)
	}
}
