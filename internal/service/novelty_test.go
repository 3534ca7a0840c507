package service

import (
	"testing"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"go.uber.org/zap"
)

func ideasOf(texts ...string) []domain.Idea {
	ideas := make([]domain.Idea, len(texts))
	for i, text := range texts {
		ideas[i] = domain.Idea{Text: text}
	}
	return ideas
}

func TestNoveltyFilterExactDuplicates(t *testing.T) {
	f := NewNoveltyFilter(0.8, zap.NewNop())

	result := f.Filter(ideasOf(
		"Build a solar charger",
		"build a solar charger",
	))

	if len(result.Kept) != 1 {
		t.Fatalf("kept %d ideas, want 1", len(result.Kept))
	}
	if len(result.Rejected) != 1 {
		t.Fatalf("rejected %d ideas, want 1", len(result.Rejected))
	}
	if result.Rejected[0].RejectionReason != domain.RejectDuplicate {
		t.Errorf("reason = %q, want %q", result.Rejected[0].RejectionReason, domain.RejectDuplicate)
	}
	if result.Rejected[0].State != domain.StateRejected {
		t.Errorf("state = %q, want %q", result.Rejected[0].State, domain.StateRejected)
	}
}

func TestNoveltyFilterNearDuplicates(t *testing.T) {
	f := NewNoveltyFilter(0.8, zap.NewNop())

	result := f.Filter(ideasOf(
		"Build a solar charger",
		"Build a solar-powered charger",
	))

	if len(result.Kept) != 1 {
		t.Fatalf("kept %d ideas, want 1", len(result.Kept))
	}
	if result.Kept[0].Text != "Build a solar charger" {
		t.Errorf("first occurrence should survive, kept %q", result.Kept[0].Text)
	}
	if len(result.Rejected) != 1 || result.Rejected[0].RejectionReason != domain.RejectNearDuplicate {
		t.Fatalf("want one near-duplicate rejection, got %+v", result.Rejected)
	}
}

func TestNoveltyFilterKeepsDistinctIdeas(t *testing.T) {
	f := NewNoveltyFilter(0.8, zap.NewNop())

	result := f.Filter(ideasOf(
		"Build a solar charger",
		"Open a floating cafe",
		"Train dogs to deliver mail",
	))

	if len(result.Kept) != 3 {
		t.Errorf("kept %d ideas, want 3", len(result.Kept))
	}
	if len(result.Rejected) != 0 {
		t.Errorf("rejected %v, want none", result.Rejected)
	}
}

func TestNoveltyFilterPreservesInputOrder(t *testing.T) {
	f := NewNoveltyFilter(0.8, zap.NewNop())

	result := f.Filter(ideasOf("idea one", "idea two", "idea three"))
	want := []string{"idea one", "idea two", "idea three"}
	for i, idea := range result.Kept {
		if idea.Text != want[i] {
			t.Errorf("kept[%d] = %q, want %q", i, idea.Text, want[i])
		}
	}
}

func TestNoveltyFilterInvalidThresholdUsesDefault(t *testing.T) {
	f := NewNoveltyFilter(0, zap.NewNop())
	if f.threshold != DefaultNoveltyThreshold {
		t.Errorf("threshold = %v, want %v", f.threshold, DefaultNoveltyThreshold)
	}

	f = NewNoveltyFilter(1.5, zap.NewNop())
	if f.threshold != DefaultNoveltyThreshold {
		t.Errorf("threshold = %v, want %v", f.threshold, DefaultNoveltyThreshold)
	}
}
