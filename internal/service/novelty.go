package service

import (
	"crypto/sha256"
	"strings"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"go.uber.org/zap"
)

// DefaultNoveltyThreshold is the token-overlap similarity above which two
// ideas count as near-duplicates.
const DefaultNoveltyThreshold = 0.8

// NoveltyFilter removes duplicate ideas before any expensive downstream
// call: exact hash duplicates first, then near-duplicates by token overlap.
type NoveltyFilter struct {
	threshold float64
	logger    *zap.Logger
}

func NewNoveltyFilter(threshold float64, logger *zap.Logger) *NoveltyFilter {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultNoveltyThreshold
	}
	return &NoveltyFilter{threshold: threshold, logger: logger}
}

// FilterResult separates surviving ideas from rejected ones, each rejection
// carrying its reason.
type FilterResult struct {
	Kept     []domain.Idea
	Rejected []domain.WorkflowResult
}

// Filter deduplicates ideas in input order. The first occurrence of a
// duplicate group always survives.
func (f *NoveltyFilter) Filter(ideas []domain.Idea) FilterResult {
	var result FilterResult
	seen := make(map[[32]byte]bool, len(ideas))

	for _, idea := range ideas {
		hash := sha256.Sum256([]byte(strings.TrimSpace(strings.ToLower(idea.Text))))
		if seen[hash] {
			result.Rejected = append(result.Rejected, rejected(idea, domain.RejectDuplicate))
			continue
		}

		if dup, match := f.nearDuplicate(idea, result.Kept); dup {
			f.logger.Debug("near-duplicate idea filtered",
				zap.String("idea", idea.Text),
				zap.String("matches", match))
			result.Rejected = append(result.Rejected, rejected(idea, domain.RejectNearDuplicate))
			continue
		}

		seen[hash] = true
		result.Kept = append(result.Kept, idea)
	}
	return result
}

func (f *NoveltyFilter) nearDuplicate(idea domain.Idea, kept []domain.Idea) (bool, string) {
	tokens := tokenSet(idea.Text)
	for _, k := range kept {
		if jaccard(tokens, tokenSet(k.Text)) >= f.threshold {
			return true, k.Text
		}
	}
	return false, ""
}

func rejected(idea domain.Idea, reason string) domain.WorkflowResult {
	return domain.WorkflowResult{
		Idea:            idea,
		State:           domain.StateRejected,
		RejectionReason: reason,
	}
}
