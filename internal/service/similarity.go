package service

import (
	"strings"
	"unicode"
)

// DefaultSimilarityThreshold is the cutoff below which two texts are not
// considered related during context retrieval.
const DefaultSimilarityThreshold = 0.3

// tokenSet normalizes text into a lowercase, punctuation-stripped token set.
func tokenSet(text string) map[string]struct{} {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[strings.ToLower(f)] = struct{}{}
	}
	return set
}

// jaccard computes |a ∩ b| / |a ∪ b| over two token sets.
// Two empty sets are treated as identical.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var overlap int
	for tok := range a {
		if _, ok := b[tok]; ok {
			overlap++
		}
	}
	union := len(a) + len(b) - overlap
	return float64(overlap) / float64(union)
}

// TextSimilarity is the Jaccard index over the normalized token sets of two
// texts. Shared by context memory, the conversation tracker, and the novelty
// filter.
func TextSimilarity(a, b string) float64 {
	return jaccard(tokenSet(a), tokenSet(b))
}
