package service

import (
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestBuildChainModusPonens(t *testing.T) {
	li := NewLogicalInference(3, zap.NewNop())

	chain := li.BuildChain([]string{
		"If AI is implemented, efficiency increases",
		"AI is implemented",
	})

	if len(chain.Steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(chain.Steps))
	}
	step := chain.Steps[0]
	if step.RuleApplied != RuleModusPonens {
		t.Errorf("rule = %q, want %q", step.RuleApplied, RuleModusPonens)
	}
	if got := strings.ToLower(step.Conclusion); got != "efficiency increases" {
		t.Errorf("conclusion = %q, want %q", step.Conclusion, "Efficiency increases")
	}
	if math.Abs(step.Confidence-0.9) > 1e-9 {
		t.Errorf("confidence = %v, want 0.9", step.Confidence)
	}
	if chain.OverallConclusion != step.Conclusion {
		t.Errorf("overall conclusion = %q, want %q", chain.OverallConclusion, step.Conclusion)
	}
}

func TestBuildChainFewPremises(t *testing.T) {
	li := NewLogicalInference(3, zap.NewNop())

	for _, premises := range [][]string{nil, {}, {"a single premise"}} {
		chain := li.BuildChain(premises)
		if len(chain.Steps) != 0 {
			t.Errorf("premises %v: got %d steps, want 0", premises, len(chain.Steps))
		}
		if chain.ValidityScore != 0 {
			t.Errorf("premises %v: validity = %v, want 0", premises, chain.ValidityScore)
		}
	}
}

func TestBuildChainModusTollens(t *testing.T) {
	li := NewLogicalInference(3, zap.NewNop())

	chain := li.BuildChain([]string{
		"If the product is cheap, adoption is fast",
		"adoption is not fast",
	})

	if len(chain.Steps) == 0 {
		t.Fatal("no steps derived")
	}
	step := chain.Steps[0]
	if step.RuleApplied != RuleModusTollens {
		t.Errorf("rule = %q, want %q", step.RuleApplied, RuleModusTollens)
	}
	if got := strings.ToLower(step.Conclusion); got != "the product is not cheap" {
		t.Errorf("conclusion = %q", step.Conclusion)
	}
	if math.Abs(step.Confidence-0.85) > 1e-9 {
		t.Errorf("confidence = %v, want 0.85", step.Confidence)
	}
}

func TestBuildChainHypotheticalSyllogism(t *testing.T) {
	li := NewLogicalInference(3, zap.NewNop())

	chain := li.BuildChain([]string{
		"If costs drop, then demand rises",
		"If demand rises, then production expands",
	})

	var found bool
	for _, step := range chain.Steps {
		if step.RuleApplied == RuleHypotheticalSyllogism {
			found = true
			if got := strings.ToLower(step.Conclusion); got != "if costs drop, then production expands" {
				t.Errorf("conclusion = %q", step.Conclusion)
			}
		}
	}
	if !found {
		t.Fatalf("no hypothetical syllogism step in %+v", chain.Steps)
	}
}

func TestBuildChainDisjunctiveSyllogism(t *testing.T) {
	li := NewLogicalInference(3, zap.NewNop())

	chain := li.BuildChain([]string{
		"the team builds hardware or the team builds software",
		"not the team builds hardware",
	})

	if len(chain.Steps) == 0 {
		t.Fatal("no steps derived")
	}
	step := chain.Steps[0]
	if step.RuleApplied != RuleDisjunctiveSyllogism {
		t.Errorf("rule = %q, want %q", step.RuleApplied, RuleDisjunctiveSyllogism)
	}
	if got := strings.ToLower(step.Conclusion); got != "the team builds software" {
		t.Errorf("conclusion = %q", step.Conclusion)
	}
}

func TestBuildChainMultiHopConfidenceMultiplies(t *testing.T) {
	li := NewLogicalInference(3, zap.NewNop())

	chain := li.BuildChain([]string{
		"If funding arrives, hiring starts",
		"If hiring starts, delivery accelerates",
		"funding arrives",
	})

	// Round one derives "hiring starts" (0.9); round two applies modus
	// ponens to it, so the final conclusion carries 0.9 * 0.9.
	var hop *float64
	for _, step := range chain.Steps {
		if strings.ToLower(step.Conclusion) == "delivery accelerates" && step.RuleApplied == RuleModusPonens {
			c := step.Confidence
			hop = &c
		}
	}
	if hop == nil {
		t.Fatalf("multi-hop conclusion missing from %+v", chain.Steps)
	}
	if math.Abs(*hop-0.81) > 1e-9 {
		t.Errorf("multi-hop confidence = %v, want 0.81", *hop)
	}
}

func TestBuildChainValidityIsMeanStepConfidence(t *testing.T) {
	li := NewLogicalInference(3, zap.NewNop())

	chain := li.BuildChain([]string{
		"If AI is implemented, efficiency increases",
		"AI is implemented",
	})

	if len(chain.Steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(chain.Steps))
	}
	if math.Abs(chain.ValidityScore-chain.Steps[0].Confidence) > 1e-9 {
		t.Errorf("validity = %v, want %v", chain.ValidityScore, chain.Steps[0].Confidence)
	}
}

func TestAnalyzeConsistencyDetectsNegation(t *testing.T) {
	li := NewLogicalInference(3, zap.NewNop())

	report := li.AnalyzeConsistency([]string{
		"the market is ready",
		"the market is not ready",
	})

	if len(report.Contradictions) == 0 {
		t.Fatal("no contradictions flagged")
	}
	if len(report.ProblematicPairs) != len(report.Contradictions) {
		t.Errorf("pairs/contradictions mismatch: %d vs %d", len(report.ProblematicPairs), len(report.Contradictions))
	}
	if report.ConsistencyScore >= 1 {
		t.Errorf("score = %v, want < 1", report.ConsistencyScore)
	}
}

func TestAnalyzeConsistencyCleanPremises(t *testing.T) {
	li := NewLogicalInference(3, zap.NewNop())

	report := li.AnalyzeConsistency([]string{
		"the market is ready",
		"the team is experienced",
	})

	if len(report.Contradictions) != 0 {
		t.Errorf("unexpected contradictions: %v", report.Contradictions)
	}
	if report.ConsistencyScore != 1 {
		t.Errorf("score = %v, want 1", report.ConsistencyScore)
	}
}

func TestAnalyzeConsistencyEmptyPremises(t *testing.T) {
	li := NewLogicalInference(3, zap.NewNop())

	report := li.AnalyzeConsistency(nil)
	if report.ConsistencyScore != 1 {
		t.Errorf("score = %v, want 1", report.ConsistencyScore)
	}
}

func TestNormalizeStatement(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  The Market Is Ready.  ", "the market is ready"},
		{"efficiency   increases!", "efficiency increases"},
		{"done?", "done"},
	}
	for _, tt := range tests {
		if got := normalizeStatement(tt.in); got != tt.want {
			t.Errorf("normalizeStatement(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNegationOf(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"not p", "p"},
		{"the market is ready", "the market is not ready"},
		{"the market is not ready", "the market is ready"},
		{"efficiency increases", "not efficiency increases"},
	}
	for _, tt := range tests {
		if got := negationOf(tt.in); got != tt.want {
			t.Errorf("negationOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
