package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"go.uber.org/zap"
)

const DefaultInferenceDepth = 3

// Rule names recorded on inference steps.
const (
	RuleModusPonens           = "modus_ponens"
	RuleModusTollens          = "modus_tollens"
	RuleHypotheticalSyllogism = "hypothetical_syllogism"
	RuleDisjunctiveSyllogism  = "disjunctive_syllogism"
)

// Per-rule confidence heuristics. Multi-hop chains multiply step
// confidences.
var defaultRuleConfidence = map[string]float64{
	RuleModusPonens:           0.9,
	RuleModusTollens:          0.85,
	RuleHypotheticalSyllogism: 0.8,
	RuleDisjunctiveSyllogism:  0.8,
}

// LogicalInference derives conclusions from premise sets with a fixed
// propositional rule set and reports internal contradictions.
type LogicalInference struct {
	depth          int
	ruleConfidence map[string]float64
	logger         *zap.Logger
}

func NewLogicalInference(depth int, logger *zap.Logger) *LogicalInference {
	if depth <= 0 {
		depth = DefaultInferenceDepth
	}
	conf := make(map[string]float64, len(defaultRuleConfidence))
	for k, v := range defaultRuleConfidence {
		conf[k] = v
	}
	return &LogicalInference{
		depth:          depth,
		ruleConfidence: conf,
		logger:         logger,
	}
}

// statement is a known proposition with the cumulative confidence of its
// derivation (premises start at 1.0).
type statement struct {
	text       string
	normalized string
	confidence float64
}

var (
	condThenRe  = regexp.MustCompile(`^if (.+?),? then (.+)$`)
	condCommaRe = regexp.MustCompile(`^if (.+?), (.+)$`)
	orRe        = regexp.MustCompile(`^(.+?) or (.+)$`)
)

// normalizeStatement lowercases, trims trailing punctuation and collapses
// whitespace so syntactic matching is stable.
func normalizeStatement(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".!?")
	return strings.Join(strings.Fields(s), " ")
}

// parseConditional splits "If P, then Q" / "If P then Q" / "If P, Q" into
// antecedent and consequent, both normalized.
func parseConditional(normalized string) (antecedent, consequent string, ok bool) {
	if m := condThenRe.FindStringSubmatch(normalized); m != nil {
		return m[1], m[2], true
	}
	if m := condCommaRe.FindStringSubmatch(normalized); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

// parseDisjunction splits "P or Q" into its two alternatives.
func parseDisjunction(normalized string) (left, right string, ok bool) {
	if _, _, isCond := parseConditional(normalized); isCond {
		return "", "", false
	}
	if m := orRe.FindStringSubmatch(normalized); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

// negationOf produces the syntactic negation of a normalized statement.
// "not p" <-> "p", "x is not y" <-> "x is y"; anything else gains a leading
// "not".
func negationOf(normalized string) string {
	if rest, ok := strings.CutPrefix(normalized, "not "); ok {
		return rest
	}
	if strings.Contains(normalized, " is not ") {
		return strings.Replace(normalized, " is not ", " is ", 1)
	}
	if strings.Contains(normalized, " is ") {
		return strings.Replace(normalized, " is ", " is not ", 1)
	}
	return "not " + normalized
}

func capitalizeFirst(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// BuildChain iteratively applies the rule set pairwise over the premises and
// previously derived conclusions until nothing new is produced or the depth
// bound is reached. Fewer than two premises yield an empty chain with
// validity 0 and no error.
func (l *LogicalInference) BuildChain(premises []string) domain.InferenceChain {
	chain := domain.InferenceChain{}
	if len(premises) < 2 {
		return chain
	}

	known := make(map[string]statement, len(premises))
	var order []statement
	for _, p := range premises {
		norm := normalizeStatement(p)
		if norm == "" {
			continue
		}
		if _, exists := known[norm]; exists {
			continue
		}
		st := statement{text: strings.TrimSpace(p), normalized: norm, confidence: 1.0}
		known[norm] = st
		order = append(order, st)
	}

	for round := 0; round < l.depth; round++ {
		var derived []statement

		for _, a := range order {
			for _, b := range order {
				if a.normalized == b.normalized {
					continue
				}
				for _, d := range l.applyRules(a, b) {
					if _, exists := known[d.st.normalized]; exists {
						continue
					}
					known[d.st.normalized] = d.st
					derived = append(derived, d.st)
					chain.Steps = append(chain.Steps, d.step)
				}
			}
		}

		if len(derived) == 0 {
			break
		}
		order = append(order, derived...)
	}

	if len(chain.Steps) == 0 {
		return chain
	}

	last := chain.Steps[len(chain.Steps)-1]
	chain.OverallConclusion = last.Conclusion
	chain.ConfidenceScore = last.Confidence

	var sum float64
	for _, s := range chain.Steps {
		sum += s.Confidence
	}
	chain.ValidityScore = sum / float64(len(chain.Steps))

	if l.logger != nil {
		l.logger.Debug("built inference chain",
			zap.Int("premises", len(premises)),
			zap.Int("steps", len(chain.Steps)),
			zap.Float64("validity", chain.ValidityScore))
	}
	return chain
}

type derivation struct {
	st   statement
	step domain.InferenceStep
}

// applyRules attempts every rule on the ordered pair (a, b) and returns the
// derivations that fire.
func (l *LogicalInference) applyRules(a, b statement) []derivation {
	var out []derivation

	ant, cons, isCond := parseConditional(a.normalized)
	if isCond {
		// Modus ponens: If P then Q; P ⊢ Q.
		if b.normalized == ant {
			out = append(out, l.derive(RuleModusPonens, a, b, cons))
		}
		// Modus tollens: If P then Q; not Q ⊢ not P.
		if b.normalized == negationOf(cons) {
			out = append(out, l.derive(RuleModusTollens, a, b, negationOf(ant)))
		}
		// Hypothetical syllogism: If P then Q; If Q then R ⊢ If P then R.
		if ant2, cons2, ok := parseConditional(b.normalized); ok && cons == ant2 {
			out = append(out, l.derive(RuleHypotheticalSyllogism, a, b, fmt.Sprintf("if %s, then %s", ant, cons2)))
		}
	}

	// Disjunctive syllogism: P or Q; not P ⊢ Q.
	if left, right, ok := parseDisjunction(a.normalized); ok {
		if b.normalized == negationOf(left) {
			out = append(out, l.derive(RuleDisjunctiveSyllogism, a, b, right))
		} else if b.normalized == negationOf(right) {
			out = append(out, l.derive(RuleDisjunctiveSyllogism, a, b, left))
		}
	}

	return out
}

func (l *LogicalInference) derive(rule string, a, b statement, conclusionNorm string) derivation {
	confidence := l.ruleConfidence[rule] * a.confidence * b.confidence
	text := capitalizeFirst(conclusionNorm)
	return derivation{
		st: statement{text: text, normalized: normalizeStatement(conclusionNorm), confidence: confidence},
		step: domain.InferenceStep{
			Premise:     a.text + " + " + b.text,
			Conclusion:  text,
			Confidence:  confidence,
			RuleApplied: rule,
		},
	}
}

// AnalyzeConsistency flags premise pairs that are syntactic negations of one
// another and derived conclusions that contradict a premise.
func (l *LogicalInference) AnalyzeConsistency(premises []string) domain.ConsistencyReport {
	report := domain.ConsistencyReport{ConsistencyScore: 1}

	norms := make([]string, len(premises))
	for i, p := range premises {
		norms[i] = normalizeStatement(p)
	}

	var pairsChecked int

	flag := func(a, b string) {
		report.Contradictions = append(report.Contradictions,
			fmt.Sprintf("%q contradicts %q", a, b))
		report.ProblematicPairs = append(report.ProblematicPairs, [2]string{a, b})
	}

	// Direct premise-vs-premise negations.
	for i := 0; i < len(premises); i++ {
		for j := i + 1; j < len(premises); j++ {
			pairsChecked++
			if norms[i] == negationOf(norms[j]) {
				flag(premises[i], premises[j])
			}
		}
	}

	// Derived conclusions contradicting a premise.
	chain := l.BuildChain(premises)
	for _, step := range chain.Steps {
		concNorm := normalizeStatement(step.Conclusion)
		for i, p := range premises {
			pairsChecked++
			if norms[i] == negationOf(concNorm) {
				flag(step.Conclusion, p)
			}
		}
	}

	if pairsChecked > 0 {
		score := 1 - float64(len(report.Contradictions))/float64(pairsChecked)
		if score < 0 {
			score = 0
		}
		report.ConsistencyScore = score
	}
	return report
}
