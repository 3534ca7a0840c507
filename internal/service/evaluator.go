package service

import (
	"context"
	"math"
	"sort"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"go.uber.org/zap"
)

// Default dimension weights; they sum to 1.0.
var DefaultDimensionWeights = map[string]float64{
	"feasibility":        0.20,
	"innovation":         0.15,
	"impact":             0.20,
	"cost_effectiveness": 0.15,
	"scalability":        0.10,
	"risk_assessment":    0.10,
	"timeline":           0.10,
}

// DefaultConfidenceZ scales the dimension-score standard deviation into the
// confidence interval half-width. A heuristic default, not a statistical
// guarantee.
const DefaultConfidenceZ = 0.5

const weightSumTolerance = 1e-6

// MultiDimensionalEvaluator scores an idea across a fixed dimension set with
// one structured completion call per idea.
type MultiDimensionalEvaluator struct {
	client     domain.CompletionClient
	weights    map[string]float64
	dimensions []string // sorted weight keys, for stable prompts and iteration
	z          float64
	temp       float64
	logger     *zap.Logger
}

// NewMultiDimensionalEvaluator builds an evaluator with the default weights.
func NewMultiDimensionalEvaluator(client domain.CompletionClient, logger *zap.Logger) *MultiDimensionalEvaluator {
	ev, _ := NewMultiDimensionalEvaluatorWithWeights(client, DefaultDimensionWeights, logger)
	return ev
}

// NewMultiDimensionalEvaluatorWithWeights builds an evaluator with custom
// weights. The set must sum to 1.0 within tolerance; negative weights and
// off-unit sums are configuration errors, surfaced before any network call.
// The accepted set is then re-normalized so float drift never skews the
// weighted mean.
func NewMultiDimensionalEvaluatorWithWeights(client domain.CompletionClient, weights map[string]float64, logger *zap.Logger) (*MultiDimensionalEvaluator, error) {
	if len(weights) == 0 {
		return nil, domain.Configurationf("evaluator requires at least one dimension weight")
	}

	var total float64
	for dim, w := range weights {
		if w < 0 {
			return nil, domain.Configurationf("dimension %q has negative weight %v", dim, w)
		}
		total += w
	}
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}

	normalized := make(map[string]float64, len(weights))
	dims := make([]string, 0, len(weights))
	for dim, w := range weights {
		normalized[dim] = w / total
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	return &MultiDimensionalEvaluator{
		client:     client,
		weights:    normalized,
		dimensions: dims,
		z:          DefaultConfidenceZ,
		temp:       0.3,
		logger:     logger,
	}, nil
}

// ValidateWeights reports whether a caller-supplied weight set sums to 1.0
// within tolerance. Every custom weight set passes through here before the
// evaluator accepts it.
func ValidateWeights(weights map[string]float64) error {
	var total float64
	for _, w := range weights {
		total += w
	}
	if math.Abs(total-1.0) > weightSumTolerance {
		return domain.Configurationf("dimension weights sum to %v, want 1.0", total)
	}
	return nil
}

// Evaluate scores an idea on every configured dimension in a single
// structured call, then derives the weighted overall score and a variance
// based confidence interval. Deterministic given a deterministic client.
func (e *MultiDimensionalEvaluator) Evaluate(ctx context.Context, ideaText, background string) (*domain.MultiDimEvaluation, error) {
	var raw map[string]domain.DimensionScore
	prompt := dimensionPrompt(ideaText, background, e.dimensions)
	if err := e.client.CompleteJSON(ctx, prompt, e.temp, &raw); err != nil {
		return nil, err
	}

	// Exactly the configured dimension keys must be present, each in range.
	if len(raw) != len(e.weights) {
		return nil, domain.Permanentf("evaluator payload has %d dimensions, want %d", len(raw), len(e.weights))
	}
	for _, dim := range e.dimensions {
		ds, ok := raw[dim]
		if !ok {
			return nil, domain.Permanentf("evaluator payload missing dimension %q", dim)
		}
		if ds.Score < 0 || ds.Score > 10 {
			return nil, domain.Permanentf("dimension %q score %v out of range [0,10]", dim, ds.Score)
		}
	}

	var overall float64
	for _, dim := range e.dimensions {
		overall += e.weights[dim] * raw[dim].Score
	}

	interval := e.confidenceInterval(raw, overall)

	if e.logger != nil {
		e.logger.Debug("multi-dimensional evaluation",
			zap.Float64("overall", overall),
			zap.Float64("lower", interval.Lower),
			zap.Float64("upper", interval.Upper))
	}

	return &domain.MultiDimEvaluation{
		DimensionScores:    raw,
		OverallScore:       overall,
		ConfidenceInterval: interval,
	}, nil
}

// confidenceInterval widens with the spread of the dimension scores:
// overall ± stddev*z, clamped to [0,10]. The overall score always lies
// inside the interval.
func (e *MultiDimensionalEvaluator) confidenceInterval(scores map[string]domain.DimensionScore, overall float64) domain.ConfidenceInterval {
	n := float64(len(scores))
	var mean float64
	for _, ds := range scores {
		mean += ds.Score
	}
	mean /= n

	var variance float64
	for _, ds := range scores {
		d := ds.Score - mean
		variance += d * d
	}
	variance /= n

	half := math.Sqrt(variance) * e.z
	return domain.ConfidenceInterval{
		Lower: math.Max(0, overall-half),
		Upper: math.Min(10, overall+half),
	}
}

// RankedIdea pairs an idea with its evaluation for comparison output.
type RankedIdea struct {
	IdeaText   string
	Evaluation *domain.MultiDimEvaluation
}

// Compare evaluates each idea and ranks them by overall score descending,
// breaking ties by narrower confidence interval (more certain wins).
func (e *MultiDimensionalEvaluator) Compare(ctx context.Context, ideaTexts []string, background string) ([]RankedIdea, error) {
	ranked := make([]RankedIdea, 0, len(ideaTexts))
	for _, text := range ideaTexts {
		ev, err := e.Evaluate(ctx, text, background)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, RankedIdea{IdeaText: text, Evaluation: ev})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Evaluation, ranked[j].Evaluation
		if a.OverallScore != b.OverallScore {
			return a.OverallScore > b.OverallScore
		}
		aw := a.ConfidenceInterval.Upper - a.ConfidenceInterval.Lower
		bw := b.ConfidenceInterval.Upper - b.ConfidenceInterval.Lower
		return aw < bw
	})
	return ranked, nil
}

// Dimensions returns the configured dimension names in stable order.
func (e *MultiDimensionalEvaluator) Dimensions() []string {
	return e.dimensions
}
