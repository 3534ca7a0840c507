package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"go.uber.org/zap"
)

const maxContextHints = 3

// EngineOptions toggles the optional reasoning layers.
type EngineOptions struct {
	MultiDimensionalEval bool
	LogicalInference     bool
	SimilarityThreshold  float64 // <0 selects the default
}

// ReasoningEngine composes context memory, the conversation tracker, the
// multi-dimensional evaluator and logical inference behind one facade. It
// holds non-owning references to the shared memory and tracker; it never
// copies or mutates their internals beyond their public operations.
//
// Every failure inside the engine is wrapped and surfaces here; callers
// treat any error as "continue without enrichment".
type ReasoningEngine struct {
	memory    *ContextMemory
	tracker   *ConversationTracker
	evaluator *MultiDimensionalEvaluator
	inference *LogicalInference
	opts      EngineOptions
	logger    *zap.Logger
}

func NewReasoningEngine(
	memory *ContextMemory,
	tracker *ConversationTracker,
	evaluator *MultiDimensionalEvaluator,
	inference *LogicalInference,
	opts EngineOptions,
	logger *zap.Logger,
) *ReasoningEngine {
	if opts.SimilarityThreshold == 0 {
		opts.SimilarityThreshold = DefaultSimilarityThreshold
	}
	return &ReasoningEngine{
		memory:    memory,
		tracker:   tracker,
		evaluator: evaluator,
		inference: inference,
		opts:      opts,
		logger:    logger,
	}
}

// Enrichment is what the engine adds around a pipeline stage.
type Enrichment struct {
	ContextHint     string                     `json:"context_hint,omitempty"`
	SimilarContexts []domain.ScoredContext     `json:"similar_contexts,omitempty"`
	MultiDim        *domain.MultiDimEvaluation `json:"multi_dim_evaluation,omitempty"`
	Inference       *domain.InferenceChain     `json:"logical_inference,omitempty"`
	Consistency     *domain.ConsistencyReport  `json:"consistency,omitempty"`
}

// ContextHint returns a short digest of stored interactions similar to
// query, suitable for appending to a stage prompt. Never fails; an empty
// hint means no related context.
func (e *ReasoningEngine) ContextHint(query string) string {
	return hintFromContexts(e.memory.FindSimilar(query, e.opts.SimilarityThreshold))
}

func hintFromContexts(similar []domain.ScoredContext) string {
	if len(similar) == 0 {
		return ""
	}
	if len(similar) > maxContextHints {
		similar = similar[:maxContextHints]
	}

	var sb strings.Builder
	for i, s := range similar {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "- [%s] %s", s.Agent, firstSentences(s.Output, 2))
	}
	return sb.String()
}

// Record stores a completed stage interaction in both the context memory and
// the conversation tracker.
func (e *ReasoningEngine) Record(agent, input, output string, metadata map[string]any) {
	e.memory.Store(agent, input, output, metadata)
	e.tracker.AddInteraction(agent, input, output, metadata)
}

// ProcessWithContext retrieves similar prior context, records the
// interaction, and attaches the enabled reasoning layers for the stage
// output. Any internal failure is returned wrapped; the pipeline logs it and
// continues with the unenriched result.
func (e *ReasoningEngine) ProcessWithContext(ctx context.Context, agent, input, output string) (*Enrichment, error) {
	// Lookup happens before the store so a stage never matches its own
	// interaction.
	similar := e.memory.FindSimilar(input, e.opts.SimilarityThreshold)

	e.Record(agent, input, output, nil)

	enrichment := &Enrichment{
		SimilarContexts: similar,
		ContextHint:     hintFromContexts(similar),
	}

	if e.opts.MultiDimensionalEval && e.evaluator != nil {
		ev, err := e.evaluator.Evaluate(ctx, input, enrichment.ContextHint)
		if err != nil {
			return nil, fmt.Errorf("reasoning engine: multi-dimensional evaluation: %w", err)
		}
		enrichment.MultiDim = ev
	}

	if e.opts.LogicalInference && e.inference != nil {
		premises := splitSentences(input)
		if len(premises) >= 2 {
			chain := e.inference.BuildChain(premises)
			enrichment.Inference = &chain
			report := e.inference.AnalyzeConsistency(premises)
			enrichment.Consistency = &report
		}
	}

	e.logger.Debug("processed stage with context",
		zap.String("agent", agent),
		zap.Int("similar_contexts", len(enrichment.SimilarContexts)),
		zap.Bool("multi_dim", enrichment.MultiDim != nil),
		zap.Bool("inference", enrichment.Inference != nil))

	return enrichment, nil
}

// Flow exposes the tracker's analysis through the facade.
func (e *ReasoningEngine) Flow() domain.FlowAnalysis {
	return e.tracker.AnalyzeFlow()
}

// splitSentences breaks free text into candidate premises.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '\n' || r == ';'
	})
	var out []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// firstSentences truncates text to at most n sentences.
func firstSentences(text string, n int) string {
	parts := splitSentences(text)
	if len(parts) > n {
		parts = parts[:n]
	}
	return strings.Join(parts, ". ")
}
