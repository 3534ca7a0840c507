package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultNumCandidates    = 5
	DefaultNumTopCandidates = 2
	MaxTopCandidates        = 5
	MaxParallelism          = 5
)

// ProgressFunc receives a stage boundary notification: the stage that just
// completed, the index of the idea it ran for, and the overall run fraction
// in [0,1]. Callbacks are invoked serially under the tracker's lock, so
// successive fractions never go backwards; they must be fast.
type ProgressFunc func(stage string, ideaIndex int, fraction float64)

// RunRequest describes one coordinator run.
type RunRequest struct {
	Topic         string            `json:"topic"`
	Constraints   string            `json:"constraints,omitempty"`
	NumCandidates int               `json:"num_candidates,omitempty"`
	Preset        TemperaturePreset `json:"temperature_preset,omitempty"`

	// Temperatures overrides the preset with explicit per-stage values.
	Temperatures *TemperaturePolicy `json:"temperatures,omitempty"`

	Options RunOptions `json:"options"`
}

// RunOptions tunes the pipeline around the fixed stage sequence.
type RunOptions struct {
	NumTopCandidates  int     `json:"num_top_candidates,omitempty"`
	NoveltyThreshold  float64 `json:"novelty_threshold,omitempty"`
	EnhancedReasoning bool    `json:"enhanced_reasoning,omitempty"`
	MaxParallelism    int     `json:"max_parallelism,omitempty"`

	// MultiDimensionalEval and LogicalInference enable a single reasoning
	// layer on its own; EnhancedReasoning switches both on at once.
	MultiDimensionalEval bool `json:"multi_dimensional_eval,omitempty"`
	LogicalInference     bool `json:"logical_inference,omitempty"`

	OnProgress ProgressFunc `json:"-"`
}

// MultiDimEnabled reports whether multi-dimensional scoring should run.
func (o RunOptions) MultiDimEnabled() bool {
	return o.EnhancedReasoning || o.MultiDimensionalEval
}

// InferenceEnabled reports whether logical inference should run.
func (o RunOptions) InferenceEnabled() bool {
	return o.EnhancedReasoning || o.LogicalInference
}

func (o RunOptions) reasoningEnabled() bool {
	return o.MultiDimEnabled() || o.InferenceEnabled()
}

// Coordinator drives the role pipeline: generate candidates, filter
// duplicates, critique and rank, then for each top-ranked idea run advocacy
// and skepticism in parallel, improve, and re-critique. The completion
// client is expected to already carry retry and rate-limit wrapping; the
// coordinator never retries on its own.
//
// A Coordinator is built once per run/session together with its reasoning
// engine, so independent runs never share memory state.
type Coordinator struct {
	client domain.CompletionClient
	engine *ReasoningEngine
	logger *zap.Logger
}

func NewCoordinator(client domain.CompletionClient, engine *ReasoningEngine, logger *zap.Logger) *Coordinator {
	return &Coordinator{client: client, engine: engine, logger: logger}
}

// Run executes the full pipeline for one topic. The returned slice holds one
// WorkflowResult per generated candidate: Done results first in critique
// ranking order, then rejected ideas in generation order. Errors never cross
// idea boundaries; only configuration problems fail the run itself.
func (c *Coordinator) Run(ctx context.Context, req RunRequest) ([]domain.WorkflowResult, error) {
	req, policy, err := c.prepare(req)
	if err != nil {
		return nil, err
	}

	progress := newProgressTracker(req, c.logger)

	candidates := c.generate(ctx, req, policy, progress)

	var generationFailed []domain.WorkflowResult
	var ideas []domain.Idea
	for _, cand := range candidates {
		if cand.err != nil {
			generationFailed = append(generationFailed, rejectedForError(domain.Idea{GenerationTemperature: policy.Generation}, cand.err, ctx))
			continue
		}
		ideas = append(ideas, cand.idea)
	}

	filter := NewNoveltyFilter(req.Options.NoveltyThreshold, c.logger)
	filtered := filter.Filter(ideas)

	critiqued := c.critiqueAll(ctx, req, policy, filtered.Kept, progress)

	ranked, cutoff, critiqueFailed := rank(critiqued, req.Options.NumTopCandidates)

	done := c.processRanked(ctx, req, policy, ranked, progress)

	results := make([]domain.WorkflowResult, 0, len(candidates))
	results = append(results, done...)
	results = append(results, cutoff...)
	results = append(results, critiqueFailed...)
	results = append(results, filtered.Rejected...)
	results = append(results, generationFailed...)

	c.logger.Info("run complete",
		zap.String("topic", req.Topic),
		zap.Int("generated", len(candidates)),
		zap.Int("survived_filter", len(filtered.Kept)),
		zap.Int("done", countDone(done)),
		zap.Int("rejected", len(results)-countDone(done)))

	return results, nil
}

// prepare validates the request, applies defaults, and resolves the
// temperature policy. All failures here are configuration errors, surfaced
// before any network call.
func (c *Coordinator) prepare(req RunRequest) (RunRequest, TemperaturePolicy, error) {
	if req.Topic == "" {
		return req, TemperaturePolicy{}, domain.Configurationf("topic is required")
	}
	if req.NumCandidates == 0 {
		req.NumCandidates = DefaultNumCandidates
	}
	if req.NumCandidates < 1 || req.NumCandidates > 20 {
		return req, TemperaturePolicy{}, domain.Configurationf("num_candidates %d out of range [1,20]", req.NumCandidates)
	}
	if req.Options.NumTopCandidates == 0 {
		req.Options.NumTopCandidates = DefaultNumTopCandidates
	}
	if req.Options.NumTopCandidates < 1 || req.Options.NumTopCandidates > MaxTopCandidates {
		return req, TemperaturePolicy{}, domain.Configurationf("num_top_candidates %d out of range [1,%d]", req.Options.NumTopCandidates, MaxTopCandidates)
	}
	if req.Options.NoveltyThreshold < 0 || req.Options.NoveltyThreshold > 1 {
		return req, TemperaturePolicy{}, domain.Configurationf("novelty_threshold %v out of range [0,1]", req.Options.NoveltyThreshold)
	}
	if req.Options.MaxParallelism < 0 {
		return req, TemperaturePolicy{}, domain.Configurationf("max_parallelism must be non-negative")
	}

	if req.Temperatures != nil {
		return req, *req.Temperatures, nil
	}
	policy, err := PolicyForPreset(req.Preset)
	if err != nil {
		return req, TemperaturePolicy{}, err
	}
	return req, policy, nil
}

type candidate struct {
	idea domain.Idea
	err  error
}

// generate produces the raw candidates, one completion call each so a single
// permanent failure costs only its own slot.
func (c *Coordinator) generate(ctx context.Context, req RunRequest, policy TemperaturePolicy, progress *progressTracker) []candidate {
	candidates := make([]candidate, req.NumCandidates)

	g := newGroup(ctx, req.Options.MaxParallelism, req.NumCandidates)
	for i := 0; i < req.NumCandidates; i++ {
		i := i
		g.Go(func() error {
			prompt := generationPrompt(req.Topic, req.Constraints, i+1, req.NumCandidates)
			text, err := c.client.Complete(ctx, prompt, policy.Generation)
			if err != nil {
				c.logger.Warn("generation failed",
					zap.Int("candidate", i),
					zap.Error(err))
				candidates[i] = candidate{err: err}
			} else {
				candidates[i] = candidate{idea: domain.Idea{
					Text:                  text,
					GenerationTemperature: policy.Generation,
				}}
				if c.engine != nil {
					c.engine.Record(AgentGenerator, req.Topic, text, nil)
				}
			}
			progress.done(AgentGenerator, i)
			return nil
		})
	}
	_ = g.Wait()

	return candidates
}

// critiquedIdea pairs a surviving idea with its initial evaluation, or with
// the stage error that rejected it.
type critiquedIdea struct {
	idea domain.Idea
	eval *domain.Evaluation
	err  error
}

func (c *Coordinator) critiqueAll(ctx context.Context, req RunRequest, policy TemperaturePolicy, ideas []domain.Idea, progress *progressTracker) []critiquedIdea {
	out := make([]critiquedIdea, len(ideas))

	g := newGroup(ctx, req.Options.MaxParallelism, len(ideas))
	for i, idea := range ideas {
		i, idea := i, idea
		g.Go(func() error {
			eval, err := c.critique(ctx, req, policy, idea.Text)
			out[i] = critiquedIdea{idea: idea, eval: eval, err: err}
			progress.done(AgentCritic, i)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// critique runs one critique call, enriched with prior context when enhanced
// reasoning is on.
func (c *Coordinator) critique(ctx context.Context, req RunRequest, policy TemperaturePolicy, ideaText string) (*domain.Evaluation, error) {
	var hint string
	if req.Options.reasoningEnabled() && c.engine != nil {
		hint = c.engine.ContextHint(ideaText)
	}

	var eval domain.Evaluation
	if err := c.client.CompleteJSON(ctx, critiquePrompt(ideaText, hint), policy.Analytical, &eval); err != nil {
		return nil, fmt.Errorf("critique stage: %w", err)
	}
	if eval.Score < 0 || eval.Score > 10 {
		return nil, domain.Permanentf("critique score %v out of range [0,10]", eval.Score)
	}

	if req.Options.reasoningEnabled() && c.engine != nil {
		if _, err := c.engine.ProcessWithContext(ctx, AgentCritic, ideaText, eval.Critique); err != nil {
			c.logger.Warn("reasoning enrichment skipped for critique", zap.Error(err))
		}
	}
	return &eval, nil
}

// rank orders critiqued ideas by score descending and splits them into the
// top-K that proceed, the below-cutoff rejects, and the critique failures.
func rank(critiqued []critiquedIdea, topK int) (top []critiquedIdea, cutoff, failed []domain.WorkflowResult) {
	var ok []critiquedIdea
	for _, ci := range critiqued {
		if ci.err != nil {
			failed = append(failed, domain.WorkflowResult{
				Idea:              ci.idea,
				State:             domain.StateRejected,
				RejectionReason:   domain.RejectStageFailed,
				InitialEvaluation: nil,
			})
			continue
		}
		ok = append(ok, ci)
	}

	sort.SliceStable(ok, func(i, j int) bool {
		return ok[i].eval.Score > ok[j].eval.Score
	})

	if len(ok) > topK {
		for _, ci := range ok[topK:] {
			cutoff = append(cutoff, domain.WorkflowResult{
				Idea:              ci.idea,
				State:             domain.StateRejected,
				RejectionReason:   domain.RejectNotRanked,
				InitialEvaluation: ci.eval,
			})
		}
		ok = ok[:topK]
	}
	return ok, cutoff, failed
}

// processRanked runs the post-ranking stages for each top idea as an
// independent unit of work. Results come back in ranking order regardless of
// completion order.
func (c *Coordinator) processRanked(ctx context.Context, req RunRequest, policy TemperaturePolicy, ranked []critiquedIdea, progress *progressTracker) []domain.WorkflowResult {
	results := make([]domain.WorkflowResult, len(ranked))

	g := newGroup(ctx, req.Options.MaxParallelism, len(ranked))
	for i, ci := range ranked {
		i, ci := i, ci
		g.Go(func() error {
			results[i] = c.processIdea(ctx, req, policy, ci, i, progress)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// processIdea drives one idea through advocacy/skepticism (concurrent),
// improvement, and re-critique. A stage failure rejects only this idea,
// preserving whatever stages already completed.
func (c *Coordinator) processIdea(ctx context.Context, req RunRequest, policy TemperaturePolicy, ci critiquedIdea, ideaIndex int, progress *progressTracker) domain.WorkflowResult {
	result := domain.WorkflowResult{
		Idea:              ci.idea,
		State:             domain.StateCritiqued,
		InitialEvaluation: ci.eval,
	}

	advocacy, skepticism, err := c.debate(ctx, policy, ci, ideaIndex, progress)
	if err != nil {
		return rejectResult(result, err, ctx)
	}
	result.Advocacy = advocacy
	result.Skepticism = skepticism
	result.State = domain.StateSkepticized

	improved, err := c.improve(ctx, req, policy, result)
	progress.done(AgentImprover, ideaIndex)
	if err != nil {
		return rejectResult(result, err, ctx)
	}
	result.ImprovedIdea = improved
	result.State = domain.StateImproved

	reEval, err := c.critique(ctx, req, policy, improved)
	progress.done(AgentCritic, ideaIndex)
	if err != nil {
		return rejectResult(result, err, ctx)
	}
	result.ImprovedEvaluation = reEval
	result.ScoreDelta = reEval.Score - ci.eval.Score
	result.State = domain.StateReEvaluated

	c.attachReasoning(ctx, req, &result)

	result.State = domain.StateDone
	return result
}

// debate runs advocacy and skepticism concurrently; they read the same
// inputs and write disjoint outputs.
func (c *Coordinator) debate(ctx context.Context, policy TemperaturePolicy, ci critiquedIdea, ideaIndex int, progress *progressTracker) (*domain.AdvocacyResult, *domain.SkepticismResult, error) {
	var (
		advocacy   *domain.AdvocacyResult
		skepticism *domain.SkepticismResult
		advErr     error
		skepErr    error
		wg         sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		text, err := c.client.Complete(ctx, advocacyPrompt(ci.idea.Text, ci.eval.Critique), policy.Balanced)
		if err != nil {
			advErr = fmt.Errorf("advocacy stage: %w", err)
		} else {
			advocacy = &domain.AdvocacyResult{Argument: text}
			if c.engine != nil {
				c.engine.Record(AgentAdvocate, ci.idea.Text, text, nil)
			}
		}
		progress.done(AgentAdvocate, ideaIndex)
	}()
	go func() {
		defer wg.Done()
		text, err := c.client.Complete(ctx, skepticismPrompt(ci.idea.Text, ci.eval.Critique), policy.Balanced)
		if err != nil {
			skepErr = fmt.Errorf("skepticism stage: %w", err)
		} else {
			skepticism = &domain.SkepticismResult{Concerns: text}
			if c.engine != nil {
				c.engine.Record(AgentSkeptic, ci.idea.Text, text, nil)
			}
		}
		progress.done(AgentSkeptic, ideaIndex)
	}()
	wg.Wait()

	if advErr != nil {
		return nil, nil, advErr
	}
	if skepErr != nil {
		return nil, nil, skepErr
	}
	return advocacy, skepticism, nil
}

func (c *Coordinator) improve(ctx context.Context, req RunRequest, policy TemperaturePolicy, r domain.WorkflowResult) (string, error) {
	var hint string
	if req.Options.reasoningEnabled() && c.engine != nil {
		hint = c.engine.ContextHint(r.Idea.Text)
	}

	text, err := c.client.Complete(ctx, improvementPrompt(
		r.Idea.Text,
		r.InitialEvaluation.Critique,
		r.Advocacy.Argument,
		r.Skepticism.Concerns,
		hint,
	), policy.Balanced)
	if err != nil {
		return "", fmt.Errorf("improvement stage: %w", err)
	}
	return text, nil
}

// attachReasoning records the improvement and attaches the enabled reasoning
// layers to the result. Failure degrades gracefully to the unenriched result.
func (c *Coordinator) attachReasoning(ctx context.Context, req RunRequest, r *domain.WorkflowResult) {
	if !req.Options.reasoningEnabled() || c.engine == nil {
		return
	}
	enrichment, err := c.engine.ProcessWithContext(ctx, AgentImprover, r.ImprovedIdea, r.ImprovedEvaluation.Critique)
	if err != nil {
		c.logger.Warn("reasoning enrichment skipped for improvement", zap.Error(err))
		return
	}
	r.MultiDim = enrichment.MultiDim
	r.Inference = enrichment.Inference
}

// rejectResult turns a partially processed result into a rejected one,
// keeping completed stage outputs. Deadline expiry maps to the timeout
// reason; anything else is a stage failure.
func rejectResult(r domain.WorkflowResult, err error, ctx context.Context) domain.WorkflowResult {
	r.State = domain.StateRejected
	r.RejectionReason = reasonFor(err, ctx)
	return r
}

func rejectedForError(idea domain.Idea, err error, ctx context.Context) domain.WorkflowResult {
	return domain.WorkflowResult{
		Idea:            idea,
		State:           domain.StateRejected,
		RejectionReason: reasonFor(err, ctx),
	}
}

func reasonFor(err error, ctx context.Context) string {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return domain.RejectTimeout
	}
	return domain.RejectStageFailed
}

func countDone(results []domain.WorkflowResult) int {
	n := 0
	for _, r := range results {
		if r.State == domain.StateDone {
			n++
		}
	}
	return n
}

// newGroup builds an errgroup bounded by the configured max parallelism,
// defaulting to the work size up to MaxParallelism.
func newGroup(ctx context.Context, maxParallelism, work int) *errgroup.Group {
	g, _ := errgroup.WithContext(ctx)
	limit := maxParallelism
	if limit == 0 {
		limit = work
		if limit > MaxParallelism {
			limit = MaxParallelism
		}
	}
	if limit > 0 {
		g.SetLimit(limit)
	}
	return g
}

// progressTracker turns per-stage completions into a monotonic overall run
// fraction for the OnProgress callback.
type progressTracker struct {
	mu        sync.Mutex
	completed int
	total     int
	callback  ProgressFunc
	logger    *zap.Logger
}

func newProgressTracker(req RunRequest, logger *zap.Logger) *progressTracker {
	// Worst-case stage count: every candidate survives filtering and the
	// top-K each run four more stages. The fraction is a ceiling estimate;
	// it reaches 1.0 only when nothing is filtered out.
	total := req.NumCandidates + // generation
		req.NumCandidates + // critique
		req.Options.NumTopCandidates*4 // advocate, skeptic, improve, re-critique
	return &progressTracker{
		total:    total,
		callback: req.Options.OnProgress,
		logger:   logger,
	}
}

func (p *progressTracker) done(stage string, ideaIndex int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	fraction := float64(p.completed) / float64(p.total)
	if fraction > 1 {
		fraction = 1
	}
	// Held across the callback so observers see fractions in order.
	if p.callback != nil {
		p.callback(stage, ideaIndex, fraction)
	}
}
