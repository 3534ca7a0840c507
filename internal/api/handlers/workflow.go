package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"github.com/Harshitk-cp/ideaforge/internal/service"
	"go.uber.org/zap"
)

const (
	defaultRunTimeout = 2 * time.Minute
	maxRunTimeout     = 10 * time.Minute
)

// WorkflowHandler runs the idea pipeline for HTTP callers. Each request gets
// its own context memory, tracker, and reasoning engine so concurrent runs
// never observe each other's context.
type WorkflowHandler struct {
	client   domain.CompletionClient
	store    domain.RunStore        // nil when the archive is disabled
	embedder domain.EmbeddingClient // nil when the archive is disabled
	settings PipelineSettings
	logger   *zap.Logger
}

// PipelineSettings carries the config-derived per-run construction knobs.
type PipelineSettings struct {
	MemoryCapacity int
	InferenceDepth int
}

func NewWorkflowHandler(client domain.CompletionClient, store domain.RunStore, embedder domain.EmbeddingClient, settings PipelineSettings, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		client:   client,
		store:    store,
		embedder: embedder,
		settings: settings,
		logger:   logger,
	}
}

type runWorkflowRequest struct {
	service.RunRequest
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

type runWorkflowResponse struct {
	RunID   string                  `json:"run_id,omitempty"`
	Topic   string                  `json:"topic"`
	Results []domain.WorkflowResult `json:"results"`
	Flow    domain.FlowAnalysis     `json:"flow"`
}

// Run handles POST /v1/workflows.
func (h *WorkflowHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req runWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	timeout := defaultRunTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
		if timeout > maxRunTimeout {
			timeout = maxRunTimeout
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	memory := service.NewContextMemory(h.settings.MemoryCapacity, h.logger)
	tracker := service.NewConversationTracker()
	evaluator := service.NewMultiDimensionalEvaluator(h.client, h.logger)
	inference := service.NewLogicalInference(h.settings.InferenceDepth, h.logger)
	engine := service.NewReasoningEngine(memory, tracker, evaluator, inference, service.EngineOptions{
		MultiDimensionalEval: req.Options.MultiDimEnabled(),
		LogicalInference:     req.Options.InferenceEnabled(),
	}, h.logger)

	coordinator := service.NewCoordinator(h.client, engine, h.logger)

	results, err := coordinator.Run(ctx, req.RunRequest)
	if err != nil {
		if domain.IsConfiguration(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("workflow run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "workflow run failed")
		return
	}

	resp := runWorkflowResponse{
		Topic:   req.Topic,
		Results: results,
		Flow:    engine.Flow(),
	}

	if h.store != nil {
		if id, archiveErr := h.archive(r.Context(), req.RunRequest, results); archiveErr != nil {
			// Archive failure never fails a completed run.
			h.logger.Warn("run archive failed", zap.Error(archiveErr))
		} else {
			resp.RunID = id
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *WorkflowHandler) archive(ctx context.Context, req service.RunRequest, results []domain.WorkflowResult) (string, error) {
	run := &domain.Run{
		Topic:       req.Topic,
		Constraints: req.Constraints,
		ResultCount: len(results),
	}
	if err := h.store.CreateRun(ctx, run); err != nil {
		return "", err
	}

	for i, result := range results {
		var embedding []float32
		if h.embedder != nil && result.State == domain.StateDone {
			text := result.ImprovedIdea
			if text == "" {
				text = result.Idea.Text
			}
			if vec, err := h.embedder.Embed(ctx, text); err != nil {
				h.logger.Warn("result embedding failed", zap.Error(err))
			} else {
				embedding = vec
			}
		}
		if err := h.store.SaveResult(ctx, run.ID, i, result, embedding); err != nil {
			return "", err
		}
	}
	return run.ID.String(), nil
}
