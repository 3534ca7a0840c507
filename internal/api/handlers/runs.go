package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"github.com/Harshitk-cp/ideaforge/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RunsHandler serves the archived-run read endpoints.
type RunsHandler struct {
	store    domain.RunStore
	embedder domain.EmbeddingClient
}

func NewRunsHandler(runStore domain.RunStore, embedder domain.EmbeddingClient) *RunsHandler {
	return &RunsHandler{store: runStore, embedder: embedder}
}

// List handles GET /v1/runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// Get handles GET /v1/runs/{id}.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, results, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run": run, "results": results})
}

// Search handles GET /v1/runs/search?q=...: semantic search over archived
// result texts.
func (h *RunsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	if h.embedder == nil {
		writeError(w, http.StatusNotImplemented, "search requires an embedding provider")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	embedding, err := h.embedder.Embed(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to embed query")
		return
	}

	results, err := h.store.SearchResults(r.Context(), embedding, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
