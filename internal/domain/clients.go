package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CompletionClient is the opaque text-completion capability every pipeline
// stage runs on. Implementations classify failures as TransientError
// (retryable) or PermanentError (not retryable); CompleteJSON validates the
// payload against out and returns PermanentError on any schema mismatch.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
	CompleteJSON(ctx context.Context, prompt string, temperature float64, out any) error
}

// EmbeddingClient produces a vector for a text. Used only by the optional
// run archive for semantic search; the core pipeline never depends on it.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Run is one coordinator invocation persisted to the archive.
type Run struct {
	ID          uuid.UUID `json:"id"`
	Topic       string    `json:"topic"`
	Constraints string    `json:"constraints,omitempty"`
	ResultCount int       `json:"result_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ArchivedResult is a workflow result as read back from the archive.
type ArchivedResult struct {
	RunID    uuid.UUID      `json:"run_id"`
	Position int            `json:"position"`
	Result   WorkflowResult `json:"result"`
	Score    float32        `json:"score,omitempty"` // similarity, search results only
}

// RunStore archives coordinator runs. All methods are optional extras around
// the in-memory pipeline; absence of an archive never affects a run.
type RunStore interface {
	CreateRun(ctx context.Context, run *Run) error
	SaveResult(ctx context.Context, runID uuid.UUID, position int, result WorkflowResult, embedding []float32) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (*Run, []ArchivedResult, error)
	SearchResults(ctx context.Context, embedding []float32, limit int) ([]ArchivedResult, error)
}
