package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

var ErrNotFound = errors.New("not found")

// RunStore archives coordinator runs and their per-idea results in Postgres.
// Results carry an optional pgvector embedding of the final idea text so old
// runs can be searched semantically.
type RunStore struct {
	db *pgxpool.Pool
}

func NewRunStore(db *pgxpool.Pool) *RunStore {
	return &RunStore{db: db}
}

// Migrate creates the archive tables. Embeddings use 1536 dims to match the
// default OpenAI embedding model.
func (s *RunStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			topic TEXT NOT NULL,
			constraints TEXT NOT NULL DEFAULT '',
			result_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS run_results (
			run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INT NOT NULL,
			result JSONB NOT NULL,
			embedding vector(1536),
			PRIMARY KEY (run_id, position)
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate run archive: %w", err)
	}
	return nil
}

func (s *RunStore) CreateRun(ctx context.Context, run *domain.Run) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO runs (topic, constraints, result_count)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		run.Topic, run.Constraints, run.ResultCount,
	).Scan(&run.ID, &run.CreatedAt)
}

func (s *RunStore) SaveResult(ctx context.Context, runID uuid.UUID, position int, result domain.WorkflowResult, embedding []float32) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	var vec *pgvector.Vector
	if len(embedding) > 0 {
		v := pgvector.NewVector(embedding)
		vec = &v
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO run_results (run_id, position, result, embedding)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, position) DO UPDATE SET result = $3, embedding = $4`,
		runID, position, resultJSON, vec,
	)
	return err
}

func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, topic, constraints, result_count, created_at
		 FROM runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var r domain.Run
		if err := rows.Scan(&r.ID, &r.Topic, &r.Constraints, &r.ResultCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *RunStore) GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, []domain.ArchivedResult, error) {
	run := &domain.Run{}
	err := s.db.QueryRow(ctx,
		`SELECT id, topic, constraints, result_count, created_at
		 FROM runs WHERE id = $1`,
		id,
	).Scan(&run.ID, &run.Topic, &run.Constraints, &run.ResultCount, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT run_id, position, result
		 FROM run_results WHERE run_id = $1 ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results, err := scanResults(rows, false)
	if err != nil {
		return nil, nil, err
	}
	return run, results, nil
}

// SearchResults returns archived results nearest to the query embedding by
// cosine similarity, best first.
func (s *RunStore) SearchResults(ctx context.Context, embedding []float32, limit int) ([]domain.ArchivedResult, error) {
	if limit <= 0 {
		limit = 10
	}
	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT run_id, position, result,
		        1 - (embedding <=> $1) AS score
		 FROM run_results
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResults(rows, true)
}

func scanResults(rows pgx.Rows, withScore bool) ([]domain.ArchivedResult, error) {
	var results []domain.ArchivedResult
	for rows.Next() {
		var (
			ar         domain.ArchivedResult
			resultJSON []byte
		)
		var err error
		if withScore {
			err = rows.Scan(&ar.RunID, &ar.Position, &resultJSON, &ar.Score)
		} else {
			err = rows.Scan(&ar.RunID, &ar.Position, &resultJSON)
		}
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(resultJSON, &ar.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		results = append(results, ar)
	}
	return results, rows.Err()
}
