package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dd0wney/cluso-gridplan/pkg/geometry"
	"github.com/dd0wney/cluso-gridplan/pkg/pipeline"
	"github.com/dd0wney/cluso-gridplan/pkg/report"
)

var ErrRunNotFound = errors.New("pgstore: run not found")

// RunRecord is a stored planning run.
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	Objective   float64
	Paths       int
	ActivePaths int
	Unserved    []string
	Summary     report.Summary
}

// ConnectionRecord is one stored connector.
type ConnectionRecord struct {
	From        string
	To          string
	PathID      string
	Terminal    string
	Transformer string
	WKT         string
}

// SaveRun stores the run summary and its connections in one transaction.
func (s *PGStore) SaveRun(ctx context.Context, res *pipeline.Result) error {
	summary := report.Summarize(res)
	runID, err := uuid.Parse(summary.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", summary.RunID, err)
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO plan_runs (id, started_at, finished_at, status, objective, paths, active_paths, unserved, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, query,
		runID,
		summary.StartedAt,
		summary.FinishedAt,
		summary.Status,
		summary.Objective,
		summary.Paths,
		summary.ActivePaths,
		summary.Unserved,
		summaryJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	rows := make([][]any, len(res.Connections))
	for i, c := range res.Connections {
		rows[i] = []any{runID, int32(i + 1), c.From, c.To, c.PathID, c.Terminal, c.Transformer, geometry.WKT(c.Geometry)}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"plan_connections"},
		[]string{"run_id", "seq", "from_id", "to_id", "path_id", "terminal", "transformer", "wkt"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to insert connections: %w", err)
	}

	return tx.Commit(ctx)
}

// GetRun retrieves a run by id.
func (s *PGStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	runID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	query := `
		SELECT id::text, started_at, finished_at, status, objective, paths, active_paths, unserved, summary
		FROM plan_runs
		WHERE id = $1
	`

	run := &RunRecord{}
	var summaryJSON []byte
	err = s.pool.QueryRow(ctx, query, runID).Scan(
		&run.ID,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Status,
		&run.Objective,
		&run.Paths,
		&run.ActivePaths,
		&run.Unserved,
		&summaryJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return run, nil
}

// ListConnections returns a run's connections in emission order.
func (s *PGStore) ListConnections(ctx context.Context, runID string) ([]ConnectionRecord, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	query := `
		SELECT from_id, to_id, path_id, terminal, transformer, wkt
		FROM plan_connections
		WHERE run_id = $1
		ORDER BY seq
	`

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	out := make([]ConnectionRecord, 0)
	for rows.Next() {
		var c ConnectionRecord
		if err := rows.Scan(&c.From, &c.To, &c.PathID, &c.Terminal, &c.Transformer, &c.WKT); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read connections: %w", err)
	}
	return out, nil
}

var (
	_ pipeline.Source = (*PGStore)(nil)
	_ pipeline.Sink   = (*PGStore)(nil)
)
