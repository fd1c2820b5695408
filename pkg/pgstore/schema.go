package pgstore

import "context"

func (s *PGStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS elements (
		name TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		wkt TEXT NOT NULL,
		assigned_terminal TEXT NOT NULL DEFAULT '',
		capacity INTEGER NOT NULL DEFAULT 0,
		attributes JSONB,
		position SERIAL
	);

	CREATE TABLE IF NOT EXISTS plan_runs (
		id UUID PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		objective DOUBLE PRECISION NOT NULL,
		paths INTEGER NOT NULL,
		active_paths INTEGER NOT NULL,
		unserved TEXT[] NOT NULL,
		summary JSONB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plan_connections (
		run_id UUID NOT NULL REFERENCES plan_runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		path_id TEXT NOT NULL,
		terminal TEXT NOT NULL,
		transformer TEXT NOT NULL,
		wkt TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_elements_type ON elements(type);
	CREATE INDEX IF NOT EXISTS idx_plan_runs_started_at ON plan_runs(started_at);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}
