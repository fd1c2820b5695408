package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dd0wney/cluso-gridplan/pkg/geometry"
	"github.com/dd0wney/cluso-gridplan/pkg/network"
	"github.com/dd0wney/cluso-gridplan/pkg/validation"
)

// LoadElements reads the elements table in insertion order.
func (s *PGStore) LoadElements(ctx context.Context) ([]network.Element, error) {
	query := `
		SELECT name, type, wkt, assigned_terminal, capacity, attributes
		FROM elements
		ORDER BY position
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query elements: %w", err)
	}
	defer rows.Close()

	elements := make([]network.Element, 0)
	for rows.Next() {
		var rec validation.ElementRecord
		var attrsJSON []byte
		if err := rows.Scan(&rec.Name, &rec.Type, &rec.WKT, &rec.Terminal, &rec.Capacity, &attrsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}

		var attrs map[string]string
		if len(attrsJSON) > 0 {
			if err := json.Unmarshal(attrsJSON, &attrs); err != nil {
				return nil, fmt.Errorf("failed to unmarshal attributes of %s: %w", rec.Name, err)
			}
		}

		e, err := network.NewElement(rec, attrs)
		if err != nil {
			return nil, &network.ElementError{Op: "LoadElements", Element: rec.Name, Cause: err}
		}
		elements = append(elements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read elements: %w", err)
	}
	return elements, nil
}

// ImportElements replaces the elements table with elements, keeping their order.
func (s *PGStore) ImportElements(ctx context.Context, elements []network.Element) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE elements RESTART IDENTITY`); err != nil {
		return fmt.Errorf("failed to clear elements: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range elements {
		var attrsJSON []byte
		if len(e.Attributes) > 0 {
			if attrsJSON, err = json.Marshal(e.Attributes); err != nil {
				return fmt.Errorf("failed to marshal attributes of %s: %w", e.Name, err)
			}
		}
		batch.Queue(`
			INSERT INTO elements (name, type, wkt, assigned_terminal, capacity, attributes)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.Name, string(e.Type), geometry.WKT(e.Geometry), e.AssignedTerminal, e.Capacity, attrsJSON)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert elements: %w", err)
	}

	return tx.Commit(ctx)
}
