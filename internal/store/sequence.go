package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// recordSequence names the counter every appended record draws from, so
// LLM calls, reports and feedback interleave in one total order.
const recordSequence = "records"

// sequence is a named counter kept in the sequences table. Next is a single
// UPSERT ... RETURNING statement, which SQLite executes atomically, so two
// processes sharing the database file never draw the same value.
type sequence struct {
	drv  dialect.Driver
	name string
}

func createSequenceTable(ctx context.Context, drv dialect.Driver) error {
	const ddl = `CREATE TABLE IF NOT EXISTS sequences (
		name  TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`
	if err := drv.Exec(ctx, ddl, []any{}, nil); err != nil {
		return fmt.Errorf("create sequences table: %w", err)
	}
	return nil
}

// Next returns the next value, starting at 1.
func (s *sequence) Next(ctx context.Context) (int64, error) {
	const upsert = `INSERT INTO sequences (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = value + 1
		RETURNING value`

	var rows entsql.Rows
	if err := s.drv.Query(ctx, upsert, []any{s.name}, &rows); err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", s.name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("advance sequence %s: %w", s.name, err)
		}
		return 0, fmt.Errorf("advance sequence %s: no row returned", s.name)
	}
	var v int64
	if err := rows.Scan(&v); err != nil {
		return 0, fmt.Errorf("scan sequence %s: %w", s.name, err)
	}
	return v, nil
}
