package repository

import (
	"context"
	"fmt"
)

// schema is applied at startup. Statements are idempotent so repeated
// boots against the same database are safe.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	full_name     TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS summaries (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	source_type      TEXT NOT NULL,
	source           TEXT NOT NULL,
	title            TEXT NOT NULL DEFAULT '',
	original_excerpt TEXT NOT NULL DEFAULT '',
	summary          TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summaries_user_created
	ON summaries (user_id, created_at DESC);
`

// Migrate applies the schema to the connected database.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
