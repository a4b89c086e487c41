package postgres

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS punishment_policies (
		id               UUID PRIMARY KEY,
		diamond_factor   NUMERIC NOT NULL,
		jewelry_factor   NUMERIC NOT NULL,
		ancillary_factor NUMERIC NOT NULL,
		valid_from       TIMESTAMPTZ NOT NULL,
		valid_to         TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS punishment_policies_validity_idx
		ON punishment_policies (valid_from, valid_to)`,
	`CREATE TABLE IF NOT EXISTS condition_catalogs (
		id           UUID PRIMARY KEY,
		name         TEXT NOT NULL,
		last_updated TIMESTAMPTZ NOT NULL,
		is_current   BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS condition_catalogs_single_current_idx
		ON condition_catalogs (is_current) WHERE is_current`,
	`CREATE TABLE IF NOT EXISTS condition_modifiers (
		id         BIGSERIAL PRIMARY KEY,
		catalog_id UUID NOT NULL REFERENCES condition_catalogs (id),
		condition  TEXT,
		factor     NUMERIC
	)`,
	// Factors are stored at full precision; widen columns created by older versions
	`ALTER TABLE punishment_policies
		ALTER COLUMN diamond_factor TYPE NUMERIC,
		ALTER COLUMN jewelry_factor TYPE NUMERIC,
		ALTER COLUMN ancillary_factor TYPE NUMERIC`,
	`ALTER TABLE condition_modifiers ALTER COLUMN factor TYPE NUMERIC`,
}

// EnsureSchema creates the policy tables if they do not exist
func EnsureSchema(ctx context.Context, db *DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
