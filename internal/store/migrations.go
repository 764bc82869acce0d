package store

import (
	"context"
	"database/sql"
	"strings"
)

// schema contains the DDL for the pass tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS passes (
		id          TEXT PRIMARY KEY,
		job_id      TEXT NOT NULL,
		workdir     TEXT NOT NULL DEFAULT '',
		argv        TEXT NOT NULL DEFAULT '[]',
		digest      TEXT NOT NULL,
		input_types TEXT NOT NULL DEFAULT '{}',
		files       TEXT NOT NULL DEFAULT '[]',
		staged      TEXT NOT NULL DEFAULT '{}',
		inputs      TEXT NOT NULL DEFAULT '{}',
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_passes_job_id ON passes(job_id)`,
	`CREATE INDEX IF NOT EXISTS idx_passes_digest ON passes(digest)`,
}

// alterStatements are column additions that need special handling since
// SQLite doesn't support IF NOT EXISTS for ALTER TABLE ADD COLUMN.
var alterStatements = []struct {
	table    string
	column   string
	alterSQL string
	indexSQL string // Optional index to create after column is added
}{
	{
		table:    "passes",
		column:   "skipped",
		alterSQL: "ALTER TABLE passes ADD COLUMN skipped TEXT NOT NULL DEFAULT '[]'",
	},
	{
		table:    "passes",
		column:   "short_circuit",
		alterSQL: "ALTER TABLE passes ADD COLUMN short_circuit TEXT NOT NULL DEFAULT ''",
		indexSQL: "CREATE INDEX IF NOT EXISTS idx_passes_short_circuit ON passes(short_circuit) WHERE short_circuit != ''",
	},
}

// migrate executes all schema DDL statements and alter migrations.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for _, alter := range alterStatements {
		if err := addColumnIfNotExists(ctx, db, alter.table, alter.column, alter.alterSQL); err != nil {
			return err
		}
		if alter.indexSQL != "" {
			if _, err := db.ExecContext(ctx, alter.indexSQL); err != nil {
				return err
			}
		}
	}
	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(ctx context.Context, db *sql.DB, table, column, alterSQL string) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return err
	}

	exists := false
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue *string
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			rows.Close()
			return err
		}
		if strings.EqualFold(name, column) {
			exists = true
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()
	if exists {
		return nil
	}

	_, err = db.ExecContext(ctx, alterSQL)
	return err
}
