package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// expectedSchemaVersion is the latest schema version the application
// expects.
const expectedSchemaVersion = 1

type migration struct {
	up          func(*sql.Tx) error
	description string
	version     int
}

var migrations = []migration{
	{
		version:     1,
		description: "Initial snapshot schema",
		up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY,
					name TEXT NOT NULL,
					allocated_budget REAL NOT NULL,
					remaining_budget REAL NOT NULL,
					created_at DATETIME
				)`,
				`CREATE TABLE IF NOT EXISTS proposals (
					id INTEGER PRIMARY KEY,
					ministry TEXT NOT NULL,
					category_id INTEGER NOT NULL,
					title TEXT NOT NULL,
					description TEXT,
					requested_amount REAL NOT NULL,
					status TEXT NOT NULL,
					approved_amount REAL,
					decision_notes TEXT,
					decided_at DATETIME,
					created_at DATETIME
				)`,
				`CREATE INDEX idx_proposals_ministry ON proposals(ministry)`,
				`CREATE INDEX idx_proposals_status ON proposals(status)`,
				`CREATE INDEX idx_proposals_category ON proposals(category_id)`,
				`CREATE TABLE IF NOT EXISTS sync_meta (
					key TEXT PRIMARY KEY,
					value TEXT
				)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the cache schema up to the expected version.
func (s *SnapshotStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if current.Valid && int64(m.version) <= current.Int64 {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.version, err)
		}
		if err := m.up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}

		slog.Debug("applied migration", "version", m.version, "description", m.description)
	}

	if len(migrations) > 0 && migrations[len(migrations)-1].version != expectedSchemaVersion {
		return fmt.Errorf("schema version mismatch: expected %d", expectedSchemaVersion)
	}
	return nil
}
