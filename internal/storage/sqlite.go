// Package storage keeps a local SQLite snapshot of the categories and
// proposals last fetched from the API, so history and dashboard views
// can render offline and show when they last synced.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SnapshotStore is the SQLite-backed local cache.
type SnapshotStore struct {
	db     *sql.DB
	dbPath string
}

// NewSnapshotStore opens (and creates if needed) the cache database at
// dbPath.
func NewSnapshotStore(dbPath string) (*SnapshotStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SnapshotStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// SyncedAt reports when the snapshot was last refreshed, or the zero
// time when it never was.
func (s *SnapshotStore) SyncedAt(ctx context.Context) (time.Time, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM sync_meta WHERE key = 'synced_at'`).Scan(&raw)
	if err == sql.ErrNoRows || !raw.Valid {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read sync time: %w", err)
	}
	t, err := time.Parse(time.RFC3339, raw.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt sync time %q: %w", raw.String, err)
	}
	return t, nil
}

func (s *SnapshotStore) setSyncedAt(ctx context.Context, tx *sql.Tx, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO sync_meta (key, value) VALUES ('synced_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		at.UTC().Format(time.RFC3339))
	return err
}
