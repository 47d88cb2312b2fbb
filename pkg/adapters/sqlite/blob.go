// Package sqlite persists the note store blob in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	_ "github.com/mattn/go-sqlite3"

	"github.com/aretw0/harumemo/pkg/core"
)

//go:embed schema.sql
var schemaSQL string

const (
	selectBlobSQL = `SELECT value FROM blobs WHERE key = ?`
	upsertBlobSQL = `INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
    ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// BlobStore implements core.BlobStore with a single key/value table.
type BlobStore struct {
	Path   string
	db     *sql.DB
	logger *slog.Logger

	mu     sync.RWMutex
	writes int
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*BlobStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// SQLite allows a single writer; one connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize %s: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		_ = tx.Rollback()
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema to %s: %w", path, err)
	}
	if err := tx.Commit(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema to %s: %w", path, err)
	}

	if logger != nil {
		logger.Debug("sqlite blob store opened", "path", path)
	}
	return &BlobStore{Path: path, db: db, logger: logger}, nil
}

func (s *BlobStore) ReadBlob(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, selectBlobSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return value, true, nil
}

// WriteBlob upserts the value. A single statement is atomic in SQLite.
func (s *BlobStore) WriteBlob(ctx context.Context, key, value string) error {
	now := time.Now().UTC().Format(core.TimestampLayout)
	if _, err := s.db.ExecContext(ctx, upsertBlobSQL, key, value, now); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return nil
}

// UpdatedAt returns when key was last written.
func (s *BlobStore) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM blobs WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	t, err := core.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("blob %s has a malformed updated_at: %w", key, err)
	}
	return t, true, nil
}

// Close closes the database.
func (s *BlobStore) Close() error {
	return s.db.Close()
}

// BlobStoreState exposes internal state for observability.
type BlobStoreState struct {
	Path       string `json:"path"`
	Writes     int    `json:"writes"`
	OpenConns  int    `json:"open_connections"`
	InUseConns int    `json:"in_use_connections"`
}

// State implements introspection.Introspectable.
func (s *BlobStore) State() any {
	stats := s.db.Stats()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BlobStoreState{
		Path:       s.Path,
		Writes:     s.writes,
		OpenConns:  stats.OpenConnections,
		InUseConns: stats.InUse,
	}
}

// ComponentType implements introspection.Component.
func (s *BlobStore) ComponentType() string {
	return "sqlite"
}

var _ core.BlobStore = (*BlobStore)(nil)
var _ introspection.Introspectable = (*BlobStore)(nil)
var _ introspection.Component = (*BlobStore)(nil)
