// Package store provides the SQLite persistence layer for users, notes, and
// sessions.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/Amadeea/book-notes/internal/store/migrations"
)

// Store wraps a pooled sql.DB. Each operation borrows a connection from the
// pool and releases it when its rows are closed, so no connection leaks
// across requests.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database and applies pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database pool.
func (s *Store) Close() error {
	return s.db.Close()
}
