// Package store persists documents, segments, cards, scheduler weights,
// practice sessions and LLM events in a single SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store wraps the database handle.
type Store struct {
	db *sql.DB
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps in-memory databases coherent and serializes
	// writers, which SQLite requires anyway.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			source_path TEXT NOT NULL,
			page_count INTEGER NOT NULL,
			headings TEXT NOT NULL,
			sections TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS segments (
			id TEXT PRIMARY KEY,
			doc_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			section_path TEXT NOT NULL,
			page INTEGER,
			text TEXT NOT NULL,
			evidence TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			doc_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			card_type TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			options TEXT NOT NULL,
			source_id TEXT NOT NULL,
			source_page INTEGER,
			source_snippet TEXT NOT NULL,
			metadata TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS weights (
			card_id TEXT PRIMARY KEY,
			weight REAL NOT NULL,
			position INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			model_name TEXT NOT NULL,
			temperature REAL NOT NULL,
			seed INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			sequence INTEGER NOT NULL,
			session_id TEXT NOT NULL,
			card_id TEXT NOT NULL,
			card_type TEXT NOT NULL,
			user_answer TEXT NOT NULL,
			is_correct INTEGER NOT NULL,
			score REAL NOT NULL,
			method TEXT NOT NULL,
			feedback TEXT NOT NULL,
			evidence_used TEXT NOT NULL,
			weight_after REAL NOT NULL,
			answered_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS llm_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sequence INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			purpose TEXT NOT NULL,
			input_tokens INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			latency_ms INTEGER NOT NULL,
			success INTEGER NOT NULL,
			error_message TEXT NOT NULL,
			request_body TEXT NOT NULL,
			response_body TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);`,
		`INSERT OR IGNORE INTO counters (name, value) VALUES ('events', 0);`,
		`CREATE INDEX IF NOT EXISTS idx_segments_doc ON segments(doc_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_cards_doc ON cards(doc_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_session ON attempts(session_id, sequence);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Reset deletes every row of every table. The schema is kept.
func (s *Store) Reset(ctx context.Context) error {
	tables := []string{"attempts", "sessions", "weights", "cards", "segments", "documents", "llm_events"}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("clear %s: %w", t, err)
			}
		}
		_, err := tx.ExecContext(ctx, `UPDATE counters SET value = 0`)
		return err
	})
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// DefaultDBPath resolves the database file path in priority order:
// 1. RLPRO_DB environment variable
// 2. $XDG_DATA_HOME/rlpro/rlpro.db
// 3. ~/.local/share/rlpro/rlpro.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("RLPRO_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "rlpro", "rlpro.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
