package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotInitialized is returned when the history database has no schema yet.
var ErrNotInitialized = errors.New("history database not initialized (run 'autotrans run' first)")

// Store provides SQLite database operations for the run history.
type Store struct {
	db *sql.DB
}

var pragmas = []struct{ stmt, what string }{
	{"PRAGMA foreign_keys = ON", "enable foreign keys"},
	{"PRAGMA journal_mode = WAL", "enable WAL mode"},
}

// New opens the history database at path. The file is created on first use;
// ":memory:" gives a throwaway database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite has a single writer and pragmas are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to %s: %w", p.what, err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateSchema creates the runs and proposals tables. It is safe to call on
// an existing database.
func (s *Store) CreateSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// wrapQueryErr maps a missing table to ErrNotInitialized.
func wrapQueryErr(op string, err error) error {
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%s: %w", op, ErrNotInitialized)
	}
	return fmt.Errorf("%s: %w", op, err)
}
