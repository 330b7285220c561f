// Package storage persists the user whitelist, the interception history, and
// the PIN limiter state in a local SQLite database. Every write runs in its
// own transaction so each logical key updates atomically.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/pinlock"
)

// ErrEmptyDomain is returned when an empty whitelist domain is stored.
var ErrEmptyDomain = errors.New("whitelist domain cannot be empty")

const schema = `
CREATE TABLE IF NOT EXISTS whitelist (
	domain   TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	added_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	record     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_created ON history (created_at DESC);
CREATE TABLE IF NOT EXISTS pin_state (
	id    INTEGER PRIMARY KEY CHECK (id = 1),
	state TEXT NOT NULL
);
`

// Store is the SQLite-backed persistence layer.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open creates or opens the database at path and applies the schema.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{
		db:     db,
		logger: zerolog.New(io.Discard),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Whitelist returns the user whitelist in insertion order.
func (s *Store) Whitelist() ([]string, error) {
	rows, err := s.db.Query("SELECT domain FROM whitelist ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("query whitelist: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}

	return domains, rows.Err()
}

// AddWhitelistDomain appends a domain to the user whitelist. Adding an already
// present domain is a no-op.
func (s *Store) AddWhitelistDomain(domain string) error {
	if domain == "" {
		return ErrEmptyDomain
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRow("SELECT COALESCE(MAX(position), 0) + 1 FROM whitelist").Scan(&next); err != nil {
		return err
	}

	_, err = tx.Exec(
		"INSERT OR IGNORE INTO whitelist (domain, position, added_at) VALUES (?, ?, ?)",
		domain, next, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveWhitelistDomain deletes a domain from the user whitelist.
func (s *Store) RemoveWhitelistDomain(domain string) error {
	_, err := s.db.Exec("DELETE FROM whitelist WHERE domain = ?", domain)
	return err
}

// AppendHistory stores one serialized interception record and prunes entries
// beyond the cap, oldest first, in the same transaction.
func (s *Store) AppendHistory(id string, createdAt time.Time, record []byte, cap int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		"INSERT OR REPLACE INTO history (id, created_at, record) VALUES (?, ?, ?)",
		id, createdAt.UTC().Format(time.RFC3339Nano), string(record),
	)
	if err != nil {
		return err
	}

	if cap > 0 {
		_, err = tx.Exec(`
			DELETE FROM history WHERE id NOT IN (
				SELECT id FROM history ORDER BY created_at DESC LIMIT ?
			)`, cap)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// History returns up to limit serialized records, most recent first.
func (s *Store) History(limit int) ([][]byte, error) {
	rows, err := s.db.Query("SELECT record FROM history ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records [][]byte
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		records = append(records, []byte(r))
	}

	return records, rows.Err()
}

// LoadPinState implements pinlock.Store. A missing row is the zero state.
func (s *Store) LoadPinState() (pinlock.State, error) {
	var raw string
	err := s.db.QueryRow("SELECT state FROM pin_state WHERE id = 1").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return pinlock.State{}, nil
	}
	if err != nil {
		return pinlock.State{}, fmt.Errorf("load pin state: %w", err)
	}

	var state pinlock.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return pinlock.State{}, fmt.Errorf("decode pin state: %w", err)
	}

	return state, nil
}

// SavePinState implements pinlock.Store with a single-row upsert.
func (s *Store) SavePinState(state pinlock.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode pin state: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO pin_state (id, state) VALUES (1, ?) ON CONFLICT (id) DO UPDATE SET state = excluded.state",
		string(raw),
	)
	if err != nil {
		return fmt.Errorf("save pin state: %w", err)
	}

	return nil
}
