// Package storage provides SQLite-based persistence for controller sessions
// and the events and responses exchanged during them.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Direction tells which way a journal entry travelled.
type Direction string

const (
	DirEvent    Direction = "event"    // controller -> host
	DirResponse Direction = "response" // host -> controller
)

// Store manages the SQLite database connection for the journal.
type Store struct {
	db *sql.DB
}

// SessionEntry is one controller session.
type SessionEntry struct {
	ID         string
	Controller string
	Remote     string
	Events     int
	StartedAt  time.Time
	EndedAt    time.Time // zero while the session is open
}

// JournalEntry is one event or response.
type JournalEntry struct {
	ID        int64
	SessionID string
	Direction Direction
	Text      string
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			controller TEXT NOT NULL,
			remote TEXT NOT NULL DEFAULT '',
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);

		CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id),
			direction TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_entries_session ON entries(session_id, id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginSession records a new controller session and returns its ID.
func (s *Store) BeginSession(controller, remote string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO sessions (id, controller, remote) VALUES (?, ?, ?)",
		id, controller, remote,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin session: %w", err)
	}
	return id, nil
}

// EndSession marks a session as finished.
func (s *Store) EndSession(id string) error {
	_, err := s.db.Exec(
		"UPDATE sessions SET ended_at = CURRENT_TIMESTAMP WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot end session: %w", err)
	}
	return nil
}

// Record appends an entry to a session.
func (s *Store) Record(sessionID string, dir Direction, text string) error {
	_, err := s.db.Exec(
		"INSERT INTO entries (session_id, direction, text) VALUES (?, ?, ?)",
		sessionID, string(dir), text,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record entry: %w", err)
	}
	return nil
}

// RecentSessions retrieves the most recent sessions with their entry counts.
func (s *Store) RecentSessions(limit int) ([]SessionEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.querySessions(`ORDER BY s.started_at DESC, s.rowid DESC LIMIT ?`, limit)
}

// FindSessions retrieves the sessions whose id starts with prefix.
func (s *Store) FindSessions(prefix string) ([]SessionEntry, error) {
	if prefix == "" {
		return nil, fmt.Errorf("storage: empty session prefix")
	}
	return s.querySessions(`WHERE substr(s.id, 1, ?) = ? ORDER BY s.started_at DESC`, len(prefix), prefix)
}

func (s *Store) querySessions(tail string, args ...any) ([]SessionEntry, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.controller, s.remote, s.started_at, s.ended_at,
		        (SELECT COUNT(*) FROM entries e WHERE e.session_id = s.id)
		 FROM sessions s `+tail,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionEntry
	for rows.Next() {
		var e SessionEntry
		var startedAt, endedAt any
		if err := rows.Scan(&e.ID, &e.Controller, &e.Remote, &startedAt, &endedAt, &e.Events); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.StartedAt = parseTime(startedAt)
		e.EndedAt = parseTime(endedAt)
		sessions = append(sessions, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// Entries retrieves a session's entries in the order they were recorded.
func (s *Store) Entries(sessionID string, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, direction, text, created_at
		 FROM entries
		 WHERE session_id = ?
		 ORDER BY id ASC
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query entries: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var dir string
		var createdAt any
		if err := rows.Scan(&e.ID, &e.SessionID, &dir, &e.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Direction = Direction(dir)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
