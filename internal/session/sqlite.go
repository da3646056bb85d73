package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the session in a single-row sqlite database. Useful
// when other tooling needs to read interview state without racing the
// interview process on a JSON file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore creates or opens the database at the given path, runs
// schema initialization, and configures WAL mode for concurrent reads.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	schema := `CREATE TABLE IF NOT EXISTS interview_session (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		payload TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads the persisted session if present.
func (s *SQLiteStore) Load(ctx context.Context) (Session, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM interview_session WHERE slot = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	return Decode([]byte(payload))
}

// Save upserts the session row.
func (s *SQLiteStore) Save(ctx context.Context, sess Session) error {
	encoded, err := Encode(sess)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO interview_session (slot, payload, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(encoded), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear deletes the session row. Clearing an absent session is not an
// error.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM interview_session WHERE slot = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
