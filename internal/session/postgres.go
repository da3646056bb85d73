package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps sessions in a shared database, one row per session
// owner, so several machines can pick up the same interview.
type PostgresStore struct {
	pool  *pgxpool.Pool
	owner string
}

// OpenPostgresStore connects to the database, verifies the connection,
// and ensures the schema exists. The owner key separates concurrent
// interviews sharing one database.
func OpenPostgresStore(ctx context.Context, dsn, owner string) (*PostgresStore, error) {
	if owner == "" {
		return nil, fmt.Errorf("postgres store: owner is required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS interview_sessions (
		owner TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &PostgresStore{pool: pool, owner: owner}, nil
}

// Load reads the owner's persisted session if present.
func (s *PostgresStore) Load(ctx context.Context) (Session, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM interview_sessions WHERE owner = $1`, s.owner).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	return Decode(payload)
}

// Save upserts the owner's session row.
func (s *PostgresStore) Save(ctx context.Context, sess Session) error {
	encoded, err := Encode(sess)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO interview_sessions (owner, payload, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (owner) DO UPDATE SET payload = excluded.payload, updated_at = now()`,
		s.owner, encoded)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear deletes the owner's session row. Clearing an absent session is
// not an error.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM interview_sessions WHERE owner = $1`, s.owner); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
