package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/gateway-presence/internal/config"
	"github.com/rickgao/gateway-presence/internal/session"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS session_events (
    id              BIGSERIAL PRIMARY KEY,
    session_id      UUID        NOT NULL,
    credential_hint TEXT        NOT NULL,
    kind            TEXT        NOT NULL,
    detail          TEXT        NOT NULL DEFAULT '',
    occurred_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS session_events_session_id_idx ON session_events (session_id);
`

const insertSQL = `
INSERT INTO session_events (session_id, credential_hint, kind, detail, occurred_at)
VALUES ($1, $2, $3, $4, $5)`

// execer is the subset of pgxpool.Pool the store writes through.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store writes session events. It implements session.Recorder.
type Store struct {
	db   execer
	pool *pgxpool.Pool
}

// Connect creates a connection pool and returns a Store over it.
func Connect(ctx context.Context, cfg config.DBConfig) (*Store, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: pool, pool: pool}, nil
}

// EnsureSchema creates the events table if needed.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create session_events: %w", err)
	}
	return nil
}

// Record inserts one event.
func (s *Store) Record(ctx context.Context, ev session.Event) error {
	_, err := s.db.Exec(ctx, insertSQL,
		ev.SessionID,
		ev.CredentialHint,
		string(ev.Kind),
		ev.Detail,
		ev.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert session event: %w", err)
	}
	return nil
}

// Ping verifies the connection is healthy.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var _ session.Recorder = (*Store)(nil)

var _ execer = (*pgxpool.Pool)(nil)
