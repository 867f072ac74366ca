package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store implements store.GraphStore and store.VectorStore on PostgreSQL,
// using pgvector for the similarity search side.
type Store struct {
	conn     pgxIConn
	embedDim int
}

// NewStoreWithConnection creates a Store over an existing connection or
// pool. embedDim fixes the dimension of the chunk embedding column.
func NewStoreWithConnection(conn pgxIConn, embedDim int) *Store {
	if embedDim <= 0 {
		embedDim = 4096
	}
	return &Store{
		conn:     conn,
		embedDim: embedDim,
	}
}

// EnsureSchema creates the graph and vector tables if they do not exist.
// Safe to run on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			source_path TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			doc_id TEXT NOT NULL REFERENCES documents(id),
			chunk_id TEXT NOT NULL,
			chunk_index INT,
			total_chunks INT
		)`,
		`CREATE TABLE IF NOT EXISTS entities (
			key TEXT PRIMARY KEY,
			label TEXT,
			display_text TEXT,
			norm_text TEXT,
			norm_key TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS entities_norm_key_idx ON entities (norm_key)`,
		`CREATE TABLE IF NOT EXISTS mentions (
			chunk_id TEXT NOT NULL REFERENCES chunks(id),
			entity_key TEXT NOT NULL REFERENCES entities(key),
			start_pos INT NOT NULL,
			end_pos INT NOT NULL,
			score DOUBLE PRECISION,
			source TEXT,
			PRIMARY KEY (chunk_id, entity_key, start_pos, end_pos)
		)`,
		`CREATE INDEX IF NOT EXISTS mentions_entity_key_idx ON mentions (entity_key)`,
		`CREATE TABLE IF NOT EXISTS aliases (
			name TEXT NOT NULL,
			entity_key TEXT NOT NULL REFERENCES entities(key),
			PRIMARY KEY (name, entity_key)
		)`,
		`CREATE TABLE IF NOT EXISTS phonetic_codes (
			code TEXT NOT NULL,
			entity_key TEXT NOT NULL REFERENCES entities(key),
			PRIMARY KEY (code, entity_key)
		)`,
		`CREATE TABLE IF NOT EXISTS app_locks (
			lock_key TEXT PRIMARY KEY,
			locked_by TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunk_embeddings (
			id TEXT PRIMARY KEY,
			doc_id TEXT,
			content TEXT NOT NULL,
			embedding vector(%d)
		)`, s.embedDim),
	}

	for _, stmt := range stmts {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema setup failed: %w", err)
		}
	}
	return nil
}
