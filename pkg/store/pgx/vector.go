package pgx

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/jurisgraph/jurisgraph/pkg/store"
)

// Query returns the ids of the topK chunks closest to the query embedding
// by cosine distance.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int) ([]string, error) {
	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id FROM chunk_embeddings
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("vector scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector rows: %w", err)
	}
	return ids, nil
}

// Get fetches the stored text for each id. Ids without a stored chunk are
// simply absent from the result map.
func (s *Store) Get(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, content FROM chunk_embeddings
		WHERE id = ANY($1::text[])`,
		ids)
	if err != nil {
		return nil, fmt.Errorf("vector get: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, content string
		if err := rows.Scan(&id, &content); err != nil {
			return nil, fmt.Errorf("vector get scan: %w", err)
		}
		out[id] = content
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector get rows: %w", err)
	}
	return out, nil
}

// Upsert stores embedded chunks, replacing content and embedding for ids
// that already exist.
func (s *Store) Upsert(ctx context.Context, items []store.VectorItem) error {
	return store.ChunkRange(len(items), mentionChunk, func(start, end int) error {
		batch := items[start:end]

		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		for _, item := range batch {
			_, err := tx.Exec(ctx, `
				INSERT INTO chunk_embeddings (id, doc_id, content, embedding)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET
					doc_id = EXCLUDED.doc_id,
					content = EXCLUDED.content,
					embedding = EXCLUDED.embedding`,
				item.ID, item.DocID, item.Text, pgvector.NewVector(item.Embedding))
			if err != nil {
				return fmt.Errorf("vector upsert: %w", err)
			}
		}

		return tx.Commit(ctx)
	})
}
