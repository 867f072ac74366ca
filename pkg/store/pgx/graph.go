package pgx

import (
	"context"
	"fmt"

	"github.com/jurisgraph/jurisgraph/pkg/common"
	"github.com/jurisgraph/jurisgraph/pkg/logger"
	"github.com/jurisgraph/jurisgraph/pkg/store"
)

const mentionChunk = 500

// UpsertMentions merges documents, chunks, entities, mention edges and the
// alias/phonetic index rows in batched transactions. All statements are
// idempotent: repeated ingestion of the same rows converges.
func (s *Store) UpsertMentions(
	ctx context.Context,
	rows []common.MentionRow,
	aliases []common.AliasRow,
) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	processed := 0
	err := store.ChunkRange(len(rows), mentionChunk, func(start, end int) error {
		batch := rows[start:end]
		logger.Debug("[Graph][UpsertMentions] Saving batch", "mentions", len(batch))

		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		docIDs := make([]string, len(batch))
		sourcePaths := make([]string, len(batch))
		chunkUIDs := make([]string, len(batch))
		chunkIDs := make([]string, len(batch))
		chunkIndexes := make([]int32, len(batch))
		totalChunks := make([]int32, len(batch))
		keys := make([]string, len(batch))
		labels := make([]string, len(batch))
		texts := make([]string, len(batch))
		normTexts := make([]string, len(batch))
		normKeys := make([]string, len(batch))
		startPositions := make([]int32, len(batch))
		endPositions := make([]int32, len(batch))
		scores := make([]float64, len(batch))
		sources := make([]string, len(batch))
		for i, r := range batch {
			docIDs[i] = r.DocID
			sourcePaths[i] = r.SourcePath
			chunkUIDs[i] = r.ChunkUID
			chunkIDs[i] = r.ChunkID
			chunkIndexes[i] = int32(r.ChunkIndex)
			totalChunks[i] = int32(r.TotalChunks)
			keys[i] = r.Key
			labels[i] = r.Label
			texts[i] = r.Text
			normTexts[i] = r.NormText
			normKeys[i] = r.NormKey
			startPositions[i] = int32(r.Start)
			endPositions[i] = int32(r.End)
			scores[i] = r.Score
			sources[i] = r.Source
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO documents (id, source_path)
			SELECT DISTINCT ON (d.id) d.id, d.source_path
			FROM unnest($1::text[], $2::text[]) AS d(id, source_path)
			ON CONFLICT (id) DO NOTHING`,
			docIDs, sourcePaths)
		if err != nil {
			return fmt.Errorf("upsert documents: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO chunks (id, doc_id, chunk_id, chunk_index, total_chunks)
			SELECT DISTINCT ON (c.id) c.id, c.doc_id, c.chunk_id, c.chunk_index, c.total_chunks
			FROM unnest($1::text[], $2::text[], $3::text[], $4::int[], $5::int[])
				AS c(id, doc_id, chunk_id, chunk_index, total_chunks)
			ON CONFLICT (id) DO NOTHING`,
			chunkUIDs, docIDs, chunkIDs, chunkIndexes, totalChunks)
		if err != nil {
			return fmt.Errorf("upsert chunks: %w", err)
		}

		// Label and display text are first-writer-wins; norm fields fill
		// previously-null slots only.
		_, err = tx.Exec(ctx, `
			INSERT INTO entities (key, label, display_text, norm_text, norm_key)
			SELECT DISTINCT ON (e.key) e.key, e.label, e.display_text, e.norm_text, e.norm_key
			FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[])
				AS e(key, label, display_text, norm_text, norm_key)
			ON CONFLICT (key) DO UPDATE SET
				label = COALESCE(NULLIF(entities.label, ''), EXCLUDED.label),
				display_text = COALESCE(NULLIF(entities.display_text, ''), EXCLUDED.display_text),
				norm_text = COALESCE(entities.norm_text, EXCLUDED.norm_text),
				norm_key = COALESCE(entities.norm_key, EXCLUDED.norm_key)`,
			keys, labels, texts, normTexts, normKeys)
		if err != nil {
			return fmt.Errorf("upsert entities: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO mentions (chunk_id, entity_key, start_pos, end_pos, score, source)
			SELECT DISTINCT ON (m.chunk_id, m.entity_key, m.start_pos, m.end_pos)
				m.chunk_id, m.entity_key, m.start_pos, m.end_pos, m.score, m.source
			FROM unnest($1::text[], $2::text[], $3::int[], $4::int[], $5::float8[], $6::text[])
				AS m(chunk_id, entity_key, start_pos, end_pos, score, source)
			ON CONFLICT (chunk_id, entity_key, start_pos, end_pos) DO UPDATE SET
				score = EXCLUDED.score,
				source = EXCLUDED.source`,
			chunkUIDs, keys, startPositions, endPositions, scores, sources)
		if err != nil {
			return fmt.Errorf("upsert mentions: %w", err)
		}

		processed += len(batch)
		return tx.Commit(ctx)
	})
	if err != nil {
		return processed, err
	}

	if len(aliases) > 0 {
		if err := s.upsertAliases(ctx, aliases); err != nil {
			return processed, err
		}
	}

	return processed, nil
}

func (s *Store) upsertAliases(ctx context.Context, aliases []common.AliasRow) error {
	return store.ChunkRange(len(aliases), mentionChunk, func(start, end int) error {
		batch := aliases[start:end]

		aliasKeys := make([]string, 0, len(batch))
		aliasNames := make([]string, 0, len(batch))
		phoneticKeys := make([]string, 0, len(batch))
		phoneticCodes := make([]string, 0, len(batch))
		for _, a := range batch {
			if a.Alias != "" {
				aliasKeys = append(aliasKeys, a.EntityKey)
				aliasNames = append(aliasNames, a.Alias)
			}
			if a.Phonetic != "" {
				phoneticKeys = append(phoneticKeys, a.EntityKey)
				phoneticCodes = append(phoneticCodes, a.Phonetic)
			}
		}

		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if len(aliasNames) > 0 {
			_, err = tx.Exec(ctx, `
				INSERT INTO aliases (name, entity_key)
				SELECT DISTINCT a.name, a.entity_key
				FROM unnest($1::text[], $2::text[]) AS a(name, entity_key)
				WHERE EXISTS (SELECT 1 FROM entities e WHERE e.key = a.entity_key)
				ON CONFLICT (name, entity_key) DO NOTHING`,
				aliasNames, aliasKeys)
			if err != nil {
				return fmt.Errorf("upsert aliases: %w", err)
			}
		}

		if len(phoneticCodes) > 0 {
			_, err = tx.Exec(ctx, `
				INSERT INTO phonetic_codes (code, entity_key)
				SELECT DISTINCT p.code, p.entity_key
				FROM unnest($1::text[], $2::text[]) AS p(code, entity_key)
				WHERE EXISTS (SELECT 1 FROM entities e WHERE e.key = p.entity_key)
				ON CONFLICT (code, entity_key) DO NOTHING`,
				phoneticCodes, phoneticKeys)
			if err != nil {
				return fmt.Errorf("upsert phonetic codes: %w", err)
			}
		}

		return tx.Commit(ctx)
	})
}

// MatchStrict executes the label-aware cascade as a single unioned query.
// The explicit ORDER BY (strategy rank, input position, chunk id) keeps row
// order deterministic instead of leaning on backend iteration order.
func (s *Store) MatchStrict(ctx context.Context, q store.MatchQuery) ([]common.MatchRow, error) {
	const query = `
		SELECT s.strat, s.entity_key, s.chunk_id FROM (
			SELECT 1 AS strat, k.ord, e.key AS entity_key, m.chunk_id
			FROM unnest($1::text[]) WITH ORDINALITY AS k(key, ord)
			JOIN entities e ON e.key = k.key
			JOIN mentions m ON m.entity_key = e.key
			UNION ALL
			SELECT 2, k.ord, e.key, m.chunk_id
			FROM unnest($2::text[]) WITH ORDINALITY AS k(norm_key, ord)
			JOIN entities e ON e.norm_key = k.norm_key
			JOIN mentions m ON m.entity_key = e.key
			UNION ALL
			SELECT 3, k.ord, e.key, m.chunk_id
			FROM unnest($3::text[]) WITH ORDINALITY AS k(name, ord)
			JOIN aliases a ON a.name = k.name
			JOIN entities e ON e.key = a.entity_key
			JOIN mentions m ON m.entity_key = e.key
			UNION ALL
			SELECT 4, k.ord, e.key, m.chunk_id
			FROM unnest($4::text[]) WITH ORDINALITY AS k(code, ord)
			JOIN phonetic_codes p ON p.code = k.code
			JOIN entities e ON e.key = p.entity_key
			JOIN mentions m ON m.entity_key = e.key
		) s
		ORDER BY s.strat, s.ord, s.chunk_id`

	return s.matchRows(ctx, query, strictReasons,
		q.Keys, q.NormKeys, q.AliasTexts, q.Phonetics)
}

// MatchRelaxed drops the label component and matches on normalized text,
// alias or phonetic equality only.
func (s *Store) MatchRelaxed(ctx context.Context, q store.MatchQuery) ([]common.MatchRow, error) {
	const query = `
		SELECT s.strat, s.entity_key, s.chunk_id FROM (
			SELECT 1 AS strat, k.ord, e.key AS entity_key, m.chunk_id
			FROM unnest($1::text[]) WITH ORDINALITY AS k(norm, ord)
			JOIN entities e ON split_part(e.key, '|', 2) = k.norm
				OR split_part(e.norm_key, '|', 2) = k.norm
			JOIN mentions m ON m.entity_key = e.key
			UNION ALL
			SELECT 2, k.ord, e.key, m.chunk_id
			FROM unnest($1::text[]) WITH ORDINALITY AS k(norm, ord)
			JOIN aliases a ON a.name = k.norm
			JOIN entities e ON e.key = a.entity_key
			JOIN mentions m ON m.entity_key = e.key
			UNION ALL
			SELECT 3, k.ord, e.key, m.chunk_id
			FROM unnest($2::text[]) WITH ORDINALITY AS k(code, ord)
			JOIN phonetic_codes p ON p.code = k.code
			JOIN entities e ON e.key = p.entity_key
			JOIN mentions m ON m.entity_key = e.key
		) s
		ORDER BY s.strat, s.ord, s.chunk_id`

	return s.matchRows(ctx, query, relaxedReasons, q.Norms, q.Phonetics)
}

var strictReasons = map[int32]common.MatchReason{
	1: common.ReasonExactKey,
	2: common.ReasonNormKey,
	3: common.ReasonAlias,
	4: common.ReasonPhonetic,
}

var relaxedReasons = map[int32]common.MatchReason{
	1: common.ReasonTextNorm,
	2: common.ReasonAlias,
	3: common.ReasonPhonetic,
}

func (s *Store) matchRows(
	ctx context.Context,
	query string,
	reasons map[int32]common.MatchReason,
	args ...any,
) ([]common.MatchRow, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("match query: %w", err)
	}
	defer rows.Close()

	var out []common.MatchRow
	for rows.Next() {
		var strat int32
		var row common.MatchRow
		if err := rows.Scan(&strat, &row.EntityKey, &row.ChunkID); err != nil {
			return nil, fmt.Errorf("match scan: %w", err)
		}
		row.Reason = reasons[strat]
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match rows: %w", err)
	}
	return out, nil
}
