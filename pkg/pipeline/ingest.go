package pipeline

import (
	"context"
	"fmt"

	"github.com/jurisgraph/jurisgraph/pkg/common"
	"github.com/jurisgraph/jurisgraph/pkg/extract"
	"github.com/jurisgraph/jurisgraph/pkg/graph"
	"github.com/jurisgraph/jurisgraph/pkg/logger"
	"github.com/jurisgraph/jurisgraph/pkg/store"
)

// Ingest merges extractor records into the entity graph and the embedding
// store. Records without entities are run through the extractor first when
// one is configured. Returns the number of mention rows written.
func (p *Pipeline) Ingest(ctx context.Context, records []common.Record, cfg Config) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	cfg = cfg.withDefaults()

	if p.extractor != nil && !anyEntities(records) {
		enriched, err := p.extractor.Extract(ctx, records)
		if err != nil {
			return 0, fmt.Errorf("extract entities: %w", err)
		}
		records = enriched
	}

	processed := 0
	if p.graphStore != nil {
		rows, aliases := graph.BuildRows(records, cfg.Keywords)
		n, err := p.graphStore.UpsertMentions(ctx, rows, aliases)
		if err != nil {
			return n, fmt.Errorf("upsert graph: %w", err)
		}
		processed = n
		logger.Info("[Pipeline][Ingest] Graph updated", "mentions", n, "aliases", len(aliases))
	}

	if p.embed != nil && p.vector != nil {
		if err := p.embedRecords(ctx, records); err != nil {
			return processed, fmt.Errorf("upsert embeddings: %w", err)
		}
	}

	return processed, nil
}

// IngestFile reads an extractor JSONL artifact and ingests its records.
func (p *Pipeline) IngestFile(ctx context.Context, path string, cfg Config) (int, error) {
	records, err := extract.ReadRecordsFile(path)
	if err != nil {
		return 0, err
	}
	return p.Ingest(ctx, records, cfg)
}

func (p *Pipeline) embedRecords(ctx context.Context, records []common.Record) error {
	inputs := make([][]byte, len(records))
	for i, rec := range records {
		inputs[i] = []byte(rec.Text)
	}

	embeddings, err := store.GenerateEmbeddings(ctx, p.embed, inputs)
	if err != nil {
		return err
	}

	items := make([]store.VectorItem, len(records))
	for i, rec := range records {
		items[i] = store.VectorItem{
			ID:        rec.Metadata.ChunkUID(),
			DocID:     rec.Metadata.DocID,
			Text:      rec.Text,
			Embedding: embeddings[i],
		}
	}
	return p.vector.Upsert(ctx, items)
}

func anyEntities(records []common.Record) bool {
	for _, rec := range records {
		if len(rec.Entities) > 0 {
			return true
		}
	}
	return false
}
