package store

import (
	"context"

	"github.com/jurisgraph/jurisgraph/pkg/common"
)

// GraphStore defines the persistence contract for the entity graph. Writes
// are idempotent upserts keyed by stable identity fields so retried or
// concurrent ingestion of the same mention converges instead of
// duplicating. Reads serve the matcher's unioned multi-strategy lookup.
type GraphStore interface {
	EnsureSchema(ctx context.Context) error

	// UpsertMentions merges Document, Chunk and Entity nodes, the mention
	// edges between chunks and entities, and the alias/phonetic index rows.
	// Entity label and display text are first-writer-wins; norm_key and
	// norm_text are only filled when previously null.
	UpsertMentions(ctx context.Context, rows []common.MentionRow, aliases []common.AliasRow) (int, error)

	// MatchStrict runs the label-aware cascade (exact key, normalized key,
	// alias, phonetic) as one unioned read. Rows come back ordered by
	// strategy precision, then input position, then chunk id.
	MatchStrict(ctx context.Context, q MatchQuery) ([]common.MatchRow, error)

	// MatchRelaxed runs the label-agnostic fallback over normalized text,
	// alias and phonetic equality only.
	MatchRelaxed(ctx context.Context, q MatchQuery) ([]common.MatchRow, error)
}

// MatchQuery carries the per-strategy lookup values derived from the query
// entities. Slices that a strategy does not use may be empty.
type MatchQuery struct {
	Keys       []string // exact entity keys (LABEL|keyText)
	NormKeys   []string // label-aware keys over the canonical normalized text
	AliasTexts []string // key text components, matched against alias names
	Norms      []string // canonical normalized texts (relaxed mode)
	Phonetics  []string // phonetic codes
}

// VectorItem is one embedded chunk for the vector side of retrieval.
type VectorItem struct {
	ID        string
	DocID     string
	Text      string
	Embedding []float32
}

// VectorStore is the embedding-similarity collaborator. Implementations
// must tolerate absence: an unreachable backend surfaces as an error the
// pipeline degrades on, never as a panic.
type VectorStore interface {
	Query(ctx context.Context, embedding []float32, topK int) ([]string, error)
	Get(ctx context.Context, ids []string) (map[string]string, error)
	Upsert(ctx context.Context, items []VectorItem) error
}
