package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/jurisgraph/jurisgraph/internal/util"
	"github.com/jurisgraph/jurisgraph/pkg/extract"
	"github.com/jurisgraph/jurisgraph/pkg/graph"
	"github.com/jurisgraph/jurisgraph/pkg/logger"
	"github.com/jurisgraph/jurisgraph/pkg/retrieval"
)

// Retrieve runs the full retrieval sequence for one query: entity
// extraction, the vector and graph lookups, graph-priority fusion and text
// materialization. The vector and graph paths fail independently; only a
// broken extractor or an empty query abort the run.
func (p *Pipeline) Retrieve(ctx context.Context, query string, cfg Config) (*State, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	cfg = cfg.withDefaults()

	state := &State{Query: query, Config: cfg}

	if p.extractor != nil {
		mentions, ruler, err := extract.ExtractQuery(ctx, p.extractor, query)
		if err != nil {
			return nil, fmt.Errorf("extract query entities: %w", err)
		}
		state.Mentions = mentions
		state.Ruler = ruler
	}
	state.Mentions = graph.AugmentKeywords(query, state.Mentions, cfg.Keywords)

	p.vectorStep(ctx, state)
	p.graphStep(ctx, state)

	state.Result = retrieval.Merge(state.Resolution.ChunkIDs, state.VectorIDs, cfg.TopK)
	state.Result.Counts.VectorAvailable = state.VectorAvailable
	state.Result.Counts.KGAvailable = state.Resolution.Available
	state.Result.Tag(state.Resolution.FuzzyIDs, retrieval.TagFuzzyMatch)
	if state.Ruler {
		state.Result.Tag(state.Resolution.FuzzyIDs, retrieval.TagRegexRule)
	}

	texts := p.fetchTexts(ctx, state.Result.FinalIDs)
	state.Docs = retrieval.Materialize(state.Result, texts)

	logger.Info("[Pipeline][Retrieve] Done",
		"selected", state.Result.Counts.Selected,
		"vector", state.Result.Counts.Vector,
		"kg", state.Result.Counts.KG,
		"both", state.Result.Counts.Both)
	return state, nil
}

// vectorStep embeds the query and collects the topK nearest chunk ids. Any
// failure leaves the vector source unavailable without touching the rest
// of the run.
func (p *Pipeline) vectorStep(ctx context.Context, state *State) {
	if p.embed == nil || p.vector == nil {
		state.VectorErr = fmt.Errorf("vector path not configured")
		return
	}

	ids, err := util.RetryWithContext(ctx, storeMaxTries, func(c context.Context) ([]string, error) {
		emb, err := p.embed.GenerateEmbedding(c, []byte(state.Query))
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		return p.vector.Query(c, emb, state.Config.TopK)
	})
	if err != nil {
		logger.Warn("[Pipeline][Retrieve] Vector search unavailable", "error", err)
		state.VectorErr = err
		return
	}
	state.VectorIDs = ids
	state.VectorAvailable = true
}

func (p *Pipeline) graphStep(ctx context.Context, state *State) {
	if p.resolver == nil {
		state.Resolution.Err = fmt.Errorf("graph path not configured")
		return
	}
	state.Resolution = p.resolver.Resolve(ctx, state.Mentions, state.Config.StrictMatch, state.Config.KGLimit)
}

// fetchTexts resolves chunk text for the final ids. Lookup failures yield
// an empty map: materialization keeps the ids with empty text.
func (p *Pipeline) fetchTexts(ctx context.Context, ids []string) map[string]string {
	if p.vector == nil || len(ids) == 0 {
		return map[string]string{}
	}
	texts, err := util.RetryWithContext(ctx, storeMaxTries, func(c context.Context) (map[string]string, error) {
		return p.vector.Get(c, ids)
	})
	if err != nil {
		logger.Warn("[Pipeline][Retrieve] Chunk text lookup failed", "error", err)
		return map[string]string{}
	}
	return texts
}
