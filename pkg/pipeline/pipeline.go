package pipeline

import (
	"github.com/jurisgraph/jurisgraph/internal/util"
	"github.com/jurisgraph/jurisgraph/pkg/ai"
	"github.com/jurisgraph/jurisgraph/pkg/common"
	"github.com/jurisgraph/jurisgraph/pkg/extract"
	"github.com/jurisgraph/jurisgraph/pkg/graph"
	"github.com/jurisgraph/jurisgraph/pkg/retrieval"
	"github.com/jurisgraph/jurisgraph/pkg/store"
)

const storeMaxTries = 3

// Config holds per-run retrieval settings.
type Config struct {
	TopK        int
	KGLimit     int
	StrictMatch bool
	Keywords    map[string]string
}

// ConfigFromEnv assembles the default retrieval config from RETRIEVE_TOP_K,
// KG_LIMIT and STRICT_MATCH.
func ConfigFromEnv() Config {
	return Config{
		TopK:        int(util.GetEnvNumeric("RETRIEVE_TOP_K", 10)),
		KGLimit:     int(util.GetEnvNumeric("KG_LIMIT", 25)),
		StrictMatch: util.GetEnvBool("STRICT_MATCH", false),
		Keywords:    graph.DefaultKeywordLabels,
	}
}

func (c Config) withDefaults() Config {
	if c.TopK <= 0 {
		c.TopK = 10
	}
	if c.KGLimit <= 0 {
		c.KGLimit = 25
	}
	if c.Keywords == nil {
		c.Keywords = graph.DefaultKeywordLabels
	}
	return c
}

// Pipeline wires the extractor, the embedding client and the two stores
// into the retrieval and ingestion sequences. Any collaborator may be nil;
// the affected source degrades instead of failing the run.
type Pipeline struct {
	extractor  extract.Extractor
	embed      ai.EmbedClient
	vector     store.VectorStore
	graphStore store.GraphStore
	resolver   *graph.Resolver
}

// New creates a pipeline over the given collaborators.
func New(
	extractor extract.Extractor,
	embed ai.EmbedClient,
	vector store.VectorStore,
	graphStore store.GraphStore,
) *Pipeline {
	p := &Pipeline{
		extractor:  extractor,
		embed:      embed,
		vector:     vector,
		graphStore: graphStore,
	}
	if graphStore != nil {
		p.resolver = graph.NewResolver(graphStore)
	}
	return p
}

// State carries one retrieval run from query to materialized results. Each
// step fills its own fields; the zero value of a field means the step did
// not run or its source was unavailable.
type State struct {
	Query    string
	Config   Config
	Mentions []common.Mention
	Ruler    bool

	VectorIDs       []string
	VectorAvailable bool
	VectorErr       error

	Resolution graph.Resolution

	Result retrieval.MergeResult
	Docs   []retrieval.Doc
}
