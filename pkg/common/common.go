package common

// Record is one extractor input/output line: a chunk of document text, its
// metadata, and the entity mentions found in it. Records are the unit of
// exchange with the external entity extractor and the unit of ingestion.
type Record struct {
	Text     string    `json:"text"`
	Metadata Metadata  `json:"metadata"`
	Entities []Mention `json:"entities,omitempty"`
}

// Metadata carries chunk provenance through the extractor boundary unchanged.
type Metadata struct {
	DocID       string `json:"doc_id,omitempty"`
	ChunkID     string `json:"chunk_id,omitempty"`
	ChunkIndex  int    `json:"chunk_index,omitempty"`
	TotalChunks int    `json:"total_chunks,omitempty"`
	SourcePath  string `json:"source_path,omitempty"`
}

// ChunkUID returns the stable chunk identifier "docId:chunkId".
func (m Metadata) ChunkUID() string {
	doc := m.DocID
	if doc == "" {
		doc = "unknown"
	}
	chunk := m.ChunkID
	if chunk == "" {
		chunk = "0"
	}
	return doc + ":" + chunk
}

// Mention is a raw entity mention as produced by the extractor. Score, Start
// and End are passed through untouched except for overlap suppression at
// ingestion time. Source identifies the extraction path that produced the
// mention ("ner", "ruler", "dictionary", "fallback_similarity").
type Mention struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Score      float64 `json:"score,omitempty"`
	Normalized string  `json:"normalized,omitempty"`
	Source     string  `json:"source,omitempty"`
}

// MatchReason identifies which strategy of the matching cascade surfaced an
// entity. Precision decreases from ReasonExactKey down to ReasonPhonetic;
// ReasonTextNorm only occurs in relaxed (label-agnostic) mode.
type MatchReason string

const (
	ReasonExactKey MatchReason = "direct"
	ReasonNormKey  MatchReason = "norm_key"
	ReasonAlias    MatchReason = "alias"
	ReasonPhonetic MatchReason = "phonetic"
	ReasonTextNorm MatchReason = "text_norm"
)

// Fuzzy reports whether the reason is one of the low-precision match paths.
func (r MatchReason) Fuzzy() bool {
	return r == ReasonAlias || r == ReasonPhonetic
}

// MatchRow is one (entity, chunk) pair returned by the graph store's unioned
// multi-strategy read, in store-emitted order.
type MatchRow struct {
	EntityKey string
	ChunkID   string
	Reason    MatchReason
}

// MentionRow is one ingestion upsert row: it carries everything needed to
// merge the Document, Chunk and Entity nodes plus the mention edge between
// chunk and entity.
type MentionRow struct {
	DocID       string
	SourcePath  string
	ChunkID     string
	ChunkIndex  int
	TotalChunks int
	ChunkUID    string

	Label    string
	Text     string
	NormText string
	Key      string
	NormKey  string

	Start  int
	End    int
	Score  float64
	Source string
}

// AliasRow attaches one normalized alias or phonetic code to an entity key.
// Exactly one of Alias and Phonetic is set.
type AliasRow struct {
	EntityKey string
	Alias     string
	Phonetic  string
}
