package retrieval

// Doc is one materialized result: a chunk id, its text, and the provenance
// tags that explain how it was surfaced.
type Doc struct {
	ID   string   `json:"id"`
	Text string   `json:"text"`
	Tags []string `json:"tags,omitempty"`
	Aux  []string `json:"aux,omitempty"`
}

// Materialize maps the merged ids back to chunk text. An id with no
// resolvable text keeps its position with empty text so positional and
// provenance integrity survive into diagnostics.
func Materialize(result MergeResult, texts map[string]string) []Doc {
	docs := make([]Doc, 0, len(result.FinalIDs))
	for _, id := range result.FinalIDs {
		docs = append(docs, Doc{
			ID:   id,
			Text: texts[id],
			Tags: result.Provenance[id],
			Aux:  result.Aux[id],
		})
	}
	return docs
}
