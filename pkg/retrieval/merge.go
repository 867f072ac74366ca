package retrieval

import "sort"

// Source and auxiliary provenance tags attached to merged results.
const (
	SourceVector = "vector"
	SourceKG     = "kg"

	// TagFuzzyMatch marks chunks the graph reached through the
	// low-precision alias or phonetic paths.
	TagFuzzyMatch = "fuzzy-match"
	// TagRegexRule marks fuzzy chunks when the query itself contained
	// regex-rule (ruler) entities.
	TagRegexRule = "regex-rule entity"
)

// SourceCounts aggregates pre-truncation totals for diagnostics. The counts
// intentionally cover the full candidate sets while FinalIDs is capped, so
// a heavily truncated result still reveals how much each source surfaced.
type SourceCounts struct {
	Vector          int  `json:"vector"`
	KG              int  `json:"kg"`
	Both            int  `json:"both"`
	Selected        int  `json:"selected"`
	VectorAvailable bool `json:"vector_available"`
	KGAvailable     bool `json:"kg_available"`
}

// MergeResult is the fused candidate list. Provenance and Aux only cover
// ids that survived truncation; Counts covers everything.
type MergeResult struct {
	FinalIDs   []string
	Provenance map[string][]string
	Aux        map[string][]string
	Counts     SourceCounts
}

// Merge fuses graph-matched and vector-matched chunk ids with graph
// priority: all kg ids first in their given order, then vector ids not
// already emitted, truncated to topK. Duplicates within a source list are
// collapsed on first occurrence.
func Merge(kgIDs, vectorIDs []string, topK int) MergeResult {
	seen := make(map[string]struct{})
	var ordered []string
	for _, id := range kgIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ordered = append(ordered, id)
		}
	}
	for _, id := range vectorIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ordered = append(ordered, id)
		}
	}

	final := ordered
	if topK >= 0 && len(final) > topK {
		final = final[:topK]
	}

	kgSet := distinct(kgIDs)
	vecSet := distinct(vectorIDs)
	both := 0
	for id := range vecSet {
		if _, ok := kgSet[id]; ok {
			both++
		}
	}

	prov := make(map[string][]string, len(final))
	for _, id := range final {
		var tags []string
		if _, ok := kgSet[id]; ok {
			tags = append(tags, SourceKG)
		}
		if _, ok := vecSet[id]; ok {
			tags = append(tags, SourceVector)
		}
		sort.Strings(tags)
		prov[id] = tags
	}

	return MergeResult{
		FinalIDs:   final,
		Provenance: prov,
		Aux:        make(map[string][]string),
		Counts: SourceCounts{
			Vector:   len(vecSet),
			KG:       len(kgSet),
			Both:     both,
			Selected: len(final),
		},
	}
}

// Tag attaches an auxiliary provenance tag to each given id that survived
// truncation. Unknown ids are ignored.
func (r *MergeResult) Tag(ids []string, tag string) {
	if len(ids) == 0 {
		return
	}
	surviving := make(map[string]struct{}, len(r.FinalIDs))
	for _, id := range r.FinalIDs {
		surviving[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := surviving[id]; !ok {
			continue
		}
		r.Aux[id] = append(r.Aux[id], tag)
	}
}

func distinct(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
