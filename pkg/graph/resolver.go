package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/jurisgraph/jurisgraph/internal/util"
	"github.com/jurisgraph/jurisgraph/pkg/common"
	"github.com/jurisgraph/jurisgraph/pkg/logger"
	"github.com/jurisgraph/jurisgraph/pkg/normalize"
	"github.com/jurisgraph/jurisgraph/pkg/store"
)

const resolveMaxTries = 3

// Resolver answers "which chunks mention these entities" through the graph
// store's matching cascade: exact key, normalized key, alias, phonetic, in
// decreasing precision. When the strict pass yields nothing and strict-only
// was not requested, a relaxed label-agnostic pass runs instead.
type Resolver struct {
	store    store.GraphStore
	maxTries int
}

func NewResolver(st store.GraphStore) *Resolver {
	return &Resolver{store: st, maxTries: resolveMaxTries}
}

// Resolution is the outcome of one entity lookup. A store failure is not an
// error of the lookup itself: Available turns false, Err carries the
// diagnostic, and the id list is empty so callers degrade instead of abort.
type Resolution struct {
	ChunkIDs      []string
	MatchedKeys   []string
	RequestedKeys []string
	Reasons       map[string][]common.MatchReason
	FuzzyIDs      []string
	Available     bool
	Err           error
}

// Resolve maps query entities to the ordered unique ids of chunks that
// mention them. strict suppresses the relaxed fallback; limit caps the
// number of distinct matched entity keys contributing rows, not the number
// of chunks.
func (r *Resolver) Resolve(
	ctx context.Context,
	entities []common.Mention,
	strict bool,
	limit int,
) Resolution {
	q, requested := buildMatchQuery(entities)
	if len(requested) == 0 {
		return Resolution{Available: true, RequestedKeys: []string{}}
	}

	rows, err := util.RetryWithContext(ctx, r.maxTries, func(c context.Context) ([]common.MatchRow, error) {
		return r.store.MatchStrict(c, q)
	})
	if err != nil {
		logger.Warn("[Graph][Resolve] Strict match failed", "error", err)
		return Resolution{
			RequestedKeys: requested,
			Available:     false,
			Err:           fmt.Errorf("%w: %v", common.ErrUnavailable, err),
		}
	}

	if len(rows) == 0 && !strict {
		rows, err = util.RetryWithContext(ctx, r.maxTries, func(c context.Context) ([]common.MatchRow, error) {
			return r.store.MatchRelaxed(c, q)
		})
		if err != nil {
			logger.Warn("[Graph][Resolve] Relaxed match failed", "error", err)
			return Resolution{
				RequestedKeys: requested,
				Available:     false,
				Err:           fmt.Errorf("%w: %v", common.ErrUnavailable, err),
			}
		}
	}

	res := foldRows(rows, limit)
	res.RequestedKeys = requested
	res.Available = true
	logger.Debug("[Graph][Resolve] Matched",
		"chunks", len(res.ChunkIDs),
		"entities", len(res.MatchedKeys),
		"requested", len(requested))
	return res
}

// buildMatchQuery derives the per-strategy lookup values from the query
// entities. Entities without text contribute nothing.
func buildMatchQuery(entities []common.Mention) (store.MatchQuery, []string) {
	var q store.MatchQuery
	for _, e := range entities {
		if e.Text == "" {
			continue
		}
		key := normalize.MakeKey(e.Label, e.Text)
		q.Keys = append(q.Keys, key)
		q.AliasTexts = append(q.AliasTexts, normalize.KeyText(key))

		nt := normalize.Normalize(e.Text)
		if nt == "" {
			continue
		}
		q.Norms = append(q.Norms, nt)
		q.NormKeys = append(q.NormKeys, normalize.MakeKey(e.Label, nt))
		if ph := normalize.PhoneticKey(nt); ph != "" {
			q.Phonetics = append(q.Phonetics, ph)
		}
	}
	return q, q.Keys
}

// foldRows collapses store rows into ordered unique chunk ids with per-chunk
// reason sets. The limit applies to the identity set: rows for entity keys
// beyond the first limit distinct ones are dropped entirely.
func foldRows(rows []common.MatchRow, limit int) Resolution {
	allowed := make(map[string]struct{})
	seen := make(map[string]struct{})
	reasonSets := make(map[string]map[common.MatchReason]struct{})

	var ordered []string
	for _, row := range rows {
		if _, ok := allowed[row.EntityKey]; !ok {
			if limit > 0 && len(allowed) >= limit {
				continue
			}
			allowed[row.EntityKey] = struct{}{}
		}
		if _, ok := seen[row.ChunkID]; !ok {
			seen[row.ChunkID] = struct{}{}
			ordered = append(ordered, row.ChunkID)
		}
		set, ok := reasonSets[row.ChunkID]
		if !ok {
			set = make(map[common.MatchReason]struct{})
			reasonSets[row.ChunkID] = set
		}
		set[row.Reason] = struct{}{}
	}

	matched := make([]string, 0, len(allowed))
	for k := range allowed {
		matched = append(matched, k)
	}
	sort.Strings(matched)

	reasons := make(map[string][]common.MatchReason, len(reasonSets))
	var fuzzy []string
	for _, cid := range ordered {
		set := reasonSets[cid]
		list := make([]common.MatchReason, 0, len(set))
		for reason := range set {
			list = append(list, reason)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		reasons[cid] = list
		for _, reason := range list {
			if reason.Fuzzy() {
				fuzzy = append(fuzzy, cid)
				break
			}
		}
	}

	return Resolution{
		ChunkIDs:    ordered,
		MatchedKeys: matched,
		Reasons:     reasons,
		FuzzyIDs:    fuzzy,
	}
}
