package graph

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jurisgraph/jurisgraph/pkg/common"
	"github.com/jurisgraph/jurisgraph/pkg/normalize"
)

// DefaultKeywordLabels maps domain keywords to the entity label they are
// ingested under. Extend as needed.
var DefaultKeywordLabels = map[string]string{
	"court": "ORG",
}

// AugmentKeywords adds at most one whole-word keyword match per keyword to
// the mention list, skipping keywords some existing mention already
// normalizes to. Offsets refer to the chunk text like extractor offsets do.
func AugmentKeywords(text string, mentions []common.Mention, keywords map[string]string) []common.Mention {
	if text == "" || len(keywords) == 0 {
		return mentions
	}

	existing := make(map[string]struct{}, len(mentions))
	for _, m := range mentions {
		if m.Text != "" {
			existing[normalize.NormalizeKeyText(m.Text)] = struct{}{}
		}
	}

	words := make([]string, 0, len(keywords))
	for kw := range keywords {
		words = append(words, kw)
	}
	sort.Strings(words)

	out := mentions
	for _, kw := range words {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			span := text[loc[0]:loc[1]]
			norm := normalize.NormalizeKeyText(span)
			if _, ok := existing[norm]; ok {
				continue
			}
			out = append(out, common.Mention{
				Text:  span,
				Label: keywords[kw],
				Start: loc[0],
				End:   loc[1],
				Score: 1.0,
			})
			existing[norm] = struct{}{}
			break // at most one occurrence per keyword
		}
	}
	return out
}

// SuppressOverlaps keeps mentions in input order and drops any whose span
// overlaps an already-accepted span.
func SuppressOverlaps(mentions []common.Mention) []common.Mention {
	type span struct{ start, end int }
	var taken []span
	out := make([]common.Mention, 0, len(mentions))
	for _, m := range mentions {
		conflict := false
		for _, t := range taken {
			if m.Start < t.end && t.start < m.End {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		out = append(out, m)
		taken = append(taken, span{m.Start, m.End})
	}
	return out
}

// BuildRows turns extractor records into graph upsert rows: one MentionRow
// per accepted mention plus the alias and phonetic index rows for its
// entity. Keyword augmentation and overlap suppression run per record
// before row construction.
func BuildRows(records []common.Record, keywords map[string]string) ([]common.MentionRow, []common.AliasRow) {
	var rows []common.MentionRow
	var aliases []common.AliasRow

	for _, rec := range records {
		mentions := AugmentKeywords(rec.Text, rec.Entities, keywords)
		mentions = SuppressOverlaps(mentions)
		if len(mentions) == 0 {
			continue
		}

		meta := rec.Metadata
		docID := meta.DocID
		if docID == "" {
			docID = "unknown"
		}
		chunkID := meta.ChunkID
		if chunkID == "" {
			chunkID = "0"
		}

		for _, m := range mentions {
			text := strings.TrimSpace(m.Text)
			if text == "" {
				continue
			}

			key := normalize.MakeKey(m.Label, text)
			normText := normalize.Normalize(text)

			rows = append(rows, common.MentionRow{
				DocID:       docID,
				SourcePath:  meta.SourcePath,
				ChunkID:     chunkID,
				ChunkIndex:  meta.ChunkIndex,
				TotalChunks: meta.TotalChunks,
				ChunkUID:    meta.ChunkUID(),

				Label:    strings.ToUpper(strings.TrimSpace(m.Label)),
				Text:     text,
				NormText: normText,
				Key:      key,
				NormKey:  normalize.MakeKey(m.Label, normText),

				Start:  m.Start,
				End:    m.End,
				Score:  m.Score,
				Source: m.Source,
			})

			for _, alias := range normalize.DeriveAliases(text) {
				aliases = append(aliases, common.AliasRow{EntityKey: key, Alias: alias})
			}
			if ph := normalize.PhoneticKey(normText); ph != "" {
				aliases = append(aliases, common.AliasRow{EntityKey: key, Phonetic: ph})
			}
		}
	}

	return rows, aliases
}
