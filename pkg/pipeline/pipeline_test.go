package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jurisgraph/jurisgraph/pkg/ai"
	"github.com/jurisgraph/jurisgraph/pkg/common"
	"github.com/jurisgraph/jurisgraph/pkg/retrieval"
	"github.com/jurisgraph/jurisgraph/pkg/store"
)

type fakeExtractor struct {
	entities []common.Mention
	err      error
}

func (f *fakeExtractor) Extract(ctx context.Context, records []common.Record) ([]common.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]common.Record, len(records))
	copy(out, records)
	if len(out) > 0 {
		out[0].Entities = f.entities
	}
	return out, nil
}

type fakeEmbed struct {
	err error
}

func (f *fakeEmbed) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbed) ResetMetrics()               {}
func (f *fakeEmbed) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

type fakeVector struct {
	ids      []string
	texts    map[string]string
	queryErr error
	upserted []store.VectorItem
}

func (f *fakeVector) Query(ctx context.Context, embedding []float32, topK int) ([]string, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if topK < len(f.ids) {
		return f.ids[:topK], nil
	}
	return f.ids, nil
}

func (f *fakeVector) Get(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, id := range ids {
		if t, ok := f.texts[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (f *fakeVector) Upsert(ctx context.Context, items []store.VectorItem) error {
	f.upserted = append(f.upserted, items...)
	return nil
}

type fakeGraph struct {
	rows      []common.MatchRow
	matchErr  error
	mentions  []common.MentionRow
	aliases   []common.AliasRow
	upsertErr error
}

func (f *fakeGraph) EnsureSchema(ctx context.Context) error { return nil }

func (f *fakeGraph) UpsertMentions(ctx context.Context, rows []common.MentionRow, aliases []common.AliasRow) (int, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.mentions = append(f.mentions, rows...)
	f.aliases = append(f.aliases, aliases...)
	return len(rows), nil
}

func (f *fakeGraph) MatchStrict(ctx context.Context, q store.MatchQuery) ([]common.MatchRow, error) {
	return f.rows, f.matchErr
}

func (f *fakeGraph) MatchRelaxed(ctx context.Context, q store.MatchQuery) ([]common.MatchRow, error) {
	return nil, nil
}

func TestRetrieveFusesBothSources(t *testing.T) {
	ex := &fakeExtractor{entities: []common.Mention{
		{Text: "Kaladevi", Label: "PETITIONER", Source: "ner"},
	}}
	vec := &fakeVector{
		ids: []string{"c1", "c2", "c4"},
		texts: map[string]string{
			"c1": "One.", "c2": "Two.", "c3": "Three.", "c4": "Four.",
		},
	}
	gr := &fakeGraph{rows: []common.MatchRow{
		{EntityKey: "PETITIONER|kaladevi", ChunkID: "c3", Reason: common.ReasonExactKey},
		{EntityKey: "PETITIONER|kaladevi", ChunkID: "c1", Reason: common.ReasonExactKey},
	}}

	p := New(ex, &fakeEmbed{}, vec, gr)
	state, err := p.Retrieve(context.Background(), "Kaladevi appeal", Config{TopK: 3})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if !reflect.DeepEqual(state.Result.FinalIDs, []string{"c3", "c1", "c2"}) {
		t.Fatalf("final ids = %v, want [c3 c1 c2]", state.Result.FinalIDs)
	}
	want := retrieval.SourceCounts{
		Vector: 3, KG: 2, Both: 1, Selected: 3,
		VectorAvailable: true, KGAvailable: true,
	}
	if state.Result.Counts != want {
		t.Fatalf("counts = %+v, want %+v", state.Result.Counts, want)
	}
	if state.Docs[0].ID != "c3" || state.Docs[0].Text != "Three." {
		t.Fatalf("docs[0] = %+v", state.Docs[0])
	}
}

func TestRetrieveDegradesPerSource(t *testing.T) {
	tests := []struct {
		name       string
		vectorErr  error
		matchErr   error
		wantVector bool
		wantKG     bool
		wantIDs    []string
	}{
		{
			name:       "vector down, graph serves",
			vectorErr:  errors.New("chroma gone"),
			wantVector: false,
			wantKG:     true,
			wantIDs:    []string{"c3"},
		},
		{
			name:       "graph down, vector serves",
			matchErr:   errors.New("pg gone"),
			wantVector: true,
			wantKG:     false,
			wantIDs:    []string{"c1", "c2"},
		},
		{
			name:       "both down yields empty result",
			vectorErr:  errors.New("chroma gone"),
			matchErr:   errors.New("pg gone"),
			wantVector: false,
			wantKG:     false,
			wantIDs:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &fakeExtractor{entities: []common.Mention{
				{Text: "Kaladevi", Label: "PETITIONER"},
			}}
			vec := &fakeVector{ids: []string{"c1", "c2"}, queryErr: tt.vectorErr}
			gr := &fakeGraph{
				rows:     []common.MatchRow{{EntityKey: "PETITIONER|kaladevi", ChunkID: "c3", Reason: common.ReasonExactKey}},
				matchErr: tt.matchErr,
			}

			p := New(ex, &fakeEmbed{}, vec, gr)
			state, err := p.Retrieve(context.Background(), "Kaladevi", Config{TopK: 5})
			if err != nil {
				t.Fatalf("Retrieve: %v", err)
			}

			if state.Result.Counts.VectorAvailable != tt.wantVector {
				t.Fatalf("vector available = %v, want %v", state.Result.Counts.VectorAvailable, tt.wantVector)
			}
			if state.Result.Counts.KGAvailable != tt.wantKG {
				t.Fatalf("kg available = %v, want %v", state.Result.Counts.KGAvailable, tt.wantKG)
			}
			if !reflect.DeepEqual(state.Result.FinalIDs, tt.wantIDs) {
				t.Fatalf("final ids = %v, want %v", state.Result.FinalIDs, tt.wantIDs)
			}
		})
	}
}

func TestRetrieveTagsFuzzyMatches(t *testing.T) {
	ex := &fakeExtractor{entities: []common.Mention{
		{Text: "Kala Devi", Label: "PETITIONER", Source: "ruler"},
	}}
	gr := &fakeGraph{rows: []common.MatchRow{
		{EntityKey: "PETITIONER|kaladevi", ChunkID: "c9", Reason: common.ReasonPhonetic},
	}}

	p := New(ex, nil, nil, gr)
	state, err := p.Retrieve(context.Background(), "Kala Devi", Config{TopK: 5})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	aux := state.Result.Aux["c9"]
	if !reflect.DeepEqual(aux, []string{retrieval.TagFuzzyMatch, retrieval.TagRegexRule}) {
		t.Fatalf("aux tags = %v, want fuzzy plus regex-rule", aux)
	}
}

func TestRetrieveRejectsEmptyQuery(t *testing.T) {
	p := New(nil, nil, nil, nil)
	if _, err := p.Retrieve(context.Background(), "   ", Config{}); err == nil {
		t.Fatal("expected error for blank query")
	}
}

func TestRetrieveExtractorFailureAborts(t *testing.T) {
	ex := &fakeExtractor{err: errors.New("ner crashed")}
	p := New(ex, nil, nil, &fakeGraph{})
	if _, err := p.Retrieve(context.Background(), "query", Config{}); err == nil {
		t.Fatal("expected extractor error to abort the run")
	}
}

func TestIngestWritesGraphAndVectors(t *testing.T) {
	vec := &fakeVector{}
	gr := &fakeGraph{}
	p := New(nil, &fakeEmbed{}, vec, gr)

	records := []common.Record{
		{
			Text:     "Kaladevi appealed to the tribunal.",
			Metadata: common.Metadata{DocID: "case42", ChunkID: "0"},
			Entities: []common.Mention{
				{Text: "Kaladevi", Label: "PETITIONER", Start: 0, End: 8},
			},
		},
	}

	n, err := p.Ingest(context.Background(), records, Config{})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if n != 1 {
		t.Fatalf("processed = %d, want 1", n)
	}
	if len(gr.mentions) != 1 || gr.mentions[0].ChunkUID != "case42:0" {
		t.Fatalf("graph rows = %+v", gr.mentions)
	}
	if len(gr.aliases) == 0 {
		t.Fatal("no alias rows written")
	}
	if len(vec.upserted) != 1 || vec.upserted[0].ID != "case42:0" {
		t.Fatalf("vector items = %+v", vec.upserted)
	}
	if len(vec.upserted[0].Embedding) == 0 {
		t.Fatal("vector item has no embedding")
	}
}

func TestIngestRunsExtractorWhenNeeded(t *testing.T) {
	ex := &fakeExtractor{entities: []common.Mention{
		{Text: "Kaladevi", Label: "PETITIONER", Start: 0, End: 8},
	}}
	gr := &fakeGraph{}
	p := New(ex, nil, nil, gr)

	records := []common.Record{
		{Text: "Kaladevi appealed.", Metadata: common.Metadata{DocID: "d", ChunkID: "0"}},
	}

	n, err := p.Ingest(context.Background(), records, Config{})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if n != 1 {
		t.Fatalf("processed = %d, want extractor-provided mention", n)
	}
}
