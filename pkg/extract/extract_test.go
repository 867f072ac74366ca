package extract

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jurisgraph/jurisgraph/pkg/common"
)

func TestReadRecords(t *testing.T) {
	input := `{"text":"Kaladevi appealed.","metadata":{"doc_id":"case42","chunk_id":"0"},"entities":[{"text":"Kaladevi","label":"PETITIONER","start":0,"end":8,"source":"ner"}]}

{"text":"Second chunk.","metadata":{"doc_id":"case42","chunk_id":"1"}}
`

	records, err := ReadRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (blank line skipped)", len(records))
	}
	if records[0].Metadata.ChunkUID() != "case42:0" {
		t.Fatalf("chunk uid = %q", records[0].Metadata.ChunkUID())
	}
	if len(records[0].Entities) != 1 || records[0].Entities[0].Source != "ner" {
		t.Fatalf("entities = %+v", records[0].Entities)
	}
}

func TestReadRecordsMalformedLine(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("{\"text\":\"ok\"}\nnot json\n"))
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("err = %v, want line number", err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	in := []common.Record{
		{Text: "Kaladevi v. State", Metadata: common.Metadata{DocID: "d", ChunkID: "7"}},
	}

	var buf bytes.Buffer
	if err := WriteRecords(&buf, in); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	out, err := ReadRecords(&buf)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(out) != 1 || out[0].Text != in[0].Text || out[0].Metadata.ChunkID != "7" {
		t.Fatalf("round trip = %+v", out)
	}
}

func TestReadRecordsFileMissing(t *testing.T) {
	_, err := ReadRecordsFile("/does/not/exist.jsonl")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNewSubprocessRequiresCommand(t *testing.T) {
	_, err := NewSubprocess("")
	if !errors.Is(err, common.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

type fakeExtractor struct {
	out   []common.Record
	err   error
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, records []common.Record) ([]common.Record, error) {
	f.calls++
	return f.out, f.err
}

func TestExtractQuery(t *testing.T) {
	ex := &fakeExtractor{out: []common.Record{{
		Text: "Kaladevi v. State of Karnataka section 302",
		Entities: []common.Mention{
			{Text: "Kaladevi v. State of Karnataka", Label: "CASE", Source: "ner"},
			{Text: "section 302", Label: "STATUTE", Source: "ruler"},
			{Text: "   ", Label: "ORG"},
		},
	}}}

	mentions, ruler, err := ExtractQuery(context.Background(), ex, "Kaladevi v. State of Karnataka section 302")
	if err != nil {
		t.Fatalf("ExtractQuery: %v", err)
	}
	if len(mentions) != 2 {
		t.Fatalf("mentions = %+v, want blank one dropped", mentions)
	}
	if !ruler {
		t.Fatal("ruler flag not set for ruler-source mention")
	}
}

func TestExtractQueryPropagatesError(t *testing.T) {
	ex := &fakeExtractor{err: errors.New("boom")}
	_, _, err := ExtractQuery(context.Background(), ex, "query")
	if err == nil {
		t.Fatal("expected error")
	}
}
