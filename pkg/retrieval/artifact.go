package retrieval

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func yesno(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// RenderArtifact serializes materialized results into the retrieval output
// format: one summary line with availability flags and the pre-truncation
// counts, then one header+text block per result.
func RenderArtifact(docs []Doc, counts SourceCounts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# sources: vector=%s, kg=%s; counts: selected=%d, vector=%d, kg=%d, both=%d\n\n",
		yesno(counts.VectorAvailable), yesno(counts.KGAvailable),
		counts.Selected, counts.Vector, counts.KG, counts.Both)

	for _, doc := range docs {
		b.WriteString("### " + doc.ID)
		if len(doc.Tags) > 0 {
			b.WriteString(" [" + strings.Join(doc.Tags, "+") + "]")
		}
		for _, aux := range doc.Aux {
			b.WriteString(" [" + aux + "]")
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(doc.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// WriteArtifact renders the results and writes them to path, creating
// parent directories as needed.
func WriteArtifact(path string, docs []Doc, counts SourceCounts) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(RenderArtifact(docs, counts)), 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}
