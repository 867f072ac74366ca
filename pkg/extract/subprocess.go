package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/jurisgraph/jurisgraph/internal/util"
	"github.com/jurisgraph/jurisgraph/pkg/common"
	"github.com/jurisgraph/jurisgraph/pkg/logger"
)

// extractMaxTries allows exactly one retry before the extractor error
// propagates.
const extractMaxTries = 2

// Extractor produces entity mentions for document or query text.
type Extractor interface {
	Extract(ctx context.Context, records []common.Record) ([]common.Record, error)
}

// Subprocess runs an external entity extractor over the JSONL file
// protocol: records go into a temp input file, the process is invoked with
// --input and --output, and the enriched records come back from the output
// file.
type Subprocess struct {
	argv     []string
	maxTries int
}

// NewSubprocess parses a command line like
// "conda run -n ner_env python -m app.ner_runner" into the extractor argv.
func NewSubprocess(command string) (*Subprocess, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: EXTRACTOR_CMD is not set", common.ErrConfiguration)
	}
	return &Subprocess{argv: argv, maxTries: extractMaxTries}, nil
}

// NewSubprocessFromEnv builds the extractor from the EXTRACTOR_CMD setting.
func NewSubprocessFromEnv() (*Subprocess, error) {
	return NewSubprocess(util.GetEnv("EXTRACTOR_CMD"))
}

// Extract runs the extractor once, retrying a single time on failure.
func (s *Subprocess) Extract(ctx context.Context, records []common.Record) ([]common.Record, error) {
	if len(records) == 0 {
		return nil, nil
	}

	return util.RetryWithContext(ctx, s.maxTries, func(c context.Context) ([]common.Record, error) {
		out, err := s.runOnce(c, records)
		if err != nil {
			logger.Warn("[Extract] Extractor run failed", "error", err)
		}
		return out, err
	})
}

func (s *Subprocess) runOnce(ctx context.Context, records []common.Record) ([]common.Record, error) {
	in, err := os.CreateTemp("", "extract-in-*.jsonl")
	if err != nil {
		return nil, fmt.Errorf("create extractor input: %w", err)
	}
	defer os.Remove(in.Name())

	out, err := os.CreateTemp("", "extract-out-*.jsonl")
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("create extractor output: %w", err)
	}
	out.Close()
	defer os.Remove(out.Name())

	if err := WriteRecords(in, records); err != nil {
		in.Close()
		return nil, err
	}
	if err := in.Close(); err != nil {
		return nil, fmt.Errorf("flush extractor input: %w", err)
	}

	args := append(append([]string{}, s.argv[1:]...), "--input", in.Name(), "--output", out.Name())
	cmd := exec.CommandContext(ctx, s.argv[0], args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run extractor: %w", err)
	}

	enriched, err := ReadRecordsFile(out.Name())
	if err != nil {
		return nil, err
	}
	if len(enriched) != len(records) {
		return nil, fmt.Errorf("extractor returned %d records for %d inputs", len(enriched), len(records))
	}
	return enriched, nil
}

// ExtractQuery runs the extractor over a single query string and reports
// the mentions plus whether any of them came from the regex-rule (ruler)
// path.
func ExtractQuery(ctx context.Context, ex Extractor, query string) ([]common.Mention, bool, error) {
	records, err := ex.Extract(ctx, []common.Record{{Text: query}})
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}

	var mentions []common.Mention
	ruler := false
	for _, m := range records[0].Entities {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		if m.Source == "ruler" {
			ruler = true
			logger.Debug("[Extract] Regex-rule query entity", "text", m.Text)
		}
		mentions = append(mentions, m)
	}
	return mentions, ruler, nil
}
