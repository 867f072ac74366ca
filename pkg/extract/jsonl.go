package extract

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jurisgraph/jurisgraph/pkg/common"
)

// maxLineBytes bounds a single JSONL line; legal chunks stay well under it.
const maxLineBytes = 4 * 1024 * 1024

// ReadRecords decodes one record per line from a JSONL stream. Blank lines
// are skipped; a malformed line fails the whole read.
func ReadRecords(r io.Reader) ([]common.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []common.Record
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec common.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode record on line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}

// ReadRecordsFile reads a JSONL record file from disk.
func ReadRecordsFile(path string) ([]common.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()
	return ReadRecords(f)
}

// WriteRecords encodes records one JSON object per line.
func WriteRecords(w io.Writer, records []common.Record) error {
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	return nil
}
