package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jurisgraph/jurisgraph/pkg/leaselock"
	"github.com/jurisgraph/jurisgraph/pkg/logger"
	"github.com/jurisgraph/jurisgraph/pkg/pipeline"
)

// IngestJobMsg is one ingestion job: the path to an extractor JSONL
// artifact to merge into the graph and the embedding store.
type IngestJobMsg struct {
	Message       string `json:"message,omitempty"`
	Path          string `json:"path"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// ProcessIngestMessage handles one ingest job. A lease on the artifact
// path keeps two workers from ingesting the same file concurrently; a busy
// lease is an error so the message lands in the retry queue.
func ProcessIngestMessage(
	ctx context.Context,
	pipe *pipeline.Pipeline,
	locks *leaselock.Client,
	msg string,
) error {
	data := new(IngestJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("decode ingest job: %w", err)
	}
	if data.Path == "" {
		return fmt.Errorf("ingest job has no path")
	}

	run := func(c context.Context) error {
		n, err := pipe.IngestFile(c, data.Path, pipeline.ConfigFromEnv())
		if err != nil {
			return err
		}
		logger.Info("[Queue][Ingest] Ingested artifact",
			"path", data.Path,
			"mentions", n,
			"correlation_id", data.CorrelationID)
		return nil
	}

	if locks == nil {
		return run(ctx)
	}
	return locks.WithLease(ctx, "ingest:"+data.Path, leaselock.Options{
		TTL:         10 * time.Minute,
		TokenPrefix: "worker-",
	}, run)
}
