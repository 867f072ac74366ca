package ai

import (
	"context"
	"fmt"

	"github.com/jurisgraph/jurisgraph/internal/util"
	"github.com/jurisgraph/jurisgraph/pkg/common"
)

// EmbedClient is the embedding collaborator of the retrieval pipeline.
// Implementations wrap a model backend and apply their own concurrency
// caps and timeouts; callers may issue GenerateEmbedding calls in
// parallel.
type EmbedClient interface {
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)
	ResetMetrics()
	GetMetrics() ModelMetrics
}

// ModelMetrics contains accumulated usage metrics from embedding calls.
type ModelMetrics struct {
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	DurationMs     int64   `json:"duration_ms"`
	TokenPerSecond float32 `json:"tokens_per_second"`
}

// Supported embedding backends.
const (
	AdapterOllama = "ollama"
	AdapterOpenAI = "openai"
)

// EmbedConfig carries the backend selection and connection settings for
// an embedding client.
type EmbedConfig struct {
	Adapter string
	Model   string
	URL     string
	Key     string

	MaxConcurrentRequests int64
	TimeoutMinutes        int64
}

// EmbedConfigFromEnv assembles an EmbedConfig from AI_* environment
// variables.
func EmbedConfigFromEnv() EmbedConfig {
	return EmbedConfig{
		Adapter:               util.GetEnvString("AI_ADAPTER", AdapterOllama),
		Model:                 util.GetEnvString("AI_EMBED_MODEL", ""),
		URL:                   util.GetEnvString("AI_EMBED_URL", ""),
		Key:                   util.GetEnvString("AI_EMBED_KEY", ""),
		MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_MAX_CONCURRENT_REQUESTS", 4)),
		TimeoutMinutes:        int64(util.GetEnvNumeric("AI_TIMEOUT_MIN", 5)),
	}
}

// Validate reports a configuration error before any external call is made.
func (c EmbedConfig) Validate() error {
	switch c.Adapter {
	case AdapterOllama, AdapterOpenAI:
	default:
		return fmt.Errorf("%w: unknown AI_ADAPTER %q", common.ErrConfiguration, c.Adapter)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: AI_EMBED_MODEL is not set", common.ErrConfiguration)
	}
	if c.Adapter == AdapterOpenAI && c.Key == "" {
		return fmt.Errorf("%w: AI_EMBED_KEY is required for the openai adapter", common.ErrConfiguration)
	}
	return nil
}
