package openai

import (
	"math"
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"

	"github.com/jurisgraph/jurisgraph/pkg/ai"
)

// EmbedOpenAIClient implements ai.EmbedClient against any OpenAI-compatible
// embedding endpoint.
type EmbedOpenAIClient struct {
	embeddingModel string
	timeoutMin     int64

	embeddingURL string
	embeddingKey string

	embeddingLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	EmbeddingClient *openai.Client
}

// NewEmbedOpenAIClient creates an embedding client for cfg.URL using
// cfg.Key. Returns a client with a nil backend when the key is empty;
// callers validate the config before use.
func NewEmbedOpenAIClient(cfg ai.EmbedConfig) *EmbedOpenAIClient {
	maxConcurrent := cfg.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &EmbedOpenAIClient{
		embeddingModel: cfg.Model,
		timeoutMin:     cfg.TimeoutMinutes,

		embeddingURL: cfg.URL,
		embeddingKey: cfg.Key,

		embeddingLock: semaphore.NewWeighted(maxConcurrent),

		EmbeddingClient: newOpenaiClient(cfg.URL, cfg.Key),
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *EmbedOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{}
	c.metricsLock.Unlock()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *EmbedOpenAIClient) GetMetrics() ai.ModelMetrics {
	return c.metrics
}

func (c *EmbedOpenAIClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs

	if c.metrics.DurationMs > 0 {
		tokensPerSecond := (float64(c.metrics.TotalTokens) * 1000.0) / float64(c.metrics.DurationMs)
		c.metrics.TokenPerSecond = float32(math.Round(tokensPerSecond*100) / 100)
	}
}
