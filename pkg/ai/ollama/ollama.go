package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"

	"github.com/jurisgraph/jurisgraph/pkg/ai"
)

// EmbedOllamaClient implements ai.EmbedClient against an Ollama server.
type EmbedOllamaClient struct {
	embeddingModel string
	timeoutMin     int64

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client

	Client *api.Client
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		// don't overwrite if already set
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewEmbedOllamaClient connects to the Ollama server at cfg.URL (or the
// default if empty) and uses cfg.Model for embedding requests.
func NewEmbedOllamaClient(cfg ai.EmbedConfig) (*EmbedOllamaClient, error) {
	var (
		u   *url.URL
		err error
	)

	if cfg.URL != "" {
		u, err = url.Parse(cfg.URL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + cfg.Key,
			},
			rt: http.DefaultTransport,
		},
	}

	cli := api.NewClient(u, httpClient)

	maxConcurrent := cfg.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &EmbedOllamaClient{
		embeddingModel: cfg.Model,
		timeoutMin:     cfg.TimeoutMinutes,

		reqLock: semaphore.NewWeighted(maxConcurrent),

		baseURL:    u,
		apiKey:     cfg.Key,
		httpClient: httpClient,

		Client: cli,
	}, nil
}
