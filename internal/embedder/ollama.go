package embedder

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/ollama/ollama/api"
)

const (
	DefaultOllamaModel = "nomic-embed-text"
	DefaultOllamaHost  = "http://localhost:11434"
	EnvOllamaHost      = "OLLAMA_HOST"
)

// OllamaProvider implements Embedder against a local Ollama server
type OllamaProvider struct {
	client     *api.Client
	httpClient *http.Client
	model      string
	dimension  int
	cache      *Cache
	retry      RetryConfig
}

// NewOllamaProvider creates an Ollama embedder. BaseURL falls back to
// OLLAMA_HOST and then to the default local address.
func NewOllamaProvider(opts Options) (*OllamaProvider, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = os.Getenv(EnvOllamaHost)
	}
	opts = opts.withDefaults(DefaultOllamaModel, DefaultOllamaHost)

	host := opts.BaseURL
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ollama host %q: %v", ErrInvalidInput, host, err)
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	return &OllamaProvider{
		client:     api.NewClient(u, httpClient),
		httpClient: httpClient,
		model:      opts.Model,
		dimension:  opts.Dimension,
		cache:      opts.Cache,
		retry:      opts.Retry,
	}, nil
}

func (o *OllamaProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = o.model
	}

	key := CacheKey(model, req.Text)
	if o.cache != nil {
		if emb, ok := o.cache.Get(key); ok {
			return emb, nil
		}
	}

	resp, err := retryWithBackoff(ctx, o.retry, func() (*api.EmbeddingResponse, error) {
		return o.client.Embeddings(ctx, &api.EmbeddingRequest{
			Model:  model,
			Prompt: req.Text,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderFailed, ProviderOllama, err)
	}

	vector := make([]float32, len(resp.Embedding))
	for i, val := range resp.Embedding {
		vector[i] = float32(val)
	}
	if err := checkDimension(vector, o.dimension); err != nil {
		return nil, fmt.Errorf("%w: %s model %s: %v", ErrProviderFailed, ProviderOllama, model, err)
	}

	emb := &Embedding{
		Vector:    vector,
		Dimension: len(vector),
		Provider:  ProviderOllama,
		Model:     model,
	}
	storeInCache(o.cache, model, req.Text, emb)
	return emb, nil
}

// GenerateBatch embeds texts one request at a time; the embeddings
// endpoint takes a single prompt.
func (o *OllamaProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = o.model
	}

	embeddings := make([]*Embedding, len(req.Texts))
	for i, text := range req.Texts {
		emb, err := o.GenerateEmbedding(ctx, EmbeddingRequest{Text: text, Model: model})
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		embeddings[i] = emb
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   ProviderOllama,
		Model:      model,
	}, nil
}

func (o *OllamaProvider) Dimension() int {
	return o.dimension
}

func (o *OllamaProvider) Provider() string {
	return ProviderOllama
}

func (o *OllamaProvider) Model() string {
	return o.model
}

func (o *OllamaProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}
