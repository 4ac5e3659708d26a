package embedder

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds embedder configuration
type Config struct {
	Provider    string // jina, openai, ollama, local; empty auto-detects
	Model       string
	APIKey      string
	BaseURL     string
	Dimension   int
	CacheSize   int // 0 disables the embedding cache
	MaxAttempts int
	Timeout     time.Duration
}

// New creates an embedder from explicit configuration.
// An empty provider is resolved with DetectProvider.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	opts := Options{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		Dimension: cfg.Dimension,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		Cache:     cache,
		Retry:     DefaultRetryConfig().WithAttempts(cfg.MaxAttempts),
	}

	provider := DetectProvider(cfg)
	switch provider {
	case ProviderJina:
		return NewJinaProvider(opts)
	case ProviderOpenAI:
		return NewOpenAIProvider(opts)
	case ProviderOllama:
		return NewOllamaProvider(opts)
	case ProviderLocal:
		return NewLocalProvider(opts)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
}

// DetectProvider returns the provider New would use.
// Priority:
// 1. cfg.Provider when set
// 2. JINA_API_KEY, then OPENAI_API_KEY in the environment
// 3. the offline local provider
func DetectProvider(cfg Config) string {
	if p := strings.ToLower(strings.TrimSpace(cfg.Provider)); p != "" {
		return p
	}
	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	return ProviderLocal
}
