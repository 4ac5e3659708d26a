// Package config loads service configuration from defaults, an optional
// TOML file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables recognised by Load
const (
	EnvConfigPath       = "PAGECONTEXT_CONFIG"
	EnvMaxTokens        = "MAX_TOKENS_PER_CHUNK"
	EnvEmbeddingModel   = "EMBEDDING_MODEL"
	EnvEmbeddingProv    = "EMBEDDING_PROVIDER"
	EnvEmbeddingDim     = "EMBEDDING_DIMENSION"
	EnvEmbeddingAPIKey  = "PAGECONTEXT_EMBEDDING_API_KEY"
	EnvEmbeddingBaseURL = "PAGECONTEXT_EMBEDDING_URL"
	EnvTokenizer        = "PAGECONTEXT_TOKENIZER"
	EnvStoreBackend     = "PAGECONTEXT_STORE_BACKEND"
	EnvStorePath        = "PAGECONTEXT_STORE_PATH"
	EnvQdrantAddr       = "PAGECONTEXT_QDRANT_ADDR"
	EnvQdrantCollection = "PAGECONTEXT_QDRANT_COLLECTION"
	EnvAllowPrivate     = "PAGECONTEXT_ALLOW_PRIVATE"
	EnvLogLevel         = "PAGECONTEXT_LOG_LEVEL"
	EnvLogFormat        = "PAGECONTEXT_LOG_FORMAT"
	EnvMetricsAddr      = "PAGECONTEXT_METRICS_ADDR"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the full service configuration
type Config struct {
	Chunking  ChunkingConfig  `toml:"chunking"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Store     StoreConfig     `toml:"store"`
	Fetch     FetchConfig     `toml:"fetch"`
	Search    SearchConfig    `toml:"search"`
	Log       LogConfig       `toml:"log"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

type ChunkingConfig struct {
	MaxTokens       int    `toml:"max_tokens"`
	Tokenizer       string `toml:"tokenizer"`
	MinTextLength   int    `toml:"min_text_length"`
	SnippetMaxChars int    `toml:"snippet_max_chars"`
}

type EmbeddingConfig struct {
	Provider    string   `toml:"provider"` // empty auto-detects from API keys
	Model       string   `toml:"model"`
	APIKey      string   `toml:"api_key"`
	BaseURL     string   `toml:"base_url"`
	Dimension   int      `toml:"dimension"`
	CacheSize   int      `toml:"cache_size"`
	MaxAttempts int      `toml:"max_attempts"`
	BatchSize   int      `toml:"batch_size"`
	Workers     int      `toml:"workers"`
	Timeout     Duration `toml:"timeout"`
}

type StoreConfig struct {
	Backend    string `toml:"backend"` // sqlite or qdrant
	Path       string `toml:"path"`
	QdrantAddr string `toml:"qdrant_addr"`
	Collection string `toml:"collection"`
}

type FetchConfig struct {
	Timeout      Duration `toml:"timeout"`
	UserAgent    string   `toml:"user_agent"`
	MaxBytes     int64    `toml:"max_bytes"`
	MaxRedirects int      `toml:"max_redirects"`
	AllowPrivate bool     `toml:"allow_private"`
	RequireHTTPS bool     `toml:"require_https"`
}

type SearchConfig struct {
	TopK      int      `toml:"top_k"`
	CacheSize int      `toml:"cache_size"`
	CacheTTL  Duration `toml:"cache_ttl"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// Dir returns the per-user data directory (~/.pagecontext).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pagecontext"
	}
	return filepath.Join(home, ".pagecontext")
}

// DefaultPath is the config file read when no path is given
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			MaxTokens:       500,
			Tokenizer:       "tiktoken",
			MinTextLength:   3,
			SnippetMaxChars: 1000,
		},
		Embedding: EmbeddingConfig{
			Dimension:   768,
			CacheSize:   10000,
			MaxAttempts: 1,
			BatchSize:   50,
			Timeout:     Duration{30 * time.Second},
		},
		Store: StoreConfig{
			Backend:    "sqlite",
			Path:       filepath.Join(Dir(), "index.db"),
			QdrantAddr: "localhost:6334",
			Collection: "pagecontext",
		},
		Fetch: FetchConfig{
			Timeout:      Duration{30 * time.Second},
			MaxBytes:     5 << 20,
			MaxRedirects: 5,
		},
		Search: SearchConfig{
			TopK:      10,
			CacheSize: 256,
			CacheTTL:  Duration{10 * time.Minute},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. An explicit path must exist; with an empty
// path, PAGECONTEXT_CONFIG and then DefaultPath are tried and skipped when
// missing. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Embedding.Model, EnvEmbeddingModel)
	setString(&c.Embedding.Provider, EnvEmbeddingProv)
	setString(&c.Embedding.APIKey, EnvEmbeddingAPIKey)
	setString(&c.Embedding.BaseURL, EnvEmbeddingBaseURL)
	setString(&c.Chunking.Tokenizer, EnvTokenizer)
	setString(&c.Store.Backend, EnvStoreBackend)
	setString(&c.Store.Path, EnvStorePath)
	setString(&c.Store.QdrantAddr, EnvQdrantAddr)
	setString(&c.Store.Collection, EnvQdrantCollection)
	setString(&c.Log.Level, EnvLogLevel)
	setString(&c.Log.Format, EnvLogFormat)
	setString(&c.Metrics.Addr, EnvMetricsAddr)

	if err := setInt(&c.Chunking.MaxTokens, EnvMaxTokens); err != nil {
		return err
	}
	if err := setInt(&c.Embedding.Dimension, EnvEmbeddingDim); err != nil {
		return err
	}
	if v := os.Getenv(EnvAllowPrivate); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvAllowPrivate, v, err)
		}
		c.Fetch.AllowPrivate = b
	}
	return nil
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) error {
	v := strings.TrimSpace(os.Getenv(env))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, env, v)
	}
	*dst = n
	return nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Chunking.MaxTokens > 0, "chunking.max_tokens must be positive, got %d", c.Chunking.MaxTokens)
	check(c.Chunking.MinTextLength >= 0, "chunking.min_text_length must not be negative")
	check(c.Chunking.SnippetMaxChars > 0, "chunking.snippet_max_chars must be positive")
	check(oneOf(c.Chunking.Tokenizer, "tiktoken", "lexical"), "chunking.tokenizer %q is not tiktoken or lexical", c.Chunking.Tokenizer)

	check(c.Embedding.Dimension > 0, "embedding.dimension must be positive, got %d", c.Embedding.Dimension)
	check(c.Embedding.Provider == "" || oneOf(c.Embedding.Provider, "jina", "openai", "ollama", "local"),
		"embedding.provider %q is not supported", c.Embedding.Provider)
	check(c.Embedding.MaxAttempts >= 1, "embedding.max_attempts must be at least 1")
	check(c.Embedding.BatchSize > 0 && c.Embedding.BatchSize <= 100, "embedding.batch_size must be in 1..100")
	check(c.Embedding.CacheSize >= 0, "embedding.cache_size must not be negative")

	check(oneOf(c.Store.Backend, "sqlite", "qdrant"), "store.backend %q is not sqlite or qdrant", c.Store.Backend)
	if strings.EqualFold(c.Store.Backend, "qdrant") {
		check(c.Store.QdrantAddr != "", "store.qdrant_addr is required for the qdrant backend")
		check(c.Store.Collection != "", "store.collection is required for the qdrant backend")
	}

	check(c.Fetch.MaxBytes > 0, "fetch.max_bytes must be positive")
	check(c.Fetch.MaxRedirects >= 0, "fetch.max_redirects must not be negative")

	check(c.Search.TopK > 0 && c.Search.TopK <= 100, "search.top_k must be in 1..100")
	check(c.Search.CacheSize >= 0, "search.cache_size must not be negative")

	check(oneOf(c.Log.Level, "debug", "info", "warn", "warning", "error"), "log.level %q is not supported", c.Log.Level)
	check(oneOf(c.Log.Format, "text", "json"), "log.format %q is not text or json", c.Log.Format)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Save writes the configuration as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func oneOf(v string, options ...string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
