package searcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/pagecontext-mcp/internal/chunker"
	"github.com/dshills/pagecontext-mcp/internal/embedder"
	"github.com/dshills/pagecontext-mcp/internal/extractor"
	"github.com/dshills/pagecontext-mcp/internal/metrics"
	"github.com/dshills/pagecontext-mcp/internal/storage"
	"github.com/dshills/pagecontext-mcp/internal/tokenizer"
	"github.com/dshills/pagecontext-mcp/pkg/types"
)

// Result count bounds
const (
	DefaultTopK = 10
	MaxTopK     = 100
)

// DefaultCacheTTL bounds how long a cached response is served
const DefaultCacheTTL = 10 * time.Minute

// ErrEmptyQuery is returned for blank queries
var ErrEmptyQuery = errors.New("query is empty")

// Options tunes a Searcher. Zero values select defaults.
type Options struct {
	MaxTokens       int // Result text bound (default: chunker.DefaultMaxTokens)
	SnippetMaxChars int // Snippet bound (default: extractor.DefaultSnippetMaxChars)
	CacheSize       int // Cached responses; 0 disables the cache
	CacheTTL        time.Duration
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
}

// cacheEntry represents a cached response with expiration time
type cacheEntry struct {
	results   []types.SearchResult
	expiresAt time.Time
}

// Searcher answers similarity queries against a vector store
type Searcher struct {
	embedder embedder.Embedder
	store    storage.VectorStore
	tok      tokenizer.Tokenizer
	opts     Options

	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.RWMutex
}

// New creates a Searcher. The embedder and the store must agree on the
// vector dimension; tok should be the tokenizer the index was chunked with.
func New(emb embedder.Embedder, store storage.VectorStore, tok tokenizer.Tokenizer, opts Options) (*Searcher, error) {
	if tok == nil {
		return nil, errors.New("searcher requires a tokenizer")
	}
	if emb.Dimension() != store.Dimension() {
		return nil, fmt.Errorf("%w: embedder produces %d, store holds %d",
			storage.ErrDimensionMismatch, emb.Dimension(), store.Dimension())
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = chunker.DefaultMaxTokens
	}
	if opts.SnippetMaxChars <= 0 {
		opts.SnippetMaxChars = extractor.DefaultSnippetMaxChars
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Searcher{embedder: emb, store: store, tok: tok, opts: opts}
	if opts.CacheSize > 0 {
		cache, err := lru.New[[32]byte, *cacheEntry](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create search cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// NormalizeTopK maps a configured topK onto [1, MaxTopK]; non-positive
// values select DefaultTopK.
func NormalizeTopK(topK int) int {
	switch {
	case topK <= 0:
		return DefaultTopK
	case topK > MaxTopK:
		return MaxTopK
	default:
		return topK
	}
}

// Search embeds query and returns up to topK ranked results. Results keep
// the store's similarity order; entries whose text repeats an earlier
// result, and entries without text, are skipped. A non-positive topK yields
// no results and topK above MaxTopK is clamped.
func (s *Searcher) Search(ctx context.Context, query string, topK int) ([]types.SearchResult, error) {
	return s.search(ctx, query, topK, "")
}

// SearchSource is Search restricted to the entries of one source. The store
// is asked for MaxTopK matches before filtering, so a source whose chunks
// all rank below that cut returns fewer than topK results.
func (s *Searcher) SearchSource(ctx context.Context, sourceID, query string, topK int) ([]types.SearchResult, error) {
	if sourceID == "" {
		return nil, types.ErrMissingSourceID
	}
	return s.search(ctx, query, topK, sourceID)
}

func (s *Searcher) search(ctx context.Context, query string, topK int, sourceID string) (results []types.SearchResult, err error) {
	start := time.Now()
	defer func() {
		s.opts.Metrics.ObserveSearch(len(results), time.Since(start), err)
	}()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		return []types.SearchResult{}, nil
	}
	topK = min(topK, MaxTopK)

	key := cacheKey(query, topK, sourceID)
	if cached, ok := s.fromCache(key); ok {
		s.opts.Logger.Debug("search cache hit", "query", query, "top_k", topK)
		return cached, nil
	}

	emb, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	fetchK := topK
	if sourceID != "" {
		fetchK = MaxTopK
	}
	matches, err := s.store.Query(ctx, emb.Vector, fetchK)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}

	results = s.rank(matches, topK, sourceID)
	s.toCache(key, results)

	s.opts.Logger.Debug("search complete",
		"query", query,
		"source", sourceID,
		"top_k", topK,
		"matches", len(matches),
		"results", len(results),
		"duration", time.Since(start))
	return results, nil
}

// rank turns raw matches into numbered results, keeping only sourceID's
// entries when it is set
func (s *Searcher) rank(matches []types.Match, topK int, sourceID string) []types.SearchResult {
	results := make([]types.SearchResult, 0, min(len(matches), topK))
	seen := make(map[string]struct{}, len(matches))

	for i := range matches {
		if len(results) == topK {
			break
		}
		m := &matches[i]
		md := &m.Metadata
		if md.Text == "" {
			s.opts.Logger.Debug("skipping match without text", "id", m.ID)
			continue
		}
		if sourceID != "" && md.SourceID != sourceID {
			continue
		}
		if _, dup := seen[md.Text]; dup {
			continue
		}
		seen[md.Text] = struct{}{}

		score := clampScore(m.Score)
		results = append(results, types.SearchResult{
			ID:              m.ID,
			Rank:            len(results) + 1,
			Score:           score,
			MatchPercentage: math.Round(score*10000) / 100,
			Text:            tokenizer.Truncate(s.tok, md.Text, s.opts.MaxTokens),
			HTMLSnippet:     extractor.TruncateHTML(md.HTMLSnippet, s.opts.SnippetMaxChars),
			SourceID:        md.SourceID,
			ChunkIndex:      md.ChunkIndex,
			Path:            md.Path,
			TagName:         md.TagName,
			TagID:           md.TagID,
			TagClass:        md.TagClass,
			Title:           md.Title,
		})
	}
	return results
}

// clampScore maps a cosine similarity onto [0, 1]
func clampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Invalidate drops every cached response
func (s *Searcher) Invalidate() {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

func (s *Searcher) fromCache(key [32]byte) ([]types.SearchResult, bool) {
	if s.cache == nil {
		return nil, false
	}

	s.cacheMu.RLock()
	entry, found := s.cache.Get(key)
	if !found {
		s.cacheMu.RUnlock()
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		s.cacheMu.RUnlock()
		s.cacheMu.Lock()
		s.cache.Remove(key)
		s.cacheMu.Unlock()
		return nil, false
	}
	results := append([]types.SearchResult(nil), entry.results...)
	s.cacheMu.RUnlock()
	return results, true
}

func (s *Searcher) toCache(key [32]byte, results []types.SearchResult) {
	if s.cache == nil {
		return
	}
	entry := &cacheEntry{
		results:   append([]types.SearchResult(nil), results...),
		expiresAt: time.Now().Add(s.opts.CacheTTL),
	}
	s.cacheMu.Lock()
	s.cache.Add(key, entry)
	s.cacheMu.Unlock()
}

func cacheKey(query string, topK int, sourceID string) [32]byte {
	return sha256.Sum256([]byte(query + "|" + strconv.Itoa(topK) + "|" + sourceID))
}
