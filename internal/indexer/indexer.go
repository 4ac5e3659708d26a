package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/pagecontext-mcp/internal/chunker"
	"github.com/dshills/pagecontext-mcp/internal/embedder"
	"github.com/dshills/pagecontext-mcp/internal/extractor"
	"github.com/dshills/pagecontext-mcp/internal/fetcher"
	"github.com/dshills/pagecontext-mcp/internal/identity"
	"github.com/dshills/pagecontext-mcp/internal/metrics"
	"github.com/dshills/pagecontext-mcp/internal/storage"
	"github.com/dshills/pagecontext-mcp/pkg/types"
)

var (
	// ErrNoFetcher is returned by IndexURL when the indexer has no fetcher
	ErrNoFetcher = errors.New("indexer has no fetcher")
	// ErrEmbeddingCount is returned when a provider answers with the wrong number of vectors
	ErrEmbeddingCount = errors.New("embedding count mismatch")
)

// PageFetcher retrieves page markup by URL
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.FetchResult, error)
}

// Options tunes an Indexer. Zero values select defaults.
type Options struct {
	Workers   int // Concurrent embedding batches (default: runtime.NumCPU())
	BatchSize int // Texts per embedding call (default: embedder.DefaultBatchSize)
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	OnChange  func() // Called after every successful write or clear
}

// Indexer turns pages into stored index entries: extract -> chunk -> embed -> upsert
type Indexer struct {
	extractor *extractor.Extractor
	chunker   *chunker.Chunker
	embedder  embedder.Embedder
	store     storage.VectorStore
	fetcher   PageFetcher

	workers   int
	batchSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
	onChange  func()
}

// Status describes the index and the components behind it
type Status struct {
	Backend   string `json:"backend"`
	Dimension int    `json:"dimension"`
	Entries   int    `json:"entries"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Tokenizer string `json:"tokenizer"`
	MaxTokens int    `json:"max_tokens_per_chunk"`
}

// New creates an Indexer. The embedder and the store must agree on the
// vector dimension. f may be nil when only IndexDocument is used.
func New(ext *extractor.Extractor, ch *chunker.Chunker, emb embedder.Embedder, store storage.VectorStore, f PageFetcher, opts Options) (*Indexer, error) {
	if emb.Dimension() != store.Dimension() {
		return nil, fmt.Errorf("%w: embedder %s/%s produces %d, store holds %d",
			storage.ErrDimensionMismatch, emb.Provider(), emb.Model(), emb.Dimension(), store.Dimension())
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = embedder.DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Indexer{
		extractor: ext,
		chunker:   ch,
		embedder:  emb,
		store:     store,
		fetcher:   f,
		workers:   opts.Workers,
		batchSize: opts.BatchSize,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		onChange:  opts.OnChange,
	}, nil
}

// Index embeds chunks and writes them for sourceID in a single upsert.
// Chunk i gets id identity.Assign(sourceID, i) and, when present, meta[i]
// as provenance. Blank chunks are skipped without shifting later indices.
// Any embedding or store failure aborts the whole batch.
func (idx *Indexer) Index(ctx context.Context, sourceID string, chunks []string, meta []types.Provenance) (int, error) {
	if sourceID == "" {
		return 0, types.ErrMissingSourceID
	}

	positions := make([]int, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	for i, text := range chunks {
		if strings.TrimSpace(text) == "" {
			continue
		}
		positions = append(positions, i)
		texts = append(texts, text)
	}
	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := idx.embedAll(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", sourceID, err)
	}

	tok := idx.chunker.Tokenizer()
	entries := make([]types.IndexEntry, len(texts))
	for j, text := range texts {
		i := positions[j]
		md := types.EntryMetadata{
			Text:       text,
			ChunkIndex: i,
			SourceID:   sourceID,
			TokenCount: tok.Count(text),
		}
		if i < len(meta) {
			md.ApplyProvenance(meta[i])
		}
		entries[j] = types.IndexEntry{
			ID:       identity.Assign(sourceID, i),
			Vector:   vectors[j],
			Metadata: md,
		}
	}

	if err := idx.store.Upsert(ctx, entries); err != nil {
		return 0, fmt.Errorf("store %s: %w", sourceID, err)
	}
	idx.changed()
	return len(entries), nil
}

// embedAll embeds texts in bounded concurrent batches, preserving order
func (idx *Indexer) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	dim := idx.store.Dimension()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)

	for start := 0; start < len(texts); start += idx.batchSize {
		end := min(start+idx.batchSize, len(texts))
		g.Go(func() error {
			resp, err := idx.embedder.GenerateBatch(gctx, embedder.BatchEmbeddingRequest{Texts: texts[start:end]})
			if err != nil {
				return err
			}
			if len(resp.Embeddings) != end-start {
				return fmt.Errorf("%w: got %d for %d texts", ErrEmbeddingCount, len(resp.Embeddings), end-start)
			}
			for k, emb := range resp.Embeddings {
				if emb == nil || len(emb.Vector) != dim {
					return fmt.Errorf("%w: text %d", storage.ErrDimensionMismatch, start+k)
				}
				vectors[start+k] = emb.Vector
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// IndexDocument extracts, chunks and indexes markup fetched from sourceURL.
// A page with no extractable text succeeds with zero chunks.
func (idx *Indexer) IndexDocument(ctx context.Context, sourceURL, markup string) (types.SourceResult, error) {
	start := time.Now()
	res := types.SourceResult{SourceID: sourceURL}

	segments, err := idx.extractor.Extract(markup, sourceURL)
	if err != nil {
		return idx.finish(res, start, fmt.Errorf("extract %s: %w", sourceURL, err))
	}
	res.Segments = len(segments)

	chunks := idx.chunker.ChunkSegments(sourceURL, segments)
	texts := make([]string, len(chunks))
	meta := make([]types.Provenance, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
		meta[i] = chunks[i].Provenance
	}

	n, err := idx.Index(ctx, sourceURL, texts, meta)
	res.ChunksIndexed = n
	return idx.finish(res, start, err)
}

// IndexURL fetches url and indexes the page under that URL.
func (idx *Indexer) IndexURL(ctx context.Context, url string) (types.SourceResult, error) {
	if idx.fetcher == nil {
		return idx.finish(types.SourceResult{SourceID: url}, time.Now(), ErrNoFetcher)
	}

	start := time.Now()
	page, err := idx.fetcher.Fetch(ctx, url)
	if err != nil {
		return idx.finish(types.SourceResult{SourceID: url}, start, err)
	}

	res, err := idx.IndexDocument(ctx, url, string(page.Body))
	res.DurationMs = time.Since(start).Milliseconds()
	return res, err
}

// IndexURLs indexes each URL in turn. Failures are recorded per source and
// never stop the run; a cancelled context marks the remaining sources failed.
func (idx *Indexer) IndexURLs(ctx context.Context, urls []string) *types.Report {
	start := time.Now()
	report := &types.Report{Sources: make([]types.SourceResult, 0, len(urls))}

	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			report.Add(types.SourceResult{SourceID: u, Status: types.StatusError, Error: err.Error()})
			continue
		}
		res, _ := idx.IndexURL(ctx, u)
		report.Add(res)
	}

	report.TotalDurationMs = time.Since(start).Milliseconds()
	idx.logger.Info("bulk index finished",
		"sources", len(urls),
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"chunks", report.TotalChunks,
		"duration_ms", report.TotalDurationMs)
	return report
}

// Clear removes every entry from the store
func (idx *Indexer) Clear(ctx context.Context) error {
	if err := idx.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	idx.changed()
	idx.metrics.SetStoreEntries(0)
	idx.logger.Info("index cleared", "backend", idx.store.Backend())
	return nil
}

// Status reports the store size and the configured components
func (idx *Indexer) Status(ctx context.Context) (*Status, error) {
	n, err := idx.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	idx.metrics.SetStoreEntries(n)
	return &Status{
		Backend:   idx.store.Backend(),
		Dimension: idx.store.Dimension(),
		Entries:   n,
		Provider:  idx.embedder.Provider(),
		Model:     idx.embedder.Model(),
		Tokenizer: idx.chunker.Tokenizer().Name(),
		MaxTokens: idx.chunker.MaxTokens(),
	}, nil
}

func (idx *Indexer) changed() {
	if idx.onChange != nil {
		idx.onChange()
	}
}

// finish stamps status and duration on res, logs and records it
func (idx *Indexer) finish(res types.SourceResult, start time.Time, err error) (types.SourceResult, error) {
	d := time.Since(start)
	res.DurationMs = d.Milliseconds()
	if err != nil {
		res.Status = types.StatusError
		res.Error = err.Error()
		idx.logger.Warn("index source failed", "source", res.SourceID, "error", err)
	} else {
		res.Status = types.StatusOK
		idx.logger.Info("indexed source",
			"source", res.SourceID,
			"segments", res.Segments,
			"chunks", res.ChunksIndexed,
			"duration_ms", res.DurationMs)
	}
	idx.metrics.ObserveIndex(string(res.Status), res.ChunksIndexed, d)
	return res, err
}
