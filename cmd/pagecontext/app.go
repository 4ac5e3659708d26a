package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/pagecontext-mcp/internal/chunker"
	"github.com/dshills/pagecontext-mcp/internal/config"
	"github.com/dshills/pagecontext-mcp/internal/embedder"
	"github.com/dshills/pagecontext-mcp/internal/extractor"
	"github.com/dshills/pagecontext-mcp/internal/fetcher"
	"github.com/dshills/pagecontext-mcp/internal/indexer"
	"github.com/dshills/pagecontext-mcp/internal/logging"
	"github.com/dshills/pagecontext-mcp/internal/metrics"
	"github.com/dshills/pagecontext-mcp/internal/searcher"
	"github.com/dshills/pagecontext-mcp/internal/storage"
	"github.com/dshills/pagecontext-mcp/internal/tokenizer"
)

// app holds the wired services shared by every command
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	embedder embedder.Embedder
	store    storage.VectorStore
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, err
	}

	tok, err := tokenizer.New(cfg.Chunking.Tokenizer)
	if err != nil {
		return nil, err
	}

	emb, err := embedder.New(embedder.Config{
		Provider:    cfg.Embedding.Provider,
		Model:       cfg.Embedding.Model,
		APIKey:      cfg.Embedding.APIKey,
		BaseURL:     cfg.Embedding.BaseURL,
		Dimension:   cfg.Embedding.Dimension,
		CacheSize:   cfg.Embedding.CacheSize,
		MaxAttempts: cfg.Embedding.MaxAttempts,
		Timeout:     cfg.Embedding.Timeout.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	if strings.EqualFold(cfg.Store.Backend, storage.BackendSQLite) && cfg.Store.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			_ = emb.Close()
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.Open(ctx, storage.Config{
		Backend:    cfg.Store.Backend,
		Dimension:  cfg.Embedding.Dimension,
		SQLitePath: cfg.Store.Path,
		QdrantAddr: cfg.Store.QdrantAddr,
		Collection: cfg.Store.Collection,
	})
	if err != nil {
		_ = emb.Close()
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics.New(),
		embedder: emb,
		store:    store,
	}

	a.searcher, err = searcher.New(emb, store, tok, searcher.Options{
		MaxTokens:       cfg.Chunking.MaxTokens,
		SnippetMaxChars: cfg.Chunking.SnippetMaxChars,
		CacheSize:       cfg.Search.CacheSize,
		CacheTTL:        cfg.Search.CacheTTL.Duration,
		Logger:          logger,
		Metrics:         a.metrics,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	fetch := fetcher.New(fetcher.Options{
		Timeout:      cfg.Fetch.Timeout.Duration,
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBytes:     cfg.Fetch.MaxBytes,
		MaxRedirects: cfg.Fetch.MaxRedirects,
		AllowPrivate: cfg.Fetch.AllowPrivate,
		RequireHTTPS: cfg.Fetch.RequireHTTPS,
	})

	a.indexer, err = indexer.New(
		extractor.New(extractor.Options{
			MinTextLength:   cfg.Chunking.MinTextLength,
			SnippetMaxChars: cfg.Chunking.SnippetMaxChars,
		}),
		chunker.New(tok, cfg.Chunking.MaxTokens),
		emb,
		store,
		fetch,
		indexer.Options{
			Workers:   cfg.Embedding.Workers,
			BatchSize: cfg.Embedding.BatchSize,
			Logger:    logger,
			Metrics:   a.metrics,
			OnChange:  a.searcher.Invalidate,
		},
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	logger.Debug("services ready",
		"store", store.Backend(),
		"dimension", store.Dimension(),
		"provider", emb.Provider(),
		"model", emb.Model(),
		"tokenizer", tok.Name())
	return a, nil
}

// Close releases the store and the embedder
func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.embedder.Close())
}
