// Package indexer coordinates the page indexing pipeline.
//
// An Indexer extracts segments from page markup, cuts them into
// token-bounded chunks, embeds the chunks and writes one IndexEntry per
// chunk to a vector store:
//
//	idx, err := indexer.New(ext, chunk, emb, store, fetch, indexer.Options{})
//	res, err := idx.IndexURL(ctx, "https://example.com/docs")
//	fmt.Printf("%s: %d chunks\n", res.Status, res.ChunksIndexed)
//
// # Identity
//
// Entry ids are derived from the source id and the chunk's position in the
// document, so indexing the same page twice overwrites the earlier entries
// instead of duplicating them.
//
// # Concurrency
//
// Embedding runs in batches of Options.BatchSize with at most
// Options.Workers batches in flight (errgroup). The store write is a single
// upsert. Bulk runs (IndexURLs) process sources one after another and
// report each source's outcome in a types.Report.
//
// IndexLock lets callers reject overlapping bulk runs without blocking.
package indexer
