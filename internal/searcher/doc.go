// Package searcher answers natural-language queries against the page index.
//
// A query is embedded with the same embedder used for indexing, the vector
// store returns its nearest entries, and the searcher turns those matches
// into ranked results:
//
//	s, err := searcher.New(emb, store, tok, searcher.Options{CacheSize: 256})
//	results, err := s.Search(ctx, "how do I install it", 5)
//	for _, r := range results {
//	    fmt.Printf("[%d] %.2f%% %s\n", r.Rank, r.MatchPercentage, r.Text)
//	}
//
// # Post-processing
//
// Matches are walked in store order (descending similarity, ties by id).
// A match whose text equals an earlier result is dropped, as is a match
// with no text. Result text is cut back to Options.MaxTokens tokens and the
// HTML snippet to Options.SnippetMaxChars characters with the extractor's
// tag-safe truncation. Negative similarities are reported as 0.
//
// # Caching
//
// With Options.CacheSize > 0, responses are kept in an LRU keyed by
// (query, topK) for Options.CacheTTL. Writers call Invalidate after every
// index or clear so later searches see the new entries.
package searcher
