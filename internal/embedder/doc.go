// Package embedder generates vector embeddings for page chunks and search queries.
//
// Four providers are available behind the Embedder interface:
//   - jina: Jina AI embeddings API
//   - openai: OpenAI embeddings API
//   - ollama: a local or remote Ollama server
//   - local: offline feature hashing, no model download required
//
// All providers are configured for a fixed output dimension (768 by default)
// and reject vectors of any other size with ErrDimensionMismatch.
//
// # Basic Usage
//
//	emb, err := embedder.New(embedder.Config{
//	    Provider:  "ollama",
//	    Dimension: 768,
//	    CacheSize: 10000,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	result, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{
//	    Text: "Deploy automations powered by AI.",
//	})
//
// # Provider Selection
//
// When Config.Provider is empty:
//
//  1. If JINA_API_KEY is set → use Jina AI
//  2. Else if OPENAI_API_KEY is set → use OpenAI
//  3. Else → fallback to the local provider (offline mode)
//
// # Caching
//
// An optional LRU cache keyed by model and text hash avoids re-embedding
// identical text. Batches only send cache misses to the remote API.
//
// # Retries
//
// Providers make a single attempt by default. Config.MaxAttempts enables
// exponential backoff between attempts; context cancellation stops it.
//
//	emb, err := embedder.GenerateBatch(ctx, req)
//	if errors.Is(err, embedder.ErrProviderFailed) {
//	    // provider unavailable or returned a bad response
//	}
package embedder
