// Package chunker divides segment text into token-bounded chunks for embedding.
//
// Text is tokenized once and sliced into consecutive windows of at most
// MaxTokens tokens. Each window is decoded on its own, so concatenating the
// chunks of a segment reproduces its token stream.
//
// # Basic Usage
//
//	tok, _ := tokenizer.New("tiktoken")
//	c := chunker.New(tok, 500)
//
//	pieces := c.Split(longText)
//	chunks := c.ChunkSegments("https://example.com/", segments)
//
//	for _, chunk := range chunks {
//	    fmt.Printf("chunk %d: %d tokens\n", chunk.ChunkIndex, chunk.TokenCount)
//	}
//
// # Chunk Indexing
//
// ChunkSegments numbers chunks across the whole document rather than per
// segment. Combined with the source identifier this gives every chunk of a
// source a distinct identity.
package chunker
