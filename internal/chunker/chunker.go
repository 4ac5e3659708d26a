package chunker

import (
	"github.com/dshills/pagecontext-mcp/internal/tokenizer"
	"github.com/dshills/pagecontext-mcp/pkg/types"
)

// DefaultMaxTokens is the default maximum token count per chunk
const DefaultMaxTokens = 500

// Chunker splits text into token-bounded chunks
type Chunker struct {
	tok       tokenizer.Tokenizer
	maxTokens int
}

// New creates a Chunker. maxTokens <= 0 selects DefaultMaxTokens.
func New(tok tokenizer.Tokenizer, maxTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Chunker{tok: tok, maxTokens: maxTokens}
}

// MaxTokens returns the per-chunk token bound
func (c *Chunker) MaxTokens() int {
	return c.maxTokens
}

// Tokenizer returns the tokenizer used for splitting
func (c *Chunker) Tokenizer() tokenizer.Tokenizer {
	return c.tok
}

// Split returns consecutive token windows of text, decoded back to strings.
// Empty text yields no chunks.
func (c *Chunker) Split(text string) []string {
	windows := c.windows(text)
	out := make([]string, len(windows))
	for i, w := range windows {
		out[i] = c.tok.Decode(w)
	}
	return out
}

// ChunkSegments splits every segment and numbers the chunks across the
// whole document. Each chunk carries its segment's provenance.
func (c *Chunker) ChunkSegments(sourceID string, segments []types.Segment) []types.Chunk {
	chunks := make([]types.Chunk, 0, len(segments))
	idx := 0
	for i := range segments {
		seg := &segments[i]
		prov := seg.Provenance()
		for _, w := range c.windows(seg.Text) {
			text := c.tok.Decode(w)
			if text == "" {
				continue
			}
			chunks = append(chunks, types.Chunk{
				SourceID:   sourceID,
				ChunkIndex: idx,
				Text:       text,
				TokenCount: len(w),
				Provenance: prov,
			})
			idx++
		}
	}
	return chunks
}

// windows slices text's token ids into runs of at most maxTokens. A run that
// would end inside a multibyte character is shortened so every run decodes
// to valid UTF-8; the next run starts where the shortened one stopped.
func (c *Chunker) windows(text string) [][]int {
	if text == "" {
		return nil
	}
	ids := c.tok.Encode(text)
	if len(ids) == 0 {
		return nil
	}

	out := make([][]int, 0, (len(ids)+c.maxTokens-1)/c.maxTokens)
	for start := 0; start < len(ids); {
		end := min(start+c.maxTokens, len(ids))
		if end < len(ids) {
			end = start + tokenizer.ValidPrefix(c.tok, ids[start:end])
		}
		out = append(out, ids[start:end])
		start = end
	}
	return out
}
