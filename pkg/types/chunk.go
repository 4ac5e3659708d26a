package types

// Chunk is a token-bounded slice of a segment's text
type Chunk struct {
	SourceID   string
	ChunkIndex int // Document-wide, 0-based
	Text       string
	TokenCount int
	Provenance Provenance
}

// Validate checks if the chunk is valid
func (c *Chunk) Validate() error {
	if c.SourceID == "" {
		return ErrMissingSourceID
	}
	if c.Text == "" {
		return ErrEmptyText
	}
	if c.ChunkIndex < 0 {
		return ErrInvalidChunkIndex
	}
	if c.TokenCount < 0 {
		return ErrInvalidTokenCount
	}
	return nil
}
