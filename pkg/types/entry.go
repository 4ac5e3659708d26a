package types

// EntryMetadata is the fixed-shape record stored next to every vector.
type EntryMetadata struct {
	Text        string `json:"text"`
	ChunkIndex  int    `json:"chunk_index"`
	SourceID    string `json:"source_id"`
	TokenCount  int    `json:"token_count"`
	Path        string `json:"path,omitempty"`
	TagName     string `json:"tag_name,omitempty"`
	TagID       string `json:"tag_id,omitempty"`
	TagClass    string `json:"tag_class,omitempty"`
	HTMLSnippet string `json:"html_snippet,omitempty"`
	Title       string `json:"title,omitempty"`
}

// Validate checks the required metadata fields.
func (m *EntryMetadata) Validate() error {
	if m.Text == "" {
		return ErrEmptyText
	}
	if m.SourceID == "" {
		return ErrMissingSourceID
	}
	if m.ChunkIndex < 0 {
		return ErrInvalidChunkIndex
	}
	if m.TokenCount < 0 {
		return ErrInvalidTokenCount
	}
	return nil
}

// ApplyProvenance copies provenance fields onto the metadata record.
// Chunk-local fields (text, index, source, token count) are left untouched.
func (m *EntryMetadata) ApplyProvenance(p Provenance) {
	m.Path = p.Path
	m.TagName = p.TagName
	m.TagID = p.TagID
	m.TagClass = p.TagClass
	m.HTMLSnippet = p.HTMLSnippet
	m.Title = p.Title
}

// IndexEntry is a persisted (id, vector, metadata) record
type IndexEntry struct {
	ID       string
	Vector   []float32
	Metadata EntryMetadata
}

// Validate checks the entry against the store's vector dimension.
// A dimension of 0 skips the dimension check.
func (e *IndexEntry) Validate(dimension int) error {
	if e.ID == "" {
		return ErrMissingEntryID
	}
	if dimension > 0 && len(e.Vector) != dimension {
		return ErrDimensionMismatch
	}
	return e.Metadata.Validate()
}

// Match is a raw store hit before post-processing
type Match struct {
	ID       string
	Score    float64
	Metadata EntryMetadata
}
