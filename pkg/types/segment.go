package types

// Provenance is the structural metadata a segment passes on to every chunk
// cut from it.
type Provenance struct {
	Path        string
	TagName     string
	TagID       string
	TagClass    string
	HTMLSnippet string
	Title       string
}

// Segment is a structurally meaningful piece of a page.
type Segment struct {
	Text        string
	HTMLSnippet string
	Path        string
	TagName     string
	TagID       string
	TagClass    string
	Title       string
}

// Provenance returns the metadata carried from this segment into its chunks.
func (s Segment) Provenance() Provenance {
	return Provenance{
		Path:        s.Path,
		TagName:     s.TagName,
		TagID:       s.TagID,
		TagClass:    s.TagClass,
		HTMLSnippet: s.HTMLSnippet,
		Title:       s.Title,
	}
}
