package types

// SearchResult represents a single ranked search result
type SearchResult struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"` // Position in result set (1-based)

	// Scoring
	Score           float64 `json:"score"`            // Similarity clamped to [0, 1]
	MatchPercentage float64 `json:"match_percentage"` // Score * 100, two decimals

	Text        string `json:"text"`
	HTMLSnippet string `json:"html_snippet,omitempty"`
	SourceID    string `json:"source_id"`
	ChunkIndex  int    `json:"chunk_index"`
	Path        string `json:"path,omitempty"`
	TagName     string `json:"tag_name,omitempty"`
	TagID       string `json:"tag_id,omitempty"`
	TagClass    string `json:"tag_class,omitempty"`
	Title       string `json:"title,omitempty"`
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if sr.Rank < 1 {
		return ErrInvalidRank
	}
	if sr.Score < 0 || sr.Score > 1 {
		return ErrInvalidSimilarity
	}
	if sr.MatchPercentage < 0 || sr.MatchPercentage > 100 {
		return ErrInvalidMatchPercent
	}
	if sr.Text == "" {
		return ErrEmptyText
	}
	return nil
}
