package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validEntry() IndexEntry {
	return IndexEntry{
		ID:     "abc:0",
		Vector: []float32{0.1, 0.2, 0.3},
		Metadata: EntryMetadata{
			Text:       "hello",
			SourceID:   "https://example.com",
			TokenCount: 1,
		},
	}
}

func TestIndexEntryValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*IndexEntry)
		dim     int
		wantErr error
	}{
		{"valid", func(e *IndexEntry) {}, 3, nil},
		{"dimension check skipped", func(e *IndexEntry) {}, 0, nil},
		{"missing id", func(e *IndexEntry) { e.ID = "" }, 3, ErrMissingEntryID},
		{"wrong dimension", func(e *IndexEntry) {}, 4, ErrDimensionMismatch},
		{"empty text", func(e *IndexEntry) { e.Metadata.Text = "" }, 3, ErrEmptyText},
		{"missing source", func(e *IndexEntry) { e.Metadata.SourceID = "" }, 3, ErrMissingSourceID},
		{"negative index", func(e *IndexEntry) { e.Metadata.ChunkIndex = -1 }, 3, ErrInvalidChunkIndex},
		{"negative tokens", func(e *IndexEntry) { e.Metadata.TokenCount = -1 }, 3, ErrInvalidTokenCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(&e)
			err := e.Validate(tt.dim)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApplyProvenance(t *testing.T) {
	md := EntryMetadata{Text: "t", ChunkIndex: 2, SourceID: "s", TokenCount: 1}
	md.ApplyProvenance(Segment{
		Path: "/docs", TagName: "p", TagID: "x", TagClass: "lead",
		HTMLSnippet: "<p>t</p>", Title: "Docs",
	}.Provenance())

	assert.Equal(t, EntryMetadata{
		Text: "t", ChunkIndex: 2, SourceID: "s", TokenCount: 1,
		Path: "/docs", TagName: "p", TagID: "x", TagClass: "lead",
		HTMLSnippet: "<p>t</p>", Title: "Docs",
	}, md)
}

func TestSearchResultValidate(t *testing.T) {
	r := SearchResult{Rank: 1, Score: 0.5, MatchPercentage: 50, Text: "x"}
	assert.NoError(t, r.Validate())

	r.Rank = 0
	assert.ErrorIs(t, r.Validate(), ErrInvalidRank)

	r = SearchResult{Rank: 1, Score: 1.5, MatchPercentage: 50, Text: "x"}
	assert.ErrorIs(t, r.Validate(), ErrInvalidSimilarity)

	r = SearchResult{Rank: 1, Score: 0.5, MatchPercentage: 150, Text: "x"}
	assert.ErrorIs(t, r.Validate(), ErrInvalidMatchPercent)
}

func TestReportAdd(t *testing.T) {
	var r Report
	r.Add(SourceResult{SourceID: "a", Status: StatusOK, ChunksIndexed: 3})
	r.Add(SourceResult{SourceID: "b", Status: StatusError, Error: "boom"})
	r.Add(SourceResult{SourceID: "c", Status: StatusOK, ChunksIndexed: 2})

	assert.Len(t, r.Sources, 3)
	assert.Equal(t, 2, r.Succeeded)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 5, r.TotalChunks)
	assert.False(t, r.Sources[1].OK())
}
