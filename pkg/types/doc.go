// Package types provides shared type definitions for the PageContext MCP server.
//
// This package defines domain types used across the indexing and retrieval
// pipeline: segments extracted from a page, token-bounded chunks, the entries
// persisted in the vector store, and ranked search results.
//
// # Core Types
//
// Segment is one structurally meaningful piece of a page:
//
//	seg := types.Segment{
//	    Text:    "Deploy automations powered by AI.",
//	    Path:    "home",
//	    TagName: "p",
//	}
//
// Chunk is a token-bounded slice of a segment's text. It inherits the
// segment's provenance and carries a document-wide ChunkIndex:
//
//	chunk := types.Chunk{
//	    SourceID:   "https://example.com/",
//	    ChunkIndex: 0,
//	    Text:       "Deploy automations powered by AI.",
//	    Provenance: seg.Provenance(),
//	}
//
// IndexEntry is the persisted (id, vector, metadata) record. Its metadata is a
// fixed-shape EntryMetadata record rather than a free-form map, and is
// validated at the store boundary:
//
//	if err := entry.Validate(dimension); err != nil {
//	    return err
//	}
//
// # Search Results
//
// SearchResult is a ranked, post-processed view of a stored entry. Scores are
// clamped to the [0, 1] range and MatchPercentage is the same value scaled to
// 0-100 for display.
//
// # Bulk Indexing Reports
//
// SourceResult and Report make partial failure a first-class return value:
// each source gets its own status and error message, and the report carries
// totals across all sources.
package types
