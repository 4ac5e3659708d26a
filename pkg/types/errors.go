package types

import "errors"

// Domain errors for type validation
var (
	// Index entry errors
	ErrMissingEntryID      = errors.New("entry id is required")
	ErrMissingSourceID     = errors.New("source id is required")
	ErrEmptyText           = errors.New("text cannot be empty")
	ErrInvalidChunkIndex   = errors.New("chunk index must be >= 0")
	ErrDimensionMismatch   = errors.New("vector dimension mismatch")
	ErrInvalidTokenCount   = errors.New("token count must be >= 0")
	ErrInvalidRank         = errors.New("rank must be >= 1")
	ErrInvalidSimilarity   = errors.New("score must be between 0 and 1")
	ErrInvalidMatchPercent = errors.New("match percentage must be between 0 and 100")
)
