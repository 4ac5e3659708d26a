package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/pagecontext-mcp/pkg/types"
)

// Backend names
const (
	BackendSQLite = "sqlite"
	BackendQdrant = "qdrant"
)

var (
	// ErrDimensionMismatch is returned when a vector or a configured dimension
	// does not match the store's dimension
	ErrDimensionMismatch = types.ErrDimensionMismatch
	// ErrStoreUnavailable is returned when the backing store cannot be reached
	ErrStoreUnavailable = errors.New("vector store unavailable")
	// ErrStoreWrite is returned when an upsert or delete fails
	ErrStoreWrite = errors.New("vector store write failed")
	// ErrStoreQuery is returned when a similarity query fails
	ErrStoreQuery = errors.New("vector store query failed")
	// ErrUnknownBackend is returned by Open for unsupported backends
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// VectorStore persists index entries and answers similarity queries.
// Implementations must be safe for concurrent use.
type VectorStore interface {
	// Upsert inserts or overwrites entries by id in one call
	Upsert(ctx context.Context, entries []types.IndexEntry) error

	// Query returns up to topK matches ordered by descending similarity.
	// Ties are broken by ascending id.
	Query(ctx context.Context, vector []float32, topK int) ([]types.Match, error)

	// DeleteAll removes every entry
	DeleteAll(ctx context.Context) error

	// Count returns the number of stored entries
	Count(ctx context.Context) (int, error)

	// Dimension returns the fixed vector dimension
	Dimension() int

	// Backend names the implementation
	Backend() string

	// Close releases the store's resources
	Close() error
}

// Config selects and configures a backend
type Config struct {
	Backend    string
	Dimension  int
	SQLitePath string
	QdrantAddr string
	Collection string
}

// Open creates the configured VectorStore
func Open(ctx context.Context, cfg Config) (VectorStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendSQLite:
		store, err := NewSQLiteStore(ctx, cfg.SQLitePath, cfg.Dimension)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendQdrant:
		store, err := NewQdrantStore(ctx, QdrantConfig{
			Addr:       cfg.QdrantAddr,
			Collection: cfg.Collection,
			Dimension:  cfg.Dimension,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

// validateEntries checks every entry before a write is attempted
func validateEntries(entries []types.IndexEntry, dimension int) error {
	for i := range entries {
		if err := entries[i].Validate(dimension); err != nil {
			return fmt.Errorf("entry %d (%s): %w", i, entries[i].ID, err)
		}
	}
	return nil
}

func checkQueryVector(vector []float32, dimension int) error {
	if len(vector) != dimension {
		return fmt.Errorf("%w: query has %d, store has %d", ErrDimensionMismatch, len(vector), dimension)
	}
	return nil
}
