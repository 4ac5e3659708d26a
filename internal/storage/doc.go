// Package storage persists index entries and answers similarity queries.
//
// Two VectorStore backends are provided:
//   - SQLite (default): an embedded database file, or ":memory:" for tests
//   - Qdrant: a remote collection over gRPC
//
// Both fix the vector dimension when the store is opened. Opening an existing
// store with a different dimension fails with ErrDimensionMismatch, and
// vectors of the wrong size are rejected at upsert time.
//
// # Database Schema
//
// Tables:
//   - schema_version: applied migration versions (semver)
//   - store_meta: store-wide settings, currently the vector dimension
//   - entries: one row per chunk, keyed by its deterministic id, holding the
//     little-endian float32 vector and the fixed metadata columns
//
// # Basic Usage
//
//	store, err := storage.Open(ctx, storage.Config{
//	    Backend:    storage.BackendSQLite,
//	    SQLitePath: "~/.pagecontext/index.db",
//	    Dimension:  768,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.Upsert(ctx, entries) // overwrites existing ids
//	matches, err := store.Query(ctx, queryVector, 10)
//
// # Similarity
//
// Scores are raw cosine similarity in [-1, 1]. Matches are ordered by score
// descending with ties broken by ascending id, so results are deterministic.
//
// # Build Modes
//
// The default build uses modernc.org/sqlite and ranks in Go. Building with
// the sqlite_vec tag switches to github.com/mattn/go-sqlite3 and ranks with
// vec_distance_cosine inside SQLite.
package storage
