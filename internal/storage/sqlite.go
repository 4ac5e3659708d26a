package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/pagecontext-mcp/pkg/types"
)

const metaKeyDimension = "dimension"

// SQLiteStore implements VectorStore using SQLite
type SQLiteStore struct {
	db        *sql.DB
	dimension int
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer; this also keeps ":memory:"
	// databases on one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLiteStore opens (or creates) a store at dbPath with a fixed vector
// dimension. Opening an existing store with a different dimension fails
// with ErrDimensionMismatch.
func NewSQLiteStore(ctx context.Context, dbPath string, dimension int) (*SQLiteStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrDimensionMismatch, dimension)
	}
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrStoreUnavailable, err)
	}

	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	s := &SQLiteStore{db: db, dimension: dimension}
	if err := s.bindDimension(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// bindDimension records the dimension on first open and verifies it after
func (s *SQLiteStore) bindDimension(ctx context.Context) error {
	var stored string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM store_meta WHERE key = ?", metaKeyDimension).Scan(&stored)
	if err == sql.ErrNoRows {
		_, err = s.db.ExecContext(ctx, "INSERT INTO store_meta (key, value) VALUES (?, ?)",
			metaKeyDimension, strconv.Itoa(s.dimension))
		if err != nil {
			return fmt.Errorf("failed to record dimension: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read dimension: %w", err)
	}

	existing, err := strconv.Atoi(stored)
	if err != nil {
		return fmt.Errorf("invalid stored dimension %q: %w", stored, err)
	}
	if existing != s.dimension {
		return fmt.Errorf("%w: store has %d, configured %d", ErrDimensionMismatch, existing, s.dimension)
	}
	return nil
}

// Upsert writes all entries in a single transaction. Nothing is written if
// any entry is invalid.
func (s *SQLiteStore) Upsert(ctx context.Context, entries []types.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := validateEntries(entries, s.dimension); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (
			id, vector, text, chunk_index, source_id, token_count,
			path, tag_name, tag_id, tag_class, html_snippet, title,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			vector = excluded.vector,
			text = excluded.text,
			chunk_index = excluded.chunk_index,
			source_id = excluded.source_id,
			token_count = excluded.token_count,
			path = excluded.path,
			tag_name = excluded.tag_name,
			tag_id = excluded.tag_id,
			tag_class = excluded.tag_class,
			html_snippet = excluded.html_snippet,
			title = excluded.title,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("%w: prepare: %v", ErrStoreWrite, err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now()
	for i := range entries {
		e := &entries[i]
		m := &e.Metadata
		_, err := stmt.ExecContext(ctx,
			e.ID, serializeVector(e.Vector), m.Text, m.ChunkIndex, m.SourceID, m.TokenCount,
			m.Path, m.TagName, m.TagID, m.TagClass, m.HTMLSnippet, m.Title,
			now, now)
		if err != nil {
			return fmt.Errorf("%w: entry %s: %v", ErrStoreWrite, e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStoreWrite, err)
	}
	return nil
}

// Query implements VectorStore
func (s *SQLiteStore) Query(ctx context.Context, vector []float32, topK int) ([]types.Match, error) {
	if err := checkQueryVector(vector, s.dimension); err != nil {
		return nil, err
	}

	candidates, err := searchVector(ctx, s.db, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreQuery, err)
	}
	if len(candidates) == 0 {
		return []types.Match{}, nil
	}

	meta, err := s.loadMetadata(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreQuery, err)
	}

	matches := make([]types.Match, 0, len(candidates))
	for _, c := range candidates {
		m, ok := meta[c.id]
		if !ok {
			continue // deleted between the two reads
		}
		matches = append(matches, types.Match{ID: c.id, Score: c.score, Metadata: m})
	}
	return matches, nil
}

// loadMetadata fetches metadata rows for the given candidates
func (s *SQLiteStore) loadMetadata(ctx context.Context, candidates []candidate) (map[string]types.EntryMetadata, error) {
	placeholders := make([]string, len(candidates))
	args := make([]interface{}, len(candidates))
	for i, c := range candidates {
		placeholders[i] = "?"
		args[i] = c.id
	}

	query := `
		SELECT id, text, chunk_index, source_id, token_count,
		       path, tag_name, tag_id, tag_class, html_snippet, title
		FROM entries
		WHERE id IN (` + strings.Join(placeholders, ",") + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]types.EntryMetadata, len(candidates))
	for rows.Next() {
		var id string
		var m types.EntryMetadata
		if err := rows.Scan(&id, &m.Text, &m.ChunkIndex, &m.SourceID, &m.TokenCount,
			&m.Path, &m.TagName, &m.TagID, &m.TagClass, &m.HTMLSnippet, &m.Title); err != nil {
			return nil, err
		}
		out[id] = m
	}
	return out, rows.Err()
}

// DeleteAll implements VectorStore
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return nil
}

// Count implements VectorStore
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreQuery, err)
	}
	return n, nil
}

// Dimension implements VectorStore
func (s *SQLiteStore) Dimension() int {
	return s.dimension
}

// Backend implements VectorStore
func (s *SQLiteStore) Backend() string {
	return BackendSQLite + "/" + BuildMode
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
