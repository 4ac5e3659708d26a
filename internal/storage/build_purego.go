//go:build purego || !sqlite_vec

package storage

// Default build: pure Go SQLite, no C compiler required. Similarity is
// computed in Go over all stored vectors.
//
//   CGO_ENABLED=0 go build ./...

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver name
	DriverName = "sqlite"

	// VectorExtensionAvailable reports whether SQL-side vector distance is used
	VectorExtensionAvailable = false

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
