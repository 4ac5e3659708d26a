//go:build sqlite_vec

package storage

// Compiled with CGO and the sqlite_vec tag. Similarity ranking runs inside
// SQLite through vec_distance_cosine.
//
//   CGO_ENABLED=1 go build -tags sqlite_vec ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver name
	DriverName = "sqlite3"

	// VectorExtensionAvailable reports whether SQL-side vector distance is used
	VectorExtensionAvailable = true

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
