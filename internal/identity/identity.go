// Package identity assigns deterministic identifiers to indexed chunks.
//
// An id has the form "<source-uuid>:<chunk-index>" where the source part is a
// name-based (SHA-1, version 5) UUID of the source identifier in the URL
// namespace. The prefix is fixed width and cannot contain ':', so ids from
// different sources never collide and re-indexing a source reproduces the
// same ids.
package identity

import (
	"strconv"

	"github.com/google/uuid"
)

// SourceKey returns the namespaced UUID for a source identifier.
func SourceKey(sourceID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceID)).String()
}

// Assign returns the id for the chunk at chunkIndex within sourceID.
func Assign(sourceID string, chunkIndex int) string {
	return SourceKey(sourceID) + ":" + strconv.Itoa(chunkIndex)
}

// PointUUID maps an id onto a UUID for stores that only accept UUID keys.
func PointUUID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}
