// Package abstractions declares the storage contracts the engine
// depends on. The engine itself never writes; callers load a document,
// compute a new version and persist it with compare-and-swap semantics.
package abstractions

import (
	"context"

	"pathways-engine/domain/core/aggregates"
)

// VersionLatest requests the newest stored version of a document.
const VersionLatest = 0

// DocumentStore persists serialized documents by id and version.
type DocumentStore interface {
	// Get retrieves the given version of a document, or the latest one
	// for VersionLatest. Returns a NotFound error when the id or the
	// version does not exist.
	Get(ctx context.Context, id string, version int) (*aggregates.SerializedDocument, error)

	// Put stores record as the next version of the document, provided
	// the stored head is still expectedVersion. Returns the new version
	// number, or a VersionConflict error when the head has advanced.
	// expectedVersion 0 creates the document and fails if it exists.
	Put(ctx context.Context, id string, record *aggregates.SerializedDocument, expectedVersion int) (int, error)

	// Delete removes a document and its whole version history.
	Delete(ctx context.Context, id string) error

	// ListIDs returns the ids of all stored documents.
	ListIDs(ctx context.Context) ([]string, error)
}
