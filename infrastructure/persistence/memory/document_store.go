// Package memory provides an in-process DocumentStore, used by tests
// and by single-node deployments that keep the corpus in memory.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"pathways-engine/domain/core/aggregates"
	"pathways-engine/infrastructure/persistence/abstractions"
	pkgerrors "pathways-engine/pkg/errors"
)

// DocumentStore keeps every stored version of every document. All
// methods are safe for concurrent use.
type DocumentStore struct {
	mu sync.RWMutex
	// versions[id][i] holds version i+1.
	versions map[string][]*aggregates.SerializedDocument

	now func() time.Time
}

var _ abstractions.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore returns an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		versions: map[string][]*aggregates.SerializedDocument{},
		now:      time.Now,
	}
}

// Get retrieves one version of a document. abstractions.VersionLatest
// selects the newest.
func (s *DocumentStore) Get(ctx context.Context, id string, version int) (*aggregates.SerializedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.versions[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("document " + id)
	}
	if version == abstractions.VersionLatest {
		version = len(history)
	}
	if version < 1 || version > len(history) {
		return nil, pkgerrors.NewNotFoundError("document " + id)
	}
	return copyRecord(history[version-1])
}

// Put appends a new version, enforcing compare-and-swap on the current
// head.
func (s *DocumentStore) Put(ctx context.Context, id string, record *aggregates.SerializedDocument, expectedVersion int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	head := len(s.versions[id])
	if head != expectedVersion {
		return 0, pkgerrors.NewVersionConflictError(id, expectedVersion, head)
	}

	stored, err := copyRecord(record)
	if err != nil {
		return 0, err
	}
	newVersion := head + 1
	now := s.now().UTC().Format(time.RFC3339)

	stored.ID = id
	stored.Version = newVersion
	stored.LastUpdated = now
	if newVersion == 1 {
		stored.CreatedOn = now
	} else {
		stored.CreatedOn = s.versions[id][0].CreatedOn
	}

	s.versions[id] = append(s.versions[id], stored)
	return newVersion, nil
}

// Delete removes a document and its history. Deleting an unknown id is
// a NotFound error.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.versions[id]; !ok {
		return pkgerrors.NewNotFoundError("document " + id)
	}
	delete(s.versions, id)
	return nil
}

// ListIDs returns the ids of every stored document.
func (s *DocumentStore) ListIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.versions))
	for id := range s.versions {
		ids = append(ids, id)
	}
	return ids, nil
}

// copyRecord detaches the stored record from the caller's copy.
func copyRecord(record *aggregates.SerializedDocument) (*aggregates.SerializedDocument, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to copy document record").WithCause(err)
	}
	var out aggregates.SerializedDocument
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, pkgerrors.NewInternalError("failed to copy document record").WithCause(err)
	}
	return &out, nil
}
