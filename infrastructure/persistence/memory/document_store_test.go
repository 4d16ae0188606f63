package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathways-engine/domain/core/aggregates"
	"pathways-engine/infrastructure/persistence/abstractions"
	"pathways-engine/infrastructure/persistence/memory"
	pkgerrors "pathways-engine/pkg/errors"
)

func record(title string) *aggregates.SerializedDocument {
	return &aggregates.SerializedDocument{
		ID:                    "doc-1",
		Title:                 title,
		LanguageCode:          "en",
		DocumentSchemaVersion: 54,
		NodeSchemaVersion:     49,
		InitNodeName:          "Introduction",
	}
}

func TestDocumentStore_PutAndGet(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := memory.NewDocumentStore()

	// Act
	v1, err := store.Put(ctx, "doc-1", record("First"), 0)
	require.NoError(t, err)
	v2, err := store.Put(ctx, "doc-1", record("Second"), v1)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, v1)
	assert.Equal(t, 2, v2)

	head, err := store.Get(ctx, "doc-1", abstractions.VersionLatest)
	require.NoError(t, err)
	assert.Equal(t, "Second", head.Title)
	assert.Equal(t, 2, head.Version)

	first, err := store.Get(ctx, "doc-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "First", first.Title)
	assert.Equal(t, first.CreatedOn, head.CreatedOn)
}

func TestDocumentStore_PutRejectsStaleVersion(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := memory.NewDocumentStore()
	_, err := store.Put(ctx, "doc-1", record("First"), 0)
	require.NoError(t, err)
	_, err = store.Put(ctx, "doc-1", record("Second"), 1)
	require.NoError(t, err)

	// Act: a writer still holding version 1 loses the race.
	_, err = store.Put(ctx, "doc-1", record("Stale"), 1)

	// Assert
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeVersionConflict))
}

func TestDocumentStore_GetUnknown(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDocumentStore()

	_, err := store.Get(ctx, "missing", abstractions.VersionLatest)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))

	_, errPut := store.Put(ctx, "doc-1", record("First"), 0)
	require.NoError(t, errPut)
	_, err = store.Get(ctx, "doc-1", 5)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}

func TestDocumentStore_StoredRecordIsDetached(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := memory.NewDocumentStore()
	original := record("First")
	_, err := store.Put(ctx, "doc-1", original, 0)
	require.NoError(t, err)

	// Act: mutating the caller's record after the write.
	original.Title = "Mutated"

	// Assert
	stored, err := store.Get(ctx, "doc-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "First", stored.Title)
}

func TestDocumentStore_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDocumentStore()
	_, err := store.Put(ctx, "doc-1", record("First"), 0)
	require.NoError(t, err)

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, ids)

	require.NoError(t, store.Delete(ctx, "doc-1"))
	assert.True(t, pkgerrors.IsType(store.Delete(ctx, "doc-1"), pkgerrors.ErrorTypeNotFound))

	ids, err = store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
