package jobs_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pathways-engine/application/jobs"
	"pathways-engine/domain/core/aggregates"
	"pathways-engine/infrastructure/persistence/memory"
)

func storeWithTitles(t *testing.T, titles map[string]string) *memory.DocumentStore {
	t.Helper()
	store := memory.NewDocumentStore()
	for id, title := range titles {
		_, err := store.Put(context.Background(), id, &aggregates.SerializedDocument{
			Title:        title,
			LanguageCode: "en",
		}, 0)
		require.NoError(t, err)
	}
	return store
}

func TestTitleAuditJob_ReportsLongTitles(t *testing.T) {
	// Arrange
	longTitle := strings.Repeat("a", 37)
	store := storeWithTitles(t, map[string]string{
		"short": "Fractions",
		"long":  longTitle,
	})
	job := jobs.NewTitleAuditJob(store, zap.NewNop(), 0)

	// Act
	findings, err := job.Run(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "long", findings[0].DocumentID)
	assert.Equal(t, longTitle, findings[0].Title)
	assert.Equal(t, 37, findings[0].TitleLength)
}

func TestTitleAuditJob_CountsRunesNotBytes(t *testing.T) {
	// Arrange: nine multi-byte runes stay under a limit of ten.
	store := storeWithTitles(t, map[string]string{
		"unicode": strings.Repeat("é", 9),
	})
	job := jobs.NewTitleAuditJob(store, zap.NewNop(), 10)

	// Act
	findings, err := job.Run(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestTitleAuditJob_AuditsTheHeadVersion(t *testing.T) {
	// Arrange: the title was shortened in a later version.
	store := storeWithTitles(t, map[string]string{
		"doc": strings.Repeat("a", 50),
	})
	_, err := store.Put(context.Background(), "doc", &aggregates.SerializedDocument{
		Title:        "Short again",
		LanguageCode: "en",
	}, 1)
	require.NoError(t, err)
	job := jobs.NewTitleAuditJob(store, zap.NewNop(), 0)

	// Act
	findings, err := job.Run(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Empty(t, findings)
}
