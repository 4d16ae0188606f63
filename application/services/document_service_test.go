package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pathways-engine/application/services"
	"pathways-engine/domain/changes"
	"pathways-engine/infrastructure/persistence/memory"
	pkgerrors "pathways-engine/pkg/errors"
)

func newTestService() *services.DocumentService {
	return services.NewDocumentService(memory.NewDocumentStore(), zap.NewNop())
}

func mustChanges(t *testing.T, raws []map[string]interface{}) []*changes.ChangeRecord {
	t.Helper()
	list, err := changes.FromMaps(raws)
	require.NoError(t, err)
	return list
}

func TestDocumentService_CreateAndLoad(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc := newTestService()

	// Act
	doc, err := svc.Create(ctx, "Fractions", "Math", "learn fractions", "en")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, doc.Version())

	loaded, err := svc.Load(ctx, doc.ID().String(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Fractions", loaded.Title())
	assert.Equal(t, "Introduction", loaded.InitNodeName())
}

func TestDocumentService_ApplyChangeList(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc := newTestService()
	doc, err := svc.Create(ctx, "Fractions", "Math", "learn fractions", "en")
	require.NoError(t, err)
	id := doc.ID().String()

	changeList := mustChanges(t, []map[string]interface{}{
		{"cmd": "add_node", "node_name": "Conclusion"},
		{"cmd": "rename_node", "old_node_name": "Conclusion", "new_node_name": "Summary"},
		{
			"cmd":           "edit_document_property",
			"property_name": "title",
			"new_value":     "Fractions II",
			"old_value":     "Fractions",
		},
		{
			"cmd":           "edit_node_property",
			"node_name":    "Summary",
			"property_name": "solicit_answer_details",
			"new_value":     true,
		},
	})

	// Act
	updated, err := svc.ApplyChangeList(ctx, id, 1, changeList)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version())
	assert.Equal(t, "Fractions II", updated.Title())
	node, ok := updated.Node("Summary")
	require.True(t, ok)
	assert.True(t, node.SolicitAnswerDetails)

	// The pre-edit version stays readable.
	previous, err := svc.Load(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, "Fractions", previous.Title())
}

func TestDocumentService_ApplyChangeListStaleVersion(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc := newTestService()
	doc, err := svc.Create(ctx, "Fractions", "Math", "learn fractions", "en")
	require.NoError(t, err)
	id := doc.ID().String()

	first := mustChanges(t, []map[string]interface{}{
		{"cmd": "add_node", "node_name": "Conclusion"},
	})
	_, err = svc.ApplyChangeList(ctx, id, 1, first)
	require.NoError(t, err)

	// Act: a second editor still holds version 1.
	second := mustChanges(t, []map[string]interface{}{
		{"cmd": "add_node", "node_name": "Review"},
	})
	_, err = svc.ApplyChangeList(ctx, id, 1, second)

	// Assert
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeVersionConflict))
}

func TestDocumentService_CanMergeChangeList(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc := newTestService()
	doc, err := svc.Create(ctx, "Fractions", "Math", "learn fractions", "en")
	require.NoError(t, err)
	id := doc.ID().String()

	composite := mustChanges(t, []map[string]interface{}{
		{
			"cmd":           "edit_node_property",
			"node_name":    "Introduction",
			"property_name": "solicit_answer_details",
			"new_value":     true,
		},
	})
	_, err = svc.ApplyChangeList(ctx, id, 1, composite)
	require.NoError(t, err)

	stale := mustChanges(t, []map[string]interface{}{
		{
			"cmd":           "edit_node_property",
			"node_name":    "Introduction",
			"property_name": "card_is_checkpoint",
			"new_value":     true,
		},
	})

	// Act
	mergeable, needsReview, err := svc.CanMergeChangeList(ctx, id, 1, composite, stale)

	// Assert
	require.NoError(t, err)
	assert.True(t, mergeable)
	assert.False(t, needsReview)
}

func TestDocumentService_ValidateForPublicationRejectsDraft(t *testing.T) {
	// Arrange: a fresh document has no interaction and no terminal node.
	ctx := context.Background()
	svc := newTestService()
	doc, err := svc.Create(ctx, "Fractions", "Math", "", "en")
	require.NoError(t, err)

	// Act
	err = svc.ValidateForPublication(ctx, doc.ID().String())

	// Assert
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeValidation))
}

func TestDocumentService_ExportRoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc := newTestService()
	doc, err := svc.Create(ctx, "Fractions", "Math", "learn fractions", "en")
	require.NoError(t, err)

	// Act
	data, err := svc.Export(ctx, doc.ID().String())
	require.NoError(t, err)

	svc2 := newTestService()
	imported, err := svc2.Import(ctx, data)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Fractions", imported.Title())
	assert.Equal(t, doc.InitNodeName(), imported.InitNodeName())
}
