package changes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathways-engine/domain/changes"
	"pathways-engine/domain/core/entities"
)

func mustRecords(t *testing.T, raws []map[string]interface{}) []*changes.ChangeRecord {
	t.Helper()
	records, err := changes.FromMaps(raws)
	require.NoError(t, err)
	return records
}

func TestVersionsDiff_AddAndDeleteCancelOut(t *testing.T) {
	// Arrange
	records := mustRecords(t, []map[string]interface{}{
		{"cmd": "add_node", "node_name": "Ephemeral"},
		{"cmd": "delete_node", "node_name": "Ephemeral"},
	})

	// Act
	diff := changes.NewVersionsDiff(records)

	// Assert
	assert.Empty(t, diff.AddedNodeNames)
	assert.Empty(t, diff.DeletedNodeNames)
}

func TestVersionsDiff_RenameChainKeepsBaseIdentity(t *testing.T) {
	// Arrange
	records := mustRecords(t, []map[string]interface{}{
		{"cmd": "rename_node", "old_node_name": "First", "new_node_name": "Second"},
		{"cmd": "rename_node", "old_node_name": "Second", "new_node_name": "Third"},
	})

	// Act
	diff := changes.NewVersionsDiff(records)

	// Assert
	assert.Equal(t, map[string]string{"Third": "First"}, diff.NewToOldNodeNames)
	assert.Equal(t, map[string]string{"First": "Third"}, diff.OldToNewNodeNames)
}

func TestVersionsDiff_DeleteOfRenamedNodeReportsBaseName(t *testing.T) {
	// Arrange
	records := mustRecords(t, []map[string]interface{}{
		{"cmd": "rename_node", "old_node_name": "First", "new_node_name": "Second"},
		{"cmd": "delete_node", "node_name": "Second"},
	})

	// Act
	diff := changes.NewVersionsDiff(records)

	// Assert
	assert.Equal(t, []string{"First"}, diff.DeletedNodeNames)
	assert.Empty(t, diff.NewToOldNodeNames)
}

func TestVersionsDiff_RenameOfAddedNodeStaysAdded(t *testing.T) {
	// Arrange
	records := mustRecords(t, []map[string]interface{}{
		{"cmd": "add_node", "node_name": "Fresh"},
		{"cmd": "rename_node", "old_node_name": "Fresh", "new_node_name": "Fresher"},
	})

	// Act
	diff := changes.NewVersionsDiff(records)

	// Assert
	assert.Equal(t, []string{"Fresher"}, diff.AddedNodeNames)
	assert.Empty(t, diff.NewToOldNodeNames)
}

func TestComputeTrainableNodes(t *testing.T) {
	// Arrange: two classifier-capable nodes, one renamed with its answer
	// groups intact, one with new training data.
	group := entities.AnswerGroup{
		Outcome:      entities.Outcome{Dest: "Same"},
		TrainingData: []interface{}{"an answer"},
	}
	changedGroup := entities.AnswerGroup{
		Outcome:      entities.Outcome{Dest: "Changed"},
		TrainingData: []interface{}{"another answer"},
	}

	oldStable := entities.NewDefaultNode("Stable", false)
	oldStable.Interaction.AnswerGroups = []entities.AnswerGroup{group}
	oldChanged := entities.NewDefaultNode("Changed", false)
	oldChanged.Interaction.AnswerGroups = []entities.AnswerGroup{group}

	newStable := oldStable.DeepCopy()
	newChanged := oldChanged.DeepCopy()
	newChanged.Interaction.AnswerGroups = []entities.AnswerGroup{changedGroup}

	oldNodes := map[string]*entities.Node{"Stable": oldStable, "Changed": oldChanged}
	newNodes := map[string]*entities.Node{"Renamed": newStable, "Changed": newChanged}

	diff := changes.NewVersionsDiff(mustRecords(t, []map[string]interface{}{
		{"cmd": "rename_node", "old_node_name": "Stable", "new_node_name": "Renamed"},
	}))

	// Act
	trainable := changes.ComputeTrainableNodes(oldNodes, newNodes, diff)

	// Assert
	assert.Equal(t, []string{"Renamed"}, trainable.NodeNamesWithUnchangedAnswerGroups)
	assert.Equal(t, []string{"Changed"}, trainable.NodeNamesWithChangedAnswerGroups)
}
