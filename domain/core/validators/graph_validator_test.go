package validators_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathways-engine/domain/core/aggregates"
	"pathways-engine/domain/core/entities"
	"pathways-engine/domain/core/validators"
)

const terminalInteractionID = "EndExploration"

// publishableDocument builds a two node graph that passes the strict
// pass: Introduction -> End, with End terminal.
func publishableDocument(t *testing.T) *aggregates.Document {
	t.Helper()
	doc := aggregates.NewDefaultDocument(
		aggregates.NewDocumentID(), "Fractions", "Math", "Learn fractions", "en", 49)
	require.NoError(t, doc.AddNodes([]string{"End"}))

	init := doc.InitNode()
	init.Interaction.ID = "TextInput"
	init.Interaction.DefaultOutcome.Dest = "End"

	end, _ := doc.Node("End")
	end.Interaction.ID = terminalInteractionID
	end.Interaction.DefaultOutcome = nil
	return doc
}

func TestValidate_PublishableDocument(t *testing.T) {
	doc := publishableDocument(t)

	assert.NoError(t, validators.Validate(doc, false))
	assert.NoError(t, validators.Validate(doc, true))
}

func TestValidate_RejectsUnknownDest(t *testing.T) {
	// Arrange
	doc := publishableDocument(t)
	doc.InitNode().Interaction.DefaultOutcome.Dest = "Nowhere"

	// Act
	err := validators.Validate(doc, false)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nowhere")
}

func TestValidate_RejectsRefresherReferenceOffSelfLoop(t *testing.T) {
	// Arrange
	doc := publishableDocument(t)
	refresher := "another-doc"
	doc.InitNode().Interaction.DefaultOutcome.RefresherDocumentID = &refresher

	// Act
	err := validators.Validate(doc, false)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresher document ID")
}

func TestValidate_RejectsDuplicateTags(t *testing.T) {
	doc := publishableDocument(t)
	doc.UpdateTags([]string{"fractions", "fractions"})

	err := validators.Validate(doc, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidate_RejectsUndeclaredNodeParamChange(t *testing.T) {
	// Arrange
	doc := publishableDocument(t)
	doc.InitNode().ParamChanges = []entities.ParamChange{{
		Name:              "theta",
		GeneratorID:       "Copier",
		CustomizationArgs: map[string]interface{}{},
	}}

	// Act
	err := validators.Validate(doc, false)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theta")
}

func TestValidateStrict_InitNodeMustBeCheckpoint(t *testing.T) {
	doc := publishableDocument(t)
	doc.InitNode().CardIsCheckpoint = false

	err := validators.Validate(doc, true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkpoint")
}

func TestValidateStrict_TerminalNodeMustNotBeCheckpoint(t *testing.T) {
	doc := publishableDocument(t)
	end, _ := doc.Node("End")
	end.CardIsCheckpoint = true

	err := validators.Validate(doc, true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal node End")
}

func TestValidateStrict_CheckpointCountUpperBound(t *testing.T) {
	// Arrange: a chain of 10 nodes where the first 9 are checkpoints.
	doc := publishableDocument(t)
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	require.NoError(t, doc.AddNodes(names))

	doc.InitNode().Interaction.DefaultOutcome.Dest = "A"
	prev := "A"
	for _, name := range names[1:] {
		node, _ := doc.Node(prev)
		node.Interaction.ID = "TextInput"
		node.Interaction.DefaultOutcome.Dest = name
		node.CardIsCheckpoint = true
		prev = name
	}
	last, _ := doc.Node(prev)
	last.Interaction.ID = "TextInput"
	last.Interaction.DefaultOutcome.Dest = "End"
	last.CardIsCheckpoint = true

	// Act
	err := validators.Validate(doc, true)

	// Assert: 9 checkpoints exceed the limit of 8.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkpoint count")
}

func TestValidateStrict_BypassableCheckpointRejected(t *testing.T) {
	// Arrange: Introduction branches to Left and Right, both reach End.
	// Left is a checkpoint, but the Right branch bypasses it.
	doc := publishableDocument(t)
	require.NoError(t, doc.AddNodes([]string{"Left", "Right"}))

	init := doc.InitNode()
	init.Interaction.AnswerGroups = []entities.AnswerGroup{
		{Outcome: entities.Outcome{Dest: "Left", Feedback: entities.SubtitledHTML{ContentID: "feedback_1"}}},
	}
	init.Interaction.DefaultOutcome.Dest = "Right"

	for _, name := range []string{"Left", "Right"} {
		node, _ := doc.Node(name)
		node.Interaction.ID = "TextInput"
		node.Interaction.DefaultOutcome.Dest = "End"
	}
	left, _ := doc.Node("Left")
	left.CardIsCheckpoint = true

	// Act
	err := validators.Validate(doc, true)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bypassable")
}

func TestValidateStrict_UnreachableNodeIsWarning(t *testing.T) {
	// Arrange
	doc := publishableDocument(t)
	require.NoError(t, doc.AddNodes([]string{"Orphan"}))
	orphan, _ := doc.Node("Orphan")
	orphan.Interaction.ID = "TextInput"
	orphan.Interaction.DefaultOutcome.Dest = "End"

	// Act
	lenientErr := validators.Validate(doc, false)
	strictErr := validators.Validate(doc, true)

	// Assert: only the strict pass reports it, as a combined warning.
	assert.NoError(t, lenientErr)
	require.Error(t, strictErr)
	assert.Contains(t, strictErr.Error(), "not reachable")
	assert.Contains(t, strictErr.Error(), "Orphan")
}

func TestValidateStrict_DeadEndIsWarning(t *testing.T) {
	// Arrange: Trap self-loops and never reaches a terminal.
	doc := publishableDocument(t)
	require.NoError(t, doc.AddNodes([]string{"Trap"}))
	init := doc.InitNode()
	init.Interaction.AnswerGroups = []entities.AnswerGroup{
		{Outcome: entities.Outcome{Dest: "Trap", Feedback: entities.SubtitledHTML{ContentID: "feedback_1"}}},
	}
	trap, _ := doc.Node("Trap")
	trap.Interaction.ID = "TextInput"

	// Act
	err := validators.Validate(doc, true)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "impossible to complete")
	assert.Contains(t, err.Error(), "Trap")
}

func TestValidateStrict_SelfLoopLabelledCorrectRejected(t *testing.T) {
	// Arrange
	doc := publishableDocument(t)
	init := doc.InitNode()
	init.Interaction.AnswerGroups = []entities.AnswerGroup{
		{Outcome: entities.Outcome{
			Dest:              doc.InitNodeName(),
			Feedback:          entities.SubtitledHTML{ContentID: "feedback_1"},
			LabelledAsCorrect: true,
		}},
	}

	// Act
	err := validators.Validate(doc, true)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "labelled correct")
}

func TestValidateStrict_MissingObjectiveIsCombinedWarning(t *testing.T) {
	// Arrange
	doc := publishableDocument(t)
	doc.UpdateObjective("")

	// Act
	err := validators.Validate(doc, true)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please fix the following issues")
	assert.Contains(t, err.Error(), "1. an objective must be specified")
}
