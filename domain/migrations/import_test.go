package migrations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathways-engine/domain/migrations"
	pkgerrors "pathways-engine/pkg/errors"
)

const documentV46YAML = `
id: doc-yaml-1
title: Fractions
category: Math
objective: Learn fractions
language_code: en
tags: []
blurb: ""
author_notes: ""
document_schema_version: 46
node_schema_version: 41
init_node_name: Introduction
param_specs: {}
param_changes: []
auto_narration_enabled: true
correctness_feedback_enabled: false
nodes:
  Introduction:
    content:
      content_id: content
      html: <p>hello</p>
    param_changes: []
    interaction:
      id: TextInput
      customization_args: {}
      answer_groups: []
      default_outcome:
        dest: End
        feedback:
          content_id: default_outcome
          html: ""
        labelled_as_correct: false
        param_changes: []
        refresher_document_id: null
        missing_prerequisite_skill_id: null
      confirmed_unclassified_answers: []
      hints: []
      solution: null
    recorded_voiceovers:
      voiceovers_mapping:
        content: {}
        default_outcome: {}
    written_translations:
      translations_mapping:
        content: {}
        default_outcome: {}
    solicit_answer_details: false
    next_content_id_index: 0
  End:
    content:
      content_id: content
      html: <p>done</p>
    param_changes: []
    interaction:
      id: EndExploration
      customization_args: {}
      answer_groups: []
      default_outcome: null
      confirmed_unclassified_answers: []
      hints: []
      solution: null
    recorded_voiceovers:
      voiceovers_mapping:
        content: {}
    written_translations:
      translations_mapping:
        content: {}
    solicit_answer_details: false
    next_content_id_index: 0
`

func TestFromYAML_MigratesToCurrentSchema(t *testing.T) {
	// Act
	doc, err := migrations.FromYAML([]byte(documentV46YAML))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "doc-yaml-1", doc.ID().String())
	assert.Equal(t, migrations.CurrentNodeSchemaVersion, doc.NodeSchemaVersion())
	assert.Equal(t, "Introduction", doc.InitNodeName())

	// The checkpoint flag was introduced mid-chain and lands only on
	// the initial node.
	assert.True(t, doc.InitNode().CardIsCheckpoint)
	end, ok := doc.Node("End")
	require.True(t, ok)
	assert.False(t, end.CardIsCheckpoint)
	assert.Nil(t, end.LinkedSkillID)
}

func TestFromYAML_RoundTripsThroughToYAML(t *testing.T) {
	// Arrange
	doc, err := migrations.FromYAML([]byte(documentV46YAML))
	require.NoError(t, err)

	// Act
	data, err := migrations.ToYAML(doc)
	require.NoError(t, err)
	restored, err := migrations.FromYAML(data)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, doc.ID(), restored.ID())
	assert.Equal(t, doc.Title(), restored.Title())
	assert.ElementsMatch(t, doc.NodeNames(), restored.NodeNames())
	assert.Equal(t, doc.NodeSchemaVersion(), restored.NodeSchemaVersion())
}

func TestFromYAML_MalformedInput(t *testing.T) {
	_, err := migrations.FromYAML([]byte("::not yaml::"))

	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeValidation))
}
