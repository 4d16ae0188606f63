package changes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathways-engine/domain/changes"
	pkgerrors "pathways-engine/pkg/errors"
)

func TestFromMap_ValidCommands(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
	}{
		{
			name: "add node",
			raw:  map[string]interface{}{"cmd": "add_node", "node_name": "Second"},
		},
		{
			name: "rename node",
			raw: map[string]interface{}{
				"cmd": "rename_node", "old_node_name": "Second", "new_node_name": "Third",
			},
		},
		{
			name: "edit node property with optional old value",
			raw: map[string]interface{}{
				"cmd":           "edit_node_property",
				"node_name":     "Second",
				"property_name": "content",
				"new_value":     map[string]interface{}{"content_id": "content", "html": "<p>hi</p>"},
				"old_value":     nil,
			},
		},
		{
			name: "migrate node schema",
			raw: map[string]interface{}{
				"cmd": "migrate_node_schema_to_latest_version", "from_version": 41, "to_version": 49,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := changes.FromMap(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.raw["cmd"], record.Cmd)
		})
	}
}

func TestFromMap_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
		want string
	}{
		{
			name: "missing cmd",
			raw:  map[string]interface{}{"node_name": "Second"},
			want: "missing cmd",
		},
		{
			name: "unknown command",
			raw:  map[string]interface{}{"cmd": "explode_node", "node_name": "Second"},
			want: "not allowed",
		},
		{
			name: "deprecated command",
			raw:  map[string]interface{}{"cmd": "add_gadget"},
			want: "deprecated",
		},
		{
			name: "missing required attribute",
			raw:  map[string]interface{}{"cmd": "rename_node", "old_node_name": "Second"},
			want: "required attributes are missing",
		},
		{
			name: "extra attribute",
			raw:  map[string]interface{}{"cmd": "add_node", "node_name": "Second", "color": "red"},
			want: "extra attributes",
		},
		{
			name: "deprecated property value",
			raw: map[string]interface{}{
				"cmd":           "edit_node_property",
				"node_name":     "Second",
				"property_name": "fallbacks",
				"new_value":     []interface{}{},
			},
			want: "deprecated",
		},
		{
			name: "unknown node property",
			raw: map[string]interface{}{
				"cmd":           "edit_node_property",
				"node_name":     "Second",
				"property_name": "sparkles",
				"new_value":     true,
			},
			want: "not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := changes.FromMap(tt.raw)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeMalformedChange))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestChangeRecord_ToMapKeepsDeclaredAttrsOnly(t *testing.T) {
	// Arrange
	record, err := changes.FromMap(map[string]interface{}{
		"cmd": "rename_node", "old_node_name": "Second", "new_node_name": "Third",
	})
	require.NoError(t, err)

	// Act
	wire := record.ToMap()

	// Assert
	assert.Equal(t, map[string]interface{}{
		"cmd":           "rename_node",
		"old_node_name": "Second",
		"new_node_name": "Third",
	}, wire)
}
