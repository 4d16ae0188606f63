// Package changes models the edit commands applied to a document and
// the version diffs derived from an ordered list of them.
package changes

import (
	"github.com/mitchellh/mapstructure"

	pkgerrors "pathways-engine/pkg/errors"
)

// Command tags accepted on the wire.
const (
	CmdAddNode              = "add_node"
	CmdRenameNode           = "rename_node"
	CmdDeleteNode           = "delete_node"
	CmdEditNodeProperty     = "edit_node_property"
	CmdEditDocumentProperty = "edit_document_property"
	CmdMigrateNodeSchema    = "migrate_node_schema_to_latest_version"
	CmdAddWrittenTranslation = "add_written_translation"
	CmdMarkTranslationNeedsUpdate  = "mark_written_translation_as_needing_update"
	CmdMarkTranslationsNeedUpdate  = "mark_written_translations_as_needing_update"
	CmdRevertVersion               = "revert_version_number"
	CmdCreateNew                   = "create_new"
)

// Node property names usable with edit_node_property.
const (
	NodePropertyParamChanges                = "param_changes"
	NodePropertyContent                     = "content"
	NodePropertySolicitAnswerDetails        = "solicit_answer_details"
	NodePropertyCardIsCheckpoint            = "card_is_checkpoint"
	NodePropertyRecordedVoiceovers          = "recorded_voiceovers"
	NodePropertyWrittenTranslations         = "written_translations"
	NodePropertyInteractionID               = "interaction_id"
	NodePropertyInteractionCustArgs         = "interaction_customization_args"
	NodePropertyInteractionAnswerGroups     = "interaction_answer_groups"
	NodePropertyInteractionDefaultOutcome   = "interaction_default_outcome"
	NodePropertyUnclassifiedAnswers         = "confirmed_unclassified_answers"
	NodePropertyInteractionHints            = "interaction_hints"
	NodePropertyInteractionSolution         = "interaction_solution"
	NodePropertyNextContentIDIndex          = "next_content_id_index"
	NodePropertyLinkedSkillID               = "linked_skill_id"
)

// commandSpec declares the shape a command's record must have.
type commandSpec struct {
	requiredAttrs []string
	optionalAttrs []string
	// allowedValues restricts the listed attribute to a closed set.
	allowedValues map[string][]string
	// deprecatedValues rejects the listed attribute values outright.
	deprecatedValues map[string][]string
}

var nodePropertyNames = []string{
	NodePropertyParamChanges,
	NodePropertyContent,
	NodePropertySolicitAnswerDetails,
	NodePropertyCardIsCheckpoint,
	NodePropertyRecordedVoiceovers,
	NodePropertyWrittenTranslations,
	NodePropertyInteractionID,
	NodePropertyInteractionCustArgs,
	NodePropertyInteractionAnswerGroups,
	NodePropertyInteractionDefaultOutcome,
	NodePropertyUnclassifiedAnswers,
	NodePropertyInteractionHints,
	NodePropertyInteractionSolution,
	NodePropertyNextContentIDIndex,
	NodePropertyLinkedSkillID,
}

var documentPropertyNames = []string{
	"title", "category", "objective", "language_code", "tags", "blurb",
	"author_notes", "param_specs", "param_changes", "init_node_name",
	"auto_narration_enabled", "correctness_feedback_enabled",
}

var allowedCommands = map[string]commandSpec{
	CmdAddNode: {
		requiredAttrs: []string{"node_name"},
	},
	CmdRenameNode: {
		requiredAttrs: []string{"old_node_name", "new_node_name"},
	},
	CmdDeleteNode: {
		requiredAttrs: []string{"node_name"},
	},
	CmdEditNodeProperty: {
		requiredAttrs: []string{"node_name", "property_name", "new_value"},
		optionalAttrs: []string{"old_value"},
		allowedValues: map[string][]string{"property_name": nodePropertyNames},
		deprecatedValues: map[string][]string{"property_name": {"fallbacks"}},
	},
	CmdEditDocumentProperty: {
		requiredAttrs: []string{"property_name", "new_value"},
		optionalAttrs: []string{"old_value"},
		allowedValues: map[string][]string{"property_name": documentPropertyNames},
	},
	CmdMigrateNodeSchema: {
		requiredAttrs: []string{"from_version", "to_version"},
	},
	CmdAddWrittenTranslation: {
		requiredAttrs: []string{
			"node_name", "content_id", "language_code", "content_html",
			"translation_html", "data_format",
		},
	},
	CmdMarkTranslationNeedsUpdate: {
		requiredAttrs: []string{"node_name", "content_id", "language_code"},
	},
	CmdMarkTranslationsNeedUpdate: {
		requiredAttrs: []string{"node_name", "content_id"},
	},
	CmdRevertVersion: {
		requiredAttrs: []string{"version_number"},
	},
	CmdCreateNew: {
		requiredAttrs: []string{"category", "title"},
	},
}

// Commands that older clients could still emit but are no longer
// accepted.
var deprecatedCommands = map[string]struct{}{
	"clone":                {},
	"add_gadget":           {},
	"edit_gadget_property": {},
	"delete_gadget":        {},
	"rename_gadget":        {},
	"add_translation":      {},
}

// ChangeRecord is one atomic edit to a document. Construct it with
// FromMap so the command shape is checked once; treat it as immutable
// afterwards.
type ChangeRecord struct {
	Cmd string `json:"cmd" mapstructure:"cmd"`

	NodeName    string `json:"node_name,omitempty" mapstructure:"node_name"`
	OldNodeName string `json:"old_node_name,omitempty" mapstructure:"old_node_name"`
	NewNodeName string `json:"new_node_name,omitempty" mapstructure:"new_node_name"`

	PropertyName string      `json:"property_name,omitempty" mapstructure:"property_name"`
	NewValue     interface{} `json:"new_value,omitempty" mapstructure:"new_value"`
	OldValue     interface{} `json:"old_value,omitempty" mapstructure:"old_value"`

	FromVersion int `json:"from_version,omitempty" mapstructure:"from_version"`
	ToVersion   int `json:"to_version,omitempty" mapstructure:"to_version"`

	ContentID       string `json:"content_id,omitempty" mapstructure:"content_id"`
	LanguageCode    string `json:"language_code,omitempty" mapstructure:"language_code"`
	ContentHTML     string `json:"content_html,omitempty" mapstructure:"content_html"`
	TranslationHTML interface{} `json:"translation_html,omitempty" mapstructure:"translation_html"`
	DataFormat      string `json:"data_format,omitempty" mapstructure:"data_format"`

	VersionNumber int `json:"version_number,omitempty" mapstructure:"version_number"`

	Category string `json:"category,omitempty" mapstructure:"category"`
	Title    string `json:"title,omitempty" mapstructure:"title"`
}

// FromMap builds a ChangeRecord from an untyped wire record, rejecting
// unknown or deprecated commands and records whose fields do not match
// the command's declared shape.
func FromMap(raw map[string]interface{}) (*ChangeRecord, error) {
	cmdValue, ok := raw["cmd"]
	if !ok {
		return nil, pkgerrors.NewMalformedChangeError("missing cmd key in change record")
	}
	cmd, ok := cmdValue.(string)
	if !ok {
		return nil, pkgerrors.NewMalformedChangeErrorf("expected cmd to be a string, got %v", cmdValue)
	}
	if _, gone := deprecatedCommands[cmd]; gone {
		return nil, pkgerrors.NewMalformedChangeErrorf("command %s is deprecated", cmd)
	}
	spec, known := allowedCommands[cmd]
	if !known {
		return nil, pkgerrors.NewMalformedChangeErrorf("command %s is not allowed", cmd)
	}

	for _, attr := range spec.requiredAttrs {
		if _, present := raw[attr]; !present {
			return nil, pkgerrors.NewMalformedChangeErrorf(
				"the following required attributes are missing: %s", attr)
		}
	}
	allowed := map[string]struct{}{"cmd": {}}
	for _, attr := range spec.requiredAttrs {
		allowed[attr] = struct{}{}
	}
	for _, attr := range spec.optionalAttrs {
		allowed[attr] = struct{}{}
	}
	for key := range raw {
		if _, permitted := allowed[key]; !permitted {
			return nil, pkgerrors.NewMalformedChangeErrorf(
				"the following extra attributes are present: %s", key)
		}
	}

	for attr, values := range spec.deprecatedValues {
		got, isString := raw[attr].(string)
		if !isString {
			continue
		}
		for _, v := range values {
			if got == v {
				return nil, pkgerrors.NewMalformedChangeErrorf(
					"value for %s in cmd %s: %s is deprecated", attr, cmd, got)
			}
		}
	}
	for attr, values := range spec.allowedValues {
		got, isString := raw[attr].(string)
		if !isString {
			return nil, pkgerrors.NewMalformedChangeErrorf(
				"expected %s to be a string, got %v", attr, raw[attr])
		}
		found := false
		for _, v := range values {
			if got == v {
				found = true
				break
			}
		}
		if !found {
			return nil, pkgerrors.NewMalformedChangeErrorf(
				"value for %s in cmd %s: %s is not allowed", attr, cmd, got)
		}
	}

	var record ChangeRecord
	if err := mapstructure.Decode(raw, &record); err != nil {
		return nil, pkgerrors.NewMalformedChangeErrorf(
			"could not decode change record: %v", err)
	}
	return &record, nil
}

// FromMaps converts a whole untyped change list, failing on the first
// malformed record.
func FromMaps(raws []map[string]interface{}) ([]*ChangeRecord, error) {
	records := make([]*ChangeRecord, 0, len(raws))
	for _, raw := range raws {
		record, err := FromMap(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// ToMap renders the record back to its wire form, including only the
// attributes the command declares.
func (c *ChangeRecord) ToMap() map[string]interface{} {
	spec := allowedCommands[c.Cmd]
	full := map[string]interface{}{
		"node_name":        c.NodeName,
		"old_node_name":    c.OldNodeName,
		"new_node_name":    c.NewNodeName,
		"property_name":    c.PropertyName,
		"new_value":        c.NewValue,
		"old_value":        c.OldValue,
		"from_version":     c.FromVersion,
		"to_version":       c.ToVersion,
		"content_id":       c.ContentID,
		"language_code":    c.LanguageCode,
		"content_html":     c.ContentHTML,
		"translation_html": c.TranslationHTML,
		"data_format":      c.DataFormat,
		"version_number":   c.VersionNumber,
		"category":         c.Category,
		"title":            c.Title,
	}
	out := map[string]interface{}{"cmd": c.Cmd}
	for _, attr := range spec.requiredAttrs {
		out[attr] = full[attr]
	}
	for _, attr := range spec.optionalAttrs {
		if v, ok := full[attr]; ok && v != nil {
			out[attr] = v
		}
	}
	return out
}
