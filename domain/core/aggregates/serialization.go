package aggregates

import (
	"encoding/json"
	"time"

	"pathways-engine/domain/core/entities"
	pkgerrors "pathways-engine/pkg/errors"
	"pathways-engine/pkg/utils"
)

// SerializedDocument is the wire shape of a document graph. The body
// fields are covered by the document schema version; version and the
// two timestamps are attached only at the serialize/deserialize
// boundary and are not part of the schema-versioned body.
type SerializedDocument struct {
	ID                         string                        `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Title                      string                        `json:"title" yaml:"title" mapstructure:"title"`
	Category                   string                        `json:"category" yaml:"category" mapstructure:"category"`
	Objective                  string                        `json:"objective" yaml:"objective" mapstructure:"objective"`
	LanguageCode               string                        `json:"language_code" yaml:"language_code" mapstructure:"language_code" validate:"required"`
	Tags                       []string                      `json:"tags" yaml:"tags" mapstructure:"tags"`
	Blurb                      string                        `json:"blurb" yaml:"blurb" mapstructure:"blurb"`
	AuthorNotes                string                        `json:"author_notes" yaml:"author_notes" mapstructure:"author_notes"`
	DocumentSchemaVersion      int                           `json:"document_schema_version" yaml:"document_schema_version" mapstructure:"document_schema_version" validate:"min=1"`
	NodeSchemaVersion          int                           `json:"node_schema_version" yaml:"node_schema_version" mapstructure:"node_schema_version" validate:"min=1"`
	InitNodeName               string                        `json:"init_node_name" yaml:"init_node_name" mapstructure:"init_node_name" validate:"required"`
	ParamSpecs                 map[string]entities.ParamSpec `json:"param_specs" yaml:"param_specs" mapstructure:"param_specs"`
	ParamChanges               []entities.ParamChange        `json:"param_changes" yaml:"param_changes" mapstructure:"param_changes"`
	AutoNarrationEnabled       bool                          `json:"auto_narration_enabled" yaml:"auto_narration_enabled" mapstructure:"auto_narration_enabled"`
	CorrectnessFeedbackEnabled bool                          `json:"correctness_feedback_enabled" yaml:"correctness_feedback_enabled" mapstructure:"correctness_feedback_enabled"`
	Nodes                      map[string]*entities.Node     `json:"nodes" yaml:"nodes" mapstructure:"nodes" validate:"required,min=1"`

	// Out-of-band storage fields.
	Version     int    `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version"`
	CreatedOn   string `json:"created_on,omitempty" yaml:"created_on,omitempty" mapstructure:"created_on"`
	LastUpdated string `json:"last_updated,omitempty" yaml:"last_updated,omitempty" mapstructure:"last_updated"`
}

// ToRecord returns the document as a serialized record at the given
// document schema version. Nodes are deep-copied; mutating the record
// never touches the aggregate.
func (d *Document) ToRecord(documentSchemaVersion int) *SerializedDocument {
	nodes := make(map[string]*entities.Node, len(d.nodes))
	for name, node := range d.nodes {
		nodes[name] = node.DeepCopy()
	}

	record := &SerializedDocument{
		ID:                         d.id.String(),
		Title:                      d.title,
		Category:                   d.category,
		Objective:                  d.objective,
		LanguageCode:               d.languageCode,
		Tags:                       d.Tags(),
		Blurb:                      d.blurb,
		AuthorNotes:                d.authorNotes,
		DocumentSchemaVersion:      documentSchemaVersion,
		NodeSchemaVersion:          d.nodeSchemaVersion,
		InitNodeName:               d.initNodeName,
		ParamSpecs:                 d.ParamSpecs(),
		ParamChanges:               d.ParamChanges(),
		AutoNarrationEnabled:       d.autoNarrationEnabled,
		CorrectnessFeedbackEnabled: d.correctnessFeedbackEnabled,
		Nodes:                      nodes,
		Version:                    d.version,
	}
	if d.createdOn != nil {
		record.CreatedOn = d.createdOn.Format(time.RFC3339)
	}
	if d.lastUpdated != nil {
		record.LastUpdated = d.lastUpdated.Format(time.RFC3339)
	}
	return record
}

// FromRecord reconstructs a document from a serialized record that has
// already been migrated to the current schema. Param changes used by a
// node must be declared in the record's param specs.
func FromRecord(record *SerializedDocument) (*Document, error) {
	if err := utils.ValidateStruct(record); err != nil {
		return nil, pkgerrors.NewValidationError(err.Error()).WithCause(err)
	}
	if _, ok := record.Nodes[record.InitNodeName]; !ok {
		return nil, pkgerrors.NewValidationErrorf(
			"there is no node corresponding to the document's initial node name %s",
			record.InitNodeName)
	}

	nodes := make(map[string]*entities.Node, len(record.Nodes))
	for name, node := range record.Nodes {
		for _, pc := range node.ParamChanges {
			if _, declared := record.ParamSpecs[pc.Name]; !declared {
				return nil, pkgerrors.NewValidationErrorf(
					"parameter %s was used in a node but not declared in the document param specs",
					pc.Name)
			}
		}
		nodes[name] = node.DeepCopy()
	}

	doc := &Document{
		id:                         DocumentID(record.ID),
		title:                      record.Title,
		category:                   record.Category,
		objective:                  record.Objective,
		languageCode:               record.LanguageCode,
		tags:                       append([]string{}, record.Tags...),
		blurb:                      record.Blurb,
		authorNotes:                record.AuthorNotes,
		nodeSchemaVersion:          record.NodeSchemaVersion,
		initNodeName:               record.InitNodeName,
		nodes:                      nodes,
		paramSpecs:                 map[string]entities.ParamSpec{},
		paramChanges:               entities.CopyParamChanges(record.ParamChanges),
		version:                    record.Version,
		autoNarrationEnabled:       record.AutoNarrationEnabled,
		correctnessFeedbackEnabled: record.CorrectnessFeedbackEnabled,
	}
	for name, spec := range record.ParamSpecs {
		doc.paramSpecs[name] = spec
	}

	if record.CreatedOn != "" {
		created, err := time.Parse(time.RFC3339, record.CreatedOn)
		if err != nil {
			return nil, pkgerrors.NewValidationError(
				"invalid created_on timestamp").WithCause(err)
		}
		doc.createdOn = &created
	}
	if record.LastUpdated != "" {
		updated, err := time.Parse(time.RFC3339, record.LastUpdated)
		if err != nil {
			return nil, pkgerrors.NewValidationError(
				"invalid last_updated timestamp").WithCause(err)
		}
		doc.lastUpdated = &updated
	}

	return doc, nil
}

// Serialize returns the document encoded as a JSON string, including
// the out-of-band version and timestamps.
func (d *Document) Serialize(documentSchemaVersion int) (string, error) {
	data, err := json.Marshal(d.ToRecord(documentSchemaVersion))
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to encode document").WithCause(err)
	}
	return string(data), nil
}

// Document metadata property names usable in change records.
const (
	PropertyTitle                      = "title"
	PropertyCategory                   = "category"
	PropertyObjective                  = "objective"
	PropertyLanguageCode               = "language_code"
	PropertyTags                       = "tags"
	PropertyBlurb                      = "blurb"
	PropertyAuthorNotes                = "author_notes"
	PropertyParamSpecs                 = "param_specs"
	PropertyParamChanges               = "param_changes"
	PropertyInitNodeName               = "init_node_name"
	PropertyAutoNarrationEnabled       = "auto_narration_enabled"
	PropertyCorrectnessFeedbackEnabled = "correctness_feedback_enabled"
)

// MetadataProperty returns the current value of a document-level
// property by its change-record name.
func (d *Document) MetadataProperty(name string) (interface{}, error) {
	switch name {
	case PropertyTitle:
		return d.title, nil
	case PropertyCategory:
		return d.category, nil
	case PropertyObjective:
		return d.objective, nil
	case PropertyLanguageCode:
		return d.languageCode, nil
	case PropertyTags:
		return d.Tags(), nil
	case PropertyBlurb:
		return d.blurb, nil
	case PropertyAuthorNotes:
		return d.authorNotes, nil
	case PropertyParamSpecs:
		return d.ParamSpecs(), nil
	case PropertyParamChanges:
		return d.ParamChanges(), nil
	case PropertyInitNodeName:
		return d.initNodeName, nil
	case PropertyAutoNarrationEnabled:
		return d.autoNarrationEnabled, nil
	case PropertyCorrectnessFeedbackEnabled:
		return d.correctnessFeedbackEnabled, nil
	default:
		return nil, pkgerrors.NewInvalidOperationError(
			"unknown document property " + name)
	}
}
