package migrations

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"pathways-engine/domain/core/aggregates"
	pkgerrors "pathways-engine/pkg/errors"
)

// FromYAML decodes a serialized document from yaml, upgrades it to the
// current schema and reconstructs the aggregate.
func FromYAML(data []byte) (*aggregates.Document, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, pkgerrors.NewValidationError(
			"could not parse the document yaml").WithCause(err)
	}
	return fromRaw(raw)
}

// FromJSON is the json counterpart of FromYAML.
func FromJSON(data []byte) (*aggregates.Document, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, pkgerrors.NewValidationError(
			"could not parse the document json").WithCause(err)
	}
	return fromRaw(raw)
}

func fromRaw(raw map[string]interface{}) (*aggregates.Document, error) {
	migrated, err := MigrateDocumentToLatest(raw)
	if err != nil {
		return nil, err
	}

	var record aggregates.SerializedDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &record,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, pkgerrors.NewInternalError(
			"could not build the record decoder").WithCause(err)
	}
	if err := decoder.Decode(migrated); err != nil {
		return nil, pkgerrors.NewValidationError(
			"migrated document does not match the current schema").WithCause(err)
	}
	return aggregates.FromRecord(&record)
}

// ToYAML serializes the document at the current schema version.
func ToYAML(doc *aggregates.Document) ([]byte, error) {
	data, err := yaml.Marshal(doc.ToRecord(CurrentDocumentSchemaVersion))
	if err != nil {
		return nil, pkgerrors.NewInternalError(
			"failed to encode document yaml").WithCause(err)
	}
	return data, nil
}
