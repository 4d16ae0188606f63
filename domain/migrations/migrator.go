package migrations

import (
	pkgerrors "pathways-engine/pkg/errors"
)

// Supported schema ranges, inclusive on both ends.
const (
	EarliestDocumentSchemaVersion = 46
	CurrentDocumentSchemaVersion  = 54

	EarliestNodeSchemaVersion = 41
	CurrentNodeSchemaVersion  = 49
)

// nodeSteps is indexed by version offset: nodeSteps[v-EarliestNodeSchemaVersion]
// upgrades a collection from v to v+1. The array length is fixed so a
// missing or surplus step fails to compile.
var nodeSteps = [CurrentNodeSchemaVersion - EarliestNodeSchemaVersion]nodeStep{
	convertNodesV41ToV42,
	convertNodesV42ToV43,
	convertNodesV43ToV44,
	convertNodesV44ToV45,
	convertNodesV45ToV46,
	convertNodesV46ToV47,
	convertNodesV47ToV48,
	convertNodesV48ToV49,
}

// MigrateNodeCollection upgrades a node collection from the given
// schema version to the current one, returning the upgraded collection
// and the resulting version.
func MigrateNodeCollection(
	nodes map[string]interface{},
	fromVersion int,
	initNodeName string,
) (map[string]interface{}, int, error) {
	if fromVersion < EarliestNodeSchemaVersion || fromVersion > CurrentNodeSchemaVersion {
		return nil, 0, pkgerrors.NewUnsupportedVersionError(
			fromVersion, EarliestNodeSchemaVersion, CurrentNodeSchemaVersion)
	}
	version := fromVersion
	for version < CurrentNodeSchemaVersion {
		nodes = nodeSteps[version-EarliestNodeSchemaVersion](nodes, initNodeName)
		version++
	}
	return nodes, version, nil
}

// MigrateDocumentToLatest upgrades a decoded serialized document from
// its embedded schema version to the current one. Every document step
// bumps the visible schema-version fields and applies the node step for
// the same boundary. The input is modified in place and also returned.
func MigrateDocumentToLatest(doc map[string]interface{}) (map[string]interface{}, error) {
	version, ok := asInt(doc["document_schema_version"])
	if !ok {
		return nil, pkgerrors.NewValidationError(
			"serialized document has no integer document_schema_version")
	}
	if version < EarliestDocumentSchemaVersion || version > CurrentDocumentSchemaVersion {
		return nil, pkgerrors.NewUnsupportedVersionError(
			version, EarliestDocumentSchemaVersion, CurrentDocumentSchemaVersion)
	}

	for version < CurrentDocumentSchemaVersion {
		offset := version - EarliestDocumentSchemaVersion
		initNodeName, _ := doc["init_node_name"].(string)

		doc["nodes"] = nodeSteps[offset](asMap(doc["nodes"]), initNodeName)
		doc["node_schema_version"] = EarliestNodeSchemaVersion + offset + 1
		version++
		doc["document_schema_version"] = version
	}
	return doc, nil
}

// asInt normalizes the integer encodings produced by the yaml and json
// decoders.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
