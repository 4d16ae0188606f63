package entities

import (
	pkgerrors "pathways-engine/pkg/errors"
	"pathways-engine/pkg/utils"
)

// Parameter names that are reserved by the engine and may not be
// declared or set by documents.
var ReservedParameterNames = map[string]struct{}{
	"answer":      {},
	"choices":     {},
	"abbreviated": {},
}

// ParamSpec declares the type of a document parameter.
type ParamSpec struct {
	ObjType string `json:"obj_type" yaml:"obj_type" mapstructure:"obj_type"`
}

// Validate checks the declared object type.
func (ps ParamSpec) Validate() error {
	if ps.ObjType != "UnicodeString" {
		return pkgerrors.NewValidationErrorf(
			"expected param spec obj_type to be UnicodeString, received %s",
			ps.ObjType)
	}
	return nil
}

// ParamChange is one parameter mutation, triggered either on document
// load or on traversal of an outcome.
type ParamChange struct {
	Name              string                 `json:"name" yaml:"name" mapstructure:"name"`
	GeneratorID       string                 `json:"generator_id" yaml:"generator_id" mapstructure:"generator_id"`
	CustomizationArgs map[string]interface{} `json:"customization_args" yaml:"customization_args" mapstructure:"customization_args"`
}

// Validate checks the parameter name and generator.
func (pc ParamChange) Validate() error {
	if !utils.IsAlphanumeric(pc.Name) {
		return pkgerrors.NewValidationErrorf(
			"only parameter names with characters in [a-zA-Z0-9] are accepted, received %q",
			pc.Name)
	}
	if pc.GeneratorID == "" {
		return pkgerrors.NewValidationError("param change requires a generator id")
	}
	return nil
}

// DeepCopy returns an independent copy of the param change.
func (pc ParamChange) DeepCopy() ParamChange {
	args := make(map[string]interface{}, len(pc.CustomizationArgs))
	for k, v := range pc.CustomizationArgs {
		args[k] = deepCopyValue(v)
	}
	pc.CustomizationArgs = args
	return pc
}

// CopyParamChanges deep-copies a param change list.
func CopyParamChanges(changes []ParamChange) []ParamChange {
	if changes == nil {
		return nil
	}
	out := make([]ParamChange, len(changes))
	for i, pc := range changes {
		out[i] = pc.DeepCopy()
	}
	return out
}
