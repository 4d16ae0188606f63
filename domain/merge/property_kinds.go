// Package merge decides whether a change list authored against an old
// document version can be replayed onto the current version without
// conflict.
package merge

import (
	"strings"

	"pathways-engine/domain/changes"
)

// PropertyKind enumerates the node properties the analyzer reasons
// about.
type PropertyKind int

const (
	KindUnknown PropertyKind = iota
	KindContent
	KindInteractionID
	KindCustomizationArgs
	KindAnswerGroups
	KindDefaultOutcome
	KindHints
	KindSolution
	KindVoiceovers
	KindWrittenTranslations
	KindSolicitAnswerDetails
	KindParamChanges
	KindCardIsCheckpoint
	KindUnclassifiedAnswers
	KindNextContentIDIndex
	KindLinkedSkillID
)

// kindSet is a bitset over PropertyKind.
type kindSet uint32

func (s kindSet) with(k PropertyKind) kindSet   { return s | 1<<uint(k) }
func (s kindSet) has(k PropertyKind) bool       { return s&(1<<uint(k)) != 0 }
func (s kindSet) intersects(o kindSet) bool     { return s&o != 0 }
func (s kindSet) isEmpty() bool                 { return s == 0 }

// Unordered pairs of properties whose concurrent edits cannot be
// mechanically merged. The relation is symmetric; conflictsWith below
// is derived from it once at package load.
var conflictingPairs = [][2]PropertyKind{
	{KindInteractionID, KindCustomizationArgs},
	{KindInteractionID, KindSolution},
	{KindInteractionID, KindAnswerGroups},
	{KindCustomizationArgs, KindSolution},
	{KindCustomizationArgs, KindVoiceovers},
	{KindCustomizationArgs, KindAnswerGroups},
	{KindAnswerGroups, KindSolution},
	{KindAnswerGroups, KindVoiceovers},
	{KindSolution, KindVoiceovers},
	{KindVoiceovers, KindContent},
	{KindVoiceovers, KindHints},
	{KindVoiceovers, KindWrittenTranslations},
	{KindVoiceovers, KindDefaultOutcome},
}

// conflictsWith maps each kind to the set of kinds it conflicts with.
var conflictsWith [32]kindSet

func init() {
	for _, pair := range conflictingPairs {
		conflictsWith[pair[0]] = conflictsWith[pair[0]].with(pair[1])
		conflictsWith[pair[1]] = conflictsWith[pair[1]].with(pair[0])
	}
}

// Properties whose edits never conflict with anything.
var nonConflictingKinds = kindSet(0).
	with(KindUnclassifiedAnswers).
	with(KindNextContentIDIndex).
	with(KindLinkedSkillID).
	with(KindCardIsCheckpoint)

var propertyNameToKind = map[string]PropertyKind{
	changes.NodePropertyContent:                   KindContent,
	changes.NodePropertyInteractionID:             KindInteractionID,
	changes.NodePropertyInteractionCustArgs:       KindCustomizationArgs,
	changes.NodePropertyInteractionAnswerGroups:   KindAnswerGroups,
	changes.NodePropertyInteractionDefaultOutcome: KindDefaultOutcome,
	changes.NodePropertyInteractionHints:          KindHints,
	changes.NodePropertyInteractionSolution:       KindSolution,
	changes.NodePropertyRecordedVoiceovers:        KindVoiceovers,
	changes.NodePropertyWrittenTranslations:       KindWrittenTranslations,
	changes.NodePropertySolicitAnswerDetails:      KindSolicitAnswerDetails,
	changes.NodePropertyParamChanges:              KindParamChanges,
	changes.NodePropertyCardIsCheckpoint:          KindCardIsCheckpoint,
	changes.NodePropertyUnclassifiedAnswers:       KindUnclassifiedAnswers,
	changes.NodePropertyNextContentIDIndex:        KindNextContentIDIndex,
	changes.NodePropertyLinkedSkillID:             KindLinkedSkillID,
}

func kindOfProperty(name string) PropertyKind {
	if kind, ok := propertyNameToKind[name]; ok {
		return kind
	}
	return KindUnknown
}

// kindOfContentID derives the owning property from a content id.
// Content ids follow a naming convention: "content", "ca_" prefixed
// customization-arg fields, "default_outcome", "solution", "hint"
// prefixed hints, and "feedback"/"rule_input" prefixed answer-group
// fields.
func kindOfContentID(contentID string) PropertyKind {
	switch {
	case contentID == "content":
		return KindContent
	case strings.HasPrefix(contentID, "ca_"):
		return KindCustomizationArgs
	case contentID == "default_outcome":
		return KindDefaultOutcome
	case contentID == "solution":
		return KindSolution
	case strings.HasPrefix(contentID, "hint"):
		return KindHints
	case strings.HasPrefix(contentID, "feedback"),
		strings.HasPrefix(contentID, "rule_input"):
		return KindAnswerGroups
	}
	return KindUnknown
}
