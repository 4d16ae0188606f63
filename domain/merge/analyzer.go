package merge

import (
	"reflect"

	"pathways-engine/domain/changes"
	"pathways-engine/domain/core/aggregates"
)

// Analyzer holds the net effect of the composite change list, the list
// already applied between the candidate's base version and the current
// head. Candidate lists are then judged against it.
type Analyzer struct {
	addedNodeNames   []string
	deletedNodeNames []string

	// newToOldNodeNames maps head-version node names to their
	// base-version identities; renames of added or deleted nodes are
	// not included.
	newToOldNodeNames map[string]string

	// changedProperties and changedTranslations are keyed by the
	// base-version node name.
	changedProperties   map[string]kindSet
	changedTranslations map[string]kindSet
}

// NewAnalyzer replays the composite change list and records which nodes
// and properties it touched.
func NewAnalyzer(compositeChangeList []*changes.ChangeRecord) *Analyzer {
	a := &Analyzer{
		newToOldNodeNames:   map[string]string{},
		changedProperties:   map[string]kindSet{},
		changedTranslations: map[string]kindSet{},
	}
	for _, change := range compositeChangeList {
		a.parse(change)
	}
	return a
}

func (a *Analyzer) parse(change *changes.ChangeRecord) {
	switch change.Cmd {
	case changes.CmdAddNode:
		a.addedNodeNames = append(a.addedNodeNames, change.NodeName)

	case changes.CmdDeleteNode:
		name := change.NodeName
		if a.removeAdded(name) {
			return
		}
		original := name
		if prior, renamed := a.newToOldNodeNames[name]; renamed {
			original = prior
			delete(a.newToOldNodeNames, name)
		}
		a.deletedNodeNames = append(a.deletedNodeNames, original)

	case changes.CmdRenameNode:
		oldName, newName := change.OldNodeName, change.NewNodeName
		if a.removeAdded(oldName) {
			a.addedNodeNames = append(a.addedNodeNames, newName)
			return
		}
		if prior, renamed := a.newToOldNodeNames[oldName]; renamed {
			delete(a.newToOldNodeNames, oldName)
			a.newToOldNodeNames[newName] = prior
		} else {
			a.newToOldNodeNames[newName] = oldName
		}

	case changes.CmdEditNodeProperty:
		name := a.baseName(change.NodeName)
		a.changedProperties[name] = a.changedProperties[name].with(
			kindOfProperty(change.PropertyName))

	case changes.CmdAddWrittenTranslation:
		name := a.baseName(change.NodeName)
		a.changedTranslations[name] = a.changedTranslations[name].with(
			kindOfContentID(change.ContentID))
		a.changedProperties[name] = a.changedProperties[name].with(
			KindWrittenTranslations)
	}
}

func (a *Analyzer) baseName(name string) string {
	if original, renamed := a.newToOldNodeNames[name]; renamed {
		return original
	}
	return name
}

func (a *Analyzer) removeAdded(name string) bool {
	for i, added := range a.addedNodeNames {
		if added == name {
			a.addedNodeNames = append(a.addedNodeNames[:i], a.addedNodeNames[i+1:]...)
			return true
		}
	}
	return false
}

// IsChangeListMergeable decides whether the candidate change list,
// authored against baseDoc, can be replayed onto headDoc. It returns
// (mergeable, needsManualReview). Structural changes in the composite
// list, and candidate edits to nodes the composite list renamed, are
// never auto-merged and set the review flag.
func (a *Analyzer) IsChangeListMergeable(
	changeList []*changes.ChangeRecord,
	baseDoc, headDoc *aggregates.Document,
) (bool, bool) {
	if len(a.addedNodeNames) > 0 || len(a.deletedNodeNames) > 0 {
		// Adding or deleting nodes changes the flow of the whole
		// graph; such composites go to manual review.
		return false, true
	}

	oldToNewNodeNames := make(map[string]string, len(a.newToOldNodeNames))
	for newName, oldName := range a.newToOldNodeNames {
		oldToNewNodeNames[oldName] = newName
	}

	mergeable := false

	// Renames inside the candidate list itself, keyed by the current
	// candidate name and valued with the name the node had when the
	// candidate session started.
	renamedInCandidate := map[string]string{}

	for _, change := range changeList {
		changeIsMergeable := false

		switch change.Cmd {
		case changes.CmdRenameNode:
			oldName, newName := change.OldNodeName, change.NewNodeName
			if prior, ok := renamedInCandidate[oldName]; ok {
				delete(renamedInCandidate, oldName)
				renamedInCandidate[newName] = prior
			} else {
				renamedInCandidate[newName] = oldName
			}
			if _, alsoRenamedByComposite := oldToNewNodeNames[renamedInCandidate[newName]]; !alsoRenamedByComposite {
				changeIsMergeable = true
			}

		case changes.CmdEditNodeProperty:
			name := change.NodeName
			if prior, ok := renamedInCandidate[name]; ok {
				name = prior
			}
			if _, renamedByComposite := oldToNewNodeNames[name]; renamedByComposite {
				// Edits to a node the composite list renamed need a
				// human to reconcile the identities.
				return false, true
			}
			baseNode, okBase := baseDoc.Node(name)
			headNode, okHead := headDoc.Node(name)
			if !okBase || !okHead {
				break
			}

			touched := a.changedProperties[name]
			translated := a.changedTranslations[name]
			kind := kindOfProperty(change.PropertyName)
			handled := true

			switch {
			case kind == KindContent:
				if baseNode.Content.HTML == headNode.Content.HTML &&
					!translated.has(KindContent) &&
					!touched.has(KindVoiceovers) {
					changeIsMergeable = true
				}

			case kind == KindInteractionID:
				if baseNode.Interaction.ID == headNode.Interaction.ID &&
					!touched.intersects(conflictsWith[KindInteractionID]) {
					changeIsMergeable = true
				}

			case kind == KindCustomizationArgs,
				kind == KindAnswerGroups,
				kind == KindSolution:
				if baseNode.Interaction.ID == headNode.Interaction.ID &&
					!touched.intersects(conflictsWith[kind].with(kind)) &&
					!translated.has(kind) {
					changeIsMergeable = true
				}

			case kind == KindDefaultOutcome, kind == KindHints:
				if !touched.has(kind) && !translated.has(kind) {
					changeIsMergeable = true
				}

			case nonConflictingKinds.has(kind):
				changeIsMergeable = true

			case kind == KindSolicitAnswerDetails:
				if baseNode.Interaction.ID == headNode.Interaction.ID &&
					baseNode.SolicitAnswerDetails == headNode.SolicitAnswerDetails {
					changeIsMergeable = true
				}

			case kind == KindVoiceovers:
				if !touched.intersects(conflictsWith[KindVoiceovers].with(KindVoiceovers)) {
					changeIsMergeable = true
				}

			default:
				// Direct edits to param_changes or written_translations
				// have no merge rule and fail the whole list.
				handled = false
			}

			// A node with no recorded composite edits accepts any
			// handled edit, even one whose specific check failed.
			if handled && touched.isEmpty() {
				changeIsMergeable = true
			}

		case changes.CmdAddWrittenTranslation:
			name := change.NodeName
			if prior, ok := renamedInCandidate[name]; ok {
				name = prior
			}
			if _, renamedByComposite := oldToNewNodeNames[name]; renamedByComposite {
				return false, true
			}
			kind := kindOfContentID(change.ContentID)
			if !a.changedProperties[name].has(kind) &&
				!a.changedTranslations[name].has(kind) {
				changeIsMergeable = true
			}
			if a.changedProperties[name].isEmpty() {
				changeIsMergeable = true
			}

		case changes.CmdMarkTranslationNeedsUpdate,
			changes.CmdMarkTranslationsNeedUpdate:
			changeIsMergeable = true

		case changes.CmdEditDocumentProperty:
			baseValue, baseErr := baseDoc.MetadataProperty(change.PropertyName)
			headValue, headErr := headDoc.MetadataProperty(change.PropertyName)
			if baseErr == nil && headErr == nil &&
				reflect.DeepEqual(baseValue, headValue) {
				changeIsMergeable = true
			}
		}

		if !changeIsMergeable {
			return false, false
		}
		mergeable = true
	}

	return mergeable, false
}
