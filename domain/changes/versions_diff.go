package changes

import (
	"reflect"

	"pathways-engine/domain/core/entities"
)

// VersionsDiff summarizes the structural difference between two
// document versions, derived from the ordered change list that
// separates them. Node identity is tracked through renames: deleted
// names are reported by their base-version identity, and nodes both
// added and deleted inside the window cancel out.
type VersionsDiff struct {
	AddedNodeNames   []string
	DeletedNodeNames []string
	NewToOldNodeNames map[string]string
	OldToNewNodeNames map[string]string
}

// NewVersionsDiff replays a change list and accumulates the net
// structural effect.
func NewVersionsDiff(changeList []*ChangeRecord) *VersionsDiff {
	diff := &VersionsDiff{
		NewToOldNodeNames: map[string]string{},
		OldToNewNodeNames: map[string]string{},
	}

	for _, change := range changeList {
		switch change.Cmd {
		case CmdAddNode:
			diff.AddedNodeNames = append(diff.AddedNodeNames, change.NodeName)

		case CmdDeleteNode:
			name := change.NodeName
			if diff.removeAdded(name) {
				continue
			}
			original := name
			if old, renamed := diff.NewToOldNodeNames[name]; renamed {
				original = old
				delete(diff.NewToOldNodeNames, name)
			}
			diff.DeletedNodeNames = append(diff.DeletedNodeNames, original)

		case CmdRenameNode:
			oldName, newName := change.OldNodeName, change.NewNodeName
			if diff.removeAdded(oldName) {
				diff.AddedNodeNames = append(diff.AddedNodeNames, newName)
				continue
			}
			original := oldName
			if prior, renamed := diff.NewToOldNodeNames[oldName]; renamed {
				original = prior
				delete(diff.NewToOldNodeNames, oldName)
			}
			diff.NewToOldNodeNames[newName] = original
		}
	}

	for newName, oldName := range diff.NewToOldNodeNames {
		diff.OldToNewNodeNames[oldName] = newName
	}
	return diff
}

func (d *VersionsDiff) removeAdded(name string) bool {
	for i, added := range d.AddedNodeNames {
		if added == name {
			d.AddedNodeNames = append(d.AddedNodeNames[:i], d.AddedNodeNames[i+1:]...)
			return true
		}
	}
	return false
}

// TrainableNodes partitions the current version's classifier-capable
// nodes into those whose answer groups changed since the base version
// and those whose answer groups survived unchanged. A node that was
// added, or renamed onto a name the base version never had, counts as
// changed.
type TrainableNodes struct {
	NodeNamesWithChangedAnswerGroups   []string
	NodeNamesWithUnchangedAnswerGroups []string
}

// ComputeTrainableNodes compares the base and current node maps through
// the rename table of a VersionsDiff.
func ComputeTrainableNodes(oldNodes, newNodes map[string]*entities.Node, diff *VersionsDiff) *TrainableNodes {
	result := &TrainableNodes{}
	for newName, newNode := range newNodes {
		if !newNode.CanUndergoClassification() {
			continue
		}
		oldName := newName
		if original, renamed := diff.NewToOldNodeNames[newName]; renamed {
			oldName = original
		}
		oldNode, existed := oldNodes[oldName]
		if !existed || !reflect.DeepEqual(oldNode.Interaction.AnswerGroups, newNode.Interaction.AnswerGroups) {
			result.NodeNamesWithChangedAnswerGroups = append(
				result.NodeNamesWithChangedAnswerGroups, newName)
		} else {
			result.NodeNamesWithUnchangedAnswerGroups = append(
				result.NodeNamesWithUnchangedAnswerGroups, newName)
		}
	}
	return result
}
