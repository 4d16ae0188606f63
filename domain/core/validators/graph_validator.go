// Package validators holds the pure validation passes over a document
// graph. The structural pass always runs; the strict pass runs only
// when a document is being validated for publication.
package validators

import (
	"fmt"
	"sort"
	"strings"

	"pathways-engine/domain/core/aggregates"
	"pathways-engine/domain/core/entities"
	pkgerrors "pathways-engine/pkg/errors"
	"pathways-engine/pkg/utils"
)

// Checkpoint count bounds for published documents, inclusive.
const (
	MinCheckpointCount = 1
	MaxCheckpointCount = 8
)

// Validate checks the structural soundness of a document graph. With
// strict set, the publication-only checks also run: checkpoint rules,
// reachability, dead ends and self-loop correctness labelling.
// Reachability and dead-end findings are warnings; they are joined with
// any other warnings into one combined error after the hard checks
// pass.
func Validate(doc *aggregates.Document, strict bool) error {
	if err := validateStructural(doc, strict); err != nil {
		return err
	}
	if strict {
		return validateStrict(doc)
	}
	return nil
}

func validateStructural(doc *aggregates.Document, strict bool) error {
	if err := utils.RequireValidName(doc.Title(), "the document title", true); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	if err := utils.RequireValidName(doc.Category(), "the document category", true); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	if !utils.IsValidLanguageCode(doc.LanguageCode()) {
		return pkgerrors.NewValidationErrorf(
			"invalid language_code: %s", doc.LanguageCode())
	}

	tags := doc.Tags()
	for _, tag := range tags {
		if err := utils.RequireValidTag(tag); err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
	}
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if _, dup := seen[tag]; dup {
			return pkgerrors.NewValidationError("some tags duplicate each other")
		}
		seen[tag] = struct{}{}
	}

	nodes := doc.Nodes()
	if len(nodes) == 0 {
		return pkgerrors.NewValidationError("this document has no nodes")
	}
	if doc.InitNodeName() == "" {
		return pkgerrors.NewValidationError(
			"this document has no initial node name specified")
	}
	if !doc.HasNode(doc.InitNodeName()) {
		return pkgerrors.NewValidationErrorf(
			"there is no node in %v corresponding to the document's initial node name %s",
			sortedNames(nodes), doc.InitNodeName())
	}

	paramSpecs := doc.ParamSpecs()
	for name, spec := range paramSpecs {
		if !utils.IsAlphanumeric(name) {
			return pkgerrors.NewValidationError(
				"only parameter names with characters in [a-zA-Z0-9] are accepted")
		}
		if err := spec.Validate(); err != nil {
			return err
		}
	}
	for _, pc := range doc.ParamChanges() {
		if err := pc.Validate(); err != nil {
			return err
		}
		if _, reserved := entities.ReservedParameterNames[pc.Name]; reserved {
			return pkgerrors.NewValidationErrorf(
				"the document-level parameter with name %q is reserved", pc.Name)
		}
		if _, declared := paramSpecs[pc.Name]; !declared {
			return pkgerrors.NewValidationErrorf(
				"no parameter named %q exists in this document", pc.Name)
		}
	}

	for name, node := range nodes {
		if err := utils.RequireValidName(name, "a node name", false); err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
		if err := validateNode(name, node, paramSpecs, !strict); err != nil {
			return err
		}
	}

	// Outcome destinations must resolve, and non-self-loop outcomes may
	// not carry an external document reference.
	for name, node := range nodes {
		if out := node.Interaction.DefaultOutcome; out != nil {
			if !doc.HasNode(out.Dest) {
				return pkgerrors.NewValidationErrorf(
					"the destination %s is not a valid node", out.Dest)
			}
			if out.RefresherDocumentID != nil && out.Dest != name {
				return pkgerrors.NewValidationErrorf(
					"the default outcome for node %s has a refresher document ID, but is not a self-loop",
					name)
			}
		}
		for _, group := range node.Interaction.AnswerGroups {
			if !doc.HasNode(group.Outcome.Dest) {
				return pkgerrors.NewValidationErrorf(
					"the destination %s is not a valid node", group.Outcome.Dest)
			}
			if group.Outcome.RefresherDocumentID != nil && group.Outcome.Dest != name {
				return pkgerrors.NewValidationErrorf(
					"the outcome for an answer group in node %s has a refresher document ID, but is not a self-loop",
					name)
			}
			for _, pc := range group.Outcome.ParamChanges {
				if _, declared := paramSpecs[pc.Name]; !declared {
					return pkgerrors.NewValidationErrorf(
						"the parameter %s was used in an answer group, but it does not exist in this document",
						pc.Name)
				}
			}
		}
	}

	return nil
}

func validateNode(name string, node *entities.Node, paramSpecs map[string]entities.ParamSpec, allowNilInteraction bool) error {
	if node.Content.ContentID == "" {
		return pkgerrors.NewValidationErrorf(
			"node %s has content with no content id", name)
	}
	if node.Interaction.ID == "" && !allowNilInteraction {
		return pkgerrors.NewValidationErrorf(
			"this node does not have any interaction specified: %s", name)
	}
	for _, group := range node.Interaction.AnswerGroups {
		if group.Outcome.Dest == "" {
			return pkgerrors.NewValidationError(
				"every outcome should have a destination")
		}
	}
	if out := node.Interaction.DefaultOutcome; out != nil && out.Dest == "" {
		return pkgerrors.NewValidationError(
			"every outcome should have a destination")
	}
	if node.Interaction.Solution != nil && node.Interaction.ID == "" {
		return pkgerrors.NewValidationErrorf(
			"node %s has a solution but no interaction", name)
	}
	if node.NextContentIDIndex < 0 {
		return pkgerrors.NewValidationErrorf(
			"expected next_content_id_index of node %s to be non-negative", name)
	}
	for _, pc := range node.ParamChanges {
		if err := pc.Validate(); err != nil {
			return err
		}
		if _, reserved := entities.ReservedParameterNames[pc.Name]; reserved {
			return pkgerrors.NewValidationErrorf(
				"the parameter name %q is reserved; please choose a different name for the parameter being set in node %q",
				pc.Name, name)
		}
		if _, declared := paramSpecs[pc.Name]; !declared {
			return pkgerrors.NewValidationErrorf(
				"the parameter with name %q was set in node %q, but it does not exist in the list of parameter specifications for this document",
				pc.Name, name)
		}
	}
	return nil
}

func validateStrict(doc *aggregates.Document) error {
	nodes := doc.Nodes()

	if !doc.InitNode().CardIsCheckpoint {
		return pkgerrors.NewValidationErrorf(
			"expected the first node to be a checkpoint but found it to be %t",
			doc.InitNode().CardIsCheckpoint)
	}

	for name, node := range nodes {
		if node.Interaction.IsTerminal() && name != doc.InitNodeName() && node.CardIsCheckpoint {
			return pkgerrors.NewValidationErrorf(
				"expected terminal node %s not to be a checkpoint", name)
		}
	}

	checkpointCount := 0
	for _, node := range nodes {
		if node.CardIsCheckpoint {
			checkpointCount++
		}
	}
	if checkpointCount < MinCheckpointCount || checkpointCount > MaxCheckpointCount {
		return pkgerrors.NewValidationErrorf(
			"expected checkpoint count to be between %d and %d inclusive but found it to be %d",
			MinCheckpointCount, MaxCheckpointCount, checkpointCount)
	}

	if err := verifyCheckpointsNotBypassable(doc); err != nil {
		return err
	}

	var warnings []string
	if unreachable := unreachableNodes(doc); len(unreachable) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"the following nodes are not reachable from the initial node: %s",
			strings.Join(unreachable, ", ")))
	}
	if deadEnds := deadEndNodes(doc); len(deadEnds) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"it is impossible to complete the document from the following nodes: %s",
			strings.Join(deadEnds, ", ")))
	}
	if doc.Title() == "" {
		warnings = append(warnings, "a title must be specified")
	}
	if doc.Category() == "" {
		warnings = append(warnings, "a category must be specified")
	}
	if doc.Objective() == "" {
		warnings = append(warnings, "an objective must be specified")
	}

	// Self-loop outcomes may not be labelled correct.
	for name, node := range nodes {
		if out := node.Interaction.DefaultOutcome; out != nil {
			if out.Dest == name && out.LabelledAsCorrect {
				return pkgerrors.NewValidationErrorf(
					"the default outcome for node %s is labelled correct but is a self-loop",
					name)
			}
		}
		for _, group := range node.Interaction.AnswerGroups {
			if group.Outcome.Dest == name && group.Outcome.LabelledAsCorrect {
				return pkgerrors.NewValidationErrorf(
					"the outcome for an answer group in node %s is labelled correct but is a self-loop",
					name)
			}
		}
	}

	if len(warnings) > 0 {
		collected := pkgerrors.NewValidationErrors()
		for _, w := range warnings {
			collected.Add(w)
		}
		return collected.Combined(
			"please fix the following issues before saving this document: ")
	}
	return nil
}

// verifyCheckpointsNotBypassable checks, for every non-initial
// checkpoint node, that no terminal node stays reachable once that node
// is removed from the graph. If one does, the checkpoint does not lie
// on every path to completion and publication is rejected.
func verifyCheckpointsNotBypassable(doc *aggregates.Document) error {
	nodes := doc.Nodes()

	var checkpointNames []string
	for name, node := range nodes {
		if name != doc.InitNodeName() && node.CardIsCheckpoint {
			checkpointNames = append(checkpointNames, name)
		}
	}
	sort.Strings(checkpointNames)

	for _, excluded := range checkpointNames {
		processed := map[string]bool{}
		queue := []string{doc.InitNodeName()}

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			if current == excluded || processed[current] {
				continue
			}
			processed[current] = true

			for _, outcome := range nodes[current].Interaction.AllOutcomes() {
				dest := outcome.Dest
				if nodes[dest].Interaction.IsTerminal() {
					return pkgerrors.NewValidationErrorf(
						"cannot make %s a checkpoint as it is bypassable", excluded)
				}
				if !processed[dest] {
					queue = append(queue, dest)
				}
			}
		}
	}
	return nil
}

// unreachableNodes walks forward from the initial node over all outcome
// edges and returns the names of nodes never visited.
func unreachableNodes(doc *aggregates.Document) []string {
	nodes := doc.Nodes()
	visited := map[string]bool{}
	queue := []string{doc.InitNodeName()}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		node := nodes[current]
		if node.Interaction.IsTerminal() {
			continue
		}
		for _, outcome := range node.Interaction.AllOutcomes() {
			if !visited[outcome.Dest] {
				queue = append(queue, outcome.Dest)
			}
		}
	}

	return missingFrom(nodes, visited)
}

// deadEndNodes walks backward from the terminal nodes: the frontier is
// seeded with every terminal node and grows with any node that has an
// outcome edge into it. Nodes never added cannot reach completion.
func deadEndNodes(doc *aggregates.Document) []string {
	nodes := doc.Nodes()
	visited := map[string]bool{}
	var queue []string

	for name, node := range nodes {
		if node.Interaction.IsTerminal() {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		for name, node := range nodes {
			if visited[name] {
				continue
			}
			for _, outcome := range node.Interaction.AllOutcomes() {
				if outcome.Dest == current {
					queue = append(queue, name)
					break
				}
			}
		}
	}

	return missingFrom(nodes, visited)
}

func missingFrom(nodes map[string]*entities.Node, visited map[string]bool) []string {
	var missing []string
	for name := range nodes {
		if !visited[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func sortedNames(nodes map[string]*entities.Node) []string {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
