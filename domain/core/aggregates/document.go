package aggregates

import (
	"time"

	"github.com/google/uuid"

	"pathways-engine/domain/core/entities"
	"pathways-engine/domain/events"
	pkgerrors "pathways-engine/pkg/errors"
	"pathways-engine/pkg/utils"
)

// DocumentID represents a unique document identifier
type DocumentID string

// NewDocumentID creates a new random DocumentID
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New().String())
}

// String returns the string representation
func (id DocumentID) String() string {
	return string(id)
}

// Defaults for newly created documents.
const (
	DefaultInitNodeName = "Introduction"
	DefaultTitle        = ""
	DefaultCategory     = ""
	DefaultObjective    = ""
	DefaultLanguageCode = "en"
)

// Document is the aggregate root for one versioned content graph: a
// mapping of node name to node, a designated initial node, and the
// document-level metadata. All structural mutation goes through this
// owner; edges between nodes are dest name strings, never pointers.
type Document struct {
	id           DocumentID
	title        string
	category     string
	objective    string
	languageCode string
	tags         []string
	blurb        string
	authorNotes  string

	nodeSchemaVersion int
	initNodeName      string
	nodes             map[string]*entities.Node

	paramSpecs   map[string]entities.ParamSpec
	paramChanges []entities.ParamChange

	// version counts accepted edits; nodeSchemaVersion counts applied
	// schema migrations. They advance independently.
	version int

	autoNarrationEnabled       bool
	correctnessFeedbackEnabled bool

	createdOn   *time.Time
	lastUpdated *time.Time

	events []events.DomainEvent
}

// NewDefaultDocument creates a document with a single default initial
// node at the current node schema version.
func NewDefaultDocument(id DocumentID, title, category, objective, languageCode string, currentNodeSchemaVersion int) *Document {
	if languageCode == "" {
		languageCode = DefaultLanguageCode
	}
	doc := &Document{
		id:                id,
		title:             title,
		category:          category,
		objective:         objective,
		languageCode:      languageCode,
		tags:              []string{},
		nodeSchemaVersion: currentNodeSchemaVersion,
		initNodeName:      DefaultInitNodeName,
		nodes: map[string]*entities.Node{
			DefaultInitNodeName: entities.NewDefaultNode(DefaultInitNodeName, true),
		},
		paramSpecs:   map[string]entities.ParamSpec{},
		paramChanges: []entities.ParamChange{},
		version:      0,
	}

	doc.addEvent(events.DocumentCreated{
		BaseEvent: events.NewBase(id.String(), "document.created"),
		Title:     title,
	})

	return doc
}

// ID returns the document's unique identifier
func (d *Document) ID() DocumentID { return d.id }

// Title returns the document title
func (d *Document) Title() string { return d.title }

// Category returns the document category
func (d *Document) Category() string { return d.category }

// Objective returns the learning objective
func (d *Document) Objective() string { return d.objective }

// LanguageCode returns the content language code
func (d *Document) LanguageCode() string { return d.languageCode }

// Tags returns a copy of the document tags
func (d *Document) Tags() []string {
	tags := make([]string, len(d.tags))
	copy(tags, d.tags)
	return tags
}

// Blurb returns the document blurb
func (d *Document) Blurb() string { return d.blurb }

// AuthorNotes returns the author notes
func (d *Document) AuthorNotes() string { return d.authorNotes }

// NodeSchemaVersion returns the schema version of the node collection
func (d *Document) NodeSchemaVersion() int { return d.nodeSchemaVersion }

// InitNodeName returns the name of the designated initial node
func (d *Document) InitNodeName() string { return d.initNodeName }

// InitNode returns the initial node
func (d *Document) InitNode() *entities.Node { return d.nodes[d.initNodeName] }

// Version returns the document's edit-history version
func (d *Document) Version() int { return d.version }

// AutoNarrationEnabled reports whether automatic narration is on
func (d *Document) AutoNarrationEnabled() bool { return d.autoNarrationEnabled }

// CorrectnessFeedbackEnabled reports whether correctness feedback is on
func (d *Document) CorrectnessFeedbackEnabled() bool { return d.correctnessFeedbackEnabled }

// CreatedOn returns when the document was created, if known
func (d *Document) CreatedOn() *time.Time { return d.createdOn }

// LastUpdated returns when the document was last updated, if known
func (d *Document) LastUpdated() *time.Time { return d.lastUpdated }

// ParamSpecs returns a copy of the declared parameter specifications
func (d *Document) ParamSpecs() map[string]entities.ParamSpec {
	specs := make(map[string]entities.ParamSpec, len(d.paramSpecs))
	for k, v := range d.paramSpecs {
		specs[k] = v
	}
	return specs
}

// ParamChanges returns the document-level parameter mutations
func (d *Document) ParamChanges() []entities.ParamChange {
	return entities.CopyParamChanges(d.paramChanges)
}

// Nodes returns the node mapping. The map is a copy; the nodes are the
// live entities.
func (d *Document) Nodes() map[string]*entities.Node {
	nodes := make(map[string]*entities.Node, len(d.nodes))
	for k, v := range d.nodes {
		nodes[k] = v
	}
	return nodes
}

// Node retrieves a node by name
func (d *Document) Node(name string) (*entities.Node, bool) {
	node, ok := d.nodes[name]
	return node, ok
}

// HasNode checks whether a node with the given name exists
func (d *Document) HasNode(name string) bool {
	_, ok := d.nodes[name]
	return ok
}

// NodeNames returns all node names
func (d *Document) NodeNames() []string {
	names := make([]string, 0, len(d.nodes))
	for name := range d.nodes {
		names = append(names, name)
	}
	return names
}

// InteractionIDByNodeName returns the interaction id of the named node
func (d *Document) InteractionIDByNodeName(name string) (string, error) {
	node, ok := d.nodes[name]
	if !ok {
		return "", pkgerrors.NewNotFoundError("node " + name)
	}
	return node.Interaction.ID, nil
}

// Metadata update operations

// UpdateTitle sets the document title
func (d *Document) UpdateTitle(title string) { d.title = title }

// UpdateCategory sets the document category
func (d *Document) UpdateCategory(category string) { d.category = category }

// UpdateObjective sets the learning objective
func (d *Document) UpdateObjective(objective string) { d.objective = objective }

// UpdateLanguageCode sets the content language code
func (d *Document) UpdateLanguageCode(code string) { d.languageCode = code }

// UpdateTags replaces the document tags
func (d *Document) UpdateTags(tags []string) {
	d.tags = make([]string, len(tags))
	copy(d.tags, tags)
}

// UpdateBlurb sets the blurb
func (d *Document) UpdateBlurb(blurb string) { d.blurb = blurb }

// UpdateAuthorNotes sets the author notes
func (d *Document) UpdateAuthorNotes(notes string) { d.authorNotes = notes }

// UpdateAutoNarrationEnabled toggles automatic narration
func (d *Document) UpdateAutoNarrationEnabled(enabled bool) { d.autoNarrationEnabled = enabled }

// UpdateCorrectnessFeedbackEnabled toggles correctness feedback
func (d *Document) UpdateCorrectnessFeedbackEnabled(enabled bool) {
	d.correctnessFeedbackEnabled = enabled
}

// UpdateParamSpecs replaces the declared parameter specifications
func (d *Document) UpdateParamSpecs(specs map[string]entities.ParamSpec) {
	d.paramSpecs = make(map[string]entities.ParamSpec, len(specs))
	for k, v := range specs {
		d.paramSpecs[k] = v
	}
}

// UpdateParamChanges replaces the document-level parameter mutations
func (d *Document) UpdateParamChanges(changes []entities.ParamChange) {
	d.paramChanges = entities.CopyParamChanges(changes)
}

// SetNodeSchemaVersion records the node collection's schema version
func (d *Document) SetNodeSchemaVersion(version int) { d.nodeSchemaVersion = version }

// SetVersion records the document's edit-history version, assigned by
// the storage boundary
func (d *Document) SetVersion(version int) { d.version = version }

// SetTimestamps records the out-of-band storage timestamps
func (d *Document) SetTimestamps(createdOn, lastUpdated *time.Time) {
	d.createdOn = createdOn
	d.lastUpdated = lastUpdated
}

// Structural mutation

// AddNodes inserts default nodes under the given names. Either all
// names are inserted or none: duplicates fail before any mutation.
func (d *Document) AddNodes(names []string) error {
	for _, name := range names {
		if _, exists := d.nodes[name]; exists {
			return pkgerrors.NewDuplicateNameError(name)
		}
	}
	for _, name := range names {
		if err := utils.RequireValidName(name, "a node name", false); err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
	}

	for _, name := range names {
		d.nodes[name] = entities.NewDefaultNode(name, false)
		d.addEvent(events.NodeAdded{
			BaseEvent: events.NewBase(d.id.String(), "document.node_added"),
			NodeName:  name,
		})
	}
	return nil
}

// RenameNode renames a node and rewrites every outcome dest in the
// graph that named it. Renaming a node to itself is a no-op.
func (d *Document) RenameNode(oldName, newName string) error {
	if _, ok := d.nodes[oldName]; !ok {
		return pkgerrors.NewNotFoundError("node " + oldName)
	}
	if oldName != newName {
		if _, ok := d.nodes[newName]; ok {
			return pkgerrors.NewDuplicateNameError(newName)
		}
	}
	if oldName == newName {
		return nil
	}
	if err := utils.RequireValidName(newName, "a node name", false); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	d.nodes[newName] = d.nodes[oldName].DeepCopy()
	delete(d.nodes, oldName)

	if d.initNodeName == oldName {
		if err := d.UpdateInitNodeName(newName); err != nil {
			return err
		}
	}

	for _, node := range d.nodes {
		for _, outcome := range node.Interaction.AllOutcomes() {
			if outcome.Dest == oldName {
				outcome.Dest = newName
			}
		}
	}

	d.addEvent(events.NodeRenamed{
		BaseEvent: events.NewBase(d.id.String(), "document.node_renamed"),
		OldName:   oldName,
		NewName:   newName,
	})
	return nil
}

// DeleteNode removes a node. Every edge into the deleted node becomes a
// self-loop on its source node. The initial node is never deletable.
func (d *Document) DeleteNode(name string) error {
	if _, ok := d.nodes[name]; !ok {
		return pkgerrors.NewNotFoundError("node " + name)
	}
	if d.initNodeName == name {
		return pkgerrors.NewInvalidOperationError(
			"cannot delete the initial node of a document")
	}

	for otherName, other := range d.nodes {
		if otherName == name {
			continue
		}
		for _, outcome := range other.Interaction.AllOutcomes() {
			if outcome.Dest == name {
				outcome.Dest = otherName
			}
		}
	}

	delete(d.nodes, name)

	d.addEvent(events.NodeDeleted{
		BaseEvent: events.NewBase(d.id.String(), "document.node_deleted"),
		NodeName:  name,
	})
	return nil
}

// UpdateInitNodeName designates a new initial node. The previous
// initial node loses its checkpoint flag; the new one gains it.
func (d *Document) UpdateInitNodeName(name string) error {
	if _, ok := d.nodes[name]; !ok {
		return pkgerrors.NewInvalidOperationError(
			"invalid new initial node name: " + name +
				"; it is not in the node list of this document")
	}
	oldName := d.initNodeName
	if prev, ok := d.nodes[oldName]; ok {
		prev.CardIsCheckpoint = false
	}
	d.initNodeName = name
	d.nodes[name].CardIsCheckpoint = true

	d.addEvent(events.InitNodeChanged{
		BaseEvent: events.NewBase(d.id.String(), "document.init_node_changed"),
		OldName:   oldName,
		NewName:   name,
	})
	return nil
}

// Derived queries

// AllHTML returns every HTML content string in the document
func (d *Document) AllHTML() []string {
	var html []string
	for _, node := range d.nodes {
		html = append(html, node.AllHTML()...)
	}
	return html
}

// ContentCount returns the number of distinct translatable content
// fields in the document
func (d *Document) ContentCount() int {
	count := 0
	for _, node := range d.nodes {
		count += node.TranslatableContentCount()
	}
	return count
}

// TranslationCounts returns, per language, how many content fields have
// an up-to-date translation anywhere in the document
func (d *Document) TranslationCounts() map[string]int {
	counts := map[string]int{}
	for _, node := range d.nodes {
		for lang, count := range node.TranslationCounts() {
			counts[lang] += count
		}
	}
	return counts
}

// LanguagesWithCompleteTranslation lists languages in which every
// content field has an up-to-date translation
func (d *Document) LanguagesWithCompleteTranslation() []string {
	contentCount := d.ContentCount()
	var languages []string
	for lang, count := range d.TranslationCounts() {
		if count == contentCount {
			languages = append(languages, lang)
		}
	}
	return languages
}

// GetUncommittedEvents returns all uncommitted domain events
func (d *Document) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(d.events))
	copy(out, d.events)
	return out
}

// MarkEventsAsCommitted clears all uncommitted events
func (d *Document) MarkEventsAsCommitted() {
	d.events = nil
}

func (d *Document) addEvent(event events.DomainEvent) {
	d.events = append(d.events, event)
}
