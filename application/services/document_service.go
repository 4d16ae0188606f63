// Package services provides the application-facing operations over
// stored documents: import, change application, merge checks and
// publication.
package services

import (
	"context"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"pathways-engine/domain/changes"
	"pathways-engine/domain/core/aggregates"
	"pathways-engine/domain/core/entities"
	"pathways-engine/domain/core/validators"
	"pathways-engine/domain/merge"
	"pathways-engine/domain/migrations"
	"pathways-engine/infrastructure/persistence/abstractions"
	pkgerrors "pathways-engine/pkg/errors"
)

// DocumentService coordinates the engine's passes around the store.
// All validation and migration happens in memory; a document version is
// only persisted after the whole change batch applied cleanly.
type DocumentService struct {
	store  abstractions.DocumentStore
	logger *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(store abstractions.DocumentStore, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		store:  store,
		logger: logger,
	}
}

// Create stores a fresh default document and returns it at version 1.
func (s *DocumentService) Create(ctx context.Context, title, category, objective, languageCode string) (*aggregates.Document, error) {
	doc := aggregates.NewDefaultDocument(
		aggregates.NewDocumentID(), title, category, objective, languageCode,
		migrations.CurrentNodeSchemaVersion)
	if err := validators.Validate(doc, false); err != nil {
		return nil, err
	}

	version, err := s.store.Put(ctx, doc.ID().String(), doc.ToRecord(migrations.CurrentDocumentSchemaVersion), 0)
	if err != nil {
		return nil, err
	}
	doc.SetVersion(version)

	s.logger.Info("Document created",
		zap.String("documentID", doc.ID().String()),
		zap.String("title", title),
	)
	return doc, nil
}

// Import migrates a serialized document in yaml form to the current
// schema, validates it and stores it as version 1.
func (s *DocumentService) Import(ctx context.Context, data []byte) (*aggregates.Document, error) {
	doc, err := migrations.FromYAML(data)
	if err != nil {
		return nil, err
	}
	if err := validators.Validate(doc, false); err != nil {
		return nil, err
	}

	version, err := s.store.Put(ctx, doc.ID().String(), doc.ToRecord(migrations.CurrentDocumentSchemaVersion), 0)
	if err != nil {
		return nil, err
	}
	doc.SetVersion(version)

	s.logger.Info("Document imported",
		zap.String("documentID", doc.ID().String()),
		zap.Int("version", version),
	)
	return doc, nil
}

// Load reconstructs a document from the store. Version 0 loads the
// newest one.
func (s *DocumentService) Load(ctx context.Context, id string, version int) (*aggregates.Document, error) {
	record, err := s.store.Get(ctx, id, version)
	if err != nil {
		return nil, err
	}
	return aggregates.FromRecord(record)
}

// Export renders the stored head of a document as yaml.
func (s *DocumentService) Export(ctx context.Context, id string) ([]byte, error) {
	doc, err := s.Load(ctx, id, abstractions.VersionLatest)
	if err != nil {
		return nil, err
	}
	return migrations.ToYAML(doc)
}

// ApplyChangeList folds an ordered change list into the document at
// expectedVersion and persists the result with compare-and-swap. On a
// version conflict the caller should run CanMergeChangeList and retry
// against the new head.
func (s *DocumentService) ApplyChangeList(
	ctx context.Context,
	id string,
	expectedVersion int,
	changeList []*changes.ChangeRecord,
) (*aggregates.Document, error) {
	doc, err := s.Load(ctx, id, expectedVersion)
	if err != nil {
		return nil, err
	}

	for _, change := range changeList {
		if err := applyChange(doc, change); err != nil {
			return nil, err
		}
	}
	if err := validators.Validate(doc, false); err != nil {
		return nil, err
	}

	version, err := s.store.Put(ctx, id, doc.ToRecord(migrations.CurrentDocumentSchemaVersion), expectedVersion)
	if err != nil {
		if pkgerrors.IsType(err, pkgerrors.ErrorTypeVersionConflict) {
			s.logger.Warn("Document head advanced during edit",
				zap.String("documentID", id),
				zap.Int("expectedVersion", expectedVersion),
			)
		}
		return nil, err
	}
	doc.SetVersion(version)

	s.logger.Info("Change list applied",
		zap.String("documentID", id),
		zap.Int("version", version),
		zap.Int("changes", len(changeList)),
	)
	return doc, nil
}

// CanMergeChangeList decides whether changeList, authored against
// baseVersion, can be replayed onto the stored head. compositeList is
// the list that produced the head from baseVersion. Returns
// (mergeable, needsManualReview).
func (s *DocumentService) CanMergeChangeList(
	ctx context.Context,
	id string,
	baseVersion int,
	compositeList []*changes.ChangeRecord,
	changeList []*changes.ChangeRecord,
) (bool, bool, error) {
	baseDoc, err := s.Load(ctx, id, baseVersion)
	if err != nil {
		return false, false, err
	}
	headDoc, err := s.Load(ctx, id, abstractions.VersionLatest)
	if err != nil {
		return false, false, err
	}

	analyzer := merge.NewAnalyzer(compositeList)
	mergeable, needsReview := analyzer.IsChangeListMergeable(changeList, baseDoc, headDoc)
	if needsReview {
		s.logger.Warn("Change list flagged for manual review",
			zap.String("documentID", id),
			zap.Int("baseVersion", baseVersion),
		)
	}
	return mergeable, needsReview, nil
}

// ValidateForPublication runs the strict validation pass over the
// stored head.
func (s *DocumentService) ValidateForPublication(ctx context.Context, id string) error {
	doc, err := s.Load(ctx, id, abstractions.VersionLatest)
	if err != nil {
		return err
	}
	return validators.Validate(doc, true)
}

// applyChange folds a single change record into the document.
func applyChange(doc *aggregates.Document, change *changes.ChangeRecord) error {
	switch change.Cmd {
	case changes.CmdAddNode:
		return doc.AddNodes([]string{change.NodeName})

	case changes.CmdRenameNode:
		return doc.RenameNode(change.OldNodeName, change.NewNodeName)

	case changes.CmdDeleteNode:
		return doc.DeleteNode(change.NodeName)

	case changes.CmdEditDocumentProperty:
		return applyDocumentProperty(doc, change)

	case changes.CmdEditNodeProperty:
		return applyNodeProperty(doc, change)

	case changes.CmdAddWrittenTranslation:
		node, ok := doc.Node(change.NodeName)
		if !ok {
			return pkgerrors.NewNotFoundError("node " + change.NodeName)
		}
		node.WrittenTranslations.Add(
			change.ContentID, change.LanguageCode, change.DataFormat,
			change.TranslationHTML)
		return nil

	case changes.CmdMarkTranslationNeedsUpdate:
		node, ok := doc.Node(change.NodeName)
		if !ok {
			return pkgerrors.NewNotFoundError("node " + change.NodeName)
		}
		node.WrittenTranslations.MarkNeedingUpdate(change.ContentID, change.LanguageCode)
		return nil

	case changes.CmdMarkTranslationsNeedUpdate:
		node, ok := doc.Node(change.NodeName)
		if !ok {
			return pkgerrors.NewNotFoundError("node " + change.NodeName)
		}
		node.WrittenTranslations.MarkAllNeedingUpdate(change.ContentID)
		return nil

	case changes.CmdMigrateNodeSchema:
		doc.SetNodeSchemaVersion(change.ToVersion)
		return nil
	}

	return pkgerrors.NewInvalidOperationError(
		"command " + change.Cmd + " cannot be applied to a document")
}

func applyDocumentProperty(doc *aggregates.Document, change *changes.ChangeRecord) error {
	switch change.PropertyName {
	case aggregates.PropertyTitle:
		doc.UpdateTitle(asStringValue(change.NewValue))
	case aggregates.PropertyCategory:
		doc.UpdateCategory(asStringValue(change.NewValue))
	case aggregates.PropertyObjective:
		doc.UpdateObjective(asStringValue(change.NewValue))
	case aggregates.PropertyLanguageCode:
		doc.UpdateLanguageCode(asStringValue(change.NewValue))
	case aggregates.PropertyBlurb:
		doc.UpdateBlurb(asStringValue(change.NewValue))
	case aggregates.PropertyAuthorNotes:
		doc.UpdateAuthorNotes(asStringValue(change.NewValue))
	case aggregates.PropertyTags:
		var tags []string
		if err := decodeValue(change.NewValue, &tags); err != nil {
			return err
		}
		doc.UpdateTags(tags)
	case aggregates.PropertyParamSpecs:
		var specs map[string]entities.ParamSpec
		if err := decodeValue(change.NewValue, &specs); err != nil {
			return err
		}
		doc.UpdateParamSpecs(specs)
	case aggregates.PropertyParamChanges:
		var paramChanges []entities.ParamChange
		if err := decodeValue(change.NewValue, &paramChanges); err != nil {
			return err
		}
		doc.UpdateParamChanges(paramChanges)
	case aggregates.PropertyInitNodeName:
		return doc.UpdateInitNodeName(asStringValue(change.NewValue))
	case aggregates.PropertyAutoNarrationEnabled:
		doc.UpdateAutoNarrationEnabled(asBoolValue(change.NewValue))
	case aggregates.PropertyCorrectnessFeedbackEnabled:
		doc.UpdateCorrectnessFeedbackEnabled(asBoolValue(change.NewValue))
	default:
		return pkgerrors.NewInvalidOperationError(
			"unknown document property " + change.PropertyName)
	}
	return nil
}

func applyNodeProperty(doc *aggregates.Document, change *changes.ChangeRecord) error {
	node, ok := doc.Node(change.NodeName)
	if !ok {
		return pkgerrors.NewNotFoundError("node " + change.NodeName)
	}

	switch change.PropertyName {
	case changes.NodePropertyContent:
		return decodeValue(change.NewValue, &node.Content)
	case changes.NodePropertySolicitAnswerDetails:
		node.SolicitAnswerDetails = asBoolValue(change.NewValue)
	case changes.NodePropertyCardIsCheckpoint:
		node.CardIsCheckpoint = asBoolValue(change.NewValue)
	case changes.NodePropertyLinkedSkillID:
		if change.NewValue == nil {
			node.LinkedSkillID = nil
		} else {
			id := asStringValue(change.NewValue)
			node.LinkedSkillID = &id
		}
	case changes.NodePropertyNextContentIDIndex:
		var index int
		if err := decodeValue(change.NewValue, &index); err != nil {
			return err
		}
		node.NextContentIDIndex = index
	case changes.NodePropertyInteractionID:
		node.Interaction.ID = asStringValue(change.NewValue)
	case changes.NodePropertyInteractionCustArgs:
		var args map[string]interface{}
		if err := decodeValue(change.NewValue, &args); err != nil {
			return err
		}
		node.Interaction.CustomizationArgs = args
	case changes.NodePropertyInteractionAnswerGroups:
		var groups []entities.AnswerGroup
		if err := decodeValue(change.NewValue, &groups); err != nil {
			return err
		}
		node.Interaction.AnswerGroups = groups
	case changes.NodePropertyInteractionDefaultOutcome:
		if change.NewValue == nil {
			node.Interaction.DefaultOutcome = nil
			return nil
		}
		var outcome entities.Outcome
		if err := decodeValue(change.NewValue, &outcome); err != nil {
			return err
		}
		node.Interaction.DefaultOutcome = &outcome
	case changes.NodePropertyInteractionHints:
		var hints []entities.Hint
		if err := decodeValue(change.NewValue, &hints); err != nil {
			return err
		}
		node.Interaction.Hints = hints
	case changes.NodePropertyInteractionSolution:
		if change.NewValue == nil {
			node.Interaction.Solution = nil
			return nil
		}
		var solution entities.Solution
		if err := decodeValue(change.NewValue, &solution); err != nil {
			return err
		}
		node.Interaction.Solution = &solution
	case changes.NodePropertyUnclassifiedAnswers:
		var answers []interface{}
		if err := decodeValue(change.NewValue, &answers); err != nil {
			return err
		}
		node.Interaction.ConfirmedUnclassifiedAnswers = answers
	case changes.NodePropertyRecordedVoiceovers:
		return decodeValue(change.NewValue, &node.RecordedVoiceovers)
	case changes.NodePropertyWrittenTranslations:
		return decodeValue(change.NewValue, &node.WrittenTranslations)
	case changes.NodePropertyParamChanges:
		var paramChanges []entities.ParamChange
		if err := decodeValue(change.NewValue, &paramChanges); err != nil {
			return err
		}
		node.ParamChanges = paramChanges
	default:
		return pkgerrors.NewInvalidOperationError(
			"unknown node property " + change.PropertyName)
	}
	return nil
}

// decodeValue decodes an untyped change value into a typed target,
// tolerating the loose number and string forms the wire codecs emit.
func decodeValue(value interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return pkgerrors.NewInternalError("could not build the value decoder").WithCause(err)
	}
	if err := decoder.Decode(value); err != nil {
		return pkgerrors.NewMalformedChangeErrorf("invalid change value: %v", err)
	}
	return nil
}

func asStringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBoolValue(v interface{}) bool {
	b, _ := v.(bool)
	return b
}
