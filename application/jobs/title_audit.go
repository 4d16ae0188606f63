// Package jobs holds batch passes over the stored document corpus.
package jobs

import (
	"context"

	"go.uber.org/zap"

	"pathways-engine/infrastructure/persistence/abstractions"
)

// DefaultTitleMaxLength is the audit threshold for document titles.
const DefaultTitleMaxLength = 36

// TitleFinding reports one document whose title exceeds the threshold.
type TitleFinding struct {
	DocumentID  string
	Title       string
	TitleLength int
}

// TitleAuditJob scans every stored document and reports the ones whose
// titles are longer than the configured limit.
type TitleAuditJob struct {
	store     abstractions.DocumentStore
	logger    *zap.Logger
	maxLength int
}

// NewTitleAuditJob creates a new title audit job. A non-positive
// maxLength falls back to DefaultTitleMaxLength.
func NewTitleAuditJob(store abstractions.DocumentStore, logger *zap.Logger, maxLength int) *TitleAuditJob {
	if maxLength <= 0 {
		maxLength = DefaultTitleMaxLength
	}
	return &TitleAuditJob{
		store:     store,
		logger:    logger,
		maxLength: maxLength,
	}
}

// Run walks the corpus heads and returns the findings.
func (j *TitleAuditJob) Run(ctx context.Context) ([]TitleFinding, error) {
	ids, err := j.store.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	var findings []TitleFinding
	for _, id := range ids {
		record, err := j.store.Get(ctx, id, abstractions.VersionLatest)
		if err != nil {
			j.logger.Warn("Skipping unreadable document",
				zap.String("documentID", id),
				zap.Error(err),
			)
			continue
		}
		if len([]rune(record.Title)) <= j.maxLength {
			continue
		}
		findings = append(findings, TitleFinding{
			DocumentID:  id,
			Title:       record.Title,
			TitleLength: len([]rune(record.Title)),
		})
		j.logger.Info("Title exceeds the length limit",
			zap.String("documentID", id),
			zap.Int("length", len([]rune(record.Title))),
			zap.Int("limit", j.maxLength),
		)
	}

	j.logger.Info("Title audit finished",
		zap.Int("documents", len(ids)),
		zap.Int("findings", len(findings)),
	)
	return findings, nil
}
