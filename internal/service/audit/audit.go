// Package audit records admin actions. Every audited call leaves exactly one log entry
package audit

import (
	"context"
	"maps"

	"github.com/google/uuid"

	"github.com/nkiryanov/crownplay/internal/logger"
	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
)

// Action to audit. Metadata may be extended by the action itself
type ActionFunc func(storage repository.Storage, meta map[string]any) error

type Auditor struct {
	storage repository.Storage
	logger  logger.Logger
}

func New(storage repository.Storage, l logger.Logger) *Auditor {
	if l == nil {
		l = logger.NewNoOpLogger()
	}
	return &Auditor{storage: storage, logger: l}
}

// Run fn in transaction and record the outcome.
// On success the entry is stored in the same transaction. On failure fn changes are rolled back
// and the entry is stored separately with the error text
func (a *Auditor) Run(ctx context.Context, entry models.AuditLog, fn ActionFunc) error {
	meta := maps.Clone(entry.Metadata)
	if meta == nil {
		meta = map[string]any{}
	}

	err := a.storage.InTx(ctx, func(storage repository.Storage) error {
		if err := fn(storage, meta); err != nil {
			return err
		}

		succeeded := entry
		succeeded.Metadata = maps.Clone(meta)
		succeeded.Metadata["outcome"] = models.AuditOutcomeSucceeded

		_, err := storage.Audit().CreateAuditLog(ctx, succeeded)
		return err
	})
	if err == nil {
		return nil
	}

	failed := entry
	failed.Metadata = meta
	failed.Metadata["outcome"] = models.AuditOutcomeFailed
	failed.Metadata["error"] = err.Error()

	if _, auditErr := a.storage.Audit().CreateAuditLog(ctx, failed); auditErr != nil {
		a.logger.Error("Failed action not audited",
			"admin_id", entry.AdminID, "action", entry.Action, "target_id", entry.TargetID, "error", auditErr)
	}

	return err
}

func (a *Auditor) List(ctx context.Context, targetType string, targetID uuid.UUID) ([]models.AuditLog, error) {
	return a.storage.Audit().ListAuditLogs(ctx, targetType, targetID)
}
