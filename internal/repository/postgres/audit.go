package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/crownplay/internal/models"
)

type AuditRepo struct {
	DB DBTX
}

const auditColumns = `id, created_at, admin_id, action, target_type, target_id, metadata`

const createAuditLog = `-- name: CreateAuditLog
INSERT INTO audit_logs (` + auditColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + auditColumns

func (r *AuditRepo) CreateAuditLog(ctx context.Context, log models.AuditLog) (models.AuditLog, error) {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	if log.Metadata == nil {
		log.Metadata = map[string]any{}
	}

	rows, _ := r.DB.Query(ctx, createAuditLog, log.ID, log.CreatedAt, log.AdminID, log.Action, log.TargetType, log.TargetID, log.Metadata)
	created, err := pgx.CollectOneRow(rows, rowToAuditLog)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const listAuditLogs = `-- name: ListAuditLogs
SELECT ` + auditColumns + ` FROM audit_logs
WHERE target_type = $1 AND target_id = $2
ORDER BY created_at DESC, id DESC
`

func (r *AuditRepo) ListAuditLogs(ctx context.Context, targetType string, targetID uuid.UUID) ([]models.AuditLog, error) {
	rows, _ := r.DB.Query(ctx, listAuditLogs, targetType, targetID)
	logs, err := pgx.CollectRows(rows, rowToAuditLog)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return logs, nil
}

func rowToAuditLog(row pgx.CollectableRow) (models.AuditLog, error) {
	var l models.AuditLog
	err := row.Scan(&l.ID, &l.CreatedAt, &l.AdminID, &l.Action, &l.TargetType, &l.TargetID, &l.Metadata)
	return l, err
}
