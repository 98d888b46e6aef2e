package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"freightdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	defaultAuditPage = 50
	maxAuditPage     = 500
)

// AuditLogsRepository appends to and reads the document change trail.
// Writes go through the transaction's DBTX so a rolled back change leaves
// no audit row behind.
type AuditLogsRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	// ListByRecord returns the newest entries first.
	ListByRecord(ctx context.Context, tableName, recordID string, limit int) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db DBTX
}

func NewAuditLogsRepo(db DBTX) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

const insertAuditLog = `
	INSERT INTO document_audit_logs (id, table_name, record_id, action, new_values, changed_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (r *auditLogsRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now().UTC()

	var values []byte
	if entry.NewValues != nil {
		var err error
		if values, err = json.Marshal(entry.NewValues); err != nil {
			return fmt.Errorf("encode audit values for %s %s: %w", entry.TableName, entry.RecordID, err)
		}
	}

	_, err := r.db.Exec(ctx, insertAuditLog,
		entry.ID, entry.TableName, entry.RecordID, entry.Action, values, entry.ChangedBy, entry.CreatedAt)
	return err
}

const selectAuditLogs = `
	SELECT id, table_name, record_id, action, new_values, changed_by, created_at
	FROM document_audit_logs
	WHERE table_name = $1 AND record_id = $2
	ORDER BY created_at DESC
	LIMIT $3`

func (r *auditLogsRepo) ListByRecord(ctx context.Context, tableName, recordID string, limit int) ([]*models.AuditLog, error) {
	switch {
	case limit <= 0:
		limit = defaultAuditPage
	case limit > maxAuditPage:
		limit = maxAuditPage
	}

	rows, err := r.db.Query(ctx, selectAuditLogs, tableName, recordID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanAuditLog(row pgx.Row) (*models.AuditLog, error) {
	var (
		entry  models.AuditLog
		values []byte
	)
	if err := row.Scan(&entry.ID, &entry.TableName, &entry.RecordID, &entry.Action, &values, &entry.ChangedBy, &entry.CreatedAt); err != nil {
		return nil, err
	}
	if len(values) > 0 {
		if err := json.Unmarshal(values, &entry.NewValues); err != nil {
			return nil, fmt.Errorf("decode audit values of %s: %w", entry.ID, err)
		}
	}
	return &entry, nil
}
