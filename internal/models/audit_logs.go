package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB is a free-form JSON object stored in a jsonb column.
type JSONB map[string]interface{}

// AuditLog records one change to a document row, written in the same
// transaction as the change itself.
type AuditLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TableName string     `json:"table_name" db:"table_name"`
	RecordID  string     `json:"record_id" db:"record_id"`
	Action    string     `json:"action" db:"action"`
	NewValues JSONB      `json:"new_values" db:"new_values"`
	ChangedBy *uuid.UUID `json:"changed_by" db:"changed_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Action constants for audit logs
const (
	ActionInsert     = "INSERT"
	ActionUpdate     = "UPDATE"
	ActionSoftDelete = "SOFT_DELETE"
)

// Audited tables
const (
	TableMasterDocuments = "master_documents"
	TableHouseDocuments  = "house_documents"
)
