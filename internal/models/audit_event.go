package models

import "time"

// AuditEvent is a row of audit_events. Detail is stored as JSONB.
type AuditEvent struct {
	ID               int64     `db:"id"`
	TenantID         string    `db:"tenant_id"`
	OccurredAt       time.Time `db:"occurred_at"`
	Actor            string    `db:"actor"`
	Checker          *string   `db:"checker"`
	ActionName       string    `db:"action_name"`
	EntityName       string    `db:"entity_name"`
	ResourceID       *string   `db:"resource_id"`
	OfficeID         *string   `db:"office_id"`
	PermissionCode   string    `db:"permission_code"`
	ProcessingResult string    `db:"processing_result"`
	Detail           []byte    `db:"detail"`
	Digest           string    `db:"digest"`
}
