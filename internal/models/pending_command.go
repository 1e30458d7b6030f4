package models

import "time"

// PendingCommand is a row of pending_commands.
type PendingCommand struct {
	TenantID        string     `db:"tenant_id"`
	PendingID       string     `db:"pending_id"`
	Maker           string     `db:"maker"`
	PermissionCode  string     `db:"permission_code"`
	Operation       string     `db:"operation"`
	OfficeID        *string    `db:"office_id"`
	Payload         []byte     `db:"payload"`
	SubmittedAt     time.Time  `db:"submitted_at"`
	Status          string     `db:"status"`
	Checker         *string    `db:"checker"`
	DecidedAt       *time.Time `db:"decided_at"`
	RejectionReason *string    `db:"rejection_reason"`
}
