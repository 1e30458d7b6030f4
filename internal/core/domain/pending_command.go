package domain

import (
	"encoding/json"
	"time"
)

// PendingStatus is the approval state of a deferred command.
type PendingStatus string

const (
	PendingStatusPending  PendingStatus = "pending"
	PendingStatusApproved PendingStatus = "approved"
	PendingStatusRejected PendingStatus = "rejected"
)

// IsTerminal reports whether the status can no longer change.
func (s PendingStatus) IsTerminal() bool {
	return s == PendingStatusApproved || s == PendingStatusRejected
}

// PendingCommand is a command deferred by the maker-checker gate. It moves exactly once
// from pending to approved or rejected and is never re-opened.
type PendingCommand struct {
	PendingID       string          `json:"pendingID"`
	Maker           string          `json:"maker"`
	PermissionCode  string          `json:"permissionCode"`
	Operation       string          `json:"operation"`
	OfficeID        string          `json:"officeID,omitempty"`
	Payload         json.RawMessage `json:"payload"`
	SubmittedAt     time.Time       `json:"submittedAt"`
	Status          PendingStatus   `json:"status"`
	Checker         string          `json:"checker,omitempty"`
	DecidedAt       *time.Time      `json:"decidedAt,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
}

// PendingCommandFilter narrows approval inbox listings. All fields are optional.
type PendingCommandFilter struct {
	Maker     string
	Checker   string
	OfficeID  string
	Status    PendingStatus
	From      *time.Time
	To        *time.Time
	Limit     int
	NextToken *string
}
