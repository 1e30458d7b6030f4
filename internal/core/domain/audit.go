package domain

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ProcessingResult is the outcome recorded on an audit event.
type ProcessingResult string

const (
	ResultProcessed        ProcessingResult = "processed"
	ResultAwaitingApproval ProcessingResult = "awaiting-approval"
	ResultRejected         ProcessingResult = "rejected"
	ResultErrored          ProcessingResult = "errored"
)

// AuditDetail is the structured payload of an audit event.
type AuditDetail struct {
	Operation        string         `json:"operation,omitempty"`
	Changes          map[string]any `json:"changes,omitempty"`
	Error            string         `json:"error,omitempty"`
	PendingCommandID string         `json:"pendingCommandID,omitempty"`
	BatchRequestID   string         `json:"batchRequestID,omitempty"`
	Reason           string         `json:"reason,omitempty"`
	RolledBack       bool           `json:"rolledBack,omitempty"`
}

// AuditEvent is an immutable record of an executed or attempted command.
// Events are totally ordered by (Timestamp, ID).
type AuditEvent struct {
	ID               int64            `json:"id"`
	TenantID         string           `json:"-"`
	Timestamp        time.Time        `json:"timestamp"`
	Actor            string           `json:"actor"`
	Checker          string           `json:"checker,omitempty"`
	ActionName       string           `json:"actionName"`
	EntityName       string           `json:"entityName"`
	ResourceID       string           `json:"resourceID,omitempty"`
	OfficeID         string           `json:"officeID,omitempty"`
	PermissionCode   string           `json:"permissionCode"`
	ProcessingResult ProcessingResult `json:"processingResult"`
	Detail           AuditDetail      `json:"detail"`
	Digest           string           `json:"digest"`
}

// Seal normalizes the event into the exact shape it has after a round trip through storage
// and computes its digest. It must be called once, before the event is appended.
func (e *AuditEvent) Seal() {
	e.Timestamp = e.Timestamp.UTC().Truncate(time.Microsecond)
	e.Detail.Changes = NormalizeChanges(e.Detail.Changes)
	e.Digest = e.ComputeDigest()
}

// Verify reports whether the stored digest matches the event content.
func (e AuditEvent) Verify() bool {
	return e.Digest != "" && e.Digest == e.ComputeDigest()
}

// ComputeDigest returns the hex BLAKE2b-256 of the canonical event content. The id is
// excluded because it is assigned by the store on append.
func (e AuditEvent) ComputeDigest() string {
	canonical := struct {
		TenantID         string           `json:"tenantID"`
		Timestamp        string           `json:"timestamp"`
		Actor            string           `json:"actor"`
		Checker          string           `json:"checker"`
		ActionName       string           `json:"actionName"`
		EntityName       string           `json:"entityName"`
		ResourceID       string           `json:"resourceID"`
		OfficeID         string           `json:"officeID"`
		PermissionCode   string           `json:"permissionCode"`
		ProcessingResult ProcessingResult `json:"processingResult"`
		Detail           AuditDetail      `json:"detail"`
	}{
		TenantID:         e.TenantID,
		Timestamp:        e.Timestamp.UTC().Format(time.RFC3339Nano),
		Actor:            e.Actor,
		Checker:          e.Checker,
		ActionName:       e.ActionName,
		EntityName:       e.EntityName,
		ResourceID:       e.ResourceID,
		OfficeID:         e.OfficeID,
		PermissionCode:   e.PermissionCode,
		ProcessingResult: e.ProcessingResult,
		Detail:           e.Detail,
	}
	// encoding/json sorts map keys, so the encoding is deterministic.
	b, err := json.Marshal(canonical)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// NormalizeChanges converts a change map to its JSON-decoded form (numbers become float64,
// decimals and times become strings) so that digests survive storage round trips.
func NormalizeChanges(changes map[string]any) map[string]any {
	if len(changes) == 0 {
		return nil
	}
	b, err := json.Marshal(changes)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}

// AuditFilter narrows audit log queries. Events are returned ascending by (Timestamp, ID).
type AuditFilter struct {
	From             *time.Time // inclusive
	To               *time.Time // exclusive
	Actor            string
	EntityName       string
	ResourceID       string
	ProcessingResult ProcessingResult
	// AfterTimestamp/AfterID form an exclusive cursor.
	AfterTimestamp *time.Time
	AfterID        int64
	Limit          int // 0 means no limit
}
