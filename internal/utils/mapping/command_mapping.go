package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/SscSPs/fincontrol/internal/models"
)

// ToModelPendingCommand converts a domain PendingCommand to its row.
func ToModelPendingCommand(tenantID string, d domain.PendingCommand) models.PendingCommand {
	return models.PendingCommand{
		TenantID:        tenantID,
		PendingID:       d.PendingID,
		Maker:           d.Maker,
		PermissionCode:  d.PermissionCode,
		Operation:       d.Operation,
		OfficeID:        nullable(d.OfficeID),
		Payload:         []byte(d.Payload),
		SubmittedAt:     d.SubmittedAt,
		Status:          string(d.Status),
		Checker:         nullable(d.Checker),
		DecidedAt:       d.DecidedAt,
		RejectionReason: nullable(d.RejectionReason),
	}
}

// ToDomainPendingCommand converts a pending_commands row.
func ToDomainPendingCommand(m models.PendingCommand) domain.PendingCommand {
	return domain.PendingCommand{
		PendingID:       m.PendingID,
		Maker:           m.Maker,
		PermissionCode:  m.PermissionCode,
		Operation:       m.Operation,
		OfficeID:        deref(m.OfficeID),
		Payload:         json.RawMessage(m.Payload),
		SubmittedAt:     m.SubmittedAt,
		Status:          domain.PendingStatus(m.Status),
		Checker:         deref(m.Checker),
		DecidedAt:       m.DecidedAt,
		RejectionReason: deref(m.RejectionReason),
	}
}

// ToModelAuditEvent converts a sealed domain AuditEvent to its row.
func ToModelAuditEvent(d domain.AuditEvent) (models.AuditEvent, error) {
	detail, err := json.Marshal(d.Detail)
	if err != nil {
		return models.AuditEvent{}, fmt.Errorf("encoding audit detail: %w", err)
	}
	return models.AuditEvent{
		ID:               d.ID,
		TenantID:         d.TenantID,
		OccurredAt:       d.Timestamp,
		Actor:            d.Actor,
		Checker:          nullable(d.Checker),
		ActionName:       d.ActionName,
		EntityName:       d.EntityName,
		ResourceID:       nullable(d.ResourceID),
		OfficeID:         nullable(d.OfficeID),
		PermissionCode:   d.PermissionCode,
		ProcessingResult: string(d.ProcessingResult),
		Detail:           detail,
		Digest:           d.Digest,
	}, nil
}

// ToDomainAuditEvent converts an audit_events row.
func ToDomainAuditEvent(m models.AuditEvent) (domain.AuditEvent, error) {
	var detail domain.AuditDetail
	if len(m.Detail) > 0 {
		if err := json.Unmarshal(m.Detail, &detail); err != nil {
			return domain.AuditEvent{}, fmt.Errorf("decoding audit detail of event %d: %w", m.ID, err)
		}
	}
	return domain.AuditEvent{
		ID:               m.ID,
		TenantID:         m.TenantID,
		Timestamp:        m.OccurredAt.UTC(),
		Actor:            m.Actor,
		Checker:          deref(m.Checker),
		ActionName:       m.ActionName,
		EntityName:       m.EntityName,
		ResourceID:       deref(m.ResourceID),
		OfficeID:         deref(m.OfficeID),
		PermissionCode:   m.PermissionCode,
		ProcessingResult: domain.ProcessingResult(m.ProcessingResult),
		Detail:           detail,
		Digest:           m.Digest,
	}, nil
}
