package repositories

import (
	"context"

	"github.com/SscSPs/fincontrol/internal/core/domain"
)

// AuditAppender appends to the audit log. Appends are single-row atomic inserts.
type AuditAppender interface {
	// AppendAuditEvent stores the event and returns its assigned id.
	AppendAuditEvent(ctx context.Context, event domain.AuditEvent) (int64, error)
}

// AuditReader reads the audit log.
type AuditReader interface {
	// ListAuditEvents returns events matching filter, ascending by (timestamp, id).
	ListAuditEvents(ctx context.Context, tenantID string, filter domain.AuditFilter) ([]domain.AuditEvent, error)
}

// AuditRepositoryFacade combines appender and reader.
type AuditRepositoryFacade interface {
	AuditAppender
	AuditReader
}
