package services

import (
	"context"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/SscSPs/fincontrol/internal/dto"
)

// AuditSvcFacade is the read side of the audit log.
type AuditSvcFacade interface {
	// ListAuditEvents searches the log with cursor pagination.
	ListAuditEvents(ctx context.Context, cc domain.CommandContext, params dto.ListAuditEventsParams) (*dto.ListAuditEventsResponse, error)

	// Timeline groups the events of a time range by calendar day.
	Timeline(ctx context.Context, cc domain.CommandContext, params dto.AuditTimelineParams) (*domain.AuditTimeline, error)
}
