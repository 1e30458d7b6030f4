package dto

import "github.com/SscSPs/fincontrol/internal/core/domain"

// ListAuditEventsParams holds query parameters for audit search.
type ListAuditEventsParams struct {
	From             string  `form:"from"`
	To               string  `form:"to"`
	Actor            string  `form:"actor"`
	EntityName       string  `form:"entityName"`
	ResourceID       string  `form:"resourceID"`
	ProcessingResult string  `form:"processingResult" binding:"omitempty,oneof=processed awaiting-approval rejected errored"`
	Limit            int     `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken        *string `form:"nextToken"`
}

// ListAuditEventsResponse is one page of audit events.
type ListAuditEventsResponse struct {
	Events    []domain.AuditEventView `json:"events"`
	NextToken *string                 `json:"nextToken,omitempty"`
}

// AuditTimelineParams holds query parameters for the day-grouped audit timeline.
type AuditTimelineParams struct {
	From      string  `form:"from" binding:"required"`
	To        string  `form:"to" binding:"required"`
	Days      int     `form:"days"`
	NextToken *string `form:"nextToken"`
}
