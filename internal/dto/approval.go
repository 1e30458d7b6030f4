package dto

import "github.com/SscSPs/fincontrol/internal/core/domain"

// RejectCommandRequest carries the checker's reason for rejecting a pending command.
type RejectCommandRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListPendingCommandsParams holds query parameters for the approval inbox.
type ListPendingCommandsParams struct {
	Maker     string  `form:"maker"`
	Checker   string  `form:"checker"`
	OfficeID  string  `form:"officeID"`
	Status    string  `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	From      string  `form:"from"`
	To        string  `form:"to"`
	Limit     int     `form:"limit,default=20" binding:"min=1,max=200"`
	NextToken *string `form:"nextToken"`
}

// ListPendingCommandsResponse is one page of the approval inbox.
type ListPendingCommandsResponse struct {
	Commands  []domain.PendingCommand `json:"commands"`
	NextToken *string                 `json:"nextToken,omitempty"`
}
