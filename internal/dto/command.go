package dto

import (
	"encoding/json"

	"github.com/SscSPs/fincontrol/internal/core/domain"
)

// SubmitCommandRequest is a command submitted to the maker-checker gate.
type SubmitCommandRequest struct {
	Operation string          `json:"operation" binding:"required"`
	Payload   json.RawMessage `json:"payload" binding:"required"`
}

// ToCommand converts the request to a domain.Command.
func (r SubmitCommandRequest) ToCommand() domain.Command {
	return domain.Command{Operation: r.Operation, Payload: r.Payload}
}

// CommandResponse is returned by every endpoint that submits a command.
type CommandResponse struct {
	State        domain.CommandState `json:"state"`
	ResourceID   string              `json:"resourceID,omitempty"`
	PendingID    string              `json:"pendingID,omitempty"`
	AuditEventID int64               `json:"auditEventID"`
	Changes      map[string]any      `json:"changes,omitempty"`
	Body         any                 `json:"body,omitempty"`
}

// ToCommandResponse converts a gate outcome to its response DTO.
func ToCommandResponse(o *domain.CommandOutcome) CommandResponse {
	resp := CommandResponse{
		State:        o.State,
		PendingID:    o.PendingID,
		AuditEventID: o.AuditEventID,
	}
	if o.Result != nil {
		resp.ResourceID = o.Result.ResourceID
		resp.Changes = o.Result.Changes
		resp.Body = o.Result.Body
	}
	return resp
}
