package services

import (
	"context"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/SscSPs/fincontrol/internal/dto"
)

// ApprovalReaderSvc lists the approval inbox.
type ApprovalReaderSvc interface {
	GetPendingCommand(ctx context.Context, cc domain.CommandContext, pendingID string) (*domain.PendingCommand, error)
	ListPendingCommands(ctx context.Context, cc domain.CommandContext, params dto.ListPendingCommandsParams) (*dto.ListPendingCommandsResponse, error)
}

// ApprovalDeciderSvc decides pending commands. Exactly one decision wins per command;
// the loser receives apperrors.ErrConflict.
type ApprovalDeciderSvc interface {
	// Approve marks the command approved, then executes it with cc.Maker acting as checker.
	// A handler failure is returned but does not revert the approval.
	Approve(ctx context.Context, cc domain.CommandContext, pendingID string) (*domain.CommandOutcome, error)

	// Reject marks the command rejected. No handler runs.
	Reject(ctx context.Context, cc domain.CommandContext, pendingID string, reason string) (*domain.CommandOutcome, error)
}

// ApprovalSvcFacade combines the approval inbox interfaces.
type ApprovalSvcFacade interface {
	ApprovalReaderSvc
	ApprovalDeciderSvc
}
