package services

import (
	"context"

	"github.com/SscSPs/fincontrol/internal/core/domain"
)

// PreparedCommand is a command that has been decoded, validated and checked against the
// permission matrix but not executed yet.
type PreparedCommand struct {
	Command          domain.Command
	Payload          domain.CommandPayload
	PermissionCode   string
	ActionName       string
	EntityName       string
	OfficeID         string
	RequiresApproval bool
}

// MakerCheckerSvcFacade is the gate every state-changing command passes through.
// Each attempt made through Submit produces exactly one audit event.
type MakerCheckerSvcFacade interface {
	// Submit executes the command directly or defers it to the approval inbox.
	Submit(ctx context.Context, cc domain.CommandContext, cmd domain.Command) (*domain.CommandOutcome, error)

	// Prepare decodes and validates cmd and resolves its approval requirement without side effects.
	Prepare(ctx context.Context, cc domain.CommandContext, cmd domain.Command) (*PreparedCommand, error)

	// ExecutePrepared runs a prepared command and appends its processed event within the
	// caller's transaction. Failures are returned without writing an errored event.
	ExecutePrepared(ctx context.Context, cc domain.CommandContext, prepared *PreparedCommand, detail domain.AuditDetail) (*domain.CommandOutcome, error)

	// RecordFailure appends an errored event for an attempt that did not go through Submit.
	RecordFailure(ctx context.Context, cc domain.CommandContext, cmd domain.Command, cause error, detail domain.AuditDetail) int64
}

// ApprovalNotifier publishes approval inbox changes. Implementations must not fail the caller.
type ApprovalNotifier interface {
	NotifyPendingCommand(ctx context.Context, tenantID string, cmd domain.PendingCommand)
}

// CommandCatalogSvc describes the registered operations.
type CommandCatalogSvc interface {
	// Catalog returns one permission entry per registered permission code.
	Catalog() []domain.PermissionEntry
	// Operations returns the registered operation names in registration order.
	Operations() []string
}
