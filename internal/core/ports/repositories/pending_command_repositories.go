package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fincontrol/internal/core/domain"
)

// PendingCommandReader defines read operations for the approval inbox.
type PendingCommandReader interface {
	// FindPendingCommandByID returns apperrors.ErrNotFound if absent.
	FindPendingCommandByID(ctx context.Context, tenantID string, pendingID string) (*domain.PendingCommand, error)

	// ListPendingCommands returns a page of commands matching filter and a token for the next page.
	ListPendingCommands(ctx context.Context, tenantID string, filter domain.PendingCommandFilter) ([]domain.PendingCommand, *string, error)
}

// PendingCommandWriter defines write operations for the approval inbox.
type PendingCommandWriter interface {
	// SavePendingCommand persists a new command in pending status.
	SavePendingCommand(ctx context.Context, tenantID string, cmd domain.PendingCommand) error

	// DecidePendingCommand moves a command from pending to status in one update guarded by
	// status = pending. Returns apperrors.ErrConflict when another decision already won.
	DecidePendingCommand(ctx context.Context, tenantID string, pendingID string, status domain.PendingStatus, checker string, reason string, at time.Time) error
}

// PendingCommandRepositoryFacade combines reader and writer.
type PendingCommandRepositoryFacade interface {
	PendingCommandReader
	PendingCommandWriter
}
