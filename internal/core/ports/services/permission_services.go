package services

import (
	"context"

	"github.com/SscSPs/fincontrol/internal/core/domain"
)

// PermissionReaderSvc answers approval questions for the gate and lists the matrix.
type PermissionReaderSvc interface {
	// RequiresApproval reports whether code needs checker approval in the tenant.
	// Codes missing from the catalog follow the configured MissingCodePolicy.
	RequiresApproval(ctx context.Context, tenantID string, code string) (bool, error)

	// ListPermissions returns the tenant's matrix, optionally for one grouping.
	ListPermissions(ctx context.Context, tenantID string, grouping string) ([]domain.PermissionEntry, error)
}

// PermissionWriterSvc mutates the matrix.
type PermissionWriterSvc interface {
	// SetMany applies each update independently and reports per-code results.
	SetMany(ctx context.Context, cc domain.CommandContext, updates []domain.PermissionUpdate) ([]domain.PermissionUpdateResult, error)

	// SetGroup applies requiresApproval to every code of a grouping.
	SetGroup(ctx context.Context, cc domain.CommandContext, grouping string, requiresApproval bool) ([]domain.PermissionUpdateResult, error)

	// SyncCatalog registers the codes known to the command registry.
	SyncCatalog(ctx context.Context, entries []domain.PermissionEntry) error
}

// PermissionSvcFacade combines the permission interfaces.
type PermissionSvcFacade interface {
	PermissionReaderSvc
	PermissionWriterSvc
}
