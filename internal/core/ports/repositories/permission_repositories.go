package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fincontrol/internal/core/domain"
)

// PermissionReader defines read operations on the permission matrix.
type PermissionReader interface {
	// FindPermission returns the tenant's entry for code. Returns apperrors.ErrNotFound when the
	// code is not in the catalog.
	FindPermission(ctx context.Context, tenantID string, code string) (*domain.PermissionEntry, error)

	// ListPermissions returns the tenant's matrix, optionally restricted to one grouping.
	ListPermissions(ctx context.Context, tenantID string, grouping string) ([]domain.PermissionEntry, error)

	// ListCodesByGrouping returns every catalog code sharing a grouping.
	ListCodesByGrouping(ctx context.Context, grouping string) ([]string, error)
}

// PermissionWriter defines write operations on the permission matrix.
type PermissionWriter interface {
	// SetRequiresApproval upserts a single tenant toggle as its own atomic write.
	// Returns apperrors.ErrNotFound when the code is not in the catalog.
	SetRequiresApproval(ctx context.Context, tenantID string, code string, requiresApproval bool, userID string, at time.Time) error

	// UpsertCatalog registers codes and their groupings. Existing tenant toggles are untouched.
	UpsertCatalog(ctx context.Context, entries []domain.PermissionEntry) error
}

// PermissionRepositoryFacade combines permission reader and writer.
type PermissionRepositoryFacade interface {
	PermissionReader
	PermissionWriter
}
