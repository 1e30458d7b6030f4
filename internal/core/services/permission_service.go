package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
)

// permissionService is the permission matrix store. Every lookup reads the table; nothing is
// cached in process.
type permissionService struct {
	BaseService
	repo   portsrepo.PermissionRepositoryFacade
	policy domain.MissingCodePolicy
}

// PermissionOption configures the permission service.
type PermissionOption func(*permissionService)

// WithMissingCodePolicy sets the answer given for codes absent from the catalog.
func WithMissingCodePolicy(policy domain.MissingCodePolicy) PermissionOption {
	return func(s *permissionService) {
		s.policy = policy
	}
}

// WithPermissionClock replaces the clock used for update timestamps.
func WithPermissionClock(now func() time.Time) PermissionOption {
	return func(s *permissionService) {
		s.now = now
	}
}

// NewPermissionService creates the permission service. The default policy is fail-open.
func NewPermissionService(repo portsrepo.PermissionRepositoryFacade, options ...PermissionOption) portssvc.PermissionSvcFacade {
	svc := &permissionService{
		repo:   repo,
		policy: domain.FailOpen,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PermissionSvcFacade = (*permissionService)(nil)

// RequiresApproval reports whether code needs checker approval in the tenant.
func (s *permissionService) RequiresApproval(ctx context.Context, tenantID string, code string) (bool, error) {
	entry, err := s.repo.FindPermission(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.GetLogger(ctx).Warn("Permission code missing from catalog, applying policy",
				slog.String("code", code),
				slog.String("policy", string(s.policy)))
			return s.policy.RequiresApproval(), nil
		}
		s.LogError(ctx, err, "Failed to look up permission", slog.String("code", code))
		return false, err
	}
	return entry.RequiresApproval, nil
}

// ListPermissions returns the tenant's matrix, optionally for one grouping.
func (s *permissionService) ListPermissions(ctx context.Context, tenantID string, grouping string) ([]domain.PermissionEntry, error) {
	entries, err := s.repo.ListPermissions(ctx, tenantID, grouping)
	if err != nil {
		s.LogError(ctx, err, "Failed to list permissions", slog.String("grouping", grouping))
		return nil, err
	}
	return entries, nil
}

// SetMany applies each update as its own single-row write. One code failing does not stop
// the others; the caller sees every outcome.
func (s *permissionService) SetMany(ctx context.Context, cc domain.CommandContext, updates []domain.PermissionUpdate) ([]domain.PermissionUpdateResult, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: at least one permission update is required", apperrors.ErrValidation)
	}

	now := s.Now()
	results := make([]domain.PermissionUpdateResult, 0, len(updates))
	applied := 0
	for _, u := range updates {
		result := domain.PermissionUpdateResult{Code: u.Code}
		var err error
		if u.Code == "" {
			err = fmt.Errorf("%w: permission code is required", apperrors.ErrValidation)
		} else {
			err = s.repo.SetRequiresApproval(ctx, cc.TenantID, u.Code, u.RequiresApproval, cc.Actor(), now)
		}
		switch {
		case err == nil:
			result.Applied = true
			applied++
		case apperrors.IsOperatorSafe(err):
			result.Error = err.Error()
		default:
			s.LogError(ctx, err, "Failed to update permission", slog.String("code", u.Code))
			result.Error = "internal error"
		}
		results = append(results, result)
	}

	s.LogInfo(ctx, "Permissions updated",
		slog.Int("requested", len(updates)),
		slog.Int("applied", applied))
	return results, nil
}

// SetGroup expands a grouping into its codes and applies them through SetMany.
func (s *permissionService) SetGroup(ctx context.Context, cc domain.CommandContext, grouping string, requiresApproval bool) ([]domain.PermissionUpdateResult, error) {
	if grouping == "" {
		return nil, fmt.Errorf("%w: grouping is required", apperrors.ErrValidation)
	}
	codes, err := s.repo.ListCodesByGrouping(ctx, grouping)
	if err != nil {
		s.LogError(ctx, err, "Failed to list permission codes by grouping", slog.String("grouping", grouping))
		return nil, err
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: permission grouping %s", apperrors.ErrNotFound, grouping)
	}

	updates := make([]domain.PermissionUpdate, len(codes))
	for i, code := range codes {
		updates[i] = domain.PermissionUpdate{Code: code, RequiresApproval: requiresApproval}
	}
	return s.SetMany(ctx, cc, updates)
}

// SyncCatalog registers the codes known to the command registry.
func (s *permissionService) SyncCatalog(ctx context.Context, entries []domain.PermissionEntry) error {
	if err := s.repo.UpsertCatalog(ctx, entries); err != nil {
		s.LogError(ctx, err, "Failed to sync permission catalog")
		return err
	}
	s.LogInfo(ctx, "Permission catalog synced", slog.Int("codes", len(entries)))
	return nil
}
