package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock PermissionRepository ---
type MockPermissionRepository struct {
	mock.Mock
}

var _ portsrepo.PermissionRepositoryFacade = (*MockPermissionRepository)(nil)

func (m *MockPermissionRepository) FindPermission(ctx context.Context, tenantID string, code string) (*domain.PermissionEntry, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PermissionEntry), args.Error(1)
}

func (m *MockPermissionRepository) ListPermissions(ctx context.Context, tenantID string, grouping string) ([]domain.PermissionEntry, error) {
	args := m.Called(ctx, tenantID, grouping)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PermissionEntry), args.Error(1)
}

func (m *MockPermissionRepository) ListCodesByGrouping(ctx context.Context, grouping string) ([]string, error) {
	args := m.Called(ctx, grouping)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPermissionRepository) SetRequiresApproval(ctx context.Context, tenantID string, code string, requiresApproval bool, userID string, at time.Time) error {
	args := m.Called(ctx, tenantID, code, requiresApproval, userID, at)
	return args.Error(0)
}

func (m *MockPermissionRepository) UpsertCatalog(ctx context.Context, entries []domain.PermissionEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

var permissionNow = time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC)

func newPermissionService(repo *MockPermissionRepository, policy domain.MissingCodePolicy) portssvc.PermissionSvcFacade {
	return services.NewPermissionService(repo,
		services.WithMissingCodePolicy(policy),
		services.WithPermissionClock(func() time.Time { return permissionNow }))
}

func TestRequiresApproval_ReadsToggle(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPermissionRepository)
	repo.On("FindPermission", ctx, "tenant-1", "CREATE_JOURNALENTRY").
		Return(&domain.PermissionEntry{Code: "CREATE_JOURNALENTRY", RequiresApproval: true}, nil).Once()

	got, err := newPermissionService(repo, domain.FailOpen).RequiresApproval(ctx, "tenant-1", "CREATE_JOURNALENTRY")

	require.NoError(t, err)
	assert.True(t, got)
	repo.AssertExpectations(t)
}

func TestRequiresApproval_MissingCodePolicy(t *testing.T) {
	tests := []struct {
		policy domain.MissingCodePolicy
		want   bool
	}{
		{domain.FailOpen, false},
		{domain.FailClosed, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			ctx := context.Background()
			repo := new(MockPermissionRepository)
			repo.On("FindPermission", ctx, "tenant-1", "UNKNOWN_CODE").Return(nil, notFound("permission UNKNOWN_CODE not found")).Once()

			got, err := newPermissionService(repo, tt.policy).RequiresApproval(ctx, "tenant-1", "UNKNOWN_CODE")

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequiresApproval_StorageFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPermissionRepository)
	dbErr := errors.New("timeout")
	repo.On("FindPermission", ctx, "tenant-1", "CREATE_JOURNALENTRY").Return(nil, dbErr).Once()

	_, err := newPermissionService(repo, domain.FailClosed).RequiresApproval(ctx, "tenant-1", "CREATE_JOURNALENTRY")

	assert.ErrorIs(t, err, dbErr)
}

func TestSetMany_PartialApplication(t *testing.T) {
	ctx := context.Background()
	cc := domain.CommandContext{TenantID: "tenant-1", Maker: "admin"}
	repo := new(MockPermissionRepository)
	repo.On("SetRequiresApproval", ctx, "tenant-1", "CREATE_JOURNALENTRY", true, "admin", permissionNow).Return(nil).Once()
	repo.On("SetRequiresApproval", ctx, "tenant-1", "NO_SUCH_CODE", true, "admin", permissionNow).Return(notFound("permission NO_SUCH_CODE not found")).Once()
	repo.On("SetRequiresApproval", ctx, "tenant-1", "REVERSE_JOURNALENTRY", false, "admin", permissionNow).Return(errors.New("connection reset")).Once()

	results, err := newPermissionService(repo, domain.FailOpen).SetMany(ctx, cc, []domain.PermissionUpdate{
		{Code: "CREATE_JOURNALENTRY", RequiresApproval: true},
		{Code: "NO_SUCH_CODE", RequiresApproval: true},
		{Code: "", RequiresApproval: true},
		{Code: "REVERSE_JOURNALENTRY", RequiresApproval: false},
	})

	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.True(t, results[0].Applied)
	assert.False(t, results[1].Applied)
	assert.Contains(t, results[1].Error, "NO_SUCH_CODE")
	assert.False(t, results[2].Applied)
	assert.Contains(t, results[2].Error, "permission code is required")
	assert.False(t, results[3].Applied)
	assert.Equal(t, "internal error", results[3].Error)
	repo.AssertExpectations(t)
}

func TestSetMany_Empty(t *testing.T) {
	repo := new(MockPermissionRepository)
	_, err := newPermissionService(repo, domain.FailOpen).SetMany(context.Background(), domain.CommandContext{TenantID: "tenant-1"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSetGroup_ExpandsCodes(t *testing.T) {
	ctx := context.Background()
	cc := domain.CommandContext{TenantID: "tenant-1", Maker: "admin"}
	repo := new(MockPermissionRepository)
	repo.On("ListCodesByGrouping", ctx, "accounting").Return([]string{"CREATE_JOURNALENTRY", "REVERSE_JOURNALENTRY"}, nil).Once()
	repo.On("SetRequiresApproval", ctx, "tenant-1", mock.AnythingOfType("string"), true, "admin", permissionNow).Return(nil).Twice()

	results, err := newPermissionService(repo, domain.FailOpen).SetGroup(ctx, cc, "accounting", true)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "CREATE_JOURNALENTRY", results[0].Code)
	assert.Equal(t, "REVERSE_JOURNALENTRY", results[1].Code)
	repo.AssertExpectations(t)
}

func TestSetGroup_UnknownGrouping(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPermissionRepository)
	repo.On("ListCodesByGrouping", ctx, "payroll").Return([]string{}, nil).Once()

	_, err := newPermissionService(repo, domain.FailOpen).SetGroup(ctx, domain.CommandContext{TenantID: "tenant-1", Maker: "admin"}, "payroll", true)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "SetRequiresApproval", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
