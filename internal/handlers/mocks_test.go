package handlers_test

import (
	"context"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock MakerCheckerService ---
type MockMakerCheckerService struct {
	mock.Mock
}

func (m *MockMakerCheckerService) Submit(ctx context.Context, cc domain.CommandContext, cmd domain.Command) (*domain.CommandOutcome, error) {
	args := m.Called(ctx, cc, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommandOutcome), args.Error(1)
}

func (m *MockMakerCheckerService) Prepare(ctx context.Context, cc domain.CommandContext, cmd domain.Command) (*portssvc.PreparedCommand, error) {
	args := m.Called(ctx, cc, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.PreparedCommand), args.Error(1)
}

func (m *MockMakerCheckerService) ExecutePrepared(ctx context.Context, cc domain.CommandContext, prepared *portssvc.PreparedCommand, detail domain.AuditDetail) (*domain.CommandOutcome, error) {
	args := m.Called(ctx, cc, prepared, detail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommandOutcome), args.Error(1)
}

func (m *MockMakerCheckerService) RecordFailure(ctx context.Context, cc domain.CommandContext, cmd domain.Command, cause error, detail domain.AuditDetail) int64 {
	args := m.Called(ctx, cc, cmd, cause, detail)
	return args.Get(0).(int64)
}

var _ portssvc.MakerCheckerSvcFacade = (*MockMakerCheckerService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetJournalEntry(ctx context.Context, cc domain.CommandContext, transactionID string) (*domain.JournalEntry, []domain.AuditEvent, error) {
	args := m.Called(ctx, cc, transactionID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	events, _ := args.Get(1).([]domain.AuditEvent)
	return args.Get(0).(*domain.JournalEntry), events, args.Error(2)
}

func (m *MockLedgerService) ListJournalEntries(ctx context.Context, cc domain.CommandContext, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	args := m.Called(ctx, cc, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalEntriesResponse), args.Error(1)
}

func (m *MockLedgerService) CreateJournalEntry(ctx context.Context, cc domain.CommandContext, req dto.CreateJournalEntryRequest) (*domain.JournalEntry, error) {
	args := m.Called(ctx, cc, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) ReverseJournalEntry(ctx context.Context, cc domain.CommandContext, req dto.ReverseJournalEntryRequest) (*domain.JournalEntry, error) {
	args := m.Called(ctx, cc, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock PermissionService ---
type MockPermissionService struct {
	mock.Mock
}

func (m *MockPermissionService) RequiresApproval(ctx context.Context, tenantID string, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockPermissionService) ListPermissions(ctx context.Context, tenantID string, grouping string) ([]domain.PermissionEntry, error) {
	args := m.Called(ctx, tenantID, grouping)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PermissionEntry), args.Error(1)
}

func (m *MockPermissionService) SetMany(ctx context.Context, cc domain.CommandContext, updates []domain.PermissionUpdate) ([]domain.PermissionUpdateResult, error) {
	args := m.Called(ctx, cc, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PermissionUpdateResult), args.Error(1)
}

func (m *MockPermissionService) SetGroup(ctx context.Context, cc domain.CommandContext, grouping string, requiresApproval bool) ([]domain.PermissionUpdateResult, error) {
	args := m.Called(ctx, cc, grouping, requiresApproval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PermissionUpdateResult), args.Error(1)
}

func (m *MockPermissionService) SyncCatalog(ctx context.Context, entries []domain.PermissionEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

var _ portssvc.PermissionSvcFacade = (*MockPermissionService)(nil)

// --- Mock ApprovalService ---
type MockApprovalService struct {
	mock.Mock
}

func (m *MockApprovalService) GetPendingCommand(ctx context.Context, cc domain.CommandContext, pendingID string) (*domain.PendingCommand, error) {
	args := m.Called(ctx, cc, pendingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PendingCommand), args.Error(1)
}

func (m *MockApprovalService) ListPendingCommands(ctx context.Context, cc domain.CommandContext, params dto.ListPendingCommandsParams) (*dto.ListPendingCommandsResponse, error) {
	args := m.Called(ctx, cc, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListPendingCommandsResponse), args.Error(1)
}

func (m *MockApprovalService) Approve(ctx context.Context, cc domain.CommandContext, pendingID string) (*domain.CommandOutcome, error) {
	args := m.Called(ctx, cc, pendingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommandOutcome), args.Error(1)
}

func (m *MockApprovalService) Reject(ctx context.Context, cc domain.CommandContext, pendingID string, reason string) (*domain.CommandOutcome, error) {
	args := m.Called(ctx, cc, pendingID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommandOutcome), args.Error(1)
}

var _ portssvc.ApprovalSvcFacade = (*MockApprovalService)(nil)

// --- Mock BatchService ---
type MockBatchService struct {
	mock.Mock
}

func (m *MockBatchService) ExecuteBatch(ctx context.Context, cc domain.CommandContext, items []domain.BatchItem, enclosingTransaction bool) (*domain.BatchResult, error) {
	args := m.Called(ctx, cc, items, enclosingTransaction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchResult), args.Error(1)
}

var _ portssvc.BatchSvcFacade = (*MockBatchService)(nil)

// --- Mock AuditService ---
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) ListAuditEvents(ctx context.Context, cc domain.CommandContext, params dto.ListAuditEventsParams) (*dto.ListAuditEventsResponse, error) {
	args := m.Called(ctx, cc, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListAuditEventsResponse), args.Error(1)
}

func (m *MockAuditService) Timeline(ctx context.Context, cc domain.CommandContext, params dto.AuditTimelineParams) (*domain.AuditTimeline, error) {
	args := m.Called(ctx, cc, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditTimeline), args.Error(1)
}

var _ portssvc.AuditSvcFacade = (*MockAuditService)(nil)
