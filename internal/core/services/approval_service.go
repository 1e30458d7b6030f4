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
	"github.com/SscSPs/fincontrol/internal/dto"
)

// approvalService is the approval inbox.
type approvalService struct {
	BaseService
	gate        portssvc.MakerCheckerSvcFacade
	registry    *CommandRegistry
	txManager   portsrepo.TransactionManager
	pendingRepo portsrepo.PendingCommandRepositoryFacade
	auditRepo   portsrepo.AuditAppender
	notifier    portssvc.ApprovalNotifier
}

// ApprovalOption configures the approval inbox.
type ApprovalOption func(*approvalService)

// WithDecisionNotifier publishes approval and rejection decisions.
func WithDecisionNotifier(notifier portssvc.ApprovalNotifier) ApprovalOption {
	return func(s *approvalService) {
		s.notifier = notifier
	}
}

// WithApprovalClock replaces the clock used for decision timestamps.
func WithApprovalClock(now func() time.Time) ApprovalOption {
	return func(s *approvalService) {
		s.now = now
	}
}

// NewApprovalService creates the approval inbox. Deferred commands are executed through gate.
func NewApprovalService(gate portssvc.MakerCheckerSvcFacade, registry *CommandRegistry, txManager portsrepo.TransactionManager, pendingRepo portsrepo.PendingCommandRepositoryFacade, auditRepo portsrepo.AuditAppender, options ...ApprovalOption) portssvc.ApprovalSvcFacade {
	svc := &approvalService{
		gate:        gate,
		registry:    registry,
		txManager:   txManager,
		pendingRepo: pendingRepo,
		auditRepo:   auditRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// GetPendingCommand retrieves one command of the inbox.
func (s *approvalService) GetPendingCommand(ctx context.Context, cc domain.CommandContext, pendingID string) (*domain.PendingCommand, error) {
	cmd, err := s.pendingRepo.FindPendingCommandByID(ctx, cc.TenantID, pendingID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get pending command", slog.String("pending_id", pendingID))
		}
		return nil, err
	}
	return cmd, nil
}

// ListPendingCommands lists the inbox, newest first.
func (s *approvalService) ListPendingCommands(ctx context.Context, cc domain.CommandContext, params dto.ListPendingCommandsParams) (*dto.ListPendingCommandsResponse, error) {
	filter := domain.PendingCommandFilter{
		Maker:     params.Maker,
		Checker:   params.Checker,
		OfficeID:  params.OfficeID,
		Status:    domain.PendingStatus(params.Status),
		Limit:     params.Limit,
		NextToken: params.NextToken,
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	var err error
	if filter.From, err = parseOptionalDate(params.From, "from"); err != nil {
		return nil, err
	}
	if filter.To, err = parseOptionalDate(params.To, "to"); err != nil {
		return nil, err
	}

	cmds, nextToken, err := s.pendingRepo.ListPendingCommands(ctx, cc.TenantID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending commands")
		return nil, err
	}
	if cmds == nil {
		cmds = []domain.PendingCommand{}
	}
	return &dto.ListPendingCommandsResponse{Commands: cmds, NextToken: nextToken}, nil
}

// loadPending fetches a command that must still be pending.
func (s *approvalService) loadPending(ctx context.Context, tenantID, pendingID string) (*domain.PendingCommand, error) {
	cmd, err := s.pendingRepo.FindPendingCommandByID(ctx, tenantID, pendingID)
	if err != nil {
		return nil, err
	}
	if cmd.Status != domain.PendingStatusPending {
		return nil, fmt.Errorf("%w: pending command %s is already %s", apperrors.ErrConflict, pendingID, cmd.Status)
	}
	return cmd, nil
}

// Approve records the approval, then executes the stored command. The decision commits on its
// own; a failing handler leaves the command approved and is recorded as errored.
func (s *approvalService) Approve(ctx context.Context, cc domain.CommandContext, pendingID string) (*domain.CommandOutcome, error) {
	logger := s.GetLogger(ctx).With(slog.String("pending_id", pendingID), slog.String("checker", cc.Maker))

	pending, err := s.loadPending(ctx, cc.TenantID, pendingID)
	if err != nil {
		logger.Warn("Approval refused", slog.String("error", err.Error()))
		return nil, err
	}
	if _, err := domain.Transition(domain.StateAwaitingApproval, domain.StateApproved); err != nil {
		return nil, err
	}

	now := s.Now()
	if err := s.pendingRepo.DecidePendingCommand(ctx, cc.TenantID, pendingID, domain.PendingStatusApproved, cc.Maker, "", now); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Approval lost to a concurrent decision", slog.String("error", err.Error()))
		} else {
			s.LogError(ctx, err, "Failed to record approval", slog.String("pending_id", pendingID))
		}
		return nil, err
	}
	pending.Status = domain.PendingStatusApproved
	pending.Checker = cc.Maker
	pending.DecidedAt = &now
	s.notify(ctx, cc.TenantID, *pending)

	execCC := domain.CommandContext{TenantID: cc.TenantID, Maker: pending.Maker, Checker: cc.Maker}
	cmd := domain.Command{Operation: pending.Operation, Payload: pending.Payload}
	detail := domain.AuditDetail{PendingCommandID: pendingID}

	prepared, err := s.gate.Prepare(ctx, execCC, cmd)
	if err != nil {
		logger.Warn("Approved command could not be prepared", slog.String("error", err.Error()))
		id := s.gate.RecordFailure(ctx, execCC, cmd, err, detail)
		return nil, apperrors.WithCorrelationID(err, id)
	}

	var outcome *domain.CommandOutcome
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		var execErr error
		outcome, execErr = s.gate.ExecutePrepared(txCtx, execCC, prepared, detail)
		return execErr
	})
	if err != nil {
		logger.Warn("Approved command failed", slog.String("error", err.Error()))
		id := s.gate.RecordFailure(ctx, execCC, cmd, err, detail)
		return nil, apperrors.WithCorrelationID(err, id)
	}

	outcome.PendingID = pendingID
	logger.Info("Pending command approved and executed", slog.Int64("audit_event_id", outcome.AuditEventID))
	return outcome, nil
}

// Reject records the rejection and its audit event in one transaction. No handler runs.
func (s *approvalService) Reject(ctx context.Context, cc domain.CommandContext, pendingID string, reason string) (*domain.CommandOutcome, error) {
	logger := s.GetLogger(ctx).With(slog.String("pending_id", pendingID), slog.String("checker", cc.Maker))

	pending, err := s.loadPending(ctx, cc.TenantID, pendingID)
	if err != nil {
		logger.Warn("Rejection refused", slog.String("error", err.Error()))
		return nil, err
	}
	state, err := domain.Transition(domain.StateAwaitingApproval, domain.StateRejected)
	if err != nil {
		return nil, err
	}

	event := domain.AuditEvent{
		TenantID:         cc.TenantID,
		Actor:            pending.Maker,
		Checker:          cc.Maker,
		OfficeID:         pending.OfficeID,
		PermissionCode:   pending.PermissionCode,
		ProcessingResult: domain.ResultRejected,
		Detail: domain.AuditDetail{
			Operation:        pending.Operation,
			PendingCommandID: pendingID,
			Reason:           reason,
		},
	}
	if handler, err := s.registry.Lookup(pending.Operation); err == nil {
		event.ActionName = handler.ActionName
		event.EntityName = handler.EntityName
		if _, payload, err := s.registry.Decode(domain.Command{Operation: pending.Operation, Payload: pending.Payload}); err == nil {
			if scoped, ok := payload.(domain.ResourceScoped); ok {
				event.ResourceID = scoped.Resource()
			}
		}
	} else {
		event.ActionName = "UNKNOWN"
		event.EntityName = "COMMAND"
	}

	now := s.Now()
	event.Timestamp = now
	var eventID int64
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.pendingRepo.DecidePendingCommand(txCtx, cc.TenantID, pendingID, domain.PendingStatusRejected, cc.Maker, reason, now); err != nil {
			return err
		}
		event.Seal()
		var appendErr error
		eventID, appendErr = s.auditRepo.AppendAuditEvent(txCtx, event)
		return appendErr
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Rejection lost to a concurrent decision", slog.String("error", err.Error()))
		} else {
			s.LogError(ctx, err, "Failed to record rejection", slog.String("pending_id", pendingID))
		}
		return nil, err
	}

	pending.Status = domain.PendingStatusRejected
	pending.Checker = cc.Maker
	pending.DecidedAt = &now
	pending.RejectionReason = reason
	s.notify(ctx, cc.TenantID, *pending)

	logger.Info("Pending command rejected", slog.Int64("audit_event_id", eventID))
	return &domain.CommandOutcome{
		State:        state,
		PendingID:    pendingID,
		AuditEventID: eventID,
	}, nil
}

func (s *approvalService) notify(ctx context.Context, tenantID string, cmd domain.PendingCommand) {
	if s.notifier != nil {
		s.notifier.NotifyPendingCommand(ctx, tenantID, cmd)
	}
}
