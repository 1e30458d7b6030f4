package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/google/uuid"
)

// makerCheckerService is the gate: it decides per command whether to execute now or defer to
// the approval inbox, and it is the single writer of the audit event for each attempt.
type makerCheckerService struct {
	BaseService
	registry    *CommandRegistry
	permissions portssvc.PermissionReaderSvc
	txManager   portsrepo.TransactionManager
	pendingRepo portsrepo.PendingCommandWriter
	auditRepo   portsrepo.AuditAppender
	notifier    portssvc.ApprovalNotifier
}

// MakerCheckerOption configures the gate.
type MakerCheckerOption func(*makerCheckerService)

// WithApprovalNotifier publishes newly deferred commands.
func WithApprovalNotifier(notifier portssvc.ApprovalNotifier) MakerCheckerOption {
	return func(s *makerCheckerService) {
		s.notifier = notifier
	}
}

// WithMakerCheckerClock replaces the clock used for submission and audit timestamps.
func WithMakerCheckerClock(now func() time.Time) MakerCheckerOption {
	return func(s *makerCheckerService) {
		s.now = now
	}
}

// NewMakerCheckerService creates the gate.
func NewMakerCheckerService(registry *CommandRegistry, permissions portssvc.PermissionReaderSvc, txManager portsrepo.TransactionManager, pendingRepo portsrepo.PendingCommandWriter, auditRepo portsrepo.AuditAppender, options ...MakerCheckerOption) portssvc.MakerCheckerSvcFacade {
	svc := &makerCheckerService{
		registry:    registry,
		permissions: permissions,
		txManager:   txManager,
		pendingRepo: pendingRepo,
		auditRepo:   auditRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.MakerCheckerSvcFacade = (*makerCheckerService)(nil)

// Submit executes the command directly or defers it to the approval inbox.
func (s *makerCheckerService) Submit(ctx context.Context, cc domain.CommandContext, cmd domain.Command) (*domain.CommandOutcome, error) {
	logger := s.GetLogger(ctx).With(slog.String("operation", cmd.Operation))

	prepared, err := s.Prepare(ctx, cc, cmd)
	if err != nil {
		logger.Warn("Command refused before execution", slog.String("error", err.Error()))
		id := s.RecordFailure(ctx, cc, cmd, err, domain.AuditDetail{})
		return nil, apperrors.WithCorrelationID(err, id)
	}

	if prepared.RequiresApproval {
		return s.deferCommand(ctx, cc, prepared)
	}

	var outcome *domain.CommandOutcome
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		var execErr error
		outcome, execErr = s.ExecutePrepared(txCtx, cc, prepared, domain.AuditDetail{})
		return execErr
	})
	if err != nil {
		if apperrors.IsOperatorSafe(err) {
			logger.Warn("Command failed", slog.String("error", err.Error()))
		} else {
			s.LogError(ctx, err, "Command failed", slog.String("operation", cmd.Operation))
		}
		id := s.recordPreparedFailure(ctx, cc, prepared, err, domain.AuditDetail{})
		return nil, apperrors.WithCorrelationID(err, id)
	}

	logger.Info("Command executed", slog.String("resource_id", outcome.Result.ResourceID), slog.Int64("audit_event_id", outcome.AuditEventID))
	return outcome, nil
}

// Prepare decodes and validates cmd and resolves its approval requirement without side effects.
func (s *makerCheckerService) Prepare(ctx context.Context, cc domain.CommandContext, cmd domain.Command) (*portssvc.PreparedCommand, error) {
	handler, payload, err := s.registry.Decode(cmd)
	if err != nil {
		return nil, err
	}
	requiresApproval, err := s.permissions.RequiresApproval(ctx, cc.TenantID, handler.PermissionCode)
	if err != nil {
		return nil, err
	}
	prepared := &portssvc.PreparedCommand{
		Command:          cmd,
		Payload:          payload,
		PermissionCode:   handler.PermissionCode,
		ActionName:       handler.ActionName,
		EntityName:       handler.EntityName,
		RequiresApproval: requiresApproval,
	}
	if scoped, ok := payload.(domain.OfficeScoped); ok {
		prepared.OfficeID = scoped.Office()
	}
	return prepared, nil
}

// ExecutePrepared runs the handler and appends the processed event with ctx, so a caller
// holding a transaction gets the effect and its audit record atomically.
func (s *makerCheckerService) ExecutePrepared(ctx context.Context, cc domain.CommandContext, prepared *portssvc.PreparedCommand, detail domain.AuditDetail) (*domain.CommandOutcome, error) {
	handler, err := s.registry.Lookup(prepared.Command.Operation)
	if err != nil {
		return nil, err
	}

	from, to := domain.StateReceived, domain.StateExecutedDirect
	if cc.Checker != "" {
		from, to = domain.StateApproved, domain.StateExecutedDeferred
	}
	state, err := domain.Transition(from, to)
	if err != nil {
		return nil, err
	}

	result, err := handler.Execute(ctx, cc, prepared.Payload)
	if err != nil {
		return nil, &apperrors.HandlerError{Operation: handler.Operation, Err: err}
	}
	if result == nil {
		result = &domain.CommandResult{EntityName: handler.EntityName}
	}

	event := s.newEvent(cc, prepared, domain.ResultProcessed, detail)
	if result.ResourceID != "" {
		event.ResourceID = result.ResourceID
	}
	if result.OfficeID != "" {
		event.OfficeID = result.OfficeID
	}
	event.Detail.Changes = result.Changes

	eventID, err := s.appendEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	return &domain.CommandOutcome{
		State:        state,
		Result:       result,
		AuditEventID: eventID,
	}, nil
}

// RecordFailure appends the errored event of an attempt. It never fails the caller: when the
// append itself fails the error is logged and 0 is returned.
func (s *makerCheckerService) RecordFailure(ctx context.Context, cc domain.CommandContext, cmd domain.Command, cause error, detail domain.AuditDetail) int64 {
	prepared := &portssvc.PreparedCommand{Command: cmd}
	if handler, err := s.registry.Lookup(cmd.Operation); err == nil {
		prepared.PermissionCode = handler.PermissionCode
		prepared.ActionName = handler.ActionName
		prepared.EntityName = handler.EntityName
		// Decoding may fail here; the payload is only used to attribute the event.
		if _, payload, err := s.registry.Decode(cmd); err == nil {
			prepared.Payload = payload
			if scoped, ok := payload.(domain.OfficeScoped); ok {
				prepared.OfficeID = scoped.Office()
			}
		}
	} else {
		prepared.ActionName = "UNKNOWN"
		prepared.EntityName = "COMMAND"
	}
	return s.recordPreparedFailure(ctx, cc, prepared, cause, detail)
}

func (s *makerCheckerService) recordPreparedFailure(ctx context.Context, cc domain.CommandContext, prepared *portssvc.PreparedCommand, cause error, detail domain.AuditDetail) int64 {
	detail.Error = operatorMessage(cause)
	event := s.newEvent(cc, prepared, domain.ResultErrored, detail)
	// The request may already be cancelled; the attempt must still be recorded.
	id, err := s.appendEvent(context.WithoutCancel(ctx), event)
	if err != nil {
		s.LogError(ctx, err, "Failed to append errored audit event", slog.String("operation", prepared.Command.Operation))
		return 0
	}
	return id
}

// deferCommand stores the pending command and its awaiting-approval event in one transaction.
func (s *makerCheckerService) deferCommand(ctx context.Context, cc domain.CommandContext, prepared *portssvc.PreparedCommand) (*domain.CommandOutcome, error) {
	state, err := domain.Transition(domain.StateReceived, domain.StateAwaitingApproval)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	pending := domain.PendingCommand{
		PendingID:      uuid.NewString(),
		Maker:          cc.Maker,
		PermissionCode: prepared.PermissionCode,
		Operation:      prepared.Command.Operation,
		OfficeID:       prepared.OfficeID,
		Payload:        prepared.Command.Payload,
		SubmittedAt:    now,
		Status:         domain.PendingStatusPending,
	}

	var eventID int64
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.pendingRepo.SavePendingCommand(txCtx, cc.TenantID, pending); err != nil {
			return err
		}
		event := s.newEvent(cc, prepared, domain.ResultAwaitingApproval, domain.AuditDetail{PendingCommandID: pending.PendingID})
		event.Timestamp = now
		var appendErr error
		eventID, appendErr = s.appendEvent(txCtx, event)
		return appendErr
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to defer command", slog.String("operation", prepared.Command.Operation))
		id := s.recordPreparedFailure(ctx, cc, prepared, err, domain.AuditDetail{})
		return nil, apperrors.WithCorrelationID(err, id)
	}

	if s.notifier != nil {
		s.notifier.NotifyPendingCommand(ctx, cc.TenantID, pending)
	}
	s.LogInfo(ctx, "Command deferred for approval",
		slog.String("operation", prepared.Command.Operation),
		slog.String("pending_id", pending.PendingID),
		slog.Int64("audit_event_id", eventID))

	return &domain.CommandOutcome{
		State:        state,
		PendingID:    pending.PendingID,
		AuditEventID: eventID,
	}, nil
}

func (s *makerCheckerService) newEvent(cc domain.CommandContext, prepared *portssvc.PreparedCommand, result domain.ProcessingResult, detail domain.AuditDetail) domain.AuditEvent {
	detail.Operation = prepared.Command.Operation
	if detail.BatchRequestID == "" {
		detail.BatchRequestID = prepared.Command.BatchRequestID
	}
	event := domain.AuditEvent{
		TenantID:         cc.TenantID,
		Timestamp:        s.Now(),
		Actor:            cc.Maker,
		Checker:          cc.Checker,
		ActionName:       prepared.ActionName,
		EntityName:       prepared.EntityName,
		OfficeID:         prepared.OfficeID,
		PermissionCode:   prepared.PermissionCode,
		ProcessingResult: result,
		Detail:           detail,
	}
	if scoped, ok := prepared.Payload.(domain.ResourceScoped); ok {
		event.ResourceID = scoped.Resource()
	}
	return event
}

func (s *makerCheckerService) appendEvent(ctx context.Context, event domain.AuditEvent) (int64, error) {
	event.Seal()
	return s.auditRepo.AppendAuditEvent(ctx, event)
}

// operatorMessage is the error text recorded in the audit log and shown to callers.
// Storage and unexpected failures are reduced to a generic message.
func operatorMessage(err error) string {
	if apperrors.IsOperatorSafe(err) || errors.Is(err, errBatchAborted) {
		return err.Error()
	}
	var handlerErr *apperrors.HandlerError
	if errors.As(err, &handlerErr) && !errors.Is(err, apperrors.ErrStorage) {
		return handlerErr.Error()
	}
	return "internal error"
}
