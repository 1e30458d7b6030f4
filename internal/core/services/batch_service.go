package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/dto"
)

// MaxBatchSize bounds the number of sub-commands accepted in one batch.
const MaxBatchSize = 200

// errBatchAborted is reported for the members of an atomic batch that did not fail themselves.
var errBatchAborted = errors.New("not executed: another request in the enclosing transaction failed")

// batchService is the batch command executor.
type batchService struct {
	BaseService
	gate      portssvc.MakerCheckerSvcFacade
	txManager portsrepo.TransactionManager
}

// NewBatchService creates the batch executor on top of the gate.
func NewBatchService(gate portssvc.MakerCheckerSvcFacade, txManager portsrepo.TransactionManager) portssvc.BatchSvcFacade {
	return &batchService{gate: gate, txManager: txManager}
}

var _ portssvc.BatchSvcFacade = (*batchService)(nil)

// ExecuteBatch runs items in input order.
func (s *batchService) ExecuteBatch(ctx context.Context, cc domain.CommandContext, items []domain.BatchItem, enclosingTransaction bool) (*domain.BatchResult, error) {
	if err := validateBatchItems(items); err != nil {
		s.LogWarn(ctx, err, "Batch refused")
		return nil, err
	}
	logger := s.GetLogger(ctx).With(slog.Int("batch_size", len(items)), slog.Bool("enclosing_transaction", enclosingTransaction))

	var result *domain.BatchResult
	if enclosingTransaction {
		result = s.executeAtomic(ctx, cc, items)
	} else {
		result = s.executeIndependent(ctx, cc, items)
	}

	logger.Info("Batch executed", slog.Bool("rolled_back", result.RolledBack))
	return result, nil
}

func validateBatchItems(items []domain.BatchItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: batch requires at least one request", apperrors.ErrValidation)
	}
	if len(items) > MaxBatchSize {
		return fmt.Errorf("%w: batch exceeds %d requests", apperrors.ErrValidation, MaxBatchSize)
	}
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if item.RequestID == "" {
			return fmt.Errorf("%w: request %d has no requestId", apperrors.ErrValidation, i+1)
		}
		if _, dup := seen[item.RequestID]; dup {
			return fmt.Errorf("%w: duplicate requestId %q", apperrors.ErrValidation, item.RequestID)
		}
		seen[item.RequestID] = struct{}{}
	}
	return nil
}

func toCommand(item domain.BatchItem) domain.Command {
	return domain.Command{Operation: item.Operation, Payload: item.Payload, BatchRequestID: item.RequestID}
}

// executeIndependent dispatches every item through the gate on its own.
func (s *batchService) executeIndependent(ctx context.Context, cc domain.CommandContext, items []domain.BatchItem) *domain.BatchResult {
	result := &domain.BatchResult{Items: make([]domain.BatchItemResult, len(items))}
	for i, item := range items {
		outcome, err := s.gate.Submit(ctx, cc, toCommand(item))
		result.Items[i] = itemResult(item.RequestID, outcome, err)
	}
	return result
}

// executeAtomic prepares every item before running any of them. A gated, unknown or invalid
// item fails the batch before side effects; otherwise all items run in one transaction.
func (s *batchService) executeAtomic(ctx context.Context, cc domain.CommandContext, items []domain.BatchItem) *domain.BatchResult {
	prepared := make([]*portssvc.PreparedCommand, len(items))
	prepareErrs := make([]error, len(items))
	failed := false
	for i, item := range items {
		p, err := s.gate.Prepare(ctx, cc, toCommand(item))
		if err == nil && p.RequiresApproval {
			err = fmt.Errorf("%w: operation %s requires approval and cannot run in an enclosing transaction", apperrors.ErrValidation, item.Operation)
		}
		prepared[i], prepareErrs[i] = p, err
		failed = failed || err != nil
	}
	if failed {
		return s.failAtomic(ctx, cc, items, prepareErrs, false)
	}

	outcomes := make([]*domain.CommandOutcome, len(items))
	failedIdx := -1
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		for i, item := range items {
			outcome, err := s.gate.ExecutePrepared(txCtx, cc, prepared[i], domain.AuditDetail{BatchRequestID: item.RequestID})
			if err != nil {
				failedIdx = i
				return err
			}
			outcomes[i] = outcome
		}
		return nil
	})
	if err != nil {
		errs := make([]error, len(items))
		if failedIdx >= 0 {
			errs[failedIdx] = err
		} else {
			// The commit itself failed; no item can be singled out.
			for i := range errs {
				errs[i] = err
			}
		}
		return s.failAtomic(ctx, cc, items, errs, true)
	}

	result := &domain.BatchResult{Items: make([]domain.BatchItemResult, len(items))}
	for i, item := range items {
		result.Items[i] = itemResult(item.RequestID, outcomes[i], nil)
	}
	return result
}

// failAtomic reports every item as failed and appends one errored event per item. Items
// without their own error are reported as a failed dependency.
func (s *batchService) failAtomic(ctx context.Context, cc domain.CommandContext, items []domain.BatchItem, errs []error, executed bool) *domain.BatchResult {
	result := &domain.BatchResult{Items: make([]domain.BatchItemResult, len(items)), RolledBack: true}
	for i, item := range items {
		err := errs[i]
		status := apperrors.HTTPStatus(err)
		if err == nil {
			err = errBatchAborted
			status = http.StatusFailedDependency
		}
		detail := domain.AuditDetail{BatchRequestID: item.RequestID, RolledBack: executed}
		id := s.gate.RecordFailure(ctx, cc, toCommand(item), err, detail)
		result.Items[i] = domain.BatchItemResult{
			RequestID:  item.RequestID,
			StatusCode: status,
			Error:      operatorMessage(err),
			Body:       failureBody(id),
		}
	}
	s.GetLogger(ctx).Warn("Atomic batch failed", slog.Bool("executed", executed))
	return result
}

func itemResult(requestID string, outcome *domain.CommandOutcome, err error) domain.BatchItemResult {
	if err != nil {
		id, _ := apperrors.CorrelationID(err)
		return domain.BatchItemResult{
			RequestID:  requestID,
			StatusCode: apperrors.HTTPStatus(err),
			Error:      operatorMessage(err),
			Body:       failureBody(id),
		}
	}
	status := http.StatusOK
	if outcome.State == domain.StateAwaitingApproval {
		status = http.StatusAccepted
	}
	return domain.BatchItemResult{
		RequestID:  requestID,
		StatusCode: status,
		Body:       dto.ToCommandResponse(outcome),
	}
}

func failureBody(auditEventID int64) any {
	if auditEventID == 0 {
		return nil
	}
	return map[string]int64{"correlationId": auditEventID}
}
