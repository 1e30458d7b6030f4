package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/SscSPs/fincontrol/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultBalanceTolerance is used when no tolerance is configured.
var DefaultBalanceTolerance = decimal.New(1, -4)

// ledgerService is the ledger entry builder and the reversal engine.
type ledgerService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
	auditRepo   portsrepo.AuditReader
	tolerance   decimal.Decimal
	newID       func() string
}

// LedgerOption configures the ledger service.
type LedgerOption func(*ledgerService)

// WithBalanceTolerance sets the largest debit/credit difference still treated as balanced.
func WithBalanceTolerance(tolerance decimal.Decimal) LedgerOption {
	return func(s *ledgerService) {
		s.tolerance = tolerance.Abs()
	}
}

// WithLedgerClock replaces the clock used for reversal dates and audit fields.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// WithTransactionIDGenerator replaces the transaction id generator.
func WithTransactionIDGenerator(newID func() string) LedgerOption {
	return func(s *ledgerService) {
		s.newID = newID
	}
}

// NewLedgerService creates the ledger service.
func NewLedgerService(txManager portsrepo.TransactionManager, journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountReader, auditRepo portsrepo.AuditReader, options ...LedgerOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		txManager:   txManager,
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		tolerance:   DefaultBalanceTolerance,
		newID:       uuid.NewString,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// buildLines checks steps (1) and (2) of entry validation and numbers the lines, debits first.
func buildLines(debits, credits []dto.JournalLineRequest) ([]domain.JournalLine, error) {
	if len(debits) == 0 || len(credits) == 0 {
		return nil, fmt.Errorf("%w: journal entry requires at least one debit line and one credit line", apperrors.ErrValidation)
	}
	lines := make([]domain.JournalLine, 0, len(debits)+len(credits))
	add := func(reqs []dto.JournalLineRequest, role domain.LineRole) error {
		for i, l := range reqs {
			if !l.Amount.IsPositive() {
				return fmt.Errorf("%w: amount of %s line %d must be positive", apperrors.ErrValidation, role, i+1)
			}
			if !accounting.FitsAmountColumn(l.Amount) {
				return fmt.Errorf("%w: amount of %s line %d exceeds %d integer or %d fractional digits",
					apperrors.ErrValidation, role, i+1, accounting.MaxAmountIntegerDigits, accounting.AmountScale)
			}
			if l.AccountID == "" {
				return fmt.Errorf("%w: account of %s line %d is required", apperrors.ErrValidation, role, i+1)
			}
			if len(l.AccountID) > dto.MaxIDLength {
				return fmt.Errorf("%w: account of %s line %d is longer than %d characters", apperrors.ErrValidation, role, i+1, dto.MaxIDLength)
			}
			lines = append(lines, domain.JournalLine{
				LineNo:    len(lines) + 1,
				AccountID: l.AccountID,
				Role:      role,
				Amount:    l.Amount,
				Comment:   l.Comment,
			})
		}
		return nil
	}
	if err := add(debits, domain.Debit); err != nil {
		return nil, err
	}
	if err := add(credits, domain.Credit); err != nil {
		return nil, err
	}
	return lines, nil
}

// validateAccounts is step (3): every referenced account must exist and be active.
func (s *ledgerService) validateAccounts(ctx context.Context, tenantID string, entry domain.JournalEntry) error {
	ids := entry.AccountIDs()
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrNotFound, id)
		}
	}
	return nil
}

// validateBalance is step (4): debits and credits must agree within the tolerance.
func (s *ledgerService) validateBalance(entry domain.JournalEntry) error {
	if !accounting.IsBalanced(entry.Lines, s.tolerance) {
		return fmt.Errorf("%w: imbalance of %s", apperrors.ErrValidation, accounting.Imbalance(entry.Lines).StringFixed(2))
	}
	return nil
}

// CreateJournalEntry validates and persists a balanced journal entry.
func (s *ledgerService) CreateJournalEntry(ctx context.Context, cc domain.CommandContext, req dto.CreateJournalEntryRequest) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx).With(slog.String("office_id", req.OfficeID))

	lines, err := buildLines(req.Debits, req.Credits)
	if err != nil {
		logger.Warn("Journal entry rejected", slog.String("error", err.Error()))
		return nil, err
	}
	if req.OfficeID == "" {
		return nil, fmt.Errorf("%w: office is required", apperrors.ErrValidation)
	}
	if req.TransactionDate.IsZero() {
		return nil, fmt.Errorf("%w: transaction date is required", apperrors.ErrValidation)
	}

	now := s.Now()
	entry := domain.JournalEntry{
		TransactionID:   s.newID(),
		OfficeID:        req.OfficeID,
		TransactionDate: req.TransactionDate.Time,
		CurrencyCode:    req.CurrencyCode,
		Lines:           lines,
		Note:            req.Note,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     cc.Actor(),
			LastUpdatedAt: now,
			LastUpdatedBy: cc.Actor(),
		},
	}

	if err := s.validateAccounts(ctx, cc.TenantID, entry); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Journal entry references unknown account", slog.String("error", err.Error()))
		} else {
			s.LogError(ctx, err, "Failed to resolve journal entry accounts")
		}
		return nil, err
	}
	if err := s.validateBalance(entry); err != nil {
		logger.Warn("Journal entry rejected", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.journalRepo.SaveJournalEntry(ctx, cc.TenantID, entry); err != nil {
		s.LogError(ctx, err, "Failed to persist journal entry", slog.String("transaction_id", entry.TransactionID))
		return nil, err
	}

	logger.Info("Journal entry created", slog.String("transaction_id", entry.TransactionID), slog.Int("line_count", len(entry.Lines)))
	return &entry, nil
}

// ReverseJournalEntry posts the mirror of an existing entry and links the two. The mirror insert
// and the guarded reversed flag update share one transaction, so either both persist or neither.
func (s *ledgerService) ReverseJournalEntry(ctx context.Context, cc domain.CommandContext, req dto.ReverseJournalEntryRequest) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx).With(slog.String("transaction_id", req.TransactionID))
	if req.TransactionID == "" {
		return nil, fmt.Errorf("%w: transaction id is required", apperrors.ErrValidation)
	}

	var mirror domain.JournalEntry
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		original, err := s.journalRepo.FindJournalEntryByID(txCtx, cc.TenantID, req.TransactionID)
		if err != nil {
			return err
		}
		if original.IsReversal() {
			return fmt.Errorf("%w: transaction %s is itself a reversal of %s", apperrors.ErrConflict, original.TransactionID, *original.ReversalOf)
		}
		if original.Reversed {
			return fmt.Errorf("%w: transaction %s already reversed", apperrors.ErrConflict, original.TransactionID)
		}

		note := req.Note
		if note == "" {
			note = "Reversal of " + original.TransactionID
		}
		now := s.Now()
		mirror = original.Mirror(s.newID(), now, cc.Actor(), note)

		if err := s.journalRepo.SaveJournalEntry(txCtx, cc.TenantID, mirror); err != nil {
			return err
		}
		return s.journalRepo.MarkReversed(txCtx, cc.TenantID, original.TransactionID, mirror.TransactionID, cc.Actor(), now)
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Reversal refused", slog.String("error", err.Error()))
		default:
			s.LogError(ctx, err, "Failed to reverse journal entry", slog.String("transaction_id", req.TransactionID))
		}
		return nil, err
	}

	logger.Info("Journal entry reversed", slog.String("reversal_transaction_id", mirror.TransactionID))
	return &mirror, nil
}

// GetJournalEntry retrieves an entry with its audit provenance. The provenance of a reversal
// also includes the reversal event recorded against the original entry.
func (s *ledgerService) GetJournalEntry(ctx context.Context, cc domain.CommandContext, transactionID string) (*domain.JournalEntry, []domain.AuditEvent, error) {
	entry, err := s.journalRepo.FindJournalEntryByID(ctx, cc.TenantID, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get journal entry", slog.String("transaction_id", transactionID))
		}
		return nil, nil, err
	}

	provenance, err := s.auditRepo.ListAuditEvents(ctx, cc.TenantID, domain.AuditFilter{
		EntityName: dto.EntityJournalEntry,
		ResourceID: entry.TransactionID,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to load journal entry provenance", slog.String("transaction_id", transactionID))
		return nil, nil, err
	}

	if entry.ReversalOf != nil {
		originalEvents, err := s.auditRepo.ListAuditEvents(ctx, cc.TenantID, domain.AuditFilter{
			EntityName:       dto.EntityJournalEntry,
			ResourceID:       *entry.ReversalOf,
			ProcessingResult: domain.ResultProcessed,
		})
		if err != nil {
			s.LogError(ctx, err, "Failed to load reversal provenance", slog.String("transaction_id", transactionID))
			return nil, nil, err
		}
		for _, ev := range originalEvents {
			if reversedBy, _ := ev.Detail.Changes["reversedBy"].(string); reversedBy == entry.TransactionID {
				provenance = append(provenance, ev)
			}
		}
		sort.SliceStable(provenance, func(i, j int) bool {
			return eventLess(provenance[i], provenance[j])
		})
	}

	s.LogDebug(ctx, "Journal entry retrieved", slog.String("transaction_id", transactionID), slog.Int("provenance_events", len(provenance)))
	return entry, provenance, nil
}

// ListJournalEntries retrieves a page of entries, newest first.
func (s *ledgerService) ListJournalEntries(ctx context.Context, cc domain.CommandContext, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	filter := domain.JournalEntryFilter{
		OfficeID:         params.OfficeID,
		IncludeReversals: params.IncludeReversals,
		Limit:            params.Limit,
		NextToken:        params.NextToken,
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	var err error
	if filter.FromDate, err = parseOptionalDate(params.FromDate, "fromDate"); err != nil {
		return nil, err
	}
	if filter.ToDate, err = parseOptionalDate(params.ToDate, "toDate"); err != nil {
		return nil, err
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return nil, fmt.Errorf("%w: toDate is before fromDate", apperrors.ErrValidation)
	}

	entries, nextToken, err := s.journalRepo.ListJournalEntries(ctx, cc.TenantID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries")
		return nil, err
	}
	return &dto.ListJournalEntriesResponse{
		JournalEntries: dto.ToJournalEntryResponses(entries),
		NextToken:      nextToken,
	}, nil
}

// parseOptionalDate parses a YYYY-MM-DD or RFC3339 query value.
func parseOptionalDate(value string, name string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := dto.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", apperrors.ErrValidation, name, value)
	}
	return &t, nil
}
