package services_test

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
)

// memStore is an in-memory stand-in for the Postgres adapters. Transactions are serialized
// by one lock and roll back to a snapshot; calls made outside a transaction take the same
// lock, so every call observes a consistent store.
type memStore struct {
	txMu sync.Mutex

	accounts    map[string]domain.GLAccount
	entries     map[string]domain.JournalEntry
	catalog     map[string]domain.PermissionEntry
	toggles     map[string]bool
	pending     map[string]domain.PendingCommand
	events      []domain.AuditEvent
	nextEventID int64

	// failAppendWhen makes AppendAuditEvent fail for matching events.
	failAppendWhen func(domain.AuditEvent) bool
}

type memTxKey struct{}

var (
	_ portsrepo.TransactionManager             = (*memStore)(nil)
	_ portsrepo.AccountReader                  = (*memStore)(nil)
	_ portsrepo.JournalRepositoryFacade        = (*memStore)(nil)
	_ portsrepo.PermissionRepositoryFacade     = (*memStore)(nil)
	_ portsrepo.PendingCommandRepositoryFacade = (*memStore)(nil)
	_ portsrepo.AuditRepositoryFacade          = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]domain.GLAccount),
		entries:  make(map[string]domain.JournalEntry),
		catalog:  make(map[string]domain.PermissionEntry),
		toggles:  make(map[string]bool),
		pending:  make(map[string]domain.PendingCommand),
	}
}

func (s *memStore) repos() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:      s,
		AccountRepo:    s,
		JournalRepo:    s,
		PermissionRepo: s,
		PendingRepo:    s,
		AuditRepo:      s,
	}
}

type memSnapshot struct {
	entries map[string]domain.JournalEntry
	toggles map[string]bool
	pending map[string]domain.PendingCommand
	events  int
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		entries: make(map[string]domain.JournalEntry, len(s.entries)),
		toggles: make(map[string]bool, len(s.toggles)),
		pending: make(map[string]domain.PendingCommand, len(s.pending)),
		events:  len(s.events),
	}
	for k, v := range s.entries {
		snap.entries[k] = v
	}
	for k, v := range s.toggles {
		snap.toggles[k] = v
	}
	for k, v := range s.pending {
		snap.pending[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.entries = snap.entries
	s.toggles = snap.toggles
	s.pending = snap.pending
	s.events = s.events[:snap.events]
}

func inMemTx(ctx context.Context) bool {
	return ctx.Value(memTxKey{}) != nil
}

// WithinTransaction implements portsrepo.TransactionManager.
func (s *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inMemTx(ctx) {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// do runs fn under the store lock unless ctx already carries a transaction.
func (s *memStore) do(ctx context.Context, fn func() error) error {
	if !inMemTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	return fn()
}

func key(tenantID, id string) string { return tenantID + "|" + id }

func notFound(format string, args ...any) error {
	return apperrors.NewAppError(http.StatusNotFound, fmt.Sprintf(format, args...), nil)
}

func conflict(format string, args ...any) error {
	return apperrors.NewAppError(http.StatusConflict, fmt.Sprintf(format, args...), nil)
}

// --- accounts ---

func (s *memStore) addAccount(tenantID string, acc domain.GLAccount) {
	s.accounts[key(tenantID, acc.AccountID)] = acc
}

func (s *memStore) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.GLAccount, error) {
	out := make(map[string]domain.GLAccount)
	err := s.do(ctx, func() error {
		for _, id := range accountIDs {
			if acc, ok := s.accounts[key(tenantID, id)]; ok {
				out[id] = acc
			}
		}
		return nil
	})
	return out, err
}

// --- journal ---

func (s *memStore) SaveJournalEntry(ctx context.Context, tenantID string, entry domain.JournalEntry) error {
	return s.do(ctx, func() error {
		k := key(tenantID, entry.TransactionID)
		if _, exists := s.entries[k]; exists {
			return conflict("journal entry %s already exists", entry.TransactionID)
		}
		if entry.ReversalOf != nil {
			for ek, e := range s.entries {
				if e.ReversalOf != nil && *e.ReversalOf == *entry.ReversalOf && strings.HasPrefix(ek, tenantID+"|") {
					return conflict("journal entry %s already has a reversal", *entry.ReversalOf)
				}
			}
		}
		s.entries[k] = entry
		return nil
	})
}

func (s *memStore) FindJournalEntryByID(ctx context.Context, tenantID string, transactionID string) (*domain.JournalEntry, error) {
	var out *domain.JournalEntry
	err := s.do(ctx, func() error {
		e, ok := s.entries[key(tenantID, transactionID)]
		if !ok {
			return notFound("journal entry %s not found", transactionID)
		}
		out = &e
		return nil
	})
	return out, err
}

func (s *memStore) MarkReversed(ctx context.Context, tenantID string, transactionID string, reversedBy string, userID string, at time.Time) error {
	return s.do(ctx, func() error {
		k := key(tenantID, transactionID)
		e, ok := s.entries[k]
		if !ok {
			return notFound("journal entry %s not found", transactionID)
		}
		if e.Reversed {
			return conflict("journal entry %s already reversed", transactionID)
		}
		by := reversedBy
		e.Reversed = true
		e.ReversedBy = &by
		e.LastUpdatedAt = at
		e.LastUpdatedBy = userID
		s.entries[k] = e
		return nil
	})
}

func (s *memStore) ListJournalEntries(ctx context.Context, tenantID string, filter domain.JournalEntryFilter) ([]domain.JournalEntry, *string, error) {
	var out []domain.JournalEntry
	err := s.do(ctx, func() error {
		for k, e := range s.entries {
			if !strings.HasPrefix(k, tenantID+"|") {
				continue
			}
			if filter.OfficeID != "" && e.OfficeID != filter.OfficeID {
				continue
			}
			if !filter.IncludeReversals && (e.Reversed || e.ReversalOf != nil) {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil, err
}

func (s *memStore) entry(tenantID, transactionID string) (domain.JournalEntry, bool) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	e, ok := s.entries[key(tenantID, transactionID)]
	return e, ok
}

func (s *memStore) entryCount() int {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return len(s.entries)
}

// --- permissions ---

func (s *memStore) FindPermission(ctx context.Context, tenantID string, code string) (*domain.PermissionEntry, error) {
	var out *domain.PermissionEntry
	err := s.do(ctx, func() error {
		p, ok := s.catalog[code]
		if !ok {
			return notFound("permission %s not found", code)
		}
		p.RequiresApproval = s.toggles[key(tenantID, code)]
		out = &p
		return nil
	})
	return out, err
}

func (s *memStore) ListPermissions(ctx context.Context, tenantID string, grouping string) ([]domain.PermissionEntry, error) {
	var out []domain.PermissionEntry
	err := s.do(ctx, func() error {
		for code, p := range s.catalog {
			if grouping != "" && p.Grouping != grouping {
				continue
			}
			p.RequiresApproval = s.toggles[key(tenantID, code)]
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

func (s *memStore) ListCodesByGrouping(ctx context.Context, grouping string) ([]string, error) {
	var out []string
	err := s.do(ctx, func() error {
		for code, p := range s.catalog {
			if p.Grouping == grouping {
				out = append(out, code)
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func (s *memStore) SetRequiresApproval(ctx context.Context, tenantID string, code string, requiresApproval bool, userID string, at time.Time) error {
	return s.do(ctx, func() error {
		if _, ok := s.catalog[code]; !ok {
			return notFound("permission %s not found", code)
		}
		s.toggles[key(tenantID, code)] = requiresApproval
		return nil
	})
}

func (s *memStore) UpsertCatalog(ctx context.Context, entries []domain.PermissionEntry) error {
	return s.do(ctx, func() error {
		for _, e := range entries {
			e.RequiresApproval = false
			s.catalog[e.Code] = e
		}
		return nil
	})
}

// --- pending commands ---

func (s *memStore) SavePendingCommand(ctx context.Context, tenantID string, cmd domain.PendingCommand) error {
	return s.do(ctx, func() error {
		s.pending[key(tenantID, cmd.PendingID)] = cmd
		return nil
	})
}

func (s *memStore) FindPendingCommandByID(ctx context.Context, tenantID string, pendingID string) (*domain.PendingCommand, error) {
	var out *domain.PendingCommand
	err := s.do(ctx, func() error {
		cmd, ok := s.pending[key(tenantID, pendingID)]
		if !ok {
			return notFound("pending command %s not found", pendingID)
		}
		out = &cmd
		return nil
	})
	return out, err
}

func (s *memStore) ListPendingCommands(ctx context.Context, tenantID string, filter domain.PendingCommandFilter) ([]domain.PendingCommand, *string, error) {
	var out []domain.PendingCommand
	err := s.do(ctx, func() error {
		for k, cmd := range s.pending {
			if !strings.HasPrefix(k, tenantID+"|") {
				continue
			}
			if filter.Status != "" && cmd.Status != filter.Status {
				continue
			}
			if filter.Maker != "" && cmd.Maker != filter.Maker {
				continue
			}
			out = append(out, cmd)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil, err
}

func (s *memStore) DecidePendingCommand(ctx context.Context, tenantID string, pendingID string, status domain.PendingStatus, checker string, reason string, at time.Time) error {
	return s.do(ctx, func() error {
		k := key(tenantID, pendingID)
		cmd, ok := s.pending[k]
		if !ok {
			return notFound("pending command %s not found", pendingID)
		}
		if cmd.Status != domain.PendingStatusPending {
			return conflict("pending command %s is already %s", pendingID, cmd.Status)
		}
		decided := at
		cmd.Status = status
		cmd.Checker = checker
		cmd.DecidedAt = &decided
		cmd.RejectionReason = reason
		s.pending[k] = cmd
		return nil
	})
}

func (s *memStore) pendingCommand(tenantID, pendingID string) domain.PendingCommand {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.pending[key(tenantID, pendingID)]
}

// --- audit ---

func (s *memStore) AppendAuditEvent(ctx context.Context, event domain.AuditEvent) (int64, error) {
	var id int64
	err := s.do(ctx, func() error {
		if s.failAppendWhen != nil && s.failAppendWhen(event) {
			return apperrors.NewAppError(http.StatusInternalServerError, "failed to append audit event", fmt.Errorf("disk full"))
		}
		s.nextEventID++
		id = s.nextEventID
		event.ID = id
		s.events = append(s.events, event)
		return nil
	})
	return id, err
}

func (s *memStore) ListAuditEvents(ctx context.Context, tenantID string, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	var out []domain.AuditEvent
	err := s.do(ctx, func() error {
		for _, ev := range s.events {
			if ev.TenantID != tenantID {
				continue
			}
			if filter.From != nil && ev.Timestamp.Before(*filter.From) {
				continue
			}
			if filter.To != nil && !ev.Timestamp.Before(*filter.To) {
				continue
			}
			if filter.Actor != "" && ev.Actor != filter.Actor {
				continue
			}
			if filter.EntityName != "" && ev.EntityName != filter.EntityName {
				continue
			}
			if filter.ResourceID != "" && ev.ResourceID != filter.ResourceID {
				continue
			}
			if filter.ProcessingResult != "" && ev.ProcessingResult != filter.ProcessingResult {
				continue
			}
			if filter.AfterTimestamp != nil {
				if ev.Timestamp.Before(*filter.AfterTimestamp) ||
					(ev.Timestamp.Equal(*filter.AfterTimestamp) && ev.ID <= filter.AfterID) {
					continue
				}
			}
			out = append(out, ev)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, err
}

func (s *memStore) auditEvents() []domain.AuditEvent {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return append([]domain.AuditEvent(nil), s.events...)
}
