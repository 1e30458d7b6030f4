package services

import (
	"context"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/SscSPs/fincontrol/internal/dto"
)

// LedgerReaderSvc defines the ledger read surface.
type LedgerReaderSvc interface {
	// GetJournalEntry retrieves an entry with its lines, reversal links and audit provenance.
	GetJournalEntry(ctx context.Context, cc domain.CommandContext, transactionID string) (*domain.JournalEntry, []domain.AuditEvent, error)

	// ListJournalEntries retrieves a page of entries.
	ListJournalEntries(ctx context.Context, cc domain.CommandContext, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)
}

// LedgerWriterSvc defines the ledger write operations. They are reached through the
// maker-checker gate, which records the audit event in the same transaction.
type LedgerWriterSvc interface {
	// CreateJournalEntry validates and persists a balanced journal entry.
	CreateJournalEntry(ctx context.Context, cc domain.CommandContext, req dto.CreateJournalEntryRequest) (*domain.JournalEntry, error)

	// ReverseJournalEntry posts the mirror of an existing entry and links the two.
	// Returns apperrors.ErrConflict if the entry was already reversed.
	ReverseJournalEntry(ctx context.Context, cc domain.CommandContext, req dto.ReverseJournalEntryRequest) (*domain.JournalEntry, error)
}

// LedgerSvcFacade combines the ledger interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
