package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fincontrol/internal/core/domain"
)

// JournalReader defines read operations for journal entries.
type JournalReader interface {
	// FindJournalEntryByID retrieves an entry with its lines. Returns apperrors.ErrNotFound if absent.
	FindJournalEntryByID(ctx context.Context, tenantID string, transactionID string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves a page of entries (with lines) and a token for the next page.
	ListJournalEntries(ctx context.Context, tenantID string, filter domain.JournalEntryFilter) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal entries.
type JournalWriter interface {
	// SaveJournalEntry persists an entry and its lines.
	SaveJournalEntry(ctx context.Context, tenantID string, entry domain.JournalEntry) error

	// MarkReversed sets reversed=true and reversed_by on the original entry, guarded by reversed=false.
	// Returns apperrors.ErrConflict when the entry was already reversed and ErrNotFound when absent.
	MarkReversed(ctx context.Context, tenantID string, transactionID string, reversedBy string, userID string, at time.Time) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
