package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineRole indicates whether a journal line is a debit or a credit leg.
type LineRole string

const (
	Debit  LineRole = "DEBIT"
	Credit LineRole = "CREDIT"
)

// Opposite returns the mirrored role.
func (r LineRole) Opposite() LineRole {
	if r == Debit {
		return Credit
	}
	return Debit
}

// JournalLine is one leg of a journal entry. Lines are owned by their entry and never shared.
type JournalLine struct {
	LineNo    int             `json:"lineNo"`
	AccountID string          `json:"accountID"`
	Role      LineRole        `json:"role"`
	Amount    decimal.Decimal `json:"amount"` // Always > 0
	Comment   string          `json:"comment,omitempty"`
}

// JournalEntry is one balanced accounting transaction.
// ReversalOf and ReversedBy are two one-directional links, each updated in the same
// database transaction as the mirror entry they point to.
type JournalEntry struct {
	TransactionID   string        `json:"transactionID"`
	OfficeID        string        `json:"officeID"`
	TransactionDate time.Time     `json:"transactionDate"`
	CurrencyCode    string        `json:"currencyCode"`
	Lines           []JournalLine `json:"lines"`
	Reversed        bool          `json:"reversed"`
	ReversalOf      *string       `json:"reversalOf,omitempty"`
	ReversedBy      *string       `json:"reversedBy,omitempty"`
	Note            string        `json:"note,omitempty"`
	AuditFields
}

// Totals returns the debit and credit sums of the entry.
func (e JournalEntry) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		if l.Role == Debit {
			debits = debits.Add(l.Amount)
		} else {
			credits = credits.Add(l.Amount)
		}
	}
	return debits, credits
}

// IsReversal reports whether the entry is itself the mirror of another entry.
func (e JournalEntry) IsReversal() bool {
	return e.ReversalOf != nil
}

// AccountIDs returns the distinct accounts referenced by the entry, in line order.
func (e JournalEntry) AccountIDs() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	ids := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// Mirror builds the reversing entry: every line keeps its account and amount and swaps role.
// The returned entry links back to e through ReversalOf.
func (e JournalEntry) Mirror(newTransactionID string, at time.Time, actor string, note string) JournalEntry {
	lines := make([]JournalLine, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLine{
			LineNo:    l.LineNo,
			AccountID: l.AccountID,
			Role:      l.Role.Opposite(),
			Amount:    l.Amount,
			Comment:   l.Comment,
		}
	}
	originalID := e.TransactionID
	return JournalEntry{
		TransactionID:   newTransactionID,
		OfficeID:        e.OfficeID,
		TransactionDate: at.Truncate(24 * time.Hour),
		CurrencyCode:    e.CurrencyCode,
		Lines:           lines,
		ReversalOf:      &originalID,
		Note:            note,
		AuditFields: AuditFields{
			CreatedAt:     at,
			CreatedBy:     actor,
			LastUpdatedAt: at,
			LastUpdatedBy: actor,
		},
	}
}

// JournalEntryFilter narrows journal entry listings.
type JournalEntryFilter struct {
	OfficeID         string
	FromDate         *time.Time
	ToDate           *time.Time
	IncludeReversals bool
	Limit            int
	NextToken        *string
}
