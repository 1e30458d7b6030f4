package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a row of journal_entries.
type JournalEntry struct {
	TenantID        string    `db:"tenant_id"`
	TransactionID   string    `db:"transaction_id"`
	OfficeID        string    `db:"office_id"`
	TransactionDate time.Time `db:"transaction_date"`
	CurrencyCode    string    `db:"currency_code"`
	Reversed        bool      `db:"reversed"`
	ReversalOf      *string   `db:"reversal_of"`
	ReversedBy      *string   `db:"reversed_by"`
	Note            string    `db:"note"`
	AuditFields
}

// LineRole is the stored debit/credit marker of a journal line.
type LineRole string

// JournalLine is a row of journal_lines.
type JournalLine struct {
	TenantID      string          `db:"tenant_id"`
	TransactionID string          `db:"transaction_id"`
	LineNo        int             `db:"line_no"`
	AccountID     string          `db:"account_id"`
	Role          LineRole        `db:"role"`
	Amount        decimal.Decimal `db:"amount"`
	Comment       string          `db:"comment"`
}
