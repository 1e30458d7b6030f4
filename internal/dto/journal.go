package dto

import (
	"time"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Operation names and permission codes of the ledger commands.
const (
	OpCreateJournalEntry  = "journalentry.create"
	OpReverseJournalEntry = "journalentry.reverse"

	PermCreateJournalEntry  = "CREATE_JOURNALENTRY"
	PermReverseJournalEntry = "REVERSE_JOURNALENTRY"

	EntityJournalEntry = "JOURNALENTRY"
	GroupingAccounting = "accounting"
)

// MaxIDLength is the longest office, account or transaction identifier accepted.
const MaxIDLength = 64

// JournalLineRequest is one debit or credit leg of a new journal entry. Lines are checked by
// the ledger after the debit and credit lists themselves.
type JournalLineRequest struct {
	AccountID string          `json:"accountID"`
	Amount    decimal.Decimal `json:"amount"`
	Comment   string          `json:"comment,omitempty"`
}

// CreateJournalEntryRequest is the payload of the journal entry creation command.
type CreateJournalEntryRequest struct {
	OfficeID        string               `json:"officeID" binding:"required,max=64"`
	TransactionDate Date                 `json:"transactionDate"`
	CurrencyCode    string               `json:"currencyCode" binding:"required,len=3"`
	Debits          []JournalLineRequest `json:"debits"`
	Credits         []JournalLineRequest `json:"credits"`
	Note            string               `json:"note,omitempty"`
}

// CommandOperation implements domain.CommandPayload.
func (CreateJournalEntryRequest) CommandOperation() string { return OpCreateJournalEntry }

// Office implements domain.OfficeScoped.
func (r CreateJournalEntryRequest) Office() string { return r.OfficeID }

// ReverseJournalEntryRequest is the payload of the reversal command.
type ReverseJournalEntryRequest struct {
	TransactionID string `json:"transactionID" binding:"required,max=64"`
	Note          string `json:"note,omitempty"`
}

// CommandOperation implements domain.CommandPayload.
func (ReverseJournalEntryRequest) CommandOperation() string { return OpReverseJournalEntry }

// Resource implements domain.ResourceScoped.
func (r ReverseJournalEntryRequest) Resource() string { return r.TransactionID }

// JournalLineResponse is a line of a journal entry as exposed by the read surface.
type JournalLineResponse struct {
	AccountID string          `json:"accountID"`
	Role      domain.LineRole `json:"role"`
	Amount    decimal.Decimal `json:"amount"`
	Comment   string          `json:"comment,omitempty"`
}

// JournalEntryResponse is the read-surface view of a journal entry.
type JournalEntryResponse struct {
	TransactionID   string                `json:"transactionID"`
	OfficeID        string                `json:"officeID"`
	TransactionDate Date                  `json:"transactionDate"`
	CurrencyCode    string                `json:"currencyCode"`
	Reversed        bool                  `json:"reversed"`
	ReversalOf      *string               `json:"reversalOf,omitempty"`
	ReversedBy      *string               `json:"reversedBy,omitempty"`
	Note            string                `json:"note,omitempty"`
	TotalDebits     decimal.Decimal       `json:"totalDebits"`
	TotalCredits    decimal.Decimal       `json:"totalCredits"`
	Lines           []JournalLineResponse `json:"lines"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	Provenance      []domain.AuditEvent   `json:"provenance,omitempty"`
}

// ListJournalEntriesResponse is one page of journal entries.
type ListJournalEntriesResponse struct {
	JournalEntries []JournalEntryResponse `json:"journalEntries"`
	NextToken      *string                `json:"nextToken,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its response DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	debits, credits := e.Totals()
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			AccountID: l.AccountID,
			Role:      l.Role,
			Amount:    l.Amount,
			Comment:   l.Comment,
		}
	}
	return JournalEntryResponse{
		TransactionID:   e.TransactionID,
		OfficeID:        e.OfficeID,
		TransactionDate: Date{Time: e.TransactionDate},
		CurrencyCode:    e.CurrencyCode,
		Reversed:        e.Reversed,
		ReversalOf:      e.ReversalOf,
		ReversedBy:      e.ReversedBy,
		Note:            e.Note,
		TotalDebits:     debits,
		TotalCredits:    credits,
		Lines:           lines,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
	}
}

// ToJournalEntryResponses converts a slice of entries.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	out := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToJournalEntryResponse(&entries[i])
	}
	return out
}

// ListJournalEntriesParams holds query parameters for listing journal entries.
type ListJournalEntriesParams struct {
	OfficeID         string  `form:"officeID"`
	FromDate         string  `form:"fromDate"`
	ToDate           string  `form:"toDate"`
	IncludeReversals bool    `form:"includeReversals"`
	Limit            int     `form:"limit,default=20" binding:"min=1,max=200"`
	NextToken        *string `form:"nextToken"`
}

// ReverseJournalEntryBody is the optional body of the reverse endpoint.
type ReverseJournalEntryBody struct {
	Note string `json:"note,omitempty" binding:"max=500"`
}
