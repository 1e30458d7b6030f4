package mapping

import (
	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/SscSPs/fincontrol/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to its row and line rows.
func ToModelJournalEntry(tenantID string, d domain.JournalEntry) (models.JournalEntry, []models.JournalLine) {
	entry := models.JournalEntry{
		TenantID:        tenantID,
		TransactionID:   d.TransactionID,
		OfficeID:        d.OfficeID,
		TransactionDate: d.TransactionDate,
		CurrencyCode:    d.CurrencyCode,
		Reversed:        d.Reversed,
		ReversalOf:      d.ReversalOf,
		ReversedBy:      d.ReversedBy,
		Note:            d.Note,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	lines := make([]models.JournalLine, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = models.JournalLine{
			TenantID:      tenantID,
			TransactionID: d.TransactionID,
			LineNo:        l.LineNo,
			AccountID:     l.AccountID,
			Role:          models.LineRole(l.Role),
			Amount:        l.Amount,
			Comment:       l.Comment,
		}
	}
	return entry, lines
}

// ToDomainJournalEntry converts rows back to a domain JournalEntry.
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalLine) domain.JournalEntry {
	d := domain.JournalEntry{
		TransactionID:   m.TransactionID,
		OfficeID:        m.OfficeID,
		TransactionDate: m.TransactionDate,
		CurrencyCode:    m.CurrencyCode,
		Reversed:        m.Reversed,
		ReversalOf:      m.ReversalOf,
		ReversedBy:      m.ReversedBy,
		Note:            m.Note,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
		Lines:           make([]domain.JournalLine, len(lines)),
	}
	for i, l := range lines {
		d.Lines[i] = domain.JournalLine{
			LineNo:    l.LineNo,
			AccountID: l.AccountID,
			Role:      domain.LineRole(l.Role),
			Amount:    l.Amount,
			Comment:   l.Comment,
		}
	}
	return d
}

// ToDomainGLAccount converts a gl_accounts row.
func ToDomainGLAccount(m models.GLAccount) domain.GLAccount {
	return domain.GLAccount{
		AccountID:   m.AccountID,
		Name:        m.Name,
		AccountType: domain.AccountType(m.AccountType),
		IsActive:    m.IsActive,
	}
}

// ToDomainPermission converts a permission matrix row.
func ToDomainPermission(m models.Permission) domain.PermissionEntry {
	return domain.PermissionEntry{
		Code:             m.Code,
		Grouping:         m.Grouping,
		ActionName:       m.ActionName,
		EntityName:       m.EntityName,
		RequiresApproval: m.RequiresApproval,
	}
}
