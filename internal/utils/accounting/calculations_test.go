package accounting_test

import (
	"testing"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/SscSPs/fincontrol/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(role domain.LineRole, amount string) domain.JournalLine {
	return domain.JournalLine{Role: role, Amount: decimal.RequireFromString(amount)}
}

func TestImbalance(t *testing.T) {
	debitsOnly := []domain.JournalLine{line(domain.Debit, "60"), line(domain.Debit, "40")}
	assert.Equal(t, "100", accounting.Imbalance(debitsOnly).String())

	balanced := append(debitsOnly, line(domain.Credit, "100"))
	assert.True(t, accounting.Imbalance(balanced).IsZero())

	short := []domain.JournalLine{line(domain.Debit, "100"), line(domain.Credit, "100.25")}
	assert.Equal(t, "0.25", accounting.Imbalance(short).String())
}

func TestIsBalanced(t *testing.T) {
	tolerance := decimal.New(1, -4)
	entry := []domain.JournalLine{line(domain.Debit, "10.00005"), line(domain.Credit, "10")}

	assert.True(t, accounting.IsBalanced(entry, tolerance))
	assert.False(t, accounting.IsBalanced(entry, decimal.Zero))
	assert.True(t, accounting.IsBalanced(nil, decimal.Zero))
}
