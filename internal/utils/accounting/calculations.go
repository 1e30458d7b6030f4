package accounting

import (
	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Imbalance returns the absolute difference between the debit and credit legs of lines.
func Imbalance(lines []domain.JournalLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		if l.Role == domain.Debit {
			sum = sum.Add(l.Amount)
		} else {
			sum = sum.Sub(l.Amount)
		}
	}
	return sum.Abs()
}

// IsBalanced reports whether debits and credits agree within tolerance.
func IsBalanced(lines []domain.JournalLine, tolerance decimal.Decimal) bool {
	return !Imbalance(lines).GreaterThan(tolerance.Abs())
}

// Amounts are stored as NUMERIC(28,8): at most 8 fractional and 20 integer digits.
const (
	AmountScale            = 8
	MaxAmountIntegerDigits = 20
)

var amountCeiling = decimal.New(1, MaxAmountIntegerDigits)

// FitsAmountColumn reports whether d can be stored without rounding or overflow.
func FitsAmountColumn(d decimal.Decimal) bool {
	if !d.Equal(d.Truncate(AmountScale)) {
		return false
	}
	return d.Abs().LessThan(amountCeiling)
}
