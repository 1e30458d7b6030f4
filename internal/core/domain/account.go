package domain

// AccountType defines the fundamental accounting type of a general-ledger account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// GLAccount is a general-ledger account that journal lines post against.
// Accounts are provisioned by the accounting engine; the core only resolves them.
type GLAccount struct {
	AccountID   string      `json:"accountID"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	IsActive    bool        `json:"isActive"`
}
