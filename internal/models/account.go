package models

// AccountType defines the fundamental accounting type of an account.
type AccountType string

// GLAccount is a row of gl_accounts.
type GLAccount struct {
	TenantID    string      `db:"tenant_id"`
	AccountID   string      `db:"account_id"`
	Name        string      `db:"name"`
	AccountType AccountType `db:"account_type"`
	IsActive    bool        `db:"is_active"`
}
