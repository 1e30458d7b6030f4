package repositories

import (
	"context"

	"github.com/SscSPs/fincontrol/internal/core/domain"
)

// AccountReader defines read operations for general-ledger accounts.
type AccountReader interface {
	// FindAccountsByIDs retrieves the accounts of a tenant that exist among accountIDs.
	// Missing ids are simply absent from the returned map.
	FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.GLAccount, error)
}
