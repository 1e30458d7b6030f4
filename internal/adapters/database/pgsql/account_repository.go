package pgsql

import (
	"context"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
	"github.com/SscSPs/fincontrol/internal/models"
	"github.com/SscSPs/fincontrol/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxAccountRepository reads gl_accounts. Accounts are provisioned by the accounting engine.
type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountReader = (*PgxAccountRepository)(nil)

// FindAccountsByIDs retrieves the tenant's accounts among accountIDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.GLAccount, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.GLAccount{}, nil
	}

	query := `
		SELECT tenant_id, account_id, name, account_type, is_active
		FROM gl_accounts
		WHERE tenant_id = $1 AND account_id = ANY($2);
	`
	rows, err := r.conn(ctx).Query(ctx, query, tenantID, accountIDs)
	if err != nil {
		return nil, storageError("failed to query accounts by IDs", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.GLAccount, len(accountIDs))
	for rows.Next() {
		var m models.GLAccount
		if err := rows.Scan(&m.TenantID, &m.AccountID, &m.Name, &m.AccountType, &m.IsActive); err != nil {
			return nil, storageError("failed to scan account row", err)
		}
		accounts[m.AccountID] = mapping.ToDomainGLAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating account rows", err)
	}
	return accounts, nil
}
