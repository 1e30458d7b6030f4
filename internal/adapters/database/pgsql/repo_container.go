package pgsql

import (
	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgx repository onto one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:      &TxManager{BaseRepository: BaseRepository{Pool: pool}},
		AccountRepo:    newPgxAccountRepository(pool),
		JournalRepo:    newPgxJournalRepository(pool),
		PermissionRepo: newPgxPermissionRepository(pool),
		PendingRepo:    newPgxPendingCommandRepository(pool),
		AuditRepo:      newPgxAuditRepository(pool),
	}
}
