package pgsql

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
	"github.com/SscSPs/fincontrol/internal/models"
	"github.com/SscSPs/fincontrol/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPermissionRepository stores the permission catalog (shared by all tenants) and the
// per-tenant approval toggles.
type PgxPermissionRepository struct {
	BaseRepository
}

func newPgxPermissionRepository(pool *pgxpool.Pool) *PgxPermissionRepository {
	return &PgxPermissionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PermissionRepositoryFacade = (*PgxPermissionRepository)(nil)

const permissionSelect = `
		SELECT p.code, p.permission_group, p.action_name, p.entity_name, COALESCE(tp.requires_approval, FALSE)
		FROM permissions p
		LEFT JOIN tenant_permissions tp ON tp.code = p.code AND tp.tenant_id = $1
`

// FindPermission retrieves one code of the tenant's matrix.
func (r *PgxPermissionRepository) FindPermission(ctx context.Context, tenantID string, code string) (*domain.PermissionEntry, error) {
	query := permissionSelect + ` WHERE p.code = $2;`
	var m models.Permission
	err := r.conn(ctx).QueryRow(ctx, query, tenantID, code).
		Scan(&m.Code, &m.Grouping, &m.ActionName, &m.EntityName, &m.RequiresApproval)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAppError(http.StatusNotFound, "permission "+code+" not found", nil)
		}
		return nil, storageError("failed to get permission "+code, err)
	}
	p := mapping.ToDomainPermission(m)
	return &p, nil
}

// ListPermissions returns the tenant's matrix, optionally narrowed to a grouping.
func (r *PgxPermissionRepository) ListPermissions(ctx context.Context, tenantID string, grouping string) ([]domain.PermissionEntry, error) {
	query := permissionSelect + ` WHERE ($2 = '' OR p.permission_group = $2) ORDER BY p.permission_group, p.code;`
	rows, err := r.conn(ctx).Query(ctx, query, tenantID, grouping)
	if err != nil {
		return nil, storageError("failed to list permissions", err)
	}
	defer rows.Close()

	var out []domain.PermissionEntry
	for rows.Next() {
		var m models.Permission
		if err := rows.Scan(&m.Code, &m.Grouping, &m.ActionName, &m.EntityName, &m.RequiresApproval); err != nil {
			return nil, storageError("failed to scan permission row", err)
		}
		out = append(out, mapping.ToDomainPermission(m))
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating permission rows", err)
	}
	return out, nil
}

// ListCodesByGrouping returns the catalog codes of a grouping.
func (r *PgxPermissionRepository) ListCodesByGrouping(ctx context.Context, grouping string) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT code FROM permissions WHERE permission_group = $1 ORDER BY code;`, grouping)
	if err != nil {
		return nil, storageError("failed to list permission codes of "+grouping, err)
	}
	codes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storageError("failed to scan permission codes", err)
	}
	return codes, nil
}

// SetRequiresApproval upserts the tenant's toggle for a catalog code. The insert selects from
// the catalog, so an unknown code affects no rows instead of raising a foreign key error that
// would abort an enclosing transaction.
func (r *PgxPermissionRepository) SetRequiresApproval(ctx context.Context, tenantID string, code string, requiresApproval bool, userID string, at time.Time) error {
	query := `
		INSERT INTO tenant_permissions (tenant_id, code, requires_approval, last_updated_at, last_updated_by)
		SELECT $1, p.code, $3, $4, $5
		FROM permissions p
		WHERE p.code = $2
		ON CONFLICT (tenant_id, code) DO UPDATE
		SET requires_approval = EXCLUDED.requires_approval,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	tag, err := r.conn(ctx).Exec(ctx, query, tenantID, code, requiresApproval, at, userID)
	if err != nil {
		return storageError("failed to update permission "+code, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(http.StatusNotFound, "permission "+code+" not found", nil)
	}
	return nil
}

// UpsertCatalog inserts or refreshes catalog rows. Tenant toggles are untouched.
func (r *PgxPermissionRepository) UpsertCatalog(ctx context.Context, entries []domain.PermissionEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `
		INSERT INTO permissions (code, permission_group, action_name, entity_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE
		SET permission_group = EXCLUDED.permission_group,
		    action_name = EXCLUDED.action_name,
		    entity_name = EXCLUDED.entity_name;
	`
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query, e.Code, e.Grouping, e.ActionName, e.EntityName)
	}
	if err := r.conn(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return storageError("failed to upsert permission catalog", err)
	}
	return nil
}
