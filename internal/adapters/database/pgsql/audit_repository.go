package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
	"github.com/SscSPs/fincontrol/internal/models"
	"github.com/SscSPs/fincontrol/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxAuditRepository appends to and reads the audit log. The table rejects UPDATE and DELETE
// through a trigger, so this type only ever inserts.
type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// AppendAuditEvent inserts a sealed event and returns its assigned id.
func (r *PgxAuditRepository) AppendAuditEvent(ctx context.Context, event domain.AuditEvent) (int64, error) {
	m, err := mapping.ToModelAuditEvent(event)
	if err != nil {
		return 0, storageError("failed to encode audit event", err)
	}
	query := `
		INSERT INTO audit_events (
			tenant_id, occurred_at, actor, checker, action_name, entity_name, resource_id, office_id,
			permission_code, processing_result, detail, digest
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id;
	`
	var id int64
	err = r.conn(ctx).QueryRow(ctx, query,
		m.TenantID, m.OccurredAt, m.Actor, m.Checker, m.ActionName, m.EntityName, m.ResourceID, m.OfficeID,
		m.PermissionCode, m.ProcessingResult, m.Detail, m.Digest,
	).Scan(&id)
	if err != nil {
		return 0, storageError("failed to append audit event", err)
	}
	return id, nil
}

// ListAuditEvents returns the tenant's events ascending by (occurred_at, id).
func (r *PgxAuditRepository) ListAuditEvents(ctx context.Context, tenantID string, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	conds := []string{"tenant_id = $1"}
	args := []any{tenantID}
	addArg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		conds = append(conds, "occurred_at >= "+addArg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "occurred_at < "+addArg(*filter.To))
	}
	if filter.Actor != "" {
		conds = append(conds, "actor = "+addArg(filter.Actor))
	}
	if filter.EntityName != "" {
		conds = append(conds, "entity_name = "+addArg(filter.EntityName))
	}
	if filter.ResourceID != "" {
		conds = append(conds, "resource_id = "+addArg(filter.ResourceID))
	}
	if filter.ProcessingResult != "" {
		conds = append(conds, "processing_result = "+addArg(string(filter.ProcessingResult)))
	}
	if filter.AfterTimestamp != nil {
		conds = append(conds, fmt.Sprintf("(occurred_at, id) > (%s, %s)", addArg(*filter.AfterTimestamp), addArg(filter.AfterID)))
	}

	query := `
		SELECT id, tenant_id, occurred_at, actor, checker, action_name, entity_name, resource_id, office_id,
		       permission_code, processing_result, detail, digest
		FROM audit_events
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY occurred_at ASC, id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + addArg(filter.Limit)
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to list audit events", err)
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var m models.AuditEvent
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.OccurredAt,
			&m.Actor,
			&m.Checker,
			&m.ActionName,
			&m.EntityName,
			&m.ResourceID,
			&m.OfficeID,
			&m.PermissionCode,
			&m.ProcessingResult,
			&m.Detail,
			&m.Digest,
		); err != nil {
			return nil, storageError("failed to scan audit event row", err)
		}
		e, err := mapping.ToDomainAuditEvent(m)
		if err != nil {
			return nil, storageError("failed to decode audit event", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating audit event rows", err)
	}
	return events, nil
}
