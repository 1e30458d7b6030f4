package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
	"github.com/SscSPs/fincontrol/internal/models"
	"github.com/SscSPs/fincontrol/internal/utils/mapping"
	"github.com/SscSPs/fincontrol/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pendingCommandColumns = `pending_id, maker, permission_code, operation, office_id, payload, submitted_at,
		       status, checker, decided_at, rejection_reason`

// PgxPendingCommandRepository stores commands deferred for approval.
type PgxPendingCommandRepository struct {
	BaseRepository
}

func newPgxPendingCommandRepository(pool *pgxpool.Pool) *PgxPendingCommandRepository {
	return &PgxPendingCommandRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PendingCommandRepositoryFacade = (*PgxPendingCommandRepository)(nil)

// SavePendingCommand inserts a new pending command.
func (r *PgxPendingCommandRepository) SavePendingCommand(ctx context.Context, tenantID string, cmd domain.PendingCommand) error {
	m := mapping.ToModelPendingCommand(tenantID, cmd)
	query := `
		INSERT INTO pending_commands (
			tenant_id, pending_id, maker, permission_code, operation, office_id, payload, submitted_at,
			status, checker, decided_at, rejection_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.TenantID, m.PendingID, m.Maker, m.PermissionCode, m.Operation, m.OfficeID, m.Payload, m.SubmittedAt,
		m.Status, m.Checker, m.DecidedAt, m.RejectionReason,
	)
	if err != nil {
		return storageError("failed to insert pending command "+m.PendingID, err)
	}
	return nil
}

// FindPendingCommandByID retrieves a pending command in any status.
func (r *PgxPendingCommandRepository) FindPendingCommandByID(ctx context.Context, tenantID string, pendingID string) (*domain.PendingCommand, error) {
	query := `SELECT ` + pendingCommandColumns + ` FROM pending_commands WHERE tenant_id = $1 AND pending_id = $2;`
	m, err := scanPendingCommand(r.conn(ctx).QueryRow(ctx, query, tenantID, pendingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAppError(http.StatusNotFound, "pending command "+pendingID+" not found", nil)
		}
		return nil, storageError("failed to get pending command "+pendingID, err)
	}
	m.TenantID = tenantID
	cmd := mapping.ToDomainPendingCommand(m)
	return &cmd, nil
}

// DecidePendingCommand moves a pending command to a terminal status. The status predicate makes
// the update a compare-and-set: a concurrent decision on the same command matches no row.
func (r *PgxPendingCommandRepository) DecidePendingCommand(ctx context.Context, tenantID string, pendingID string, status domain.PendingStatus, checker string, reason string, at time.Time) error {
	if !status.IsTerminal() {
		return apperrors.NewAppError(http.StatusBadRequest, "pending command can only be approved or rejected", nil)
	}
	var rejectionReason *string
	if reason != "" {
		rejectionReason = &reason
	}
	query := `
		UPDATE pending_commands
		SET status = $3, checker = $4, decided_at = $5, rejection_reason = $6
		WHERE tenant_id = $1 AND pending_id = $2 AND status = 'pending';
	`
	tag, err := r.conn(ctx).Exec(ctx, query, tenantID, pendingID, string(status), checker, at, rejectionReason)
	if err != nil {
		return storageError("failed to decide pending command "+pendingID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = r.conn(ctx).QueryRow(ctx,
		`SELECT status FROM pending_commands WHERE tenant_id = $1 AND pending_id = $2;`,
		tenantID, pendingID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewAppError(http.StatusNotFound, "pending command "+pendingID+" not found", nil)
		}
		return storageError("failed to check pending command "+pendingID, err)
	}
	return apperrors.NewAppError(http.StatusConflict, fmt.Sprintf("pending command %s is already %s", pendingID, current), nil)
}

// ListPendingCommands pages the inbox newest first by (submitted_at, pending_id).
func (r *PgxPendingCommandRepository) ListPendingCommands(ctx context.Context, tenantID string, filter domain.PendingCommandFilter) ([]domain.PendingCommand, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	conds := []string{"tenant_id = $1"}
	args := []any{tenantID}
	addArg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Maker != "" {
		conds = append(conds, "maker = "+addArg(filter.Maker))
	}
	if filter.Checker != "" {
		conds = append(conds, "checker = "+addArg(filter.Checker))
	}
	if filter.OfficeID != "" {
		conds = append(conds, "office_id = "+addArg(filter.OfficeID))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+addArg(string(filter.Status)))
	}
	if filter.From != nil {
		conds = append(conds, "submitted_at >= "+addArg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "submitted_at < "+addArg(*filter.To))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		lastAt, lastID, err := pagination.DecodeCursorToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(http.StatusBadRequest, "invalid nextToken", err)
		}
		conds = append(conds, fmt.Sprintf("(submitted_at, pending_id) < (%s, %s)", addArg(lastAt), addArg(lastID)))
	}

	query := `
		SELECT ` + pendingCommandColumns + `
		FROM pending_commands
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY submitted_at DESC, pending_id DESC
		LIMIT ` + addArg(limit+1) + `;`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, storageError("failed to list pending commands", err)
	}
	defer rows.Close()

	var cmds []domain.PendingCommand
	for rows.Next() {
		m, err := scanPendingCommand(rows)
		if err != nil {
			return nil, nil, storageError("failed to scan pending command row", err)
		}
		m.TenantID = tenantID
		cmds = append(cmds, mapping.ToDomainPendingCommand(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storageError("error iterating pending command rows", err)
	}

	var nextToken *string
	if len(cmds) > limit {
		cmds = cmds[:limit]
		last := cmds[len(cmds)-1]
		token := pagination.EncodeCursorToken(last.SubmittedAt, last.PendingID)
		nextToken = &token
	}
	return cmds, nextToken, nil
}

func scanPendingCommand(row pgx.Row) (models.PendingCommand, error) {
	var m models.PendingCommand
	err := row.Scan(
		&m.PendingID,
		&m.Maker,
		&m.PermissionCode,
		&m.Operation,
		&m.OfficeID,
		&m.Payload,
		&m.SubmittedAt,
		&m.Status,
		&m.Checker,
		&m.DecidedAt,
		&m.RejectionReason,
	)
	return m, err
}
