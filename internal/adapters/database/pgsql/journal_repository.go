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

const journalEntryColumns = `transaction_id, office_id, transaction_date, currency_code, reversed, reversal_of, reversed_by,
		       note, created_at, created_by, last_updated_at, last_updated_by`

// PgxJournalRepository stores journal entries and their lines.
type PgxJournalRepository struct {
	BaseRepository
}

func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// SaveJournalEntry inserts the entry and its lines. Lines go in one pgx.Batch on the same
// connection, so inside a transaction the entry and its lines commit together.
func (r *PgxJournalRepository) SaveJournalEntry(ctx context.Context, tenantID string, entry domain.JournalEntry) error {
	modelEntry, modelLines := mapping.ToModelJournalEntry(tenantID, entry)
	q := r.conn(ctx)

	entryQuery := `
		INSERT INTO journal_entries (
			tenant_id, transaction_id, office_id, transaction_date, currency_code, reversed, reversal_of, reversed_by,
			note, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := q.Exec(ctx, entryQuery,
		modelEntry.TenantID,
		modelEntry.TransactionID,
		modelEntry.OfficeID,
		modelEntry.TransactionDate,
		modelEntry.CurrencyCode,
		modelEntry.Reversed,
		modelEntry.ReversalOf,
		modelEntry.ReversedBy,
		modelEntry.Note,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return storageError("failed to insert journal entry "+modelEntry.TransactionID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (tenant_id, transaction_id, line_no, account_id, role, amount, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, l := range modelLines {
		batch.Queue(lineQuery, l.TenantID, l.TransactionID, l.LineNo, l.AccountID, l.Role, l.Amount, l.Comment)
	}
	br := q.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return storageError("failed to insert lines of journal entry "+modelEntry.TransactionID, err)
	}
	return nil
}

// FindJournalEntryByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindJournalEntryByID(ctx context.Context, tenantID string, transactionID string) (*domain.JournalEntry, error) {
	query := `
		SELECT ` + journalEntryColumns + `
		FROM journal_entries
		WHERE tenant_id = $1 AND transaction_id = $2;
	`
	m, err := scanJournalEntry(r.conn(ctx).QueryRow(ctx, query, tenantID, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAppError(http.StatusNotFound, "journal entry "+transactionID+" not found", nil)
		}
		return nil, storageError("failed to get journal entry "+transactionID, err)
	}
	m.TenantID = tenantID

	lines, err := r.findLines(ctx, tenantID, []string{transactionID})
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainJournalEntry(m, lines[transactionID])
	return &entry, nil
}

// MarkReversed flips reversed from false to true. The WHERE clause is the compare-and-set: of
// two concurrent reversals only one can match the row.
func (r *PgxJournalRepository) MarkReversed(ctx context.Context, tenantID string, transactionID string, reversedBy string, userID string, at time.Time) error {
	query := `
		UPDATE journal_entries
		SET reversed = TRUE, reversed_by = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND transaction_id = $2 AND reversed = FALSE;
	`
	tag, err := r.conn(ctx).Exec(ctx, query, tenantID, transactionID, reversedBy, at, userID)
	if err != nil {
		return storageError("failed to mark journal entry "+transactionID+" reversed", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_entries WHERE tenant_id = $1 AND transaction_id = $2);`,
		tenantID, transactionID).Scan(&exists); err != nil {
		return storageError("failed to check journal entry "+transactionID, err)
	}
	if !exists {
		return apperrors.NewAppError(http.StatusNotFound, "journal entry "+transactionID+" not found", nil)
	}
	return apperrors.NewAppError(http.StatusConflict, "transaction "+transactionID+" already reversed", nil)
}

// ListJournalEntries pages entries newest first by (created_at, transaction_id).
func (r *PgxJournalRepository) ListJournalEntries(ctx context.Context, tenantID string, filter domain.JournalEntryFilter) ([]domain.JournalEntry, *string, error) {
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
	if filter.OfficeID != "" {
		conds = append(conds, "office_id = "+addArg(filter.OfficeID))
	}
	if filter.FromDate != nil {
		conds = append(conds, "transaction_date >= "+addArg(*filter.FromDate))
	}
	if filter.ToDate != nil {
		conds = append(conds, "transaction_date <= "+addArg(*filter.ToDate))
	}
	if !filter.IncludeReversals {
		conds = append(conds, "reversed = FALSE", "reversal_of IS NULL")
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		lastCreatedAt, lastID, err := pagination.DecodeCursorToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(http.StatusBadRequest, "invalid nextToken", err)
		}
		conds = append(conds, fmt.Sprintf("(created_at, transaction_id) < (%s, %s)", addArg(lastCreatedAt), addArg(lastID)))
	}

	query := `
		SELECT ` + journalEntryColumns + `
		FROM journal_entries
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT ` + addArg(limit+1) + `;`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, storageError("failed to list journal entries", err)
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		m, err := scanJournalEntry(rows)
		if err != nil {
			return nil, nil, storageError("failed to scan journal entry row", err)
		}
		m.TenantID = tenantID
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storageError("error iterating journal entry rows", err)
	}

	var nextToken *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		token := pagination.EncodeCursorToken(last.CreatedAt, last.TransactionID)
		nextToken = &token
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.TransactionID
	}
	lines, err := r.findLines(ctx, tenantID, ids)
	if err != nil {
		return nil, nil, err
	}

	result := make([]domain.JournalEntry, len(entries))
	for i, e := range entries {
		result[i] = mapping.ToDomainJournalEntry(e, lines[e.TransactionID])
	}
	return result, nextToken, nil
}

// findLines loads the lines of several entries in one query, ordered by line number.
func (r *PgxJournalRepository) findLines(ctx context.Context, tenantID string, transactionIDs []string) (map[string][]models.JournalLine, error) {
	out := make(map[string][]models.JournalLine, len(transactionIDs))
	if len(transactionIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT transaction_id, line_no, account_id, role, amount, comment
		FROM journal_lines
		WHERE tenant_id = $1 AND transaction_id = ANY($2)
		ORDER BY transaction_id, line_no;
	`
	rows, err := r.conn(ctx).Query(ctx, query, tenantID, transactionIDs)
	if err != nil {
		return nil, storageError("failed to query journal lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		l := models.JournalLine{TenantID: tenantID}
		if err := rows.Scan(&l.TransactionID, &l.LineNo, &l.AccountID, &l.Role, &l.Amount, &l.Comment); err != nil {
			return nil, storageError("failed to scan journal line row", err)
		}
		out[l.TransactionID] = append(out[l.TransactionID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating journal line rows", err)
	}
	return out, nil
}

func scanJournalEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.TransactionID,
		&m.OfficeID,
		&m.TransactionDate,
		&m.CurrencyCode,
		&m.Reversed,
		&m.ReversalOf,
		&m.ReversedBy,
		&m.Note,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}
