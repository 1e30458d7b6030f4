package services

import (
	"context"
	"fmt"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/dto"
)

// RegisterBuiltinHandlers registers the ledger and permission matrix operations.
func RegisterBuiltinHandlers(registry *CommandRegistry, ledger portssvc.LedgerWriterSvc, permissions portssvc.PermissionWriterSvc) error {
	handlers := []CommandHandler{
		{
			Operation:      dto.OpCreateJournalEntry,
			PermissionCode: dto.PermCreateJournalEntry,
			Grouping:       dto.GroupingAccounting,
			ActionName:     "CREATE",
			EntityName:     dto.EntityJournalEntry,
			Decode:         DecodePayload[dto.CreateJournalEntryRequest],
			Execute: func(ctx context.Context, cc domain.CommandContext, payload domain.CommandPayload) (*domain.CommandResult, error) {
				req, ok := payload.(dto.CreateJournalEntryRequest)
				if !ok {
					return nil, fmt.Errorf("unexpected payload %T", payload)
				}
				entry, err := ledger.CreateJournalEntry(ctx, cc, req)
				if err != nil {
					return nil, err
				}
				debits, credits := entry.Totals()
				return &domain.CommandResult{
					EntityName: dto.EntityJournalEntry,
					ResourceID: entry.TransactionID,
					OfficeID:   entry.OfficeID,
					Changes: map[string]any{
						"officeID":        entry.OfficeID,
						"transactionDate": dto.Date{Time: entry.TransactionDate},
						"currencyCode":    entry.CurrencyCode,
						"totalDebits":     debits.String(),
						"totalCredits":    credits.String(),
						"lineCount":       len(entry.Lines),
					},
					Body: dto.ToJournalEntryResponse(entry),
				}, nil
			},
		},
		{
			Operation:      dto.OpReverseJournalEntry,
			PermissionCode: dto.PermReverseJournalEntry,
			Grouping:       dto.GroupingAccounting,
			ActionName:     "REVERSE",
			EntityName:     dto.EntityJournalEntry,
			Decode:         DecodePayload[dto.ReverseJournalEntryRequest],
			Execute: func(ctx context.Context, cc domain.CommandContext, payload domain.CommandPayload) (*domain.CommandResult, error) {
				req, ok := payload.(dto.ReverseJournalEntryRequest)
				if !ok {
					return nil, fmt.Errorf("unexpected payload %T", payload)
				}
				mirror, err := ledger.ReverseJournalEntry(ctx, cc, req)
				if err != nil {
					return nil, err
				}
				return &domain.CommandResult{
					EntityName: dto.EntityJournalEntry,
					ResourceID: req.TransactionID,
					OfficeID:   mirror.OfficeID,
					Changes: map[string]any{
						"reversed":   true,
						"reversedBy": mirror.TransactionID,
					},
					Body: dto.ToJournalEntryResponse(mirror),
				}, nil
			},
		},
		{
			Operation:      dto.OpUpdatePermissions,
			PermissionCode: dto.PermUpdatePermission,
			Grouping:       dto.GroupingAuthorisation,
			ActionName:     "UPDATE",
			EntityName:     dto.EntityPermission,
			Decode:         DecodePayload[dto.UpdatePermissionsRequest],
			Execute: func(ctx context.Context, cc domain.CommandContext, payload domain.CommandPayload) (*domain.CommandResult, error) {
				req, ok := payload.(dto.UpdatePermissionsRequest)
				if !ok {
					return nil, fmt.Errorf("unexpected payload %T", payload)
				}
				results, err := permissions.SetMany(ctx, cc, req.Permissions)
				if err != nil {
					return nil, err
				}
				return permissionResult("", req.Permissions, results), nil
			},
		},
		{
			Operation:      dto.OpUpdatePermissionGroup,
			PermissionCode: dto.PermUpdatePermission,
			Grouping:       dto.GroupingAuthorisation,
			ActionName:     "UPDATE",
			EntityName:     dto.EntityPermission,
			Decode:         DecodePayload[dto.UpdatePermissionGroupRequest],
			Execute: func(ctx context.Context, cc domain.CommandContext, payload domain.CommandPayload) (*domain.CommandResult, error) {
				req, ok := payload.(dto.UpdatePermissionGroupRequest)
				if !ok {
					return nil, fmt.Errorf("unexpected payload %T", payload)
				}
				results, err := permissions.SetGroup(ctx, cc, req.Grouping, req.RequiresApproval)
				if err != nil {
					return nil, err
				}
				updates := make([]domain.PermissionUpdate, len(results))
				for i, r := range results {
					updates[i] = domain.PermissionUpdate{Code: r.Code, RequiresApproval: req.RequiresApproval}
				}
				return permissionResult(req.Grouping, updates, results), nil
			},
		},
	}

	for _, h := range handlers {
		if err := registry.Register(h); err != nil {
			return err
		}
	}
	return nil
}

// permissionResult records only the codes that were actually applied as changes.
func permissionResult(resourceID string, updates []domain.PermissionUpdate, results []domain.PermissionUpdateResult) *domain.CommandResult {
	changes := make(map[string]any, len(results))
	for i, r := range results {
		if r.Applied && i < len(updates) {
			changes[r.Code] = map[string]any{"requiresApproval": updates[i].RequiresApproval}
		}
	}
	return &domain.CommandResult{
		EntityName: dto.EntityPermission,
		ResourceID: resourceID,
		Changes:    changes,
		Body:       dto.ToUpdatePermissionsResponse(results),
	}
}
