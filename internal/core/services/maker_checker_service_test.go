package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_ExecutesDirectly(t *testing.T) {
	h := newHarness(t)

	outcome, err := h.gate.Submit(context.Background(), h.maker, createCommand("150.25", "150.25"))

	require.NoError(t, err)
	assert.Equal(t, domain.StateExecutedDirect, outcome.State)
	assert.Empty(t, outcome.PendingID)
	require.NotNil(t, outcome.Result)

	entry, ok := h.store.entry(testTenant, outcome.Result.ResourceID)
	require.True(t, ok)
	assert.Equal(t, "maker-1", entry.CreatedBy)

	events := h.store.auditEvents()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, outcome.AuditEventID, ev.ID)
	assert.Equal(t, domain.ResultProcessed, ev.ProcessingResult)
	assert.Equal(t, "maker-1", ev.Actor)
	assert.Empty(t, ev.Checker)
	assert.Equal(t, "CREATE", ev.ActionName)
	assert.Equal(t, dto.EntityJournalEntry, ev.EntityName)
	assert.Equal(t, dto.PermCreateJournalEntry, ev.PermissionCode)
	assert.Equal(t, entry.TransactionID, ev.ResourceID)
	assert.Equal(t, "office-1", ev.OfficeID)
	assert.Equal(t, float64(2), ev.Detail.Changes["lineCount"])
	assert.Equal(t, "150.25", ev.Detail.Changes["totalDebits"])
	assert.True(t, ev.Verify())
}

func TestSubmit_DefersWhenApprovalRequired(t *testing.T) {
	h := newHarness(t)
	h.requireApproval(t, dto.PermCreateJournalEntry)

	outcome, err := h.gate.Submit(context.Background(), h.maker, createCommand("100", "100"))

	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingApproval, outcome.State)
	require.NotEmpty(t, outcome.PendingID)
	assert.Nil(t, outcome.Result)
	assert.Zero(t, h.store.entryCount())

	pending := h.store.pendingCommand(testTenant, outcome.PendingID)
	assert.Equal(t, domain.PendingStatusPending, pending.Status)
	assert.Equal(t, "maker-1", pending.Maker)
	assert.Equal(t, dto.OpCreateJournalEntry, pending.Operation)
	assert.Equal(t, "office-1", pending.OfficeID)

	events := h.store.auditEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.ResultAwaitingApproval, events[0].ProcessingResult)
	assert.Equal(t, outcome.PendingID, events[0].Detail.PendingCommandID)
	assert.Equal(t, outcome.AuditEventID, events[0].ID)

	assert.Equal(t, []domain.PendingStatus{domain.PendingStatusPending}, h.notifier.statuses())
}

func TestSubmit_FailureRecordsErroredEvent(t *testing.T) {
	h := newHarness(t)

	cmd := domain.Command{Operation: dto.OpCreateJournalEntry, Payload: createPayload("dormant", "10", "revenue", "10")}
	outcome, err := h.gate.Submit(context.Background(), h.maker, cmd)

	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, outcome)
	assert.Zero(t, h.store.entryCount())

	events := h.store.auditEvents()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, domain.ResultErrored, ev.ProcessingResult)
	assert.Contains(t, ev.Detail.Error, "account dormant is inactive")
	assert.Equal(t, "office-1", ev.OfficeID)

	id, ok := apperrors.CorrelationID(err)
	require.True(t, ok)
	assert.Equal(t, ev.ID, id)
}

func TestSubmit_UnknownOperation(t *testing.T) {
	h := newHarness(t)

	_, err := h.gate.Submit(context.Background(), h.maker, domain.Command{Operation: "loan.disburse", Payload: []byte(`{}`)})

	require.ErrorIs(t, err, apperrors.ErrValidation)
	events := h.store.auditEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "UNKNOWN", events[0].ActionName)
	assert.Equal(t, "COMMAND", events[0].EntityName)
	assert.Equal(t, "loan.disburse", events[0].Detail.Operation)
}

func TestSubmit_StorageFailureIsMasked(t *testing.T) {
	h := newHarness(t)
	h.store.failAppendWhen = func(ev domain.AuditEvent) bool {
		return ev.ProcessingResult == domain.ResultProcessed
	}

	_, err := h.gate.Submit(context.Background(), h.maker, createCommand("10", "10"))

	require.ErrorIs(t, err, apperrors.ErrStorage)
	assert.Zero(t, h.store.entryCount(), "the entry must roll back with its audit event")
	events := h.store.auditEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.ResultErrored, events[0].ProcessingResult)
	assert.Equal(t, "internal error", events[0].Detail.Error)
}

func TestSubmit_AuditLogUnavailable(t *testing.T) {
	h := newHarness(t)
	h.store.failAppendWhen = func(domain.AuditEvent) bool { return true }

	_, err := h.gate.Submit(context.Background(), h.maker, reverseCommand("tx-missing"))

	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, ok := apperrors.CorrelationID(err)
	assert.False(t, ok)
}

func TestSubmit_ReversalAndDoubleReversal(t *testing.T) {
	h := newHarness(t)
	original := h.postEntry(t)

	outcome, err := h.gate.Submit(context.Background(), h.maker, reverseCommand(original))
	require.NoError(t, err)
	assert.Equal(t, original, outcome.Result.ResourceID)
	mirrorID := outcome.Result.Changes["reversedBy"]

	entry, _ := h.store.entry(testTenant, original)
	assert.True(t, entry.Reversed)
	require.NotNil(t, entry.ReversedBy)
	assert.Equal(t, mirrorID, *entry.ReversedBy)

	_, err = h.gate.Submit(context.Background(), h.maker, reverseCommand(original))
	require.ErrorIs(t, err, apperrors.ErrConflict)

	errored := eventsWithResult(h.store.auditEvents(), domain.ResultErrored)
	require.Len(t, errored, 1)
	assert.Equal(t, original, errored[0].ResourceID)
	assert.Contains(t, errored[0].Detail.Error, "already reversed")
}

func TestSubmit_ConcurrentReversalsOneWins(t *testing.T) {
	h := newHarness(t)
	original := h.postEntry(t)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.gate.Submit(context.Background(), h.maker, reverseCommand(original))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, h.store.entryCount(), "exactly one mirror entry")

	events := h.store.auditEvents()
	assert.Len(t, eventsWithResult(events, domain.ResultProcessed), 2)
	assert.Len(t, eventsWithResult(events, domain.ResultErrored), attempts-1)
}

func TestSubmit_RejectsValuesTheStoreCannotHold(t *testing.T) {
	longID := strings.Repeat("x", dto.MaxIDLength+1)
	tests := []struct {
		name    string
		cmd     domain.Command
		wantErr string
	}{
		{"amount overflows", createCommand("1e25", "1e25"), "exceeds 20 integer or 8 fractional digits"},
		{"amount below scale", createCommand("0.000000001", "0.000000001"), "exceeds 20 integer or 8 fractional digits"},
		{"office id too long", domain.Command{
			Operation: dto.OpCreateJournalEntry,
			Payload: json.RawMessage(fmt.Sprintf(`{"officeID":%q,"currencyCode":"USD",`+
				`"debits":[{"accountID":"cash","amount":"1"}],"credits":[{"accountID":"revenue","amount":"1"}]}`, longID)),
		}, "OfficeID failed max=64"},
		{"transaction id too long", reverseCommand(longID), "TransactionID failed max=64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			_, err := h.gate.Submit(context.Background(), h.maker, tt.cmd)

			require.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Zero(t, h.store.entryCount())

			events := h.store.auditEvents()
			require.Len(t, events, 1)
			assert.Equal(t, domain.ResultErrored, events[0].ProcessingResult)
			assert.LessOrEqual(t, len(events[0].OfficeID), dto.MaxIDLength)
			assert.LessOrEqual(t, len(events[0].ResourceID), dto.MaxIDLength)
			id, ok := apperrors.CorrelationID(err)
			require.True(t, ok)
			assert.Equal(t, events[0].ID, id)
		})
	}
}

func TestSubmit_ReportsMissingSideBeforeLineChecks(t *testing.T) {
	h := newHarness(t)
	cmd := domain.Command{
		Operation: dto.OpCreateJournalEntry,
		Payload:   json.RawMessage(`{"officeID":"office-1","currencyCode":"USD","debits":[],"credits":[{"amount":"5"}]}`),
	}

	_, err := h.gate.Submit(context.Background(), h.maker, cmd)

	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "at least one debit line and one credit line")
}
