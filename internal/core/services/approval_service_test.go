package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) submitPending(t *testing.T, cmd domain.Command) string {
	t.Helper()
	outcome, err := h.gate.Submit(context.Background(), h.maker, cmd)
	require.NoError(t, err)
	require.Equal(t, domain.StateAwaitingApproval, outcome.State)
	return outcome.PendingID
}

func TestApprove_ExecutesWithChecker(t *testing.T) {
	h := newHarness(t)
	h.requireApproval(t, dto.PermCreateJournalEntry)
	pendingID := h.submitPending(t, createCommand("75", "75"))

	outcome, err := h.approval.Approve(context.Background(), h.checker, pendingID)

	require.NoError(t, err)
	assert.Equal(t, domain.StateExecutedDeferred, outcome.State)
	assert.Equal(t, pendingID, outcome.PendingID)

	entry, ok := h.store.entry(testTenant, outcome.Result.ResourceID)
	require.True(t, ok)
	assert.Equal(t, "checker-1", entry.CreatedBy)

	pending := h.store.pendingCommand(testTenant, pendingID)
	assert.Equal(t, domain.PendingStatusApproved, pending.Status)
	assert.Equal(t, "checker-1", pending.Checker)
	require.NotNil(t, pending.DecidedAt)

	processed := eventsWithResult(h.store.auditEvents(), domain.ResultProcessed)
	require.Len(t, processed, 1)
	assert.Equal(t, "maker-1", processed[0].Actor)
	assert.Equal(t, "checker-1", processed[0].Checker)
	assert.Equal(t, pendingID, processed[0].Detail.PendingCommandID)
	assert.Equal(t, outcome.AuditEventID, processed[0].ID)

	assert.Equal(t, []domain.PendingStatus{domain.PendingStatusPending, domain.PendingStatusApproved}, h.notifier.statuses())
}

func TestReject_RecordsDecisionWithoutExecuting(t *testing.T) {
	h := newHarness(t)
	original := h.postEntry(t)
	h.requireApproval(t, dto.PermReverseJournalEntry)
	pendingID := h.submitPending(t, reverseCommand(original))

	outcome, err := h.approval.Reject(context.Background(), h.checker, pendingID, "wrong period")

	require.NoError(t, err)
	assert.Equal(t, domain.StateRejected, outcome.State)
	entry, _ := h.store.entry(testTenant, original)
	assert.False(t, entry.Reversed)
	assert.Equal(t, 1, h.store.entryCount())

	pending := h.store.pendingCommand(testTenant, pendingID)
	assert.Equal(t, domain.PendingStatusRejected, pending.Status)
	assert.Equal(t, "wrong period", pending.RejectionReason)

	rejected := eventsWithResult(h.store.auditEvents(), domain.ResultRejected)
	require.Len(t, rejected, 1)
	ev := rejected[0]
	assert.Equal(t, outcome.AuditEventID, ev.ID)
	assert.Equal(t, "maker-1", ev.Actor)
	assert.Equal(t, "checker-1", ev.Checker)
	assert.Equal(t, "REVERSE", ev.ActionName)
	assert.Equal(t, original, ev.ResourceID)
	assert.Equal(t, "wrong period", ev.Detail.Reason)
	assert.True(t, ev.Verify())

	_, err = h.approval.Approve(context.Background(), h.checker, pendingID)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "already rejected")
}

func TestApprove_HandlerFailureKeepsApproval(t *testing.T) {
	h := newHarness(t)
	h.requireApproval(t, dto.PermReverseJournalEntry)
	pendingID := h.submitPending(t, reverseCommand("tx-gone"))

	_, err := h.approval.Approve(context.Background(), h.checker, pendingID)

	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, domain.PendingStatusApproved, h.store.pendingCommand(testTenant, pendingID).Status)

	errored := eventsWithResult(h.store.auditEvents(), domain.ResultErrored)
	require.Len(t, errored, 1)
	assert.Equal(t, "checker-1", errored[0].Checker)
	assert.Equal(t, pendingID, errored[0].Detail.PendingCommandID)
	id, ok := apperrors.CorrelationID(err)
	require.True(t, ok)
	assert.Equal(t, errored[0].ID, id)
}

func TestApprove_UnknownPendingCommand(t *testing.T) {
	h := newHarness(t)

	_, err := h.approval.Approve(context.Background(), h.checker, "pending-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = h.approval.Reject(context.Background(), h.checker, "pending-missing", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDecisions_ConcurrentApproveAndRejectOneWins(t *testing.T) {
	for round := 0; round < 10; round++ {
		h := newHarness(t)
		h.requireApproval(t, dto.PermCreateJournalEntry)
		pendingID := h.submitPending(t, createCommand("20", "20"))

		var wg sync.WaitGroup
		var approveErr, rejectErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, approveErr = h.approval.Approve(context.Background(), h.checker, pendingID)
		}()
		go func() {
			defer wg.Done()
			_, rejectErr = h.approval.Reject(context.Background(), domain.CommandContext{TenantID: testTenant, Maker: "checker-2"}, pendingID, "duplicate")
		}()
		wg.Wait()

		status := h.store.pendingCommand(testTenant, pendingID).Status
		if approveErr == nil {
			require.ErrorIs(t, rejectErr, apperrors.ErrConflict)
			assert.Equal(t, domain.PendingStatusApproved, status)
			assert.Equal(t, 1, h.store.entryCount())
			assert.Empty(t, eventsWithResult(h.store.auditEvents(), domain.ResultRejected))
		} else {
			require.NoError(t, rejectErr)
			require.ErrorIs(t, approveErr, apperrors.ErrConflict)
			assert.Equal(t, domain.PendingStatusRejected, status)
			assert.Zero(t, h.store.entryCount())
			assert.Empty(t, eventsWithResult(h.store.auditEvents(), domain.ResultProcessed))
		}
	}
}

func TestListPendingCommands(t *testing.T) {
	h := newHarness(t)
	h.requireApproval(t, dto.PermCreateJournalEntry)
	first := h.submitPending(t, createCommand("1", "1"))
	h.clock.Advance(time.Minute)
	second := h.submitPending(t, createCommand("2", "2"))
	_, err := h.approval.Reject(context.Background(), h.checker, first, "")
	require.NoError(t, err)

	resp, err := h.approval.ListPendingCommands(context.Background(), h.checker, dto.ListPendingCommandsParams{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, resp.Commands, 1)
	assert.Equal(t, second, resp.Commands[0].PendingID)

	all, err := h.approval.ListPendingCommands(context.Background(), h.checker, dto.ListPendingCommandsParams{})
	require.NoError(t, err)
	require.Len(t, all.Commands, 2)
	assert.Equal(t, second, all.Commands[0].PendingID, "newest first")

	_, err = h.approval.ListPendingCommands(context.Background(), h.checker, dto.ListPendingCommandsParams{From: "yesterday"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
