package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/core/services"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/stretchr/testify/require"
)

const testTenant = "tenant-1"

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []domain.PendingCommand
}

func (n *recordingNotifier) NotifyPendingCommand(_ context.Context, _ string, cmd domain.PendingCommand) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, cmd)
}

func (n *recordingNotifier) statuses() []domain.PendingStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.PendingStatus, len(n.messages))
	for i, m := range n.messages {
		out[i] = m.Status
	}
	return out
}

// harness wires the real services on top of memStore.
type harness struct {
	store       *memStore
	clock       *testClock
	notifier    *recordingNotifier
	registry    *services.CommandRegistry
	ledger      portssvc.LedgerSvcFacade
	permissions portssvc.PermissionSvcFacade
	gate        portssvc.MakerCheckerSvcFacade
	approval    portssvc.ApprovalSvcFacade
	batch       portssvc.BatchSvcFacade
	audit       portssvc.AuditSvcFacade
	maker       domain.CommandContext
	checker     domain.CommandContext
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:    newMemStore(),
		clock:    &testClock{t: time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)},
		notifier: &recordingNotifier{},
		maker:    domain.CommandContext{TenantID: testTenant, Maker: "maker-1"},
		checker:  domain.CommandContext{TenantID: testTenant, Maker: "checker-1"},
	}
	h.store.addAccount(testTenant, domain.GLAccount{AccountID: "cash", Name: "Cash", AccountType: domain.Asset, IsActive: true})
	h.store.addAccount(testTenant, domain.GLAccount{AccountID: "revenue", Name: "Revenue", AccountType: domain.Income, IsActive: true})
	h.store.addAccount(testTenant, domain.GLAccount{AccountID: "dormant", Name: "Dormant", AccountType: domain.Asset, IsActive: false})

	repos := h.store.repos()
	h.permissions = services.NewPermissionService(repos.PermissionRepo, services.WithPermissionClock(h.clock.Now))
	h.ledger = services.NewLedgerService(repos.TxManager, repos.JournalRepo, repos.AccountRepo, repos.AuditRepo, services.WithLedgerClock(h.clock.Now))
	h.registry = services.NewCommandRegistry()
	require.NoError(t, services.RegisterBuiltinHandlers(h.registry, h.ledger, h.permissions))
	h.gate = services.NewMakerCheckerService(h.registry, h.permissions, repos.TxManager, repos.PendingRepo, repos.AuditRepo,
		services.WithApprovalNotifier(h.notifier),
		services.WithMakerCheckerClock(h.clock.Now))
	h.approval = services.NewApprovalService(h.gate, h.registry, repos.TxManager, repos.PendingRepo, repos.AuditRepo,
		services.WithDecisionNotifier(h.notifier),
		services.WithApprovalClock(h.clock.Now))
	h.batch = services.NewBatchService(h.gate, repos.TxManager)
	h.audit = services.NewAuditService(repos.AuditRepo)

	require.NoError(t, h.permissions.SyncCatalog(context.Background(), h.registry.Catalog()))
	return h
}

func (h *harness) requireApproval(t *testing.T, code string) {
	t.Helper()
	results, err := h.permissions.SetMany(context.Background(), domain.CommandContext{TenantID: testTenant, Maker: "admin"},
		[]domain.PermissionUpdate{{Code: code, RequiresApproval: true}})
	require.NoError(t, err)
	require.True(t, results[0].Applied)
}

func createPayload(debitAccount, debit, creditAccount, credit string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"officeID": "office-1",
		"transactionDate": "2024-05-06",
		"currencyCode": "USD",
		"debits": [{"accountID": %q, "amount": %q}],
		"credits": [{"accountID": %q, "amount": %q}]
	}`, debitAccount, debit, creditAccount, credit))
}

func createCommand(debit, credit string) domain.Command {
	return domain.Command{Operation: dto.OpCreateJournalEntry, Payload: createPayload("cash", debit, "revenue", credit)}
}

func reverseCommand(transactionID string) domain.Command {
	return domain.Command{
		Operation: dto.OpReverseJournalEntry,
		Payload:   json.RawMessage(fmt.Sprintf(`{"transactionID": %q}`, transactionID)),
	}
}

// postEntry creates a balanced entry directly through the gate and returns its id.
func (h *harness) postEntry(t *testing.T) string {
	t.Helper()
	outcome, err := h.gate.Submit(context.Background(), h.maker, createCommand("100", "100"))
	require.NoError(t, err)
	require.Equal(t, domain.StateExecutedDirect, outcome.State)
	return outcome.Result.ResourceID
}

func eventsWithResult(events []domain.AuditEvent, result domain.ProcessingResult) []domain.AuditEvent {
	var out []domain.AuditEvent
	for _, ev := range events {
		if ev.ProcessingResult == result {
			out = append(out, ev)
		}
	}
	return out
}
