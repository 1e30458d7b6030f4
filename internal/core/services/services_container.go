package services

import (
	"fmt"

	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/platform/config"
)

// ContainerOption adds optional collaborators to the service container.
type ContainerOption func(*containerDeps)

type containerDeps struct {
	notifier portssvc.ApprovalNotifier
}

// WithNotifier publishes approval inbox changes through notifier.
func WithNotifier(notifier portssvc.ApprovalNotifier) ContainerOption {
	return func(d *containerDeps) {
		d.notifier = notifier
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...ContainerOption) (*portssvc.ServiceContainer, error) {
	deps := &containerDeps{}
	for _, option := range options {
		option(deps)
	}

	container := &portssvc.ServiceContainer{}

	container.Permission = NewPermissionService(repos.PermissionRepo, WithMissingCodePolicy(cfg.MissingCodePolicy))

	container.Ledger = NewLedgerService(
		repos.TxManager,
		repos.JournalRepo,
		repos.AccountRepo,
		repos.AuditRepo,
		WithBalanceTolerance(cfg.BalanceTolerance),
	)

	// Handlers must be registered before the gate serves requests
	registry := NewCommandRegistry()
	if err := RegisterBuiltinHandlers(registry, container.Ledger, container.Permission); err != nil {
		return nil, fmt.Errorf("registering command handlers: %w", err)
	}
	container.Commands = registry

	gateOptions := []MakerCheckerOption{}
	approvalOptions := []ApprovalOption{}
	if deps.notifier != nil {
		gateOptions = append(gateOptions, WithApprovalNotifier(deps.notifier))
		approvalOptions = append(approvalOptions, WithDecisionNotifier(deps.notifier))
	}

	container.MakerChecker = NewMakerCheckerService(registry, container.Permission, repos.TxManager, repos.PendingRepo, repos.AuditRepo, gateOptions...)
	container.Approval = NewApprovalService(container.MakerChecker, registry, repos.TxManager, repos.PendingRepo, repos.AuditRepo, approvalOptions...)
	container.Batch = NewBatchService(container.MakerChecker, repos.TxManager)
	container.Audit = NewAuditService(repos.AuditRepo, WithAuditLocation(cfg.AuditLocation), WithAuditDaysPerPage(cfg.AuditDaysPerPage))

	return container, nil
}
