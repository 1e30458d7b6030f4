package services

import (
	"context"

	"github.com/SscSPs/fincontrol/internal/core/domain"
)

// BatchSvcFacade runs ordered lists of sub-commands.
type BatchSvcFacade interface {
	// ExecuteBatch runs items in order. With enclosingTransaction every item commits or none does.
	ExecuteBatch(ctx context.Context, cc domain.CommandContext, items []domain.BatchItem, enclosingTransaction bool) (*domain.BatchResult, error)
}
