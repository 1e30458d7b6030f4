package domain_test

import (
	"testing"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.CommandState
		to      domain.CommandState
		wantErr bool
	}{
		{"direct execution", domain.StateReceived, domain.StateExecutedDirect, false},
		{"deferral", domain.StateReceived, domain.StateAwaitingApproval, false},
		{"approval", domain.StateAwaitingApproval, domain.StateApproved, false},
		{"rejection", domain.StateAwaitingApproval, domain.StateRejected, false},
		{"deferred execution", domain.StateApproved, domain.StateExecutedDeferred, false},
		{"received cannot skip to approved", domain.StateReceived, domain.StateApproved, true},
		{"rejected is terminal", domain.StateRejected, domain.StateApproved, true},
		{"executed is terminal", domain.StateExecutedDirect, domain.StateAwaitingApproval, true},
		{"approved cannot be rejected", domain.StateApproved, domain.StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.Transition(tt.from, tt.to)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.from, got)
				assert.False(t, domain.CanTransition(tt.from, tt.to))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.to, got)
		})
	}
}

func TestPendingStatus_IsTerminal(t *testing.T) {
	assert.False(t, domain.PendingStatusPending.IsTerminal())
	assert.True(t, domain.PendingStatusApproved.IsTerminal())
	assert.True(t, domain.PendingStatusRejected.IsTerminal())
}

func TestMissingCodePolicy_RequiresApproval(t *testing.T) {
	assert.False(t, domain.FailOpen.RequiresApproval())
	assert.True(t, domain.FailClosed.RequiresApproval())
}

func TestCommandContext_Actor(t *testing.T) {
	assert.Equal(t, "maker", domain.CommandContext{Maker: "maker"}.Actor())
	assert.Equal(t, "checker", domain.CommandContext{Maker: "maker", Checker: "checker"}.Actor())
}

func TestDisplayStatusFor(t *testing.T) {
	assert.Equal(t, domain.DisplaySuccess, domain.DisplayStatusFor(domain.ResultProcessed))
	assert.Equal(t, domain.DisplayWarning, domain.DisplayStatusFor(domain.ResultRejected))
	assert.Equal(t, domain.DisplayError, domain.DisplayStatusFor(domain.ResultErrored))
	assert.Equal(t, domain.DisplayInfo, domain.DisplayStatusFor(domain.ResultAwaitingApproval))
}
