package domain

import (
	"encoding/json"
	"fmt"
)

// Command is a request to perform a registered operation. The payload stays serialized until
// the handler registry decodes it into the operation's payload variant.
type Command struct {
	Operation string          `json:"operation"`
	Payload   json.RawMessage `json:"payload"`
	// BatchRequestID is the caller-supplied id when the command is a batch item.
	BatchRequestID string `json:"-"`
}

// CommandPayload is implemented by every known operation payload. Together the implementations
// form a closed set; anything the registry does not know decodes to an error.
type CommandPayload interface {
	CommandOperation() string
}

// OfficeScoped is implemented by payloads that belong to an office.
type OfficeScoped interface {
	Office() string
}

// ResourceScoped is implemented by payloads that target an existing resource, so that even a
// failed attempt can be recorded against it.
type ResourceScoped interface {
	Resource() string
}

// CommandResult is what a handler reports back after a successful execution.
type CommandResult struct {
	EntityName string         `json:"entityName"`
	ResourceID string         `json:"resourceID,omitempty"`
	OfficeID   string         `json:"officeID,omitempty"`
	Changes    map[string]any `json:"changes,omitempty"`
	Body       any            `json:"body,omitempty"`
}

// CommandState is the position of a submitted command in the maker-checker flow.
type CommandState string

const (
	StateReceived         CommandState = "received"
	StateExecutedDirect   CommandState = "executed"
	StateAwaitingApproval CommandState = "awaiting-approval"
	StateApproved         CommandState = "approved"
	StateExecutedDeferred CommandState = "executed-after-approval"
	StateRejected         CommandState = "rejected"
)

var commandTransitions = map[CommandState][]CommandState{
	StateReceived:         {StateExecutedDirect, StateAwaitingApproval},
	StateAwaitingApproval: {StateApproved, StateRejected},
	StateApproved:         {StateExecutedDeferred},
}

// CanTransition reports whether the flow allows moving from one state to another.
func CanTransition(from, to CommandState) bool {
	for _, next := range commandTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a state change.
func Transition(from, to CommandState) (CommandState, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("illegal command state transition %s -> %s", from, to)
	}
	return to, nil
}

// CommandOutcome is returned to the caller of the gate or the approval inbox.
type CommandOutcome struct {
	State        CommandState   `json:"state"`
	Result       *CommandResult `json:"result,omitempty"`
	PendingID    string         `json:"pendingID,omitempty"`
	AuditEventID int64          `json:"auditEventID"`
}
