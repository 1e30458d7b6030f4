package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
)

// CommandHandler describes one registered operation: its permission code, how to decode its
// payload, and the function that executes it.
type CommandHandler struct {
	Operation      string
	PermissionCode string
	Grouping       string
	ActionName     string
	EntityName     string
	// Decode turns the raw payload into the operation's payload variant and validates it.
	Decode func(raw json.RawMessage, v *validator.Validate) (domain.CommandPayload, error)
	// Execute performs the operation. It must honour the transaction carried by ctx.
	Execute func(ctx context.Context, cc domain.CommandContext, payload domain.CommandPayload) (*domain.CommandResult, error)
}

// CommandRegistry maps operation names to handlers. It is populated at startup and read
// concurrently afterwards.
type CommandRegistry struct {
	mu       sync.RWMutex
	handlers map[string]CommandHandler
	order    []string
	validate *validator.Validate
}

// NewCommandRegistry creates an empty registry. Payload structs are validated with their
// `binding` tags so the same rules apply to HTTP binding and to stored payloads.
func NewCommandRegistry() *CommandRegistry {
	v := validator.New()
	v.SetTagName("binding")
	return &CommandRegistry{
		handlers: make(map[string]CommandHandler),
		validate: v,
	}
}

var _ portssvc.CommandCatalogSvc = (*CommandRegistry)(nil)

// Register adds a handler. Operation names are unique.
func (r *CommandRegistry) Register(h CommandHandler) error {
	if h.Operation == "" || h.PermissionCode == "" || h.Decode == nil || h.Execute == nil {
		return fmt.Errorf("command handler %q is incomplete", h.Operation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[h.Operation]; exists {
		return fmt.Errorf("command handler %q already registered", h.Operation)
	}
	r.handlers[h.Operation] = h
	r.order = append(r.order, h.Operation)
	return nil
}

// Lookup returns the handler of an operation. Unknown operations are validation errors.
func (r *CommandRegistry) Lookup(operation string) (CommandHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[operation]
	if !ok {
		return CommandHandler{}, fmt.Errorf("%w: unknown operation %q", apperrors.ErrValidation, operation)
	}
	return h, nil
}

// Decode resolves the handler of cmd and decodes its payload.
func (r *CommandRegistry) Decode(cmd domain.Command) (CommandHandler, domain.CommandPayload, error) {
	h, err := r.Lookup(cmd.Operation)
	if err != nil {
		return CommandHandler{}, nil, err
	}
	trimmed := bytes.TrimSpace(cmd.Payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return h, nil, fmt.Errorf("%w: payload is required for operation %q", apperrors.ErrValidation, cmd.Operation)
	}
	payload, err := h.Decode(trimmed, r.validate)
	if err != nil {
		return h, nil, err
	}
	if payload.CommandOperation() != h.Operation {
		return h, nil, fmt.Errorf("%w: payload of %q decoded as %q", apperrors.ErrValidation, cmd.Operation, payload.CommandOperation())
	}
	return h, payload, nil
}

// Catalog returns one permission entry per permission code, in registration order.
func (r *CommandRegistry) Catalog() []domain.PermissionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.order))
	entries := make([]domain.PermissionEntry, 0, len(r.order))
	for _, op := range r.order {
		h := r.handlers[op]
		if _, ok := seen[h.PermissionCode]; ok {
			continue
		}
		seen[h.PermissionCode] = struct{}{}
		entries = append(entries, domain.PermissionEntry{
			Code:       h.PermissionCode,
			Grouping:   h.Grouping,
			ActionName: h.ActionName,
			EntityName: h.EntityName,
		})
	}
	return entries
}

// Operations returns the registered operation names in registration order.
func (r *CommandRegistry) Operations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// DecodePayload is the Decode function for payload type T: strict JSON decoding followed by
// struct validation.
func DecodePayload[T domain.CommandPayload](raw json.RawMessage, v *validator.Validate) (domain.CommandPayload, error) {
	var payload T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed payload: %v", apperrors.ErrValidation, err)
	}
	if err := v.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, describeValidationError(err))
	}
	return payload, nil
}

func describeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
