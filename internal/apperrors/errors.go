package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates the request conflicts with the current state of the resource
// (double reversal, double approval, ...). Callers should refresh state rather than retry.
var ErrConflict = errors.New("conflict with current state")

// ErrHandler indicates that a command handler failed while executing.
var ErrHandler = errors.New("command handler failed")

// ErrStorage indicates a persistence failure. Its details are never shown to callers.
var ErrStorage = errors.New("storage failure")

// ErrUnauthorized indicates a missing or invalid identity.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller may not perform the action.
var ErrForbidden = errors.New("forbidden")

// AppError is the error type returned by the persistence adapters. It carries a status code
// and unwraps to both the matching sentinel and the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the sentinel implied by Code alongside the cause.
func (e *AppError) Unwrap() []error {
	errs := []error{kindForCode(e.Code)}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func kindForCode(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return ErrStorage
	}
}

// HandlerError wraps a failure returned by a registered command handler.
type HandlerError struct {
	Operation string
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrHandler) hold for every HandlerError.
func (e *HandlerError) Is(target error) bool { return target == ErrHandler }

// correlatedError attaches the id of the AuditEvent written for a failed attempt.
type correlatedError struct {
	err error
	id  int64
}

func (e *correlatedError) Error() string { return e.err.Error() }
func (e *correlatedError) Unwrap() error { return e.err }

// WithCorrelationID returns err annotated with an audit event id. A zero id leaves err untouched.
func WithCorrelationID(err error, auditEventID int64) error {
	if err == nil || auditEventID == 0 {
		return err
	}
	return &correlatedError{err: err, id: auditEventID}
}

// CorrelationID extracts the audit event id attached by WithCorrelationID.
func CorrelationID(err error) (int64, bool) {
	var ce *correlatedError
	if errors.As(err, &ce) {
		return ce.id, true
	}
	return 0, false
}

// HTTPStatus maps an error from the taxonomy to an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// IsOperatorSafe reports whether the error text may be shown verbatim to an operator.
// Validation, not-found and conflict errors are deterministic; everything else is opaque.
func IsOperatorSafe(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}
