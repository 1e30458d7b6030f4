package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/SscSPs/fincontrol/internal/middleware"
	"github.com/gin-gonic/gin"
)

// commandContext resolves the caller identity or aborts with 401.
func commandContext(c *gin.Context) (domain.CommandContext, bool) {
	cc, ok := middleware.GetCommandContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User or tenant not found in context")
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return domain.CommandContext{}, false
	}
	return cc, true
}

// respondError writes err with the status its kind maps to. Only operator-safe and handler
// messages are shown; anything else is replaced by fallback.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := apperrors.HTTPStatus(err)

	resp := dto.ErrorResponse{Error: fallback}
	if id, ok := apperrors.CorrelationID(err); ok {
		resp.CorrelationID = id
	}

	var handlerErr *apperrors.HandlerError
	switch {
	case apperrors.IsOperatorSafe(err):
		resp.Error = err.Error()
		logger.Warn("Request failed", slog.Int("status", status), slog.String("error", err.Error()))
	case errors.As(err, &handlerErr) && !errors.Is(err, apperrors.ErrStorage):
		resp.Error = handlerErr.Error()
		logger.Error("Command handler failed", slog.Int("status", status), slog.String("error", err.Error()))
	default:
		logger.Error(fallback, slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, resp)
}

// badRequest answers a binding failure.
func badRequest(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
}

// respondOutcome answers a gate outcome: 202 when the command awaits approval, 200 otherwise.
func respondOutcome(c *gin.Context, outcome *domain.CommandOutcome) {
	status := http.StatusOK
	if outcome.State == domain.StateAwaitingApproval {
		status = http.StatusAccepted
	}
	c.JSON(status, dto.ToCommandResponse(outcome))
}
