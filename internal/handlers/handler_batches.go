package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/SscSPs/fincontrol/internal/middleware"
	"github.com/gin-gonic/gin"
)

type batchHandler struct {
	batches portssvc.BatchSvcFacade
}

func newBatchHandler(batches portssvc.BatchSvcFacade) *batchHandler {
	return &batchHandler{batches: batches}
}

func registerBatchRoutes(rg *gin.RouterGroup, batches portssvc.BatchSvcFacade) {
	h := newBatchHandler(batches)
	rg.POST("/batches", h.executeBatch)
}

// executeBatch godoc
// @Summary Execute a batch of commands
// @Description Runs sub-commands in order. With enclosingTransaction=true every sub-command commits or none does, and approval-gated operations are refused up front. Per-item outcomes are always returned with status 200.
// @Tags batches
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   enclosingTransaction query bool false "All-or-nothing execution" default(false)
// @Param   batch body dto.BatchRequest true "Sub-commands"
// @Success 200 {object} dto.BatchResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid batch"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to execute batch"
// @Security BearerAuth
// @Router /batches [post]
func (h *batchHandler) executeBatch(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}

	enclosing := false
	if raw := c.Query("enclosingTransaction"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		enclosing = parsed
	}

	var req dto.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.batches.ExecuteBatch(c.Request.Context(), cc, req.Requests, enclosing)
	if err != nil {
		respondError(c, err, "Failed to execute batch")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Batch executed",
		slog.Int("items", len(result.Items)),
		slog.Bool("enclosing_transaction", enclosing),
		slog.Bool("rolled_back", result.RolledBack))
	c.JSON(http.StatusOK, dto.ToBatchResponse(result))
}
