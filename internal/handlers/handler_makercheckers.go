package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/SscSPs/fincontrol/internal/middleware"
	"github.com/gin-gonic/gin"
)

// makerCheckerHandler exposes the approval inbox.
type makerCheckerHandler struct {
	approvals portssvc.ApprovalSvcFacade
}

func newMakerCheckerHandler(approvals portssvc.ApprovalSvcFacade) *makerCheckerHandler {
	return &makerCheckerHandler{approvals: approvals}
}

func registerMakerCheckerRoutes(rg *gin.RouterGroup, approvals portssvc.ApprovalSvcFacade) {
	h := newMakerCheckerHandler(approvals)

	inbox := rg.Group("/makercheckers")
	{
		inbox.GET("", h.listPendingCommands)
		inbox.GET("/:pendingID", h.getPendingCommand)
		inbox.POST("/:pendingID/approve", h.approve)
		inbox.POST("/:pendingID/reject", h.reject)
	}
}

// listPendingCommands godoc
// @Summary List the approval inbox
// @Description Lists deferred commands newest first.
// @Tags makercheckers
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   maker query string false "Submitting user"
// @Param   checker query string false "Deciding user"
// @Param   officeID query string false "Office"
// @Param   status query string false "pending, approved or rejected"
// @Param   from query string false "Submitted at or after (RFC3339 or YYYY-MM-DD)"
// @Param   to query string false "Submitted before (RFC3339 or YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListPendingCommandsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list pending commands"
// @Security BearerAuth
// @Router /makercheckers [get]
func (h *makerCheckerHandler) listPendingCommands(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}

	var params dto.ListPendingCommandsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.approvals.ListPendingCommands(c.Request.Context(), cc, params)
	if err != nil {
		respondError(c, err, "Failed to list pending commands")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getPendingCommand godoc
// @Summary Get a pending command
// @Tags makercheckers
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   pendingID path string true "Pending command ID"
// @Success 200 {object} domain.PendingCommand
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Pending command not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve pending command"
// @Security BearerAuth
// @Router /makercheckers/{pendingID} [get]
func (h *makerCheckerHandler) getPendingCommand(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}

	cmd, err := h.approvals.GetPendingCommand(c.Request.Context(), cc, c.Param("pendingID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve pending command")
		return
	}
	c.JSON(http.StatusOK, cmd)
}

// approve godoc
// @Summary Approve a pending command
// @Description Marks the command approved and executes it with the caller as checker. Only one decision per command succeeds.
// @Tags makercheckers
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   pendingID path string true "Pending command ID"
// @Success 200 {object} dto.CommandResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Pending command not found"
// @Failure 409 {object} dto.ErrorResponse "Already decided"
// @Failure 500 {object} dto.ErrorResponse "Failed to approve command"
// @Security BearerAuth
// @Router /makercheckers/{pendingID}/approve [post]
func (h *makerCheckerHandler) approve(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}
	pendingID := c.Param("pendingID")

	outcome, err := h.approvals.Approve(c.Request.Context(), cc, pendingID)
	if err != nil {
		respondError(c, err, "Failed to approve command")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Pending command approved", slog.String("pending_id", pendingID))
	c.JSON(http.StatusOK, dto.ToCommandResponse(outcome))
}

// reject godoc
// @Summary Reject a pending command
// @Description Marks the command rejected. Nothing is executed.
// @Tags makercheckers
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   pendingID path string true "Pending command ID"
// @Param   body body dto.RejectCommandRequest false "Rejection reason"
// @Success 200 {object} dto.CommandResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Pending command not found"
// @Failure 409 {object} dto.ErrorResponse "Already decided"
// @Failure 500 {object} dto.ErrorResponse "Failed to reject command"
// @Security BearerAuth
// @Router /makercheckers/{pendingID}/reject [post]
func (h *makerCheckerHandler) reject(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}
	pendingID := c.Param("pendingID")

	var req dto.RejectCommandRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err)
			return
		}
	}

	outcome, err := h.approvals.Reject(c.Request.Context(), cc, pendingID, req.Reason)
	if err != nil {
		respondError(c, err, "Failed to reject command")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Pending command rejected", slog.String("pending_id", pendingID))
	c.JSON(http.StatusOK, dto.ToCommandResponse(outcome))
}
