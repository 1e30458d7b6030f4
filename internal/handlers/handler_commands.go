package handlers

import (
	"log/slog"

	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/SscSPs/fincontrol/internal/middleware"
	"github.com/gin-gonic/gin"
)

// commandHandler submits arbitrary registered commands to the maker-checker gate.
type commandHandler struct {
	gate portssvc.MakerCheckerSvcFacade
}

func newCommandHandler(gate portssvc.MakerCheckerSvcFacade) *commandHandler {
	return &commandHandler{gate: gate}
}

func registerCommandRoutes(rg *gin.RouterGroup, gate portssvc.MakerCheckerSvcFacade) {
	h := newCommandHandler(gate)
	rg.POST("/commands", h.submitCommand)
}

// submitCommand godoc
// @Summary Submit a command
// @Description Runs a registered operation through the maker-checker gate. The command executes immediately unless its permission code requires approval, in which case it is parked in the approval inbox.
// @Tags commands
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   command body dto.SubmitCommandRequest true "Command"
// @Success 200 {object} dto.CommandResponse "Executed"
// @Success 202 {object} dto.CommandResponse "Awaiting approval"
// @Failure 400 {object} dto.ErrorResponse "Unknown operation or invalid payload"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Referenced resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflict with current state"
// @Failure 500 {object} dto.ErrorResponse "Command failed"
// @Security BearerAuth
// @Router /commands [post]
func (h *commandHandler) submitCommand(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}

	var req dto.SubmitCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Received command", slog.String("operation", req.Operation))
	outcome, err := h.gate.Submit(c.Request.Context(), cc, req.ToCommand())
	if err != nil {
		respondError(c, err, "Command failed")
		return
	}
	respondOutcome(c, outcome)
}
