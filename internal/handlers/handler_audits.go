package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/gin-gonic/gin"
)

type auditHandler struct {
	audits portssvc.AuditSvcFacade
}

func newAuditHandler(audits portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{audits: audits}
}

func registerAuditRoutes(rg *gin.RouterGroup, audits portssvc.AuditSvcFacade) {
	h := newAuditHandler(audits)

	group := rg.Group("/audits")
	{
		group.GET("", h.listAuditEvents)
		group.GET("/timeline", h.timeline)
	}
}

// listAuditEvents godoc
// @Summary Search the audit log
// @Description Lists audit events oldest first, each with its display status, flattened changes and digest verification.
// @Tags audits
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   from query string false "At or after (RFC3339 or YYYY-MM-DD)"
// @Param   to query string false "Before (RFC3339 or YYYY-MM-DD)"
// @Param   actor query string false "Acting user"
// @Param   entityName query string false "Entity"
// @Param   resourceID query string false "Resource"
// @Param   processingResult query string false "processed, awaiting-approval, rejected or errored"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListAuditEventsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list audit events"
// @Security BearerAuth
// @Router /audits [get]
func (h *auditHandler) listAuditEvents(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}

	var params dto.ListAuditEventsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.audits.ListAuditEvents(c.Request.Context(), cc, params)
	if err != nil {
		respondError(c, err, "Failed to list audit events")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// timeline godoc
// @Summary Audit timeline
// @Description Groups the audit events of a range by calendar day, with per-day status counts. Pages cover whole days.
// @Tags audits
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   from query string true "First day (YYYY-MM-DD)"
// @Param   to query string true "Last day (YYYY-MM-DD)"
// @Param   days query int false "Days per page"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} domain.AuditTimeline
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to build audit timeline"
// @Security BearerAuth
// @Router /audits/timeline [get]
func (h *auditHandler) timeline(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}

	var params dto.AuditTimelineParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}

	tl, err := h.audits.Timeline(c.Request.Context(), cc, params)
	if err != nil {
		respondError(c, err, "Failed to build audit timeline")
		return
	}
	c.JSON(http.StatusOK, tl)
}
