package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/gin-gonic/gin"
)

// permissionHandler exposes the permission matrix. Updates are gated commands themselves.
type permissionHandler struct {
	permissions portssvc.PermissionReaderSvc
	gate        portssvc.MakerCheckerSvcFacade
}

func newPermissionHandler(permissions portssvc.PermissionReaderSvc, gate portssvc.MakerCheckerSvcFacade) *permissionHandler {
	return &permissionHandler{permissions: permissions, gate: gate}
}

func registerPermissionRoutes(rg *gin.RouterGroup, permissions portssvc.PermissionReaderSvc, gate portssvc.MakerCheckerSvcFacade) {
	h := newPermissionHandler(permissions, gate)

	perms := rg.Group("/permissions")
	{
		perms.GET("", h.listPermissions)
		perms.PUT("", h.updatePermissions)
		perms.PUT("/groups/:grouping", h.updatePermissionGroup)
	}
}

// listPermissions godoc
// @Summary List the permission matrix
// @Description Lists every permission code with the tenant's approval requirement.
// @Tags permissions
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   grouping query string false "Only codes of this grouping"
// @Success 200 {object} dto.ListPermissionsResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list permissions"
// @Security BearerAuth
// @Router /permissions [get]
func (h *permissionHandler) listPermissions(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}

	perms, err := h.permissions.ListPermissions(c.Request.Context(), cc.TenantID, c.Query("grouping"))
	if err != nil {
		respondError(c, err, "Failed to list permissions")
		return
	}
	if perms == nil {
		perms = []domain.PermissionEntry{}
	}
	c.JSON(http.StatusOK, dto.ListPermissionsResponse{Permissions: perms})
}

// updatePermissions godoc
// @Summary Toggle approval requirements
// @Description Submits a permission.update command. Each code is applied independently and reported in the result body.
// @Tags permissions
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   updates body dto.UpdatePermissionsRequest true "Per-code updates"
// @Success 200 {object} dto.CommandResponse "Executed"
// @Success 202 {object} dto.CommandResponse "Awaiting approval"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to update permissions"
// @Security BearerAuth
// @Router /permissions [put]
func (h *permissionHandler) updatePermissions(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, err)
		return
	}

	outcome, err := h.gate.Submit(c.Request.Context(), cc, domain.Command{Operation: dto.OpUpdatePermissions, Payload: payload})
	if err != nil {
		respondError(c, err, "Failed to update permissions")
		return
	}
	respondOutcome(c, outcome)
}

// updatePermissionGroup godoc
// @Summary Toggle a permission grouping
// @Description Submits a permission.updateGroup command setting the approval requirement of every code in the grouping.
// @Tags permissions
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   grouping path string true "Grouping"
// @Param   body body dto.UpdatePermissionGroupBody true "Approval requirement"
// @Success 200 {object} dto.CommandResponse "Executed"
// @Success 202 {object} dto.CommandResponse "Awaiting approval"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Unknown grouping"
// @Failure 500 {object} dto.ErrorResponse "Failed to update permission group"
// @Security BearerAuth
// @Router /permissions/groups/{grouping} [put]
func (h *permissionHandler) updatePermissionGroup(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}

	var body dto.UpdatePermissionGroupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	payload, err := json.Marshal(dto.UpdatePermissionGroupRequest{
		Grouping:         c.Param("grouping"),
		RequiresApproval: *body.RequiresApproval,
	})
	if err != nil {
		respondError(c, err, "Failed to update permission group")
		return
	}

	outcome, err := h.gate.Submit(c.Request.Context(), cc, domain.Command{Operation: dto.OpUpdatePermissionGroup, Payload: payload})
	if err != nil {
		respondError(c, err, "Failed to update permission group")
		return
	}
	respondOutcome(c, outcome)
}
