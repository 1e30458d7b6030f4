package dto

import "github.com/SscSPs/fincontrol/internal/core/domain"

// Operation names and permission code of the permission matrix commands.
const (
	OpUpdatePermissions     = "permission.update"
	OpUpdatePermissionGroup = "permission.updateGroup"

	PermUpdatePermission  = "UPDATE_PERMISSION"
	EntityPermission      = "PERMISSION"
	GroupingAuthorisation = "authorisation"
)

// UpdatePermissionsRequest toggles approval requirements code by code (setMany).
type UpdatePermissionsRequest struct {
	Permissions []domain.PermissionUpdate `json:"permissions" binding:"required,min=1,dive"`
}

// CommandOperation implements domain.CommandPayload.
func (UpdatePermissionsRequest) CommandOperation() string { return OpUpdatePermissions }

// UpdatePermissionGroupRequest toggles every code sharing a grouping (setGroup).
type UpdatePermissionGroupRequest struct {
	Grouping         string `json:"grouping" binding:"required,max=100"`
	RequiresApproval bool   `json:"requiresApproval"`
}

// CommandOperation implements domain.CommandPayload.
func (UpdatePermissionGroupRequest) CommandOperation() string { return OpUpdatePermissionGroup }

// Resource implements domain.ResourceScoped.
func (r UpdatePermissionGroupRequest) Resource() string { return r.Grouping }

// UpdatePermissionsResponse carries per-code results so partial application is visible.
type UpdatePermissionsResponse struct {
	Results []domain.PermissionUpdateResult `json:"results"`
	Applied int                             `json:"applied"`
	Failed  int                             `json:"failed"`
}

// ToUpdatePermissionsResponse summarizes per-code results.
func ToUpdatePermissionsResponse(results []domain.PermissionUpdateResult) UpdatePermissionsResponse {
	resp := UpdatePermissionsResponse{Results: results}
	for _, r := range results {
		if r.Applied {
			resp.Applied++
		} else {
			resp.Failed++
		}
	}
	return resp
}

// ListPermissionsResponse is the permission matrix of a tenant.
type ListPermissionsResponse struct {
	Permissions []domain.PermissionEntry `json:"permissions"`
}

// UpdatePermissionGroupBody is the body of the group toggle endpoint; the grouping comes from the path.
type UpdatePermissionGroupBody struct {
	RequiresApproval *bool `json:"requiresApproval" binding:"required"`
}
