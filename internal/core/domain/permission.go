package domain

// PermissionEntry is one row of the permission matrix for a tenant.
type PermissionEntry struct {
	Code             string `json:"code"`
	Grouping         string `json:"grouping"`
	ActionName       string `json:"actionName"`
	EntityName       string `json:"entityName"`
	RequiresApproval bool   `json:"requiresApproval"`
}

// PermissionUpdate toggles the approval requirement of a single code.
type PermissionUpdate struct {
	Code             string `json:"code"`
	RequiresApproval bool   `json:"requiresApproval"`
}

// PermissionUpdateResult reports the outcome of one code within a bulk update.
type PermissionUpdateResult struct {
	Code    string `json:"code"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// MissingCodePolicy decides what a lookup returns for a code absent from the catalog.
type MissingCodePolicy string

const (
	// FailOpen treats an unknown code as "approval not required".
	FailOpen MissingCodePolicy = "fail-open"
	// FailClosed treats an unknown code as "approval required".
	FailClosed MissingCodePolicy = "fail-closed"
)

// RequiresApproval returns the policy's answer for a code that has no catalog entry.
func (p MissingCodePolicy) RequiresApproval() bool {
	return p == FailClosed
}
