package models

// Permission is a catalog row of permissions joined with the tenant's toggle.
type Permission struct {
	Code             string `db:"code"`
	Grouping         string `db:"permission_group"`
	ActionName       string `db:"action_name"`
	EntityName       string `db:"entity_name"`
	RequiresApproval bool   `db:"requires_approval"`
}
