package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// CommandContext identifies who is acting, and for which tenant, on every call into the core.
// The identity is supplied by the session layer and trusted as given.
type CommandContext struct {
	TenantID string
	Maker    string
	// Checker is set only when a deferred command executes after approval.
	Checker string
}

// Actor returns the user the effect is attributed to.
func (c CommandContext) Actor() string {
	if c.Checker != "" {
		return c.Checker
	}
	return c.Maker
}
