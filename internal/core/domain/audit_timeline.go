package domain

// DisplayStatus is the presentation-level status derived from a processing result.
type DisplayStatus string

const (
	DisplaySuccess DisplayStatus = "success"
	DisplayWarning DisplayStatus = "warning"
	DisplayError   DisplayStatus = "error"
	DisplayInfo    DisplayStatus = "info"
)

// DisplayStatusFor maps a processing result to its display status.
func DisplayStatusFor(r ProcessingResult) DisplayStatus {
	switch r {
	case ResultProcessed:
		return DisplaySuccess
	case ResultRejected:
		return DisplayWarning
	case ResultErrored:
		return DisplayError
	default:
		return DisplayInfo
	}
}

// FieldChange is one human-readable "field -> new value" pair.
type FieldChange struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// AuditEventView is an audit event decorated with display facts.
type AuditEventView struct {
	AuditEvent
	DisplayStatus DisplayStatus `json:"displayStatus"`
	ChangeCount   int           `json:"changeCount"`
	FieldChanges  []FieldChange `json:"fieldChanges"`
	Verified      bool          `json:"verified"`
}

// AuditDayGroup holds the events of one calendar day, ascending by (Timestamp, ID).
type AuditDayGroup struct {
	Day         string                `json:"day"` // YYYY-MM-DD in the aggregation time zone
	Events      []AuditEventView      `json:"events"`
	StatusCount map[DisplayStatus]int `json:"statusCount"`
}

// AuditTimeline is one page of day groups.
type AuditTimeline struct {
	Days      []AuditDayGroup `json:"days"`
	NextToken *string         `json:"nextToken,omitempty"`
}
