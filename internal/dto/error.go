package dto

// ErrorResponse is the body of every failed request. CorrelationID is the id of the audit
// event recorded for the failed attempt, when one was written.
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID int64  `json:"correlationId,omitempty"`
}
