package domain

import "encoding/json"

// BatchItem is one sub-command of a batch, identified by a caller-supplied request id.
type BatchItem struct {
	RequestID string          `json:"requestId"`
	Operation string          `json:"operation"`
	Payload   json.RawMessage `json:"payload"`
}

// BatchItemResult reports the outcome of one sub-command.
type BatchItemResult struct {
	RequestID  string `json:"requestId"`
	StatusCode int    `json:"statusCode"`
	Body       any    `json:"body,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchResult holds per-item results in input order. RolledBack is set when an
// enclosing-transaction batch was aborted and none of its effects persisted.
type BatchResult struct {
	Items      []BatchItemResult `json:"items"`
	RolledBack bool              `json:"rolledBack"`
}
