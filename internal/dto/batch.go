package dto

import "github.com/SscSPs/fincontrol/internal/core/domain"

// BatchRequest is an ordered list of sub-commands.
type BatchRequest struct {
	Requests []domain.BatchItem `json:"requests" binding:"required,min=1,dive"`
}

// BatchResponse mirrors the request order; RolledBack is the global failure indicator.
type BatchResponse struct {
	Responses  []domain.BatchItemResult `json:"responses"`
	RolledBack bool                     `json:"rolledBack"`
}

// ToBatchResponse converts a domain.BatchResult.
func ToBatchResponse(r *domain.BatchResult) BatchResponse {
	return BatchResponse{Responses: r.Items, RolledBack: r.RolledBack}
}
