package approval

import "time"

type DecideRequest struct {
	Action string `json:"action" binding:"required,oneof=APPROVE REJECT"`
	Notes  string `json:"notes"`
}

type ActionResponse struct {
	Step      int       `json:"step"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type RequestResponse struct {
	ID          string           `json:"id"`
	EntityType  string           `json:"entity_type"`
	EntityID    string           `json:"entity_id"`
	Amount      string           `json:"amount"`
	Status      string           `json:"status"`
	CurrentStep int              `json:"current_step"`
	TotalSteps  int              `json:"total_steps"`
	ChainName   string           `json:"chain_name,omitempty"`
	RequestedBy string           `json:"requested_by"`
	ResolvedAt  *time.Time       `json:"resolved_at,omitempty"`
	History     []ActionResponse `json:"history,omitempty"`
}

func mapToResponse(request ApprovalRequest) RequestResponse {
	resp := RequestResponse{
		ID:          request.ID.String(),
		EntityType:  string(request.EntityType),
		EntityID:    request.EntityID.String(),
		Amount:      request.Amount.StringFixed(2),
		Status:      string(request.Status),
		CurrentStep: request.CurrentStep,
		RequestedBy: request.RequestedBy.String(),
		ResolvedAt:  request.ResolvedAt,
	}
	if request.Chain != nil {
		resp.ChainName = request.Chain.Name
		resp.TotalSteps = len(request.Chain.Steps)
	}
	for _, action := range request.History {
		resp.History = append(resp.History, ActionResponse{
			Step:      action.Step,
			ActorID:   action.ActorID.String(),
			Action:    string(action.Action),
			Notes:     action.Notes,
			Timestamp: action.CreatedAt,
		})
	}
	return resp
}

func mapToListResponse(requests []ApprovalRequest) []RequestResponse {
	resp := make([]RequestResponse, len(requests))
	for i, request := range requests {
		resp[i] = mapToResponse(request)
	}
	return resp
}
