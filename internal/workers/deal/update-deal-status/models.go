// internal/workers/deal/update-deal-status/models.go
package updatedealstatus

type Input struct {
	DealID    string `json:"dealId"`
	NewStatus string `json:"newStatus"`
	ActorID   string `json:"actorId,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type Output struct {
	DealID         string `json:"dealId"`
	PreviousStatus string `json:"previousStatus"`
	Status         string `json:"status"`
	UpdatedAt      string `json:"updatedAt"`
}
