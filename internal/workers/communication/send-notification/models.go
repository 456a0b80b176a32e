// internal/workers/communication/send-notification/models.go
package sendnotification

type Input struct {
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"`
	NotificationType string                 `json:"notificationType"`
	DealID           string                 `json:"dealId,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	SentAt         string `json:"sentAt"`
}

// Notification types
const (
	TypeDealReceived  = "deal_received"
	TypeDealAccepted  = "deal_accepted"
	TypeDealDeclined  = "deal_declined"
	TypeDealCountered = "deal_countered"
	TypeDealCompleted = "deal_completed"
	TypeDealCancelled = "deal_cancelled"
)

// Notification statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Recipient types
const (
	RecipientAthlete  = "athlete"
	RecipientBrand    = "brand"
	RecipientDirector = "director"
)
