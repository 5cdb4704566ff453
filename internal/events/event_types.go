package events

import (
	"time"

	"github.com/optinhub/optin-manager/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOperatorLoggedIn   EventType = "operator_logged_in"
	EventUserCreated        EventType = "user_created"
	EventUserDeleted        EventType = "user_deleted"
	EventCampaignCreated    EventType = "campaign_created"
	EventProviderConfigured EventType = "provider_configured"
	EventProviderTested     EventType = "provider_tested"
)

// Actor identifies the console user behind an event.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserPayload describes a created or deleted user.
type UserPayload struct {
	Email string      `json:"email,omitempty"`
	Role  domain.Role `json:"role,omitempty"`
}

// CampaignCreatedPayload payload.
type CampaignCreatedPayload struct {
	Name    string `json:"name"`
	Keyword string `json:"keyword"`
}

// ProviderPayload describes a provider configuration change.
type ProviderPayload struct {
	Provider domain.Provider `json:"provider"`
	Fields   []string        `json:"fields,omitempty"`
}
