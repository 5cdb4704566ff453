package domain

import "time"

// CampaignStatus represents lifecycle states for an opt-in campaign.
type CampaignStatus string

const (
	CampaignStatusDraft  CampaignStatus = "DRAFT"
	CampaignStatusActive CampaignStatus = "ACTIVE"
	CampaignStatusPaused CampaignStatus = "PAUSED"
)

// Campaign groups opt-in subscribers under a keyword.
type Campaign struct {
	ID          string
	Name        string
	Keyword     string
	Description string
	Status      CampaignStatus
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
