package service

import (
	"context"
	"strings"

	"github.com/optinhub/optin-manager/internal/domain"
	"github.com/optinhub/optin-manager/internal/events"
	"github.com/optinhub/optin-manager/internal/repository"
	apperrors "github.com/optinhub/optin-manager/pkg/util/errorutil"
)

// CampaignCreateInput describes campaign creation payload.
type CampaignCreateInput struct {
	Name        string
	Keyword     string
	Description string
}

// CampaignService coordinates campaign management.
type CampaignService struct {
	campaigns  repository.CampaignRepository
	dispatcher events.Dispatcher
}

// NewCampaignService constructs the service.
func NewCampaignService(campaigns repository.CampaignRepository, dispatcher events.Dispatcher) *CampaignService {
	return &CampaignService{campaigns: campaigns, dispatcher: dispatcher}
}

// Create stores a draft campaign. Keywords are matched case-insensitively by
// subscribers, so they are stored upper-cased.
func (s *CampaignService) Create(ctx context.Context, actor Actor, input CampaignCreateInput) (*domain.Campaign, error) {
	name := strings.TrimSpace(input.Name)
	keyword := strings.ToUpper(strings.TrimSpace(input.Keyword))
	if name == "" || keyword == "" {
		return nil, apperrors.NewValidationError("name and keyword required", nil)
	}
	if strings.ContainsAny(keyword, " \t") {
		return nil, apperrors.NewValidationError("keyword must be a single word", map[string]any{"keyword": keyword})
	}

	campaign := &domain.Campaign{
		Name:        name,
		Keyword:     keyword,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.CampaignStatusDraft,
		CreatedBy:   actor.UserID,
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("keyword already in use", map[string]any{"keyword": keyword})
		}
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventCampaignCreated,
		Subject: campaign.ID,
		Actor:   actor,
		Payload: events.CampaignCreatedPayload{Name: campaign.Name, Keyword: campaign.Keyword},
	})
	return campaign, nil
}

// List returns a page of campaigns.
func (s *CampaignService) List(ctx context.Context, limit, offset int) ([]domain.Campaign, error) {
	limit, offset = pageBounds(limit, offset)
	return s.campaigns.List(ctx, limit, offset)
}
