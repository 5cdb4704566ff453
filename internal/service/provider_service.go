package service

import (
	"context"
	"sort"
	"strings"

	"github.com/optinhub/optin-manager/internal/domain"
	"github.com/optinhub/optin-manager/internal/events"
	"github.com/optinhub/optin-manager/internal/repository"
	apperrors "github.com/optinhub/optin-manager/pkg/util/errorutil"
)

// ProviderService manages email/SMS provider credentials and branding settings.
type ProviderService struct {
	settings   repository.ProviderSettingsRepository
	status     repository.ProviderStatusStore
	dispatcher events.Dispatcher
}

// NewProviderService constructs the service.
func NewProviderService(settings repository.ProviderSettingsRepository, status repository.ProviderStatusStore, dispatcher events.Dispatcher) *ProviderService {
	return &ProviderService{settings: settings, status: status, dispatcher: dispatcher}
}

// Status returns the configured/tested flags for provider.
func (s *ProviderService) Status(ctx context.Context, provider domain.Provider) (domain.ProviderStatus, error) {
	if !domain.KnownProvider(provider) {
		return domain.ProviderStatus{}, apperrors.NewNotFound("provider", map[string]any{"provider": provider})
	}
	return s.status.Get(ctx, provider)
}

// SaveCredentials stores values for provider and marks it configured.
// Saving new values invalidates an earlier successful test.
func (s *ProviderService) SaveCredentials(ctx context.Context, actor Actor, provider domain.Provider, values map[string]string) (domain.ProviderStatus, error) {
	if !domain.KnownProvider(provider) {
		return domain.ProviderStatus{}, apperrors.NewNotFound("provider", map[string]any{"provider": provider})
	}

	cleaned := make(map[string]string, len(values))
	for k, v := range values {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		cleaned[k] = strings.TrimSpace(v)
	}
	if len(cleaned) == 0 {
		return domain.ProviderStatus{}, apperrors.NewValidationError("at least one setting required", nil)
	}

	settings := &domain.ProviderSettings{Provider: provider, Values: cleaned, UpdatedBy: actor.UserID}
	if err := s.settings.Upsert(ctx, settings); err != nil {
		return domain.ProviderStatus{}, err
	}
	if err := s.status.SetConfigured(ctx, provider); err != nil {
		return domain.ProviderStatus{}, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventProviderConfigured,
		Subject: string(provider),
		Actor:   actor,
		Payload: events.ProviderPayload{Provider: provider, Fields: fieldNames(cleaned)},
	})
	return s.status.Get(ctx, provider)
}

// MarkTested records a successful connection test. The provider must be configured first.
func (s *ProviderService) MarkTested(ctx context.Context, actor Actor, provider domain.Provider) (domain.ProviderStatus, error) {
	current, err := s.Status(ctx, provider)
	if err != nil {
		return domain.ProviderStatus{}, err
	}
	if !current.Configured {
		return current, apperrors.NewConflict("provider not configured", map[string]any{"provider": provider})
	}
	if err := s.status.SetTested(ctx, provider); err != nil {
		return domain.ProviderStatus{}, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventProviderTested,
		Subject: string(provider),
		Actor:   actor,
		Payload: events.ProviderPayload{Provider: provider},
	})
	current.Tested = true
	return current, nil
}

func fieldNames(values map[string]string) []string {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
