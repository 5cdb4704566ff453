package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/optinhub/optin-manager/internal/domain"
	apperrors "github.com/optinhub/optin-manager/pkg/util/errorutil"
)

// MemoryStore implements the repositories in process. It backs local runs
// without POSTGRES_DSN and the handler tests. Missing rows report pgx.ErrNoRows
// and duplicate keys report the Postgres unique violation, so callers behave
// the same as against Postgres.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	campaigns map[string]domain.Campaign
	settings  map[domain.Provider]domain.ProviderSettings
	status    map[domain.Provider]domain.ProviderStatus
	now       func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]domain.User),
		campaigns: make(map[string]domain.Campaign),
		settings:  make(map[domain.Provider]domain.ProviderSettings),
		status:    make(map[domain.Provider]domain.ProviderStatus),
		now:       time.Now,
	}
}

// Users returns the store as a UserRepository.
func (m *MemoryStore) Users() UserRepository { return memoryUsers{m} }

// Campaigns returns the store as a CampaignRepository.
func (m *MemoryStore) Campaigns() CampaignRepository { return memoryCampaigns{m} }

// ProviderSettings returns the store as a ProviderSettingsRepository.
func (m *MemoryStore) ProviderSettings() ProviderSettingsRepository { return memorySettings{m} }

// ProviderStatus returns the store as a ProviderStatusStore.
func (m *MemoryStore) ProviderStatus() ProviderStatusStore { return memoryStatus{m} }

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperrors.UniqueViolation("users_email_key")
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.m.now()
	user.UpdatedAt = user.CreatedAt
	r.m.users[user.ID] = *user
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	user, ok := r.m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, user := range r.m.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memoryUsers) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	r.m.mu.RLock()
	result := make([]domain.User, 0, len(r.m.users))
	for _, user := range r.m.users {
		result = append(result, user)
	}
	r.m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return page(result, limit, offset), nil
}

func (r memoryUsers) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.m.users, id)
	return nil
}

type memoryCampaigns struct{ m *MemoryStore }

func (r memoryCampaigns) Create(_ context.Context, campaign *domain.Campaign) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.campaigns {
		if existing.Keyword == campaign.Keyword {
			return apperrors.UniqueViolation("campaigns_keyword_key")
		}
	}
	campaign.ID = uuid.NewString()
	campaign.CreatedAt = r.m.now()
	campaign.UpdatedAt = campaign.CreatedAt
	r.m.campaigns[campaign.ID] = *campaign
	return nil
}

func (r memoryCampaigns) List(_ context.Context, limit, offset int) ([]domain.Campaign, error) {
	r.m.mu.RLock()
	result := make([]domain.Campaign, 0, len(r.m.campaigns))
	for _, c := range r.m.campaigns {
		result = append(result, c)
	}
	r.m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return page(result, limit, offset), nil
}

type memorySettings struct{ m *MemoryStore }

func (r memorySettings) Upsert(_ context.Context, settings *domain.ProviderSettings) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	settings.UpdatedAt = r.m.now()
	values := make(map[string]string, len(settings.Values))
	for k, v := range settings.Values {
		values[k] = v
	}
	stored := *settings
	stored.Values = values
	r.m.settings[settings.Provider] = stored
	return nil
}

type memoryStatus struct{ m *MemoryStore }

func (s memoryStatus) Get(_ context.Context, provider domain.Provider) (domain.ProviderStatus, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	status := s.m.status[provider]
	status.Provider = provider
	return status, nil
}

func (s memoryStatus) SetConfigured(_ context.Context, provider domain.Provider) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.status[provider] = domain.ProviderStatus{Provider: provider, Configured: true}
	return nil
}

func (s memoryStatus) SetTested(_ context.Context, provider domain.Provider) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	status := s.m.status[provider]
	status.Provider = provider
	status.Tested = true
	s.m.status[provider] = status
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
