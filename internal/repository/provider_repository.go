package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/optinhub/optin-manager/internal/domain"
)

// ProviderSettingsRepository stores provider credentials and branding values.
type ProviderSettingsRepository interface {
	Upsert(ctx context.Context, settings *domain.ProviderSettings) error
}

type providerSettingsRepository struct {
	pool *pgxpool.Pool
}

// NewProviderSettingsRepository returns a Postgres-backed implementation.
func NewProviderSettingsRepository(pool *pgxpool.Pool) ProviderSettingsRepository {
	return &providerSettingsRepository{pool: pool}
}

func (r *providerSettingsRepository) Upsert(ctx context.Context, settings *domain.ProviderSettings) error {
	const query = `
        INSERT INTO provider_settings (provider, settings, updated_by, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (provider) DO UPDATE
        SET settings=EXCLUDED.settings, updated_by=EXCLUDED.updated_by, updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		settings.Provider,
		settings.Values,
		settings.UpdatedBy,
	).Scan(&settings.UpdatedAt)
}

// ProviderStatusStore keeps the configured/tested flags for each provider.
type ProviderStatusStore interface {
	Get(ctx context.Context, provider domain.Provider) (domain.ProviderStatus, error)
	SetConfigured(ctx context.Context, provider domain.Provider) error
	SetTested(ctx context.Context, provider domain.Provider) error
}

const (
	flagConfigured = "configured"
	flagTested     = "tested"
)

type redisProviderStatusStore struct {
	client *redis.Client
	prefix string
}

// NewProviderStatusStore returns a Redis-backed flag store. Each provider is one hash.
func NewProviderStatusStore(client *redis.Client, prefix string) ProviderStatusStore {
	return &redisProviderStatusStore{client: client, prefix: prefix}
}

func (s *redisProviderStatusStore) key(provider domain.Provider) string {
	return fmt.Sprintf("%s:provider:%s", s.prefix, provider)
}

func (s *redisProviderStatusStore) Get(ctx context.Context, provider domain.Provider) (domain.ProviderStatus, error) {
	status := domain.ProviderStatus{Provider: provider}
	values, err := s.client.HGetAll(ctx, s.key(provider)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return status, err
	}
	status.Configured = values[flagConfigured] == "1"
	status.Tested = values[flagTested] == "1"
	return status, nil
}

// SetConfigured marks the provider configured and clears any earlier test result.
func (s *redisProviderStatusStore) SetConfigured(ctx context.Context, provider domain.Provider) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key(provider), flagConfigured, "1")
		pipe.HDel(ctx, s.key(provider), flagTested)
		return nil
	})
	return err
}

func (s *redisProviderStatusStore) SetTested(ctx context.Context, provider domain.Provider) error {
	return s.client.HSet(ctx, s.key(provider), flagTested, "1").Err()
}
