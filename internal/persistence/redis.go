package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/optinhub/optin-manager/internal/config"
)

const redisDialCheck = 3 * time.Second

// ErrRedisDisabled is returned by NewRedis when REDIS_ADDR is empty.
var ErrRedisDisabled = errors.New("redis disabled: REDIS_ADDR empty")

// Redis holds the client backing the provider flag store and the prefix its
// keys live under.
type Redis struct {
	Client    *redis.Client
	KeyPrefix string
}

// NewRedis connects to the flag store. It returns ErrRedisDisabled when no
// address is configured and a wrapped ping error when the server cannot be
// reached; in both cases the caller keeps the flags in process.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, ErrRedisDisabled
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisDialCheck)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}

	logger.Info("connected to redis",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.String("key_prefix", cfg.KeyPrefix),
	)
	return &Redis{Client: client, KeyPrefix: cfg.KeyPrefix}, nil
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity for the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrRedisDisabled
	}
	return r.Client.Ping(ctx).Err()
}
