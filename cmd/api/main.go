package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/optinhub/optin-manager/internal/api/http"
	"github.com/optinhub/optin-manager/internal/api/http/handlers"
	"github.com/optinhub/optin-manager/internal/auth"
	"github.com/optinhub/optin-manager/internal/config"
	"github.com/optinhub/optin-manager/internal/events"
	"github.com/optinhub/optin-manager/internal/observability"
	"github.com/optinhub/optin-manager/internal/persistence"
	"github.com/optinhub/optin-manager/internal/repository"
	"github.com/optinhub/optin-manager/internal/service"
	"github.com/optinhub/optin-manager/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := pg.Migrate(ctx, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	switch {
	case errors.Is(err, persistence.ErrRedisDisabled):
		logger.Warn("REDIS_ADDR empty; provider flags kept in memory")
	case err != nil:
		logger.Warn("redis unreachable; provider flags kept in memory", zap.Error(err))
	default:
		defer redis.Close()
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	stores := buildStores(pg, redis)

	authService := service.NewAuthService(cfg.Auth, stores.users, dispatcher)
	userService := service.NewUserService(stores.users, dispatcher, cfg.Auth.BcryptCost)
	campaignService := service.NewCampaignService(stores.campaigns, dispatcher)
	providerService := service.NewProviderService(stores.settings, stores.status, dispatcher)

	if cfg.Auth.BootstrapAdminEmail != "" {
		created, err := userService.EnsureAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPass)
		if err != nil {
			logger.Fatal("failed to bootstrap admin", zap.Error(err))
		}
		if created {
			logger.Info("bootstrap admin created", zap.String("email", cfg.Auth.BootstrapAdminEmail))
		}
	}

	deps := map[string]handlers.Pinger{}
	if pg.Enabled() {
		deps["postgres"] = pg
	}
	if redis != nil {
		deps["redis"] = redis
	}

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: cfg.App.Env == "production"})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Auth:           handlers.NewAuthHandler(authService),
		Session:        handlers.NewSessionHandler(),
		Phone:          handlers.NewPhoneHandler(cfg.Phone.DefaultRegion),
		Users:          handlers.NewUsersHandler(userService),
		Campaigns:      handlers.NewCampaignsHandler(campaignService),
		Providers:      handlers.NewProvidersHandler(providerService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("request metrics", zap.Any("snapshot", metrics.Snapshot()))
}

type backends struct {
	users     repository.UserRepository
	campaigns repository.CampaignRepository
	settings  repository.ProviderSettingsRepository
	status    repository.ProviderStatusStore
}

// buildStores picks Postgres and Redis backed repositories when they are
// available and the in-process store for whatever is missing.
func buildStores(pg *persistence.Postgres, redis *persistence.Redis) backends {
	var (
		out    backends
		memory *repository.MemoryStore
	)
	inProcess := func() *repository.MemoryStore {
		if memory == nil {
			memory = repository.NewMemoryStore()
		}
		return memory
	}

	if pool := pg.PoolHandle(); pool != nil {
		out.users = repository.NewUserRepository(pool)
		out.campaigns = repository.NewCampaignRepository(pool)
		out.settings = repository.NewProviderSettingsRepository(pool)
	} else {
		out.users = inProcess().Users()
		out.campaigns = inProcess().Campaigns()
		out.settings = inProcess().ProviderSettings()
	}

	if redis != nil {
		out.status = repository.NewProviderStatusStore(redis.Client, redis.KeyPrefix)
	} else {
		out.status = inProcess().ProviderStatus()
	}
	return out
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
