package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-portal/internal/api/http"
	"github.com/spec-kit/helpdesk-portal/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/cache"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/feed"
	"github.com/spec-kit/helpdesk-portal/internal/notify"
	"github.com/spec-kit/helpdesk-portal/internal/observability"
	"github.com/spec-kit/helpdesk-portal/internal/persistence"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
	"github.com/spec-kit/helpdesk-portal/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	locationRepo := repository.NewLocationRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	notifier := notify.NewChangeNotifier()
	relay := notify.NewRelayClient(cfg.Notify, logger)

	ticketCache := cache.New(cache.Dependencies{
		TicketRepo:   ticketRepo,
		LocationRepo: locationRepo,
		CategoryRepo: categoryRepo,
		UserRepo:     userRepo,
		Notifier:     notifier,
		Relay:        relay,
		Logger:       logger,
	})

	if err := ticketCache.Load(ctx); err != nil {
		// The cache degrades to an empty list on load failure; serve anyway
		// and let a dashboard refresh retry.
		logger.Error("initial cache load failed", zap.Error(err))
	}

	sync := feed.NewExternalSync(redis.Client, cfg.Redis.ChangeChannel, ticketCache, logger)
	sync.Start(ctx)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketCache),
		Stats:          handlers.NewStatsHandler(ticketCache),
		Export:         handlers.NewExportHandler(ticketCache),
		Auth:           handlers.NewAuthHandler(userRepo, tokens),
		AuthMiddleware: authMiddleware,
	})

	if cfg.Refresh.Enabled {
		stopRefresh, err := worker.StartRefreshWorker(cfg.Refresh, ticketCache, logger)
		if err != nil {
			logger.Fatal("failed to start refresh worker", zap.Error(err))
		}
		defer stopRefresh()
	}

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
