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
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/observability"
	"github.com/spec-kit/helpdesk-portal/internal/persistence"
	"github.com/spec-kit/helpdesk-portal/internal/relay"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
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

	if cfg.Notify.TelegramBotToken == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	userRepo := repository.NewTelegramUserRepository(pg.PoolHandle())

	sender, err := relay.NewBotSender(cfg.Notify.TelegramBotToken)
	if err != nil {
		logger.Fatal("failed to connect telegram", zap.Error(err))
	}

	service := relay.NewService(cfg.Notify, userRepo, sender, logger)

	registrar := relay.NewRegistrar(sender.API(), userRepo, logger)
	go registrar.Run(ctx)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name + "-notifier",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	service.RegisterRoutes(app)

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
