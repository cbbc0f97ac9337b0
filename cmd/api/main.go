package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/HowsAir/server-sub001/internal/api/http"
	"github.com/HowsAir/server-sub001/internal/api/http/handlers"
	"github.com/HowsAir/server-sub001/internal/auth"
	"github.com/HowsAir/server-sub001/internal/config"
	"github.com/HowsAir/server-sub001/internal/events"
	"github.com/HowsAir/server-sub001/internal/observability"
	"github.com/HowsAir/server-sub001/internal/persistence"
	"github.com/HowsAir/server-sub001/internal/repository"
	"github.com/HowsAir/server-sub001/internal/service"
	"github.com/HowsAir/server-sub001/internal/worker"
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
	userRepo := repository.NewUserRepository(pool)
	stationRepo := repository.NewStationRepository(pool)
	codeRepo := repository.NewResetCodeRepository(redis.Client,
		time.Duration(cfg.Auth.ResetCodeTTLMinutes)*time.Minute)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:      userRepo,
		ResetCodeRepo: codeRepo,
		Dispatcher:    dispatcher,
	})
	stationService := service.NewStationService(stationRepo)

	cookies := auth.NewCookieWriter(authService.Codec(), cfg.App.IsProduction())
	verify := auth.NewMiddleware(authService.Codec(), cookies)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:     handlers.NewAuthHandler(authService, cookies),
		Users:    handlers.NewUsersHandler(userRepo),
		Stations: handlers.NewStationsHandler(stationService),
		Verify:   verify,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
