package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booklease/database"
	"booklease/internal/cache"
	"booklease/internal/config"
	"booklease/internal/events"
	"booklease/internal/logger"
	"booklease/internal/microservices/http-api/handler"
	"booklease/internal/microservices/http-api/middleware"
	"booklease/internal/microservices/http-api/repository"
	"booklease/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	slog.SetDefault(appLogger)

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("api_server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to the database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db, logger); err != nil {
		return err
	}

	// 3. Optional collaborators degrade to no-ops
	appCache := connectCache(ctx, cfg, logger)
	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	// 4. Services
	repos := repository.NewRepositoryFactory(db)
	txm := repository.NewTransactionManager(db)

	authService := service.NewAuthService(repos.Users(), cfg)
	reviewService := service.NewReviewService(txm, repos, appCache, logger)
	bookService := service.NewBookService(repos, reviewService, appCache, cfg.CacheTTL, logger)
	rentalService := service.NewRentalService(service.RentalServiceDeps{
		TxManager: txm,
		Repos:     repos,
		Publisher: publisher,
		Cache:     appCache,
		Policy: service.RentalPolicy{
			MaxExtensions: cfg.RentalMaxExtensions,
			MaxTotalDays:  cfg.RentalMaxTotalDays,
		},
		Logger: logger,
	})

	// 5. Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterDeps{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Auth:        authService,
		Rentals:     rentalService,
		Books:       bookService,
		Reviews:     reviewService,
		Limiter:     middleware.NewUserRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Ping:        func(ctx context.Context) error { return database.Ping(ctx, db) },
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api_server_listening", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("api_server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func connectCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) cache.Cache {
	if !cfg.CacheEnabled {
		return cache.NopCache{}
	}
	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("redis_unavailable_cache_disabled", "error", err)
		return cache.NopCache{}
	}
	logger.Info("redis_connected")
	return cache.NewRedisCache(client)
}

func newPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if !cfg.EventsEnabled {
		return events.NopPublisher{}
	}
	return events.NewRabbitPublisher(cfg.RabbitMQURL, logger)
}

