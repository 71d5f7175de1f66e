package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	database "github.com/sebuszqo/FinanceTracker/db"
	"github.com/sebuszqo/FinanceTracker/internal/auth"
	"github.com/sebuszqo/FinanceTracker/internal/config"
	"github.com/sebuszqo/FinanceTracker/internal/finance/application"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	"github.com/sebuszqo/FinanceTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceTracker/internal/finance/interfaces"
	"github.com/sebuszqo/FinanceTracker/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Missing configuration, update to start server")
	}

	ctx := context.Background()

	var (
		repo      domain.MonthlyRepository
		health    HealthChecker
		dbService *database.DBService
	)
	switch cfg.DataBackend {
	case config.BackendMemory:
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		repo = infrastructure.NewMemoryMonthlyRepository()
	default:
		if err := database.RunMigrations(cfg.DBConnectionString); err != nil {
			log.Fatal().Err(err).Msg("Could not run migrations")
		}

		var err error
		dbService, err = database.NewDBService(ctx, cfg.DBConnectionString, database.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not initialize database")
		}
		repo = infrastructure.NewPostgresMonthlyRepository(dbService.DB, log)
		health = dbService
	}

	// Interfaces stay nil unless the backing service is configured.
	var (
		cache      application.MonthCache
		events     application.MonthEventPublisher
		redisCache *infrastructure.RedisMonthCache
		amqpEvents *infrastructure.AMQPEventPublisher
	)
	if cfg.RedisURL != "" {
		var err error
		redisCache, err = infrastructure.NewRedisMonthCache(ctx, cfg.RedisURL, cfg.CacheTTL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not connect to Redis")
		}
		cache = redisCache
	}
	if cfg.AMQPURL != "" {
		var err error
		amqpEvents, err = infrastructure.NewAMQPEventPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not connect to the message broker")
		}
		events = amqpEvents
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create JWT manager")
	}
	principals := auth.NewPrincipalResolver(jwtManager)

	uploadService := application.NewMonthlyUploadService(repo, cache, events, log)
	queryService := application.NewMonthlyQueryService(repo, cache, events, log)
	monthlyHandler := interfaces.NewMonthlyHandler(
		uploadService,
		queryService,
		cfg.MaxUploadBytes,
		interfaces.RespondJSON,
		interfaces.RespondError,
	)

	server := NewServer(monthlyHandler, principals.JWTAccessTokenMiddleware(), health, log)
	server.RegisterRoutes()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.DataBackend).Msg("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	closeResources(log, amqpEvents, redisCache, dbService)
	log.Info().Msg("Server exited")
}

func closeResources(log zerolog.Logger, amqpEvents *infrastructure.AMQPEventPublisher, redisCache *infrastructure.RedisMonthCache, dbService *database.DBService) {
	if amqpEvents != nil {
		if err := amqpEvents.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing AMQP connection")
		}
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Redis client")
		}
	}
	if dbService != nil {
		if err := dbService.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}
}
