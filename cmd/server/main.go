package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aeroway/aeroway-api/internal/auth"
	"github.com/aeroway/aeroway-api/internal/config"
	"github.com/aeroway/aeroway-api/internal/database"
	"github.com/aeroway/aeroway-api/internal/handler"
	"github.com/aeroway/aeroway-api/internal/httputil"
	"github.com/aeroway/aeroway-api/internal/jobs"
	"github.com/aeroway/aeroway-api/internal/middleware"
	"github.com/aeroway/aeroway-api/internal/redis"
	"github.com/aeroway/aeroway-api/internal/repository"
	"github.com/aeroway/aeroway-api/internal/service"
	"github.com/aeroway/aeroway-api/internal/sse"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	isProduction := cfg.IsProduction()
	setupLogger(cfg.LogLevel, isProduction)

	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	httputil.SetDebug(cfg.Debug)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	q := database.NewQuerier(db.DB)
	userRepo := repository.NewUserRepository(q)
	flightRepo := repository.NewFlightRepository(q)
	sessionRepo := repository.NewTrackingSessionRepository(q)
	messageRepo := repository.NewChatMessageRepository(q)
	placeRepo := repository.NewPlaceRepository(q)

	broker := sse.NewBroker(redisClient)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL())

	authService := service.NewAuthService(userRepo, flightRepo, tokens)
	flightService := service.NewFlightService(flightRepo, userRepo)
	chatbotService := service.NewChatbotService(messageRepo)
	directoryService := service.NewDirectoryService(placeRepo)
	trackingService := service.NewTrackingService(db, userRepo, flightRepo, sessionRepo, broker)

	router := handler.NewRouter(handler.RouterOptions{
		Auth:           authService,
		Flights:        flightService,
		Chatbot:        chatbotService,
		Directory:      directoryService,
		Tracking:       trackingService,
		Tokens:         tokens,
		Broker:         broker,
		TrackLimiter:   middleware.NewRedisRateLimiter(redisClient.Client, middleware.NewRateLimiter()),
		TrackRateLimit: cfg.TrackRateLimitPerMin,
		CORSOrigins:    cfg.CORSOrigins,
		IsProduction:   isProduction,
		HealthChecks: map[string]handler.HealthCheck{
			"database": db.Ping,
			"redis":    redisClient.CheckHealth,
		},
		Metrics: promhttp.Handler(),
	})

	sweepJob := jobs.NewSweepJob(sessionRepo, messageRepo, cfg.ExpirySweepInterval, cfg.ChatRetention())
	sweepJob.Start()
	defer sweepJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Environment).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	// Close live streams first so Shutdown does not wait on them.
	broker.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setupLogger(level string, isProduction bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !isProduction {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
