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

	"github.com/clinicore/appointment-system/internal/api"
	"github.com/clinicore/appointment-system/internal/auth"
	"github.com/clinicore/appointment-system/internal/booking"
	"github.com/clinicore/appointment-system/internal/config"
	"github.com/clinicore/appointment-system/internal/db"
	"github.com/clinicore/appointment-system/internal/directory"
	redisclient "github.com/clinicore/appointment-system/internal/redis"
)

const version = "0.1.0"

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api-server").Logger()
	logger.Info().Msg("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}

	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("configuration loaded")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	schemaCtx, cancelSchema := context.WithTimeout(rootCtx, 30*time.Second)
	err = db.EnsureSchema(schemaCtx, pgPool)
	cancelSchema()
	if err != nil {
		logger.Fatal().Err(err).Msg("schema bootstrap error")
	}

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(redisclient.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	bookingSvc := booking.NewService(
		booking.NewPgRepository(pgPool),
		booking.NewValidator(nil),
		logger.With().Str("component", "booking").Logger(),
	)
	authSvc := auth.NewService(
		auth.NewPgRepository(pgPool),
		tokens,
		logger.With().Str("component", "auth").Logger(),
	)
	directorySvc := directory.NewService(
		directory.NewPgRepository(pgPool),
		redisclient.NewCache(rdb, cfg.DirectoryTTL),
		logger.With().Str("component", "directory").Logger(),
	)

	router := api.NewRouter(api.RouterConfig{
		Booking:   bookingSvc,
		Auth:      authSvc,
		Directory: directorySvc,
		Tokens:    tokens,
		PgPool:    pgPool,
		Redis:     rdb,
		Logger:    logger,
		Env:       cfg.Env,
		Version:   version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
