package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evently/backend/internal/auth"
	"github.com/evently/backend/internal/config"
	"github.com/evently/backend/internal/db"
	"github.com/evently/backend/internal/handler"
	"github.com/evently/backend/internal/logger"
	"github.com/evently/backend/internal/metrics"
	"github.com/evently/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type store interface {
	service.UserStore
	service.EventStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New(config.LogConfig{})
		l.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.Log)
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 저장소 선택: PG* 설정이 있으면 Postgres, 없으면 메모리
	var repo store
	switch cfg.Storage {
	case config.StoragePostgres:
		dsn, err := cfg.Postgres.URL()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid postgres config")
		}
		pool, err := db.NewPostgresPool(ctx, dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect postgres")
		}
		pg := db.NewPostgres(pool)
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure schema")
		}
		repo = pg
	default:
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		repo = db.NewMemory()
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token service misconfigured")
	}
	hasher := auth.NewHasher(cfg.Auth.HashCost)
	m := metrics.New()

	router := handler.NewRouter(handler.RouterDeps{
		Auth:           service.NewAuthService(repo, hasher, tokens, log),
		Events:         service.NewEventService(repo, repo, log),
		Metrics:        m,
		Log:            log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdown(srv, cfg.Server.ShutdownTimeout, log)
}

func shutdown(srv *http.Server, timeout time.Duration, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}
