package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/regifting/internal/auth"
	"github.com/freeeve/regifting/internal/bot"
	"github.com/freeeve/regifting/internal/config"
	"github.com/freeeve/regifting/internal/handler"
	"github.com/freeeve/regifting/internal/logger"
	"github.com/freeeve/regifting/internal/repository"
	redisrepo "github.com/freeeve/regifting/internal/repository/redis"
	"github.com/freeeve/regifting/internal/repository/sqlstore"
	"github.com/freeeve/regifting/internal/service"
)

func main() {
	_ = godotenv.Load()
	logger.Init(logger.Options{Caller: true})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().
		Str("port", cfg.Port).
		Str("archive", cfg.DatabaseDialect).
		Bool("cache", cfg.CacheEnabled()).
		Msg("Config loaded")

	ctx := context.Background()

	// Result archive (optional)
	var archive repository.ResultArchive
	if cfg.ArchiveEnabled() {
		store, err := sqlstore.Open(ctx, cfg.DatabaseDialect, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Result archive unavailable")
		}
		defer store.Close()
		archive = sqlstore.NewArchiveRepo(store)
	}

	// Leaderboard cache (optional)
	var board repository.Leaderboard
	if cfg.CacheEnabled() {
		redisClient, err := redisrepo.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		board = redisClient
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	hub := handler.NewHub()
	limits := bot.Limits{MaxPool: cfg.MaxPool, MaxGames: cfg.MaxGames, MaxEntrants: cfg.MaxEntrants}
	svc := service.NewTournamentService(archive, board, hub, service.Defaults{
		Pool:   cfg.Pool,
		Games:  cfg.Games,
		Seed:   cfg.Seed,
		Limits: limits,
	}, cfg.MaxRunning)

	root := handler.NewRouter(handler.RouterConfig{
		Service:  svc,
		Hub:      hub,
		JWT:      jwtMgr,
		DevLogin: cfg.DevLogin,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	svc.Close()
	log.Info().Msg("Server stopped")
}
