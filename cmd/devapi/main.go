package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/layer-3/portal/adapters/store"
	"github.com/layer-3/portal/adapters/tokenizer"
	"github.com/layer-3/portal/devapi"
	"github.com/layer-3/portal/internal/config"
	"github.com/layer-3/portal/internal/logging"
	"github.com/layer-3/portal/ports"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadDevAPI()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var revocations ports.RevocationStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to parse Redis URL")
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to reach Redis")
		}
		revocations = store.NewRedisStore(redisClient)
	} else {
		revocations = store.NewMemoryStore()
	}

	directory := devapi.NewDirectory("", devapi.DefaultStudyPrograms())
	if err := directory.Seed(devapi.DemoEmail, devapi.DemoPassword, devapi.DemoSchedules()); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed demo account")
	}

	issuer := tokenizer.NewHMACIssuer([]byte(cfg.SigningKey))
	authService := devapi.NewAuthService(issuer, revocations, directory, logger, cfg.AccessTTL, cfg.RefreshTTL)
	router := devapi.SetupRouter(devapi.NewHandlers(authService, directory, logger), authService)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.ListenAddr).Str("demo_user", devapi.DemoEmail).Msg("development API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("development API stopped with error")
	}
}
