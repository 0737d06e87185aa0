package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/layer-3/portal/adapters/api"
	"github.com/layer-3/portal/adapters/events"
	"github.com/layer-3/portal/adapters/store"
	"github.com/layer-3/portal/adapters/tokenizer"
	"github.com/layer-3/portal/internal/config"
	"github.com/layer-3/portal/internal/logging"
	"github.com/layer-3/portal/ports"
	"github.com/layer-3/portal/service"
	transport "github.com/layer-3/portal/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadPortal()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher, closeEvents, err := setupEvents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up session events")
	}
	defer closeEvents()

	codec := tokenizer.NewCodec()
	client := api.NewClient(api.ClientOpts{
		BaseURL:      cfg.APIBaseURL,
		Timeout:      cfg.RequestTimeout,
		SingleFlight: cfg.SingleFlightRefresh,
		Logger:       logger.With().Str("component", "api").Logger(),
		Events:       publisher,
	})

	guard := service.NewGuard(codec, publisher, logger.With().Str("component", "guard").Logger(), cfg.LoginPath, cfg.LandingPath)
	portal := service.NewPortalService(client, codec, publisher, logger, cfg.LoginPath, cfg.LandingPath)

	router := transport.SetupRouter(transport.RouterDeps{
		Portal: portal,
		Guard:  guard,
		Cookies: store.CookieOptions{
			Path:          "/",
			Domain:        cfg.CookieDomain,
			Secure:        cfg.CookieSecure,
			AccessMaxAge:  cfg.AccessMaxAge(),
			RefreshMaxAge: cfg.RefreshMaxAge(),
		},
		Logger: logger,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.ListenAddr).Str("api", cfg.APIBaseURL).Msg("portal listening")
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
		logger.Fatal().Err(err).Msg("portal stopped with error")
	}
}

// setupEvents returns a redis stream publisher when REDIS_URL is set
func setupEvents(ctx context.Context, cfg *config.Portal, logger zerolog.Logger) (ports.EventPublisher, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info().Msg("REDIS_URL not set, session events disabled")
		return nil, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, err
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		logging.NewWatermillAdapter(logger),
	)
	if err != nil {
		_ = redisClient.Close()
		return nil, nil, err
	}

	closeFn := func() {
		_ = publisher.Close()
		_ = redisClient.Close()
	}

	return events.NewWatermillPublisher(publisher, cfg.EventsTopic), closeFn, nil
}
