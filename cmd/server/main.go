package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/propdesk/backend/internal/cache"
	"github.com/propdesk/backend/internal/config"
	"github.com/propdesk/backend/internal/db"
	"github.com/propdesk/backend/internal/derive"
	httpapi "github.com/propdesk/backend/internal/http"
	"github.com/propdesk/backend/internal/http/handlers"
	"github.com/propdesk/backend/internal/recordings"
	"github.com/propdesk/backend/internal/source"
)

// @title PropDesk Back Office API
// @version 1.0
// @description Tickets, vendors, property units and calls for the property management dashboard.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "propdesk-backend").Logger()

	ctx := context.Background()
	var src source.Source
	switch cfg.DataSource {
	case config.SourcePostgres:
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer store.Close()
		src = store
	case config.SourceREST:
		src = source.RESTSource{
			BaseURL: cfg.RESTURL,
			APIKey:  cfg.RESTAPIKey,
			Client:  &http.Client{Timeout: cfg.RequestTimeout},
		}
	default:
		src = source.NewDemoSource(time.Now().UTC())
		logger.Info().Msg("using demo data set")
	}
	logger.Info().Str("source", cfg.DataSource).Msg("record source selected")

	if cfg.RedisAddr != "" {
		client := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, cache will fall through")
		}
		src = cache.New(src, client, cfg.CacheTTL, logger)
	}

	var signer handlers.RecordingSigner
	presigner, err := recordings.New(recordings.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
		TTL:       cfg.RecordingTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure recordings")
	}
	if presigner != nil {
		signer = presigner
	} else {
		logger.Info().Msg("recording links disabled")
	}

	synthetic := derive.NewSyntheticMetrics(cfg.SyntheticSeed)
	router := httpapi.Router(cfg, src, signer, synthetic, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
