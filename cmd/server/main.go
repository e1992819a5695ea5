package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/apollo/internal/api"
	"github.com/TimurManjosov/apollo/internal/assist"
	"github.com/TimurManjosov/apollo/internal/config"
	"github.com/TimurManjosov/apollo/internal/console"
	"github.com/TimurManjosov/apollo/internal/i18n"
	"github.com/TimurManjosov/apollo/internal/logging"
	"github.com/TimurManjosov/apollo/internal/store"
	"github.com/TimurManjosov/apollo/internal/telemetry"
)

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("config")
	}
	if err := cfg.Validate(); err != nil {
		boot.Fatal().Err(err).Msg("config")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		boot.Fatal().Err(err).Msg("logger")
	}
	logger = logger.With().Str("env", cfg.AppEnv).Logger()
	if cfg.TrafficBucket && cfg.RolloutSaltGenerated() {
		logger.Warn().Msg("ROLLOUT_SALT not set; traffic buckets will change on restart")
	}

	ctx := context.Background()

	telemetry.Init()
	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.OTLPEndpoint, "apollo", cfg.AppEnv)
	if err != nil {
		logger.Fatal().Err(err).Msg("tracing")
	}

	st, err := store.NewStore(ctx, store.Options{
		Type:      cfg.StoreType,
		DSN:       cfg.StoreDSN,
		Namespace: cfg.StoreNamespace,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.StoreType).Msg("store")
	}

	lang, err := i18n.Parse(cfg.Lang)
	if err != nil {
		logger.Fatal().Err(err).Msg("lang")
	}

	gen, err := assist.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Fatal().Err(err).Msg("assist")
	}
	if cfg.GeminiAPIKey == "" {
		logger.Info().Msg("GEMINI_API_KEY not set; descriptions and suggestions use fallbacks")
	}
	assistOpts := assist.Options{Lang: lang, Timeout: cfg.AssistTimeout, Logger: logger}

	cons, err := console.Open(ctx, st, console.Options{
		Lang:             lang,
		Describer:        assist.NewDescriber(gen, assistOpts),
		Suggester:        assist.NewSuggester(gen, assistOpts),
		Logger:           logger,
		TrafficBucketing: cfg.TrafficBucket,
		TrafficSalt:      cfg.RolloutSalt,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("load toggles")
	}
	snap := cons.Snapshots().Load()
	logger.Info().Int("toggles", len(snap.Toggles)).Str("etag", snap.ETag).Str("store", cfg.StoreType).Msg("snapshot")

	srvAPI := api.NewServer(cons, api.Options{
		AdminAPIKey:    cfg.AdminAPIKey,
		RateLimitPerIP: cfg.RateLimitPerIP,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 0, // the SSE stream stays open
		IdleTimeout:  60 * time.Second,
	}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", telemetry.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 3 * time.Second,
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	serveErr := serve(ctx, logger, srv, metricsSrv)

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(shutCtx); err != nil {
		logger.Warn().Err(err).Msg("tracing shutdown")
	}
	if err := st.Close(); err != nil {
		logger.Warn().Err(err).Msg("store close")
	}
	if serveErr != nil {
		logger.Error().Err(serveErr).Msg("stopped")
		os.Exit(1)
	}
	logger.Info().Msg("stopped")
}
