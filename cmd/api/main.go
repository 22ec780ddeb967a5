package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mBrond/chat-medicamentos/internal/api/handlers"
	"github.com/mBrond/chat-medicamentos/internal/api/middleware"
	"github.com/mBrond/chat-medicamentos/internal/api/routes"
	"github.com/mBrond/chat-medicamentos/internal/app"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
	"github.com/mBrond/chat-medicamentos/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Logging.Environment, cfg.Logging.Level)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	application, err := app.New(cfg, metrics, app.Options{})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// Warm the snapshot and the index before serving; a broken source is
	// reported by /health/ready rather than aborting startup.
	if ds, err := application.Resolution.Load(ctx); err != nil {
		logger.Error().Err(err).Str("uri", cfg.Dataset.URI).Msg("Initial dataset load failed")
	} else {
		logger.Info().Int("records", ds.Len()).Str("version", ds.Version).Msg("Dataset loaded")
		if application.Index != nil {
			if err := application.Index.Index(ctx, ds); err != nil {
				logger.Warn().Err(err).Msg("Failed to index medications")
			}
		}
	}

	stopReload, err := application.StartReload(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start dataset reload")
	}
	defer stopReload()

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(application.Chat, application.CodeBounds())
	suggestionHandler := handlers.NewSuggestionHandler(application.Suggestions, cfg.Matching.SuggestLimit)
	healthHandler := handlers.NewHealthHandler(application.Resolution)

	var cacheMiddleware *middleware.CacheMiddleware
	if application.Cache != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(application.Cache, cfg.Cache.SuggestTTL, application.Version, metrics)
		logger.Info().Msg("Cache middleware initialized")
	}

	router := routes.NewRouter(
		chatHandler,
		suggestionHandler,
		healthHandler,
		cacheMiddleware,
		metrics,
		cfg.Server.AllowedOrigins,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Server shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during server shutdown")
	}

	logger.Info().Msg("Server stopped")
}
