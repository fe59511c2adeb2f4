package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/wastenutrient/internal/adapters/cache"
	"github.com/zatekoja/wastenutrient/internal/adapters/ingest"
	"github.com/zatekoja/wastenutrient/internal/adapters/plants"
	"github.com/zatekoja/wastenutrient/internal/api/handlers"
	"github.com/zatekoja/wastenutrient/internal/api/routes"
	"github.com/zatekoja/wastenutrient/internal/application/services"
	"github.com/zatekoja/wastenutrient/internal/domain/providers"
	"github.com/zatekoja/wastenutrient/internal/infrastructure/clients/redis"
	"github.com/zatekoja/wastenutrient/internal/infrastructure/observability"
	"github.com/zatekoja/wastenutrient/pkg/config"
	"github.com/zatekoja/wastenutrient/pkg/retry"
)

// memoryCacheEntries bounds the in-process prediction cache used without Redis.
const memoryCacheEntries = 4096

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	catalog, err := plants.LoadCatalog(cfg.Plants.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Plants.CatalogPath).Msg("Failed to load plant catalog")
	}
	log.Info().Int("plants", len(catalog.List())).Msg("Plant catalog loaded")

	// Prediction cache: Redis when configured and reachable, otherwise in-process
	var cacheProvider providers.CacheProvider
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis, retry.DefaultConfig())
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory prediction cache")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient.Client(), "wastenutrient:")
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis prediction cache enabled")
		}
	}
	if cacheProvider == nil {
		cacheProvider = cache.NewMemoryAdapter(memoryCacheEntries)
	}

	// Initialize services
	analysisService := services.NewAnalysisService(
		services.NewNutrientPredictor(cfg.Model.MinTrainingRows, cfg.Model.RidgeLambda),
		services.NewRecommendationEngine(catalog, cfg.Recommend.MarginalTolerance),
		catalog,
		cacheProvider,
		metrics,
		services.AnalysisOptions{
			SyntheticSeed: cfg.Synthetic.Seed,
			NoiseFraction: cfg.Synthetic.NoiseFraction,
			Holdout: services.HoldoutOptions{
				TestFraction: cfg.Model.TestFraction,
				Seed:         cfg.Model.Seed,
			},
			CacheTTLSeconds: cfg.Model.CacheTTLSeconds,
		},
	)

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(analysisService, ingest.NewCSVReader(cfg.Server.MaxDatasetRows), cfg.Server.MaxUploadBytes)
	plantHandler := handlers.NewPlantHandler(catalog)

	router := routes.NewRouter(analysisHandler, plantHandler, cfg.Server.AllowedOrigins, metrics)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
