package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"climate-platform/internal/config"
	"climate-platform/internal/derivation"
	"climate-platform/internal/handlers"
	"climate-platform/internal/pipeline"
	"climate-platform/internal/repository"
	"climate-platform/internal/services"
	"climate-platform/pkg/cache"
	"climate-platform/pkg/database"
	"climate-platform/pkg/logging"
	"climate-platform/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger("climate-api", version)

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting climate chart series API server", logging.Fields{
		"version":       version,
		"server_host":   cfg.Server.Host,
		"server_port":   cfg.Server.Port,
		"db_driver":     cfg.Database.Driver,
		"cache_enabled": cfg.Cache.Enabled,
	})

	metricsCollector := metrics.NewCollector("climate_platform", nil)

	db, err := database.Open(cfg.DatabaseConnection(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	catalogRepo := repository.NewCatalogRepository(db, logger, metricsCollector)

	// Source series come from the catalog, optionally through Redis
	var source repository.Source = repository.NewSeriesSource(catalogRepo)
	if cfg.Cache.Enabled {
		seriesCache, err := cache.New(ctx, cfg.CacheConnection())
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to cache", logging.Fields{
				"redis_addr": cfg.Cache.Addr,
			}, err)
		}
		defer seriesCache.Close()
		source = repository.NewCachedSeriesSource(source, seriesCache, logger, metricsCollector)
	}

	provider := derivation.NewProvider(source, catalogRepo)
	builder := pipeline.NewDataSetBuilder(provider, metricsCollector.ObserveStage)

	chartService := services.NewChartSeriesService(builder, services.Defaults{
		CupSizeDays:         cfg.Pipeline.DefaultCupSizeDays,
		AggregationFunction: cfg.Pipeline.DefaultAggregationFunction,
	}, logger, metricsCollector)
	catalogService := services.NewCatalogService(catalogRepo, logger)

	chartHandler := handlers.NewChartHandler(chartService, catalogService, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()
	chartHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", handlers.RequestIDHeader},
		ExposedHeaders: []string{handlers.RequestIDHeader},
		MaxAge:         300,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      corsHandler(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
