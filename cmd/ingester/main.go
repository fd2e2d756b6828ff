package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"climate-platform/internal/config"
	"climate-platform/internal/models"
	"climate-platform/internal/repository"
	"climate-platform/internal/services"
	"climate-platform/pkg/cache"
	"climate-platform/pkg/database"
	"climate-platform/pkg/logging"
	"climate-platform/pkg/metrics"
)

func main() {
	dataDir := flag.String("data-dir", "./data", "Directory of <locationId>.txt files with DATE<TAB>VALUE lines")
	dataSetID := flag.String("dataset", "", "Data set id")
	dataSetName := flag.String("dataset-name", "", "Data set display name (defaults to the id)")
	publisher := flag.String("publisher", "", "Data set publisher")
	resolution := flag.String("resolution", "daily", "Data resolution: daily, monthly or yearly")
	dataType := flag.String("data-type", "", "Measurement data type, e.g. tmax")
	adjustment := flag.String("adjustment", "", "Measurement data adjustment")
	unit := flag.String("unit", "", "Unit of measure, e.g. degC")
	category := flag.String("category", "", "Data category")
	region := flag.String("region", "", "Region id assigned to new locations")
	batchSize := flag.Int("batch-size", 1000, "Number of records to insert in each batch")
	flag.Parse()

	if *dataSetID == "" || *dataType == "" || *unit == "" {
		fmt.Fprintln(os.Stderr, "-dataset, -data-type and -unit are required")
		flag.Usage()
		os.Exit(2)
	}
	res, err := models.ParseDataResolution(*resolution)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if *dataSetName == "" {
		*dataSetName = *dataSetID
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger("climate-ingester", "1.0.0")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "[INGESTER_START] Starting climate data ingestion", logging.Fields{
		"version":    "1.0.0",
		"data_dir":   *dataDir,
		"dataset":    *dataSetID,
		"data_type":  *dataType,
		"batch_size": *batchSize,
	})

	metricsCollector := metrics.NewCollector("climate_ingester", nil)

	db, err := database.Open(cfg.DatabaseConnection(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	catalogRepo := repository.NewCatalogRepository(db, logger, metricsCollector)
	ingestionService := services.NewIngestionService(catalogRepo, logger, metricsCollector)
	if cfg.Cache.Enabled {
		seriesCache, err := cache.New(ctx, cfg.CacheConnection())
		if err != nil {
			logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to cache", logging.Fields{
				"redis_addr": cfg.Cache.Addr,
			}, err)
		}
		defer seriesCache.Close()
		ingestionService.WithCache(seriesCache)
	}

	target := services.IngestionTarget{
		DataSet: models.DataSetDefinition{
			ID:             *dataSetID,
			Name:           *dataSetName,
			Publisher:      *publisher,
			DataResolution: res,
		},
		Measurement: models.MeasurementDefinition{
			DataType:       *dataType,
			DataAdjustment: *adjustment,
			UnitOfMeasure:  models.UnitOfMeasure(*unit),
			DataCategory:   models.DataCategory(*category),
		},
		RegionID: *region,
	}

	result, err := ingestionService.IngestDirectory(ctx, *dataDir, target, *batchSize)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Ingestion failed", logging.Fields{}, err)
	}

	fmt.Println("\n=== Ingestion Summary ===")
	fmt.Printf("Total Files:        %d\n", result.TotalFiles)
	fmt.Printf("Total Records:      %d\n", result.TotalRecords)
	fmt.Printf("Successful Records: %d\n", result.SuccessfulRecords)
	fmt.Printf("Failed Records:     %d\n", result.FailedRecords)
	fmt.Printf("Missing Values:     %d\n", result.MissingValues)
	fmt.Printf("Duration:           %s\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n  %s\n", len(result.Errors), strings.Join(result.Errors, "\n  "))
		os.Exit(1)
	}
}
