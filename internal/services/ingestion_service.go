package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"climate-platform/internal/models"
	"climate-platform/internal/repository"
	"climate-platform/pkg/logging"
	"climate-platform/pkg/metrics"
)

// SeriesInvalidator drops cached copies of series
type SeriesInvalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

// IngestionService loads per-location observation files into the catalog
type IngestionService struct {
	repo    repository.CatalogRepository
	cache   SeriesInvalidator
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionTarget names the series every file in a directory belongs to.
// Each file supplies the location.
type IngestionTarget struct {
	DataSet     models.DataSetDefinition
	Measurement models.MeasurementDefinition
	RegionID    string
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	TotalFiles        int
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	MissingValues     int
	Duration          time.Duration
	Errors            []string
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.CatalogRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// WithCache makes the service evict each series it rewrites from cache
func (s *IngestionService) WithCache(cache SeriesInvalidator) *IngestionService {
	s.cache = cache
	return s
}

// IngestDirectory ingests every <locationID>.txt file in dataDir
func (s *IngestionService) IngestDirectory(ctx context.Context, dataDir string, target IngestionTarget, batchSize int) (*IngestionResult, error) {
	startTime := time.Now()
	if batchSize < 1 {
		batchSize = 1000
	}

	s.logger.Info(ctx, "[INGEST_START] Starting data ingestion", logging.Fields{
		"data_dir":    dataDir,
		"data_set_id": target.DataSet.ID,
		"data_type":   target.Measurement.DataType,
		"batch_size":  batchSize,
		"stage":       "INITIALIZATION",
	})

	resolution, err := models.ParseDataResolution(string(target.DataSet.DataResolution))
	if err != nil {
		return nil, err
	}
	target.DataSet.DataResolution = resolution
	target.Measurement.DataSetID = target.DataSet.ID
	target.Measurement.DataResolution = resolution
	if err := s.repo.UpsertDataSet(ctx, &target.DataSet); err != nil {
		return nil, fmt.Errorf("failed to register data set: %w", err)
	}
	if err := s.repo.UpsertMeasurement(ctx, &target.Measurement); err != nil {
		return nil, fmt.Errorf("failed to register measurement: %w", err)
	}

	result := &IngestionResult{
		Errors: make([]string, 0),
	}

	files, err := filepath.Glob(filepath.Join(dataDir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no data files found in %s", dataDir)
	}

	result.TotalFiles = len(files)

	s.logger.Info(ctx, "[INGEST_FILES] Found data files", logging.Fields{
		"file_count": len(files),
		"stage":      "FILE_DISCOVERY",
	})

	for _, filePath := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fileResult, err := s.ingestFile(ctx, filePath, target, batchSize)
		if err != nil {
			errMsg := fmt.Sprintf("failed to ingest %s: %v", filePath, err)
			result.Errors = append(result.Errors, errMsg)
			s.logger.Error(ctx, "[INGEST_FILE_ERROR] File ingestion failed", logging.Fields{
				"file_path": filePath,
				"stage":     "FILE_PROCESSING",
			}, err)
			s.metrics.RecordIngestionError("file_error")
			continue
		}

		result.TotalRecords += fileResult.TotalRecords
		result.SuccessfulRecords += fileResult.SuccessfulRecords
		result.FailedRecords += fileResult.FailedRecords
		result.MissingValues += fileResult.MissingValues
		s.invalidate(ctx, fileResult.Series)

		s.logger.Info(ctx, "[INGEST_FILE_SUCCESS] File ingested successfully", logging.Fields{
			"file_path":          filePath,
			"total_records":      fileResult.TotalRecords,
			"successful_records": fileResult.SuccessfulRecords,
			"failed_records":     fileResult.FailedRecords,
			"missing_values":     fileResult.MissingValues,
			"stage":              "FILE_COMPLETE",
		})
	}

	result.Duration = time.Since(startTime)
	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[INGEST_COMPLETE] Data ingestion completed", logging.Fields{
		"total_files":        result.TotalFiles,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
		"error_count":        len(result.Errors),
		"stage":              "COMPLETE",
	})

	return result, nil
}

// FileIngestionResult contains per-file ingestion statistics
type FileIngestionResult struct {
	Series            models.SourceSeriesSpecification
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	MissingValues     int
}

func (s *IngestionService) ingestFile(ctx context.Context, filePath string, target IngestionTarget, batchSize int) (*FileIngestionResult, error) {
	fileName := filepath.Base(filePath)
	locationID := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	// keep an existing location's name and coordinates
	if _, err := s.repo.GetLocation(ctx, locationID); err != nil {
		var notFound *models.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to look up location: %w", err)
		}
		loc := &models.Location{ID: locationID, Name: locationID, RegionID: target.RegionID}
		if err := s.repo.UpsertLocation(ctx, loc); err != nil {
			return nil, fmt.Errorf("failed to create location: %w", err)
		}
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	spec := models.SourceSeriesSpecification{
		DataSetID:      target.DataSet.ID,
		LocationID:     locationID,
		DataType:       target.Measurement.DataType,
		DataAdjustment: target.Measurement.DataAdjustment,
	}
	resolution := target.DataSet.DataResolution

	result := &FileIngestionResult{Series: spec}
	batch := make([]models.DataRecord, 0, batchSize)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		result.TotalRecords++

		raw, err := parseLine(line)
		if err != nil {
			result.FailedRecords++
			s.metrics.RecordIngestionError("parse_error")
			continue
		}

		record, err := raw.ToDataRecord(resolution)
		if err != nil {
			result.FailedRecords++
			s.metrics.RecordIngestionError("conversion_error")
			continue
		}
		if !record.HasValue() {
			result.MissingValues++
		}

		batch = append(batch, record)

		if len(batch) >= batchSize {
			if err := s.repo.CreateObservationsBatch(ctx, spec, batch); err != nil {
				return nil, fmt.Errorf("failed to insert batch: %w", err)
			}
			result.SuccessfulRecords += len(batch)
			batch = batch[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if len(batch) > 0 {
		if err := s.repo.CreateObservationsBatch(ctx, spec, batch); err != nil {
			return nil, fmt.Errorf("failed to insert final batch: %w", err)
		}
		result.SuccessfulRecords += len(batch)
	}

	return result, nil
}

func (s *IngestionService) invalidate(ctx context.Context, spec models.SourceSeriesSpecification) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, repository.SeriesCacheKey(spec)); err != nil {
		s.logger.Warn(ctx, "[INGEST_CACHE] Failed to evict cached series", logging.Fields{
			"series": spec.String(),
			"error":  err.Error(),
		})
	}
}

// parseLine splits DATE\tVALUE. A line with only a date is a missing value.
func parseLine(line string) (*models.RawObservationRecord, error) {
	parts := strings.Split(line, "\t")
	switch len(parts) {
	case 1:
		return &models.RawObservationRecord{Date: parts[0]}, nil
	case 2:
		return &models.RawObservationRecord{Date: parts[0], Value: parts[1]}, nil
	}
	return nil, fmt.Errorf("invalid line format: expected 2 fields, got %d", len(parts))
}
