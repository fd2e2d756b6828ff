package services

import (
	"context"
	"fmt"

	"climate-platform/internal/models"
	"climate-platform/internal/repository"
	"climate-platform/pkg/logging"
)

// DataSetSummary is a data set with the measurements it offers
type DataSetSummary struct {
	models.DataSetDefinition
	Measurements []*models.MeasurementDefinition `json:"measurements"`
}

// CatalogService answers catalog browsing queries
type CatalogService struct {
	repo   repository.CatalogRepository
	logger *logging.StructuredLogger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo repository.CatalogRepository, logger *logging.StructuredLogger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// ListDataSets returns every data set with its measurements
func (s *CatalogService) ListDataSets(ctx context.Context) ([]DataSetSummary, error) {
	dataSets, err := s.repo.ListDataSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list data sets: %w", err)
	}

	summaries := make([]DataSetSummary, 0, len(dataSets))
	for _, ds := range dataSets {
		measurements, err := s.repo.ListMeasurements(ctx, ds.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list measurements for %s: %w", ds.ID, err)
		}
		summaries = append(summaries, DataSetSummary{DataSetDefinition: *ds, Measurements: measurements})
	}

	s.logger.Debug(ctx, "[CATALOG] Listed data sets", logging.Fields{
		"count": len(summaries),
	})
	return summaries, nil
}

// ListLocations pages through locations, or returns every location of a
// region when regionID is set
func (s *CatalogService) ListLocations(ctx context.Context, regionID string, limit, offset int) ([]models.Location, error) {
	if regionID != "" {
		locations, err := s.repo.ListLocationsInRegion(ctx, regionID)
		if err != nil {
			return nil, fmt.Errorf("failed to list locations in region %s: %w", regionID, err)
		}
		return locations, nil
	}

	if limit <= 0 || limit > 1000 {
		return nil, &models.ValidationError{
			Field:   "limit",
			Value:   fmt.Sprint(limit),
			Message: "limit must be between 1 and 1000",
		}
	}
	if offset < 0 {
		return nil, &models.ValidationError{
			Field:   "offset",
			Value:   fmt.Sprint(offset),
			Message: "offset must not be negative",
		}
	}

	locations, err := s.repo.ListLocations(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	out := make([]models.Location, len(locations))
	for i, l := range locations {
		out[i] = *l
	}
	return out, nil
}

// HealthCheck reports whether the catalog store is reachable
func (s *CatalogService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
