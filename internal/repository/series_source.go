package repository

import (
	"context"
	"fmt"

	"climate-platform/internal/models"
	"climate-platform/pkg/logging"
	"climate-platform/pkg/metrics"
)

// SeriesSource loads source series from the catalog tables
type SeriesSource struct {
	catalog CatalogRepository
}

// NewSeriesSource creates a catalog backed series source
func NewSeriesSource(catalog CatalogRepository) *SeriesSource {
	return &SeriesSource{catalog: catalog}
}

// GetSeries resolves the measurement and location, then loads the records.
// Unknown measurements or locations yield a *models.NotFoundError.
func (s *SeriesSource) GetSeries(ctx context.Context, spec models.SourceSeriesSpecification) (*models.Series, error) {
	m, err := s.catalog.GetMeasurement(ctx, spec.DataSetID, spec.DataType, spec.DataAdjustment)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetLocation(ctx, spec.LocationID); err != nil {
		return nil, err
	}

	records, err := s.catalog.GetObservations(ctx, spec)
	if err != nil {
		return nil, err
	}

	return &models.Series{
		DataRecords:    records,
		UnitOfMeasure:  m.UnitOfMeasure,
		DataResolution: m.DataResolution,
		DataCategory:   m.DataCategory,
	}, nil
}

// Source is anything that can load a source series
type Source interface {
	GetSeries(ctx context.Context, spec models.SourceSeriesSpecification) (*models.Series, error)
}

// SeriesCache is the subset of pkg/cache used for series
type SeriesCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// CachedSeriesSource serves series from a cache and falls back to next.
// Cache failures are logged and never fail the request.
type CachedSeriesSource struct {
	next    Source
	cache   SeriesCache
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewCachedSeriesSource decorates next with cache
func NewCachedSeriesSource(next Source, cache SeriesCache, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *CachedSeriesSource {
	return &CachedSeriesSource{
		next:    next,
		cache:   cache,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// SeriesCacheKey is the cache key a series is stored under
func SeriesCacheKey(spec models.SourceSeriesSpecification) string {
	return fmt.Sprintf("series:%s", spec)
}

// GetSeries implements Source
func (c *CachedSeriesSource) GetSeries(ctx context.Context, spec models.SourceSeriesSpecification) (*models.Series, error) {
	key := SeriesCacheKey(spec)

	var cached models.Series
	found, err := c.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		c.metrics.RecordCacheResult("error")
		c.logger.Warn(ctx, "[SERIES_CACHE] Cache read failed", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
	case found:
		c.metrics.RecordCacheResult("hit")
		return &cached, nil
	default:
		c.metrics.RecordCacheResult("miss")
	}

	series, err := c.next.GetSeries(ctx, spec)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, series); err != nil {
		c.logger.Warn(ctx, "[SERIES_CACHE] Cache write failed", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
	}
	return series, nil
}
