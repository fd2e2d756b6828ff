package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"climate-platform/internal/models"
	"climate-platform/pkg/database"
	"climate-platform/pkg/logging"
	"climate-platform/pkg/metrics"
)

// CatalogRepository provides data access for data sets, locations and
// their observations
type CatalogRepository interface {
	// Data set operations
	UpsertDataSet(ctx context.Context, ds *models.DataSetDefinition) error
	GetDataSet(ctx context.Context, id string) (*models.DataSetDefinition, error)
	ListDataSets(ctx context.Context) ([]*models.DataSetDefinition, error)

	// Measurement operations
	UpsertMeasurement(ctx context.Context, m *models.MeasurementDefinition) error
	GetMeasurement(ctx context.Context, dataSetID, dataType, dataAdjustment string) (*models.MeasurementDefinition, error)
	ListMeasurements(ctx context.Context, dataSetID string) ([]*models.MeasurementDefinition, error)

	// Location operations
	UpsertLocation(ctx context.Context, loc *models.Location) error
	GetLocation(ctx context.Context, id string) (*models.Location, error)
	ListLocations(ctx context.Context, limit, offset int) ([]*models.Location, error)
	ListLocationsInRegion(ctx context.Context, regionID string) ([]models.Location, error)

	// Observation operations
	CreateObservationsBatch(ctx context.Context, spec models.SourceSeriesSpecification, records []models.DataRecord) error
	GetObservations(ctx context.Context, spec models.SourceSeriesSpecification) ([]models.DataRecord, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// catalogRepository implements CatalogRepository
type catalogRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) CatalogRepository {
	return &catalogRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// UpsertDataSet creates a data set or updates its descriptive fields
func (r *catalogRepository) UpsertDataSet(ctx context.Context, ds *models.DataSetDefinition) error {
	query := `
		INSERT INTO datasets (id, name, publisher, data_resolution)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			publisher = excluded.publisher,
			data_resolution = excluded.data_resolution,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, "upsert_dataset", query, ds.ID, ds.Name, ds.Publisher, ds.DataResolution)
	if err != nil {
		return fmt.Errorf("failed to upsert data set: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_UPSERT_DATASET] Data set saved", logging.Fields{
		"data_set_id": ds.ID,
		"resolution":  ds.DataResolution,
	})
	return nil
}

// GetDataSet retrieves a data set by ID
func (r *catalogRepository) GetDataSet(ctx context.Context, id string) (*models.DataSetDefinition, error) {
	query := `
		SELECT id, name, publisher, data_resolution, created_at, updated_at
		FROM datasets
		WHERE id = ?
	`

	var ds models.DataSetDefinition
	err := r.db.GetContext(ctx, "get_dataset", &ds, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "data set", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data set: %w", err)
	}
	return &ds, nil
}

// ListDataSets retrieves every data set ordered by ID
func (r *catalogRepository) ListDataSets(ctx context.Context) ([]*models.DataSetDefinition, error) {
	query := `
		SELECT id, name, publisher, data_resolution, created_at, updated_at
		FROM datasets
		ORDER BY id
	`

	var sets []*models.DataSetDefinition
	if err := r.db.SelectContext(ctx, "list_datasets", &sets, query); err != nil {
		return nil, fmt.Errorf("failed to list data sets: %w", err)
	}
	return sets, nil
}

// UpsertMeasurement creates a measurement or updates its unit and category
func (r *catalogRepository) UpsertMeasurement(ctx context.Context, m *models.MeasurementDefinition) error {
	query := `
		INSERT INTO measurements (data_set_id, data_type, data_adjustment, unit_of_measure, data_category)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (data_set_id, data_type, data_adjustment) DO UPDATE SET
			unit_of_measure = excluded.unit_of_measure,
			data_category = excluded.data_category
	`

	_, err := r.db.ExecContext(ctx, "upsert_measurement", query,
		m.DataSetID,
		m.DataType,
		m.DataAdjustment,
		m.UnitOfMeasure,
		m.DataCategory,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert measurement: %w", err)
	}
	return nil
}

const measurementColumns = `
	m.data_set_id, m.data_type, m.data_adjustment, m.unit_of_measure, m.data_category, d.data_resolution
	FROM measurements m
	JOIN datasets d ON d.id = m.data_set_id
`

// GetMeasurement retrieves one measurement with its data set's resolution
func (r *catalogRepository) GetMeasurement(ctx context.Context, dataSetID, dataType, dataAdjustment string) (*models.MeasurementDefinition, error) {
	query := `SELECT` + measurementColumns + `
		WHERE m.data_set_id = ? AND m.data_type = ? AND m.data_adjustment = ?
	`

	var m models.MeasurementDefinition
	err := r.db.GetContext(ctx, "get_measurement", &m, query, dataSetID, dataType, dataAdjustment)
	if errors.Is(err, sql.ErrNoRows) {
		id := dataSetID + "/" + dataType
		if dataAdjustment != "" {
			id += "/" + dataAdjustment
		}
		return nil, &models.NotFoundError{Resource: "measurement", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get measurement: %w", err)
	}
	return &m, nil
}

// ListMeasurements retrieves the measurements of a data set
func (r *catalogRepository) ListMeasurements(ctx context.Context, dataSetID string) ([]*models.MeasurementDefinition, error) {
	query := `SELECT` + measurementColumns + `
		WHERE m.data_set_id = ?
		ORDER BY m.data_type, m.data_adjustment
	`

	var out []*models.MeasurementDefinition
	if err := r.db.SelectContext(ctx, "list_measurements", &out, query, dataSetID); err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	return out, nil
}

// UpsertLocation creates a location or updates its details
func (r *catalogRepository) UpsertLocation(ctx context.Context, loc *models.Location) error {
	query := `
		INSERT INTO locations (id, name, region_id, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			region_id = excluded.region_id,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, "upsert_location", query,
		loc.ID,
		loc.Name,
		loc.RegionID,
		loc.Latitude,
		loc.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert location: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_UPSERT_LOCATION] Location saved", logging.Fields{
		"location_id": loc.ID,
		"region_id":   loc.RegionID,
	})
	return nil
}

const locationColumns = `id, name, region_id, latitude, longitude, created_at, updated_at`

// GetLocation retrieves a location by ID
func (r *catalogRepository) GetLocation(ctx context.Context, id string) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = ?`

	var loc models.Location
	err := r.db.GetContext(ctx, "get_location", &loc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "location", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &loc, nil
}

// ListLocations retrieves locations with pagination
func (r *catalogRepository) ListLocations(ctx context.Context, limit, offset int) ([]*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY id LIMIT ? OFFSET ?`

	var locations []*models.Location
	if err := r.db.SelectContext(ctx, "list_locations", &locations, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// ListLocationsInRegion retrieves every location grouped under regionID
func (r *catalogRepository) ListLocationsInRegion(ctx context.Context, regionID string) ([]models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE region_id = ? ORDER BY id`

	var locations []models.Location
	if err := r.db.SelectContext(ctx, "list_region_locations", &locations, query, regionID); err != nil {
		return nil, fmt.Errorf("failed to list locations in region: %w", err)
	}
	return locations, nil
}

// CreateObservationsBatch writes the records of one series in a single
// transaction, replacing any stored value for the same period
func (r *catalogRepository) CreateObservationsBatch(ctx context.Context, spec models.SourceSeriesSpecification, records []models.DataRecord) error {
	if len(records) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.IngestionBatchSize.Observe(float64(len(records)))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
			"series":      spec.String(),
			"count":       len(records),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO observations (
			data_set_id, location_id, data_type, data_adjustment, year, month, day, value
		)
		VALUES (:data_set_id, :location_id, :data_type, :data_adjustment, :year, :month, :day, :value)
		ON CONFLICT (data_set_id, location_id, data_type, data_adjustment, year, month, day) DO UPDATE SET
			value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, models.NewObservationRow(spec, rec)); err != nil {
			return fmt.Errorf("failed to insert observation %s: %w", rec.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(len(records)))
	return nil
}

// GetObservations retrieves a series' records in date order
func (r *catalogRepository) GetObservations(ctx context.Context, spec models.SourceSeriesSpecification) ([]models.DataRecord, error) {
	query := `
		SELECT data_set_id, location_id, data_type, data_adjustment, year, month, day, value
		FROM observations
		WHERE data_set_id = ? AND location_id = ? AND data_type = ? AND data_adjustment = ?
		ORDER BY year, month, day
	`

	var rows []models.ObservationRow
	err := r.db.SelectContext(ctx, "get_observations", &rows, query,
		spec.DataSetID,
		spec.LocationID,
		spec.DataType,
		spec.DataAdjustment,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get observations: %w", err)
	}

	records := make([]models.DataRecord, len(rows))
	for i, row := range rows {
		records[i] = row.ToDataRecord()
	}
	return records, nil
}

// HealthCheck performs a repository health check
func (r *catalogRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
