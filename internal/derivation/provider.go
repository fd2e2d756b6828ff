package derivation

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"climate-platform/internal/models"
)

// SeriesSource loads one raw source series
type SeriesSource interface {
	GetSeries(ctx context.Context, spec models.SourceSeriesSpecification) (*models.Series, error)
}

// RegionDirectory lists the locations grouped under a region
type RegionDirectory interface {
	ListLocationsInRegion(ctx context.Context, regionID string) ([]models.Location, error)
}

// Provider executes derivations against a SeriesSource
type Provider struct {
	source  SeriesSource
	regions RegionDirectory
}

// NewProvider creates a provider. regions may be nil when regional
// derivations are not served.
func NewProvider(source SeriesSource, regions RegionDirectory) *Provider {
	return &Provider{source: source, regions: regions}
}

// Derive fetches the sources named by d and combines them into one series
func (p *Provider) Derive(ctx context.Context, d Derivation) (*models.Series, error) {
	switch d := d.(type) {
	case Single:
		return p.fetch(ctx, d.Source)
	case Difference:
		return p.difference(ctx, d)
	case AverageOfMultiple:
		return p.average(ctx, d)
	case AverageOfAnomaliesInRegion:
		return p.regionalAnomalies(ctx, d)
	case nil:
		return nil, models.NewConfigurationError("series derivation", "no derivation given")
	}
	return nil, models.NewConfigurationError("series derivation", "unsupported derivation %T", d)
}

func (p *Provider) fetch(ctx context.Context, spec models.SourceSeriesSpecification) (*models.Series, error) {
	s, err := p.source.GetSeries(ctx, spec)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load series %s", spec)
	}
	return s, nil
}

func (p *Provider) fetchAll(ctx context.Context, specs []models.SourceSeriesSpecification) ([]*models.Series, error) {
	out := make([]*models.Series, 0, len(specs))
	for _, spec := range specs {
		s, err := p.fetch(ctx, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *Provider) difference(ctx context.Context, d Difference) (*models.Series, error) {
	series, err := p.fetchAll(ctx, d.Sources())
	if err != nil {
		return nil, err
	}

	first := series[0]
	records := alignAndCombine(first.DataResolution, series, func(values []*float64) *float64 {
		if values[0] == nil || values[1] == nil {
			return nil
		}
		return models.Float(*values[0] - *values[1])
	})
	return derived(first, records), nil
}

func (p *Provider) average(ctx context.Context, d AverageOfMultiple) (*models.Series, error) {
	series, err := p.fetchAll(ctx, d.Sources())
	if err != nil {
		return nil, err
	}
	if err := checkShape(series); err != nil {
		return nil, err
	}

	records := alignAndCombine(series[0].DataResolution, series, func(values []*float64) *float64 {
		for _, v := range values {
			if v == nil {
				return nil
			}
		}
		return meanOf(values)
	})
	return derived(series[0], records), nil
}

// regionalAnomalies averages, per date, the anomalies of whichever locations
// in the region have a value. Unlike AverageOfMultiple a date survives with
// only some locations reporting.
func (p *Provider) regionalAnomalies(ctx context.Context, d AverageOfAnomaliesInRegion) (*models.Series, error) {
	if p.regions == nil {
		return nil, models.NewConfigurationError("series derivation", "regional series are not available")
	}

	regionID := d.Template.LocationID
	locations, err := p.regions.ListLocationsInRegion(ctx, regionID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list locations in region %s", regionID)
	}

	var series []*models.Series
	for _, loc := range locations {
		spec := d.Template
		spec.LocationID = loc.ID
		s, err := p.fetch(ctx, spec)
		if err != nil {
			var notFound *models.NotFoundError
			if stderrors.As(err, &notFound) {
				continue
			}
			return nil, err
		}
		series = append(series, toAnomalies(s))
	}
	if len(series) == 0 {
		return nil, &models.NotFoundError{Resource: "series in region", ID: regionID}
	}
	if err := checkShape(series); err != nil {
		return nil, err
	}

	records := alignAndCombine(series[0].DataResolution, series, meanOf)
	return derived(series[0], records), nil
}

func derived(template *models.Series, records []models.DataRecord) *models.Series {
	return &models.Series{
		DataRecords:    records,
		UnitOfMeasure:  template.UnitOfMeasure,
		DataResolution: template.DataResolution,
		DataCategory:   template.DataCategory,
	}
}

func checkShape(series []*models.Series) error {
	first := series[0]
	for _, s := range series[1:] {
		if s.UnitOfMeasure != first.UnitOfMeasure {
			return &models.DataShapeError{Field: "unit of measure", Expected: string(first.UnitOfMeasure), Actual: string(s.UnitOfMeasure)}
		}
		if s.DataResolution != first.DataResolution {
			return &models.DataShapeError{Field: "data resolution", Expected: string(first.DataResolution), Actual: string(s.DataResolution)}
		}
	}
	return nil
}

// meanOf averages the non-nil values, returning nil when there are none
func meanOf(values []*float64) *float64 {
	data := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if v != nil {
			data = append(data, *v)
		}
	}
	if len(data) == 0 {
		return nil
	}
	m, err := stats.Mean(data)
	if err != nil {
		return nil
	}
	return &m
}

func toAnomalies(s *models.Series) *models.Series {
	values := make([]*float64, len(s.DataRecords))
	for i, r := range s.DataRecords {
		values[i] = r.Value
	}
	mean := meanOf(values)

	out := *s
	out.DataRecords = make([]models.DataRecord, len(s.DataRecords))
	for i, r := range s.DataRecords {
		if r.Value != nil && mean != nil {
			r = r.WithValue(models.Float(*r.Value - *mean))
		}
		out.DataRecords[i] = r
	}
	return &out
}

// alignAndCombine emits one record per period at resolution from the
// earliest to the latest date found in any series. combine receives each
// series' value for the period, nil where the series has no value there.
func alignAndCombine(resolution models.DataResolution, series []*models.Series, combine func([]*float64) *float64) []models.DataRecord {
	lookups := make([]map[string]*float64, len(series))
	var first, last time.Time
	found := false

	for i, s := range series {
		lookups[i] = make(map[string]*float64, len(s.DataRecords))
		for _, r := range s.DataRecords {
			date := truncate(resolution, r.Date())
			lookups[i][periodKey(resolution, date)] = r.Value
			if !found || date.Before(first) {
				first = date
			}
			if !found || date.After(last) {
				last = date
			}
			found = true
		}
	}
	if !found {
		return []models.DataRecord{}
	}

	var out []models.DataRecord
	values := make([]*float64, len(series))
	for date := first; !date.After(last); date = advance(resolution, date) {
		key := periodKey(resolution, date)
		for i := range lookups {
			values[i] = lookups[i][key]
		}
		out = append(out, recordAt(resolution, date, combine(values)))
	}
	return out
}

func truncate(resolution models.DataResolution, t time.Time) time.Time {
	switch resolution {
	case models.Yearly:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case models.Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

func advance(resolution models.DataResolution, t time.Time) time.Time {
	switch resolution {
	case models.Yearly:
		return t.AddDate(1, 0, 0)
	case models.Monthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func periodKey(resolution models.DataResolution, t time.Time) string {
	switch resolution {
	case models.Yearly:
		return t.Format("2006")
	case models.Monthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

func recordAt(resolution models.DataResolution, t time.Time, value *float64) models.DataRecord {
	switch resolution {
	case models.Yearly:
		return models.NewYearlyRecord(t.Year(), value)
	case models.Monthly:
		return models.NewMonthlyRecord(t.Year(), t.Month(), value)
	default:
		return models.NewDailyRecord(t, value)
	}
}
