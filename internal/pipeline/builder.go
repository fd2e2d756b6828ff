// Package pipeline runs a chart series request through derivation,
// transformation, filtering, binning, rejection, aggregation and final value
// calculation.
package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"climate-platform/internal/aggregation"
	"climate-platform/internal/binning"
	"climate-platform/internal/calendar"
	"climate-platform/internal/derivation"
	"climate-platform/internal/models"
	"climate-platform/internal/transform"
)

// Stage names reported to a StageObserver
const (
	StageDerive    = "derive"
	StageTransform = "transform"
	StageFilter    = "filter"
	StageBin       = "bin"
	StageReject    = "reject"
	StageAggregate = "aggregate"
	StageFinalize  = "finalize"
)

// Deriver produces the working series for a derivation
type Deriver interface {
	Derive(ctx context.Context, d derivation.Derivation) (*models.Series, error)
}

// StageObserver is told how long each stage took
type StageObserver func(stage string, elapsed time.Duration)

// DataSetBuilder turns requests into chart series. It holds no per-request
// state and may serve concurrent requests.
type DataSetBuilder struct {
	deriver  Deriver
	observer StageObserver
}

// NewDataSetBuilder creates a builder. observer may be nil.
func NewDataSetBuilder(deriver Deriver, observer StageObserver) *DataSetBuilder {
	return &DataSetBuilder{deriver: deriver, observer: observer}
}

type plan struct {
	derivation     derivation.Derivation
	transformation transform.Transformation
	filter         transform.Filter
	rule           binning.BinningRule
	thresholds     binning.Thresholds
	functions      binning.Functions
}

// parse validates every request parameter that does not depend on the data
func parse(req Request) (*plan, error) {
	if len(req.SeriesSpecifications) == 0 {
		return nil, models.NewConfigurationError("data set builder", "at least one series specification is required")
	}

	var (
		p   plan
		err error
	)

	typ, err := derivation.ParseType(req.SeriesDerivationType)
	if err != nil {
		return nil, err
	}
	if p.derivation, err = derivation.NewDerivation(typ, req.SeriesSpecifications); err != nil {
		return nil, err
	}
	if p.transformation, err = transform.ParseTransformation(req.SeriesTransformation); err != nil {
		return nil, err
	}
	if p.rule, err = binning.ParseBinningRule(req.BinningRule); err != nil {
		return nil, err
	}

	p.thresholds = binning.Thresholds{
		Cup:    req.RequiredCupDataProportion,
		Bucket: req.RequiredBucketDataProportion,
		Bin:    req.RequiredBinDataProportion,
	}
	if err := p.thresholds.Validate(); err != nil {
		return nil, err
	}

	levels := []struct {
		name string
		dst  *aggregation.Function
	}{
		{req.BinAggregationFunction, &p.functions.Bin},
		{req.BucketAggregationFunction, &p.functions.Bucket},
		{req.CupAggregationFunction, &p.functions.Cup},
	}
	for _, l := range levels {
		if *l.dst, err = aggregation.Parse(l.name); err != nil {
			return nil, err
		}
	}
	if err := p.functions.Validate(); err != nil {
		return nil, err
	}

	if p.filter, err = parseFilter(req); err != nil {
		return nil, err
	}
	return &p, nil
}

func parseFilter(req Request) (transform.Filter, error) {
	f := transform.Filter{
		Year:                   req.FilterToYear,
		YearsAfterAndIncluding: req.FilterToYearsAfterAndIncluding,
		YearsBefore:            req.FilterToYearsBefore,
	}
	if req.FilterToSeason != nil {
		s, err := calendar.ParseTemperateSeason(*req.FilterToSeason)
		if err != nil {
			return f, models.NewConfigurationError("series filterer", "%v", err)
		}
		f.TemperateSeason = &s
	}
	if req.FilterToTropicalSeason != nil {
		s, err := calendar.ParseTropicalSeason(*req.FilterToTropicalSeason)
		if err != nil {
			return f, models.NewConfigurationError("series filterer", "%v", err)
		}
		f.TropicalSeason = &s
	}
	return f, nil
}

// BuildDataSet runs the full pipeline for req. Any stage failure aborts the
// request; no partial response is returned.
func (b *DataSetBuilder) BuildDataSet(ctx context.Context, req Request) (*Response, error) {
	p, err := parse(req)
	if err != nil {
		return nil, errors.Wrap(err, "invalid request")
	}

	start := time.Now()
	series, err := b.deriver.Derive(ctx, p.derivation)
	if err != nil {
		return nil, errors.Wrap(err, "series provider")
	}
	b.observe(StageDerive, start)

	resp := &Response{
		UnitOfMeasure: series.UnitOfMeasure,
		DataCategory:  series.DataCategory,
	}
	if req.IncludeRawDataPoints {
		resp.RawDataPoints = append([]models.DataRecord(nil), series.DataRecords...)
	}

	start = time.Now()
	records, err := transform.Apply(series.DataRecords, p.transformation)
	if err != nil {
		return nil, errors.Wrap(err, "series transformer")
	}
	b.observe(StageTransform, start)

	start = time.Now()
	records = p.filter.Apply(records)
	b.observe(StageFilter, start)

	if p.rule == binning.ByYearAndDay && series.DataResolution == models.Daily {
		resp.Points = dailyPoints(records)
		return resp, nil
	}

	start = time.Now()
	binner := binning.Binner{Rule: p.rule, CupSizeDays: req.CupSizeDays, Resolution: series.DataResolution}
	raw, err := binner.Bin(records)
	if err != nil {
		return nil, errors.Wrap(err, "binner")
	}
	b.observe(StageBin, start)

	start = time.Now()
	flagged := binning.RejectBins(raw, p.thresholds)
	b.observe(StageReject, start)

	start = time.Now()
	opts := binning.Options{ExcludeZerosFromMin: p.transformation == transform.DayOfYearIfFrost}
	aggregated, err := binning.AggregateBins(flagged, p.functions, opts)
	if err != nil {
		return nil, errors.Wrap(err, "bin aggregator")
	}
	b.observe(StageAggregate, start)

	start = time.Now()
	final := binning.CalculateFinalValues(aggregated, req.Anomaly)
	b.observe(StageFinalize, start)

	resp.Points = make([]Point, len(final))
	for i, bin := range final {
		resp.Points[i] = Point{BinID: bin.Identifier.ID(), Label: bin.Identifier.Label(), Value: bin.Value}
	}
	return resp, nil
}

func (b *DataSetBuilder) observe(stage string, start time.Time) {
	if b.observer != nil {
		b.observer(stage, time.Since(start))
	}
}

// dailyPoints maps each daily record straight to a point, without adequacy
// checks or aggregation
func dailyPoints(records []models.DataRecord) []Point {
	points := make([]Point, 0, len(records))
	for _, r := range records {
		d := r.Date()
		id := binning.YearDayID(d.Year(), d.Month(), d.Day())
		points = append(points, Point{BinID: id.ID(), Label: id.Label(), Value: r.Value})
	}
	return points
}
