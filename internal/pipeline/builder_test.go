package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-platform/internal/derivation"
	"climate-platform/internal/models"
	"climate-platform/internal/pipeline"
)

type fakeDeriver struct {
	series *models.Series
	err    error
	calls  int
}

func (f *fakeDeriver) Derive(_ context.Context, _ derivation.Derivation) (*models.Series, error) {
	f.calls++
	return f.series, f.err
}

func yearOfDays(year int, fn func(time.Time) *float64) *models.Series {
	s := &models.Series{UnitOfMeasure: "degC", DataResolution: models.Daily, DataCategory: "temperature"}
	for d := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC); d.Year() == year; d = d.AddDate(0, 0, 1) {
		s.DataRecords = append(s.DataRecords, models.NewDailyRecord(d, fn(d)))
	}
	return s
}

func baseRequest() pipeline.Request {
	return pipeline.Request{
		SeriesDerivationType: "single",
		SeriesSpecifications: []models.SourceSeriesSpecification{
			{DataSetID: "acorn", LocationID: "066062", DataType: "tmax"},
		},
		BinningRule:                  "ByYear",
		CupSizeDays:                  14,
		RequiredCupDataProportion:    1,
		RequiredBucketDataProportion: 1,
		RequiredBinDataProportion:    1,
		BinAggregationFunction:       "Mean",
		BucketAggregationFunction:    "Mean",
		CupAggregationFunction:       "Mean",
	}
}

func TestBuildDataSet_FullYearMean(t *testing.T) {
	var sum float64
	series := yearOfDays(2001, func(d time.Time) *float64 {
		v := float64(d.YearDay() % 17)
		sum += v
		return &v
	})
	b := pipeline.NewDataSetBuilder(&fakeDeriver{series: series}, nil)

	resp, err := b.BuildDataSet(context.Background(), baseRequest())
	require.NoError(t, err)

	require.Len(t, resp.Points, 1)
	assert.Equal(t, "y2001", resp.Points[0].BinID)
	assert.Equal(t, "2001", resp.Points[0].Label)
	require.NotNil(t, resp.Points[0].Value)
	assert.InDelta(t, sum/365, *resp.Points[0].Value, 1e-9)
	assert.Equal(t, models.UnitOfMeasure("degC"), resp.UnitOfMeasure)
	assert.Equal(t, models.DataCategory("temperature"), resp.DataCategory)
	assert.Nil(t, resp.RawDataPoints)
}

func TestBuildDataSet_MissingJulyFailsStrictBucket(t *testing.T) {
	series := yearOfDays(2000, func(d time.Time) *float64 {
		if d.Month() == time.July {
			return nil
		}
		return models.Float(20)
	})
	req := baseRequest()
	req.RequiredCupDataProportion = 0.7
	req.RequiredBinDataProportion = 0.7

	// two of 26 cups fall below 0.7, leaving 24/26 full enough
	tests := []struct {
		name      string
		bucket    float64
		wantValue bool
	}{
		{"lenient bucket", 0.7, true},
		{"strict bucket", 0.95, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.RequiredBucketDataProportion = tt.bucket
			b := pipeline.NewDataSetBuilder(&fakeDeriver{series: series}, nil)

			resp, err := b.BuildDataSet(context.Background(), req)
			require.NoError(t, err)
			require.Len(t, resp.Points, 1)
			if tt.wantValue {
				require.NotNil(t, resp.Points[0].Value)
				assert.InDelta(t, 20, *resp.Points[0].Value, 1e-9)
			} else {
				assert.Nil(t, resp.Points[0].Value)
			}
		})
	}
}

func TestBuildDataSet_RawDailyOutput(t *testing.T) {
	series := yearOfDays(2001, func(d time.Time) *float64 {
		if d.Day() == 1 {
			return nil
		}
		return models.Float(float64(d.Day()))
	})
	req := baseRequest()
	req.BinningRule = "ByYearAndDay"
	req.FilterToYear = intPtr(2001)
	req.IncludeRawDataPoints = true

	resp, err := pipeline.NewDataSetBuilder(&fakeDeriver{series: series}, nil).BuildDataSet(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Points, 365)
	assert.Equal(t, "y2001m01d01", resp.Points[0].BinID)
	assert.Nil(t, resp.Points[0].Value)
	assert.Equal(t, "y2001m01d02", resp.Points[1].BinID)
	assert.InDelta(t, 2, *resp.Points[1].Value, 1e-9)
	assert.Len(t, resp.RawDataPoints, 365)
}

func TestBuildDataSet_TransformThenFilter(t *testing.T) {
	series := &models.Series{UnitOfMeasure: "degC", DataResolution: models.Monthly}
	for year := 2000; year <= 2003; year++ {
		for m := time.January; m <= time.December; m++ {
			v := 30.0
			if m == time.January {
				v = 40
			}
			series.DataRecords = append(series.DataRecords, models.NewMonthlyRecord(year, m, &v))
		}
	}
	req := baseRequest()
	req.BinningRule = "ByYear"
	req.SeriesTransformation = "EqualOrAbove35"
	req.BinAggregationFunction = "Sum"
	req.BucketAggregationFunction = "Sum"
	req.CupAggregationFunction = "Sum"
	req.FilterToSeason = strPtr("summer")
	req.FilterToYearsAfterAndIncluding = intPtr(2001)
	req.FilterToYearsBefore = intPtr(2003)
	req.RequiredCupDataProportion = 0
	req.RequiredBucketDataProportion = 0
	req.RequiredBinDataProportion = 0

	resp, err := pipeline.NewDataSetBuilder(&fakeDeriver{series: series}, nil).BuildDataSet(context.Background(), req)
	require.NoError(t, err)

	// only January clears 35, and season filtering leaves three months a year
	ids := make([]string, len(resp.Points))
	for i, p := range resp.Points {
		ids[i] = p.BinID
		require.NotNil(t, p.Value, p.BinID)
		assert.InDelta(t, 1, *p.Value, 1e-9, p.BinID)
	}
	assert.Equal(t, []string{"y2001", "y2002"}, ids)
}

func TestBuildDataSet_Anomaly(t *testing.T) {
	series := &models.Series{UnitOfMeasure: "degC", DataResolution: models.Yearly}
	for i, v := range []float64{10, 11, 12, 15} {
		series.DataRecords = append(series.DataRecords, models.NewYearlyRecord(1990+i, models.Float(v)))
	}
	req := baseRequest()
	req.Anomaly = true

	resp, err := pipeline.NewDataSetBuilder(&fakeDeriver{series: series}, nil).BuildDataSet(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Points, 4)
	var total float64
	for _, p := range resp.Points {
		require.NotNil(t, p.Value)
		total += *p.Value
	}
	assert.InDelta(t, 0, total, 1e-9)
	assert.InDelta(t, -2, *resp.Points[0].Value, 1e-9)
}

func TestBuildDataSet_ConfigurationErrorsFailBeforeLoading(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*pipeline.Request)
	}{
		{"no series", func(r *pipeline.Request) { r.SeriesSpecifications = nil }},
		{"difference of one", func(r *pipeline.Request) { r.SeriesDerivationType = "difference" }},
		{"median mixed with mean", func(r *pipeline.Request) { r.CupAggregationFunction = "Median" }},
		{"unknown function", func(r *pipeline.Request) { r.BinAggregationFunction = "Mode" }},
		{"unknown rule", func(r *pipeline.Request) { r.BinningRule = "ByDecade" }},
		{"threshold above one", func(r *pipeline.Request) { r.RequiredBinDataProportion = 1.5 }},
		{"unknown transformation", func(r *pipeline.Request) { r.SeriesTransformation = "Square" }},
		{"unknown season", func(r *pipeline.Request) { r.FilterToSeason = strPtr("monsoon") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.modify(&req)
			deriver := &fakeDeriver{series: yearOfDays(2000, func(time.Time) *float64 { return models.Float(1) })}

			_, err := pipeline.NewDataSetBuilder(deriver, nil).BuildDataSet(context.Background(), req)
			var cfgErr *models.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
			assert.Zero(t, deriver.calls)
		})
	}
}

func TestBuildDataSet_UnsupportedResolutionForRule(t *testing.T) {
	series := &models.Series{UnitOfMeasure: "degC", DataResolution: models.Yearly,
		DataRecords: []models.DataRecord{models.NewYearlyRecord(2000, models.Float(1))}}
	req := baseRequest()
	req.BinningRule = "ByYearAndMonth"

	_, err := pipeline.NewDataSetBuilder(&fakeDeriver{series: series}, nil).BuildDataSet(context.Background(), req)
	var cfgErr *models.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "binner")
}

func TestBuildDataSet_SourceErrorAborts(t *testing.T) {
	deriver := &fakeDeriver{err: &models.NotFoundError{Resource: "location", ID: "000000"}}

	resp, err := pipeline.NewDataSetBuilder(deriver, nil).BuildDataSet(context.Background(), baseRequest())
	assert.Nil(t, resp)
	var notFound *models.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Contains(t, err.Error(), "series provider")
}

func TestBuildDataSet_ReportsStages(t *testing.T) {
	seen := map[string]int{}
	observer := func(stage string, _ time.Duration) { seen[stage]++ }
	series := yearOfDays(2000, func(time.Time) *float64 { return models.Float(1) })

	_, err := pipeline.NewDataSetBuilder(&fakeDeriver{series: series}, observer).BuildDataSet(context.Background(), baseRequest())
	require.NoError(t, err)

	for _, stage := range []string{
		pipeline.StageDerive, pipeline.StageTransform, pipeline.StageFilter, pipeline.StageBin,
		pipeline.StageReject, pipeline.StageAggregate, pipeline.StageFinalize,
	} {
		assert.Equal(t, 1, seen[stage], stage)
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
