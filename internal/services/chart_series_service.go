package services

import (
	"context"

	"github.com/pkg/errors"

	"climate-platform/internal/binning"
	"climate-platform/internal/models"
	"climate-platform/internal/pipeline"
	"climate-platform/internal/smoothing"
	"climate-platform/pkg/logging"
	"climate-platform/pkg/metrics"
)

// SeriesBuilder runs the binning pipeline for a request
type SeriesBuilder interface {
	BuildDataSet(ctx context.Context, req pipeline.Request) (*pipeline.Response, error)
}

// Defaults fill request fields the caller left empty
type Defaults struct {
	CupSizeDays         int
	AggregationFunction string
}

// ChartSeriesService serves chart series requests
type ChartSeriesService struct {
	builder  SeriesBuilder
	defaults Defaults
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewChartSeriesService creates a new chart series service
func NewChartSeriesService(builder SeriesBuilder, defaults Defaults, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ChartSeriesService {
	return &ChartSeriesService{
		builder:  builder,
		defaults: defaults,
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// GetChartSeries builds the series for req, then applies the optional
// year-over-year difference and smoothing to the bin values in that order
func (s *ChartSeriesService) GetChartSeries(ctx context.Context, req pipeline.Request) (*pipeline.Response, error) {
	timer := s.metrics.NewTimer(s.metrics.ChartSeriesDuration)
	req = s.applyDefaults(req)

	s.logger.Debug(ctx, "[CHART_SERIES] Building chart series", logging.Fields{
		"derivation":     req.SeriesDerivationType,
		"series_count":   len(req.SeriesSpecifications),
		"binning_rule":   req.BinningRule,
		"transformation": req.SeriesTransformation,
		"anomaly":        req.Anomaly,
	})

	resp, err := s.builder.BuildDataSet(ctx, req)
	if err != nil {
		s.logger.Warn(ctx, "[CHART_SERIES_ERROR] Chart series request failed", logging.Fields{
			"binning_rule": req.BinningRule,
			"error":        err.Error(),
		})
		return nil, err
	}

	if req.YearOverYearDifference || req.Smoothing != nil {
		if err := postProcess(resp, req); err != nil {
			return nil, err
		}
	}

	var adequate, rejected int
	for _, p := range resp.Points {
		if p.Value == nil {
			rejected++
		} else {
			adequate++
		}
	}
	s.metrics.RecordBins(adequate, rejected)

	duration := timer.ObserveDuration()
	s.logger.Info(ctx, "[CHART_SERIES] Chart series built", logging.Fields{
		"points":      len(resp.Points),
		"rejected":    rejected,
		"duration_ms": duration.Milliseconds(),
	})
	return resp, nil
}

func (s *ChartSeriesService) applyDefaults(req pipeline.Request) pipeline.Request {
	if req.CupSizeDays == 0 {
		req.CupSizeDays = s.defaults.CupSizeDays
	}
	if fn := s.defaults.AggregationFunction; fn != "" {
		for _, name := range []*string{&req.BinAggregationFunction, &req.BucketAggregationFunction, &req.CupAggregationFunction} {
			if *name == "" {
				*name = fn
			}
		}
	}
	return req
}

// postProcess differences and smooths bin values. Linear bins are laid on a
// gapless timeline first so that neighbours are calendar neighbours and
// missing bins count as nil.
func postProcess(resp *pipeline.Response, req pipeline.Request) error {
	if len(resp.Points) == 0 {
		return nil
	}

	ids := make([]binning.Identifier, len(resp.Points))
	values := make([]*float64, len(resp.Points))
	for i, p := range resp.Points {
		id, err := binning.ParseIdentifier(p.BinID)
		if err != nil {
			return errors.Wrapf(err, "reading bin %q", p.BinID)
		}
		ids[i] = id
		values[i] = p.Value
	}

	if !ids[0].IsLinear() {
		if req.YearOverYearDifference {
			return models.NewConfigurationError("year over year difference", "bins of kind %s repeat every year and cannot be differenced", req.BinningRule)
		}
		values, err := smooth(values, req.Smoothing)
		if err != nil {
			return err
		}
		for i := range resp.Points {
			resp.Points[i].Value = values[i]
		}
		return nil
	}

	tl, err := binning.NewTimeline(ids, values)
	if err != nil {
		return err
	}
	filled := tl.Values
	if req.YearOverYearDifference {
		filled = smoothing.YearOverYearDifference(filled, tl.YearEarlierPositions())
	}
	if filled, err = smooth(filled, req.Smoothing); err != nil {
		return err
	}

	for i, id := range ids {
		pos, _ := tl.Position(id)
		resp.Points[i].Value = filled[pos]
	}
	return nil
}

func smooth(values []*float64, sm *pipeline.Smoothing) ([]*float64, error) {
	if sm == nil {
		return values, nil
	}
	switch sm.Method {
	case pipeline.SmoothingTrailing, "":
		threshold := smoothing.DefaultDataThreshold
		if sm.DataThreshold != nil {
			threshold = *sm.DataThreshold
		}
		return smoothing.OptimizedMovingAverage(values, sm.WindowSize, threshold)
	case pipeline.SmoothingCentred:
		if sm.DataThreshold == nil {
			return nil, models.NewConfigurationError("smoothing", "centred smoothing requires dataThreshold")
		}
		return smoothing.CentredMovingAverage(values, sm.WindowSize, *sm.DataThreshold)
	default:
		return nil, models.NewConfigurationError("smoothing", "unknown smoothing method %q", sm.Method)
	}
}
