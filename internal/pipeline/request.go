package pipeline

import (
	"climate-platform/internal/models"
)

// Request describes one chart series: where its data comes from and how it
// is binned, checked and reduced
type Request struct {
	SeriesDerivationType string                             `json:"seriesDerivationType"`
	SeriesSpecifications []models.SourceSeriesSpecification `json:"seriesSpecifications"`
	SeriesTransformation string                             `json:"seriesTransformation,omitempty"`

	FilterToSeason                 *string `json:"filterToSeason,omitempty"`
	FilterToTropicalSeason         *string `json:"filterToTropicalSeason,omitempty"`
	FilterToYear                   *int    `json:"filterToYear,omitempty"`
	FilterToYearsAfterAndIncluding *int    `json:"filterToYearsAfterAndIncluding,omitempty"`
	FilterToYearsBefore            *int    `json:"filterToYearsBefore,omitempty"`

	BinningRule string `json:"binningRule"`
	CupSizeDays int    `json:"cupSizeDays"`

	RequiredCupDataProportion    float64 `json:"requiredCupDataProportion"`
	RequiredBucketDataProportion float64 `json:"requiredBucketDataProportion"`
	RequiredBinDataProportion    float64 `json:"requiredBinDataProportion"`

	BinAggregationFunction    string `json:"binAggregationFunction"`
	BucketAggregationFunction string `json:"bucketAggregationFunction"`
	CupAggregationFunction    string `json:"cupAggregationFunction"`

	Anomaly              bool `json:"anomaly"`
	IncludeRawDataPoints bool `json:"includeRawDataPoints"`

	// Applied to the finished bin series by the chart service
	Smoothing              *Smoothing `json:"smoothing,omitempty"`
	YearOverYearDifference bool       `json:"yearOverYearDifference,omitempty"`
}

// SmoothingMethod selects a moving average
type SmoothingMethod string

const (
	SmoothingTrailing SmoothingMethod = "trailing"
	SmoothingCentred  SmoothingMethod = "centred"
)

// Smoothing configures a moving average over the bin values
type Smoothing struct {
	Method        SmoothingMethod `json:"method"`
	WindowSize    int             `json:"windowSize"`
	DataThreshold *float64        `json:"dataThreshold,omitempty"`
}

// Point is one chart-ready bin
type Point struct {
	BinID string   `json:"binId"`
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// Response is the computed series for a Request
type Response struct {
	Points        []Point              `json:"points"`
	RawDataPoints []models.DataRecord  `json:"rawDataPoints,omitempty"`
	UnitOfMeasure models.UnitOfMeasure `json:"unitOfMeasure"`
	DataCategory  models.DataCategory  `json:"dataCategory,omitempty"`
}
