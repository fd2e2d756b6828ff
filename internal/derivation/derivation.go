// Package derivation produces the working series for a request from one or
// more raw source series.
package derivation

import (
	"strings"

	"climate-platform/internal/models"
)

// Type selects a derivation strategy
type Type string

const (
	TypeSingle                     Type = "single"
	TypeDifference                 Type = "difference"
	TypeAverageOfMultiple          Type = "averageOfMultiple"
	TypeAverageOfAnomaliesInRegion Type = "averageOfAnomaliesInRegion"
)

// ParseType accepts the request spelling of a derivation type, ignoring case.
// An empty string means TypeSingle.
func ParseType(s string) (Type, error) {
	if strings.TrimSpace(s) == "" {
		return TypeSingle, nil
	}
	for _, t := range []Type{TypeSingle, TypeDifference, TypeAverageOfMultiple, TypeAverageOfAnomaliesInRegion} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", models.NewConfigurationError("series derivation", "unknown series derivation type %q", s)
}

// Derivation is one of Single, Difference, AverageOfMultiple or
// AverageOfAnomaliesInRegion. Values are only built by NewDerivation, so the
// number of source series always matches the strategy.
type Derivation interface {
	Type() Type
	Sources() []models.SourceSeriesSpecification
	derivation()
}

// Single passes one source series through unchanged
type Single struct {
	Source models.SourceSeriesSpecification
}

// Difference subtracts Second from First on each shared date
type Difference struct {
	First  models.SourceSeriesSpecification
	Second models.SourceSeriesSpecification
}

// AverageOfMultiple averages two or more series date by date
type AverageOfMultiple struct {
	Series []models.SourceSeriesSpecification
}

// AverageOfAnomaliesInRegion averages the anomaly series of every location in
// a region. Template.LocationID names the region.
type AverageOfAnomaliesInRegion struct {
	Template models.SourceSeriesSpecification
}

func (Single) Type() Type                     { return TypeSingle }
func (Difference) Type() Type                 { return TypeDifference }
func (AverageOfMultiple) Type() Type          { return TypeAverageOfMultiple }
func (AverageOfAnomaliesInRegion) Type() Type { return TypeAverageOfAnomaliesInRegion }

func (d Single) Sources() []models.SourceSeriesSpecification {
	return []models.SourceSeriesSpecification{d.Source}
}

func (d Difference) Sources() []models.SourceSeriesSpecification {
	return []models.SourceSeriesSpecification{d.First, d.Second}
}

func (d AverageOfMultiple) Sources() []models.SourceSeriesSpecification {
	return append([]models.SourceSeriesSpecification(nil), d.Series...)
}

func (d AverageOfAnomaliesInRegion) Sources() []models.SourceSeriesSpecification {
	return []models.SourceSeriesSpecification{d.Template}
}

func (Single) derivation()                     {}
func (Difference) derivation()                 {}
func (AverageOfMultiple) derivation()          {}
func (AverageOfAnomaliesInRegion) derivation() {}

// NewDerivation validates the number of source series for t and builds the
// matching variant
func NewDerivation(t Type, specs []models.SourceSeriesSpecification) (Derivation, error) {
	for i, s := range specs {
		if s.DataSetID == "" || s.LocationID == "" || s.DataType == "" {
			return nil, models.NewConfigurationError("series derivation",
				"series specification %d needs dataSetId, locationId and dataType", i)
		}
	}

	switch t {
	case TypeSingle:
		if len(specs) != 1 {
			return nil, countError(t, "exactly 1", len(specs))
		}
		return Single{Source: specs[0]}, nil
	case TypeDifference:
		if len(specs) != 2 {
			return nil, countError(t, "exactly 2", len(specs))
		}
		return Difference{First: specs[0], Second: specs[1]}, nil
	case TypeAverageOfMultiple:
		if len(specs) < 2 {
			return nil, countError(t, "at least 2", len(specs))
		}
		return AverageOfMultiple{Series: append([]models.SourceSeriesSpecification(nil), specs...)}, nil
	case TypeAverageOfAnomaliesInRegion:
		if len(specs) != 1 {
			return nil, countError(t, "exactly 1", len(specs))
		}
		return AverageOfAnomaliesInRegion{Template: specs[0]}, nil
	}
	return nil, models.NewConfigurationError("series derivation", "unknown series derivation type %q", t)
}

func countError(t Type, want string, got int) error {
	return models.NewConfigurationError("series derivation",
		"%s requires %s series specification(s), got %d", t, want, got)
}
