// Package transform holds the per-point value transformations and the
// season/year filters applied to a series before it is binned.
package transform

import (
	"strings"

	"climate-platform/internal/models"
)

// Transformation names a per-point mapping from value to value
type Transformation string

const (
	Identity                    Transformation = "Identity"
	IsPositive                  Transformation = "IsPositive"
	IsNegative                  Transformation = "IsNegative"
	EqualOrAbove25              Transformation = "EqualOrAbove25"
	EqualOrAbove35              Transformation = "EqualOrAbove35"
	EqualOrAbove1               Transformation = "EqualOrAbove1"
	EqualOrAbove1AndLessThan10  Transformation = "EqualOrAbove1AndLessThan10"
	EqualOrAbove10              Transformation = "EqualOrAbove10"
	EqualOrAbove10AndLessThan25 Transformation = "EqualOrAbove10AndLessThan25"
	Negate                      Transformation = "Negate"
	EnsoCategory                Transformation = "EnsoCategory"
	IsFrosty                    Transformation = "IsFrosty"
	DayOfYearIfFrost            Transformation = "DayOfYearIfFrost"
)

// FrostThreshold is the screen temperature (°C) at or below which ground
// frost is assumed; the screen sits above the colder surface.
const FrostThreshold = 2.2

// ensoThreshold separates El Niño / La Niña from neutral index values
const ensoThreshold = 0.5

type valueFunc func(rec models.DataRecord, v float64) float64

func indicator(pred func(v float64) bool) valueFunc {
	return func(_ models.DataRecord, v float64) float64 {
		if pred(v) {
			return 1
		}
		return 0
	}
}

var transformations = map[Transformation]valueFunc{
	Identity:                    func(_ models.DataRecord, v float64) float64 { return v },
	IsPositive:                  indicator(func(v float64) bool { return v > 0 }),
	IsNegative:                  indicator(func(v float64) bool { return v < 0 }),
	EqualOrAbove25:              indicator(func(v float64) bool { return v >= 25 }),
	EqualOrAbove35:              indicator(func(v float64) bool { return v >= 35 }),
	EqualOrAbove1:               indicator(func(v float64) bool { return v >= 1 }),
	EqualOrAbove1AndLessThan10:  indicator(func(v float64) bool { return v >= 1 && v < 10 }),
	EqualOrAbove10:              indicator(func(v float64) bool { return v >= 10 }),
	EqualOrAbove10AndLessThan25: indicator(func(v float64) bool { return v >= 10 && v < 25 }),
	Negate:                      func(_ models.DataRecord, v float64) float64 { return -v },
	EnsoCategory: func(_ models.DataRecord, v float64) float64 {
		switch {
		case v > ensoThreshold:
			return 1
		case v < -ensoThreshold:
			return -1
		}
		return 0
	},
	IsFrosty: indicator(func(v float64) bool { return v <= FrostThreshold }),
	DayOfYearIfFrost: func(rec models.DataRecord, v float64) float64 {
		if v <= FrostThreshold {
			return float64(rec.Date().YearDay())
		}
		return 0
	},
}

// ParseTransformation accepts a transformation name in any case; an empty
// name means Identity.
func ParseTransformation(s string) (Transformation, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Identity, nil
	}
	for t := range transformations {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", models.NewConfigurationError("series transformer", "unknown series transformation %q", s)
}

// Value maps a single nullable value; nil stays nil
func (t Transformation) Value(rec models.DataRecord) (*float64, error) {
	fn, ok := transformations[t]
	if !ok {
		return nil, models.NewConfigurationError("series transformer", "unknown series transformation %q", t)
	}
	if rec.Value == nil {
		return nil, nil
	}
	v := fn(rec, *rec.Value)
	return &v, nil
}

// Apply returns transformed copies of records
func Apply(records []models.DataRecord, t Transformation) ([]models.DataRecord, error) {
	if _, ok := transformations[t]; !ok {
		return nil, models.NewConfigurationError("series transformer", "unknown series transformation %q", t)
	}

	out := make([]models.DataRecord, len(records))
	for i, rec := range records {
		v, _ := t.Value(rec)
		out[i] = rec.WithValue(v)
	}
	return out, nil
}
