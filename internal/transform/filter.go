package transform

import (
	"time"

	"climate-platform/internal/calendar"
	"climate-platform/internal/models"
)

// Filter holds the optional pre-aggregation predicates. A nil field is not
// applied; every set field must hold for a record to be kept.
type Filter struct {
	TemperateSeason        *calendar.TemperateSeason
	TropicalSeason         *calendar.TropicalSeason
	YearsAfterAndIncluding *int
	YearsBefore            *int
	Year                   *int
}

// IsZero reports whether no predicate is set
func (f Filter) IsZero() bool {
	return f.TemperateSeason == nil && f.TropicalSeason == nil &&
		f.YearsAfterAndIncluding == nil && f.YearsBefore == nil && f.Year == nil
}

// Keep reports whether rec passes every set predicate. Season filters drop
// records without a month.
func (f Filter) Keep(rec models.DataRecord) bool {
	year := int(rec.Year)

	if f.TemperateSeason != nil {
		if rec.Month == nil || calendar.TemperateSeasonOf(time.Month(*rec.Month)) != *f.TemperateSeason {
			return false
		}
	}
	if f.TropicalSeason != nil {
		if rec.Month == nil || calendar.TropicalSeasonOf(time.Month(*rec.Month)) != *f.TropicalSeason {
			return false
		}
	}
	if f.YearsAfterAndIncluding != nil && year < *f.YearsAfterAndIncluding {
		return false
	}
	if f.YearsBefore != nil && year >= *f.YearsBefore {
		return false
	}
	if f.Year != nil && year != *f.Year {
		return false
	}
	return true
}

// Apply returns the records that pass the filter, in their original order
func (f Filter) Apply(records []models.DataRecord) []models.DataRecord {
	if f.IsZero() {
		return append([]models.DataRecord(nil), records...)
	}

	out := make([]models.DataRecord, 0, len(records))
	for _, rec := range records {
		if f.Keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}
