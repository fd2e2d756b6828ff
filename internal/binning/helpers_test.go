package binning_test

import (
	"time"

	"climate-platform/internal/calendar"
	"climate-platform/internal/models"
)

// dailyRecords returns one record per day from first to last inclusive,
// valued by fn (nil for a missing observation).
func dailyRecords(first, last time.Time, fn func(time.Time) *float64) []models.DataRecord {
	var out []models.DataRecord
	for d := first; !d.After(last); d = calendar.AddDays(d, 1) {
		out = append(out, models.NewDailyRecord(d, fn(d)))
	}
	return out
}

func dayOfYearValue(d time.Time) *float64 {
	return models.Float(float64(d.YearDay()))
}

func constant(v float64) func(time.Time) *float64 {
	return func(time.Time) *float64 { return models.Float(v) }
}
