package transform

import (
	"testing"
	"time"

	"climate-platform/internal/calendar"
	"climate-platform/internal/models"
)

func monthlySeries(fromYear, toYear int) []models.DataRecord {
	var out []models.DataRecord
	for y := fromYear; y <= toYear; y++ {
		for m := time.January; m <= time.December; m++ {
			out = append(out, models.NewMonthlyRecord(y, m, models.Float(float64(m))))
		}
	}
	return out
}

func intPtr(v int) *int { return &v }

func TestFilter_Apply(t *testing.T) {
	winter := calendar.Winter
	dry := calendar.Dry

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 36},
		{"winter", Filter{TemperateSeason: &winter}, 9},
		{"dry season", Filter{TropicalSeason: &dry}, 15},
		{"from 2001", Filter{YearsAfterAndIncluding: intPtr(2001)}, 24},
		{"before 2001", Filter{YearsBefore: intPtr(2001)}, 12},
		{"exactly 2001", Filter{Year: intPtr(2001)}, 12},
		{"winter of 2002", Filter{TemperateSeason: &winter, Year: intPtr(2002)}, 3},
		{"empty range", Filter{YearsAfterAndIncluding: intPtr(2002), YearsBefore: intPtr(2001)}, 0},
	}

	records := monthlySeries(2000, 2002)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(records)
			if len(got) != tt.want {
				t.Errorf("Apply() kept %d records, want %d", len(got), tt.want)
			}
		})
	}
	if len(records) != 36 {
		t.Errorf("input changed length to %d", len(records))
	}
}

func TestFilter_SeasonDropsYearlyRecords(t *testing.T) {
	summer := calendar.Summer
	got := Filter{TemperateSeason: &summer}.Apply([]models.DataRecord{models.NewYearlyRecord(2000, models.Float(1))})
	if len(got) != 0 {
		t.Errorf("yearly records cannot be attributed to a season, kept %d", len(got))
	}
}
