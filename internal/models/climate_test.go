package models

import (
	"errors"
	"testing"
	"time"
)

// TestRawObservationRecord_ToDataRecord tests the conversion logic
func TestRawObservationRecord_ToDataRecord(t *testing.T) {
	tests := []struct {
		name        string
		record      RawObservationRecord
		resolution  DataResolution
		wantErr     bool
		checkValues func(*testing.T, DataRecord)
	}{
		{
			name:       "valid daily record",
			record:     RawObservationRecord{Date: "20230115", Value: "25.4"},
			resolution: Daily,
			checkValues: func(t *testing.T, rec DataRecord) {
				expectedDate := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
				if !rec.Date().Equal(expectedDate) {
					t.Errorf("Date() = %v, want %v", rec.Date(), expectedDate)
				}
				if rec.Value == nil {
					t.Fatal("Value should not be nil")
				}
				if *rec.Value != 25.4 {
					t.Errorf("Value = %v, want %v", *rec.Value, 25.4)
				}
				if rec.Resolution() != Daily {
					t.Errorf("Resolution() = %v, want %v", rec.Resolution(), Daily)
				}
			},
		},
		{
			name:       "missing value (-9999)",
			record:     RawObservationRecord{Date: "20230115", Value: "-9999"},
			resolution: Daily,
			checkValues: func(t *testing.T, rec DataRecord) {
				if rec.Value != nil {
					t.Error("Value should be nil for -9999")
				}
				if rec.HasValue() {
					t.Error("HasValue() should be false")
				}
			},
		},
		{
			name:       "empty value",
			record:     RawObservationRecord{Date: "20230115", Value: "  "},
			resolution: Daily,
			checkValues: func(t *testing.T, rec DataRecord) {
				if rec.Value != nil {
					t.Error("Value should be nil for an empty field")
				}
			},
		},
		{
			name:       "negative temperature (valid)",
			record:     RawObservationRecord{Date: "20230715", Value: "-5.5"},
			resolution: Daily,
			checkValues: func(t *testing.T, rec DataRecord) {
				if rec.Value == nil || *rec.Value != -5.5 {
					t.Errorf("Value = %v, want -5.5", rec.Value)
				}
			},
		},
		{
			name:       "monthly record",
			record:     RawObservationRecord{Date: "201303", Value: "101.2"},
			resolution: Monthly,
			checkValues: func(t *testing.T, rec DataRecord) {
				if rec.Day != nil {
					t.Error("Day should be nil for a monthly record")
				}
				if rec.Month == nil || *rec.Month != 3 {
					t.Errorf("Month = %v, want 3", rec.Month)
				}
				if rec.Key() != "2013-03" {
					t.Errorf("Key() = %q, want 2013-03", rec.Key())
				}
			},
		},
		{
			name:       "yearly record",
			record:     RawObservationRecord{Date: "1998", Value: "0.52"},
			resolution: Yearly,
			checkValues: func(t *testing.T, rec DataRecord) {
				if rec.Month != nil || rec.Day != nil {
					t.Error("Month and Day should be nil for a yearly record")
				}
				if rec.Year != 1998 {
					t.Errorf("Year = %d, want 1998", rec.Year)
				}
			},
		},
		{
			name:       "invalid date format",
			record:     RawObservationRecord{Date: "2023-01-15", Value: "1"},
			resolution: Daily,
			wantErr:    true,
		},
		{
			name:       "invalid value",
			record:     RawObservationRecord{Date: "20230115", Value: "abc"},
			resolution: Daily,
			wantErr:    true,
		},
		{
			name:       "unsupported resolution",
			record:     RawObservationRecord{Date: "20230115", Value: "1"},
			resolution: DataResolution("hourly"),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := tt.record.ToDataRecord(tt.resolution)

			if (err != nil) != tt.wantErr {
				t.Errorf("ToDataRecord() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("error %T should be a *ValidationError", err)
				}
				return
			}

			if tt.checkValues != nil {
				tt.checkValues(t, rec)
			}
		})
	}
}

func TestObservationRowRoundTrip(t *testing.T) {
	spec := SourceSeriesSpecification{DataSetID: "acorn", LocationID: "066062", DataType: "tmax"}
	daily := NewDailyRecord(time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC), Float(31.5))

	row := NewObservationRow(spec, daily)
	if row.Month != 2 || row.Day != 29 {
		t.Fatalf("row month/day = %d/%d, want 2/29", row.Month, row.Day)
	}

	back := row.ToDataRecord()
	if back.Key() != daily.Key() {
		t.Errorf("round trip key = %q, want %q", back.Key(), daily.Key())
	}

	yearly := NewObservationRow(spec, NewYearlyRecord(2000, nil)).ToDataRecord()
	if yearly.Month != nil || yearly.Day != nil || yearly.Value != nil {
		t.Errorf("yearly round trip = %+v, want year only", yearly)
	}
}

func TestParseDataResolution(t *testing.T) {
	if r, err := ParseDataResolution("Monthly"); err != nil || r != Monthly {
		t.Errorf("ParseDataResolution(Monthly) = %v, %v", r, err)
	}
	if _, err := ParseDataResolution("weekly"); err == nil {
		t.Error("expected error for weekly")
	}
}

// TestErrorKinds tests error classification
func TestErrorKinds(t *testing.T) {
	vErr := &ValidationError{Field: "date", Value: "invalid", Message: "invalid date format"}
	if vErr.Error() != "invalid date format" {
		t.Errorf("Error() = %v, want %v", vErr.Error(), "invalid date format")
	}
	if vErr.IsTransient() {
		t.Error("ValidationError should not be transient")
	}

	cErr := NewConfigurationError("binner", "unsupported rule %q", "hourly")
	if cErr.Error() != `binner: unsupported rule "hourly"` {
		t.Errorf("Error() = %v", cErr.Error())
	}
	if cErr.IsTransient() {
		t.Error("ConfigurationError should not be transient")
	}

	dErr := &DataShapeError{Field: "unit of measure", Expected: "°C", Actual: "mm"}
	if dErr.IsTransient() {
		t.Error("DataShapeError should not be transient")
	}
}
