package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DataResolution is the natural sampling interval of a source series
type DataResolution string

const (
	Daily   DataResolution = "daily"
	Monthly DataResolution = "monthly"
	Yearly  DataResolution = "yearly"
)

// ParseDataResolution accepts daily, monthly or yearly in any case
func ParseDataResolution(s string) (DataResolution, error) {
	switch DataResolution(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	}
	return "", &ValidationError{
		Field:   "data_resolution",
		Value:   s,
		Message: "invalid data resolution, expected daily, monthly or yearly",
	}
}

// UnitOfMeasure is a display label only; values are never converted
type UnitOfMeasure string

// DataCategory groups measurements for presentation (temperature, precipitation, ...)
type DataCategory string

// DataRecord is one observation at daily, monthly or yearly resolution.
// Month and Day are nil when the record is coarser than that field.
// A nil Value means the observation is missing.
type DataRecord struct {
	Year  int16    `json:"year"`
	Month *int8    `json:"month,omitempty"`
	Day   *int8    `json:"day,omitempty"`
	Value *float64 `json:"value,omitempty"`
}

// NewDailyRecord builds a record for a calendar day
func NewDailyRecord(date time.Time, value *float64) DataRecord {
	m := int8(date.Month())
	d := int8(date.Day())
	return DataRecord{Year: int16(date.Year()), Month: &m, Day: &d, Value: value}
}

// NewMonthlyRecord builds a record for a calendar month
func NewMonthlyRecord(year int, month time.Month, value *float64) DataRecord {
	m := int8(month)
	return DataRecord{Year: int16(year), Month: &m, Value: value}
}

// NewYearlyRecord builds a record for a whole year
func NewYearlyRecord(year int, value *float64) DataRecord {
	return DataRecord{Year: int16(year), Value: value}
}

// Date returns the first day the record covers
func (r DataRecord) Date() time.Time {
	month, dayOfMonth := 1, 1
	if r.Month != nil {
		month = int(*r.Month)
	}
	if r.Day != nil {
		dayOfMonth = int(*r.Day)
	}
	return time.Date(int(r.Year), time.Month(month), dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// HasValue reports whether the observation is present
func (r DataRecord) HasValue() bool {
	return r.Value != nil
}

// WithValue returns a copy of the record carrying v
func (r DataRecord) WithValue(v *float64) DataRecord {
	r.Value = v
	return r
}

// Resolution infers the resolution from the populated date fields
func (r DataRecord) Resolution() DataResolution {
	switch {
	case r.Day != nil:
		return Daily
	case r.Month != nil:
		return Monthly
	default:
		return Yearly
	}
}

// Key returns a sortable identity for the record's period
func (r DataRecord) Key() string {
	switch {
	case r.Day != nil:
		return fmt.Sprintf("%04d-%02d-%02d", r.Year, *r.Month, *r.Day)
	case r.Month != nil:
		return fmt.Sprintf("%04d-%02d", r.Year, *r.Month)
	default:
		return fmt.Sprintf("%04d", r.Year)
	}
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// Series is a working series of records with its metadata
type Series struct {
	DataRecords    []DataRecord   `json:"data_records"`
	UnitOfMeasure  UnitOfMeasure  `json:"unit_of_measure"`
	DataResolution DataResolution `json:"data_resolution"`
	DataCategory   DataCategory   `json:"data_category,omitempty"`
}

// SourceSeriesSpecification identifies one raw input series
type SourceSeriesSpecification struct {
	DataSetID      string `json:"dataSetId"`
	LocationID     string `json:"locationId"`
	DataType       string `json:"dataType"`
	DataAdjustment string `json:"dataAdjustment,omitempty"`
}

func (s SourceSeriesSpecification) String() string {
	key := fmt.Sprintf("%s/%s/%s", s.DataSetID, s.LocationID, s.DataType)
	if s.DataAdjustment != "" {
		key += "/" + s.DataAdjustment
	}
	return key
}

// DataSetDefinition is a catalog entry for a published data set
type DataSetDefinition struct {
	ID             string         `json:"id" db:"id"`
	Name           string         `json:"name" db:"name"`
	Publisher      string         `json:"publisher,omitempty" db:"publisher"`
	DataResolution DataResolution `json:"data_resolution" db:"data_resolution"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// MeasurementDefinition is one data type (and adjustment) offered by a data set
type MeasurementDefinition struct {
	DataSetID      string         `json:"data_set_id" db:"data_set_id"`
	DataType       string         `json:"data_type" db:"data_type"`
	DataAdjustment string         `json:"data_adjustment,omitempty" db:"data_adjustment"`
	UnitOfMeasure  UnitOfMeasure  `json:"unit_of_measure" db:"unit_of_measure"`
	DataCategory   DataCategory   `json:"data_category,omitempty" db:"data_category"`
	DataResolution DataResolution `json:"data_resolution" db:"data_resolution"`
}

// Location is an observing site, optionally grouped into a region
type Location struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	RegionID  string    `json:"region_id,omitempty" db:"region_id"`
	Latitude  *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64  `json:"longitude,omitempty" db:"longitude"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ObservationRow is the stored form of a DataRecord.
// Month and Day are 0 when absent so they can sit in the primary key.
type ObservationRow struct {
	DataSetID      string   `db:"data_set_id"`
	LocationID     string   `db:"location_id"`
	DataType       string   `db:"data_type"`
	DataAdjustment string   `db:"data_adjustment"`
	Year           int16    `db:"year"`
	Month          int8     `db:"month"`
	Day            int8     `db:"day"`
	Value          *float64 `db:"value"`
}

// ToDataRecord converts the stored row back to a record
func (o ObservationRow) ToDataRecord() DataRecord {
	rec := DataRecord{Year: o.Year, Value: o.Value}
	if o.Month != 0 {
		m := o.Month
		rec.Month = &m
	}
	if o.Day != 0 {
		d := o.Day
		rec.Day = &d
	}
	return rec
}

// NewObservationRow converts a record to its stored form for a series
func NewObservationRow(spec SourceSeriesSpecification, rec DataRecord) ObservationRow {
	row := ObservationRow{
		DataSetID:      spec.DataSetID,
		LocationID:     spec.LocationID,
		DataType:       spec.DataType,
		DataAdjustment: spec.DataAdjustment,
		Year:           rec.Year,
		Value:          rec.Value,
	}
	if rec.Month != nil {
		row.Month = *rec.Month
	}
	if rec.Day != nil {
		row.Day = *rec.Day
	}
	return row
}

// MissingValueSentinel marks a missing observation in source files
const MissingValueSentinel = "-9999"

// RawObservationRecord is a single line from an input data file
type RawObservationRecord struct {
	Date  string // YYYYMMDD, YYYYMM or YYYY depending on resolution
	Value string // decimal, empty or -9999 when missing
}

// ToDataRecord parses the raw line at the given resolution.
// Missing values become records without a value.
func (r *RawObservationRecord) ToDataRecord(resolution DataResolution) (DataRecord, error) {
	layout, ok := map[DataResolution]string{
		Daily:   "20060102",
		Monthly: "200601",
		Yearly:  "2006",
	}[resolution]
	if !ok {
		return DataRecord{}, &ValidationError{
			Field:   "data_resolution",
			Value:   string(resolution),
			Message: "unsupported data resolution",
		}
	}

	date, err := time.Parse(layout, strings.TrimSpace(r.Date))
	if err != nil {
		return DataRecord{}, &ValidationError{
			Field:   "date",
			Value:   r.Date,
			Message: fmt.Sprintf("invalid date format, expected %s", strings.NewReplacer("2006", "YYYY", "01", "MM", "02", "DD").Replace(layout)),
		}
	}

	var value *float64
	text := strings.TrimSpace(r.Value)
	if text != "" && text != MissingValueSentinel {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return DataRecord{}, &ValidationError{
				Field:   "value",
				Value:   r.Value,
				Message: "invalid numeric value",
			}
		}
		value = &v
	}

	switch resolution {
	case Daily:
		return NewDailyRecord(date, value), nil
	case Monthly:
		return NewMonthlyRecord(date.Year(), date.Month(), value), nil
	default:
		return NewYearlyRecord(date.Year(), value), nil
	}
}
