// Package calendar holds the pure date arithmetic used by binning: month and
// year lengths, ISO week numbering, southern-hemisphere seasons and the
// segmentation of date spans into fixed-size pieces.
package calendar

import (
	"time"
)

const day = 24 * time.Hour

// Date returns midnight UTC on the given calendar day
func Date(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// IsLeapYear reports whether year has a 29th of February
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 365 or 366
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// AddDays moves a date by n whole days
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// DaysBetween returns the number of days from a to b (negative if b is before a).
// Both dates are expected to be at midnight UTC.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / day)
}

// ISOWeek returns the ISO 8601 week-numbering year and week of d
func ISOWeek(d time.Time) (year, week int) {
	return d.ISOWeek()
}

// FirstDayOfISOWeek returns the Monday that starts the given ISO week
func FirstDayOfISOWeek(isoYear, week int) time.Time {
	// 4 January is always in week 1
	jan4 := Date(isoYear, time.January, 4)
	offset := int(jan4.Weekday()+6) % 7
	week1Monday := AddDays(jan4, -offset)
	return AddDays(week1Monday, (week-1)*7)
}

// WeeksInISOYear returns 52 or 53
func WeeksInISOYear(isoYear int) int {
	_, week := Date(isoYear, time.December, 28).ISOWeek()
	return week
}

// DayOfYear returns the 1-based ordinal day of d within its year
func DayOfYear(d time.Time) int {
	return d.YearDay()
}

// DateSpan is an inclusive range of whole days
type DateSpan struct {
	Start time.Time
	End   time.Time
}

// NewDateSpan builds a span from inclusive first and last days
func NewDateSpan(start, end time.Time) DateSpan {
	return DateSpan{Start: start, End: end}
}

// Days returns the number of calendar days the span covers
func (s DateSpan) Days() int {
	return DaysBetween(s.Start, s.End) + 1
}

// Contains reports whether d falls inside the span
func (s DateSpan) Contains(d time.Time) bool {
	return !d.Before(s.Start) && !d.After(s.End)
}

// DivideSpan splits span into segments of segmentDays days. The number of
// segments is floor(days/segmentDays) and any trailing partial segment is
// merged into the final one. A span shorter than segmentDays is returned whole.
func DivideSpan(span DateSpan, segmentDays int) []DateSpan {
	total := span.Days()
	if segmentDays <= 0 || total <= segmentDays {
		return []DateSpan{span}
	}

	count := total / segmentDays
	segments := make([]DateSpan, 0, count)
	start := span.Start
	for i := 0; i < count; i++ {
		end := AddDays(start, segmentDays-1)
		if i == count-1 {
			end = span.End
		}
		segments = append(segments, DateSpan{Start: start, End: end})
		start = AddDays(end, 1)
	}

	return segments
}

// MonthSpans returns one span per calendar month touched by span, clipped to it
func MonthSpans(span DateSpan) []DateSpan {
	var spans []DateSpan
	cursor := span.Start
	for !cursor.After(span.End) {
		monthEnd := Date(cursor.Year(), cursor.Month(), DaysInMonth(cursor.Year(), cursor.Month()))
		if monthEnd.After(span.End) {
			monthEnd = span.End
		}
		spans = append(spans, DateSpan{Start: cursor, End: monthEnd})
		cursor = AddDays(monthEnd, 1)
	}
	return spans
}
